package render

import "maps"

// RenderContext holds the variables a layout is rendered with.
type RenderContext struct {
	// Globals are site-wide values shared by every document of a run.
	Globals map[string]any
	// Bindings are the document's own values; they win over Globals.
	Bindings map[string]any
}

// NewRenderContext returns an empty context.
func NewRenderContext() *RenderContext {
	return &RenderContext{Globals: map[string]any{}, Bindings: map[string]any{}}
}

// Scope merges Globals and Bindings into a fresh map.
func (rc *RenderContext) Scope() map[string]any {
	scope := make(map[string]any, len(rc.Globals)+len(rc.Bindings))
	maps.Copy(scope, rc.Globals)
	maps.Copy(scope, rc.Bindings)
	return scope
}
