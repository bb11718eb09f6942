package render

import (
	"encoding/json"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/logfields"
	"git.home.luguber.info/inful/pagepublisher/internal/navtree"
)

// DefaultTemplateKey names the layout used in bulk runs for pages that
// reference no layout.
const DefaultTemplateKey = "default"

// ErrLayoutNotFound is returned when a page's layout cannot be resolved.
var ErrLayoutNotFound = derrors.NotFoundError("layout not found").Build()

// TimeFormat is used for publishedAt and updatedAt stamps.
const TimeFormat = time.RFC3339

// Resolver binds documents to layouts and prepares their render context.
type Resolver struct {
	Layouts *Table
	// FallbackToDefault selects the "default" layout for pages without a
	// layout reference instead of failing them.
	FallbackToDefault bool
	Now               func() time.Time
	Logger            *slog.Logger
}

// Layout finds the layout for doc. A dangling reference is always an
// error; a missing reference is only tolerated with FallbackToDefault.
func (r *Resolver) Layout(doc *content.Document) (*Template, error) {
	if doc.LayoutRef != "" {
		if l, ok := r.Layouts.Lookup(doc.LayoutRef); ok {
			return l, nil
		}
		return nil, ErrLayoutNotFound.WithContext("document_id", doc.ID).WithContext("layout", doc.LayoutRef)
	}
	if r.FallbackToDefault {
		if l, ok := r.Layouts.LookupKey(DefaultTemplateKey); ok {
			return l, nil
		}
	}
	return nil, ErrLayoutNotFound.WithContext("document_id", doc.ID).WithContext("layout", "")
}

// Resolve looks up the layout and merges, lowest precedence first: global
// vars, site and CDN URLs, the navigation tree, the document's own fields
// and finally its custom field values. JSON fields declared by the layout
// are parsed; a value that fails to parse is kept as its raw text.
//
// Values of nested-fragment fields are left as empty strings for the
// Composer to fill.
func (r *Resolver) Resolve(doc *content.Document, global content.GlobalConfig, nav []navtree.Node) (*RenderContext, *Template, error) {
	layout, err := r.Layout(doc)
	if err != nil {
		return nil, nil, err
	}

	rc := NewRenderContext()
	for k, v := range global.Vars {
		rc.Globals[k] = v
	}
	rc.Globals["siteUrl"] = global.SiteURL
	rc.Globals["cdnBaseUrl"] = global.CDNBaseURL
	rc.Globals["siteTitle"] = global.SiteTitle
	rc.Globals["globalScript"] = globalScript(global.Vars)
	if global.Navigation && nav != nil {
		rc.Globals["navTree"] = nav
	}

	now := r.now().UTC().Format(TimeFormat)
	b := rc.Bindings
	b["id"] = doc.ID
	b["path"] = doc.Path
	b["title"] = doc.Title
	b["description"] = doc.Description
	b["categories"] = doc.Categories
	b["coverImage"] = doc.CoverImage
	b["publishedAt"] = firstNonEmpty(doc.PublishedAt, now)
	b["updatedAt"] = firstNonEmpty(doc.UpdatedAt, now)

	for _, field := range layout.Schema() {
		b[field.Name] = ""
	}
	for name, raw := range doc.CustomFieldValues {
		field, declared := layout.Doc().FieldSchemaFor(name)
		switch {
		case declared && field.Kind == content.KindFragments:
			// filled by the Composer
		case declared && field.RequiresParse():
			v, text, err := content.ParseJSONValue(raw)
			if err != nil {
				r.logger().Warn("Custom field is not valid JSON, rendering raw value",
					logfields.DocumentID(doc.ID), logfields.Field(name), logfields.Error(err))
				b[name] = text
				continue
			}
			b[name] = v
		default:
			b[name] = content.PlainValue(raw)
		}
	}
	return rc, layout, nil
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// globalScript exposes site vars to client-side code.
func globalScript(vars map[string]any) string {
	if len(vars) == 0 {
		return ""
	}
	data, err := json.Marshal(vars)
	if err != nil {
		return ""
	}
	return "<script>window.siteVars = " + string(data) + ";</script>"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
