package render

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	"git.home.luguber.info/inful/pagepublisher/internal/logfields"
)

// MaxFragmentDepth bounds nested fragment expansion.
const MaxFragmentDepth = 100

const maxDepthMessage = "max fragment nesting exceeded"

// Composer expands fragment instances using a read-only table of compiled
// fragment definitions. It never fails: bad content renders as an inline
// error block in place.
type Composer struct {
	fragments *Table
	maxDepth  int
	logger    *slog.Logger
}

// NewComposer returns a composer over the given fragment table.
func NewComposer(fragments *Table, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{fragments: fragments, maxDepth: MaxFragmentDepth, logger: logger}
}

// ComposeDocument composes every nested-fragment field the layout declares
// and returns the number of fields written.
func (c *Composer) ComposeDocument(layout *Template, doc *content.Document, rc *RenderContext) int {
	n := 0
	for _, field := range layout.Schema() {
		if field.Kind != content.KindFragments {
			continue
		}
		instances, err := content.DecodeInstances(doc.CustomFieldValues[field.Name])
		if err != nil {
			c.logger.Warn("Invalid fragment list",
				logfields.DocumentID(doc.ID), logfields.Field(field.Name), logfields.Error(err))
			rc.Bindings[field.Name] = ErrorBlock(fmt.Sprintf("field %s: %v", field.Name, err))
			n++
			continue
		}
		c.ComposeField(field, instances, rc)
		n++
	}
	return n
}

// ComposeField renders instances in order, stores the HTML in
// rc.Bindings under the field's name and returns it.
func (c *Composer) ComposeField(field content.FieldSchema, instances []content.FragmentInstance, rc *RenderContext) string {
	out := c.compose(instances, rc, 0)
	rc.Bindings[field.Name] = out
	return out
}

func (c *Composer) compose(instances []content.FragmentInstance, rc *RenderContext, depth int) string {
	if len(instances) == 0 {
		return ""
	}
	if depth >= c.maxDepth {
		return ErrorBlock(maxDepthMessage)
	}
	var b strings.Builder
	for i := range instances {
		b.WriteString(c.renderInstance(&instances[i], rc, depth))
	}
	return b.String()
}

func (c *Composer) renderInstance(inst *content.FragmentInstance, rc *RenderContext, depth int) string {
	def, ok := c.fragments.Lookup(inst.DefinitionID)
	if !ok {
		return ErrorBlock(fmt.Sprintf("fragment %q not found", inst.DefinitionID))
	}

	scope := make(map[string]any, len(rc.Globals)+len(def.Schema())+len(inst.FieldValues)+1)
	maps.Copy(scope, rc.Globals)
	scope["page"] = rc.Bindings
	for _, f := range def.Schema() {
		scope[f.Name] = ""
	}
	for i := range inst.FieldValues {
		fv := &inst.FieldValues[i]
		scope[fv.Name] = c.fieldValue(def, fv, rc, depth)
	}

	out, err := def.Execute(scope)
	if err != nil {
		c.logger.Debug("Fragment render failed", logfields.Fragment(def.ID()), logfields.Error(err))
		return ErrorBlock(err.Error())
	}
	return out
}

func (c *Composer) fieldValue(def *Template, fv *content.FieldValue, rc *RenderContext, depth int) any {
	schema, _ := def.Doc().FieldSchemaFor(fv.Name)
	kind := fv.Kind
	if kind == "" {
		kind = schema.Kind
	}
	if schema.Parse && kind != content.KindFragments {
		kind = content.KindJSON
	}

	switch kind {
	case content.KindJSON:
		v, _, err := content.ParseJSONValue(fv.Value)
		if err != nil {
			return errorMarker(fmt.Sprintf("invalid JSON in field %s", fv.Name))
		}
		return v
	case content.KindFragments:
		nested := fv.NestedInstances
		if len(nested) == 0 && len(fv.Value) > 0 {
			decoded, err := content.DecodeInstances(fv.Value)
			if err != nil {
				return errorMarker(fmt.Sprintf("invalid fragment list in field %s", fv.Name))
			}
			nested = decoded
		}
		return c.compose(nested, rc, depth+1)
	case content.KindMarkdown:
		s, _ := content.PlainValue(fv.Value).(string)
		return Markdown(s)
	case content.KindText, content.KindImage:
		return content.PlainValue(fv.Value)
	default:
		return content.PlainValue(fv.Value)
	}
}
