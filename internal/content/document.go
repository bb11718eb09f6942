package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ObjectType discriminates records stored in the single content table.
type ObjectType string

const (
	TypePage            ObjectType = "Page"
	TypeLayout          ObjectType = "Layout"
	TypeFragment        ObjectType = "Fragment"
	TypeBlock           ObjectType = "Block"
	TypeForm            ObjectType = "Form"
	TypeSubmittedForm   ObjectType = "SubmittedForm"
	TypeConfig          ObjectType = "Config"
	TypeImageProfileSet ObjectType = "ImageProfileSet"
)

var knownTypes = map[ObjectType]struct{}{
	TypePage: {}, TypeLayout: {}, TypeFragment: {}, TypeBlock: {},
	TypeForm: {}, TypeSubmittedForm: {}, TypeConfig: {}, TypeImageProfileSet: {},
}

// Valid reports whether t is one of the known discriminators.
func (t ObjectType) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// Document is a generic content record. Which fields are meaningful depends
// on OType: pages carry a path and a layout reference, layouts and blocks
// carry template source and a custom field schema, the config record
// carries Settings.
type Document struct {
	ID          string     `json:"id"`
	OType       ObjectType `json:"otype"`
	Path        string     `json:"path,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`

	Body              string                     `json:"body,omitempty"`
	LayoutRef         string                     `json:"layout,omitempty"`
	TemplateKey       string                     `json:"templateKey,omitempty"`
	CustomFieldSchema []FieldSchema              `json:"customFieldSchema,omitempty"`
	CustomFieldValues map[string]json.RawMessage `json:"customFieldValues,omitempty"`

	Queued          bool       `json:"queued,omitempty"`
	SearchIndexable bool       `json:"searchIndexable,omitempty"`
	SitemapEligible bool       `json:"sitemap,omitempty"`
	ListNav         bool       `json:"listnav,omitempty"`
	NavLabel        string     `json:"navlabel,omitempty"`
	NavSort         FlexNumber `json:"navsort,omitempty"`
	Categories      []string   `json:"categories,omitempty"`

	Date        string `json:"dt,omitempty"`
	PubDate     string `json:"pubdate,omitempty"`
	CoverImage  string `json:"coverImage,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`

	Settings *GlobalConfig `json:"settings,omitempty"`
}

// Validate checks the invariants every stored record must satisfy.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("document id is required")
	}
	if !d.OType.Valid() {
		return fmt.Errorf("document %s: unknown otype %q", d.ID, d.OType)
	}
	if d.OType == TypePage && strings.TrimSpace(d.Path) == "" {
		return fmt.Errorf("page %s: path is required", d.ID)
	}
	return nil
}

// Clone returns a deep copy so callers can stamp timestamps or default
// maps without aliasing a shared record.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	cp := *d
	if d.CustomFieldSchema != nil {
		cp.CustomFieldSchema = append([]FieldSchema(nil), d.CustomFieldSchema...)
	}
	if d.CustomFieldValues != nil {
		cp.CustomFieldValues = make(map[string]json.RawMessage, len(d.CustomFieldValues))
		for k, v := range d.CustomFieldValues {
			cp.CustomFieldValues[k] = append(json.RawMessage(nil), v...)
		}
	}
	if d.Categories != nil {
		cp.Categories = append([]string(nil), d.Categories...)
	}
	if d.Settings != nil {
		s := d.Settings.Clone()
		cp.Settings = &s
	}
	return &cp
}

// HasCategory reports whether the document is tagged with category.
func (d *Document) HasCategory(category string) bool {
	for _, c := range d.Categories {
		if strings.EqualFold(strings.TrimSpace(c), category) {
			return true
		}
	}
	return false
}

// TemplateName is the stem used to look up on-disk template source.
func (d *Document) TemplateName() string {
	if d.TemplateKey != "" {
		return d.TemplateKey
	}
	return d.ID
}

// FieldSchemaFor returns the schema entry named name, if present.
func (d *Document) FieldSchemaFor(name string) (FieldSchema, bool) {
	for _, f := range d.CustomFieldSchema {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSchema{}, false
}
