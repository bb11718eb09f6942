package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
)

// TemplateSource yields the template text for a layout, block or fragment
// definition.
type TemplateSource interface {
	Source(doc *content.Document) (string, error)
}

// InlineSource uses the document body as-is.
type InlineSource struct{}

func (InlineSource) Source(doc *content.Document) (string, error) { return doc.Body, nil }

// FileTemplates falls back to <dir>/<templateKey>.html for documents with
// an empty body. File contents are cached until invalidated.
type FileTemplates struct {
	dir   string
	mu    sync.RWMutex
	cache map[string]string
}

// NewFileTemplates reads on-disk templates from dir.
func NewFileTemplates(dir string) *FileTemplates {
	return &FileTemplates{dir: dir, cache: make(map[string]string)}
}

// Dir is the directory templates are read from.
func (f *FileTemplates) Dir() string { return f.dir }

// Source returns the inline body or the cached file for the document's
// template key.
func (f *FileTemplates) Source(doc *content.Document) (string, error) {
	if doc.Body != "" {
		return doc.Body, nil
	}
	name := doc.TemplateName()
	if f.dir == "" {
		return "", fmt.Errorf("template %s has no body and no template directory is configured", name)
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid template key %q", name)
	}

	f.mu.RLock()
	src, ok := f.cache[name]
	f.mu.RUnlock()
	if ok {
		return src, nil
	}

	// #nosec G304 - name has no path separators
	data, err := os.ReadFile(filepath.Join(f.dir, name+".html"))
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	f.mu.Lock()
	f.cache[name] = string(data)
	f.mu.Unlock()
	return string(data), nil
}

// Invalidate drops the cached file belonging to path, which may be a bare
// template key or a file path inside the template directory.
func (f *FileTemplates) Invalidate(path string) {
	name := strings.TrimSuffix(filepath.Base(path), ".html")
	f.mu.Lock()
	delete(f.cache, name)
	f.mu.Unlock()
}

// InvalidateAll empties the cache.
func (f *FileTemplates) InvalidateAll() {
	f.mu.Lock()
	f.cache = make(map[string]string)
	f.mu.Unlock()
}

// Template is a compiled layout, block or fragment definition. A template
// that failed to load or parse keeps its error and reports it on Execute.
type Template struct {
	doc  *content.Document
	tmpl *template.Template
	err  error
}

// Compile parses the template source of doc.
func Compile(doc *content.Document, src TemplateSource) *Template {
	t := &Template{doc: doc}
	text, err := src.Source(doc)
	if err != nil {
		t.err = err
		return t
	}
	t.tmpl, t.err = template.New(doc.ID).Funcs(FuncMap()).Parse(text)
	if t.err != nil {
		t.err = fmt.Errorf("parse template %s: %w", doc.ID, t.err)
	}
	return t
}

// ID is the definition's document id.
func (t *Template) ID() string { return t.doc.ID }

// Doc is the definition document.
func (t *Template) Doc() *content.Document { return t.doc }

// Schema is the definition's custom field schema.
func (t *Template) Schema() []content.FieldSchema { return t.doc.CustomFieldSchema }

// Err reports a load or parse failure.
func (t *Template) Err() error { return t.err }

// Execute renders the template with data.
func (t *Template) Execute(data any) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	if t.tmpl == nil {
		return "", errors.New("template not compiled")
	}
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", t.doc.ID, err)
	}
	return buf.String(), nil
}

// Table is an immutable lookup of compiled templates, by id and by
// template key.
type Table struct {
	byID  map[string]*Template
	byKey map[string]*Template
}

// NewTable compiles every document once. When two documents share a
// template key the first one wins.
func NewTable(docs []*content.Document, src TemplateSource) *Table {
	if src == nil {
		src = InlineSource{}
	}
	t := &Table{
		byID:  make(map[string]*Template, len(docs)),
		byKey: make(map[string]*Template, len(docs)),
	}
	for _, d := range docs {
		if d == nil || d.ID == "" {
			continue
		}
		c := Compile(d, src)
		t.byID[d.ID] = c
		if d.TemplateKey != "" {
			if _, exists := t.byKey[d.TemplateKey]; !exists {
				t.byKey[d.TemplateKey] = c
			}
		}
	}
	return t
}

// Lookup finds a template by document id.
func (t *Table) Lookup(id string) (*Template, bool) {
	if t == nil {
		return nil, false
	}
	c, ok := t.byID[id]
	return c, ok
}

// LookupKey finds a template by template key.
func (t *Table) LookupKey(key string) (*Template, bool) {
	if t == nil {
		return nil, false
	}
	c, ok := t.byKey[key]
	return c, ok
}

// Len is the number of compiled templates.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byID)
}
