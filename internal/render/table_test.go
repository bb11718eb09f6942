package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
)

func TestFileTemplates(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "default.html")
	require.NoError(t, os.WriteFile(file, []byte("v1 {{.title}}"), 0o600))

	src := NewFileTemplates(dir)
	doc := &content.Document{ID: "L1", OType: content.TypeLayout, TemplateKey: "default"}

	got, err := src.Source(doc)
	require.NoError(t, err)
	assert.Equal(t, "v1 {{.title}}", got)

	require.NoError(t, os.WriteFile(file, []byte("v2"), 0o600))
	got, _ = src.Source(doc)
	assert.Equal(t, "v1 {{.title}}", got, "served from cache until invalidated")

	src.Invalidate(file)
	got, _ = src.Source(doc)
	assert.Equal(t, "v2", got)

	inline := &content.Document{ID: "L2", OType: content.TypeLayout, TemplateKey: "default", Body: "inline"}
	got, _ = src.Source(inline)
	assert.Equal(t, "inline", got)
}

func TestFileTemplatesErrors(t *testing.T) {
	src := NewFileTemplates(t.TempDir())
	_, err := src.Source(&content.Document{ID: "x", TemplateKey: "missing"})
	assert.Error(t, err)
	_, err = src.Source(&content.Document{ID: "x", TemplateKey: "../etc/passwd"})
	assert.Error(t, err)

	_, err = NewFileTemplates("").Source(&content.Document{ID: "x"})
	assert.Error(t, err)
}

func TestTableLookup(t *testing.T) {
	table := NewTable([]*content.Document{
		{ID: "a", TemplateKey: "default", Body: "A"},
		{ID: "b", TemplateKey: "default", Body: "B"},
		{ID: "c", Body: "{{ broken"},
		nil,
	}, nil)

	assert.Equal(t, 3, table.Len())

	byKey, ok := table.LookupKey("default")
	require.True(t, ok)
	assert.Equal(t, "a", byKey.ID())

	c, ok := table.Lookup("c")
	require.True(t, ok)
	assert.Error(t, c.Err())
	_, err := c.Execute(nil)
	assert.Error(t, err)

	_, ok = table.Lookup("zzz")
	assert.False(t, ok)

	var empty *Table
	_, ok = empty.Lookup("a")
	assert.False(t, ok)
}

func TestCompileWithFileSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hero.html"), []byte(`<h1>{{.title}}</h1>`), 0o600))

	tmpl := Compile(&content.Document{ID: "f1", OType: content.TypeFragment, TemplateKey: "hero"}, NewFileTemplates(dir))
	require.NoError(t, tmpl.Err())
	out, err := tmpl.Execute(map[string]any{"title": "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hi</h1>", out)
}
