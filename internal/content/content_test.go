package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentDecode(t *testing.T) {
	raw := `{
		"id": "p1", "otype": "Page", "path": "blog/2024/post-a", "layout": "l1",
		"navsort": "3", "listnav": true, "categories": ["news"],
		"customFieldSchema": [{"name": "meta", "kind": "JSON"}, {"name": "body", "kind": "wysiwyg"}],
		"customFieldValues": {"meta": "{\"a\":1}", "hero": [{"definitionId": "f1"}]}
	}`
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.NoError(t, doc.Validate())

	assert.Equal(t, TypePage, doc.OType)
	assert.InDelta(t, 3.0, doc.NavSort.Float64(), 0)
	assert.Equal(t, KindJSON, doc.CustomFieldSchema[0].Kind)
	assert.Equal(t, KindText, doc.CustomFieldSchema[1].Kind, "unknown kinds degrade to text")
	assert.True(t, doc.HasCategory("NEWS"))

	schema, ok := doc.FieldSchemaFor("meta")
	require.True(t, ok)
	assert.True(t, schema.RequiresParse())
}

func TestDocumentValidate(t *testing.T) {
	assert.Error(t, (&Document{OType: TypePage, Path: "a"}).Validate())
	assert.Error(t, (&Document{ID: "x", OType: "Widget"}).Validate())
	assert.Error(t, (&Document{ID: "x", OType: TypePage}).Validate())
	assert.NoError(t, (&Document{ID: "l", OType: TypeLayout}).Validate())
}

func TestDocumentCloneDoesNotAlias(t *testing.T) {
	doc := &Document{
		ID: "p1", OType: TypePage, Path: "a",
		CustomFieldValues: map[string]json.RawMessage{"x": json.RawMessage(`"1"`)},
		Settings:          &GlobalConfig{Vars: map[string]any{"k": "v"}},
	}
	cp := doc.Clone()
	cp.CustomFieldValues["x"] = json.RawMessage(`"2"`)
	cp.Settings.Vars["k"] = "changed"

	assert.JSONEq(t, `"1"`, string(doc.CustomFieldValues["x"]))
	assert.Equal(t, "v", doc.Settings.Vars["k"])
}

func TestFlexNumber(t *testing.T) {
	cases := map[string]float64{
		`5`:          5,
		`"2.5"`:      2.5,
		`"abc"`:      0,
		`true`:       0,
		`null`:       0,
		`" 7 "`:      7,
		`"NaN"`:      0,
		`"nan"`:      0,
		`"Infinity"`: 0,
		`"-Inf"`:     0,
		`"1e400"`:    0,
		`1e400`:      0,
	}
	for in, want := range cases {
		var f FlexNumber
		require.NoError(t, json.Unmarshal([]byte(in), &f), in)
		assert.InDelta(t, want, f.Float64(), 0, in)
	}
}

func TestDecodeInstances(t *testing.T) {
	nested := `[{"definitionId":"card","fieldValues":[{"name":"items","kind":"fragments","nestedInstances":[{"definitionId":"item"}]}]}]`

	got, err := DecodeInstances(json.RawMessage(nested))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, KindFragments, got[0].FieldValues[0].Kind)
	assert.Equal(t, "item", got[0].FieldValues[0].NestedInstances[0].DefinitionID)

	quoted, err := json.Marshal(nested)
	require.NoError(t, err)
	got, err = DecodeInstances(quoted)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = DecodeInstances(json.RawMessage(`""`))
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = DecodeInstances(json.RawMessage(`{"oops":1}`))
	assert.Error(t, err)
}

func TestParseJSONValue(t *testing.T) {
	v, _, err := ParseJSONValue(json.RawMessage(`"{\"a\":[1,2]}"`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{1.0, 2.0}}, v)

	v, _, err = ParseJSONValue(json.RawMessage(`{"b":true}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": true}, v)

	_, text, err := ParseJSONValue(json.RawMessage(`"{not json"`))
	assert.Error(t, err)
	assert.Equal(t, "{not json", text)
}

func TestPlainValue(t *testing.T) {
	assert.Equal(t, "hello", PlainValue(json.RawMessage(`"hello"`)))
	assert.Equal(t, 3.0, PlainValue(json.RawMessage(`3`)))
	assert.Equal(t, "", PlainValue(nil))
}

func TestGlobalConfigDefaults(t *testing.T) {
	g := GlobalConfig{SiteURL: "https://own.example"}
	out := g.WithDefaults("https://site.example", "https://cdn.example")
	assert.Equal(t, "https://own.example", out.SiteURL)
	assert.Equal(t, "https://cdn.example", out.CDNBaseURL)
}
