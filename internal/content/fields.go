package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FieldKind is the closed set of custom field kinds. Composer dispatch is an
// exhaustive switch over these values.
type FieldKind string

const (
	KindText      FieldKind = "text"
	KindJSON      FieldKind = "json"
	KindFragments FieldKind = "fragments"
	KindImage     FieldKind = "image"
	KindMarkdown  FieldKind = "markdown"
)

// ParseFieldKind maps a raw kind string onto the enum. Aliases used by older
// editors are accepted; anything unknown is treated as text.
func ParseFieldKind(raw string) FieldKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return KindJSON
	case "fragments", "microtemplates", "nested", "fragment-list":
		return KindFragments
	case "image", "img":
		return KindImage
	case "markdown", "md":
		return KindMarkdown
	default:
		return KindText
	}
}

// UnmarshalJSON normalises unknown kinds instead of failing the whole record.
func (k *FieldKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("field kind: %w", err)
	}
	*k = ParseFieldKind(s)
	return nil
}

// FieldSchema describes one custom field of a layout or fragment definition.
type FieldSchema struct {
	Name  string    `json:"name"`
	Kind  FieldKind `json:"kind"`
	Parse bool      `json:"parse,omitempty"`
}

// RequiresParse reports whether the stored value is JSON text that must be
// decoded before rendering.
func (f FieldSchema) RequiresParse() bool {
	return f.Kind == KindJSON || f.Parse
}

// FragmentInstance is one author-populated occurrence of a fragment
// definition. Instances are plain tree data: nested instances are owned by
// their parent field value, never shared.
type FragmentInstance struct {
	DefinitionID string       `json:"definitionId"`
	FieldValues  []FieldValue `json:"fieldValues,omitempty"`
}

// FieldValue is a single field of a fragment instance.
type FieldValue struct {
	Name            string             `json:"name"`
	Kind            FieldKind          `json:"kind"`
	Value           json.RawMessage    `json:"value,omitempty"`
	NestedInstances []FragmentInstance `json:"nestedInstances,omitempty"`
}

// DecodeInstances reads a nested-fragment-list value. The store keeps these
// either as a JSON array or as a string containing one.
func DecodeInstances(raw json.RawMessage) ([]FragmentInstance, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		raw = json.RawMessage(s)
	}
	var out []FragmentInstance
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode fragment instances: %w", err)
	}
	return out, nil
}

// PlainValue decodes a raw value for pass-through rendering: JSON strings
// become Go strings, everything else the generic decoded form.
func PlainValue(raw json.RawMessage) any {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

// ParseJSONValue decodes a JSON-kind value. A string value is treated as
// JSON text and parsed; an already structured value is returned decoded.
// On failure the raw text is returned with the parse error.
func ParseJSONValue(raw json.RawMessage) (any, string, error) {
	raw = bytes.TrimSpace(raw)
	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, string(raw), err
		}
		var v any
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return nil, text, err
		}
		return v, text, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, text, err
	}
	return v, text, nil
}
