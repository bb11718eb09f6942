// Package normalization maps loosely written configuration strings onto
// closed enum sets.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer converts strings to enum values of type T.
type Normalizer[T comparable] struct {
	valid    map[string]T
	fallback T
	keys     []string
}

// NewNormalizer builds a normalizer over values. Keys are matched after
// trimming and lower-casing; unknown input maps to fallback.
func NewNormalizer[T comparable](values map[string]T, fallback T) *Normalizer[T] {
	n := &Normalizer[T]{valid: make(map[string]T, len(values)), fallback: fallback}
	for k, v := range values {
		key := clean(k)
		n.valid[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

// Normalize returns the enum value for raw, or the fallback.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.valid[clean(raw)]; ok {
		return v
	}
	return n.fallback
}

// Parse returns the enum value for raw or an error listing valid values.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	if v, ok := n.valid[clean(raw)]; ok {
		return v, nil
	}
	return n.fallback, fmt.Errorf("invalid value %q (valid: %s)", raw, strings.Join(n.keys, ", "))
}

// ValidKeys lists the accepted spellings, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	return append([]string(nil), n.keys...)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
