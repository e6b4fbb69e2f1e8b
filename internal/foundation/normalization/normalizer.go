// Package normalization maps free-form configuration strings onto typed enum values.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Normalizer maps case- and whitespace-insensitive keys (plus aliases) to enum values.
type Normalizer[T comparable] struct {
	name         string
	values       map[string]T
	defaultValue T
	keys         []string
}

// NewNormalizer creates a normalizer named after the setting it normalizes.
// Keys are cleaned with Clean before being stored.
func NewNormalizer[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	n := &Normalizer[T]{
		name:         name,
		values:       make(map[string]T, len(values)),
		defaultValue: defaultValue,
	}
	for k, v := range values {
		n.values[Clean(k)] = v
	}
	n.keys = make([]string, 0, len(n.values))
	for k := range n.values {
		n.keys = append(n.keys, k)
	}
	slices.Sort(n.keys)
	return n
}

// WithAliases registers extra spellings for existing values.
func (n *Normalizer[T]) WithAliases(aliases map[string]T) *Normalizer[T] {
	for k, v := range aliases {
		n.values[Clean(k)] = v
	}
	return n
}

// Normalize returns the value for raw, or the default when raw is empty or unknown.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[Clean(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// NormalizeWithError is like Normalize but rejects unknown non-empty input.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	cleaned := Clean(raw)
	if cleaned == "" {
		return n.defaultValue, nil
	}
	if v, ok := n.values[cleaned]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", n.name, raw, strings.Join(n.keys, ", "))
}

// ValidKeys returns the canonical keys (aliases excluded), sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	return slices.Clone(n.keys)
}

// Clean lowercases and trims s.
func Clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
