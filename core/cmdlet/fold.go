package cmdlet

import "strings"

// foldKey normalizes a name for case-insensitive lookups.
func foldKey(name string) string {
	return strings.ToLower(name)
}

// foldMap is an insertion ordered map with case-insensitive string keys.
// The first spelling a key was stored with is kept for display.
type foldMap[V any] struct {
	keys   []string
	values map[string]V
}

func newFoldMap[V any]() *foldMap[V] {
	return &foldMap[V]{values: make(map[string]V)}
}

// Get returns the value stored under any casing of key.
func (m *foldMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[foldKey(key)]
	return v, ok
}

// Has reports whether any casing of key is present.
func (m *foldMap[V]) Has(key string) bool {
	_, ok := m.values[foldKey(key)]
	return ok
}

// Put stores the value, it returns false without modifying the map if the key
// is already present.
func (m *foldMap[V]) Put(key string, value V) bool {
	folded := foldKey(key)
	if _, ok := m.values[folded]; ok {
		return false
	}
	m.keys = append(m.keys, key)
	m.values[folded] = value
	return true
}

// Keys returns the keys in insertion order with their original casing.
func (m *foldMap[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *foldMap[V]) Len() int {
	return len(m.keys)
}
