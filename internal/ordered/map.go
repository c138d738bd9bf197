// Package ordered provides an insertion-ordered map.
package ordered

// Map is an associative container that iterates in insertion order.
// The zero value is not usable; call NewMap.
type Map[K comparable, V any] struct {
	index map[K]int
	keys  []K
	vals  []V
}

// NewMap creates an empty map with room for n entries.
func NewMap[K comparable, V any](n int) *Map[K, V] {
	return &Map[K, V]{
		index: make(map[K]int, n),
		keys:  make([]K, 0, n),
		vals:  make([]V, 0, n),
	}
}

// Add inserts v under k unless k is already present. It reports whether
// the value was inserted; an existing entry is never replaced.
func (m *Map[K, V]) Add(k K, v V) bool {
	if _, ok := m.index[k]; ok {
		return false
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
	return true
}

// Set inserts or replaces the value under k. A replaced entry keeps its
// original position.
func (m *Map[K, V]) Set(k K, v V) {
	if i, ok := m.index[k]; ok {
		m.vals[i] = v
		return
	}
	m.Add(k, v)
}

// Get returns the value under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	i, ok := m.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return m.vals[i], true
}

// Has reports whether k is present.
func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.index[k]
	return ok
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (m *Map[K, V]) Keys() []K {
	return m.keys
}

// Values returns the values in insertion order. The slice must not be modified.
func (m *Map[K, V]) Values() []V {
	return m.vals
}

// Each calls fn for every entry in insertion order until fn returns false.
func (m *Map[K, V]) Each(fn func(k K, v V) bool) {
	for i, k := range m.keys {
		if !fn(k, m.vals[i]) {
			return
		}
	}
}

// Filter returns a new map holding the entries for which keep returns true,
// in the same relative order.
func (m *Map[K, V]) Filter(keep func(k K, v V) bool) *Map[K, V] {
	out := NewMap[K, V](0)
	for i, k := range m.keys {
		if keep(k, m.vals[i]) {
			out.Add(k, m.vals[i])
		}
	}
	return out
}
