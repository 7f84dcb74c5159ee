// FILE: lixenwraith/chainconf/chain.go
package chainconf

import (
	"maps"
	"slices"
)

// Value is one layer of a key's override chain.
type Value struct {
	Text   string // Value text, meaningful only when Valid
	Valid  bool   // False for absent (null) values
	Origin string // File the value was read from
}

// Text returns a valid Value holding s.
func Text(s string) Value {
	return Value{Text: s, Valid: true}
}

// Chain is the ordered list of candidate values for one key.
// Index 0 has the highest priority; later entries are fallbacks.
type Chain []Value

// Head returns the first valid value of the chain.
func (c Chain) Head() (string, bool) {
	for _, v := range c {
		if v.Valid {
			return v.Text, true
		}
	}
	return "", false
}

// Texts returns the text of every valid entry, in priority order.
func (c Chain) Texts() []string {
	texts := make([]string, 0, len(c))
	for _, v := range c {
		if v.Valid {
			texts = append(texts, v.Text)
		}
	}
	return texts
}

// Map is a resolved, read-only mapping from key to its override chain.
// A Map is never modified after it has been returned by a Source.
type Map struct {
	chains map[string]Chain
}

func newMap(chains map[string]Chain) *Map {
	if chains == nil {
		chains = make(map[string]Chain)
	}
	return &Map{chains: chains}
}

// Len returns the number of keys.
func (m *Map) Len() int {
	return len(m.chains)
}

// Keys returns all keys in sorted order.
func (m *Map) Keys() []string {
	return slices.Sorted(maps.Keys(m.chains))
}

// Has reports whether key has a chain, even one with only absent values.
func (m *Map) Has(key string) bool {
	_, ok := m.chains[key]
	return ok
}

// Chain returns a copy of the chain for key.
func (m *Map) Chain(key string) (Chain, bool) {
	c, ok := m.chains[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(c), true
}

// Lookup returns the highest-priority valid value for key.
func (m *Map) Lookup(key string) (string, bool) {
	return m.chains[key].Head()
}

// Range calls fn for each key in sorted order until fn returns false.
// The chain passed to fn must not be modified.
func (m *Map) Range(fn func(key string, chain Chain) bool) {
	for _, key := range m.Keys() {
		if !fn(key, m.chains[key]) {
			return
		}
	}
}
