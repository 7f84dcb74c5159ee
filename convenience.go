// File: lixenwraith/chainconf/convenience.go
package chainconf

import "sync"

// sources caches one Source per path for Quick.
var sources sync.Map // map[string]*Source

// Quick returns the resolved map of the file at path using the default
// environment. Repeated calls with the same path share one Source, so the
// file is resolved at most once per process.
func Quick(path string) *Map {
	return QuickSource(path).Map()
}

// QuickSource returns the shared Source for path used by Quick.
func QuickSource(path string) *Source {
	if s, ok := sources.Load(path); ok {
		return s.(*Source)
	}
	s, _ := sources.LoadOrStore(path, NewSource(path, nil))
	return s.(*Source)
}
