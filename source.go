// FILE: lixenwraith/chainconf/source.go
package chainconf

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// State describes the resolution progress of a Source.
type State int32

const (
	// StateUnresolved means Map has not completed yet
	StateUnresolved State = iota
	// StateResolved means the file was loaded and finalized
	StateResolved
	// StateFailed means loading failed; the Source serves an empty Map forever
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// resolution is the immutable outcome published by a Source.
type resolution struct {
	m   *Map
	err error
}

// Source is one configuration file together with the environment it is
// resolved in. The file is loaded, flattened and finalized at most once,
// on the first call to Map; all callers share the resulting Map.
// The zero value is usable: it has no file, so it resolves to a failed
// Source with an empty Map.
type Source struct {
	filename string
	env      *Environment
	loader   Loader
	read     ReadFunc
	logger   *slog.Logger

	mu     sync.Mutex // Serializes the first resolve
	result atomic.Pointer[resolution]
}

// NewSource creates a Source for filename resolved in env with the default
// loader, os.ReadFile and slog.Default. A nil env uses DefaultEnvironment.
func NewSource(filename string, env *Environment) *Source {
	if env == nil {
		env = DefaultEnvironment()
	}
	return &Source{
		filename: filename,
		env:      env,
		loader:   FileLoader{},
		read:     os.ReadFile,
		logger:   slog.Default(),
	}
}

// Map returns the resolved map, resolving it on first use.
// It never fails: if loading fails the error is logged once, kept for Err,
// and an empty Map is returned now and on every later call.
func (s *Source) Map() *Map {
	if r := s.result.Load(); r != nil {
		return r.m
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r := s.result.Load(); r != nil {
		return r.m
	}

	r := s.resolve()
	s.result.Store(r)
	return r.m
}

// Err returns the load error of a failed Source, or nil.
// It does not trigger resolution.
func (s *Source) Err() error {
	if r := s.result.Load(); r != nil {
		return r.err
	}
	return nil
}

// State reports the resolution state without triggering resolution.
func (s *Source) State() State {
	r := s.result.Load()
	switch {
	case r == nil:
		return StateUnresolved
	case r.err != nil:
		return StateFailed
	default:
		return StateResolved
	}
}

// Resolved reports whether Map has completed, successfully or not.
func (s *Source) Resolved() bool {
	return s.result.Load() != nil
}

// Filename returns the path of the configuration file.
func (s *Source) Filename() string {
	return s.filename
}

// Environment returns the environment the source is resolved in.
func (s *Source) Environment() *Environment {
	if s.env == nil {
		return DefaultEnvironment()
	}
	return s.env
}

// String returns the file path, identifying the source.
func (s *Source) String() string {
	return s.filename
}

// resolve loads and finalizes the file. Must be called with mu held.
func (s *Source) resolve() *resolution {
	chains, err := s.load()
	if err != nil {
		display := DisplayPath(s.filename)
		s.log().Error("failed to load configuration", "path", display, "error", err)
		return &resolution{
			m:   newMap(nil),
			err: &LoadError{Path: display, Err: err},
		}
	}

	m := finalize(chains, s.Environment())
	s.log().Debug("configuration resolved", "path", DisplayPath(s.filename), "keys", m.Len())
	return &resolution{m: m}
}

// load reads and flattens the file. A panic in an injected collaborator is
// reported as an error so that it cannot escape Map.
func (s *Source) load() (chains map[string]Chain, err error) {
	defer func() {
		if p := recover(); p != nil {
			chains, err = nil, fmt.Errorf("panic during load: %v", p)
		}
	}()

	read := s.read
	if read == nil {
		read = os.ReadFile
	}
	loader := s.loader
	if loader == nil {
		loader = FileLoader{}
	}

	data, err := readConfigFile(read, s.filename)
	if err != nil {
		return nil, err
	}
	return loader.Load(s.filename, data, read, s.Environment().Defines())
}

func (s *Source) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// finalize builds the published Map from loader output: every valid value
// has its macros expanded against the environment constants, then absolute
// paths are converted to native separators on backslash hosts.
// The input is not modified.
func finalize(raw map[string]Chain, env *Environment) *Map {
	sep := env.Separator()
	chains := make(map[string]Chain, len(raw))

	for key, chain := range raw {
		out := make(Chain, len(chain))
		for i, v := range chain {
			if v.Valid {
				v.Text = ExpandMacros(v.Text, env.Constant)
				if sep == '\\' && IsFullPath(v.Text) {
					v.Text = UnixToNative(v.Text, sep)
				}
			}
			out[i] = v
		}
		chains[key] = out
	}

	return newMap(chains)
}
