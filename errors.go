// FILE: lixenwraith/chainconf/errors.go
package chainconf

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrUnknownFormat is returned when no parser matches the file.
	ErrUnknownFormat = errors.New("unable to determine config format")

	// ErrIncludeCycle is returned when a file includes itself directly or indirectly.
	ErrIncludeCycle = errors.New("include cycle detected")

	// ErrIncludeDepth is returned when includes nest deeper than the loader allows.
	ErrIncludeDepth = errors.New("include depth exceeded")

	// ErrKeyNotFound is returned by typed accessors for keys without a value.
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeyConflict is returned by Decode when a key is both a value and a table.
	ErrKeyConflict = errors.New("key conflict")

	// ErrNoFile is returned by the builder when no file was configured.
	ErrNoFile = errors.New("no configuration file specified")
)

// LoadError records a failed resolve of a Source.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
