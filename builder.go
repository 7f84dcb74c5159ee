// File: lixenwraith/chainconf/builder.go
package chainconf

import (
	"fmt"
	"log/slog"
)

// Builder provides a fluent interface for building sources
type Builder struct {
	file   string
	env    *Environment
	loader Loader
	format string
	read   ReadFunc
	logger *slog.Logger
	err    error
}

// NewBuilder creates a new source builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithFile sets the configuration file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithEnvironment sets the constants and defines used for resolution.
// A nil environment selects DefaultEnvironment.
func (b *Builder) WithEnvironment(env *Environment) *Builder {
	b.env = env
	return b
}

// WithLoader replaces the default FileLoader
func (b *Builder) WithLoader(loader Loader) *Builder {
	if loader == nil {
		b.err = fmt.Errorf("loader cannot be nil")
	}
	b.loader = loader
	return b
}

// WithFormat forces the file format of the default loader ("toml", "yaml", "json")
func (b *Builder) WithFormat(format string) *Builder {
	switch format {
	case "", "auto", "toml", "yaml", "json":
		b.format = format
	default:
		b.err = fmt.Errorf("unsupported file format %q", format)
	}
	return b
}

// WithReader sets the function used to read the file and its includes
func (b *Builder) WithReader(read ReadFunc) *Builder {
	if read == nil {
		b.err = fmt.Errorf("reader cannot be nil")
	}
	b.read = read
	return b
}

// WithLogger sets the logger receiving load diagnostics
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger == nil {
		b.err = fmt.Errorf("logger cannot be nil")
	}
	b.logger = logger
	return b
}

// Build creates the Source with all specified options.
// The file is not read until the Source's Map is first requested.
func (b *Builder) Build() (*Source, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.file == "" {
		return nil, ErrNoFile
	}

	s := NewSource(b.file, b.env)
	if b.loader != nil {
		if b.format != "" {
			return nil, fmt.Errorf("format %q cannot be combined with a custom loader", b.format)
		}
		s.loader = b.loader
	} else {
		s.loader = FileLoader{Format: b.format}
	}
	if b.read != nil {
		s.read = b.read
	}
	if b.logger != nil {
		s.logger = b.logger
	}

	return s, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Source {
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("source build failed: %v", err))
	}
	return s
}
