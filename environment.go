// FILE: lixenwraith/chainconf/environment.go
package chainconf

import (
	"maps"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
)

// Build-time facts. Override with:
//
//	go build -ldflags "-X github.com/lixenwraith/chainconf.buildMode=Debug -X github.com/lixenwraith/chainconf.devBuild=true"
var (
	buildMode = "Release"
	devBuild  = "false"
)

const (
	// ConstantConfiguration names the constant holding the build mode.
	ConstantConfiguration = "Configuration"

	// DefineDev is added to the default defines of development builds.
	DefineDev = "DEV"
)

// BuildMode reports the build mode the library was linked with.
func BuildMode() string {
	return buildMode
}

// IsDevBuild reports whether this is a development build.
func IsDevBuild() bool {
	return devBuild == "true" || devBuild == "1"
}

// Constants maps macro names to their replacement text.
type Constants map[string]string

// Defines is a set of flags selecting conditional branches in configuration files.
type Defines map[string]struct{}

// NewDefines builds a set from flags. Empty flags are ignored.
func NewDefines(flags ...string) Defines {
	d := make(Defines, len(flags))
	for _, f := range flags {
		if f != "" {
			d[f] = struct{}{}
		}
	}
	return d
}

// Has reports whether the flag is set.
func (d Defines) Has(flag string) bool {
	_, ok := d[flag]
	return ok
}

// List returns the flags in sorted order.
func (d Defines) List() []string {
	return slices.Sorted(maps.Keys(d))
}

// DefaultDefines returns the defines describing the host platform.
func DefaultDefines() []string {
	defines := []string{
		"HOST_" + strings.ToUpper(runtime.GOOS),
		"HOST_" + strings.ToUpper(runtime.GOARCH),
	}
	if runtime.GOOS != "windows" {
		defines = append(defines, "HOST_UNIX")
	}
	return defines
}

// Environment is the immutable resolution context shared by sources:
// the constant table used for macro expansion, the active defines and
// the path separator of the target host.
type Environment struct {
	constants Constants
	defines   Defines
	separator rune
}

// NewEnvironment copies constants and defines into a new Environment using
// the host path separator.
func NewEnvironment(constants map[string]string, defines ...string) *Environment {
	c := make(Constants, len(constants))
	maps.Copy(c, constants)
	return &Environment{
		constants: c,
		defines:   NewDefines(defines...),
		separator: filepath.Separator,
	}
}

var defaultEnvironment = sync.OnceValue(func() *Environment {
	defines := DefaultDefines()
	if IsDevBuild() {
		defines = append(defines, DefineDev)
	}
	return NewEnvironment(map[string]string{ConstantConfiguration: BuildMode()}, defines...)
})

// DefaultEnvironment returns the process-wide environment derived from the
// build mode and host platform. It is built on first use.
func DefaultEnvironment() *Environment {
	return defaultEnvironment()
}

// WithSeparator returns a copy of the environment targeting a host with the
// given path separator.
func (e *Environment) WithSeparator(sep rune) *Environment {
	cp := *e
	cp.separator = sep
	return &cp
}

// Constant looks up a constant by name. It has the LookupFunc signature.
func (e *Environment) Constant(name string) (string, bool) {
	v, ok := e.constants[name]
	return v, ok
}

// HasDefine reports whether a define is active.
func (e *Environment) HasDefine(flag string) bool {
	return e.defines.Has(flag)
}

// Defines returns a copy of the active defines.
func (e *Environment) Defines() Defines {
	return maps.Clone(e.defines)
}

// Separator returns the target path separator.
func (e *Environment) Separator() rune {
	return e.separator
}
