// File: lixenwraith/chainconf/doc.go

// Package chainconf resolves layered configuration files into per-key
// override chains with macro expansion and host path normalization.
//
// A Source wraps one configuration file. The first call to Source.Map reads
// the file, flattens it (and every file it includes) into chains of
// candidate values, most specific first, and finalizes every value:
//   - $(Name) tokens are replaced by constants of the Environment
//   - absolute paths get native separators on backslash hosts
//
// The result is cached. Concurrent callers share a single resolution and
// the same *Map instance. A file that fails to load is logged once and the
// Source serves an empty Map from then on; Source.Err exposes the cause.
//
// Quick Start:
//
//	src := chainconf.NewSource("project.toml", nil)
//	m := src.Map()
//	out, _ := m.String("build.output") // "out/Release/bin" for "out/$(Configuration)/bin"
//
// File format (default FileLoader, TOML shown; YAML and JSON are equivalent):
//
//	include = ["defaults.toml"]  # fallback layer
//
//	[build]
//	output = "out/$(Configuration)/bin"
//
//	["if HOST_WINDOWS".build]
//	sdk = "C:/sdk"
//
//	["if !HOST_WINDOWS".build]
//	sdk = "/opt/sdk"
//
// Custom setup:
//
//	src, err := chainconf.NewBuilder().
//	    WithFile("project.conf").
//	    WithFormat("toml").
//	    WithEnvironment(chainconf.NewEnvironment(
//	        map[string]string{"Configuration": "Debug"}, "DEV")).
//	    WithLogger(logger).
//	    Build()
//
// Thread Safety:
// Source, Map and Environment are safe for concurrent use. Map and
// Environment are immutable; Source resolves under a per-source lock and
// publishes the finished Map atomically.
package chainconf
