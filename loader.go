// FILE: lixenwraith/chainconf/loader.go
package chainconf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultMaxIncludeDepth bounds include nesting for FileLoader.
const DefaultMaxIncludeDepth = 16

// ReadFunc returns the full contents of a file.
type ReadFunc func(path string) ([]byte, error)

// Loader parses the text of a configuration file and flattens it, together
// with any files it references, into per-key override chains. Referenced
// files must be read through read. Only branches selected by defines apply.
type Loader interface {
	Load(path string, data []byte, read ReadFunc, defines Defines) (map[string]Chain, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string, data []byte, read ReadFunc, defines Defines) (map[string]Chain, error)

// Load calls f.
func (f LoaderFunc) Load(path string, data []byte, read ReadFunc, defines Defines) (map[string]Chain, error) {
	return f(path, data, read, defines)
}

// FileLoader is the default Loader for TOML, YAML and JSON files.
//
// Nested tables are flattened to dot-separated keys. A table keyed
// "if NAME" (or "if !NAME") applies only when the define NAME is (not)
// active, and its values take priority over plain values of the same key.
// The root key "include" lists further files, relative to the including
// file, whose values become fallbacks after the including file's own.
type FileLoader struct {
	// Format forces a parser: "toml", "yaml" or "json". Empty or "auto"
	// detects the format from the extension, then from the content.
	Format string

	// MaxIncludeDepth limits include nesting (default DefaultMaxIncludeDepth)
	MaxIncludeDepth int
}

// Load implements Loader.
func (l FileLoader) Load(path string, data []byte, read ReadFunc, defines Defines) (map[string]Chain, error) {
	if read == nil {
		read = os.ReadFile
	}
	st := &loadState{
		read:     read,
		defines:  defines,
		visiting: make(map[string]bool),
		loaded:   make(map[string]bool),
		out:      make(map[string]Chain),
	}
	if err := l.loadFile(st, path, data, 0); err != nil {
		return nil, err
	}
	return st.out, nil
}

// loadState is shared by one Load call and every file it includes.
// visiting holds the current include stack; loaded holds every file already
// merged, so a file reached through two includes contributes once.
type loadState struct {
	read     ReadFunc
	defines  Defines
	visiting map[string]bool
	loaded   map[string]bool
	out      map[string]Chain
}

func (l FileLoader) loadFile(st *loadState, path string, data []byte, depth int) error {
	maxDepth := l.MaxIncludeDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxIncludeDepth
	}
	if depth > maxDepth {
		return fmt.Errorf("%w: '%s' nested deeper than %d", ErrIncludeDepth, path, maxDepth)
	}

	key := filepath.Clean(path)
	if st.visiting[key] {
		return fmt.Errorf("%w: '%s'", ErrIncludeCycle, path)
	}
	st.visiting[key] = true
	st.loaded[key] = true
	defer delete(st.visiting, key)

	tree, err := l.parse(path, data)
	if err != nil {
		return err
	}

	chains := make(map[string]Chain)
	if err := flattenTree(tree, "", path, st.defines, chains); err != nil {
		return fmt.Errorf("failed to flatten config file '%s': %w", path, err)
	}
	for p, chain := range chains {
		st.out[p] = append(st.out[p], chain...)
	}

	includes, err := includePaths(tree, st.defines)
	if err != nil {
		return fmt.Errorf("invalid include in config file '%s': %w", path, err)
	}

	for _, inc := range includes {
		incPath := inc
		if !filepath.IsAbs(incPath) {
			incPath = filepath.Join(filepath.Dir(path), incPath)
		}

		incKey := filepath.Clean(incPath)
		if st.loaded[incKey] && !st.visiting[incKey] {
			continue
		}

		incData, err := readConfigFile(st.read, incPath)
		if err != nil {
			return fmt.Errorf("failed to include from '%s': %w", path, err)
		}
		if err := l.loadFile(st, incPath, incData, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// parse decodes file data into a nested map using the configured or detected format.
func (l FileLoader) parse(path string, data []byte) (map[string]any, error) {
	format := strings.ToLower(l.Format)
	if format == "" || format == "auto" {
		format = detectFileFormat(path)
		if format == "" {
			format = detectFormatFromContent(data)
		}
	}

	tree := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config file '%s': %w", path, err)
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&tree); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file '%s': %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file '%s': %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w for file '%s'", ErrUnknownFormat, path)
	}

	return tree, nil
}

// readConfigFile reads path through read, mapping a missing file to ErrConfigNotFound.
func readConfigFile(read ReadFunc, path string) ([]byte, error) {
	data, err := read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: '%s'", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	return data, nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		// .conf, .config and friends: detect from content
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// JSON first (strict format)
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	// TOML before YAML: plain "key = value" lines are valid YAML scalars
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	return ""
}
