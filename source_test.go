// File: lixenwraith/chainconf/source_test.go
package chainconf_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lixenwraith/chainconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func debugEnv() *chainconf.Environment {
	return chainconf.NewEnvironment(map[string]string{chainconf.ConstantConfiguration: "Debug"})
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestSourceResolve(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("MacroSubstitution", func(t *testing.T) {
		path := writeFile(t, tmpDir, "macro.toml", `
output = "out/$(Configuration)/bin"
unknown = "$(Unknown)"
unterminated = "$(Configuration"
`)
		m := chainconf.NewSource(path, debugEnv()).Map()

		out, err := m.String("output")
		require.NoError(t, err)
		assert.Equal(t, "out/Debug/bin", out)

		unknown, _ := m.String("unknown")
		assert.Equal(t, "$(Unknown)", unknown)

		unterminated, _ := m.String("unterminated")
		assert.Equal(t, "$(Configuration", unterminated)
	})

	t.Run("ChainIndependence", func(t *testing.T) {
		writeFile(t, tmpDir, "base.toml", `key = "b-$(Configuration)"`)
		path := writeFile(t, tmpDir, "layered.toml", `
include = "base.toml"
key = "a"
`)
		m := chainconf.NewSource(path, debugEnv()).Map()

		chain, ok := m.Chain("key")
		require.True(t, ok)
		require.Len(t, chain, 2)
		assert.Equal(t, "a", chain[0].Text)
		assert.Equal(t, "b-Debug", chain[1].Text)
		assert.Equal(t, filepath.Join(tmpDir, "base.toml"), chain[1].Origin)
	})

	t.Run("AbsentValuesUntouched", func(t *testing.T) {
		path := writeFile(t, tmpDir, "absent.yaml", "key: ~\nother: $(Configuration)\n")
		m := chainconf.NewSource(path, debugEnv()).Map()

		chain, ok := m.Chain("key")
		require.True(t, ok)
		assert.Equal(t, chainconf.Chain{{Origin: path}}, chain)

		other, _ := m.String("other")
		assert.Equal(t, "Debug", other)
	})

	t.Run("Defines", func(t *testing.T) {
		path := writeFile(t, tmpDir, "defines.toml", `
mode = "release"
["if DEV"]
mode = "dev"
`)
		dev := chainconf.NewEnvironment(nil, "DEV")
		mode, _ := chainconf.NewSource(path, dev).Map().String("mode")
		assert.Equal(t, "dev", mode)

		mode, _ = chainconf.NewSource(path, chainconf.NewEnvironment(nil)).Map().String("mode")
		assert.Equal(t, "release", mode)
	})

	t.Run("StringIsFilename", func(t *testing.T) {
		src := chainconf.NewSource("some/dir/app.toml", nil)
		assert.Equal(t, "some/dir/app.toml", src.String())
		assert.Same(t, chainconf.DefaultEnvironment(), src.Environment())
	})

	t.Run("ResolvedLogUsesDisplayPath", func(t *testing.T) {
		cwd, err := os.Getwd()
		require.NoError(t, err)

		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
		src := chainconf.NewBuilder().
			WithFile(filepath.Join(cwd, "virtual.toml")).
			WithReader(func(string) ([]byte, error) { return []byte(`name = "v"`), nil }).
			WithLogger(logger).
			MustBuild()

		assert.Equal(t, 1, src.Map().Len())
		assert.Contains(t, logs.String(), "configuration resolved")
		assert.Contains(t, logs.String(), "path=virtual.toml")
		assert.NotContains(t, logs.String(), cwd)
	})
}

func TestSourcePathNormalization(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "paths.toml", `
include_dir = "/usr/local/include"
drive = "C:/sdk/$(Configuration)/lib"
relative = "out/$(Configuration)/bin"
expanded = "$(Root)/lib"
`)
	consts := map[string]string{chainconf.ConstantConfiguration: "Debug", "Root": "/opt"}

	t.Run("BackslashHost", func(t *testing.T) {
		env := chainconf.NewEnvironment(consts).WithSeparator('\\')
		m := chainconf.NewSource(path, env).Map()

		v, _ := m.String("include_dir")
		assert.Equal(t, `\usr\local\include`, v)
		v, _ = m.String("drive")
		assert.Equal(t, `C:\sdk\Debug\lib`, v)
		v, _ = m.String("relative")
		assert.Equal(t, "out/Debug/bin", v)
		v, _ = m.String("expanded")
		assert.Equal(t, `\opt\lib`, v, "normalization applies after expansion")
	})

	t.Run("SlashHost", func(t *testing.T) {
		env := chainconf.NewEnvironment(consts).WithSeparator('/')
		m := chainconf.NewSource(path, env).Map()

		v, _ := m.String("include_dir")
		assert.Equal(t, "/usr/local/include", v)
		v, _ = m.String("drive")
		assert.Equal(t, "C:/sdk/Debug/lib", v)
	})
}

func TestSourceCaching(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "app.toml", `name = "app"`)

	var reads atomic.Int32
	src := chainconf.NewBuilder().
		WithFile(path).
		WithReader(func(p string) ([]byte, error) {
			reads.Add(1)
			return os.ReadFile(p)
		}).
		MustBuild()

	assert.False(t, src.Resolved())
	assert.Equal(t, chainconf.StateUnresolved, src.State())

	first := src.Map()
	second := src.Map()
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), reads.Load())
	assert.Equal(t, chainconf.StateResolved, src.State())
	assert.NoError(t, src.Err())

	// Later file changes are never observed
	writeFile(t, tmpDir, "app.toml", `name = "changed"`)
	name, _ := src.Map().String("name")
	assert.Equal(t, "app", name)
	assert.Equal(t, int32(1), reads.Load())
}

func TestSourceStickyFailure(t *testing.T) {
	t.Run("ReadFailsOnce", func(t *testing.T) {
		var calls atomic.Int32
		logger, logs := captureLogger()

		src := chainconf.NewBuilder().
			WithFile("flaky.toml").
			WithReader(func(string) ([]byte, error) {
				if calls.Add(1) == 1 {
					return nil, errors.New("transient failure")
				}
				return []byte(`name = "ok"`), nil
			}).
			WithLogger(logger).
			MustBuild()

		first := src.Map()
		assert.Zero(t, first.Len())
		for range 3 {
			assert.Same(t, first, src.Map())
		}
		assert.Equal(t, int32(1), calls.Load(), "no retry after failure")

		assert.Equal(t, chainconf.StateFailed, src.State())
		var loadErr *chainconf.LoadError
		require.ErrorAs(t, src.Err(), &loadErr)
		assert.Equal(t, "flaky.toml", loadErr.Path)
		assert.ErrorContains(t, loadErr, "transient failure")

		assert.Equal(t, 1, strings.Count(logs.String(), "\n"), "one diagnostic line")
		assert.Contains(t, logs.String(), "path=flaky.toml")
		assert.Contains(t, logs.String(), "transient failure")
	})

	t.Run("MissingFile", func(t *testing.T) {
		logger, _ := captureLogger()
		src := chainconf.NewBuilder().
			WithFile(filepath.Join(t.TempDir(), "missing.toml")).
			WithLogger(logger).
			MustBuild()

		assert.Zero(t, src.Map().Len())
		assert.ErrorIs(t, src.Err(), chainconf.ErrConfigNotFound)
	})

	t.Run("ParseError", func(t *testing.T) {
		logger, logs := captureLogger()
		path := writeFile(t, t.TempDir(), "broken.toml", `invalid = toml content`)
		src := chainconf.NewBuilder().WithFile(path).WithLogger(logger).MustBuild()

		assert.Zero(t, src.Map().Len())
		assert.Error(t, src.Err())
		assert.Contains(t, logs.String(), "failed to parse TOML")
	})

	t.Run("LoaderPanic", func(t *testing.T) {
		logger, _ := captureLogger()
		src := chainconf.NewBuilder().
			WithFile("virtual").
			WithReader(func(string) ([]byte, error) { return nil, nil }).
			WithLoader(chainconf.LoaderFunc(func(string, []byte, chainconf.ReadFunc, chainconf.Defines) (map[string]chainconf.Chain, error) {
				panic("grammar exploded")
			})).
			WithLogger(logger).
			MustBuild()

		assert.NotPanics(t, func() { src.Map() })
		assert.ErrorContains(t, src.Err(), "grammar exploded")
	})

	t.Run("ZeroValue", func(t *testing.T) {
		var src chainconf.Source

		assert.NotPanics(t, func() { src.Map() })
		assert.Zero(t, src.Map().Len())
		assert.Equal(t, chainconf.StateFailed, src.State())
		assert.ErrorIs(t, src.Err(), chainconf.ErrConfigNotFound)
		assert.Same(t, chainconf.DefaultEnvironment(), src.Environment())
	})

	t.Run("ErrBeforeResolve", func(t *testing.T) {
		src := chainconf.NewSource("never-read.toml", nil)
		assert.NoError(t, src.Err())
		assert.False(t, src.Resolved())
	})
}

func TestSourceConcurrentResolve(t *testing.T) {
	const workers = 64

	var loads atomic.Int32
	release := make(chan struct{})

	loader := chainconf.LoaderFunc(func(path string, data []byte, read chainconf.ReadFunc, defines chainconf.Defines) (map[string]chainconf.Chain, error) {
		loads.Add(1)
		<-release
		return map[string]chainconf.Chain{
			"out": {chainconf.Text("out/$(Configuration)"), chainconf.Text("fallback/$(Configuration)")},
		}, nil
	})

	src := chainconf.NewBuilder().
		WithFile("concurrent").
		WithEnvironment(debugEnv()).
		WithReader(func(string) ([]byte, error) { return nil, nil }).
		WithLoader(loader).
		MustBuild()

	results := make([]*chainconf.Map, workers)
	var ready, done sync.WaitGroup
	ready.Add(workers)
	done.Add(workers)
	for i := range workers {
		go func() {
			defer done.Done()
			ready.Done()
			results[i] = src.Map()
		}()
	}

	ready.Wait()
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), loads.Load())
	for _, m := range results {
		assert.Same(t, results[0], m)
	}

	chain, ok := results[0].Chain("out")
	require.True(t, ok)
	assert.Equal(t, []string{"out/Debug", "fallback/Debug"}, chain.Texts(), "expanded exactly once")
}

func TestQuick(t *testing.T) {
	path := writeFile(t, t.TempDir(), "quick.toml", `value = "$(Configuration)"`)

	m := chainconf.Quick(path)
	assert.Same(t, m, chainconf.Quick(path))
	assert.Same(t, chainconf.QuickSource(path), chainconf.QuickSource(path))

	v, err := m.String("value")
	require.NoError(t, err)
	assert.Equal(t, chainconf.BuildMode(), v)
}
