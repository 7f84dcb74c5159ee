// FILE: lixenwraith/chainconf/example/main.go
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lixenwraith/chainconf"
)

// BuildConfig is decoded from the [build] section.
type BuildConfig struct {
	Output   string        `toml:"output"`
	SDK      string        `toml:"sdk"`
	Parallel int           `toml:"parallel"`
	Timeout  time.Duration `toml:"timeout"`
	Flags    []string      `toml:"flags"`
}

const projectFile = `
include = "defaults.toml"

[build]
output = "out/$(Configuration)/bin"
parallel = 8

["if HOST_WINDOWS".build]
sdk = "C:/sdk"

["if !HOST_WINDOWS".build]
sdk = "/opt/sdk/$(Configuration)"
`

const defaultsFile = `
[build]
output = "bin"
timeout = "2m"
flags = ["-O2", "-g"]
parallel = 1
`

func main() {
	dir, err := os.MkdirTemp("", "chainconf-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "project.toml")
	mustWrite(path, projectFile)
	mustWrite(filepath.Join(dir, "defaults.toml"), defaultsFile)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	env := chainconf.NewEnvironment(
		map[string]string{chainconf.ConstantConfiguration: "Debug"},
		chainconf.DefaultDefines()...,
	)

	src := chainconf.NewBuilder().
		WithFile(path).
		WithEnvironment(env).
		WithLogger(logger).
		MustBuild()

	// Concurrent first access resolves once
	var wg sync.WaitGroup
	maps := make([]*chainconf.Map, 4)
	for i := range maps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			maps[i] = src.Map()
		}(i)
	}
	wg.Wait()

	m := src.Map()
	fmt.Printf("source %s: %s, %d keys, shared=%t\n", src, src.State(), m.Len(), maps[0] == maps[3])

	m.Range(func(key string, chain chainconf.Chain) bool {
		fmt.Printf("  %-16s %s\n", key, strings.Join(quoteAll(chain.Texts()), " -> "))
		return true
	})

	var cfg BuildConfig
	if err := m.Decode("build", &cfg); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("decoded: %+v\n", cfg)

	// A missing file degrades to an empty map
	missing := chainconf.NewBuilder().
		WithFile(filepath.Join(dir, "missing.toml")).
		WithLogger(logger).
		MustBuild()
	fmt.Printf("missing: %d keys, state=%s, err=%v\n", missing.Map().Len(), missing.State(), missing.Err())
}

func quoteAll(texts []string) []string {
	quoted := make([]string, len(texts))
	for i, t := range texts {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return quoted
}

func mustWrite(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		log.Fatal(err)
	}
}
