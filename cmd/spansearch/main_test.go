package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/spansearch"
	"github.com/poiesic/spansearch/ai/mock"
	"github.com/poiesic/spansearch/config"
	"github.com/poiesic/spansearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// testApp runs commands against a file-backed cache in a temp dir with the
// mock AI provider.
type testApp struct {
	t     *testing.T
	store string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	previous := openEngine
	openEngine = func(cfg *config.File) (*spansearch.Engine, error) {
		return spansearch.OpenEngine(cfg.Storage.Path,
			spansearch.WithAIConfig(cfg.ToAIConfig()),
			spansearch.WithBackend(cfg.Storage.Backend),
			spansearch.WithProvider(mock.NewMockProvider()),
		)
	}
	t.Cleanup(func() { openEngine = previous })
	return &testApp{t: t, store: t.TempDir()}
}

func (a *testApp) run(stdin string, args ...string) (string, error) {
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.Reader = strings.NewReader(stdin)
	global := []string{"spansearch",
		"--config", filepath.Join(a.store, "absent.yaml"),
		"--store", a.store,
		"--backend", config.BackendFS,
	}
	err := app.Run(append(global, args...))
	return out.String(), err
}

func findStringFlag(flags []cli.Flag, name string) *cli.StringFlag {
	for _, flag := range flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
			return f
		}
	}
	return nil
}

func TestAppFlags(t *testing.T) {
	app := newApp()

	logLevel := findStringFlag(app.Flags, "log-level")
	require.NotNil(t, logLevel)
	assert.Equal(t, "info", logLevel.Value)
	assert.Equal(t, []string{"l"}, logLevel.Aliases)

	configFlag := findStringFlag(app.Flags, "config")
	require.NotNil(t, configFlag)
	assert.Equal(t, config.DefaultPath, configFlag.Value)

	search := app.Command("search")
	require.NotNil(t, search)
	query := findStringFlag(search.Flags, "query")
	require.NotNil(t, query)
	assert.True(t, query.Required)
	assert.Empty(t, query.EnvVars)
}

func TestSetupLogger(t *testing.T) {
	a := newTestApp(t)

	_, err := a.run("", "--log-level", "verbose", "cache", "ls")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	_, err = a.run("", "-l", "DEBUG", "cache", "ls")
	assert.NoError(t, err)
}

func TestSearchCommand(t *testing.T) {
	a := newTestApp(t)

	out, err := a.run("", "search", "-g", "word", "-w", "1 2", "-r", "sparse", "-k", "1",
		"-q", "cat", "the", "cat", "sat", "on", "the", "mat")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected 1 of 6 word units")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "cat")
	assert.Contains(t, out, "retriever=sparse")
}

func TestSearchCommand_ReadsStdin(t *testing.T) {
	a := newTestApp(t)

	out, err := a.run("Dogs bark. Cats purr. Birds sing.", "search", "-r", "sparse", "-p", "0.34", "-q", "purr", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected 1 of 3 sentence units")
	assert.Contains(t, out, "Cats purr.")
}

func TestSearchCommand_Ranker(t *testing.T) {
	a := newTestApp(t)

	out, err := a.run("", "search", "-r", "sparse", "-w", "1", "-k", "1", "--ranker", "--ranker-top-k", "2",
		"-q", "birds sing", "Dogs bark. Cats purr. Birds sing.")
	require.NoError(t, err)
	assert.Contains(t, out, "ranked=true")
	assert.Contains(t, out, "scored=2")
	assert.Contains(t, out, "Birds sing.")

	_, err = a.run("", "search", "--ranker", "--ranker-top-k", "-1", "-q", "x", "text")
	assert.ErrorIs(t, err, core.ErrUnsupportedConfiguration)
}

func TestSearchCommand_DenseReportsCache(t *testing.T) {
	a := newTestApp(t)
	args := []string{"search", "-w", "1", "-k", "1", "-q", "Cats purr.", "Dogs bark. Cats purr."}

	out, err := a.run("", args...)
	require.NoError(t, err)
	assert.Contains(t, out, "cache_hit=false")

	out, err = a.run("", args...)
	require.NoError(t, err)
	assert.Contains(t, out, "cache_hit=true")
}

func TestSearchCommand_InvalidInput(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing query", []string{"search", "text"}},
		{"exclusive policies", []string{"search", "-k", "1", "-p", "0.5", "-q", "x", "text"}},
		{"bad granularity", []string{"search", "-g", "page", "-q", "x", "text"}},
		{"bad window sizes", []string{"search", "-w", "0", "-q", "x", "text"}},
		{"bad retriever", []string{"search", "-r", "colbert", "-q", "x", "text"}},
		{"file needs one path", []string{"search", "-s", "file", "-q", "x", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.run("", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestQACommand(t *testing.T) {
	a := newTestApp(t)

	out, err := a.run("", "qa", "-r", "sparse", "-k", "1", "-q", "purr", "Dogs bark. Cats purr.")
	require.NoError(t, err)
	assert.Contains(t, out, "mock answer")
	assert.Contains(t, out, "Cats purr.")
}

func TestAddressCommand(t *testing.T) {
	a := newTestApp(t)

	out, err := a.run("", "address", "Dogs bark.")
	require.NoError(t, err)

	defaults := config.Default()
	expected := core.AddressFor(core.AddressInput{
		Corpus:      "Dogs bark.",
		SourceType:  core.SourceText,
		Granularity: core.GranularitySentence,
		WindowSizes: defaults.Search.WindowSizes,
		Embedding:   defaults.ToAIConfig().Embedding(),
	})
	assert.Equal(t, string(expected), strings.TrimSpace(out))
}

func TestIngestAndCacheCommands(t *testing.T) {
	a := newTestApp(t)

	docs := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "a.txt"), []byte("One fish. Two fish."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "nested", "b.txt"), []byte("Red fish. Blue fish."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "skip.md"), []byte("Not matched."), 0o644))

	out, err := a.run("", "ingest", "-w", "1", "--glob", "**/*.txt", "--root", docs, "Green eggs. And ham.")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "built"))
	assert.NotContains(t, out, "skip.md")

	out, err = a.run("", "cache", "ls")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, out, `windows="1"`)

	address := strings.Fields(lines[0])[0]
	out, err = a.run("", "cache", "rm", address)
	require.NoError(t, err)
	assert.Contains(t, out, "removed "+address)

	out, err = a.run("", "cache", "ls")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}

func TestIngestCommand_NothingToIngest(t *testing.T) {
	a := newTestApp(t)

	_, err := a.run("", "ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to ingest")
}

func TestCacheRemove_InvalidAddress(t *testing.T) {
	a := newTestApp(t)

	_, err := a.run("", "cache", "rm", "../etc")
	assert.Error(t, err)

	_, err = a.run("", "cache", "rm")
	assert.Error(t, err)
}
