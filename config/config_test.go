package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/spansearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spansearch.yaml")
	data := []byte(`
ai:
  query_model: dpr-question
  passage_model: dpr-ctx
storage:
  backend: fs
  path: /tmp/indexes
search:
  retriever: hybrid
  policy: top_k
  policy_value: 3
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dpr-question", cfg.AI.QueryModel)
	assert.Equal(t, "dpr-ctx", cfg.AI.PassageModel)
	assert.Equal(t, "qwen2.5:3b", cfg.AI.GeneratorModel)
	assert.Equal(t, BackendFS, cfg.Storage.Backend)
	assert.Equal(t, "hybrid", cfg.Search.Retriever)
	assert.Equal(t, "sentence", cfg.Search.Granularity)
	assert.Equal(t, 32, cfg.Index.BatchSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "spansearch.yaml")
	cfg := Default()
	cfg.Search.WindowSizes = "2 4"

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*File)
	}{
		{"unknown backend", func(f *File) { f.Storage.Backend = "sqlite" }},
		{"empty path", func(f *File) { f.Storage.Path = "" }},
		{"unknown source", func(f *File) { f.Search.SourceType = "ftp" }},
		{"unknown granularity", func(f *File) { f.Search.Granularity = "page" }},
		{"unknown retriever", func(f *File) { f.Search.Retriever = "colbert" }},
		{"bad window sizes", func(f *File) { f.Search.WindowSizes = "1 0" }},
		{"bad policy", func(f *File) { f.Search.Policy = "threshold" }},
		{"percentage out of range", func(f *File) { f.Search.PolicyValue = 1.5 }},
		{"unknown similarity", func(f *File) { f.AI.Similarity = "euclidean" }},
		{"negative ranker top-k", func(f *File) { f.Search.RankerTopK = -1 }},
		{"ranker without model", func(f *File) { f.Search.Ranker = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), core.ErrUnsupportedConfiguration)
		})
	}
}

func TestToAIConfig(t *testing.T) {
	t.Setenv("SPANSEARCH_TEST_TOKEN", "secret")
	cfg := Default()
	cfg.AI.TokenEnv = "SPANSEARCH_TEST_TOKEN"
	cfg.AI.Dimension = 768
	cfg.AI.RankerModel = "ranker-model"

	aiConfig := cfg.ToAIConfig()
	assert.Equal(t, "secret", aiConfig.Token)
	assert.Equal(t, 768, aiConfig.Dimension)
	assert.Equal(t, "ranker-model", aiConfig.RankerModel)
	assert.Equal(t, cfg.AI.QueryModel, aiConfig.Embedding().QueryModel)

	cfg.AI.TokenEnv = "SPANSEARCH_TEST_UNSET"
	assert.Equal(t, "none", cfg.ToAIConfig().Token)
}
