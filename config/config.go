// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the YAML configuration file used by the spansearch
// command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/poiesic/spansearch/ai"
	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/selection"
	"github.com/poiesic/spansearch/window"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the file Load falls back to when no path is given.
const DefaultPath = "spansearch.yaml"

// Store backends.
const (
	BackendBadger = "badger"
	BackendFS     = "fs"
)

// AIConfig configures the embedding and generation services.
type AIConfig struct {
	EmbeddingHost  string `yaml:"embedding_host"`
	GeneratorHost  string `yaml:"generator_host"`
	QueryModel     string `yaml:"query_model"`
	PassageModel   string `yaml:"passage_model"`
	GeneratorModel string `yaml:"generator_model"`
	// RankerModel enables the ranking stage when set.
	RankerModel string `yaml:"ranker_model"`
	// TokenEnv names the environment variable holding the API token.
	TokenEnv   string `yaml:"token_env"`
	Dimension  int    `yaml:"dimension"`
	Similarity string `yaml:"similarity"`
}

// StorageConfig selects where indexes are cached.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// IndexConfig tunes index builds.
type IndexConfig struct {
	BatchSize int `yaml:"batch_size"`
	PoolSize  int `yaml:"pool_size"`
}

// SearchConfig holds request defaults.
type SearchConfig struct {
	SourceType    string  `yaml:"source_type"`
	Granularity   string  `yaml:"granularity"`
	WindowSizes   string  `yaml:"window_sizes"`
	Retriever     string  `yaml:"retriever"`
	RetrieverTopK int     `yaml:"retriever_top_k"`
	Ranker        bool    `yaml:"ranker"`
	RankerTopK    int     `yaml:"ranker_top_k"`
	Policy        string  `yaml:"policy"`
	PolicyValue   float64 `yaml:"policy_value"`
}

// File is the root of the configuration file.
type File struct {
	AI      AIConfig      `yaml:"ai"`
	Storage StorageConfig `yaml:"storage"`
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
}

// Default returns the configuration used when no file exists.
func Default() *File {
	defaults := ai.DefaultConfig()
	return &File{
		AI: AIConfig{
			EmbeddingHost:  defaults.EmbeddingHost,
			GeneratorHost:  defaults.GeneratorHost,
			QueryModel:     defaults.QueryModel,
			PassageModel:   defaults.PassageModel,
			GeneratorModel: defaults.GeneratorModel,
			TokenEnv:       "OPENAI_API_KEY",
			Similarity:     defaults.Similarity,
		},
		Storage: StorageConfig{Backend: BackendBadger, Path: defaultStoragePath()},
		Index:   IndexConfig{BatchSize: 32},
		Search: SearchConfig{
			SourceType:  "text",
			Granularity: "sentence",
			WindowSizes: "1 2 3",
			Retriever:   "dense",
			Policy:      "percentage",
			PolicyValue: 0.1,
		},
	}
}

// Load reads the file at path. An empty path means DefaultPath. A missing
// file yields Default; fields absent from the file keep their defaults.
func Load(path string) (*File, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating directories as needed.
func Save(path string, cfg *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the enumerated fields of cfg.
func (f *File) Validate() error {
	switch f.Storage.Backend {
	case BackendBadger, BackendFS:
	default:
		return fmt.Errorf("%w: storage backend %q", core.ErrUnsupportedConfiguration, f.Storage.Backend)
	}
	if f.Storage.Path == "" {
		return fmt.Errorf("%w: empty storage path", core.ErrUnsupportedConfiguration)
	}
	if _, err := core.ParseSourceType(f.Search.SourceType); err != nil {
		return err
	}
	if _, err := core.ParseGranularity(f.Search.Granularity); err != nil {
		return err
	}
	if _, err := core.ParseRetrieverKind(f.Search.Retriever); err != nil {
		return err
	}
	if _, err := window.ParseSizes(f.Search.WindowSizes); err != nil {
		return err
	}
	if _, err := selection.ParsePolicy(f.Search.Policy, f.Search.PolicyValue); err != nil {
		return err
	}
	if f.Search.RankerTopK < 0 {
		return fmt.Errorf("%w: ranker top-k %d", core.ErrUnsupportedConfiguration, f.Search.RankerTopK)
	}
	if f.Search.Ranker && f.AI.RankerModel == "" {
		return fmt.Errorf("%w: ranker enabled without a ranker model", core.ErrUnsupportedConfiguration)
	}
	return f.ToAIConfig().Validate()
}

// ToAIConfig converts the ai section, reading the token from TokenEnv.
func (f *File) ToAIConfig() *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(f.AI.EmbeddingHost),
		ai.WithGeneratorHost(f.AI.GeneratorHost),
		ai.WithQueryModel(f.AI.QueryModel),
		ai.WithPassageModel(f.AI.PassageModel),
		ai.WithGeneratorModel(f.AI.GeneratorModel),
		ai.WithRankerModel(f.AI.RankerModel),
		ai.WithDimension(f.AI.Dimension),
		ai.WithSimilarity(f.AI.Similarity),
	}
	if f.AI.TokenEnv != "" {
		if token := os.Getenv(f.AI.TokenEnv); token != "" {
			opts = append(opts, ai.WithToken(token))
		}
	}
	return ai.NewConfig(opts...)
}

func defaultStoragePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".spansearch", "cache")
	}
	return filepath.Join(dir, "spansearch")
}
