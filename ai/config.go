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

package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poiesic/spansearch/core"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// GeneratorHost is the base URL for the text generation service API.
	GeneratorHost string

	// QueryModel encodes search queries.
	// Example: "nomic-embed-text", "text-embedding-3-small"
	QueryModel string

	// PassageModel encodes indexed spans. Usually the same as QueryModel
	// unless a dual encoder pair is used.
	PassageModel string

	// GeneratorModel writes long-form answers.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	GeneratorModel string

	// RankerModel scores query and passage pairs on the generator host.
	// Empty disables the ranking stage.
	// Example: "qwen2.5:3b"
	RankerModel string

	// Token is sent as the bearer token. Local OpenAI-compatible servers
	// accept any value.
	// Default: "none"
	Token string

	// Dimension is the expected embedding size. Zero accepts whatever the
	// model returns.
	Dimension int

	// Similarity is "dot_product" or "cosine".
	// Default: "dot_product"
	Similarity string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithGeneratorHost sets the generator service host URL.
func WithGeneratorHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
	}
}

// WithHost sets both embedding and generator hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.GeneratorHost = host
	}
}

// WithEmbeddingModel uses model for both queries and passages.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.QueryModel = model
		c.PassageModel = model
	}
}

// WithQueryModel sets the query encoder.
func WithQueryModel(model string) ConfigOption {
	return func(c *Config) {
		c.QueryModel = model
	}
}

// WithPassageModel sets the passage encoder.
func WithPassageModel(model string) ConfigOption {
	return func(c *Config) {
		c.PassageModel = model
	}
}

// WithGeneratorModel sets the generator model identifier.
func WithGeneratorModel(model string) ConfigOption {
	return func(c *Config) {
		c.GeneratorModel = model
	}
}

// WithRankerModel sets the model used to rank retrieved spans.
func WithRankerModel(model string) ConfigOption {
	return func(c *Config) {
		c.RankerModel = model
	}
}

// WithToken sets the API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithDimension sets the expected embedding dimension.
func WithDimension(dimension int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dimension
	}
}

// WithSimilarity sets the similarity function.
func WithSimilarity(similarity string) ConfigOption {
	return func(c *Config) {
		c.Similarity = similarity
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, embedding and generation use the same host and a single
// embedding model serves queries and passages.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:  defaultHost,
		GeneratorHost:  defaultHost,
		QueryModel:     "nomic-embed-text",
		PassageModel:   "nomic-embed-text",
		GeneratorModel: "qwen2.5:3b",
		Token:          "none",
		Similarity:     "dot_product",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example with a dual encoder pair:
//
//	cfg := NewConfig(
//	    WithQueryModel("dpr-question-encoder"),
//	    WithPassageModel("dpr-ctx-encoder"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Embedding returns the part of the configuration that identifies an index.
func (c *Config) Embedding() core.EmbeddingConfig {
	return core.EmbeddingConfig{
		QueryModel:   c.QueryModel,
		PassageModel: c.PassageModel,
		Dimension:    c.Dimension,
		Similarity:   c.Similarity,
	}
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = withVersionSuffix(c.EmbeddingHost)
	c.GeneratorHost = withVersionSuffix(c.GeneratorHost)
	if c.Token == "" {
		c.Token = "none"
	}
	if c.Similarity == "" {
		c.Similarity = "dot_product"
	}
}

func withVersionSuffix(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.GeneratorHost == "" {
		return errors.New("ai config: GeneratorHost is required")
	}
	if c.GeneratorModel == "" {
		return errors.New("ai config: GeneratorModel is required")
	}
	if err := core.ValidateEmbeddingConfig(c.Embedding()); err != nil {
		return fmt.Errorf("ai config: %w", err)
	}
	return nil
}
