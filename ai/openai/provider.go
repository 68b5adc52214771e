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

package openai

import (
	"log/slog"

	"github.com/poiesic/spansearch/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// It manages the query and passage encoders, the answer generator and,
// when a ranker model is configured, the span ranker.
type Provider struct {
	config    *ai.Config
	query     *Embedder
	passage   *Embedder
	generator *Generator
	ranker    *Ranker
	logger    *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use. When the query and
// passage models are the same a single embedder serves both.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	passage, err := newEmbedder(config, config.PassageModel)
	if err != nil {
		return nil, err
	}
	query := passage
	if config.QueryModel != config.PassageModel {
		query, err = newEmbedder(config, config.QueryModel)
		if err != nil {
			return nil, err
		}
	}

	generator, err := newGenerator(config)
	if err != nil {
		return nil, err
	}

	var ranker *Ranker
	if config.RankerModel != "" {
		ranker, err = newRanker(config)
		if err != nil {
			return nil, err
		}
	}

	return &Provider{
		config:    config,
		query:     query,
		passage:   passage,
		generator: generator,
		ranker:    ranker,
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// QueryEmbedder returns the query encoder.
func (p *Provider) QueryEmbedder() ai.Embedder {
	return p.query
}

// PassageEmbedder returns the passage encoder.
func (p *Provider) PassageEmbedder() ai.Embedder {
	return p.passage
}

// Generator returns the answer generator.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Ranker returns the span ranker, or nil without a ranker model.
func (p *Provider) Ranker() ai.Ranker {
	if p.ranker == nil {
		return nil
	}
	return p.ranker
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
