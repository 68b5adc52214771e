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

package mock

import "github.com/poiesic/spansearch/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock embedders, a mock generator and a mock ranker.
type MockProvider struct {
	query     *MockEmbedder
	passage   *MockEmbedder
	generator *MockGenerator
	ranker    *MockRanker
}

// NewMockProvider creates a new mock provider with default mock services.
// One embedder serves both queries and passages.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockGenerator() to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	embedder := NewMockEmbedder()
	return &MockProvider{
		query:     embedder,
		passage:   embedder,
		generator: NewMockGenerator(),
		ranker:    NewMockRanker(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
// The provider has no ranker; see NewMockProviderWithRanker.
func NewMockProviderWithServices(query, passage *MockEmbedder, generator *MockGenerator) ai.AIProvider {
	return &MockProvider{
		query:     query,
		passage:   passage,
		generator: generator,
	}
}

// NewMockProviderWithRanker creates a mock provider with default embedders
// and generator and the given ranker. A nil ranker disables ranking.
func NewMockProviderWithRanker(ranker *MockRanker) ai.AIProvider {
	embedder := NewMockEmbedder()
	return &MockProvider{
		query:     embedder,
		passage:   embedder,
		generator: NewMockGenerator(),
		ranker:    ranker,
	}
}

// QueryEmbedder returns the mock query embedder.
func (p *MockProvider) QueryEmbedder() ai.Embedder {
	return p.query
}

// PassageEmbedder returns the mock passage embedder.
func (p *MockProvider) PassageEmbedder() ai.Embedder {
	return p.passage
}

// Generator returns the mock generator.
func (p *MockProvider) Generator() ai.Generator {
	return p.generator
}

// Ranker returns the mock ranker, or nil when the provider has none.
func (p *MockProvider) Ranker() ai.Ranker {
	if p.ranker == nil {
		return nil
	}
	return p.ranker
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the passage embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.passage
}

// GetMockQueryEmbedder returns the query embedder for test assertions.
func (p *MockProvider) GetMockQueryEmbedder() *MockEmbedder {
	return p.query
}

// GetMockGenerator returns the underlying mock generator for test assertions.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}

// GetMockRanker returns the underlying mock ranker for test assertions.
func (p *MockProvider) GetMockRanker() *MockRanker {
	return p.ranker
}
