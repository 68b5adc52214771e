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

package spansearch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/spansearch/ai"
	"github.com/poiesic/spansearch/ai/openai"
	"github.com/poiesic/spansearch/answer"
	"github.com/poiesic/spansearch/config"
	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/index"
	"github.com/poiesic/spansearch/ingestion"
	"github.com/poiesic/spansearch/search"
	"github.com/poiesic/spansearch/storage"
	"github.com/poiesic/spansearch/storage/badger"
	"github.com/poiesic/spansearch/storage/fs"
)

// Engine wires an index store, an AI provider, an index manager and a
// searcher together.
type Engine struct {
	backend  *badger.Backend // nil unless the badger store is used
	store    storage.IndexStore
	provider ai.AIProvider
	manager  *index.Manager
	searcher *search.Searcher
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig     *ai.Config
	provider     ai.AIProvider
	backend      string
	inMemory     bool
	indexOptions []index.Option
	logger       *slog.Logger
}

// WithAIConfig sets the AI configuration. It selects the embedding models
// that take part in every content address, and configures the provider
// unless WithProvider is also given.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider uses provider instead of an OpenAI-compatible one.
// The engine takes ownership and closes it.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithBackend selects the index store, config.BackendBadger (default) or
// config.BackendFS.
func WithBackend(backend string) EngineOption {
	return func(o *engineOptions) {
		o.backend = backend
	}
}

// InMemory keeps the badger store in memory. The path is ignored.
func InMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithIndexOptions passes options to the index manager.
func WithIndexOptions(opts ...index.Option) EngineOption {
	return func(o *engineOptions) {
		o.indexOptions = append(o.indexOptions, opts...)
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// OpenEngine opens the index store at path and prepares a searcher.
func OpenEngine(path string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		backend:  config.BackendBadger,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if err := options.aiConfig.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{logger: options.logger.With("component", "engine")}

	var err error
	switch options.backend {
	case config.BackendBadger:
		e.backend, err = badger.OpenBackend(path, options.inMemory)
		if err != nil {
			return nil, err
		}
		e.store, err = badger.NewIndexStore(e.backend)
	case config.BackendFS:
		e.store, err = fs.NewIndexStore(path, fs.WithLogger(options.logger))
	default:
		err = fmt.Errorf("%w: storage backend %q", core.ErrUnsupportedConfiguration, options.backend)
	}
	if err != nil {
		e.Close()
		return nil, err
	}

	e.provider = options.provider
	if e.provider == nil {
		e.provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			e.Close()
			return nil, err
		}
	}

	indexOptions := append([]index.Option{index.WithLogger(options.logger)}, options.indexOptions...)
	e.manager, err = index.NewManager(e.store, e.provider.PassageEmbedder(), indexOptions...)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.searcher, err = search.NewSearcher(e.manager, e.provider, options.aiConfig.Embedding(),
		search.WithLogger(options.logger))
	if err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// Close releases the manager, the provider and the store, in that order.
func (e *Engine) Close() error {
	if e.manager != nil {
		e.manager.Release()
	}
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Error("error closing index store", "err", err)
			return err
		}
	}
	if e.backend != nil {
		if err := e.backend.Close(); err != nil {
			e.logger.Error("error closing backend storage", "err", err)
			return err
		}
	}
	return nil
}

// Searcher returns the engine's searcher.
func (e *Engine) Searcher() *search.Searcher {
	return e.searcher
}

// IndexStore returns the engine's index store.
func (e *Engine) IndexStore() storage.IndexStore {
	return e.store
}

// Stats returns the index manager counters.
func (e *Engine) Stats() index.Stats {
	return e.manager.Stats()
}

// Search runs req.
func (e *Engine) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	return e.searcher.Search(ctx, req)
}

// NewQA creates a question answerer over the engine's searcher and generator.
func (e *Engine) NewQA(opts ...answer.Option) (*answer.QA, error) {
	return answer.New(e.searcher, e.provider.Generator(), opts...)
}

// NewIngestionPipeline creates a pipeline that prepares indexes ahead of search.
func (e *Engine) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(e.searcher, opts...)
}

// Indexes lists the configs of every cached index.
func (e *Engine) Indexes(ctx context.Context) ([]*core.IndexConfig, error) {
	return e.store.ListIndexes(ctx)
}

// DeleteIndex removes the cached index at address.
func (e *Engine) DeleteIndex(ctx context.Context, address core.Address) error {
	if err := storage.ValidateAddress(address); err != nil {
		return err
	}
	return e.store.DeleteIndex(ctx, address)
}
