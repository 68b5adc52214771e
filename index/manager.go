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

package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/spansearch/ai"
	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/storage"
)

const defaultBatchSize = 32

// Stats counts what a Manager has done since it was created.
type Stats struct {
	Builds  int64 // indexes embedded and saved
	Loads   int64 // indexes served from the store
	Repairs int64 // inconsistent entries deleted before a rebuild
}

// Manager returns the index for a content address, building and persisting
// it on a miss.
type Manager struct {
	store     storage.IndexStore
	embedder  ai.Embedder
	locker    *Locker
	pool      *ants.Pool
	batchSize int
	progress  io.Writer
	logger    *slog.Logger

	builds  atomic.Int64
	loads   atomic.Int64
	repairs atomic.Int64
}

// Option configures a Manager.
type Option func(*Manager) error

// WithPoolSize sets the number of embedding batches run concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(m *Manager) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if m.pool != nil {
			m.pool.Release()
		}
		m.pool = pool
		return nil
	}
}

// WithBatchSize sets how many span contents are sent to the embedder per call.
func WithBatchSize(size int) Option {
	return func(m *Manager) error {
		if size < 1 {
			size = defaultBatchSize
		}
		m.batchSize = size
		return nil
	}
}

// WithProgress reports build progress to w.
func WithProgress(w io.Writer) Option {
	return func(m *Manager) error {
		m.progress = w
		return nil
	}
}

// WithLocker shares a Locker between managers backed by the same store.
func WithLocker(locker *Locker) Option {
	return func(m *Manager) error {
		if locker != nil {
			m.locker = locker
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewManager creates a Manager that persists to store and embeds passages
// with embedder. Call Release when done.
func NewManager(store storage.IndexStore, embedder ai.Embedder, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	m := &Manager{
		store:     store,
		embedder:  embedder,
		locker:    NewLocker(),
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			m.Release()
			return nil, err
		}
	}

	if m.pool == nil {
		pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
		if err != nil {
			return nil, err
		}
		m.pool = pool
	}

	m.logger = m.logger.With("component", "index")
	return m, nil
}

// Release frees the worker pool. The Manager must not be used afterwards.
func (m *Manager) Release() {
	if m.pool != nil {
		m.pool.Release()
	}
}

// Stats returns a snapshot of the manager's counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Builds:  m.builds.Load(),
		Loads:   m.loads.Load(),
		Repairs: m.repairs.Load(),
	}
}

// GetOrBuild returns the index stored at address, building it from spans
// when the store has no complete entry. The boolean reports a cache hit.
//
// Calls for the same address are serialized; a caller that waited on a
// concurrent build loads that build's result instead of embedding again.
func (m *Manager) GetOrBuild(ctx context.Context, address core.Address, spans []core.Span, embedding core.EmbeddingConfig) (*Index, bool, error) {
	if err := storage.ValidateAddress(address); err != nil {
		return nil, false, err
	}
	if err := core.ValidateEmbeddingConfig(embedding); err != nil {
		return nil, false, err
	}

	unlock, err := m.locker.LockContext(ctx, address)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	idx, err := m.load(ctx, address)
	switch {
	case err == nil:
		m.loads.Add(1)
		m.logger.Debug("loaded index", "address", address, "spans", idx.Len())
		return idx, true, nil
	case errors.Is(err, core.ErrCacheInconsistency):
		m.logger.Warn("discarding inconsistent index entry", "address", address, "err", err)
		if err := m.store.DeleteIndex(ctx, address); err != nil {
			return nil, false, err
		}
		m.repairs.Add(1)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, false, err
	}

	idx, err = m.build(ctx, address, spans, embedding)
	if err != nil {
		return nil, false, err
	}
	m.builds.Add(1)
	return idx, false, nil
}

func (m *Manager) load(ctx context.Context, address core.Address) (*Index, error) {
	config, indexed, err := m.store.LoadIndex(ctx, address)
	if err != nil {
		return nil, err
	}
	if config.Address != address.String() {
		return nil, fmt.Errorf("%w: entry %s claims address %s", core.ErrCacheInconsistency, address, config.Address)
	}
	if config.SpanCount != len(indexed) {
		return nil, fmt.Errorf("%w: entry %s has %d spans, config records %d",
			core.ErrCacheInconsistency, address, len(indexed), config.SpanCount)
	}
	return newIndex(config, indexed), nil
}

func (m *Manager) build(ctx context.Context, address core.Address, spans []core.Span, embedding core.EmbeddingConfig) (*Index, error) {
	m.logger.Info("building index", "address", address, "spans", len(spans))

	vectors, err := m.embed(ctx, spans)
	if err != nil {
		return nil, err
	}

	dimension := embedding.Dimension
	for i, v := range vectors {
		if dimension == 0 {
			dimension = len(v)
		}
		if len(v) != dimension {
			return nil, fmt.Errorf("%w: span %d embedded with %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(v), dimension)
		}
	}

	similarity := embedding.Similarity
	if similarity == "" {
		similarity = SimilarityDotProduct
	}

	indexed := make([]core.IndexedSpan, len(spans))
	for i, span := range spans {
		indexed[i] = core.IndexedSpan{
			StartIndex: span.StartIndex,
			WindowSize: span.WindowSize,
			Content:    span.Content,
			Vector:     vectors[i],
		}
	}

	config := &core.IndexConfig{
		Address:      address.String(),
		QueryModel:   embedding.QueryModel,
		PassageModel: embedding.PassageModel,
		Dimension:    dimension,
		Similarity:   similarity,
		WindowSizes:  windowSizes(spans),
		SpanCount:    len(indexed),
		CreatedAt:    time.Now().UTC(),
	}

	if err := m.store.SaveIndex(ctx, config, indexed); err != nil {
		return nil, fmt.Errorf("saving index %s: %w", address, err)
	}
	m.logger.Info("built index", "address", address, "spans", len(indexed), "dimension", dimension)
	return newIndex(config, indexed), nil
}

// embed splits span contents into batches and embeds them on the pool.
// The first failing batch cancels the rest.
func (m *Manager) embed(ctx context.Context, spans []core.Span) ([][]float32, error) {
	vectors := make([][]float32, len(spans))
	if len(spans) == 0 {
		return vectors, nil
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	tracker := NewProgressTracker(m.progress, len(spans), m.batchSize)
	if m.progress != nil {
		tracker.Start()
	}

	var wg sync.WaitGroup
	for start := 0; start < len(spans); start += m.batchSize {
		if ctx.Err() != nil {
			break
		}
		end := min(start+m.batchSize, len(spans))
		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = spans[start+i].Content
		}

		wg.Add(1)
		submitErr := m.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			embeddings, err := m.embedder.EmbedTexts(ctx, texts)
			if err != nil {
				cancel(fmt.Errorf("embedding spans %d-%d: %w", start, end-1, err))
				return
			}
			if len(embeddings) != len(texts) {
				cancel(fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingCountMismatch, len(texts), len(embeddings)))
				return
			}
			copy(vectors[start:end], embeddings)
			tracker.Increment(len(texts))
		})
		if submitErr != nil {
			wg.Done()
			cancel(submitErr)
			break
		}
	}
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return nil, err
	}
	if m.progress != nil {
		tracker.Finish()
	}
	return vectors, nil
}

// windowSizes lists the distinct window sizes of spans in first-seen order.
func windowSizes(spans []core.Span) []int {
	var sizes []int
	seen := make(map[int]bool)
	for _, span := range spans {
		if !seen[span.WindowSize] {
			seen[span.WindowSize] = true
			sizes = append(sizes, span.WindowSize)
		}
	}
	return sizes
}
