package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/spansearch/aggregate"
	"github.com/poiesic/spansearch/ai"
	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/index"
	"github.com/poiesic/spansearch/retrieval"
	"github.com/poiesic/spansearch/segment"
	"github.com/poiesic/spansearch/selection"
	"github.com/poiesic/spansearch/window"
)

// Searcher runs windowed searches against corpora.
// It is safe for concurrent use.
type Searcher struct {
	manager       *index.Manager
	queryEmbedder ai.Embedder
	ranker        ai.Ranker
	embedding     core.EmbeddingConfig
	segmenter     *segment.Segmenter
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithSegmenter replaces the default segmenter.
func WithSegmenter(segmenter *segment.Segmenter) Option {
	return func(s *Searcher) error {
		if segmenter == nil {
			return ErrSegmenterRequired
		}
		s.segmenter = segmenter
		return nil
	}
}

// NewSearcher creates a new searcher. embedding must describe the encoders
// of provider; it is part of every content address.
func NewSearcher(manager *index.Manager, provider ai.AIProvider, embedding core.EmbeddingConfig, opts ...Option) (*Searcher, error) {
	if manager == nil {
		return nil, ErrManagerRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if err := core.ValidateEmbeddingConfig(embedding); err != nil {
		return nil, err
	}

	s := &Searcher{
		manager:       manager,
		queryEmbedder: provider.QueryEmbedder(),
		ranker:        provider.Ranker(),
		embedding:     embedding,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.segmenter == nil {
		segmenter, err := segment.NewSegmenter(segment.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.segmenter = segmenter
	}
	s.logger = s.logger.With("component", "searcher")
	return s, nil
}

// HasRanker reports whether requests may set Ranker.
func (s *Searcher) HasRanker() bool {
	return s.ranker != nil
}

// Embedding returns the embedding configuration used for content addresses.
func (s *Searcher) Embedding() core.EmbeddingConfig {
	return s.embedding
}

// Address returns the content address req would be indexed under.
func (s *Searcher) Address(req Request) core.Address {
	return core.AddressFor(core.AddressInput{
		Corpus:      req.Corpus,
		SourceType:  req.SourceType,
		Granularity: req.Granularity,
		WindowSizes: req.WindowSizes,
		Embedding:   s.embedding,
	})
}

// Search runs req.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor runs req, reporting each stage to monitor.
//
// Configuration errors are returned before any work is done. An empty
// corpus, or one shorter than every window, yields an empty response.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req Request, monitor SearchMonitor) (*Response, error) {
	start := time.Now()
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	sizes, err := req.normalize()
	if err != nil {
		return nil, err
	}
	if req.Ranker && s.ranker == nil {
		return nil, fmt.Errorf("%w: ranking requested but no ranker is configured", core.ErrUnsupportedConfiguration)
	}
	monitor.Start(&req)

	units, err := s.segmenter.Segment(ctx, req.Corpus, req.SourceType, req.Granularity)
	if err != nil {
		s.logger.Error("error segmenting corpus", "source", req.SourceType, "err", err)
		return nil, err
	}
	monitor.AfterSegmentation(units)

	corpora, err := window.Corpora(units, req.Granularity, sizes)
	if err != nil {
		return nil, err
	}
	spans := window.Flatten(corpora)
	monitor.AfterWindowing(spans)

	resp := &Response{
		Units:      units,
		Statistics: map[int]core.UnitStatistics{},
	}
	if len(spans) == 0 {
		s.logger.Debug("nothing to score", "units", len(units), "window_sizes", req.WindowSizes, "reason", core.ErrEmptyInput)
		resp.Duration = time.Since(start)
		monitor.Finish(resp)
		return resp, nil
	}

	src := retrieval.Sources{QueryEmbedder: s.queryEmbedder, Spans: spans}
	if retrieval.NeedsIndex(req.Retriever) {
		resp.Address = s.Address(req)
		src.Index, resp.CacheHit, err = s.manager.GetOrBuild(ctx, resp.Address, spans, s.embedding)
		if err != nil {
			s.logger.Error("error preparing index", "address", resp.Address, "err", err)
			return nil, err
		}
		monitor.AfterIndex(resp.Address, resp.CacheHit)
	}

	retriever, err := retrieval.New(req.Retriever, src)
	if err != nil {
		return nil, err
	}
	if req.Ranker {
		retriever, err = retrieval.NewReranked(retriever, s.ranker, req.RankerTopK)
		if err != nil {
			return nil, err
		}
	}
	resp.ScoredSpans, err = retriever.Retrieve(ctx, req.Query, req.RetrieverTopK)
	if err != nil {
		s.logger.Error("error retrieving spans", "retriever", req.Retriever, "err", err)
		return nil, err
	}
	monitor.AfterRetrieval(resp.ScoredSpans)

	resp.Statistics = aggregate.Aggregate(resp.ScoredSpans)
	monitor.AfterAggregation(resp.Statistics)

	resp.Selected, err = selection.Select(resp.Statistics, req.Policy)
	if err != nil {
		return nil, err
	}
	resp.Highlights = selection.Highlights(resp.Selected, units)
	resp.Duration = time.Since(start)

	s.logger.Debug("search complete",
		"units", len(units),
		"spans", len(spans),
		"scored", len(resp.ScoredSpans),
		"ranked", req.Ranker,
		"selected", len(resp.Selected),
		"cache_hit", resp.CacheHit,
		"duration", resp.Duration)
	monitor.Finish(resp)
	return resp, nil
}

// Prepared describes an index made ready by Prepare.
type Prepared struct {
	Address  core.Address
	CacheHit bool
	Units    int
	Spans    int
}

// Prepare segments and windows the corpus of req and builds or loads its
// index without running a query. Query, Retriever and Policy are ignored.
// A corpus with no spans yields a zero Address.
func (s *Searcher) Prepare(ctx context.Context, req Request) (*Prepared, error) {
	if err := core.ValidateSourceType(req.SourceType); err != nil {
		return nil, err
	}
	if err := core.ValidateGranularity(req.Granularity); err != nil {
		return nil, err
	}
	sizes, err := window.ParseSizes(req.WindowSizes)
	if err != nil {
		return nil, err
	}

	units, err := s.segmenter.Segment(ctx, req.Corpus, req.SourceType, req.Granularity)
	if err != nil {
		return nil, err
	}
	corpora, err := window.Corpora(units, req.Granularity, sizes)
	if err != nil {
		return nil, err
	}
	spans := window.Flatten(corpora)

	prepared := &Prepared{Units: len(units), Spans: len(spans)}
	if len(spans) == 0 {
		return prepared, nil
	}
	prepared.Address = s.Address(req)
	if _, prepared.CacheHit, err = s.manager.GetOrBuild(ctx, prepared.Address, spans, s.embedding); err != nil {
		s.logger.Error("error preparing index", "address", prepared.Address, "err", err)
		return nil, err
	}
	return prepared, nil
}
