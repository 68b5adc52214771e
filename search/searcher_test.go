package search

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/poiesic/spansearch/ai/mock"
	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/index"
	"github.com/poiesic/spansearch/selection"
	"github.com/poiesic/spansearch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEmbedding = core.EmbeddingConfig{
	QueryModel:   "query-model",
	PassageModel: "passage-model",
	Similarity:   "cosine",
}

func newTestSearcher(t *testing.T, opts ...Option) (*Searcher, *index.Manager, *mock.MockProvider) {
	t.Helper()
	store, backend, err := badger.NewMemoryIndexStore()
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		backend.Close()
	})

	provider := mock.NewMockProvider().(*mock.MockProvider)
	manager, err := index.NewManager(store, provider.PassageEmbedder())
	require.NoError(t, err)
	t.Cleanup(manager.Release)

	searcher, err := NewSearcher(manager, provider, testEmbedding, opts...)
	require.NoError(t, err)
	return searcher, manager, provider
}

func wordRequest(corpus, sizes, query string, kind core.RetrieverKind, policy selection.Policy) Request {
	return Request{
		Corpus:      corpus,
		SourceType:  core.SourceText,
		Granularity: core.GranularityWord,
		WindowSizes: sizes,
		Query:       query,
		Retriever:   kind,
		Policy:      policy,
	}
}

func selectedIndices(resp *Response) []int {
	out := make([]int, len(resp.Selected))
	for i, s := range resp.Selected {
		out[i] = s.Index
	}
	return out
}

type recordingMonitor struct {
	stages   []string
	address  core.Address
	cacheHit bool
}

func (m *recordingMonitor) Start(_ *Request)                  { m.stages = append(m.stages, "start") }
func (m *recordingMonitor) AfterSegmentation(_ []core.Unit)   { m.stages = append(m.stages, "segment") }
func (m *recordingMonitor) AfterWindowing(_ []core.Span)      { m.stages = append(m.stages, "window") }
func (m *recordingMonitor) AfterRetrieval(_ []core.ScoredSpan) { m.stages = append(m.stages, "retrieve") }
func (m *recordingMonitor) Finish(_ *Response)                { m.stages = append(m.stages, "finish") }
func (m *recordingMonitor) AfterAggregation(_ map[int]core.UnitStatistics) {
	m.stages = append(m.stages, "aggregate")
}
func (m *recordingMonitor) AfterIndex(address core.Address, cacheHit bool) {
	m.stages = append(m.stages, "index")
	m.address = address
	m.cacheHit = cacheHit
}

func TestNewSearcher(t *testing.T) {
	store, backend, err := badger.NewMemoryIndexStore()
	require.NoError(t, err)
	defer backend.Close()
	provider := mock.NewMockProvider()
	manager, err := index.NewManager(store, provider.PassageEmbedder())
	require.NoError(t, err)
	defer manager.Release()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(manager, provider, testEmbedding)
		require.NoError(t, err)
		assert.Equal(t, testEmbedding, searcher.Embedding())
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(manager, provider, testEmbedding, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		_, err := NewSearcher(manager, provider, testEmbedding, WithLogger(slog.Default()))
		require.NoError(t, err)
	})

	t.Run("nil manager", func(t *testing.T) {
		_, err := NewSearcher(nil, provider, testEmbedding)
		assert.Equal(t, ErrManagerRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(manager, nil, testEmbedding)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("nil segmenter", func(t *testing.T) {
		_, err := NewSearcher(manager, provider, testEmbedding, WithSegmenter(nil))
		assert.Equal(t, ErrSegmenterRequired, err)
	})

	t.Run("bad embedding", func(t *testing.T) {
		_, err := NewSearcher(manager, provider, core.EmbeddingConfig{})
		assert.ErrorIs(t, err, core.ErrUnsupportedConfiguration)
	})
}

func TestSearch_Sparse(t *testing.T) {
	searcher, manager, _ := newTestSearcher(t)
	req := wordRequest("the cat sat on the mat", "1 2", "cat", core.RetrieverSparse, selection.TopK(1))

	resp, err := searcher.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, resp.Units, 6)
	assert.Len(t, resp.ScoredSpans, 11)
	assert.Len(t, resp.Statistics, 6)
	assert.Equal(t, 3, resp.Statistics[1].Count)
	assert.Equal(t, []int{1}, selectedIndices(resp))
	require.Len(t, resp.Highlights, 1)
	assert.Equal(t, "cat", resp.Highlights[0].Content)
	assert.Empty(t, resp.Address, "sparse retrieval uses no index")
	assert.Equal(t, index.Stats{}, manager.Stats())
	assert.Positive(t, resp.Duration)
}

func TestSearch_DenseCachesIndex(t *testing.T) {
	searcher, manager, provider := newTestSearcher(t)
	req := wordRequest("alpha beta gamma delta", "1", "gamma", core.RetrieverDense, selection.TopK(1))

	first, err := searcher.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, searcher.Address(req), first.Address)
	assert.Equal(t, []int{2}, selectedIndices(first))
	assert.Equal(t, "1.0000", first.Highlights[0].Label)

	second, err := searcher.Search(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, first.Selected, second.Selected)

	assert.Equal(t, index.Stats{Builds: 1, Loads: 1}, manager.Stats())
	// four passages once, plus one query per search
	assert.Equal(t, 4+2, provider.GetMockEmbedder().TextCount())

	req.WindowSizes = "1 2"
	third, err := searcher.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
	assert.NotEqual(t, first.Address, third.Address)
	assert.Equal(t, int64(2), manager.Stats().Builds)
}

func TestSearch_Hybrid(t *testing.T) {
	searcher, _, _ := newTestSearcher(t)
	req := wordRequest("red green blue", "1", "green", core.RetrieverHybrid, selection.TopK(1))

	resp, err := searcher.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, selectedIndices(resp))
	assert.NotEmpty(t, resp.Address)
}

func TestSearch_PercentagePolicy(t *testing.T) {
	searcher, _, _ := newTestSearcher(t)
	corpus := "one two three four five six seven eight nine ten"

	resp, err := searcher.Search(context.Background(), wordRequest(corpus, "1", "seven", core.RetrieverSparse, selection.Percentage(0.1)))
	require.NoError(t, err)
	assert.Equal(t, []int{6}, selectedIndices(resp))

	resp, err = searcher.Search(context.Background(), wordRequest(corpus, "1", "seven", core.RetrieverSparse, selection.Percentage(0)))
	require.NoError(t, err)
	assert.Empty(t, resp.Selected)
	assert.Len(t, resp.Statistics, 10)
}

func TestSearch_EmptyInput(t *testing.T) {
	searcher, manager, _ := newTestSearcher(t)

	t.Run("empty corpus", func(t *testing.T) {
		resp, err := searcher.Search(context.Background(), wordRequest("", "1 2", "x", core.RetrieverDense, selection.TopK(3)))
		require.NoError(t, err)
		assert.Empty(t, resp.Units)
		assert.Empty(t, resp.Statistics)
		assert.Empty(t, resp.Selected)
	})

	t.Run("corpus shorter than every window", func(t *testing.T) {
		resp, err := searcher.Search(context.Background(), wordRequest("one two", "3", "x", core.RetrieverDense, selection.TopK(3)))
		require.NoError(t, err)
		assert.Len(t, resp.Units, 2)
		assert.Empty(t, resp.Selected)
	})

	assert.Equal(t, int64(0), manager.Stats().Builds)
}

func TestSearch_UnsupportedConfiguration(t *testing.T) {
	searcher, _, _ := newTestSearcher(t)
	valid := wordRequest("a b c", "1", "a", core.RetrieverSparse, selection.TopK(1))

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"granularity", func(r *Request) { r.Granularity = 0 }},
		{"source type", func(r *Request) { r.SourceType = 9 }},
		{"retriever", func(r *Request) { r.Retriever = 9 }},
		{"no policy", func(r *Request) { r.Policy = nil }},
		{"bad policy", func(r *Request) { r.Policy = selection.Percentage(2) }},
		{"window size zero", func(r *Request) { r.WindowSizes = "1 0" }},
		{"no window sizes", func(r *Request) { r.WindowSizes = "" }},
		{"negative top-k", func(r *Request) { r.RetrieverTopK = -1 }},
		{"negative ranker top-k", func(r *Request) { r.Ranker = true; r.RankerTopK = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := searcher.Search(context.Background(), req)
			assert.ErrorIs(t, err, core.ErrUnsupportedConfiguration)
		})
	}
}

func TestSearch_RankerScoresReachStatistics(t *testing.T) {
	searcher, _, provider := newTestSearcher(t)
	require.True(t, searcher.HasRanker())
	ranker := provider.GetMockRanker().WithRankFunc(func(_ context.Context, _ string, texts []string) ([]float64, error) {
		scores := make([]float64, len(texts))
		for i, text := range texts {
			if strings.Contains(text, "pear") {
				scores[i] = 1
			}
		}
		return scores, nil
	})
	req := wordRequest("apple pear plum", "1 2", "apple", core.RetrieverSparse, selection.TopK(1))

	plain, err := searcher.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, selectedIndices(plain))
	assert.Zero(t, ranker.CallCount())

	req.Ranker = true
	resp, err := searcher.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, ranker.CallCount())
	assert.Equal(t, 5, ranker.TextCount())
	require.Len(t, resp.ScoredSpans, 5)

	// unit 1 is covered by three pear spans, the others by one pear span each
	assert.Equal(t, core.UnitStatistics{Count: 2, ScoreMean: 0.5}, resp.Statistics[0])
	assert.Equal(t, core.UnitStatistics{Count: 3, ScoreMean: 1}, resp.Statistics[1])
	assert.Equal(t, core.UnitStatistics{Count: 2, ScoreMean: 0.5}, resp.Statistics[2])
	assert.Equal(t, []int{1}, selectedIndices(resp))

	req.RankerTopK = 1
	limited, err := searcher.Search(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, limited.ScoredSpans, 1)
	assert.Equal(t, 1.0, limited.ScoredSpans[0].Score)
}

func TestSearch_RankerNotConfigured(t *testing.T) {
	store, backend, err := badger.NewMemoryIndexStore()
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		backend.Close()
	})
	provider := mock.NewMockProviderWithRanker(nil)
	manager, err := index.NewManager(store, provider.PassageEmbedder())
	require.NoError(t, err)
	t.Cleanup(manager.Release)

	searcher, err := NewSearcher(manager, provider, testEmbedding)
	require.NoError(t, err)
	assert.False(t, searcher.HasRanker())

	req := wordRequest("a b c", "1", "a", core.RetrieverSparse, selection.TopK(1))
	_, err = searcher.Search(context.Background(), req)
	require.NoError(t, err)

	req.Ranker = true
	_, err = searcher.Search(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrUnsupportedConfiguration)
}

func TestSearch_DefaultsToDense(t *testing.T) {
	searcher, _, _ := newTestSearcher(t)
	resp, err := searcher.Search(context.Background(), wordRequest("a b", "1", "a", 0, selection.TopK(1)))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Address)
}

func TestSearchWithMonitor(t *testing.T) {
	searcher, _, _ := newTestSearcher(t)
	req := wordRequest("a b c", "1", "b", core.RetrieverDense, selection.TopK(1))

	monitor := &recordingMonitor{}
	_, err := searcher.SearchWithMonitor(context.Background(), req, monitor)
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "segment", "window", "index", "retrieve", "aggregate", "finish"}, monitor.stages)
	assert.Equal(t, searcher.Address(req), monitor.address)
	assert.False(t, monitor.cacheHit)

	monitor = &recordingMonitor{}
	_, err = searcher.SearchWithMonitor(context.Background(), req, monitor)
	require.NoError(t, err)
	assert.True(t, monitor.cacheHit)
}

func TestSearch_EmbedderFailurePropagates(t *testing.T) {
	searcher, _, provider := newTestSearcher(t)
	provider.GetMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, assert.AnError
	})

	_, err := searcher.Search(context.Background(), wordRequest("a b", "1", "a", core.RetrieverDense, selection.TopK(1)))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPrepare(t *testing.T) {
	searcher, manager, provider := newTestSearcher(t)
	req := wordRequest("one two three", "1 2", "", 0, nil)

	prepared, err := searcher.Prepare(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, searcher.Address(req), prepared.Address)
	assert.False(t, prepared.CacheHit)
	assert.Equal(t, 3, prepared.Units)
	assert.Equal(t, 5, prepared.Spans)
	assert.Equal(t, 5, provider.GetMockEmbedder().TextCount())

	req.Query = "two"
	req.Policy = selection.TopK(1)
	resp, err := searcher.Search(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.CacheHit)
	assert.Equal(t, index.Stats{Builds: 1, Loads: 1}, manager.Stats())
}

func TestPrepare_NoSpans(t *testing.T) {
	searcher, manager, _ := newTestSearcher(t)

	prepared, err := searcher.Prepare(context.Background(), wordRequest("one", "2", "", 0, nil))
	require.NoError(t, err)
	assert.Empty(t, prepared.Address)
	assert.Equal(t, 1, prepared.Units)
	assert.Equal(t, index.Stats{}, manager.Stats())

	_, err = searcher.Prepare(context.Background(), wordRequest("one", "", "", 0, nil))
	assert.ErrorIs(t, err, core.ErrUnsupportedConfiguration)
}
