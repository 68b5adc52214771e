package retrieval

import (
	"context"
	"testing"

	"github.com/poiesic/spansearch/ai/mock"
	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/index"
	badgerstore "github.com/poiesic/spansearch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spansOf(contents ...string) []core.Span {
	spans := make([]core.Span, len(contents))
	for i, c := range contents {
		spans[i] = core.Span{StartIndex: i, WindowSize: 1, Content: c}
	}
	return spans
}

func buildIndex(t *testing.T, spans []core.Span) (*index.Index, *mock.MockEmbedder) {
	t.Helper()
	store, backend, err := badgerstore.NewMemoryIndexStore()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	embedder := mock.NewMockEmbedder()
	mgr, err := index.NewManager(store, embedder)
	require.NoError(t, err)
	t.Cleanup(mgr.Release)

	embedding := core.EmbeddingConfig{QueryModel: "m", PassageModel: "m", Similarity: "cosine"}
	address := core.AddressFor(core.AddressInput{Corpus: t.Name(), WindowSizes: "1", Embedding: embedding})
	idx, _, err := mgr.GetOrBuild(context.Background(), address, spans, embedding)
	require.NoError(t, err)
	return idx, embedder
}

func TestSparse_RanksMatchingSpansFirst(t *testing.T) {
	spans := spansOf(
		"the cat sat on the mat",
		"dogs chase cats",
		"a cat and a cat",
		"nothing relevant here",
	)
	results, err := NewSparse(spans).Retrieve(context.Background(), "Cat", 0)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, 2, results[0].StartIndex, "two occurrences in a short span")
	assert.Equal(t, 0, results[1].StartIndex)
	assert.Positive(t, results[1].Score)
	// no match keeps build order
	assert.Equal(t, 1, results[2].StartIndex)
	assert.Equal(t, 3, results[3].StartIndex)
	assert.Zero(t, results[3].Score)
}

func TestSparse_TopKAndEmpty(t *testing.T) {
	results, err := NewSparse(spansOf("a b", "b c", "c d")).Retrieve(context.Background(), "c", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = NewSparse(nil).Retrieve(context.Background(), "c", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "42"}, Tokenize("Hello, World! 42"))
	assert.Empty(t, Tokenize("  ...  "))
}

func TestDense_Retrieve(t *testing.T) {
	spans := spansOf("alpha", "beta", "gamma")
	idx, embedder := buildIndex(t, spans)

	dense, err := NewDense(idx, embedder)
	require.NoError(t, err)

	results, err := dense.Retrieve(context.Background(), "beta", 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "beta", results[0].Content)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)
}

func TestDense_RequiresCollaborators(t *testing.T) {
	_, err := NewDense(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrIndexRequired)

	idx, _ := buildIndex(t, spansOf("x"))
	_, err = NewDense(idx, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestDense_EmbedderError(t *testing.T) {
	idx, _ := buildIndex(t, spansOf("x"))
	failing := mock.NewMockEmbedder()
	failing.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, assert.AnError
	}
	dense, err := NewDense(idx, failing)
	require.NoError(t, err)

	_, err = dense.Retrieve(context.Background(), "x", 0)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestFuse(t *testing.T) {
	a := spansOf("a", "b", "c")
	first := []core.ScoredSpan{{Span: a[0]}, {Span: a[1]}, {Span: a[2]}}
	second := []core.ScoredSpan{{Span: a[2]}, {Span: a[1]}}

	fused := Fuse(60, first, second)
	require.Len(t, fused, 3)

	// b: 1/62 + 1/62, c: 1/63 + 1/61, a: 1/61
	assert.Equal(t, 2, fused[0].StartIndex)
	assert.Equal(t, 1, fused[1].StartIndex)
	assert.Equal(t, 0, fused[2].StartIndex)
	assert.InDelta(t, 1.0/63+1.0/61, fused[0].Score, 1e-12)
	assert.InDelta(t, 2.0/62, fused[1].Score, 1e-12)
	assert.InDelta(t, 1.0/61, fused[2].Score, 1e-12)
}

func TestHybrid_Retrieve(t *testing.T) {
	spans := spansOf("red apple", "green pear", "red cherry")
	idx, embedder := buildIndex(t, spans)

	r, err := New(core.RetrieverHybrid, Sources{Index: idx, QueryEmbedder: embedder, Spans: spans})
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "red apple", 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	// first in both rankings
	assert.Equal(t, "red apple", results[0].Content)
	assert.InDelta(t, 2.0/61, results[0].Score, 1e-12)

	top, err := r.Retrieve(context.Background(), "red apple", 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestNew_Dispatch(t *testing.T) {
	spans := spansOf("x")

	r, err := New(core.RetrieverSparse, Sources{Spans: spans})
	require.NoError(t, err)
	assert.IsType(t, &Sparse{}, r)

	_, err = New(core.RetrieverDense, Sources{Spans: spans})
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = New(core.RetrieverKind(42), Sources{})
	assert.ErrorIs(t, err, core.ErrUnsupportedConfiguration)

	assert.True(t, NeedsIndex(core.RetrieverHybrid))
	assert.False(t, NeedsIndex(core.RetrieverSparse))
}
