package answer

import (
	"context"
	"testing"

	"github.com/poiesic/spansearch/ai/mock"
	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/index"
	"github.com/poiesic/spansearch/search"
	"github.com/poiesic/spansearch/selection"
	"github.com/poiesic/spansearch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQA(t *testing.T, opts ...Option) (*QA, *mock.MockGenerator) {
	t.Helper()
	store, backend, err := badger.NewMemoryIndexStore()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	provider := mock.NewMockProvider().(*mock.MockProvider)
	manager, err := index.NewManager(store, provider.PassageEmbedder())
	require.NoError(t, err)
	t.Cleanup(manager.Release)

	embedding := core.EmbeddingConfig{QueryModel: "q", PassageModel: "p"}
	searcher, err := search.NewSearcher(manager, provider, embedding)
	require.NoError(t, err)

	qa, err := New(searcher, provider.Generator(), opts...)
	require.NoError(t, err)
	return qa, provider.GetMockGenerator()
}

func sentenceRequest(corpus, query string, policy selection.Policy) Request {
	return Request{
		Request: search.Request{
			Corpus:      corpus,
			SourceType:  core.SourceText,
			Granularity: core.GranularitySentence,
			WindowSizes: "1",
			Query:       query,
			Retriever:   core.RetrieverSparse,
			Policy:      policy,
		},
		MaxTokens: 64,
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(nil, mock.NewMockGenerator())
	assert.ErrorIs(t, err, ErrSearcherRequired)

	qa, _ := newTestQA(t)
	_, err = New(qa.searcher, nil)
	assert.ErrorIs(t, err, ErrGeneratorRequired)
}

func TestAnswer(t *testing.T) {
	qa, generator := newTestQA(t)
	corpus := "Paris is the capital of France. Rome is in Italy. The Seine flows through Paris."

	resp, err := qa.Answer(context.Background(), sentenceRequest(corpus, "What river flows through Paris?", selection.TopK(2)))
	require.NoError(t, err)

	assert.Equal(t, "mock answer", resp.Answer)
	assert.Equal(t, []string{"The Seine flows through Paris.", "Paris is the capital of France."}, resp.Passages)
	assert.Equal(t, 1, generator.CallCount())

	prompt := generator.LastPrompt()
	assert.Contains(t, prompt, "Passages: The Seine flows through Paris. Paris is the capital of France.")
	assert.Contains(t, prompt, "Question: What river flows through Paris?")
	assert.Positive(t, resp.Duration)
	assert.Len(t, resp.Search.Selected, 2)
}

func TestAnswer_CustomPrompt(t *testing.T) {
	qa, generator := newTestQA(t, WithPrompt("Q={{.question}} P={{.passages}}"))

	_, err := qa.Answer(context.Background(), sentenceRequest("Cats purr. Dogs bark.", "purr", selection.TopK(1)))
	require.NoError(t, err)
	assert.Equal(t, "Q=purr P=Cats purr.", generator.LastPrompt())
}

func TestAnswer_NothingSelected(t *testing.T) {
	qa, generator := newTestQA(t)

	resp, err := qa.Answer(context.Background(), sentenceRequest("Cats purr.", "purr", selection.Percentage(0)))
	require.NoError(t, err)
	assert.Empty(t, resp.Answer)
	assert.Equal(t, 0, generator.CallCount())
}

func TestAnswer_GeneratorError(t *testing.T) {
	qa, generator := newTestQA(t)
	generator.GenerateFunc = func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		assert.Equal(t, 64, maxTokens)
		return "", assert.AnError
	}

	_, err := qa.Answer(context.Background(), sentenceRequest("Cats purr.", "purr", selection.TopK(1)))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAnswer_SearchErrorPropagates(t *testing.T) {
	qa, _ := newTestQA(t)
	req := sentenceRequest("Cats purr.", "purr", nil)

	_, err := qa.Answer(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrUnsupportedConfiguration)
}
