package mock

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
)

// MockRanker is a test double for ai.Ranker.
type MockRanker struct {
	// RankFunc is called by Rank if set.
	// If nil, each text scores the share of query words it contains.
	RankFunc func(ctx context.Context, query string, texts []string) ([]float64, error)

	callCount atomic.Int64
	textCount atomic.Int64
	mu        sync.Mutex
	lastQuery string
}

// NewMockRanker creates a ranker with the default word overlap scoring.
func NewMockRanker() *MockRanker {
	return &MockRanker{}
}

// WithRankFunc installs fn and returns the ranker for chaining.
func (r *MockRanker) WithRankFunc(fn func(ctx context.Context, query string, texts []string) ([]float64, error)) *MockRanker {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RankFunc = fn
	return r
}

// Rank scores texts against query.
func (r *MockRanker) Rank(ctx context.Context, query string, texts []string) ([]float64, error) {
	r.callCount.Add(1)
	r.textCount.Add(int64(len(texts)))
	r.mu.Lock()
	r.lastQuery = query
	fn := r.RankFunc
	r.mu.Unlock()

	if fn != nil {
		return fn(ctx, query, texts)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scores := make([]float64, len(texts))
	for i, text := range texts {
		scores[i] = WordOverlap(query, text)
	}
	return scores, nil
}

// CallCount returns the number of Rank calls.
func (r *MockRanker) CallCount() int {
	return int(r.callCount.Load())
}

// TextCount returns the total number of texts ranked.
func (r *MockRanker) TextCount() int {
	return int(r.textCount.Load())
}

// LastQuery returns the query of the most recent call.
func (r *MockRanker) LastQuery() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastQuery
}

// WordOverlap returns the fraction of distinct query words found in text,
// ignoring case and punctuation. An empty query scores zero.
func WordOverlap(query, text string) float64 {
	queryWords := words(query)
	if len(queryWords) == 0 {
		return 0
	}
	textWords := words(text)
	hits := 0
	for w := range queryWords {
		if _, ok := textWords[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(queryWords))
}

func words(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[w] = struct{}{}
	}
	return set
}
