package retrieval

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/poiesic/spansearch/core"
)

// BM25 parameters (standard values)
const (
	k1 = 1.5  // Term frequency saturation
	b  = 0.75 // Length normalization
)

// Sparse scores spans with Okapi BM25. The term statistics are computed once
// when the retriever is created.
type Sparse struct {
	spans        []core.Span
	termFreqs    []map[string]int
	docLengths   []int
	docFreqs     map[string]int
	avgDocLength float64
}

var _ Retriever = (*Sparse)(nil)

// NewSparse indexes the contents of spans.
func NewSparse(spans []core.Span) *Sparse {
	s := &Sparse{
		spans:      spans,
		termFreqs:  make([]map[string]int, len(spans)),
		docLengths: make([]int, len(spans)),
		docFreqs:   make(map[string]int),
	}
	total := 0
	for i, span := range spans {
		tokens := Tokenize(span.Content)
		s.termFreqs[i] = TermFrequency(tokens)
		s.docLengths[i] = len(tokens)
		total += len(tokens)
		for term := range s.termFreqs[i] {
			s.docFreqs[term]++
		}
	}
	if len(spans) > 0 {
		s.avgDocLength = float64(total) / float64(len(spans))
	}
	return s
}

// Retrieve scores every span against the query terms. Spans sharing no term
// with the query score zero and still appear, after every matching span.
func (s *Sparse) Retrieve(ctx context.Context, query string, topK int) ([]core.ScoredSpan, error) {
	if len(s.spans) == 0 {
		return nil, nil
	}
	terms := Tokenize(query)

	results := make([]core.ScoredSpan, len(s.spans))
	for i, span := range s.spans {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		results[i] = core.ScoredSpan{Span: span, Score: s.score(terms, i)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// score computes BM25 for document i. The idf uses the +1 form so terms
// present in most spans never subtract from the score.
func (s *Sparse) score(terms []string, i int) float64 {
	if s.avgDocLength == 0 {
		return 0
	}
	n := float64(len(s.spans))
	docLength := float64(s.docLengths[i])
	score := 0.0
	for _, term := range terms {
		tf := float64(s.termFreqs[i][term])
		if tf == 0 {
			continue
		}
		df := float64(s.docFreqs[term])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		tfNorm := (tf * (k1 + 1)) / (tf + k1*(1-b+b*docLength/s.avgDocLength))
		score += idf * tfNorm
	}
	return score
}

// Tokenize lowercases text and splits it into runs of letters and digits.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TermFrequency counts occurrences of each term in tokens.
func TermFrequency(tokens []string) map[string]int {
	freqs := make(map[string]int, len(tokens))
	for _, token := range tokens {
		freqs[token]++
	}
	return freqs
}
