package index

import (
	"context"
	"fmt"
	"sort"

	"github.com/poiesic/spansearch/core"
)

// Similarity functions recorded in core.IndexConfig.
const (
	SimilarityDotProduct = "dot_product"
	SimilarityCosine     = "cosine"
)

// Index is an in-memory, read-only view of a built index.
// It is safe for concurrent queries.
type Index struct {
	config  core.IndexConfig
	spans   []core.Span
	vectors [][]float32
	cosine  bool
}

func newIndex(config *core.IndexConfig, indexed []core.IndexedSpan) *Index {
	idx := &Index{
		config:  *config,
		spans:   make([]core.Span, len(indexed)),
		vectors: make([][]float32, len(indexed)),
		cosine:  config.Similarity == SimilarityCosine,
	}
	for i, s := range indexed {
		idx.spans[i] = s.Span()
		if idx.cosine {
			idx.vectors[i] = NormalizeVector(s.Vector)
		} else {
			idx.vectors[i] = s.Vector
		}
	}
	return idx
}

// Config returns the persisted config of the index.
func (x *Index) Config() core.IndexConfig {
	return x.config
}

// Address returns the content address the index is stored under.
func (x *Index) Address() core.Address {
	return core.Address(x.config.Address)
}

// Len returns the number of indexed spans.
func (x *Index) Len() int {
	return len(x.spans)
}

// Spans returns the indexed spans in build order.
func (x *Index) Spans() []core.Span {
	out := make([]core.Span, len(x.spans))
	copy(out, x.spans)
	return out
}

// Query scores every span against vector and returns the topK best,
// highest score first. Equal scores keep build order. topK <= 0 returns all
// spans.
func (x *Index) Query(ctx context.Context, vector []float32, topK int) ([]core.ScoredSpan, error) {
	if len(x.spans) == 0 {
		return nil, nil
	}
	if x.config.Dimension > 0 && len(vector) != x.config.Dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			ErrDimensionMismatch, len(vector), x.config.Dimension)
	}
	if x.cosine {
		vector = NormalizeVector(vector)
	}

	results := make([]core.ScoredSpan, len(x.spans))
	for i, span := range x.spans {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if len(x.vectors[i]) != len(vector) {
			return nil, fmt.Errorf("%w: span %d has %d dimensions, query has %d",
				ErrDimensionMismatch, i, len(x.vectors[i]), len(vector))
		}
		results[i] = core.ScoredSpan{Span: span, Score: dotProduct(x.vectors[i], vector)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}
