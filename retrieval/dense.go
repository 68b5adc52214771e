package retrieval

import (
	"context"
	"fmt"

	"github.com/poiesic/spansearch/ai"
	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/index"
)

// Dense scores spans by the similarity of their passage embedding to the
// query embedding.
type Dense struct {
	index    *index.Index
	embedder ai.Embedder
}

var _ Retriever = (*Dense)(nil)

// NewDense creates a dense retriever over idx. embedder must be the query
// encoder paired with the passage encoder idx was built with.
func NewDense(idx *index.Index, embedder ai.Embedder) (*Dense, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	return &Dense{index: idx, embedder: embedder}, nil
}

// Retrieve embeds query and ranks the index against it.
func (d *Dense) Retrieve(ctx context.Context, query string, topK int) ([]core.ScoredSpan, error) {
	if d.index.Len() == 0 {
		return nil, nil
	}
	vector, err := d.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return d.index.Query(ctx, vector, topK)
}
