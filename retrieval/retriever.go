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

package retrieval

import (
	"context"
	"fmt"

	"github.com/poiesic/spansearch/ai"
	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/index"
)

// Retriever scores spans for a query.
type Retriever interface {
	// Retrieve returns up to topK scored spans, best first.
	// topK <= 0 returns every span.
	Retrieve(ctx context.Context, query string, topK int) ([]core.ScoredSpan, error)
}

// Sources holds what each strategy may need. Dense needs Index and
// QueryEmbedder, sparse needs Spans, hybrid needs all three.
type Sources struct {
	Index         *index.Index
	QueryEmbedder ai.Embedder
	Spans         []core.Span
}

// New returns the retriever for kind.
func New(kind core.RetrieverKind, src Sources) (Retriever, error) {
	switch kind {
	case core.RetrieverDense:
		return NewDense(src.Index, src.QueryEmbedder)
	case core.RetrieverSparse:
		return NewSparse(src.Spans), nil
	case core.RetrieverHybrid:
		dense, err := NewDense(src.Index, src.QueryEmbedder)
		if err != nil {
			return nil, err
		}
		return NewHybrid(dense, NewSparse(src.Spans)), nil
	}
	return nil, fmt.Errorf("%w: retriever %s", core.ErrUnsupportedConfiguration, kind)
}

// NeedsIndex reports whether kind scores against an embedding index.
func NeedsIndex(kind core.RetrieverKind) bool {
	return kind == core.RetrieverDense || kind == core.RetrieverHybrid
}

type spanKey struct {
	start, size int
}

func keyOf(s core.Span) spanKey {
	return spanKey{start: s.StartIndex, size: s.WindowSize}
}
