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
	"sort"

	"github.com/poiesic/spansearch/ai"
	"github.com/poiesic/spansearch/core"
)

// Reranked rescores the candidates of another retriever with a ranker.
// The ranker score replaces the retriever score, so aggregation sees the
// ranker's judgement for every span it keeps.
type Reranked struct {
	base   Retriever
	ranker ai.Ranker
	topK   int
}

var _ Retriever = (*Reranked)(nil)

// NewReranked wraps base. topK limits the spans kept after ranking; zero
// keeps every candidate.
func NewReranked(base Retriever, ranker ai.Ranker, topK int) (*Reranked, error) {
	if base == nil {
		return nil, ErrRetrieverRequired
	}
	if ranker == nil {
		return nil, ErrRankerRequired
	}
	if topK < 0 {
		return nil, fmt.Errorf("%w: ranker top-k %d", core.ErrUnsupportedConfiguration, topK)
	}
	return &Reranked{base: base, ranker: ranker, topK: topK}, nil
}

// Retrieve asks base for up to topK candidates, ranks them against query and
// returns them best first. Ties keep the candidate order of base.
func (r *Reranked) Retrieve(ctx context.Context, query string, topK int) ([]core.ScoredSpan, error) {
	candidates, err := r.base.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return candidates, nil
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Content
	}
	scores, err := r.ranker.Rank(ctx, query, texts)
	if err != nil {
		return nil, fmt.Errorf("ranking spans: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("%w: got %d scores for %d spans", ErrRankerScores, len(scores), len(candidates))
	}

	ranked := make([]core.ScoredSpan, len(candidates))
	for i, c := range candidates {
		ranked[i] = core.ScoredSpan{Span: c.Span, Score: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if r.topK > 0 && r.topK < len(ranked) {
		ranked = ranked[:r.topK]
	}
	return ranked, nil
}
