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
	"sort"

	"github.com/poiesic/spansearch/core"
	"golang.org/x/sync/errgroup"
)

// DefaultRRFConstant dampens the weight of top ranks in reciprocal rank fusion.
const DefaultRRFConstant = 60

// Hybrid joins two retrievers with reciprocal rank fusion: a span scores
// the sum of 1/(k+rank) over the rankings it appears in, rank starting at 1.
type Hybrid struct {
	dense  Retriever
	sparse Retriever
	k      float64
}

var _ Retriever = (*Hybrid)(nil)

// NewHybrid fuses dense and sparse with the default constant.
func NewHybrid(dense, sparse Retriever) *Hybrid {
	return &Hybrid{dense: dense, sparse: sparse, k: DefaultRRFConstant}
}

// Retrieve runs both retrievers concurrently with the same topK and fuses
// their rankings. Ties keep the order of first appearance, dense first.
func (h *Hybrid) Retrieve(ctx context.Context, query string, topK int) ([]core.ScoredSpan, error) {
	var dense, sparse []core.ScoredSpan
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dense, err = h.dense.Retrieve(gctx, query, topK)
		return err
	})
	g.Go(func() error {
		var err error
		sparse, err = h.sparse.Retrieve(gctx, query, topK)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := Fuse(h.k, dense, sparse)
	if topK > 0 && topK < len(fused) {
		fused = fused[:topK]
	}
	return fused, nil
}

// Fuse combines rankings with reciprocal rank fusion using constant k.
func Fuse(k float64, rankings ...[]core.ScoredSpan) []core.ScoredSpan {
	positions := make(map[spanKey]int)
	var fused []core.ScoredSpan
	for _, ranking := range rankings {
		for rank, scored := range ranking {
			contribution := 1 / (k + float64(rank+1))
			key := keyOf(scored.Span)
			if pos, ok := positions[key]; ok {
				fused[pos].Score += contribution
				continue
			}
			positions[key] = len(fused)
			fused = append(fused, core.ScoredSpan{Span: scored.Span, Score: contribution})
		}
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	return fused
}
