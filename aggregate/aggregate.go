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

// Package aggregate folds span scores into per-unit statistics.
//
// Each unit covered by a scored span receives that span's score. The
// statistics of a unit are the count of covering spans and their running
// mean, updated online as count++, mean += (score-mean)/count. Units no
// scored span covers are absent from the result.
package aggregate

import "github.com/poiesic/spansearch/core"

// Aggregate returns the statistics of every unit covered by spans. It is a
// pure function: the result depends only on the multiset of spans, up to
// floating point rounding.
func Aggregate(spans []core.ScoredSpan) map[int]core.UnitStatistics {
	stats := make(map[int]core.UnitStatistics)
	for _, span := range spans {
		for i := span.StartIndex; i < span.End(); i++ {
			stats[i] = Observe(stats[i], span.Score)
		}
	}
	return stats
}

// Observe adds one score to s.
func Observe(s core.UnitStatistics, score float64) core.UnitStatistics {
	s.Count++
	s.ScoreMean += (score - s.ScoreMean) / float64(s.Count)
	return s
}

// Merge combines statistics computed over disjoint sets of spans, as if
// all spans had been aggregated together. Neither input is modified.
func Merge(a, b map[int]core.UnitStatistics) map[int]core.UnitStatistics {
	out := make(map[int]core.UnitStatistics, max(len(a), len(b)))
	for i, s := range a {
		out[i] = s
	}
	for i, s := range b {
		prev, ok := out[i]
		if !ok {
			out[i] = s
			continue
		}
		count := prev.Count + s.Count
		out[i] = core.UnitStatistics{
			Count:     count,
			ScoreMean: prev.ScoreMean + (s.ScoreMean-prev.ScoreMean)*float64(s.Count)/float64(count),
		}
	}
	return out
}
