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

package selection

import (
	"fmt"
	"sort"

	"github.com/poiesic/spansearch/core"
)

// Selected is one chosen unit with its statistics.
type Selected struct {
	Index      int
	Statistics core.UnitStatistics
}

// Highlight pairs a formatted score with the unit text it belongs to.
type Highlight struct {
	Index   int
	Label   string
	Content string
	Count   int
}

// Rank orders every unit of stats by mean score descending, then index ascending.
func Rank(stats map[int]core.UnitStatistics) []Selected {
	ranked := make([]Selected, 0, len(stats))
	for i, s := range stats {
		ranked = append(ranked, Selected{Index: i, Statistics: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Statistics.ScoreMean != b.Statistics.ScoreMean {
			return a.Statistics.ScoreMean > b.Statistics.ScoreMean
		}
		return a.Index < b.Index
	})
	return ranked
}

// Select returns the units policy keeps, best first. Empty statistics give
// an empty selection.
func Select(stats map[int]core.UnitStatistics, policy Policy) ([]Selected, error) {
	if policy == nil {
		return nil, fmt.Errorf("%w: no selection policy", core.ErrUnsupportedConfiguration)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	ranked := Rank(stats)
	return ranked[:policy.Count(len(ranked))], nil
}

// Label formats a mean score for display.
func Label(s core.UnitStatistics) string {
	return fmt.Sprintf("%.4f", s.ScoreMean)
}

// Labels returns the label of every selected unit, in selection order.
func Labels(selected []Selected) []string {
	labels := make([]string, len(selected))
	for i, s := range selected {
		labels[i] = Label(s.Statistics)
	}
	return labels
}

// Contents resolves selected indices back to unit text. Indices outside
// units resolve to the empty string.
func Contents(selected []Selected, units []core.Unit) []string {
	contents := make([]string, len(selected))
	for i, s := range selected {
		contents[i] = contentOf(s.Index, units)
	}
	return contents
}

// Highlights returns label and content pairs for the selected units.
func Highlights(selected []Selected, units []core.Unit) []Highlight {
	out := make([]Highlight, len(selected))
	for i, s := range selected {
		out[i] = Highlight{
			Index:   s.Index,
			Label:   Label(s.Statistics),
			Content: contentOf(s.Index, units),
			Count:   s.Statistics.Count,
		}
	}
	return out
}

func contentOf(index int, units []core.Unit) string {
	if index >= 0 && index < len(units) && units[index].Index == index {
		return units[index].Content
	}
	for _, u := range units {
		if u.Index == index {
			return u.Content
		}
	}
	return ""
}
