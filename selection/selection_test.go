package selection

import (
	"testing"

	"github.com/poiesic/spansearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func means(values map[int]float64) map[int]core.UnitStatistics {
	stats := make(map[int]core.UnitStatistics, len(values))
	for i, v := range values {
		stats[i] = core.UnitStatistics{Count: 1, ScoreMean: v}
	}
	return stats
}

func indices(selected []Selected) []int {
	out := make([]int, len(selected))
	for i, s := range selected {
		out[i] = s.Index
	}
	return out
}

func TestSelect_TiesBrokenByIndex(t *testing.T) {
	stats := means(map[int]float64{0: 0.9, 1: 0.9, 2: 0.5})

	for run := 0; run < 20; run++ {
		selected, err := Select(stats, TopK(2))
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, indices(selected))
	}
}

func TestSelect_PercentageBoundary(t *testing.T) {
	stats := make(map[int]float64)
	for i := 0; i < 10; i++ {
		stats[i] = float64(i)
	}

	selected, err := Select(means(stats), Percentage(0.1))
	require.NoError(t, err)
	assert.Equal(t, []int{9}, indices(selected))

	selected, err = Select(means(stats), Percentage(0))
	require.NoError(t, err)
	assert.Empty(t, selected)

	selected, err = Select(means(stats), Percentage(1))
	require.NoError(t, err)
	assert.Len(t, selected, 10)
}

func TestPolicy_Count(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		n      int
		want   int
	}{
		{"percentage floors", Percentage(0.25), 10, 2},
		{"percentage truncates float product", Percentage(0.29), 100, 28},
		{"percentage truncates second product", Percentage(0.57), 100, 56},
		{"percentage exact product", Percentage(0.1), 10, 1},
		{"percentage of one below one", Percentage(0.99), 1, 0},
		{"percentage of nothing", Percentage(0.5), 0, 0},
		{"top-k below n", TopK(3), 10, 3},
		{"top-k above n", TopK(30), 10, 10},
		{"top-k zero", TopK(0), 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Count(tt.n))
		})
	}
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, Percentage(0.5).Validate())
	assert.ErrorIs(t, Percentage(1.5).Validate(), core.ErrUnsupportedConfiguration)
	assert.ErrorIs(t, Percentage(-0.1).Validate(), core.ErrUnsupportedConfiguration)
	assert.ErrorIs(t, TopK(-1).Validate(), core.ErrUnsupportedConfiguration)

	_, err := Select(means(map[int]float64{0: 1}), TopK(-1))
	assert.ErrorIs(t, err, core.ErrUnsupportedConfiguration)
	_, err = Select(nil, nil)
	assert.ErrorIs(t, err, core.ErrUnsupportedConfiguration)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("percentage", 0.2)
	require.NoError(t, err)
	assert.Equal(t, Percentage(0.2), p)

	p, err = ParsePolicy("top_k", 3)
	require.NoError(t, err)
	assert.Equal(t, TopK(3), p)
	assert.Equal(t, "top_k=3", p.String())

	_, err = ParsePolicy("top_k", 2.5)
	assert.ErrorIs(t, err, core.ErrUnsupportedConfiguration)
	_, err = ParsePolicy("threshold", 1)
	assert.ErrorIs(t, err, core.ErrUnsupportedConfiguration)
}

func TestSelect_Empty(t *testing.T) {
	selected, err := Select(nil, Percentage(0.5))
	require.NoError(t, err)
	assert.Empty(t, selected)
}

func TestLabelsAndContents(t *testing.T) {
	units := []core.Unit{{Index: 0, Content: "first"}, {Index: 1, Content: "second"}, {Index: 2, Content: "third"}}
	stats := map[int]core.UnitStatistics{
		0: {Count: 2, ScoreMean: 0.123456},
		2: {Count: 1, ScoreMean: 0.9},
	}

	selected, err := Select(stats, TopK(5))
	require.NoError(t, err)

	assert.Equal(t, []string{"0.9000", "0.1235"}, Labels(selected))
	assert.Equal(t, []string{"third", "first"}, Contents(selected, units))
	assert.Equal(t, []Highlight{
		{Index: 2, Label: "0.9000", Content: "third", Count: 1},
		{Index: 0, Label: "0.1235", Content: "first", Count: 2},
	}, Highlights(selected, units))

	assert.Equal(t, []string{""}, Contents([]Selected{{Index: 7}}, units))
}

func TestNormalizeForMatch(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"punctuation and spaces", "Hello,  world... again!", "Helloworldagain"},
		{"email", "write to jane@example.com today", "writetotoday"},
		{"url", "see https://example.com/a?b=c now", "seenow"},
		{"citation brackets", "as shown [1, 2, 3] before", "asshownbefore"},
		{"citation run", "claims [1] [2] [3]. next", "claimsnext"},
		{"spaced letters", "t h e end", "end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeForMatch(tt.in))
		})
	}
}
