package search

import (
	"fmt"
	"time"

	"github.com/poiesic/spansearch/core"
	"github.com/poiesic/spansearch/selection"
	"github.com/poiesic/spansearch/window"
)

// Request describes one search.
type Request struct {
	// Corpus is the text itself, a file path or a URL, per SourceType.
	Corpus      string
	SourceType  core.SourceType
	Granularity core.Granularity

	// WindowSizes is the space separated list of window sizes, e.g. "1 2 3".
	// It is hashed verbatim into the content address.
	WindowSizes string

	Query string

	// Retriever defaults to dense when zero.
	Retriever core.RetrieverKind

	// RetrieverTopK limits how many spans the retriever scores.
	// Zero scores every span.
	RetrieverTopK int

	// Ranker rescores the retrieved spans with the provider's ranker before
	// aggregation. The searcher must have a ranker.
	Ranker bool

	// RankerTopK limits how many ranked spans reach aggregation.
	// Zero keeps every retrieved span.
	RankerTopK int

	Policy selection.Policy
}

// Response is the outcome of a search.
type Response struct {
	Units       []core.Unit
	Statistics  map[int]core.UnitStatistics
	Selected    []selection.Selected
	Highlights  []selection.Highlight
	ScoredSpans []core.ScoredSpan

	// Address and CacheHit are only set when the retriever used an index.
	Address  core.Address
	CacheHit bool

	Duration time.Duration
}

// normalize validates req and returns its parsed window sizes.
func (req *Request) normalize() ([]int, error) {
	if err := core.ValidateSourceType(req.SourceType); err != nil {
		return nil, err
	}
	if err := core.ValidateGranularity(req.Granularity); err != nil {
		return nil, err
	}
	if req.Retriever == 0 {
		req.Retriever = core.RetrieverDense
	}
	if err := core.ValidateRetrieverKind(req.Retriever); err != nil {
		return nil, err
	}
	if req.RetrieverTopK < 0 {
		return nil, fmt.Errorf("%w: retriever top-k %d", core.ErrUnsupportedConfiguration, req.RetrieverTopK)
	}
	if req.RankerTopK < 0 {
		return nil, fmt.Errorf("%w: ranker top-k %d", core.ErrUnsupportedConfiguration, req.RankerTopK)
	}
	if req.Policy == nil {
		return nil, fmt.Errorf("%w: no selection policy", core.ErrUnsupportedConfiguration)
	}
	if err := req.Policy.Validate(); err != nil {
		return nil, err
	}
	return window.ParseSizes(req.WindowSizes)
}
