package core

import (
	"fmt"
	"strings"
	"time"
)

// Granularity identifies the kind of atomic unit a corpus is split into.
type Granularity int

const (
	// GranularityWord splits the corpus on single spaces.
	GranularityWord Granularity = iota + 1
	// GranularitySentence splits the corpus into sentences.
	GranularitySentence
	// GranularityParagraph splits the corpus into paragraphs.
	GranularityParagraph
)

// String returns the lowercase name of the granularity.
func (g Granularity) String() string {
	switch g {
	case GranularityWord:
		return "word"
	case GranularitySentence:
		return "sentence"
	case GranularityParagraph:
		return "paragraph"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// Separator returns the string used to join units of this granularity
// back into span content.
func (g Granularity) Separator() string {
	if g == GranularityParagraph {
		return "\n"
	}
	return " "
}

// ParseGranularity converts a name such as "sentence" into a Granularity.
func ParseGranularity(name string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "word":
		return GranularityWord, nil
	case "sentence":
		return GranularitySentence, nil
	case "paragraph":
		return GranularityParagraph, nil
	}
	return 0, fmt.Errorf("%w: granularity %q", ErrUnsupportedConfiguration, name)
}

// SourceType identifies where corpus text comes from.
type SourceType int

const (
	// SourceText means the corpus string is the text itself.
	SourceText SourceType = iota + 1
	// SourceFile means the corpus string is a path to a local file.
	SourceFile
	// SourceWeb means the corpus string is a URL.
	SourceWeb
)

// String returns the lowercase name of the source type.
func (s SourceType) String() string {
	switch s {
	case SourceText:
		return "text"
	case SourceFile:
		return "file"
	case SourceWeb:
		return "web"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// ParseSourceType converts a name such as "web" into a SourceType.
func ParseSourceType(name string) (SourceType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "text":
		return SourceText, nil
	case "file":
		return SourceFile, nil
	case "web":
		return SourceWeb, nil
	}
	return 0, fmt.Errorf("%w: source type %q", ErrUnsupportedConfiguration, name)
}

// RetrieverKind selects the scoring strategy used against a corpus.
type RetrieverKind int

const (
	// RetrieverDense scores spans by embedding similarity.
	RetrieverDense RetrieverKind = iota + 1
	// RetrieverSparse scores spans with BM25 over their terms.
	RetrieverSparse
	// RetrieverHybrid fuses dense and sparse rankings.
	RetrieverHybrid
)

// String returns the lowercase name of the retriever kind.
func (k RetrieverKind) String() string {
	switch k {
	case RetrieverDense:
		return "dense"
	case RetrieverSparse:
		return "sparse"
	case RetrieverHybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("retriever(%d)", int(k))
	}
}

// ParseRetrieverKind converts a name such as "hybrid" into a RetrieverKind.
func ParseRetrieverKind(name string) (RetrieverKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dense":
		return RetrieverDense, nil
	case "sparse":
		return RetrieverSparse, nil
	case "hybrid":
		return RetrieverHybrid, nil
	}
	return 0, fmt.Errorf("%w: retriever %q", ErrUnsupportedConfiguration, name)
}

// Unit is one element of a granularized corpus.
type Unit struct {
	Index   int
	Content string
}

// Span is a run of WindowSize consecutive units starting at StartIndex.
// Content holds the joined text of the covered units.
type Span struct {
	StartIndex int
	WindowSize int
	Content    string
}

// End returns the index one past the last covered unit.
func (s Span) End() int {
	return s.StartIndex + s.WindowSize
}

// Covers reports whether the span includes the unit at index.
func (s Span) Covers(index int) bool {
	return index >= s.StartIndex && index < s.End()
}

// ScoredSpan is a span with the score a retriever assigned to it for one query.
type ScoredSpan struct {
	Span
	Score float64
}

// UnitStatistics is the running summary of every score touching one unit.
type UnitStatistics struct {
	Count     int
	ScoreMean float64
}

// EmbeddingConfig describes the encoders used to build and query an index.
// Every field participates in the content address.
type EmbeddingConfig struct {
	QueryModel   string
	PassageModel string
	Dimension    int
	Similarity   string // "dot_product" or "cosine"
}

// String renders the configuration in a stable form for hashing.
func (c EmbeddingConfig) String() string {
	return fmt.Sprintf("query=%s;passage=%s;dim=%d;sim=%s",
		c.QueryModel, c.PassageModel, c.Dimension, c.Similarity)
}

// IndexConfig is the small config blob persisted next to an index.
type IndexConfig struct {
	Address      string
	QueryModel   string
	PassageModel string
	Dimension    int
	Similarity   string
	WindowSizes  []int
	SpanCount    int
	CreatedAt    time.Time
}

// IndexedSpan is a span together with its passage embedding.
type IndexedSpan struct {
	StartIndex int
	WindowSize int
	Content    string
	Vector     []float32
}

// Span returns the span without its vector.
func (s IndexedSpan) Span() Span {
	return Span{StartIndex: s.StartIndex, WindowSize: s.WindowSize, Content: s.Content}
}
