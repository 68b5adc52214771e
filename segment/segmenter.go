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

package segment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/spansearch/core"
)

// Segmenter splits a corpus into atomic units.
//
// Plain text corpora go through the light pipeline: boundary detection runs
// directly on the raw string. File and web corpora go through the heavy
// pipeline: the reference is first resolved to text by an Extractor and
// normalized, then split.
type Segmenter struct {
	file   Extractor
	web    Extractor
	logger *slog.Logger
}

// Option configures a Segmenter.
type Option func(*Segmenter) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Segmenter) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithFileExtractor replaces the extractor used for file corpora.
func WithFileExtractor(e Extractor) Option {
	return func(s *Segmenter) error {
		if e == nil {
			return ErrExtractorRequired
		}
		s.file = e
		return nil
	}
}

// WithWebExtractor replaces the extractor used for web corpora.
func WithWebExtractor(e Extractor) Option {
	return func(s *Segmenter) error {
		if e == nil {
			return ErrExtractorRequired
		}
		s.web = e
		return nil
	}
}

// NewSegmenter creates a segmenter with the default file and web extractors.
func NewSegmenter(opts ...Option) (*Segmenter, error) {
	s := &Segmenter{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "segmenter")
	if s.file == nil {
		s.file = NewFileExtractor(s.logger)
	}
	if s.web == nil {
		s.web = NewWebExtractor(nil, s.logger)
	}
	return s, nil
}

// Segment splits corpus into units of the requested granularity. An empty
// corpus yields no units and no error.
func (s *Segmenter) Segment(ctx context.Context, corpus string, source core.SourceType, granularity core.Granularity) ([]core.Unit, error) {
	if err := core.ValidateSourceType(source); err != nil {
		return nil, err
	}
	if err := core.ValidateGranularity(granularity); err != nil {
		return nil, err
	}

	text, err := s.resolve(ctx, corpus, source)
	if err != nil {
		return nil, err
	}

	var parts []string
	switch granularity {
	case core.GranularityWord:
		if source == core.SourceText {
			parts = splitWords(text)
		} else {
			parts = strings.Fields(text)
		}
	case core.GranularitySentence:
		parts = splitSentences(text)
	case core.GranularityParagraph:
		parts = splitParagraphs(text)
	}

	units := make([]core.Unit, len(parts))
	for i, p := range parts {
		units[i] = core.Unit{Index: i, Content: p}
	}
	s.logger.Debug("segmented corpus", "source", source, "granularity", granularity, "units", len(units))
	return units, nil
}

func (s *Segmenter) resolve(ctx context.Context, corpus string, source core.SourceType) (string, error) {
	switch source {
	case core.SourceText:
		return corpus, nil
	case core.SourceFile:
		if strings.TrimSpace(corpus) == "" {
			return "", nil
		}
		text, err := s.file.Extract(ctx, corpus)
		if err != nil {
			return "", fmt.Errorf("extract file %q: %w", corpus, err)
		}
		return text, nil
	case core.SourceWeb:
		if strings.TrimSpace(corpus) == "" {
			return "", nil
		}
		text, err := s.web.Extract(ctx, corpus)
		if err != nil {
			return "", fmt.Errorf("extract page %q: %w", corpus, err)
		}
		return text, nil
	}
	return "", fmt.Errorf("%w: source type %s", core.ErrUnsupportedConfiguration, source)
}
