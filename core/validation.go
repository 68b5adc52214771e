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


package core

import (
	"fmt"
	"slices"
)

var similarityFunctions = []string{"dot_product", "cosine"}

// ValidateGranularity checks that g is one of the known granularities.
func ValidateGranularity(g Granularity) error {
	if g < GranularityWord || g > GranularityParagraph {
		return fmt.Errorf("%w: granularity %d", ErrUnsupportedConfiguration, g)
	}
	return nil
}

// ValidateSourceType checks that s is one of the known source types.
func ValidateSourceType(s SourceType) error {
	if s < SourceText || s > SourceWeb {
		return fmt.Errorf("%w: source type %d", ErrUnsupportedConfiguration, s)
	}
	return nil
}

// ValidateRetrieverKind checks that k is one of the known retriever kinds.
func ValidateRetrieverKind(k RetrieverKind) error {
	if k < RetrieverDense || k > RetrieverHybrid {
		return fmt.Errorf("%w: retriever %d", ErrUnsupportedConfiguration, k)
	}
	return nil
}

// ValidateEmbeddingConfig validates an embedding configuration.
//
// Validation rules:
//   - QueryModel and PassageModel must not be empty
//   - Dimension must not be negative (zero means "whatever the model returns")
//   - Similarity must be empty, "dot_product" or "cosine"
func ValidateEmbeddingConfig(cfg EmbeddingConfig) error {
	if cfg.QueryModel == "" || cfg.PassageModel == "" {
		return fmt.Errorf("%w: %w", ErrUnsupportedConfiguration, ErrEmptyModel)
	}
	if cfg.Dimension < 0 {
		return fmt.Errorf("%w: dimension %d", ErrUnsupportedConfiguration, cfg.Dimension)
	}
	if cfg.Similarity != "" && !slices.Contains(similarityFunctions, cfg.Similarity) {
		return fmt.Errorf("%w: similarity function %q", ErrUnsupportedConfiguration, cfg.Similarity)
	}
	return nil
}

// ValidateSpan checks that span fits inside a sequence of unitCount units.
func ValidateSpan(span Span, unitCount int) error {
	if span.WindowSize < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidSpan, ErrInvalidWindowSize)
	}
	if span.StartIndex < 0 || span.End() > unitCount {
		return fmt.Errorf("%w: [%d,%d) outside %d units", ErrInvalidSpan, span.StartIndex, span.End(), unitCount)
	}
	return nil
}
