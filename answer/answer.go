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

// Package answer writes long-form answers from the passages a search selects.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/spansearch/ai"
	"github.com/poiesic/spansearch/search"
	"github.com/poiesic/spansearch/selection"
	"github.com/poiesic/spansearch/window"
	"github.com/tmc/langchaingo/prompts"
)

// DefaultPrompt asks the generator to synthesize an answer from the passages.
// It is a Go template over .passages and .question.
const DefaultPrompt = `Synthesize a comprehensive answer from the following most relevant passages and the given question. ` +
	`Elaborate on the key points in the passages. If the passages are irrelevant to the question, say so and explain why.

Passages: {{.passages}}

Question: {{.question}}

Answer:`

var (
	// ErrSearcherRequired is returned when a QA is created without a searcher.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrGeneratorRequired is returned when a QA is created without a generator.
	ErrGeneratorRequired = errors.New("generator required")
)

// Request is a search request plus generation settings.
type Request struct {
	search.Request

	// MaxTokens bounds the answer length. Zero leaves it to the model.
	MaxTokens int
}

// Response carries the answer and what it was generated from.
type Response struct {
	Answer   string
	Passages []string
	Search   *search.Response
	Duration time.Duration
}

// QA answers questions over a corpus.
type QA struct {
	searcher  *search.Searcher
	generator ai.Generator
	prompt    prompts.PromptTemplate
	logger    *slog.Logger
}

// Option configures a QA.
type Option func(*QA) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(q *QA) error {
		if logger == nil {
			logger = slog.Default()
		}
		q.logger = logger
		return nil
	}
}

// WithPrompt replaces DefaultPrompt. The template may use .passages and .question.
func WithPrompt(template string) Option {
	return func(q *QA) error {
		q.prompt = prompts.NewPromptTemplate(template, []string{"passages", "question"})
		return nil
	}
}

// New creates a QA that searches with searcher and answers with generator.
func New(searcher *search.Searcher, generator ai.Generator, opts ...Option) (*QA, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	q := &QA{
		searcher:  searcher,
		generator: generator,
		prompt:    prompts.NewPromptTemplate(DefaultPrompt, []string{"passages", "question"}),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(q); err != nil {
			return nil, err
		}
	}
	q.logger = q.logger.With("component", "qa")
	return q, nil
}

// Answer searches the corpus for req.Query and asks the generator to answer
// it from the selected units, best first. When nothing is selected the
// generator is not called and the answer is empty.
func (q *QA) Answer(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	found, err := q.searcher.Search(ctx, req.Request)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Passages: selection.Contents(found.Selected, found.Units),
		Search:   found,
	}
	if len(resp.Passages) == 0 {
		q.logger.Debug("no passages selected, skipping generation")
		resp.Duration = time.Since(start)
		return resp, nil
	}

	prompt, err := q.prompt.Format(map[string]any{
		"passages": window.Degranularize(resp.Passages, req.Granularity),
		"question": req.Query,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting prompt: %w", err)
	}

	resp.Answer, err = q.generator.Generate(ctx, prompt, req.MaxTokens)
	if err != nil {
		q.logger.Error("error generating answer", "err", err)
		return nil, err
	}
	resp.Duration = time.Since(start)
	q.logger.Debug("answered question", "passages", len(resp.Passages), "duration", resp.Duration)
	return resp, nil
}
