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
package openai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/spansearch/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/sync/errgroup"
)

const rankerPrompt = "Rate how well the passage answers the query on a scale from 0 to 10. " +
	"Reply with the number only."

// maxRelevance is the top of the scale requested by rankerPrompt.
const maxRelevance = 10

// DefaultRankerConcurrency bounds the scoring requests in flight per Rank call.
const DefaultRankerConcurrency = 4

// Ranker implements ai.Ranker by asking an OpenAI-compatible chat model to
// grade each query and passage pair. Scores are in [0,1].
type Ranker struct {
	client      llms.Model
	model       string
	concurrency int
	logger      *slog.Logger
}

// newRanker is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newRanker(config *ai.Config) (*Ranker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.RankerModel == "" {
		return nil, errors.New("ai config: RankerModel is required")
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.RankerModel),
	)
	if err != nil {
		return nil, err
	}

	return &Ranker{
		client:      client,
		model:       config.RankerModel,
		concurrency: DefaultRankerConcurrency,
		logger:      slog.Default().With("component", "openai-ranker", "model", config.RankerModel),
	}, nil
}

// NewRanker creates a ranker for the ranker model of config.
//
// Returns ai.Ranker interface to enforce abstraction.
func NewRanker(config *ai.Config) (ai.Ranker, error) {
	return newRanker(config)
}

// Model returns the ranker model identifier.
func (r *Ranker) Model() string {
	return r.model
}

// Rank grades every text against query. A reply without a usable number
// scores zero.
func (r *Ranker) Rank(ctx context.Context, query string, texts []string) ([]float64, error) {
	r.logger.Debug("ranking passages", "count", len(texts))
	scores := make([]float64, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			score, err := r.grade(gctx, query, text)
			if err != nil {
				return err
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Error("failed to rank passages", "count", len(texts), "err", err)
		return nil, err
	}
	return scores, nil
}

func (r *Ranker) grade(ctx context.Context, query, text string) (float64, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(rankerPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(rankerInput(query, text))},
		},
	}

	response, err := r.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.0),
		llms.WithMaxTokens(8),
	)
	if err != nil {
		return 0, err
	}
	if len(response.Choices) < 1 {
		r.logger.Warn("no choices returned from ranker model")
		return 0, nil
	}

	reply := cleanCompletion(response.Choices[0].Content)
	score, ok := parseRelevance(reply, maxRelevance)
	if !ok {
		r.logger.Warn("unusable ranker reply", "reply", reply)
	}
	return score, nil
}
