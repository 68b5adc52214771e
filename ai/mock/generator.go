package mock

import (
	"context"
	"sync"
	"sync/atomic"
)

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, Generate returns Answer.
	GenerateFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

	// Answer is the default completion.
	Answer string

	callCount  atomic.Int64
	mu         sync.Mutex
	lastPrompt string
}

// NewMockGenerator creates a generator that always answers "mock answer".
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{Answer: "mock answer"}
}

// Generate records prompt and returns the configured answer.
func (g *MockGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	g.callCount.Add(1)
	g.mu.Lock()
	g.lastPrompt = prompt
	fn := g.GenerateFunc
	g.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt, maxTokens)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.Answer, nil
}

// CallCount returns the number of Generate calls.
func (g *MockGenerator) CallCount() int {
	return int(g.callCount.Load())
}

// LastPrompt returns the prompt of the most recent call.
func (g *MockGenerator) LastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastPrompt
}
