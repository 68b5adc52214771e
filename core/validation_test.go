package core

import (
	"errors"
	"testing"
)

func TestValidateEmbeddingConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     EmbeddingConfig
		wantErr error
	}{
		{
			name:    "valid config",
			cfg:     EmbeddingConfig{QueryModel: "q", PassageModel: "p", Dimension: 384, Similarity: "cosine"},
			wantErr: nil,
		},
		{
			name:    "similarity may be empty",
			cfg:     EmbeddingConfig{QueryModel: "q", PassageModel: "p"},
			wantErr: nil,
		},
		{
			name:    "missing query model",
			cfg:     EmbeddingConfig{PassageModel: "p"},
			wantErr: ErrEmptyModel,
		},
		{
			name:    "missing passage model",
			cfg:     EmbeddingConfig{QueryModel: "q"},
			wantErr: ErrEmptyModel,
		},
		{
			name:    "negative dimension",
			cfg:     EmbeddingConfig{QueryModel: "q", PassageModel: "p", Dimension: -1},
			wantErr: ErrUnsupportedConfiguration,
		},
		{
			name:    "unknown similarity",
			cfg:     EmbeddingConfig{QueryModel: "q", PassageModel: "p", Similarity: "manhattan"},
			wantErr: ErrUnsupportedConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbeddingConfig(tt.cfg)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEmbeddingConfig() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEmbeddingConfig() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSpan(t *testing.T) {
	tests := []struct {
		name      string
		span      Span
		unitCount int
		wantErr   bool
	}{
		{"fits exactly", Span{StartIndex: 2, WindowSize: 3}, 5, false},
		{"single unit", Span{StartIndex: 0, WindowSize: 1}, 1, false},
		{"past the end", Span{StartIndex: 3, WindowSize: 3}, 5, true},
		{"negative start", Span{StartIndex: -1, WindowSize: 1}, 5, true},
		{"zero window", Span{StartIndex: 0, WindowSize: 0}, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpan(tt.span, tt.unitCount)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSpan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSpan) {
				t.Errorf("ValidateSpan() error = %v, want ErrInvalidSpan", err)
			}
		})
	}
}

func TestValidateEnums(t *testing.T) {
	if err := ValidateGranularity(GranularitySentence); err != nil {
		t.Errorf("ValidateGranularity(sentence) = %v", err)
	}
	if err := ValidateGranularity(Granularity(42)); !errors.Is(err, ErrUnsupportedConfiguration) {
		t.Errorf("ValidateGranularity(42) = %v, want ErrUnsupportedConfiguration", err)
	}
	if err := ValidateSourceType(SourceWeb); err != nil {
		t.Errorf("ValidateSourceType(web) = %v", err)
	}
	if err := ValidateSourceType(SourceType(0)); !errors.Is(err, ErrUnsupportedConfiguration) {
		t.Errorf("ValidateSourceType(0) = %v, want ErrUnsupportedConfiguration", err)
	}
	if err := ValidateRetrieverKind(RetrieverHybrid); err != nil {
		t.Errorf("ValidateRetrieverKind(hybrid) = %v", err)
	}
	if err := ValidateRetrieverKind(RetrieverKind(9)); !errors.Is(err, ErrUnsupportedConfiguration) {
		t.Errorf("ValidateRetrieverKind(9) = %v, want ErrUnsupportedConfiguration", err)
	}
}
