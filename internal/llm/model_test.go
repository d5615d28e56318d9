package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lvs170603/Quantum-Observer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFatalErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil", nil, false},
		{"network", errors.New("connection reset by peer"), false},
		{"deadline", context.DeadlineExceeded, false},
		{"not found", errors.New("HTTP 404: model not found"), false},
		{"quota", errors.New("You exceeded your current quota"), true},
		{"rate limited", errors.New("Rate limit reached for requests"), true},
		{"bad key", errors.New("error code: invalid_api_key"), true},
		{"forbidden", fmt.Errorf("bedrock: %w", errors.New("StatusCode: 403, AccessDeniedException")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, isFatalAPIError(tt.err))

			wrapped := wrapFatalError(tt.err)
			assert.Equal(t, tt.fatal, errors.Is(wrapped, ErrFatalAPI))
			if !tt.fatal {
				assert.Equal(t, tt.err, wrapped, "non-fatal errors pass through unchanged")
			} else {
				assert.ErrorIs(t, wrapped, tt.err)
			}
		})
	}
}

func TestNewModelConfigErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewModel(ctx, config.Config{LLMProvider: config.ProviderNone})
	assert.ErrorIs(t, err, ErrNoModel)

	_, err = NewModel(ctx, config.Config{})
	assert.ErrorIs(t, err, ErrNoModel)

	_, err = NewModel(ctx, config.Config{LLMProvider: config.ProviderOpenAI, LLMModel: "gpt-4o-mini"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")

	_, err = NewModel(ctx, config.Config{LLMProvider: "watsonx"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoModel)
}

func TestTokenUsage(t *testing.T) {
	tests := []struct {
		name    string
		info    map[string]any
		in, out int64
	}{
		{"nil", nil, 0, 0},
		{"openai", map[string]any{"PromptTokens": 120, "CompletionTokens": 40}, 120, 40},
		{"anthropic", map[string]any{"InputTokens": 88, "OutputTokens": int64(12)}, 88, 12},
		{"ollama json", map[string]any{"prompt_tokens": float64(7), "completion_tokens": float64(3)}, 7, 3},
		{"wrong types", map[string]any{"PromptTokens": "lots"}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out := tokenUsage(tt.info)
			assert.Equal(t, tt.in, in)
			assert.Equal(t, tt.out, out)
		})
	}
}
