// Package providers builds the long-lived model clients shared by the extractor and the orchestrator
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/bububa/instructor-go/pkg/instructor"
	"github.com/google/generative-ai-go/genai"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/bububa/planthy/config"
)

// NewOpenAI returns a chat client for any OpenAI compatible endpoint
func NewOpenAI(cfg config.LLMConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURLs[cfg.Provider]
	}
	if baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return openai.NewClientWithConfig(clientCfg)
}

// NewAnthropic returns an anthropic messages client
func NewAnthropic(cfg config.LLMConfig) *anthropic.Client {
	opts := make([]anthropic.ClientOption, 0, 1)
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	return anthropic.NewClient(cfg.APIKey, opts...)
}

// NewGemini returns a native gemini client, the caller owns Close
func NewGemini(ctx context.Context, cfg config.LLMConfig) (*genai.Client, error) {
	clt, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return clt, nil
}

// NewInstructor wraps a chat client for structured JSON extraction.
// maxAttempts bounds the model calls made for a single extraction, 1 means no retry.
func NewInstructor(cfg config.LLMConfig, maxAttempts int) (instructor.Instructor, error) {
	// instructor makes MaxRetries+1 calls
	retries := instructor.WithMaxRetries(max(maxAttempts, 1) - 1)
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return instructor.FromAnthropic(NewAnthropic(cfg), instructor.WithMode(instructor.ModeJSON), retries), nil
	case config.ProviderOpenAI, config.ProviderGemini:
		return instructor.FromOpenAI(NewOpenAI(cfg), instructor.WithMode(instructor.ModeJSON), retries), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
