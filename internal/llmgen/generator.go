package llmgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// GenerateRequest is the normalized request sent to the text-generation backend.
type GenerateRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
	Stream      bool
}

// DeltaHandler receives streaming text fragments.
type DeltaHandler func(delta string) error

// Generator is the single channel to the external text-generation capability.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest, onDelta DeltaHandler) (string, error)
}

// Config controls generator construction.
type Config struct {
	Provider string

	OllamaURL   string
	OllamaModel string
	Timeout     time.Duration

	GeminiAPIKey string
	GeminiModel  string
}

// NewGenerator builds a generator for the configured provider.
//
// "auto" prefers Gemini when an API key is present, then Ollama; an explicit
// provider fails fast instead of silently falling back, so a misconfigured
// backend is visible at startup.
func NewGenerator(ctx context.Context, cfg Config) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "auto"
	}

	switch provider {
	case "auto":
		if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
			return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		}
		if strings.TrimSpace(cfg.OllamaURL) != "" {
			return NewOllamaGenerator(cfg.OllamaURL, cfg.OllamaModel, cfg.Timeout), nil
		}
		return NewMockGenerator(), nil
	case "ollama":
		if strings.TrimSpace(cfg.OllamaURL) == "" {
			return nil, errors.New("ollama URL is required for ollama provider")
		}
		return NewOllamaGenerator(cfg.OllamaURL, cfg.OllamaModel, cfg.Timeout), nil
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return nil, errors.New("gemini API key is required for gemini provider")
		}
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "mock":
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.Provider)
	}
}
