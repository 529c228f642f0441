package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// CompletionRequest is one single-shot prompt for the language model. The
// router, the field extractor and the knowledge answerer all speak through
// this interface; no conversation state is carried between calls.
type CompletionRequest struct {
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
}

// CompletionResponse is the model's reply text.
type CompletionResponse struct {
	Text string `json:"text"`
}

// Adapter bridges the assistant with a language model backend.
type Adapter interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// Config controls adapter construction.
type Config struct {
	Mode    string
	HTTPURL string
	APIKey  string
	Model   string
}

func NewAdapter(cfg Config) (Adapter, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		// Prefer the real model, but keep the deterministic mock behind it
		// so the assistant still answers when the backend is flaky.
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewFallbackAdapter(NewHTTPAdapter(cfg.HTTPURL, cfg.APIKey, cfg.Model), NewMockAdapter()), nil
		}
		return NewMockAdapter(), nil
	case "http":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("brain API key is required for http mode")
		}
		return NewHTTPAdapter(cfg.HTTPURL, cfg.APIKey, cfg.Model), nil
	case "mock":
		return NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unsupported brain adapter mode %q", cfg.Mode)
	}
}
