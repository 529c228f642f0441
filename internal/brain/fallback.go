package brain

import (
	"context"
	"errors"
	"fmt"
)

// FallbackAdapter attempts a primary adapter first and falls back on error.
// Context cancellation is never masked by a fallback attempt.
type FallbackAdapter struct {
	primary  Adapter
	fallback Adapter
}

func NewFallbackAdapter(primary, fallback Adapter) *FallbackAdapter {
	return &FallbackAdapter{primary: primary, fallback: fallback}
}

func (a *FallbackAdapter) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if a == nil || a.primary == nil {
		if a != nil && a.fallback != nil {
			return a.fallback.Complete(ctx, req)
		}
		return CompletionResponse{}, errors.New("fallback adapter misconfigured")
	}

	resp, err := a.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CompletionResponse{}, err
	}
	if a.fallback == nil {
		return CompletionResponse{}, err
	}

	fallbackResp, fallbackErr := a.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		return CompletionResponse{}, fmt.Errorf("primary adapter error: %w; fallback adapter error: %v", err, fallbackErr)
	}
	return fallbackResp, nil
}
