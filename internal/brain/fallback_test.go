package brain

import (
	"context"
	"errors"
	"testing"
)

type scriptedAdapter struct {
	text  string
	err   error
	calls int
}

func (s *scriptedAdapter) Complete(_ context.Context, _ CompletionRequest) (CompletionResponse, error) {
	s.calls++
	return CompletionResponse{Text: s.text}, s.err
}

func TestFallbackUsedOnPrimaryError(t *testing.T) {
	primary := &scriptedAdapter{err: errors.New("boom")}
	fallback := &scriptedAdapter{text: "from fallback"}
	adapter := NewFallbackAdapter(primary, fallback)

	res, err := adapter.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if res.Text != "from fallback" {
		t.Fatalf("Text = %q, want fallback reply", res.Text)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Fatalf("calls primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestFallbackSkippedOnPrimarySuccess(t *testing.T) {
	primary := &scriptedAdapter{text: "from primary"}
	fallback := &scriptedAdapter{text: "from fallback"}
	adapter := NewFallbackAdapter(primary, fallback)

	res, err := adapter.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if res.Text != "from primary" {
		t.Fatalf("Text = %q", res.Text)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback should not run on success")
	}
}

func TestFallbackNeverMasksCancellation(t *testing.T) {
	primary := &scriptedAdapter{err: context.Canceled}
	fallback := &scriptedAdapter{text: "from fallback"}
	adapter := NewFallbackAdapter(primary, fallback)

	_, err := adapter.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback must not run after cancellation")
	}
}

func TestFallbackReportsBothErrors(t *testing.T) {
	primary := &scriptedAdapter{err: errors.New("primary down")}
	fallback := &scriptedAdapter{err: errors.New("fallback down")}
	adapter := NewFallbackAdapter(primary, fallback)

	_, err := adapter.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	if err == nil {
		t.Fatalf("expected combined error")
	}
}
