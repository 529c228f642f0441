package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// MockAdapter provides deterministic local replies when no model backend is
// configured. It recognizes the assistant's own prompt shapes (routing,
// field extraction) by their instruction markers and answers them with
// simple heuristics, which keeps the whole system runnable offline.
type MockAdapter struct{}

func NewMockAdapter() *MockAdapter { return &MockAdapter{} }

var (
	mockDateRE  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	mockClockRE = regexp.MustCompile(`\b([01]\d|2[0-3]):([0-5]\d)\b`)
	mockExprRE  = regexp.MustCompile(`^[\d+\-*/(). \t]+$`)
)

func (a *MockAdapter) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	select {
	case <-ctx.Done():
		return CompletionResponse{}, ctx.Err()
	default:
	}

	query := userQueryOf(req.Prompt)

	switch {
	case strings.Contains(req.Prompt, "Allowed outputs only:"):
		return CompletionResponse{Text: mockRoute(query)}, nil
	case strings.Contains(req.Prompt, "Return ONLY a valid JSON"):
		return CompletionResponse{Text: mockExtract(query)}, nil
	default:
		base := strings.TrimSpace(query)
		if base == "" {
			base = strings.TrimSpace(req.Prompt)
		}
		return CompletionResponse{Text: fmt.Sprintf("I can't look that up offline, but you asked: %s", base)}, nil
	}
}

// userQueryOf pulls the human's text out of a templated prompt, falling back
// to the whole prompt when no marker is present.
func userQueryOf(prompt string) string {
	idx := strings.LastIndex(prompt, "User query:")
	if idx < 0 {
		return prompt
	}
	q := prompt[idx+len("User query:"):]
	return strings.Trim(strings.TrimSpace(q), `"`)
}

func mockRoute(query string) string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "book") || strings.Contains(q, "reserve") ||
		strings.Contains(q, "ground") || strings.Contains(q, "turf") ||
		strings.Contains(q, "slot"):
		return "ground"
	case strings.Contains(q, "calculate") || looksLikeExpression(q):
		return "math"
	case strings.Contains(q, "what") || strings.Contains(q, "who") ||
		strings.Contains(q, "how") || strings.Contains(q, "why") ||
		strings.Contains(q, "explain") || strings.Contains(q, "tell me"):
		return "knowledge"
	default:
		return "out_of_my_known"
	}
}

// looksLikeExpression matches bare arithmetic only. Operators inside a
// sentence must not count, or any date's hyphens would read as subtraction.
func looksLikeExpression(q string) bool {
	q = strings.TrimSpace(q)
	if q == "" || !mockExprRE.MatchString(q) {
		return false
	}
	if strings.ContainsAny(q, "+*/") {
		return true
	}
	return strings.Contains(q, "-") && !mockDateRE.MatchString(q)
}

func mockExtract(query string) string {
	fields := make(map[string]string)

	if m := mockDateRE.FindString(query); m != "" {
		fields["date"] = m
	}

	clocks := mockClockRE.FindAllString(query, -1)
	lower := strings.ToLower(query)
	switch len(clocks) {
	case 1:
		if strings.Contains(lower, "until") || strings.Contains(lower, "till") ||
			strings.Contains(lower, "end") {
			fields["end_time"] = clocks[0]
		} else {
			fields["start_time"] = clocks[0]
		}
	default:
		if len(clocks) >= 2 {
			fields["start_time"] = clocks[0]
			fields["end_time"] = clocks[1]
		}
	}

	out, _ := json.Marshal(fields)
	return string(out)
}
