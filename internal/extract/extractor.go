// Package extract turns free-form human text into structured booking fields
// by prompting the brain for strict JSON and parsing the reply defensively.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mzanetti/turfdesk/internal/booking"
	"github.com/mzanetti/turfdesk/internal/brain"
)

// ErrUnparsable signals that the model's reply was not usable JSON. The
// negotiator treats it as "no new information" and keeps the prior draft.
var ErrUnparsable = errors.New("extraction reply is not valid JSON")

const extractionPrompt = `You are a booking assistant.

Extract booking information from the user query.

Return ONLY a valid JSON object. Allowed fields: user_id, start_time, end_time, date, status.

STRICT RULES:
1. Output MUST be valid JSON only. No explanation.
2. Time format MUST be 24-hour HH:MM. Convert AM/PM to 24-hour time.
3. Date format MUST be YYYY-MM-DD.
4. Include ONLY fields explicitly mentioned or clearly inferred.
5. If a field exists in the previous state and is NOT updated by the user, KEEP the previous value.
6. If end_time is NOT mentioned, DO NOT include end_time. Never copy start_time into end_time.
7. Do NOT guess missing fields. Do NOT include empty, null, or invalid values.

Previous state:
%s

User query: %q`

// LLMExtractor implements booking.Extractor on top of the brain adapter.
type LLMExtractor struct {
	adapter brain.Adapter
}

func NewLLMExtractor(adapter brain.Adapter) *LLMExtractor {
	return &LLMExtractor{adapter: adapter}
}

func (e *LLMExtractor) Extract(ctx context.Context, text string, prior booking.Draft) (booking.PartialFields, error) {
	state, err := json.Marshal(prior)
	if err != nil {
		return booking.PartialFields{}, fmt.Errorf("marshal prior draft: %w", err)
	}

	resp, err := e.adapter.Complete(ctx, brain.CompletionRequest{
		System: "You are a helpful booking assistant.",
		Prompt: fmt.Sprintf(extractionPrompt, state, text),
	})
	if err != nil {
		return booking.PartialFields{}, fmt.Errorf("extraction call: %w", err)
	}

	return parseFields(resp.Text)
}

// parseFields tolerates the usual model noise: code fences, prose around the
// object, stray whitespace. Anything without a parseable JSON object fails
// with ErrUnparsable.
func parseFields(reply string) (booking.PartialFields, error) {
	raw := stripFences(reply)

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return booking.PartialFields{}, ErrUnparsable
	}

	var fields booking.PartialFields
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err != nil {
		return booking.PartialFields{}, ErrUnparsable
	}
	return fields, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
