package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultAbandonToken ends a negotiation without persisting anything.
const DefaultAbandonToken = "quit"

// Phase names the negotiator's checkpointable position.
type Phase string

// PhaseCollecting is the only phase a checkpoint can carry: terminal
// outcomes clear the checkpoint instead of recording a phase.
const PhaseCollecting Phase = "collecting"

// Extractor turns one human utterance plus the draft-so-far into structured
// partial fields. A failed extraction must come back as an error so the
// negotiator can keep the prior draft untouched.
type Extractor interface {
	Extract(ctx context.Context, text string, prior Draft) (PartialFields, error)
}

// StepResult is the tagged outcome of one negotiation step: either a
// suspension carrying the question to put to the human, or a terminal
// outcome. The caller owns checkpointing Pending state by thread identity.
type StepResult struct {
	Pending   bool
	Question  string
	Draft     Draft
	Outcome   string
	Abandoned bool
}

// Negotiator drives the collect/merge/validate cycle for one reservation.
// It is stateless between steps; the draft travels through checkpoints.
type Negotiator struct {
	extractor    Extractor
	store        Store
	abandonToken string
}

func NewNegotiator(extractor Extractor, store Store, abandonToken string) *Negotiator {
	if strings.TrimSpace(abandonToken) == "" {
		abandonToken = DefaultAbandonToken
	}
	return &Negotiator{
		extractor:    extractor,
		store:        store,
		abandonToken: abandonToken,
	}
}

// Step advances the negotiation by one human turn. The store is touched at
// most once per step, and only with a fully specified, well-formed draft.
func (n *Negotiator) Step(ctx context.Context, input string, draft Draft) (StepResult, error) {
	if strings.EqualFold(strings.TrimSpace(input), n.abandonToken) {
		return StepResult{
			Abandoned: true,
			Outcome:   "Booking abandoned. Nothing was saved.",
			Draft:     draft,
		}, nil
	}

	extracted, err := n.extractor.Extract(ctx, input, draft)
	if err != nil {
		// No new information. Keep the prior draft and ask again.
		return n.suspend(draft, ""), nil
	}
	draft = Merge(draft, extracted)
	draft.Status = ""

	if !draft.Complete() {
		return n.suspend(draft, ""), nil
	}

	if note, ok := scrubMalformed(&draft); !ok {
		return n.suspend(draft, note), nil
	}

	_, err = n.store.TryAppend(ctx, draft.Reservation())
	if errors.Is(err, ErrConflict) {
		draft.Status = "Unable to book on this time. Please update your start time or end time."
		return n.suspend(draft, draft.Status), nil
	}
	if err != nil {
		return StepResult{}, fmt.Errorf("append reservation: %w", err)
	}

	draft.Status = "Booking confirmed"
	return StepResult{Outcome: draft.Status, Draft: draft}, nil
}

// scrubMalformed clears fields that cannot survive a conflict check so the
// draft goes back to collecting instead of being silently coerced.
func scrubMalformed(d *Draft) (string, bool) {
	var notes []string

	if err := ValidateDate(d.Date); err != nil {
		notes = append(notes, fmt.Sprintf("%q is not a valid date (want YYYY-MM-DD)", d.Date))
		d.Date = ""
	}
	start, startErr := ParseClock(d.StartTime)
	if startErr != nil {
		notes = append(notes, fmt.Sprintf("%q is not a valid start time (want HH:MM)", d.StartTime))
		d.StartTime = ""
	}
	end, endErr := ParseClock(d.EndTime)
	if endErr != nil {
		notes = append(notes, fmt.Sprintf("%q is not a valid end time (want HH:MM)", d.EndTime))
		d.EndTime = ""
	}
	if startErr == nil && endErr == nil && !start.Before(end) {
		notes = append(notes, fmt.Sprintf("end time %s must be after start time %s", d.EndTime, d.StartTime))
		d.EndTime = ""
	}

	if len(notes) == 0 {
		return "", true
	}
	return strings.Join(notes, "; "), false
}

func (n *Negotiator) suspend(d Draft, note string) StepResult {
	return StepResult{
		Pending:  true,
		Question: buildQuestion(d, note),
		Draft:    d,
	}
}

func buildQuestion(d Draft, note string) string {
	state, _ := json.Marshal(d)
	open := strings.Join(d.OpenFields(), ", ")
	if open == "" {
		open = "an updated start_time or end_time"
	}
	if note != "" {
		return fmt.Sprintf("%s. Please provide %s for your booking. So far: %s", note, open, state)
	}
	return fmt.Sprintf("Please provide %s for your booking. So far: %s", open, state)
}
