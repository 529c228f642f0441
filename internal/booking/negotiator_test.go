package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubExtractor struct {
	fn func(text string, prior Draft) (PartialFields, error)
}

func (s stubExtractor) Extract(_ context.Context, text string, prior Draft) (PartialFields, error) {
	return s.fn(text, prior)
}

func fieldsByInput(m map[string]PartialFields) stubExtractor {
	return stubExtractor{fn: func(text string, _ Draft) (PartialFields, error) {
		return m[text], nil
	}}
}

func TestNegotiatorThreeTurnHappyPath(t *testing.T) {
	store, _ := newTestStore(t)
	n := NewNegotiator(fieldsByInput(map[string]PartialFields{
		"book for the 15th": {Date: "2024-01-15"},
		"from 9":            {StartTime: "09:00"},
		"until 11":          {EndTime: "11:00"},
	}), store, "")
	ctx := context.Background()

	draft := Draft{UserID: "u1"}

	res, err := n.Step(ctx, "book for the 15th", draft)
	if err != nil {
		t.Fatalf("Step(1) error = %v", err)
	}
	if !res.Pending {
		t.Fatalf("Step(1) = %+v, want pending", res)
	}
	if !strings.Contains(res.Question, "start_time") {
		t.Fatalf("Step(1) question %q should ask for times", res.Question)
	}

	res, err = n.Step(ctx, "from 9", res.Draft)
	if err != nil {
		t.Fatalf("Step(2) error = %v", err)
	}
	if !res.Pending {
		t.Fatalf("Step(2) = %+v, want pending", res)
	}
	if !strings.Contains(res.Question, "end_time") || strings.Contains(res.Question, "start_time,") {
		t.Fatalf("Step(2) question %q should ask only for end_time", res.Question)
	}
	if res.Draft.Date != "2024-01-15" || res.Draft.StartTime != "09:00" {
		t.Fatalf("Step(2) draft = %+v, lost earlier fields", res.Draft)
	}

	res, err = n.Step(ctx, "until 11", res.Draft)
	if err != nil {
		t.Fatalf("Step(3) error = %v", err)
	}
	if res.Pending {
		t.Fatalf("Step(3) = %+v, want terminal", res)
	}
	if res.Outcome != "Booking confirmed" {
		t.Fatalf("Outcome = %q, want Booking confirmed", res.Outcome)
	}
	if res.Draft.Status != "Booking confirmed" {
		t.Fatalf("draft status = %q, want Booking confirmed", res.Draft.Status)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 1 || all[0].UserID != "u1" || all[0].StartTime != "09:00" || all[0].EndTime != "11:00" {
		t.Fatalf("stored set = %+v, want the confirmed reservation", all)
	}
}

func TestNegotiatorConflictIsReenterable(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := store.TryAppend(ctx, Reservation{UserID: "other", Date: "2024-01-15", StartTime: "09:00", EndTime: "17:00"}); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	n := NewNegotiator(fieldsByInput(map[string]PartialFields{
		"book 10 to 11 on the 15th": {Date: "2024-01-15", StartTime: "10:00", EndTime: "11:00"},
		"make it 17 to 18":          {StartTime: "17:00", EndTime: "18:00"},
	}), store, "")

	res, err := n.Step(ctx, "book 10 to 11 on the 15th", Draft{UserID: "u1"})
	if err != nil {
		t.Fatalf("Step(conflict) error = %v", err)
	}
	if !res.Pending {
		t.Fatalf("conflict must suspend, not terminate: %+v", res)
	}
	if !strings.Contains(res.Question, "Unable to book on this time") {
		t.Fatalf("question %q should explain the rejection", res.Question)
	}
	if res.Draft.Status == "" {
		t.Fatalf("draft should carry the rejection status while suspended")
	}
	if res.Draft.StartTime != "10:00" || res.Draft.EndTime != "11:00" {
		t.Fatalf("conflicting fields must stay populated for correction: %+v", res.Draft)
	}

	res, err = n.Step(ctx, "make it 17 to 18", res.Draft)
	if err != nil {
		t.Fatalf("Step(corrected) error = %v", err)
	}
	if res.Pending || res.Outcome != "Booking confirmed" {
		t.Fatalf("corrected slot should confirm, got %+v", res)
	}

	all, _ := store.All(ctx)
	if len(all) != 2 {
		t.Fatalf("stored set has %d records, want 2", len(all))
	}
}

func TestNegotiatorExtractionFailureKeepsDraft(t *testing.T) {
	store, _ := newTestStore(t)
	n := NewNegotiator(stubExtractor{fn: func(string, Draft) (PartialFields, error) {
		return PartialFields{}, errors.New("model returned junk")
	}}, store, "")

	prior := Draft{UserID: "u1", Date: "2024-01-15", StartTime: "09:00"}
	res, err := n.Step(context.Background(), "mumble", prior)
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if !res.Pending {
		t.Fatalf("want re-suspension, got %+v", res)
	}
	if res.Draft != prior {
		t.Fatalf("draft changed on failed extraction: %+v, want %+v", res.Draft, prior)
	}
}

func TestNegotiatorMalformedFieldsGoBackToCollecting(t *testing.T) {
	store, _ := newTestStore(t)
	n := NewNegotiator(fieldsByInput(map[string]PartialFields{
		"book it": {Date: "2024-01-15", StartTime: "9am", EndTime: "11:00"},
	}), store, "")

	res, err := n.Step(context.Background(), "book it", Draft{UserID: "u1"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if !res.Pending {
		t.Fatalf("malformed time must suspend, got %+v", res)
	}
	if res.Draft.StartTime != "" {
		t.Fatalf("malformed start time should be cleared, got %q", res.Draft.StartTime)
	}
	if res.Draft.Date != "2024-01-15" || res.Draft.EndTime != "11:00" {
		t.Fatalf("well-formed fields must survive: %+v", res.Draft)
	}

	all, _ := store.All(context.Background())
	if len(all) != 0 {
		t.Fatalf("nothing may reach the store on a malformed draft, got %+v", all)
	}
}

func TestNegotiatorEndNotAfterStartReasks(t *testing.T) {
	store, _ := newTestStore(t)
	n := NewNegotiator(fieldsByInput(map[string]PartialFields{
		"book it": {Date: "2024-01-15", StartTime: "11:00", EndTime: "10:00"},
	}), store, "")

	res, err := n.Step(context.Background(), "book it", Draft{UserID: "u1"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if !res.Pending {
		t.Fatalf("inverted interval must suspend, got %+v", res)
	}
	if res.Draft.EndTime != "" {
		t.Fatalf("inverted end time should be cleared, got %q", res.Draft.EndTime)
	}
}

func TestNegotiatorAbandonment(t *testing.T) {
	store, _ := newTestStore(t)
	n := NewNegotiator(fieldsByInput(nil), store, "")

	res, err := n.Step(context.Background(), "quit", Draft{UserID: "u1", Date: "2024-01-15"})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if !res.Abandoned || res.Pending {
		t.Fatalf("abandon token should terminate quietly, got %+v", res)
	}

	all, _ := store.All(context.Background())
	if len(all) != 0 {
		t.Fatalf("abandonment must not persist anything, got %+v", all)
	}
}
