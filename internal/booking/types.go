package booking

import "time"

// Reservation is one confirmed slot in the append-only log. It is never
// mutated or deleted after TryAppend accepts it.
type Reservation struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Draft accumulates knowledge about one in-progress reservation across
// negotiation turns. Empty string means "not yet known".
type Draft struct {
	UserID    string `json:"user_id,omitempty"`
	Date      string `json:"date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Status    string `json:"status,omitempty"`
}

// PartialFields is what one extraction pass yields: any subset of the draft
// fields. Status is carried for wire compatibility but never merged.
type PartialFields struct {
	UserID    string `json:"user_id,omitempty"`
	Date      string `json:"date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Complete reports whether every field required for a conflict check is set.
func (d Draft) Complete() bool {
	return d.UserID != "" && d.Date != "" && d.StartTime != "" && d.EndTime != ""
}

// OpenFields lists the required fields still missing, in a stable order.
func (d Draft) OpenFields() []string {
	var open []string
	if d.Date == "" {
		open = append(open, "date")
	}
	if d.StartTime == "" {
		open = append(open, "start_time")
	}
	if d.EndTime == "" {
		open = append(open, "end_time")
	}
	return open
}

// Reservation converts a complete draft into the immutable record persisted
// by the store. Callers must check Complete first.
func (d Draft) Reservation() Reservation {
	return Reservation{
		UserID:    d.UserID,
		Date:      d.Date,
		StartTime: d.StartTime,
		EndTime:   d.EndTime,
	}
}
