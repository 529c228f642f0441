package booking

import (
	"fmt"
	"time"
)

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

// ParseClock parses a strict 24-hour HH:MM wall-clock value.
func ParseClock(v string) (time.Time, error) {
	if len(v) != 5 {
		return time.Time{}, fmt.Errorf("invalid time %q: want HH:MM", v)
	}
	t, err := time.Parse(clockLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want HH:MM", v)
	}
	return t, nil
}

// ValidateDate checks a strict YYYY-MM-DD calendar date.
func ValidateDate(v string) error {
	if len(v) != 10 {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", v)
	}
	if _, err := time.Parse(dateLayout, v); err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", v)
	}
	return nil
}

// ValidateSlot checks that a reservation's date and times are well formed
// and that the interval is non-empty. Candidates must pass this before any
// conflict check.
func ValidateSlot(r Reservation) error {
	if err := ValidateDate(r.Date); err != nil {
		return err
	}
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return fmt.Errorf("invalid slot: start %s is not before end %s", r.StartTime, r.EndTime)
	}
	return nil
}

// Overlaps reports whether two half-open [start, end) intervals on the same
// date intersect. A slot ending exactly when another begins does not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Conflicts reports whether the candidate collides with any existing
// reservation on the same date. The resource is exclusive: overlap is a
// conflict regardless of user. Both the candidate and every existing record
// must already be well formed (ValidateSlot is the caller's job).
func Conflicts(candidate Reservation, existing []Reservation) (bool, error) {
	candStart, err := ParseClock(candidate.StartTime)
	if err != nil {
		return false, err
	}
	candEnd, err := ParseClock(candidate.EndTime)
	if err != nil {
		return false, err
	}

	for _, r := range existing {
		if r.Date != candidate.Date {
			continue
		}
		start, err := ParseClock(r.StartTime)
		if err != nil {
			return false, fmt.Errorf("stored reservation %s: %w", r.ID, err)
		}
		end, err := ParseClock(r.EndTime)
		if err != nil {
			return false, fmt.Errorf("stored reservation %s: %w", r.ID, err)
		}
		if Overlaps(candStart, candEnd, start, end) {
			return true, nil
		}
	}
	return false, nil
}
