package booking

import (
	"context"
	"errors"
	"strings"
)

// ErrConflict is returned by TryAppend when the candidate overlaps a
// confirmed reservation. It is a normal negotiation outcome, not a failure.
var ErrConflict = errors.New("time slot is already booked")

// Store is the append-only collection of confirmed reservations. TryAppend
// performs conflict-check-then-append as one critical section so that two
// racing bookings for overlapping slots can never both succeed.
type Store interface {
	All(ctx context.Context) ([]Reservation, error)
	TryAppend(ctx context.Context, candidate Reservation) (Reservation, error)
	Close() error
}

// NewStore creates a postgres-backed store when configured, otherwise the
// CSV record log.
func NewStore(ctx context.Context, databaseURL, csvPath string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewCSVStore(csvPath)
	}
	return NewPostgresStore(ctx, databaseURL)
}
