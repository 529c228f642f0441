package checkpoint

import (
	"context"
	"errors"
	"time"

	"github.com/mzanetti/turfdesk/internal/booking"
)

var ErrNotFound = errors.New("no checkpoint for thread")

// Checkpoint is the suspended continuation state of one thread's
// negotiation: the draft so far, the question awaiting an answer, and the
// negotiator phase to resume in.
type Checkpoint struct {
	ThreadID  string        `json:"thread_id"`
	Draft     booking.Draft `json:"draft"`
	Question  string        `json:"question"`
	Phase     booking.Phase `json:"phase"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Registry maps an opaque thread identity to its suspended negotiation.
// Implementations must keep threads fully isolated from one another.
type Registry interface {
	Save(ctx context.Context, cp Checkpoint) error
	Load(ctx context.Context, threadID string) (Checkpoint, error)
	Clear(ctx context.Context, threadID string) error
	Close() error
}
