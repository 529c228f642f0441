package checkpoint

import (
	"context"
	"sync"
	"time"
)

// InMemoryRegistry keeps checkpoints in process memory, suitable for a
// single-instance deployment.
type InMemoryRegistry struct {
	mu          sync.RWMutex
	checkpoints map[string]Checkpoint
}

func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{checkpoints: make(map[string]Checkpoint)}
}

func (r *InMemoryRegistry) Save(_ context.Context, cp Checkpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}
	r.checkpoints[cp.ThreadID] = cp
	return nil
}

func (r *InMemoryRegistry) Load(_ context.Context, threadID string) (Checkpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp, ok := r.checkpoints[threadID]
	if !ok {
		return Checkpoint{}, ErrNotFound
	}
	return cp, nil
}

func (r *InMemoryRegistry) Clear(_ context.Context, threadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkpoints, threadID)
	return nil
}

func (r *InMemoryRegistry) Close() error { return nil }
