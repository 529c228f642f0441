package checkpoint

import (
	"context"
	"strings"
)

// NewRegistry creates a postgres-backed registry when configured, otherwise
// in-memory.
func NewRegistry(ctx context.Context, databaseURL string) (Registry, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryRegistry(), nil
	}
	return NewPostgresRegistry(ctx, databaseURL)
}
