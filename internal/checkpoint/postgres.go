package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mzanetti/turfdesk/internal/booking"
)

// PostgresRegistry persists checkpoints so suspended negotiations survive
// process restarts.
type PostgresRegistry struct {
	pool *pgxpool.Pool
}

func NewPostgresRegistry(ctx context.Context, databaseURL string) (*PostgresRegistry, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	stmt := `CREATE TABLE IF NOT EXISTS negotiation_checkpoints (
		thread_id TEXT PRIMARY KEY,
		draft JSONB NOT NULL,
		question TEXT NOT NULL,
		phase TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := pool.Exec(ctx, stmt); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init checkpoint schema: %w", err)
	}

	return &PostgresRegistry{pool: pool}, nil
}

func (r *PostgresRegistry) Save(ctx context.Context, cp Checkpoint) error {
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}
	draft, err := json.Marshal(cp.Draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO negotiation_checkpoints (thread_id, draft, question, phase, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (thread_id) DO UPDATE
		 SET draft = EXCLUDED.draft,
		     question = EXCLUDED.question,
		     phase = EXCLUDED.phase,
		     updated_at = EXCLUDED.updated_at`,
		cp.ThreadID,
		draft,
		cp.Question,
		string(cp.Phase),
		cp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) Load(ctx context.Context, threadID string) (Checkpoint, error) {
	var (
		cp    Checkpoint
		draft []byte
		phase string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT thread_id, draft, question, phase, updated_at
		 FROM negotiation_checkpoints WHERE thread_id=$1`,
		threadID,
	).Scan(&cp.ThreadID, &draft, &cp.Question, &phase, &cp.UpdatedAt)
	if err == pgx.ErrNoRows {
		return Checkpoint{}, ErrNotFound
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("load checkpoint: %w", err)
	}

	if err := json.Unmarshal(draft, &cp.Draft); err != nil {
		return Checkpoint{}, fmt.Errorf("unmarshal draft: %w", err)
	}
	cp.Phase = booking.Phase(phase)
	return cp, nil
}

func (r *PostgresRegistry) Clear(ctx context.Context, threadID string) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM negotiation_checkpoints WHERE thread_id=$1`, threadID); err != nil {
		return fmt.Errorf("clear checkpoint: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) Close() error {
	r.pool.Close()
	return nil
}
