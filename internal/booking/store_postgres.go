package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the reservation log in PostgreSQL. The service runs
// as a single instance, so the check-then-insert critical section is held by
// an in-process mutex, matching the CSV store's single-writer discipline.
type PostgresStore struct {
	pool *pgxpool.Pool
	mu   sync.Mutex
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initReservationSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initReservationSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_date ON reservations (date);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) All(ctx context.Context) ([]Reservation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, date, start_time, end_time, created_at
		 FROM reservations ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		var r Reservation
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.StartTime, &r.EndTime, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) TryAppend(ctx context.Context, candidate Reservation) (Reservation, error) {
	if err := ValidateSlot(candidate); err != nil {
		return Reservation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sameDate, err := s.byDate(ctx, candidate.Date)
	if err != nil {
		return Reservation{}, err
	}
	conflict, err := Conflicts(candidate, sameDate)
	if err != nil {
		return Reservation{}, err
	}
	if conflict {
		return Reservation{}, ErrConflict
	}

	candidate.ID = uuid.NewString()
	candidate.CreatedAt = time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO reservations (id, user_id, date, start_time, end_time, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		candidate.ID,
		candidate.UserID,
		candidate.Date,
		candidate.StartTime,
		candidate.EndTime,
		candidate.CreatedAt,
	)
	if err != nil {
		return Reservation{}, fmt.Errorf("insert reservation: %w", err)
	}
	return candidate, nil
}

func (s *PostgresStore) byDate(ctx context.Context, date string) ([]Reservation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, date, start_time, end_time, created_at
		 FROM reservations WHERE date=$1`,
		date)
	if err != nil {
		return nil, fmt.Errorf("query reservations by date: %w", err)
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		var r Reservation
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.StartTime, &r.EndTime, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
