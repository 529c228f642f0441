package booking

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

var csvHeader = []string{"user_id", "start_time", "end_time", "date"}

// CSVStore persists reservations in an append-only CSV record log. The
// header row is written exactly once, on the first write to an empty or
// nonexistent file. All confirmed records are also cached in memory so
// snapshot reads never block an in-flight append.
type CSVStore struct {
	path string

	mu      sync.RWMutex
	records []Reservation
}

func NewCSVStore(path string) (*CSVStore, error) {
	s := &CSVStore{path: path}
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	s.records = records
	return s, nil
}

func (s *CSVStore) All(_ context.Context) ([]Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Reservation, len(s.records))
	copy(out, s.records)
	return out, nil
}

// TryAppend validates the candidate, checks it against every confirmed
// reservation and appends it, all under one write lock.
func (s *CSVStore) TryAppend(_ context.Context, candidate Reservation) (Reservation, error) {
	if err := ValidateSlot(candidate); err != nil {
		return Reservation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conflict, err := Conflicts(candidate, s.records)
	if err != nil {
		return Reservation{}, err
	}
	if conflict {
		return Reservation{}, ErrConflict
	}

	candidate.ID = uuid.NewString()
	candidate.CreatedAt = time.Now().UTC()
	if err := s.appendRow(candidate); err != nil {
		return Reservation{}, err
	}
	s.records = append(s.records, candidate)
	return candidate, nil
}

func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) appendRow(r Reservation) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open bookings log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat bookings log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write([]string{r.UserID, r.StartTime, r.EndTime, r.Date}); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush bookings log: %w", err)
	}
	return f.Sync()
}

func readCSV(path string) ([]Reservation, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open bookings log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < len(csvHeader) {
		return nil, fmt.Errorf("malformed bookings log header: %v", header)
	}

	var records []Reservation
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if len(row) < 4 {
			return nil, fmt.Errorf("malformed bookings record: %v", row)
		}
		records = append(records, Reservation{
			UserID:    row[0],
			StartTime: row[1],
			EndTime:   row[2],
			Date:      row[3],
		})
	}
	return records, nil
}
