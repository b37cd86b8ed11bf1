package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSource loads catalog snapshots from the postgres catalog backend.
//
// Concurrent Sync calls are coalesced: while one fetch is in flight,
// later callers wait on it and share its result instead of issuing
// duplicate queries. The pending call is tracked explicitly on the
// source rather than in package state.
type PGSource struct {
	pool *pgxpool.Pool
	log  *slog.Logger

	mu       sync.Mutex
	inflight *syncCall
}

type syncCall struct {
	done chan struct{}
	cat  *Catalog
	err  error
}

// NewPGSource creates a source backed by the given pool.
func NewPGSource(pool *pgxpool.Pool, log *slog.Logger) *PGSource {
	return &PGSource{pool: pool, log: log}
}

// Sync fetches the full exercise table and returns it as a snapshot.
func (s *PGSource) Sync(ctx context.Context) (*Catalog, error) {
	s.mu.Lock()
	if c := s.inflight; c != nil {
		s.mu.Unlock()
		select {
		case <-c.done:
			return c.cat, c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &syncCall{done: make(chan struct{})}
	s.inflight = call
	s.mu.Unlock()

	call.cat, call.err = s.fetch(ctx)
	close(call.done)

	s.mu.Lock()
	s.inflight = nil
	s.mu.Unlock()

	return call.cat, call.err
}

func (s *PGSource) fetch(ctx context.Context) (*Catalog, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, pattern, muscle_group, equipment
		 FROM exercises
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var records []Exercise
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Pattern, &e.Muscle, &e.Equipment); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		records = append(records, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading exercises: %w", err)
	}

	s.log.Info("catalog synced", "exercises", len(records))
	return New(records), nil
}

// Upsert writes records into the exercises table, replacing rows with
// matching ids. Used by the seed tool.
func (s *PGSource) Upsert(ctx context.Context, records []Exercise) (int64, error) {
	var written int64
	for _, e := range records {
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO exercises (id, name, pattern, muscle_group, equipment)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE
			 SET name = EXCLUDED.name, pattern = EXCLUDED.pattern,
			     muscle_group = EXCLUDED.muscle_group, equipment = EXCLUDED.equipment`,
			e.ID, e.Name, e.Pattern, e.Muscle, e.Equipment)
		if err != nil {
			return written, fmt.Errorf("upserting exercise %d: %w", e.ID, err)
		}
		written += tag.RowsAffected()
	}
	return written, nil
}
