// SPDX-License-Identifier: EPL-2.0

// Package ckptstore keeps sampling checkpoints in a SQLite database, keyed
// by training step.
package ckptstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ik5/audslice/sampling"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no checkpoint exists for a step.
var ErrNotFound = errors.New("checkpoint not found")

const schema = `
	CREATE TABLE IF NOT EXISTS checkpoints (
		step INTEGER PRIMARY KEY,
		state BLOB NOT NULL,
		summary TEXT NOT NULL,
		createdAt INTEGER NOT NULL
	);
`

// Record is one stored checkpoint.
type Record struct {
	Step       int64
	Checkpoint sampling.Checkpoint
	CreatedAt  time.Time
}

// Store is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores ckpt for step, replacing any earlier checkpoint of that step.
func (s *Store) Save(ctx context.Context, step int64, ckpt sampling.Checkpoint) error {
	state, err := ckpt.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (step, state, summary, createdAt)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(step) DO UPDATE SET
			state = excluded.state,
			summary = excluded.summary,
			createdAt = excluded.createdAt
	`, step, state, ckpt.String(), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save checkpoint %d: %w", step, err)
	}
	return nil
}

// Load returns the checkpoint saved for step.
func (s *Store) Load(ctx context.Context, step int64) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT step, state, createdAt
		FROM checkpoints
		WHERE step = ?
	`, step)
	return scanRecord(row, fmt.Sprintf("step %d", step))
}

// Latest returns the checkpoint with the highest step.
func (s *Store) Latest(ctx context.Context) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT step, state, createdAt
		FROM checkpoints
		ORDER BY step DESC
		LIMIT 1
	`)
	return scanRecord(row, "latest")
}

func scanRecord(row *sql.Row, what string) (Record, error) {
	var (
		rec       Record
		state     []byte
		createdAt int64
	)
	if err := row.Scan(&rec.Step, &state, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%w: %s", ErrNotFound, what)
		}
		return Record{}, fmt.Errorf("scan checkpoint: %w", err)
	}

	if err := rec.Checkpoint.UnmarshalBinary(state); err != nil {
		return Record{}, fmt.Errorf("checkpoint %d: %w", rec.Step, err)
	}
	rec.CreatedAt = time.UnixMilli(createdAt)
	return rec, nil
}

// Steps lists the stored steps in ascending order.
func (s *Store) Steps(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT step FROM checkpoints ORDER BY step ASC`)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var steps []int64
	for rows.Next() {
		var step int64
		if err := rows.Scan(&step); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// Prune deletes all but the keep most recent checkpoints and reports how
// many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM checkpoints
		WHERE step NOT IN (
			SELECT step FROM checkpoints ORDER BY step DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune checkpoints: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune checkpoints: %w", err)
	}
	return n, nil
}
