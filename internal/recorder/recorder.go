// Package recorder persists firing events to SQLite for offline analysis.
// It is a consumer of the observation stream: recording never feeds back
// into the simulation, and a disabled or failed recorder cannot affect any
// actor.
package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nvandessel/spikenet/internal/neuron"

	_ "modernc.org/sqlite" // SQLite driver
)

// Spike is one recorded firing event.
type Spike struct {
	Neuron    int
	Potential float32
	At        time.Time
}

// Recorder writes firing events to <dir>/spikes.db.
type Recorder struct {
	db     *sql.DB
	dbPath string
}

// New opens (creating if needed) the spike database under dir.
func New(dir string) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create recorder directory: %w", err)
	}

	dbPath := filepath.Join(dir, "spikes.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open spike database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := initSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Recorder{db: db, dbPath: dbPath}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS spikes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	neuron INTEGER NOT NULL,
	potential REAL NOT NULL,
	at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_spikes_neuron ON spikes(neuron);
CREATE INDEX IF NOT EXISTS idx_spikes_at ON spikes(at);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Record inserts one firing event.
func (r *Recorder) Record(ctx context.Context, s Spike) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO spikes (neuron, potential, at) VALUES (?, ?, ?)`,
		s.Neuron, s.Potential, s.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording spike for neuron %d: %w", s.Neuron, err)
	}
	return nil
}

// Consume drains the observation stream until it closes or ctx is
// cancelled, recording every firing snapshot. Non-firing snapshots are
// discarded. Insert errors end consumption; the stream itself keeps
// flowing because the observation channel is unbounded.
func (r *Recorder) Consume(ctx context.Context, obs <-chan neuron.State) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-obs:
			if !ok {
				return nil
			}
			if !s.Firing {
				continue
			}
			if err := r.Record(ctx, Spike{Neuron: s.Index, Potential: s.Potential, At: s.At}); err != nil {
				return err
			}
		}
	}
}

// Count returns the total number of recorded firing events.
func (r *Recorder) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spikes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting spikes: %w", err)
	}
	return count, nil
}

// CountByNeuron returns the number of recorded firings per neuron index.
func (r *Recorder) CountByNeuron(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT neuron, COUNT(*) FROM spikes GROUP BY neuron`)
	if err != nil {
		return nil, fmt.Errorf("counting spikes by neuron: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var neuronIdx, count int
		if err := rows.Scan(&neuronIdx, &count); err != nil {
			return nil, fmt.Errorf("scanning spike counts: %w", err)
		}
		counts[neuronIdx] = count
	}
	return counts, rows.Err()
}

// Spikes returns recorded firing events in insertion order. A limit of 0
// returns everything.
func (r *Recorder) Spikes(ctx context.Context, limit int) ([]Spike, error) {
	query := `SELECT neuron, potential, at FROM spikes ORDER BY id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying spikes: %w", err)
	}
	defer rows.Close()

	var spikes []Spike
	for rows.Next() {
		var (
			s  Spike
			at string
		)
		if err := rows.Scan(&s.Neuron, &s.Potential, &at); err != nil {
			return nil, fmt.Errorf("scanning spike: %w", err)
		}
		s.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing spike timestamp %q: %w", at, err)
		}
		spikes = append(spikes, s)
	}
	return spikes, rows.Err()
}

// Path returns the database file path.
func (r *Recorder) Path() string {
	return r.dbPath
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}
