// Package runstore persists replayable runs in SQLite.
//
// A run stores only what is needed to rebuild its map (seed and
// configuration) plus the map fingerprint and the player's progress. The map
// itself is never stored: [Store.Replay] regenerates it and fails with
// STALE_GRAPH if the result no longer matches the recorded fingerprint.
package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/mapgen"
	"github.com/matzehuels/runmap/pkg/mapgraph"
	"github.com/matzehuels/runmap/pkg/seed"
	"github.com/matzehuels/runmap/pkg/traversal"
)

// Run is one persisted run.
type Run struct {
	ID          string
	Seed        seed.Seed
	Config      mapgen.Config
	Fingerprint string
	Current     mapgraph.NodeID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store is a SQLite-backed run store. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// Open opens (or creates) the database at path and migrates it. Use
// ":memory:" for a throwaway store. A nil logger uses log.Default().
func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	if path != ":memory:" {
		if err := errors.ValidatePath(path); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open run store %s", path)
	}
	// One connection: SQLite serialises writers anyway, and an in-memory
	// database exists per connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping run store %s", path)
	}
	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "migrate run store %s", path)
	}
	logger.Debug("run store opened", "path", path)
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	version := 0
	// A fresh database has no schema_version table yet.
	_ = s.db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS runs (
				id          TEXT PRIMARY KEY,
				seed        INTEGER NOT NULL,
				config      TEXT NOT NULL,
				fingerprint TEXT NOT NULL,
				current     INTEGER NOT NULL,
				created_at  TEXT NOT NULL,
				updated_at  TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

			CREATE TABLE IF NOT EXISTS run_visits (
				run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				node_id    INTEGER NOT NULL,
				seq        INTEGER NOT NULL,
				visited_at TEXT NOT NULL,
				PRIMARY KEY (run_id, node_id)
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}

// Create generates the map for s and cfg and records a new run standing on
// its start node.
func (s *Store) Create(ctx context.Context, sd seed.Seed, cfg mapgen.Config) (*Run, *mapgraph.Graph, error) {
	return s.create(ctx, uuid.NewString(), cfg, sd)
}

// CreateDerived records a new run whose seed is derived from its id.
func (s *Store) CreateDerived(ctx context.Context, cfg mapgen.Config) (*Run, *mapgraph.Graph, error) {
	id := uuid.NewString()
	return s.create(ctx, id, cfg, seed.FromString(id))
}

func (s *Store) create(ctx context.Context, id string, cfg mapgen.Config, sd seed.Seed) (*Run, *mapgraph.Graph, error) {
	g, err := mapgen.NewGenerator(cfg, s.logger).Generate(ctx, sd)
	if err != nil {
		return nil, nil, err
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}

	now := time.Now().UTC()
	run := &Run{
		ID:          id,
		Seed:        sd,
		Config:      cfg,
		Fingerprint: g.Fingerprint(),
		Current:     g.Start(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "begin")
	}
	defer tx.Rollback()

	stamp := now.Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, seed, config, fingerprint, current, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, int64(run.Seed), string(cfgJSON), run.Fingerprint, int(run.Current), stamp, stamp,
	); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "insert run")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO run_visits (run_id, node_id, seq, visited_at) VALUES (?, ?, 0, ?)`,
		run.ID, int(run.Current), stamp,
	); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "insert start visit")
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "commit run")
	}

	s.logger.Debug("run created", "id", run.ID, "seed", run.Seed)
	return run, g, nil
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	if err := errors.ValidateRunID(id); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, seed, config, fingerprint, current, created_at, updated_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
	}
	return run, err
}

// List returns up to limit runs, newest first. A non-positive limit lists
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seed, config, fingerprint, current, created_at, updated_at FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Delete removes a run and its progress.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateRunID(id); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_visits WHERE run_id = ?`, id); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete visits")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete run")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
	}
	return tx.Commit()
}

// Replay regenerates the run's map. It fails with STALE_GRAPH when the
// regenerated map differs from the one the run was created with.
func (s *Store) Replay(ctx context.Context, run *Run) (*mapgraph.Graph, error) {
	g, err := mapgen.NewGenerator(run.Config, s.logger).Generate(ctx, run.Seed)
	if err != nil {
		return nil, err
	}
	if g.Fingerprint() != run.Fingerprint {
		return nil, errors.New(errors.ErrCodeStaleGraph, "run %s no longer reproduces its map (seed %d)", run.ID, run.Seed)
	}
	return g, nil
}

// SaveProgress records the tracker state for a run. The state must belong
// to the run's map.
func (s *Store) SaveProgress(ctx context.Context, id string, st traversal.State) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if st.Fingerprint != run.Fingerprint {
		return errors.New(errors.ErrCodeStaleGraph, "progress does not belong to run %s", id)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "begin")
	}
	defer tx.Rollback()

	stamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, `UPDATE runs SET current = ?, updated_at = ? WHERE id = ?`, int(st.Current), stamp, id); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "update run")
	}
	for seq, node := range st.Visited {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO run_visits (run_id, node_id, seq, visited_at) VALUES (?, ?, ?, ?)`,
			id, int(node), seq, stamp,
		); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "insert visit")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "commit progress")
	}
	s.logger.Debug("progress saved", "id", id, "current", st.Current, "visited", len(st.Visited))
	return nil
}

// LoadProgress returns the saved tracker state of a run.
func (s *Store) LoadProgress(ctx context.Context, id string) (traversal.State, error) {
	run, err := s.Get(ctx, id)
	if err != nil {
		return traversal.State{}, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT node_id FROM run_visits WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return traversal.State{}, errors.Wrap(errors.ErrCodeInternal, err, "load visits")
	}
	defer rows.Close()

	st := traversal.State{Fingerprint: run.Fingerprint, Current: run.Current}
	for rows.Next() {
		var node int
		if err := rows.Scan(&node); err != nil {
			return traversal.State{}, errors.Wrap(errors.ErrCodeInternal, err, "scan visit")
		}
		st.Visited = append(st.Visited, mapgraph.NodeID(node))
	}
	return st, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run                  Run
		sd                   int64
		cfgJSON              string
		current              int
		createdAt, updatedAt string
	)
	if err := row.Scan(&run.ID, &sd, &cfgJSON, &run.Fingerprint, &current, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "scan run")
	}
	if err := json.Unmarshal([]byte(cfgJSON), &run.Config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode config of run %s", run.ID)
	}
	run.Seed = seed.Seed(sd)
	run.Current = mapgraph.NodeID(current)
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	run.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &run, nil
}
