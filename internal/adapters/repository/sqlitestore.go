package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/racebet/internal/domain/model"
	"github.com/okian/racebet/pkg/metrics"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// SQLiteStore keeps the history in a SQLite database, one row per race.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite creates or opens the database at path and applies the schema.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - a busy timeout for lock contention (WithBusyTimeout)
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, o.busyTimeout); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func applyPragmas(db *sql.DB, busy time.Duration) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()),
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// Load returns all races ordered by seq.
func (s *SQLiteStore) Load(ctx context.Context) (model.Table, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("load", msSince(start)) }()

	rows, err := queryRaces(ctx, s.db)
	if err != nil {
		metrics.RecordStoreError("load")
		return model.Table{}, err
	}
	return model.NewTable(rows...), nil
}

// Persist inserts the rows of t beyond those already stored, in one
// transaction. It fails with ErrDiverged when the stored rows are not a
// prefix of t.
func (s *SQLiteStore) Persist(ctx context.Context, t model.Table) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("persist", msSince(start)) }()

	if err := s.persist(ctx, t); err != nil {
		metrics.RecordStoreError("persist")
		return err
	}
	return nil
}

func (s *SQLiteStore) persist(ctx context.Context, t model.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin persist: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stored, err := queryRaces(ctx, tx)
	if err != nil {
		return err
	}
	if len(stored) > t.Len() {
		return fmt.Errorf("%w: %d stored rows, table has %d", ErrDiverged, len(stored), t.Len())
	}
	for i, row := range stored {
		if row != t.At(i) {
			return fmt.Errorf("%w: row %d differs", ErrDiverged, i+1)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO races (seq, game, round, first, second, third, fourth)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := len(stored); i < t.Len(); i++ {
		r := t.At(i)
		game := sql.NullInt64{Int64: int64(r.Game), Valid: r.HasGame()}
		if _, err := stmt.ExecContext(ctx, i+1, game, r.Round,
			int(r.Ranks[0]), int(r.Ranks[1]), int(r.Ranks[2]), int(r.Ranks[3])); err != nil {
			return fmt.Errorf("insert race %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit persist: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryRaces(ctx context.Context, q querier) ([]model.RaceResult, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT game, round, first, second, third, fourth
		FROM races
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("query races: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.RaceResult
	for rows.Next() {
		var (
			game sql.NullInt64
			r    model.RaceResult
		)
		if err := rows.Scan(&game, &r.Round, &r.Ranks[0], &r.Ranks[1], &r.Ranks[2], &r.Ranks[3]); err != nil {
			return nil, fmt.Errorf("scan race: %w", err)
		}
		if game.Valid {
			r.Game = model.GameID(game.Int64)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate races: %w", err)
	}
	return out, nil
}
