// Package datasource persists grid column state between sessions in a SQLite
// database, one row per layout name.
package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/colpanel/pkg/columns"
	"github.com/vanderheijden86/colpanel/pkg/metrics"
)

// ErrNotFound is returned by Load when no state is stored under a name.
var ErrNotFound = errors.New("no saved state")

const schema = `
CREATE TABLE IF NOT EXISTS column_state (
	layout     TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store reads and writes saved column state.
type Store struct {
	db   *sql.DB
	path string
}

// Entry describes one saved layout.
type Entry struct {
	Layout    string
	UpdatedAt time.Time
}

// Open opens (creating if needed) the state database at path. The special
// path ":memory:" gives a private in-memory store.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating state directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open state database: %w", err)
	}
	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing state database: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Save stores st under layout, replacing any previous state.
func (s *Store) Save(ctx context.Context, layout string, st columns.State) error {
	defer metrics.Timer(metrics.StateSave)()

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding column state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO column_state (layout, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(layout) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		layout, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("saving column state for %s: %w", layout, err)
	}
	return nil
}

// Load returns the state saved under layout, or ErrNotFound.
func (s *Store) Load(ctx context.Context, layout string) (columns.State, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM column_state WHERE layout = ?`, layout).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return columns.State{}, fmt.Errorf("%s: %w", layout, ErrNotFound)
	}
	if err != nil {
		return columns.State{}, fmt.Errorf("loading column state for %s: %w", layout, err)
	}

	var st columns.State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return columns.State{}, fmt.Errorf("decoding column state for %s: %w", layout, err)
	}
	return st, nil
}

// List returns the saved layouts, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT layout, updated_at FROM column_state ORDER BY updated_at DESC, layout`)
	if err != nil {
		return nil, fmt.Errorf("listing saved layouts: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&e.Layout, &ms); err != nil {
			return nil, err
		}
		e.UpdatedAt = time.UnixMilli(ms)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the state saved under layout. Deleting a missing layout is
// not an error.
func (s *Store) Delete(ctx context.Context, layout string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM column_state WHERE layout = ?`, layout); err != nil {
		return fmt.Errorf("deleting column state for %s: %w", layout, err)
	}
	return nil
}
