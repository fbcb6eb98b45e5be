package design

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("design: saved config not found")

const schema = `
CREATE TABLE IF NOT EXISTS saved_configs (
	name       TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	hash       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Saved is a named configuration blob.
type Saved struct {
	Name      string    `json:"name"`
	Hash      string    `json:"hash"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store keeps named configurations in SQLite. The body column holds the
// canonical JSON produced by Marshal.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and creates) the database at path. Use ":memory:" in tests.
func OpenStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("design: creating db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("design: opening store: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("design: setting pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("design: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, name string, c Config) error {
	if name == "" {
		return errors.New("design: config name is empty")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	body, err := Marshal(c)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_configs (name, body, hash, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, hash = excluded.hash, updated_at = excluded.updated_at`,
		name, body, c.Hash(), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("design: saving %q: %w", name, err)
	}
	return nil
}

// Raw returns the stored bytes of a configuration unchanged.
func (s *Store) Raw(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM saved_configs WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("design: reading %q: %w", name, err)
	}
	return body, nil
}

func (s *Store) Get(ctx context.Context, name string) (Config, error) {
	body, err := s.Raw(ctx, name)
	if err != nil {
		return Config{}, err
	}
	return Load(body)
}

func (s *Store) List(ctx context.Context) ([]Saved, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, hash, updated_at FROM saved_configs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("design: listing configs: %w", err)
	}
	defer rows.Close()

	out := []Saved{}
	for rows.Next() {
		var sv Saved
		var ms int64
		if err := rows.Scan(&sv.Name, &sv.Hash, &ms); err != nil {
			return nil, err
		}
		sv.UpdatedAt = time.UnixMilli(ms).UTC()
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_configs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("design: deleting %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
