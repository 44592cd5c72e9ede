package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps the state envelope in a single-row key-value
// table. One process writes at a time; two processes sharing the file
// overwrite each other last-write-wins.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save implements Repository.
func (r *SQLiteRepository) Save(ctx context.Context, s State) error {
	payload, err := encodeState(s)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ledger_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		StateKey, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write ledger state: %w", err)
	}

	slog.DebugContext(ctx, "Ledger state saved",
		"key", StateKey,
		"transactions", len(s.Transactions),
		"categories", len(s.Categories))
	return nil
}

// Load implements Repository.
func (r *SQLiteRepository) Load(ctx context.Context) (State, bool, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM ledger_state WHERE key = ?`, StateKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("read ledger state: %w", err)
	}

	s, ok := decodeState([]byte(payload))
	if !ok {
		slog.WarnContext(ctx, "Stored ledger state unusable, falling back to defaults",
			"key", StateKey)
		return State{}, false, nil
	}
	return s, true, nil
}
