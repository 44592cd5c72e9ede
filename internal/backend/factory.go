// Package backend selects and wires the persistence backend from
// configuration: an in-process memory repository for development and
// tests, or SQLite for real use.
package backend

import (
	"fmt"

	"kopilka/internal/config"
	"kopilka/internal/log"
	"kopilka/internal/storage"
)

type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

func (t Type) IsValid() bool {
	return t == MemoryBackend || t == SQLiteBackend
}

func (t Type) String() string { return string(t) }

// Result bundles the selected repository with its cleanup hook. Cleanup
// may be nil.
type Result struct {
	Repo    storage.Repository
	Cleanup func() error
}

type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Create builds the repository named by the config's DataBackend.
func (f *Factory) Create(cfg *config.Config) (*Result, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Repo: repo, Cleanup: repo.Close}, nil

	default:
		repo := storage.NewMemoryRepository()
		f.logger.Info("Initialized memory backend")
		return &Result{Repo: repo, Cleanup: nil}, nil
	}
}
