// Package storage persists the ledger state as a single versioned JSON
// envelope under one key in durable key-value storage. The active view
// filter is deliberately not part of the envelope.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"kopilka/internal/core"
)

// StateKey is the single durable key holding the envelope.
const StateKey = "ledger-v1"

// SchemaVersion tags the envelope. An envelope carrying any other version
// is treated as absent; there is no migration path.
const SchemaVersion = 1

// State is the persisted slice of the ledger.
type State struct {
	Transactions []core.Transaction `json:"transactions"`
	Categories   []core.Category    `json:"categories"`
	Budgets      []core.Budget      `json:"budgets"`
	Settings     core.Settings      `json:"settings"`
}

type envelope struct {
	Version int   `json:"version"`
	State   State `json:"state"`
}

// Repository stores and retrieves the ledger state envelope.
type Repository interface {
	// Save overwrites the stored envelope.
	Save(ctx context.Context, s State) error
	// Load returns the stored state. ok is false when nothing usable is
	// stored: absent key, unparsable payload or version mismatch all fall
	// soft to ok=false rather than an error.
	Load(ctx context.Context) (s State, ok bool, err error)
	Close() error
}

// DefaultState is the boot state used when nothing usable is stored:
// built-in catalog, empty transactions and budgets, rubles.
func DefaultState() State {
	return State{
		Transactions: []core.Transaction{},
		Categories:   core.DefaultCategories(),
		Budgets:      []core.Budget{},
		Settings:     core.Settings{Currency: core.RUB},
	}
}

func encodeState(s State) ([]byte, error) {
	b, err := json.Marshal(envelope{Version: SchemaVersion, State: s})
	if err != nil {
		return nil, fmt.Errorf("marshal state envelope: %w", err)
	}
	return b, nil
}

// decodeState parses a stored payload. Corrupt payloads and foreign schema
// versions return ok=false; the caller substitutes defaults.
func decodeState(b []byte) (State, bool) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return State{}, false
	}
	if env.Version != SchemaVersion {
		return State{}, false
	}
	return env.State, true
}
