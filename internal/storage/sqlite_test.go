package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	defer repo.Close()

	if _, ok, err := repo.Load(ctx); err != nil || ok {
		t.Fatalf("empty db: ok=%v err=%v", ok, err)
	}

	want := sampleState()
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := repo.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestSQLiteSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	defer repo.Close()

	first := sampleState()
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := first
	second.Transactions = first.Transactions[:1]
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := repo.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(got.Transactions) != 1 {
		t.Fatalf("expected the later snapshot to win, got %d transactions", len(got.Transactions))
	}
}

func TestSQLiteCorruptRowFailsSoft(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	defer repo.Close()

	if err := repo.Save(ctx, sampleState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := repo.db.ExecContext(ctx,
		`UPDATE ledger_state SET value = '{broken' WHERE key = ?`, StateKey); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	_, ok, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("corrupt payload must not error, got %v", err)
	}
	if ok {
		t.Fatal("corrupt payload must report ok=false")
	}
}
