package ledger

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"kopilka/internal/core"
	"kopilka/internal/storage"
)

// countingRepo records saves; failingRepo rejects them.
type countingRepo struct {
	*storage.MemoryRepository
	saves int
}

func (r *countingRepo) Save(ctx context.Context, s storage.State) error {
	r.saves++
	return r.MemoryRepository.Save(ctx, s)
}

type failingRepo struct{ *storage.MemoryRepository }

func (r *failingRepo) Save(context.Context, storage.State) error {
	return errors.New("quota exceeded")
}

func draft(typ core.TxType, cat, date string, cents int64) core.TransactionDraft {
	return core.TransactionDraft{
		Type:       typ,
		Amount:     core.Money{Cents: cents},
		CategoryID: cat,
		Date:       date,
	}
}

func newTestStore() (*Store, *countingRepo) {
	repo := &countingRepo{MemoryRepository: storage.NewMemoryRepository()}
	return New(repo), repo
}

func TestAddTransaction(t *testing.T) {
	ctx := context.Background()
	st, repo := newTestStore()

	first := st.AddTransaction(ctx, draft(core.Expense, "food", "2024-01-01", 125000))
	second := st.AddTransaction(ctx, draft(core.Income, "salary", "2024-01-01", 8500000))

	if first.ID == "" || first.CreatedAt == "" {
		t.Fatal("id and createdAt must be assigned by the store")
	}
	if first.ID == second.ID {
		t.Fatal("ids must be unique")
	}

	txs := st.Transactions()
	if len(txs) != 2 {
		t.Fatalf("count = %d, want 2", len(txs))
	}
	if txs[0].ID != second.ID {
		t.Fatal("newest transaction must come first")
	}
	if repo.saves != 2 {
		t.Fatalf("each add must persist, saves = %d", repo.saves)
	}
}

func TestAddRemoveCountProperty(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore()

	var ids []string
	for i := 0; i < 5; i++ {
		tx := st.AddTransaction(ctx, draft(core.Expense, "food", "2024-01-01", 100))
		ids = append(ids, tx.ID)
	}

	st.RemoveTransaction(ctx, ids[0])
	st.RemoveTransaction(ctx, ids[3])
	st.RemoveTransaction(ctx, "no-such-id") // silent no-op
	st.RemoveTransaction(ctx, ids[0])       // already gone, still a no-op

	if got := st.Count(); got != 3 {
		t.Fatalf("count = %d, want 5 adds - 2 effective removes = 3", got)
	}
}

func TestRemoveNoopDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	st, repo := newTestStore()

	st.AddTransaction(ctx, draft(core.Expense, "food", "2024-01-01", 100))
	before := repo.saves
	st.RemoveTransaction(ctx, "missing")
	if repo.saves != before {
		t.Fatal("a no-op remove must not trigger a save")
	}
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore()

	tx := st.AddTransaction(ctx, core.TransactionDraft{
		Type:       core.Expense,
		Amount:     core.Money{Cents: 100},
		CategoryID: "food",
		Date:       "2024-01-01",
		Note:       "обед",
	})

	newAmount := core.Money{Cents: 250}
	newDate := "2024-01-05"
	st.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Amount: &newAmount, Date: &newDate})

	got := st.Transactions()[0]
	if got.Amount.Cents != 250 || got.Date != "2024-01-05" {
		t.Fatalf("patched fields not applied: %+v", got)
	}
	if got.Note != "обед" || got.Type != core.Expense {
		t.Fatalf("untouched fields must survive the merge: %+v", got)
	}
	if got.ID != tx.ID || got.CreatedAt != tx.CreatedAt {
		t.Fatal("id and createdAt are immutable")
	}

	// Unknown id: silent no-op.
	st.UpdateTransaction(ctx, "missing", core.TransactionPatch{Amount: &newAmount})
	if st.Count() != 1 {
		t.Fatal("no-op update must not change the collection")
	}
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore()
	baseline := len(st.Categories())

	cat := st.AddCategory(ctx, core.CategoryDraft{Name: "Подписки", Type: core.Expense, Icon: "repeat", Color: "#14b8a6"})
	if cat.ID == "" {
		t.Fatal("category id must be assigned")
	}
	if len(st.Categories()) != baseline+1 {
		t.Fatal("category not appended")
	}

	// Built-ins are protected; the collection length must not change.
	st.RemoveCategory(ctx, "salary")
	st.RemoveCategory(ctx, "food")
	if len(st.Categories()) != baseline+1 {
		t.Fatal("built-in categories must never be removable")
	}

	st.RemoveCategory(ctx, cat.ID)
	if len(st.Categories()) != baseline {
		t.Fatal("user-added category must be removable")
	}
}

func TestSetCurrency(t *testing.T) {
	ctx := context.Background()
	st, repo := newTestStore()

	st.SetCurrency(ctx, core.EUR)
	if st.Settings().Currency != core.EUR {
		t.Fatalf("currency = %s, want EUR", st.Settings().Currency)
	}
	if repo.saves != 1 {
		t.Fatal("setCurrency must persist")
	}
}

func TestTypeFilterClearsCategory(t *testing.T) {
	st, _ := newTestStore()

	st.SetCategoryFilter("transport")
	st.SetTypeFilter(core.Income)

	active := st.ActiveFilters()
	if active.Type != core.Income {
		t.Fatalf("type = %s, want income", active.Type)
	}
	if active.CategoryID != "" {
		t.Fatalf("category filter must be cleared on type change, got %q", active.CategoryID)
	}
}

func TestFilterMutators(t *testing.T) {
	st, repo := newTestStore()

	st.SetFilters(core.FilterOptions{Type: core.Expense, CategoryID: "food"})
	st.SetPeriodFilter(&core.Period{From: "2024-01-01", To: "2024-01-31"})

	active := st.ActiveFilters()
	if active.Type != core.Expense || active.CategoryID != "food" || active.Period == nil {
		t.Fatalf("active filters wrong: %+v", active)
	}

	st.ClearFilters()
	if !reflect.DeepEqual(st.ActiveFilters(), core.FilterOptions{}) {
		t.Fatal("clearFilters must reset to the empty filter")
	}

	// Filter state is ephemeral: none of the above persists.
	if repo.saves != 0 {
		t.Fatalf("filter mutators must never persist, saves = %d", repo.saves)
	}
}

func TestFilteredTransactions(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore()

	st.AddTransaction(ctx, draft(core.Expense, "food", "2024-01-01", 100))
	st.AddTransaction(ctx, draft(core.Income, "salary", "2024-01-02", 200))

	st.SetTypeFilter(core.Income)
	got := st.FilteredTransactions()
	if len(got) != 1 || got[0].Type != core.Income {
		t.Fatalf("got %+v", got)
	}
}

func TestDefaultViewOrdering(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore()

	// Stagger the clock so createdAt stamps are strictly increasing.
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	tick := 0
	st.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	older := st.AddTransaction(ctx, draft(core.Expense, "food", "2024-01-01", 100))
	newer := st.AddTransaction(ctx, draft(core.Expense, "food", "2024-01-02", 100))
	t1 := st.AddTransaction(ctx, draft(core.Expense, "food", "2024-01-01", 100))

	got := st.FilteredTransactions()
	want := []string{newer.ID, t1.ID, older.ID} // date desc, then createdAt desc
	for i, tx := range got {
		if tx.ID != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, tx.ID, want[i])
		}
	}
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	st := New(&failingRepo{MemoryRepository: storage.NewMemoryRepository()})

	tx := st.AddTransaction(ctx, draft(core.Expense, "food", "2024-01-01", 100))
	if tx.ID == "" || st.Count() != 1 {
		t.Fatal("a failed save must not undo the in-memory mutation")
	}
}

func TestHydrateRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()

	st := New(repo)
	st.AddTransaction(ctx, draft(core.Expense, "food", "2024-01-01", 125000))
	st.AddCategory(ctx, core.CategoryDraft{Name: "Подписки", Type: core.Expense})
	st.SetCurrency(ctx, core.USD)
	st.SetTypeFilter(core.Expense) // must NOT survive the round trip

	reborn := New(repo)
	reborn.Hydrate(ctx)

	if !reflect.DeepEqual(reborn.Transactions(), st.Transactions()) {
		t.Fatal("transactions must survive the round trip in display order")
	}
	if !reflect.DeepEqual(reborn.Categories(), st.Categories()) {
		t.Fatal("categories must survive the round trip")
	}
	if reborn.Settings().Currency != core.USD {
		t.Fatal("settings must survive the round trip")
	}
	if !reflect.DeepEqual(reborn.ActiveFilters(), core.FilterOptions{}) {
		t.Fatal("active filters must never be persisted")
	}
}

func TestHydrateCorruptFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()

	st := New(repo)
	st.AddTransaction(ctx, draft(core.Expense, "food", "2024-01-01", 100))
	repo.Corrupt()

	reborn := New(repo)
	reborn.Hydrate(ctx)

	if reborn.Count() != 0 {
		t.Fatal("corrupt snapshot must fall back to an empty ledger")
	}
	if len(reborn.Categories()) == 0 {
		t.Fatal("defaults must include the built-in catalog")
	}
}

func TestClearTransactions(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore()

	st.AddTransaction(ctx, draft(core.Expense, "food", "2024-01-01", 100))
	cats := len(st.Categories())

	st.ClearTransactions(ctx)
	if st.Count() != 0 {
		t.Fatal("transactions must be cleared")
	}
	if len(st.Categories()) != cats {
		t.Fatal("categories must survive a transaction clear")
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore()

	if !st.Seed(ctx) {
		t.Fatal("seeding an empty ledger must succeed")
	}
	if st.Count() == 0 {
		t.Fatal("seed must add sample transactions")
	}

	before := st.Count()
	if st.Seed(ctx) {
		t.Fatal("seeding a non-empty ledger must be a no-op")
	}
	if st.Count() != before {
		t.Fatal("repeated seed must not add entries")
	}
}
