// Package ledger owns the authoritative in-memory collections: the
// transactions, the category catalog, the budget stubs and the settings,
// plus the ephemeral active view filter.
//
// The store is constructed explicitly and passed by reference; there is no
// package-level instance. Every successful mutation issues a synchronous
// snapshot save on the injected repository before returning. Durability is
// best-effort: a failed save is logged and the in-memory state stays
// authoritative for the session.
package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"kopilka/internal/core"
	"kopilka/internal/filter"
	"kopilka/internal/storage"
)

func newID() string { return uuid.NewString() }

type Store struct {
	mu   sync.Mutex
	repo storage.Repository
	now  func() time.Time

	transactions []core.Transaction // most-recently-added first
	categories   []core.Category
	budgets      []core.Budget
	settings     core.Settings
	active       core.FilterOptions
}

// New creates a store seeded with the default state. Call Hydrate to pick
// up a previously persisted ledger.
func New(repo storage.Repository) *Store {
	def := storage.DefaultState()
	return &Store{
		repo:         repo,
		now:          time.Now,
		transactions: def.Transactions,
		categories:   def.Categories,
		budgets:      def.Budgets,
		settings:     def.Settings,
	}
}

// Hydrate replaces the in-memory state with the persisted one, if any.
// Absent, corrupt or version-mismatched snapshots fall soft to the
// defaults already in place. Runs once at process start.
func (s *Store) Hydrate(ctx context.Context) {
	state, ok, err := s.repo.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Ledger hydration failed, keeping defaults", "error", err)
		return
	}
	if !ok {
		slog.InfoContext(ctx, "No persisted ledger state, starting from defaults")
		return
	}

	s.mu.Lock()
	s.transactions = state.Transactions
	s.categories = state.Categories
	s.budgets = state.Budgets
	s.settings = state.Settings
	s.mu.Unlock()

	slog.InfoContext(ctx, "Ledger hydrated",
		"transactions", len(state.Transactions),
		"categories", len(state.Categories))
}

// Flush persists the current state. Mutations already persist on their
// own; this exists for shutdown.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Save(ctx, s.snapshotLocked())
}

// AddTransaction assigns a fresh id and creation timestamp and prepends
// the entity, so default iteration order is most-recently-added first.
// No validation happens here; callers validate drafts at intake.
func (s *Store) AddTransaction(ctx context.Context, d core.TransactionDraft) core.Transaction {
	tx := core.Transaction{
		ID:         newID(),
		Type:       d.Type,
		Amount:     d.Amount,
		CategoryID: d.CategoryID,
		Date:       d.Date,
		Note:       d.Note,
		CreatedAt:  core.Timestamp(s.now()),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append([]core.Transaction{tx}, s.transactions...)
	s.persistLocked(ctx)
	return tx
}

// RemoveTransaction removes by id. Absent ids are a silent no-op.
func (s *Store) RemoveTransaction(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.transactions {
		if tx.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			s.persistLocked(ctx)
			return
		}
	}
}

// UpdateTransaction shallow-merges the set patch fields into the entity.
// Absent ids are a silent no-op. ID and CreatedAt are immutable.
func (s *Store) UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID != id {
			continue
		}
		tx := &s.transactions[i]
		if p.Type != nil {
			tx.Type = *p.Type
		}
		if p.Amount != nil {
			tx.Amount = *p.Amount
		}
		if p.CategoryID != nil {
			tx.CategoryID = *p.CategoryID
		}
		if p.Date != nil {
			tx.Date = *p.Date
		}
		if p.Note != nil {
			tx.Note = *p.Note
		}
		s.persistLocked(ctx)
		return
	}
}

// AddCategory assigns a fresh id and appends to the catalog.
func (s *Store) AddCategory(ctx context.Context, d core.CategoryDraft) core.Category {
	cat := core.Category{
		ID:    newID(),
		Name:  d.Name,
		Type:  d.Type,
		Icon:  d.Icon,
		Color: d.Color,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, cat)
	s.persistLocked(ctx)
	return cat
}

// RemoveCategory removes a user-added category. Built-in ids and absent
// ids are silent no-ops. Transactions referencing the removed category
// keep their dangling id; the breakdown substitutes a placeholder.
func (s *Store) RemoveCategory(ctx context.Context, id string) {
	if core.IsBuiltinCategory(id) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cat := range s.categories {
		if cat.ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			s.persistLocked(ctx)
			return
		}
	}
}

// SetCurrency replaces the settings' currency. Existing amounts are not
// converted.
func (s *Store) SetCurrency(ctx context.Context, c core.Currency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Currency = c
	s.persistLocked(ctx)
}

// ClearTransactions drops all transactions, keeping categories, budgets
// and settings.
func (s *Store) ClearTransactions(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.transactions) == 0 {
		return
	}
	s.transactions = s.transactions[:0]
	s.persistLocked(ctx)
}

// SetFilters replaces the active filter wholesale.
func (s *Store) SetFilters(opts core.FilterOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = opts
}

// ClearFilters resets the active filter to empty.
func (s *Store) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = core.FilterOptions{}
}

// SetTypeFilter sets the type criterion and clears any category selection:
// categories are type-scoped, so a cross-type selection must not survive a
// type change.
func (s *Store) SetTypeFilter(t core.TxType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.Type = t
	s.active.CategoryID = ""
}

func (s *Store) SetCategoryFilter(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.CategoryID = id
}

func (s *Store) SetPeriodFilter(p *core.Period) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.Period = p
}

// Transactions returns a copy of the collection in display order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// FilteredTransactions applies the active filter.
func (s *Store) FilteredTransactions() []core.Transaction {
	s.mu.Lock()
	txs := make([]core.Transaction, len(s.transactions))
	copy(txs, s.transactions)
	opts := s.active
	s.mu.Unlock()
	return filter.Apply(txs, opts)
}

func (s *Store) ActiveFilters() core.FilterOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Store) Categories() []core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *Store) Budgets() []core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, len(s.budgets))
	copy(out, s.budgets)
	return out
}

func (s *Store) Settings() core.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Count is the total transaction count, for the export collaborator's
// nothing-to-export short-circuit.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

func (s *Store) snapshotLocked() storage.State {
	state := storage.State{
		Transactions: make([]core.Transaction, len(s.transactions)),
		Categories:   make([]core.Category, len(s.categories)),
		Budgets:      make([]core.Budget, len(s.budgets)),
		Settings:     s.settings,
	}
	copy(state.Transactions, s.transactions)
	copy(state.Categories, s.categories)
	copy(state.Budgets, s.budgets)
	return state
}

// persistLocked mirrors the state to the repository before the mutating
// call returns. The caller does not await durability beyond the write
// being issued; failures are logged and swallowed.
func (s *Store) persistLocked(ctx context.Context) {
	if err := s.repo.Save(ctx, s.snapshotLocked()); err != nil {
		slog.WarnContext(ctx, "Ledger state save failed, in-memory state stays authoritative",
			"error", err)
	}
}
