// Package services orchestrates ledger mutations: validate at intake,
// mutate the store, then notify downstream consumers.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
	"kopilka/internal/report"
)

// MutationPublisher is implemented by the events client. A nil publisher
// disables notifications entirely.
type MutationPublisher interface {
	PublishMutation(ctx context.Context, entity, op, id string) error
	Close() error
}

// LedgerService fronts the store for the HTTP layer. Mutations validate
// first, persist through the store, then publish a notification.
// Publishing is best-effort: a broker failure never fails the request.
type LedgerService struct {
	store     *ledger.Store
	publisher MutationPublisher
}

func NewLedgerService(store *ledger.Store, publisher MutationPublisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher}
}

func (s *LedgerService) AddTransaction(ctx context.Context, d core.TransactionDraft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("invalid transaction: %w", err)
	}

	tx := s.store.AddTransaction(ctx, d)
	s.publish(ctx, "transaction", "created", tx.ID)
	return tx, nil
}

func (s *LedgerService) RemoveTransaction(ctx context.Context, id string) {
	s.store.RemoveTransaction(ctx, id)
	s.publish(ctx, "transaction", "removed", id)
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) error {
	if p.Type != nil && !p.Type.Valid() {
		return fmt.Errorf("invalid transaction: %w", core.ErrInvalidType)
	}
	if p.Amount != nil {
		if err := p.Amount.Validate(); err != nil {
			return fmt.Errorf("invalid transaction: %w", err)
		}
	}
	if p.Date != nil && !core.ValidDate(*p.Date) {
		return fmt.Errorf("invalid transaction: %w", core.ErrInvalidDate)
	}

	s.store.UpdateTransaction(ctx, id, p)
	s.publish(ctx, "transaction", "updated", id)
	return nil
}

func (s *LedgerService) ClearTransactions(ctx context.Context) {
	s.store.ClearTransactions(ctx)
	s.publish(ctx, "transaction", "cleared", "")
}

func (s *LedgerService) AddCategory(ctx context.Context, d core.CategoryDraft) (core.Category, error) {
	if err := d.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("invalid category: %w", err)
	}

	cat := s.store.AddCategory(ctx, d)
	s.publish(ctx, "category", "created", cat.ID)
	return cat, nil
}

func (s *LedgerService) RemoveCategory(ctx context.Context, id string) {
	s.store.RemoveCategory(ctx, id)
	s.publish(ctx, "category", "removed", id)
}

func (s *LedgerService) SetCurrency(ctx context.Context, c core.Currency) error {
	if !c.Valid() {
		return core.ErrInvalidCurrency
	}
	s.store.SetCurrency(ctx, c)
	s.publish(ctx, "settings", "updated", "")
	return nil
}

// Filter mutators pass straight through; filter state is ephemeral and
// never worth a notification.

func (s *LedgerService) SetFilters(opts core.FilterOptions)     { s.store.SetFilters(opts) }
func (s *LedgerService) ClearFilters()                          { s.store.ClearFilters() }
func (s *LedgerService) SetTypeFilter(t core.TxType)            { s.store.SetTypeFilter(t) }
func (s *LedgerService) SetCategoryFilter(id string)            { s.store.SetCategoryFilter(id) }
func (s *LedgerService) SetPeriodFilter(p *core.Period)         { s.store.SetPeriodFilter(p) }
func (s *LedgerService) ActiveFilters() core.FilterOptions      { return s.store.ActiveFilters() }
func (s *LedgerService) Transactions() []core.Transaction       { return s.store.Transactions() }
func (s *LedgerService) FilteredTransactions() []core.Transaction {
	return s.store.FilteredTransactions()
}
func (s *LedgerService) Categories() []core.Category { return s.store.Categories() }
func (s *LedgerService) Budgets() []core.Budget      { return s.store.Budgets() }
func (s *LedgerService) Settings() core.Settings     { return s.store.Settings() }
func (s *LedgerService) Count() int                  { return s.store.Count() }

// Totals computes income, expense and balance over the whole ledger or a
// period.
func (s *LedgerService) Totals(p *core.Period) report.Totals {
	return report.ComputeTotals(s.store.Transactions(), p)
}

// CategoryBreakdown sums expenses per category, largest first.
func (s *LedgerService) CategoryBreakdown(limit int) []report.CategorySum {
	sums := report.ByCategory(s.store.Transactions(), s.store.Categories())
	if limit > 0 {
		sums = report.TopN(sums, limit)
	}
	return sums
}

// DailySeries builds the per-day cash flow, optionally trailing the last
// n dates that have entries.
func (s *LedgerService) DailySeries(trailing int) []report.DailyPoint {
	points := report.DailySeries(s.store.Transactions())
	if trailing > 0 {
		points = report.Trailing(points, trailing)
	}
	return points
}

func (s *LedgerService) Seed(ctx context.Context) bool {
	seeded := s.store.Seed(ctx)
	if seeded {
		s.publish(ctx, "transaction", "seeded", "")
	}
	return seeded
}

func (s *LedgerService) publish(ctx context.Context, entity, op, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishMutation(ctx, entity, op, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish mutation message",
			"entity", entity,
			"op", op,
			"id", id,
			"error", err)
	}
}

// Close releases the publisher connection, if any.
func (s *LedgerService) Close() error {
	if s.publisher != nil {
		return s.publisher.Close()
	}
	return nil
}
