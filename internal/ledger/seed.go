package ledger

import (
	"context"
	"log/slog"

	"kopilka/internal/core"
)

// Seed fills an empty ledger with a week of sample entries for local
// development. Seeding a non-empty ledger is a no-op.
func (s *Store) Seed(ctx context.Context) bool {
	s.mu.Lock()
	if len(s.transactions) > 0 {
		s.mu.Unlock()
		return false
	}
	now := s.now()
	day := func(daysAgo int) string {
		return now.AddDate(0, 0, -daysAgo).Format("2006-01-02")
	}
	stamp := func(daysAgo int) string {
		return core.Timestamp(now.AddDate(0, 0, -daysAgo))
	}

	samples := []core.Transaction{
		{Type: core.Expense, Amount: core.Money{Cents: 125000}, CategoryID: "food", Date: day(0), Note: "Обед в кафе", CreatedAt: stamp(0)},
		{Type: core.Expense, Amount: core.Money{Cents: 50000}, CategoryID: "transport", Date: day(1), Note: "Такси домой", CreatedAt: stamp(1)},
		{Type: core.Expense, Amount: core.Money{Cents: 250000}, CategoryID: "shopping", Date: day(1), Note: "Покупки в магазине", CreatedAt: stamp(1)},
		{Type: core.Expense, Amount: core.Money{Cents: 80000}, CategoryID: "entertainment", Date: day(2), Note: "Кино с друзьями", CreatedAt: stamp(2)},
		{Type: core.Expense, Amount: core.Money{Cents: 350000}, CategoryID: "utilities", Date: day(3), Note: "Коммунальные услуги", CreatedAt: stamp(3)},
		{Type: core.Income, Amount: core.Money{Cents: 1500000}, CategoryID: "freelance", Date: day(5), Note: "Проект по веб-дизайну", CreatedAt: stamp(5)},
		{Type: core.Income, Amount: core.Money{Cents: 8500000}, CategoryID: "salary", Date: day(7), Note: "Зарплата", CreatedAt: stamp(7)},
	}
	for i := range samples {
		samples[i].ID = newID()
	}

	s.transactions = samples
	s.persistLocked(ctx)
	s.mu.Unlock()

	slog.InfoContext(ctx, "Seeded demo ledger", "transactions", len(samples))
	return true
}
