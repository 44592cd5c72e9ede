// Package report derives aggregates from a transaction set: overall
// totals, per-category breakdowns and a per-date series. Results are
// recomputed on every call; nothing here caches or mutates its input.
package report

import (
	"sort"

	"kopilka/internal/core"
	"kopilka/internal/filter"
)

// Totals holds income and expense sums and their difference.
type Totals struct {
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Balance core.Money `json:"balance"`
}

// CategorySum is one breakdown row. Name, Icon and Color are carried
// through from the category; when the category no longer exists the
// uncategorized descriptor is substituted.
type CategorySum struct {
	CategoryID string     `json:"categoryId"`
	Name       string     `json:"name"`
	Icon       string     `json:"icon"`
	Color      string     `json:"color"`
	Amount     core.Money `json:"amount"`
}

// DailyPoint accumulates income and expense for a single calendar date.
type DailyPoint struct {
	Date    string     `json:"date"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Balance core.Money `json:"balance"`
}

// Descriptor shown for transactions whose category was removed.
const (
	uncategorizedName  = "Без категории"
	uncategorizedIcon  = "package"
	uncategorizedColor = "#6b7280"
)

// ComputeTotals sums the whole set, or the whole given period. The active
// view filter never affects totals; callers pass the full collection.
func ComputeTotals(txs []core.Transaction, period *core.Period) Totals {
	var t Totals
	for _, tx := range filter.InPeriod(txs, period) {
		switch tx.Type {
		case core.Income:
			t.Income = t.Income.Add(tx.Amount)
		case core.Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// ByCategory groups the set by category id, summing amounts per group.
// Rows are ordered by amount descending (ties by category id, for a
// deterministic result); no truncation is applied here — see TopN.
func ByCategory(txs []core.Transaction, cats []core.Category) []CategorySum {
	lookup := make(map[string]core.Category, len(cats))
	for _, c := range cats {
		lookup[c.ID] = c
	}

	sums := make(map[string]*CategorySum)
	for _, tx := range txs {
		row, ok := sums[tx.CategoryID]
		if !ok {
			row = &CategorySum{
				CategoryID: tx.CategoryID,
				Name:       uncategorizedName,
				Icon:       uncategorizedIcon,
				Color:      uncategorizedColor,
			}
			if c, found := lookup[tx.CategoryID]; found {
				row.Name, row.Icon, row.Color = c.Name, c.Icon, c.Color
			}
			sums[tx.CategoryID] = row
		}
		row.Amount = row.Amount.Add(tx.Amount)
	}

	out := make([]CategorySum, 0, len(sums))
	for _, row := range sums {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// TopN truncates a breakdown to its n largest rows.
func TopN(rows []CategorySum, n int) []CategorySum {
	if n < 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

// DailySeries groups the set by date, ascending, with per-date income,
// expense and balance.
func DailySeries(txs []core.Transaction) []DailyPoint {
	byDate := make(map[string]*DailyPoint)
	for _, tx := range txs {
		p, ok := byDate[tx.Date]
		if !ok {
			p = &DailyPoint{Date: tx.Date}
			byDate[tx.Date] = p
		}
		switch tx.Type {
		case core.Income:
			p.Income = p.Income.Add(tx.Amount)
		case core.Expense:
			p.Expense = p.Expense.Add(tx.Amount)
		}
	}

	out := make([]DailyPoint, 0, len(byDate))
	for _, p := range byDate {
		p.Balance = p.Income.Sub(p.Expense)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Trailing keeps the last n calendar dates present in the series (not the
// last n calendar days).
func Trailing(points []DailyPoint, n int) []DailyPoint {
	if n < 0 || n >= len(points) {
		return points
	}
	return points[len(points)-n:]
}
