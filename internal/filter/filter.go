// Package filter derives ordered views of a transaction collection.
// Everything here is pure: inputs are never mutated.
package filter

import (
	"sort"

	"kopilka/internal/core"
)

// Apply returns the transactions matching opts, sorted by business date
// descending with CreatedAt descending as tie-break. Filters apply in
// order: type, category, inclusive date range. Range bounds compare as
// strings, which is chronological for zero-padded ISO dates; an empty
// bound is skipped.
func Apply(txs []core.Transaction, opts core.FilterOptions) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if opts.Type != "" && tx.Type != opts.Type {
			continue
		}
		if opts.CategoryID != "" && tx.CategoryID != opts.CategoryID {
			continue
		}
		if p := opts.Period; p != nil {
			if p.From != "" && tx.Date < p.From {
				continue
			}
			if p.To != "" && tx.Date > p.To {
				continue
			}
		}
		out = append(out, tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// InPeriod keeps transactions whose date falls inside the inclusive range.
// Used by the report package for period-scoped totals.
func InPeriod(txs []core.Transaction, period *core.Period) []core.Transaction {
	if period == nil {
		return txs
	}
	return Apply(txs, core.FilterOptions{Period: period})
}
