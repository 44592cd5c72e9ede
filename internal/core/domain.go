package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TxType = "expense"
	Income  TxType = "income"
)

const (
	RUB Currency = "RUB"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

type (
	TxType   string
	Currency string

	Money struct {
		Cents int64 `json:"cents"`
	}

	// Transaction is a single recorded income or expense event.
	// ID and CreatedAt are assigned by the ledger store, never by callers.
	Transaction struct {
		ID         string `json:"id"`
		Type       TxType `json:"type"`
		Amount     Money  `json:"amount"`
		CategoryID string `json:"categoryId"`
		Date       string `json:"date"` // business date, YYYY-MM-DD
		Note       string `json:"note,omitempty"`
		CreatedAt  string `json:"createdAt"` // RFC 3339, ordering tie-breaker only
	}

	// TransactionDraft is what callers supply to the add operation.
	TransactionDraft struct {
		Type       TxType
		Amount     Money
		CategoryID string
		Date       string
		Note       string
	}

	// TransactionPatch carries a partial update; nil fields are left untouched.
	TransactionPatch struct {
		Type       *TxType
		Amount     *Money
		CategoryID *string
		Date       *string
		Note       *string
	}

	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Type  TxType `json:"type"`
		Icon  string `json:"icon"`  // glyph token, opaque to the core
		Color string `json:"color"` // style token, opaque to the core
	}

	CategoryDraft struct {
		Name  string
		Type  TxType
		Icon  string
		Color string
	}

	// Budget is part of the persisted data model but not consumed by any
	// derived computation yet.
	Budget struct {
		ID           string `json:"id"`
		CategoryID   string `json:"categoryId,omitempty"`
		MonthlyLimit Money  `json:"monthlyLimit"`
	}

	Settings struct {
		Currency Currency `json:"currency"`
	}

	// Period is an inclusive date range; either bound may be empty.
	Period struct {
		From string `json:"from"`
		To   string `json:"to"`
	}

	// FilterOptions is ephemeral view state and is never persisted.
	FilterOptions struct {
		Type       TxType  `json:"type,omitempty"`
		CategoryID string  `json:"categoryId,omitempty"`
		Period     *Period `json:"period,omitempty"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyName       = errors.New("empty name")
)

func (t TxType) Valid() bool {
	return t == Expense || t == Income
}

func (c Currency) Valid() bool {
	return c == RUB || c == USD || c == EUR
}

// ValidDate reports whether s is a zero-padded calendar date (YYYY-MM-DD).
// Dates in this form compare lexicographically in chronological order.
func ValidDate(s string) bool {
	if len(s) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Timestamp formats t as the RFC 3339 UTC string stored in CreatedAt.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks a draft at intake. The store itself performs no
// re-validation; this is the caller's responsibility before add.
func (d TransactionDraft) Validate() error {
	if !d.Type.Valid() {
		return ErrInvalidType
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(d.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if !ValidDate(d.Date) {
		return ErrInvalidDate
	}
	return nil
}

func (d CategoryDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if !d.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}
