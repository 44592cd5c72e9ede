package services

import (
	"context"
	"errors"
	"testing"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
	"kopilka/internal/storage"
)

type fakePublisher struct {
	published []string // "entity/op/id"
	fail      bool
	closed    bool
}

func (p *fakePublisher) PublishMutation(_ context.Context, entity, op, id string) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, entity+"/"+op+"/"+id)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func newTestService(pub MutationPublisher) *LedgerService {
	store := ledger.New(storage.NewMemoryRepository())
	return NewLedgerService(store, pub)
}

func validDraft() core.TransactionDraft {
	return core.TransactionDraft{
		Type:       core.Expense,
		Amount:     core.Money{Cents: 125000},
		CategoryID: "food",
		Date:       "2024-01-01",
	}
}

func TestAddTransactionPublishes(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newTestService(pub)

	tx, err := svc.AddTransaction(ctx, validDraft())
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if svc.Count() != 1 {
		t.Fatal("transaction not stored")
	}
	if len(pub.published) != 1 || pub.published[0] != "transaction/created/"+tx.ID {
		t.Fatalf("published = %v", pub.published)
	}
}

func TestAddTransactionRejectsInvalidDraft(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newTestService(pub)

	tests := []struct {
		name  string
		mut   func(*core.TransactionDraft)
		wantE error
	}{
		{"zero amount", func(d *core.TransactionDraft) { d.Amount.Cents = 0 }, core.ErrInvalidAmount},
		{"negative amount", func(d *core.TransactionDraft) { d.Amount.Cents = -1 }, core.ErrInvalidAmount},
		{"bad date", func(d *core.TransactionDraft) { d.Date = "01.01.2024" }, core.ErrInvalidDate},
		{"bad type", func(d *core.TransactionDraft) { d.Type = "transfer" }, core.ErrInvalidType},
		{"empty category", func(d *core.TransactionDraft) { d.CategoryID = "" }, core.ErrEmptyCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mut(&d)
			if _, err := svc.AddTransaction(ctx, d); !errors.Is(err, tt.wantE) {
				t.Fatalf("err = %v, want %v", err, tt.wantE)
			}
		})
	}

	if svc.Count() != 0 {
		t.Fatal("rejected drafts must not be stored")
	}
	if len(pub.published) != 0 {
		t.Fatal("rejected drafts must not publish")
	}
}

func TestUpdateTransactionValidatesPatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	tx, _ := svc.AddTransaction(ctx, validDraft())

	badDate := "not-a-date"
	if err := svc.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Date: &badDate}); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}

	badAmount := core.Money{Cents: 0}
	if err := svc.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Amount: &badAmount}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}

	goodDate := "2024-02-01"
	if err := svc.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Date: &goodDate}); err != nil {
		t.Fatalf("valid patch rejected: %v", err)
	}
	if got := svc.Transactions()[0].Date; got != goodDate {
		t.Fatalf("date = %s, want %s", got, goodDate)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{fail: true}
	svc := newTestService(pub)

	if _, err := svc.AddTransaction(ctx, validDraft()); err != nil {
		t.Fatalf("broker failure must not fail the mutation: %v", err)
	}
	if svc.Count() != 1 {
		t.Fatal("transaction must be stored despite publish failure")
	}
}

func TestNilPublisherSkipsNotifications(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	if _, err := svc.AddTransaction(ctx, validDraft()); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close with nil publisher: %v", err)
	}
}

func TestSetCurrencyRejectsUnknown(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	if err := svc.SetCurrency(ctx, core.Currency("GBP")); !errors.Is(err, core.ErrInvalidCurrency) {
		t.Fatalf("err = %v, want ErrInvalidCurrency", err)
	}
	if err := svc.SetCurrency(ctx, core.USD); err != nil {
		t.Fatalf("SetCurrency: %v", err)
	}
	if svc.Settings().Currency != core.USD {
		t.Fatal("currency not applied")
	}
}

func TestReportDelegation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	svc.AddTransaction(ctx, validDraft())
	svc.AddTransaction(ctx, core.TransactionDraft{
		Type:       core.Income,
		Amount:     core.Money{Cents: 8500000},
		CategoryID: "salary",
		Date:       "2024-01-05",
	})

	totals := svc.Totals(nil)
	if totals.Income.Cents != 8500000 || totals.Expense.Cents != 125000 {
		t.Fatalf("totals = %+v", totals)
	}
	if totals.Balance.Cents != 8500000-125000 {
		t.Fatalf("balance = %d", totals.Balance.Cents)
	}

	breakdown := svc.CategoryBreakdown(8)
	if len(breakdown) != 1 || breakdown[0].CategoryID != "food" {
		t.Fatalf("breakdown = %+v", breakdown)
	}

	series := svc.DailySeries(30)
	if len(series) != 2 {
		t.Fatalf("series = %+v", series)
	}
}

func TestSeedPublishesOnce(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newTestService(pub)

	if !svc.Seed(ctx) {
		t.Fatal("seed must succeed on an empty ledger")
	}
	if svc.Seed(ctx) {
		t.Fatal("repeated seed must be a no-op")
	}

	seeds := 0
	for _, p := range pub.published {
		if p == "transaction/seeded/" {
			seeds++
		}
	}
	if seeds != 1 {
		t.Fatalf("seed notifications = %d, want 1", seeds)
	}
}

func TestClosePropagates(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestService(pub)

	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pub.closed {
		t.Fatal("publisher must be closed")
	}
}
