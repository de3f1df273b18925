package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nota-bridge/nota/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLedgerRoundTrip(t *testing.T) {
	db := openTestDB(t)
	l := NewLedger(db)
	ctx := context.Background()

	entry := domain.LedgerEntry{
		Name:   "Lunch",
		Amount: decimal.NewFromInt(50000),
		Date:   time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
	}

	id, err := l.Create(ctx, entry)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Error("expected a record id")
	}

	got, err := l.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("List returned %d entries, want 1", len(got))
	}
	if got[0].Name != "Lunch" || !got[0].Amount.Equal(entry.Amount) {
		t.Errorf("entry = %+v", got[0])
	}
	if !got[0].Date.Equal(entry.Date) {
		t.Errorf("date = %v, want %v", got[0].Date, entry.Date)
	}
	if got[0].Category != "" {
		t.Errorf("category = %q, want empty", got[0].Category)
	}
}

func TestLedgerPreservesDecimalExactness(t *testing.T) {
	db := openTestDB(t)
	l := NewLedger(db)
	ctx := context.Background()

	amount := decimal.RequireFromString("1250000.05")
	_, err := l.Create(ctx, domain.LedgerEntry{
		Name: "Rent", Amount: amount, Date: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := l.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Amount.String() != "1250000.05" {
		t.Errorf("amount = %s, want 1250000.05", got[0].Amount)
	}
}

type failingLedger struct{}

func (failingLedger) Create(context.Context, domain.LedgerEntry) (string, error) {
	return "", domain.ErrLedgerUnavailable
}

func TestArchivingLedger(t *testing.T) {
	db := openTestDB(t)
	primary := NewLedger(db)
	arch := NewArchiving(primary, db)
	ctx := context.Background()

	entry := domain.LedgerEntry{
		Name: "Coffee", Amount: decimal.NewFromInt(25000), Date: time.Now(),
	}

	id, err := arch.Create(ctx, entry)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Error("expected a record id from the primary ledger")
	}

	n, err := arch.ArchivedCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("ArchivedCount = %d, want 1", n)
	}
}

func TestArchivingLedgerPrimaryFailure(t *testing.T) {
	db := openTestDB(t)
	arch := NewArchiving(failingLedger{}, db)

	_, err := arch.Create(context.Background(), domain.LedgerEntry{
		Name: "x", Amount: decimal.NewFromInt(1), Date: time.Now(),
	})
	if !errors.Is(err, domain.ErrLedgerUnavailable) {
		t.Errorf("error = %v, want ErrLedgerUnavailable", err)
	}

	n, _ := arch.ArchivedCount(context.Background())
	if n != 0 {
		t.Errorf("ArchivedCount = %d, want 0 after primary failure", n)
	}
}
