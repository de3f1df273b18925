package dedup

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestWindowBoundary(t *testing.T) {
	d := New(5000 * time.Millisecond)
	t0 := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(50000)

	tests := []struct {
		offset        time.Duration
		wantDuplicate bool
	}{
		{0, false},
		{1 * time.Millisecond, true},
		{4999 * time.Millisecond, true},
		{5001 * time.Millisecond, false},
	}

	for _, tt := range tests {
		got := d.Observe(amount, t0.Add(tt.offset))
		if got != tt.wantDuplicate {
			t.Errorf("Observe at t+%v = duplicate %v, want %v", tt.offset, got, tt.wantDuplicate)
		}
	}
}

func TestDistinctAmountsNotSuppressed(t *testing.T) {
	d := New(DefaultWindow)
	t0 := time.Now()

	if d.Observe(decimal.NewFromInt(10000), t0) {
		t.Error("first amount reported duplicate")
	}
	if d.Observe(decimal.NewFromInt(20000), t0.Add(10*time.Millisecond)) {
		t.Error("distinct amount reported duplicate")
	}
	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}
}

func TestScaleInsensitiveEquality(t *testing.T) {
	d := New(DefaultWindow)
	t0 := time.Now()

	d.Observe(decimal.RequireFromString("50000"), t0)
	if !d.Observe(decimal.RequireFromString("50000.00"), t0.Add(time.Millisecond)) {
		t.Error("50000.00 should match 50000 within the window")
	}
}

func TestPruneDropsStaleEntries(t *testing.T) {
	d := New(5 * time.Second)
	t0 := time.Now()

	d.Observe(decimal.NewFromInt(1), t0)
	d.Observe(decimal.NewFromInt(2), t0)
	d.Observe(decimal.NewFromInt(3), t0.Add(10*time.Second))

	if d.Len() != 1 {
		t.Errorf("Len() after prune = %d, want 1", d.Len())
	}
}
