package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"centesimi/internal/core"
	"centesimi/internal/storage"
)

func TestAggregatorLifecycle(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	registry := NewRegistryService(mem)
	ledger := NewLedgerService(mem, nil)
	aggregator := NewAggregatorService(mem)

	food, _, err := registry.ResolveOrCreate(ctx, 100, "food", "")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}

	amounts := []struct {
		occurredAt int64
		cents      int64
	}{
		{10, 500},
		{20, 1200},
		{30, 300},
	}
	entries := make([]core.Entry, len(amounts))
	for i, a := range amounts {
		entries[i], err = ledger.Record(ctx, 100, food.ID, a.occurredAt, a.cents)
		if err != nil {
			t.Fatalf("Record(%d) error = %v", a.cents, err)
		}
	}

	total, err := aggregator.Total(ctx, 100, core.EntryFilter{})
	if err != nil {
		t.Fatalf("Total() error = %v", err)
	}
	if total != 2000 {
		t.Errorf("Total() = %d, want 2000", total)
	}

	if _, err := ledger.SoftDelete(ctx, 100, entries[1].ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}
	total, err = aggregator.Total(ctx, 100, core.EntryFilter{})
	if err != nil {
		t.Fatalf("Total() after delete error = %v", err)
	}
	if total != 800 {
		t.Errorf("Total() after delete = %d, want 800", total)
	}

	breakdown, err := aggregator.BreakdownByCategory(ctx, 100, core.EntryFilter{})
	if err != nil {
		t.Fatalf("BreakdownByCategory() error = %v", err)
	}
	if breakdown.TotalCents != 800 {
		t.Errorf("BreakdownByCategory() total = %d, want 800", breakdown.TotalCents)
	}
	if len(breakdown.Rows) != 1 {
		t.Fatalf("BreakdownByCategory() rows = %d, want 1", len(breakdown.Rows))
	}
	if breakdown.Rows[0].Category.Name != "Food" || breakdown.Rows[0].TotalCents != 800 || breakdown.Rows[0].Count != 2 {
		t.Errorf("BreakdownByCategory() row = %+v, want Food/800/2", breakdown.Rows[0])
	}

	// Deleting again changes nothing.
	already, err := ledger.SoftDelete(ctx, 100, entries[1].ID)
	if err != nil {
		t.Fatalf("SoftDelete() repeat error = %v", err)
	}
	if !already {
		t.Error("SoftDelete() repeat did not report already deleted")
	}
	total, err = aggregator.Total(ctx, 100, core.EntryFilter{})
	if err != nil {
		t.Fatalf("Total() after repeat delete error = %v", err)
	}
	if total != 800 {
		t.Errorf("Total() after repeat delete = %d, want 800", total)
	}
}

func TestAggregatorEmptyConversation(t *testing.T) {
	ctx := context.Background()
	aggregator := NewAggregatorService(storage.NewMemoryStore())

	total, err := aggregator.Total(ctx, 100, core.EntryFilter{})
	if err != nil {
		t.Fatalf("Total() error = %v", err)
	}
	if total != 0 {
		t.Errorf("Total() = %d, want 0", total)
	}

	breakdown, err := aggregator.BreakdownByCategory(ctx, 100, core.EntryFilter{})
	if err != nil {
		t.Fatalf("BreakdownByCategory() error = %v", err)
	}
	if len(breakdown.Rows) != 0 || breakdown.TotalCents != 0 {
		t.Errorf("BreakdownByCategory() = %+v, want empty", breakdown)
	}
}

func TestAggregatorBreakdownOrdering(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	ledger := NewLedgerService(mem, nil)
	aggregator := NewAggregatorService(mem)

	// "unused" stays out of the breakdown entirely.
	cats := map[string]core.Category{}
	for _, tc := range []struct{ alias, name string }{
		{"rent", "Rent"}, {"food", "Food"}, {"bar", "Bar"}, {"unused", "Unused"},
	} {
		c, err := mem.CreateCategory(ctx, 100, tc.alias, tc.name)
		if err != nil {
			t.Fatalf("CreateCategory(%s) error = %v", tc.alias, err)
		}
		cats[tc.alias] = c
	}

	for _, rec := range []struct {
		alias string
		cents int64
	}{
		{"rent", 9000},
		{"food", 300},
		{"food", 200},
		{"bar", 500}, // Ties with food's 500; alias order decides.
	} {
		if _, err := ledger.Record(ctx, 100, cats[rec.alias].ID, 10, rec.cents); err != nil {
			t.Fatalf("Record(%s) error = %v", rec.alias, err)
		}
	}

	breakdown, err := aggregator.BreakdownByCategory(ctx, 100, core.EntryFilter{})
	if err != nil {
		t.Fatalf("BreakdownByCategory() error = %v", err)
	}

	wantAliases := []string{"rent", "bar", "food"}
	if len(breakdown.Rows) != len(wantAliases) {
		t.Fatalf("BreakdownByCategory() rows = %d, want %d", len(breakdown.Rows), len(wantAliases))
	}
	for i, want := range wantAliases {
		if breakdown.Rows[i].Category.Alias != want {
			t.Errorf("BreakdownByCategory() row %d alias = %q, want %q", i, breakdown.Rows[i].Category.Alias, want)
		}
	}
	if breakdown.TotalCents != 10000 {
		t.Errorf("BreakdownByCategory() total = %d, want 10000", breakdown.TotalCents)
	}
}

func TestAggregatorWindow(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	cat, err := mem.CreateCategory(ctx, 100, "food", "Food")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	ledger := NewLedgerService(mem, nil)
	aggregator := NewAggregatorService(mem)

	for _, rec := range []struct{ ts, cents int64 }{
		{10, 100}, {20, 200}, {30, 400},
	} {
		if _, err := ledger.Record(ctx, 100, cat.ID, rec.ts, rec.cents); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	from, to := int64(10), int64(30)
	filter := core.EntryFilter{From: &from, To: &to}
	total, err := aggregator.Total(ctx, 100, filter)
	if err != nil {
		t.Fatalf("Total() error = %v", err)
	}
	// ts 10 is in, ts 30 is out.
	if total != 300 {
		t.Errorf("Total(window) = %d, want 300", total)
	}

	// The total over a window is exactly the sum of what List returns for it.
	listed, err := ledger.List(ctx, 100, filter)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var sum int64
	for _, e := range listed {
		sum += e.AmountCents
	}
	if sum != total {
		t.Errorf("List() sums to %d, Total() = %d", sum, total)
	}
}

func TestAggregatorOverflow(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	cat, err := mem.CreateCategory(ctx, 100, "food", "Food")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	ledger := NewLedgerService(mem, nil)
	aggregator := NewAggregatorService(mem)

	if _, err := ledger.Record(ctx, 100, cat.ID, 10, math.MaxInt64); err != nil {
		t.Fatalf("Record(max) error = %v", err)
	}
	if _, err := ledger.Record(ctx, 100, cat.ID, 20, 1); err != nil {
		t.Fatalf("Record(1) error = %v", err)
	}

	if _, err := aggregator.Total(ctx, 100, core.EntryFilter{}); !errors.Is(err, core.ErrAggregationOverflow) {
		t.Errorf("Total() overflow error = %v, want ErrAggregationOverflow", err)
	}
	if _, err := aggregator.BreakdownByCategory(ctx, 100, core.EntryFilter{}); !errors.Is(err, core.ErrAggregationOverflow) {
		t.Errorf("BreakdownByCategory() overflow error = %v, want ErrAggregationOverflow", err)
	}
}
