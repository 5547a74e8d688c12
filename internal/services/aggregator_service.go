package services

import (
	"context"
	"fmt"
	"sort"

	"centesimi/internal/core"
	"centesimi/internal/storage"
)

// AggregatorService computes totals over live entries. All arithmetic is
// checked 64-bit cents; an overflowing sum returns ErrAggregationOverflow
// instead of a wrapped-around number.
type AggregatorService struct {
	store storage.Store
}

func NewAggregatorService(store storage.Store) *AggregatorService {
	return &AggregatorService{store: store}
}

// Total sums the live entries of the conversation matching the filter.
// An empty conversation totals zero.
func (s *AggregatorService) Total(ctx context.Context, conversationID int64, filter core.EntryFilter) (int64, error) {
	entries, err := withReadRetry(ctx, func(ctx context.Context) ([]core.Entry, error) {
		return s.store.ListEntries(ctx, conversationID, filter)
	})
	if err != nil {
		return 0, err
	}

	var total int64
	for _, e := range entries {
		total, err = core.AddCents(total, e.AmountCents)
		if err != nil {
			return 0, fmt.Errorf("total for conversation %d: %w", conversationID, err)
		}
	}
	return total, nil
}

// BreakdownByCategory groups the live entries of the conversation by
// category. Categories without a matching entry are left out. Rows come back
// biggest spender first, alias as the tiebreak.
func (s *AggregatorService) BreakdownByCategory(ctx context.Context, conversationID int64, filter core.EntryFilter) (core.Breakdown, error) {
	entries, err := withReadRetry(ctx, func(ctx context.Context) ([]core.Entry, error) {
		return s.store.ListEntries(ctx, conversationID, filter)
	})
	if err != nil {
		return core.Breakdown{}, err
	}

	categories, err := withReadRetry(ctx, func(ctx context.Context) ([]core.Category, error) {
		return s.store.ListCategories(ctx, conversationID)
	})
	if err != nil {
		return core.Breakdown{}, err
	}
	byID := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	totals := make(map[int64]*core.CategoryTotal)
	for _, e := range entries {
		row, ok := totals[e.CategoryID]
		if !ok {
			row = &core.CategoryTotal{Category: byID[e.CategoryID]}
			totals[e.CategoryID] = row
		}
		row.TotalCents, err = core.AddCents(row.TotalCents, e.AmountCents)
		if err != nil {
			return core.Breakdown{}, fmt.Errorf("breakdown for conversation %d: %w", conversationID, err)
		}
		row.Count++
	}

	breakdown := core.Breakdown{ConversationID: conversationID}
	for _, row := range totals {
		breakdown.Rows = append(breakdown.Rows, *row)
		breakdown.TotalCents, err = core.AddCents(breakdown.TotalCents, row.TotalCents)
		if err != nil {
			return core.Breakdown{}, fmt.Errorf("breakdown for conversation %d: %w", conversationID, err)
		}
	}
	sort.Slice(breakdown.Rows, func(i, j int) bool {
		if breakdown.Rows[i].TotalCents != breakdown.Rows[j].TotalCents {
			return breakdown.Rows[i].TotalCents > breakdown.Rows[j].TotalCents
		}
		return breakdown.Rows[i].Category.Alias < breakdown.Rows[j].Category.Alias
	})

	return breakdown, nil
}
