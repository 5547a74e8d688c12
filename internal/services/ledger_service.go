package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"centesimi/internal/core"
	"centesimi/internal/storage"
)

// EventPublisher pushes ledger events to the message stream. Implementations
// must not be required for the ledger to work; publishing is best effort.
type EventPublisher interface {
	PublishEntryRecorded(ctx context.Context, entry core.Entry, category core.Category) error
	PublishEntryDeleted(ctx context.Context, entry core.Entry, category core.Category) error
}

// LedgerService records and removes spendings. Writes go to the store first;
// events go out afterwards and never fail the operation.
type LedgerService struct {
	store  storage.Store
	events EventPublisher
}

func NewLedgerService(store storage.Store, events EventPublisher) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
	}
}

// Record appends a spending of amountCents against the category at
// occurredAt (unix seconds). The category must belong to the conversation;
// amounts are whole cents and must not be negative. Zero is allowed.
func (s *LedgerService) Record(ctx context.Context, conversationID, categoryID, occurredAt, amountCents int64) (core.Entry, error) {
	if amountCents < 0 {
		return core.Entry{}, fmt.Errorf("amount %d: %w", amountCents, core.ErrInvalidAmount)
	}

	category, err := withReadRetry(ctx, func(ctx context.Context) (core.Category, error) {
		return s.store.GetCategoryByID(ctx, categoryID)
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Entry{}, fmt.Errorf("category %d: %w", categoryID, core.ErrInvalidCategory)
		}
		return core.Entry{}, err
	}
	if category.ConversationID != conversationID {
		return core.Entry{}, fmt.Errorf("category %d: %w", categoryID, core.ErrInvalidCategory)
	}

	entry := core.Entry{
		CategoryID:  categoryID,
		OccurredAt:  occurredAt,
		AmountCents: amountCents,
	}
	if err := entry.Validate(); err != nil {
		return core.Entry{}, err
	}

	entry, err = s.store.InsertEntry(ctx, entry)
	if err != nil {
		return core.Entry{}, fmt.Errorf("record entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry recorded",
		"conversation_id", conversationID, "entry_id", entry.ID,
		"category_id", categoryID, "amount_cents", amountCents)

	if err := s.publishRecorded(ctx, entry, category); err != nil {
		slog.ErrorContext(ctx, "Failed to publish recorded event",
			"entry_id", entry.ID, "error", err)
		// Don't fail the request - the entry is stored.
	}

	return entry, nil
}

// SoftDelete flags the entry as deleted. Deleting twice is not an error; the
// bool tells callers the entry was already gone so they can say so.
func (s *LedgerService) SoftDelete(ctx context.Context, conversationID, entryID int64) (bool, error) {
	alreadyDeleted, err := s.store.SoftDeleteEntry(ctx, conversationID, entryID)
	if err != nil {
		return false, fmt.Errorf("soft delete entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry deleted",
		"conversation_id", conversationID, "entry_id", entryID,
		"already_deleted", alreadyDeleted)

	if !alreadyDeleted {
		if err := s.publishDeleted(ctx, conversationID, entryID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish deleted event",
				"entry_id", entryID, "error", err)
			// Don't fail the request - the flag is set.
		}
	}

	return alreadyDeleted, nil
}

// RemoveLast soft deletes the most recently recorded entry of the
// conversation and returns it.
func (s *LedgerService) RemoveLast(ctx context.Context, conversationID int64) (core.Entry, error) {
	latest, err := withReadRetry(ctx, func(ctx context.Context) (core.Entry, error) {
		return s.store.LatestEntry(ctx, conversationID)
	})
	if err != nil {
		return core.Entry{}, err
	}
	if _, err := s.SoftDelete(ctx, conversationID, latest.ID); err != nil {
		return core.Entry{}, err
	}
	return latest, nil
}

// List returns the live entries of the conversation matching the filter,
// ordered by occurrence time and then by id.
func (s *LedgerService) List(ctx context.Context, conversationID int64, filter core.EntryFilter) ([]core.Entry, error) {
	return withReadRetry(ctx, func(ctx context.Context) ([]core.Entry, error) {
		return s.store.ListEntries(ctx, conversationID, filter)
	})
}

// Get returns a single entry of the conversation, deleted or not.
func (s *LedgerService) Get(ctx context.Context, conversationID, entryID int64) (core.Entry, error) {
	return withReadRetry(ctx, func(ctx context.Context) (core.Entry, error) {
		return s.store.GetEntry(ctx, conversationID, entryID)
	})
}

func (s *LedgerService) publishRecorded(ctx context.Context, entry core.Entry, category core.Category) error {
	if s.events == nil {
		return nil
	}
	return s.events.PublishEntryRecorded(ctx, entry, category)
}

func (s *LedgerService) publishDeleted(ctx context.Context, conversationID, entryID int64) error {
	if s.events == nil {
		return nil
	}
	entry, err := s.store.GetEntry(ctx, conversationID, entryID)
	if err != nil {
		return fmt.Errorf("load entry for event: %w", err)
	}
	category, err := s.store.GetCategoryByID(ctx, entry.CategoryID)
	if err != nil {
		return fmt.Errorf("load category for event: %w", err)
	}
	return s.events.PublishEntryDeleted(ctx, entry, category)
}
