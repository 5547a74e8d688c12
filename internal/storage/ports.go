package storage

import (
	"context"

	"centesimi/internal/core"
)

// Store is the single persistence port for the ledger. Implementations map
// their engine's duplicate-key and no-rows signals onto core.ErrAlreadyExists
// and core.ErrNotFound; any other storage failure wraps
// core.ErrStoreUnavailable.
//
// Conversation scoping is part of every contract here: an entry is reachable
// only through a category of the given conversation, so no call can leak or
// touch another conversation's rows.
type Store interface {
	// CreateCategory inserts a category; core.ErrAlreadyExists when the
	// (conversation, alias) pair is taken. The winning row is not returned;
	// callers re-read, which is the race resolution.
	CreateCategory(ctx context.Context, conversationID int64, alias, name string) (core.Category, error)
	// GetCategoryByAlias returns the category or core.ErrNotFound.
	GetCategoryByAlias(ctx context.Context, conversationID int64, alias string) (core.Category, error)
	// GetCategoryByID is unscoped; callers compare ConversationID themselves.
	GetCategoryByID(ctx context.Context, id int64) (core.Category, error)
	// ListCategories returns every category of the conversation in id order.
	ListCategories(ctx context.Context, conversationID int64) ([]core.Category, error)
	// RenameCategory updates the display name only; core.ErrNotFound when
	// the alias is absent in the conversation.
	RenameCategory(ctx context.Context, conversationID int64, alias, newName string) (core.Category, error)

	// InsertEntry persists a new non-deleted entry and returns it with its
	// assigned id.
	InsertEntry(ctx context.Context, entry core.Entry) (core.Entry, error)
	// GetEntry returns the entry (deleted or not) if it belongs to the
	// conversation, core.ErrNotFound otherwise.
	GetEntry(ctx context.Context, conversationID, entryID int64) (core.Entry, error)
	// SoftDeleteEntry marks the entry deleted. Idempotent: deleting an
	// already-deleted entry succeeds with alreadyDeleted=true. Entries
	// outside the conversation are core.ErrNotFound.
	SoftDeleteEntry(ctx context.Context, conversationID, entryID int64) (alreadyDeleted bool, err error)
	// ListEntries returns non-deleted entries matching the filter, ordered
	// by occurred_at ascending then id ascending.
	ListEntries(ctx context.Context, conversationID int64, filter core.EntryFilter) ([]core.Entry, error)
	// LatestEntry returns the most recently recorded (highest id)
	// non-deleted entry, or core.ErrNotFound.
	LatestEntry(ctx context.Context, conversationID int64) (core.Entry, error)

	Ping(ctx context.Context) error
	Close() error
}
