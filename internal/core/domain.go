package core

import (
	"errors"
	"strings"
)

type (
	// Category is a per-conversation spending bucket. The (ConversationID,
	// Alias) pair is unique for all time; Alias never changes once set, only
	// Name may be renamed.
	Category struct {
		ID             int64
		ConversationID int64
		Alias          string
		Name           string
	}

	// Entry is a single recorded expense. Conversation scoping flows
	// exclusively through CategoryID; the entry carries no conversation of
	// its own. Once recorded, the only mutation ever applied is flipping
	// Deleted; corrections are a delete plus a new entry.
	Entry struct {
		ID          int64
		CategoryID  int64
		OccurredAt  int64 // unix seconds; when the expense happened
		AmountCents int64
		Deleted     bool
	}

	// EntryFilter narrows listing and aggregation. From/To form a half-open
	// window [From, To); a nil bound is unbounded on that side.
	EntryFilter struct {
		CategoryID *int64
		From       *int64
		To         *int64
	}
)

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCategory     = errors.New("category does not belong to conversation")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrAggregationOverflow = errors.New("aggregation overflow")
	ErrEmptyAlias          = errors.New("empty alias")
	ErrEmptyName           = errors.New("empty name")
)

const (
	maxAliasLen = 64
	maxNameLen  = 200
)

// NormalizeAlias canonicalizes an alias for lookup and storage: surrounding
// whitespace dropped, lowercased. Aliases are case-insensitive handles.
func NormalizeAlias(alias string) string {
	return strings.ToLower(strings.TrimSpace(alias))
}

// ValidateAlias checks a normalized alias.
func ValidateAlias(alias string) error {
	if alias == "" {
		return ErrEmptyAlias
	}
	if len(alias) > maxAliasLen {
		return errors.New("alias too long (max 64 characters)")
	}
	for _, r := range alias {
		if r == ' ' || r == '\t' || r == '\n' {
			return errors.New("alias cannot contain whitespace")
		}
	}
	return nil
}

// ValidateName checks a category display name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLen {
		return errors.New("name too long (max 200 characters)")
	}
	return nil
}

// Validate checks an entry before it is persisted. Zero amounts are legal,
// negative ones are not: corrections are made by deleting and re-adding,
// never by recording a negative amount.
func (e Entry) Validate() error {
	if e.AmountCents < 0 {
		return ErrInvalidAmount
	}
	if e.CategoryID <= 0 {
		return ErrInvalidCategory
	}
	return nil
}

// Matches reports whether the entry falls inside the filter's category and
// half-open time window. Deletion is not part of the filter: callers decide
// whether deleted entries are visible.
func (f EntryFilter) Matches(e Entry) bool {
	if f.CategoryID != nil && e.CategoryID != *f.CategoryID {
		return false
	}
	if f.From != nil && e.OccurredAt < *f.From {
		return false
	}
	if f.To != nil && e.OccurredAt >= *f.To {
		return false
	}
	return true
}
