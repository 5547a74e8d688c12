package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"centesimi/internal/core"
)

// MemoryStore keeps everything in process memory. It backs the "memory"
// backend and the service tests; data is gone when the process exits.
type MemoryStore struct {
	mu         sync.Mutex
	categories map[int64]core.Category
	entries    map[int64]core.Entry
	nextCatID  int64
	nextEntID  int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: make(map[int64]core.Category),
		entries:    make(map[int64]core.Entry),
		nextCatID:  1,
		nextEntID:  1,
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) CreateCategory(ctx context.Context, conversationID int64, alias, name string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.ConversationID == conversationID && c.Alias == alias {
			return core.Category{}, fmt.Errorf("create category %q: %w", alias, core.ErrAlreadyExists)
		}
	}

	c := core.Category{
		ID:             s.nextCatID,
		ConversationID: conversationID,
		Alias:          alias,
		Name:           name,
	}
	s.categories[c.ID] = c
	s.nextCatID++
	return c, nil
}

func (s *MemoryStore) GetCategoryByAlias(ctx context.Context, conversationID int64, alias string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.ConversationID == conversationID && c.Alias == alias {
			return c, nil
		}
	}
	return core.Category{}, fmt.Errorf("category %q: %w", alias, core.ErrNotFound)
}

func (s *MemoryStore) GetCategoryByID(ctx context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, fmt.Errorf("category id %d: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *MemoryStore) ListCategories(ctx context.Context, conversationID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Category
	for _, c := range s.categories {
		if c.ConversationID == conversationID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) RenameCategory(ctx context.Context, conversationID int64, alias, newName string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.categories {
		if c.ConversationID == conversationID && c.Alias == alias {
			c.Name = newName
			s.categories[id] = c
			return c, nil
		}
	}
	return core.Category{}, fmt.Errorf("category %q: %w", alias, core.ErrNotFound)
}

func (s *MemoryStore) InsertEntry(ctx context.Context, entry core.Entry) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextEntID
	entry.Deleted = false
	s.entries[entry.ID] = entry
	s.nextEntID++
	return entry, nil
}

func (s *MemoryStore) GetEntry(ctx context.Context, conversationID, entryID int64) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[entryID]
	if !ok || !s.ownedBy(e, conversationID) {
		return core.Entry{}, fmt.Errorf("entry %d: %w", entryID, core.ErrNotFound)
	}
	return e, nil
}

func (s *MemoryStore) SoftDeleteEntry(ctx context.Context, conversationID, entryID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[entryID]
	if !ok || !s.ownedBy(e, conversationID) {
		return false, fmt.Errorf("entry %d: %w", entryID, core.ErrNotFound)
	}
	if e.Deleted {
		return true, nil
	}
	e.Deleted = true
	s.entries[entryID] = e
	return false, nil
}

func (s *MemoryStore) ListEntries(ctx context.Context, conversationID int64, filter core.EntryFilter) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Entry
	for _, e := range s.entries {
		if e.Deleted || !s.ownedBy(e, conversationID) || !filter.Matches(e) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OccurredAt != out[j].OccurredAt {
			return out[i].OccurredAt < out[j].OccurredAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) LatestEntry(ctx context.Context, conversationID int64) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest core.Entry
	found := false
	for _, e := range s.entries {
		if e.Deleted || !s.ownedBy(e, conversationID) {
			continue
		}
		if !found || e.ID > latest.ID {
			latest = e
			found = true
		}
	}
	if !found {
		return core.Entry{}, fmt.Errorf("latest entry: %w", core.ErrNotFound)
	}
	return latest, nil
}

// ownedBy reports whether the entry's category belongs to the conversation.
// Callers must hold s.mu.
func (s *MemoryStore) ownedBy(e core.Entry, conversationID int64) bool {
	c, ok := s.categories[e.CategoryID]
	return ok && c.ConversationID == conversationID
}
