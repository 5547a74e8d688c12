package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"

	"centesimi/internal/core"
	"centesimi/internal/storage"
)

// racingStore simulates another caller inserting the alias between our read
// and our insert: the first read misses even though the row is there.
type racingStore struct {
	storage.Store
	missedReads int
}

func (s *racingStore) GetCategoryByAlias(ctx context.Context, conversationID int64, alias string) (core.Category, error) {
	if s.missedReads > 0 {
		s.missedReads--
		return core.Category{}, fmt.Errorf("category %q: %w", alias, core.ErrNotFound)
	}
	return s.Store.GetCategoryByAlias(ctx, conversationID, alias)
}

// unavailableStore fails a configurable number of calls per method before
// delegating, counting every attempt.
type unavailableStore struct {
	storage.Store
	failReads   int
	readCalls   int
	failInserts int
	insertCalls int
}

func (s *unavailableStore) GetCategoryByAlias(ctx context.Context, conversationID int64, alias string) (core.Category, error) {
	s.readCalls++
	if s.failReads > 0 {
		s.failReads--
		return core.Category{}, fmt.Errorf("get category: %w", core.ErrStoreUnavailable)
	}
	return s.Store.GetCategoryByAlias(ctx, conversationID, alias)
}

func (s *unavailableStore) InsertEntry(ctx context.Context, entry core.Entry) (core.Entry, error) {
	s.insertCalls++
	if s.failInserts > 0 {
		s.failInserts--
		return core.Entry{}, fmt.Errorf("insert entry: %w", core.ErrStoreUnavailable)
	}
	return s.Store.InsertEntry(ctx, entry)
}

func TestRegistryResolveOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when absent", func(t *testing.T) {
		registry := NewRegistryService(storage.NewMemoryStore())

		cat, created, err := registry.ResolveOrCreate(ctx, 100, "Food", "")
		if err != nil {
			t.Fatalf("ResolveOrCreate() error = %v", err)
		}
		if !created {
			t.Error("ResolveOrCreate() created = false, want true")
		}
		if cat.Alias != "food" {
			t.Errorf("ResolveOrCreate() alias = %q, want normalized %q", cat.Alias, "food")
		}
		if cat.Name != "Food" {
			t.Errorf("ResolveOrCreate() name = %q, want default %q", cat.Name, "Food")
		}
	})

	t.Run("resolves when present", func(t *testing.T) {
		registry := NewRegistryService(storage.NewMemoryStore())

		first, _, err := registry.ResolveOrCreate(ctx, 100, "food", "Food")
		if err != nil {
			t.Fatalf("ResolveOrCreate() error = %v", err)
		}
		second, created, err := registry.ResolveOrCreate(ctx, 100, "FOOD", "Ignored")
		if err != nil {
			t.Fatalf("ResolveOrCreate() repeat error = %v", err)
		}
		if created {
			t.Error("ResolveOrCreate() repeat created = true, want false")
		}
		if second.ID != first.ID {
			t.Errorf("ResolveOrCreate() repeat ID = %d, want %d", second.ID, first.ID)
		}
		if second.Name != "Food" {
			t.Errorf("ResolveOrCreate() repeat name = %q, existing name must win", second.Name)
		}
	})

	t.Run("lost insert race yields winner", func(t *testing.T) {
		mem := storage.NewMemoryStore()
		winner, err := mem.CreateCategory(ctx, 100, "food", "Food")
		if err != nil {
			t.Fatalf("CreateCategory() error = %v", err)
		}

		registry := NewRegistryService(&racingStore{Store: mem, missedReads: 1})
		cat, created, err := registry.ResolveOrCreate(ctx, 100, "food", "Loser")
		if err != nil {
			t.Fatalf("ResolveOrCreate() error = %v", err)
		}
		if created {
			t.Error("ResolveOrCreate() created = true after losing the race")
		}
		if cat.ID != winner.ID || cat.Name != "Food" {
			t.Errorf("ResolveOrCreate() = %+v, want winner %+v", cat, winner)
		}
	})

	t.Run("concurrent callers converge", func(t *testing.T) {
		registry := NewRegistryService(storage.NewMemoryStore())

		const callers = 8
		got := make([]core.Category, callers)
		var g errgroup.Group
		for i := 0; i < callers; i++ {
			g.Go(func() error {
				cat, _, err := registry.ResolveOrCreate(ctx, 100, "food", "Food")
				if err != nil {
					return err
				}
				got[i] = cat
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("ResolveOrCreate() concurrent error = %v", err)
		}
		for i := 1; i < callers; i++ {
			if got[i].ID != got[0].ID {
				t.Fatalf("ResolveOrCreate() caller %d got ID %d, caller 0 got %d", i, got[i].ID, got[0].ID)
			}
		}

		all, err := registry.List(ctx, 100)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(all) != 1 {
			t.Errorf("List() len = %d, want exactly 1 category", len(all))
		}
	})

	t.Run("rejects bad alias", func(t *testing.T) {
		registry := NewRegistryService(storage.NewMemoryStore())

		if _, _, err := registry.ResolveOrCreate(ctx, 100, "   ", "Food"); !errors.Is(err, core.ErrEmptyAlias) {
			t.Errorf("ResolveOrCreate() blank alias error = %v, want ErrEmptyAlias", err)
		}
	})
}

func TestRegistryFind(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistryService(storage.NewMemoryStore())

	if _, err := registry.Find(ctx, 100, "food"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Find() missing error = %v, want ErrNotFound", err)
	}

	created, _, err := registry.ResolveOrCreate(ctx, 100, "food", "Food")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	found, err := registry.Find(ctx, 100, " FOOD ")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("Find() ID = %d, want %d", found.ID, created.ID)
	}
}

func TestRegistryRename(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistryService(storage.NewMemoryStore())

	if _, err := registry.Rename(ctx, 100, "food", "Meals"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Rename() missing error = %v, want ErrNotFound", err)
	}

	created, _, err := registry.ResolveOrCreate(ctx, 100, "food", "Food")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	renamed, err := registry.Rename(ctx, 100, "food", "Meals")
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if renamed.ID != created.ID || renamed.Alias != "food" || renamed.Name != "Meals" {
		t.Errorf("Rename() = %+v, want same id and alias with name Meals", renamed)
	}
}

func TestRegistryRetriesReads(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	if _, err := mem.CreateCategory(ctx, 100, "food", "Food"); err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	flaky := &unavailableStore{Store: mem, failReads: 2}
	registry := NewRegistryService(flaky)

	found, err := registry.Find(ctx, 100, "food")
	if err != nil {
		t.Fatalf("Find() with flaky store error = %v", err)
	}
	if found.Alias != "food" {
		t.Errorf("Find() alias = %q, want food", found.Alias)
	}
	if flaky.readCalls != 3 {
		t.Errorf("Find() read attempts = %d, want 3", flaky.readCalls)
	}

	// One more failure than the retry budget surfaces the error.
	flaky = &unavailableStore{Store: mem, failReads: 3}
	registry = NewRegistryService(flaky)
	if _, err := registry.Find(ctx, 100, "food"); !errors.Is(err, core.ErrStoreUnavailable) {
		t.Errorf("Find() exhausted retries error = %v, want ErrStoreUnavailable", err)
	}
}
