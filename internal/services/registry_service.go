package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode"
	"unicode/utf8"

	"centesimi/internal/core"
	"centesimi/internal/storage"
)

// RegistryService manages the per-conversation category catalog.
type RegistryService struct {
	store storage.Store
}

func NewRegistryService(store storage.Store) *RegistryService {
	return &RegistryService{store: store}
}

// ResolveOrCreate returns the category registered under alias for the
// conversation, creating it when absent. The bool reports whether this call
// created it. Two concurrent calls for the same alias both succeed and both
// end up with the single row that won the insert.
func (s *RegistryService) ResolveOrCreate(ctx context.Context, conversationID int64, alias, name string) (core.Category, bool, error) {
	alias = core.NormalizeAlias(alias)
	if err := core.ValidateAlias(alias); err != nil {
		return core.Category{}, false, err
	}
	if name == "" {
		name = defaultCategoryName(alias)
	}
	if err := core.ValidateName(name); err != nil {
		return core.Category{}, false, err
	}

	existing, err := withReadRetry(ctx, func(ctx context.Context) (core.Category, error) {
		return s.store.GetCategoryByAlias(ctx, conversationID, alias)
	})
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.Category{}, false, err
	}

	created, err := s.store.CreateCategory(ctx, conversationID, alias, name)
	if err == nil {
		slog.InfoContext(ctx, "Category created",
			"conversation_id", conversationID, "category_id", created.ID, "alias", alias)
		return created, true, nil
	}
	if !errors.Is(err, core.ErrAlreadyExists) {
		return core.Category{}, false, err
	}

	// Lost the insert race: another caller registered the alias between our
	// read and our insert. Their row is the category now.
	winner, err := withReadRetry(ctx, func(ctx context.Context) (core.Category, error) {
		return s.store.GetCategoryByAlias(ctx, conversationID, alias)
	})
	if err != nil {
		return core.Category{}, false, fmt.Errorf("resolve category %q after conflict: %w", alias, err)
	}
	return winner, false, nil
}

// Find returns the category registered under alias, or ErrNotFound.
func (s *RegistryService) Find(ctx context.Context, conversationID int64, alias string) (core.Category, error) {
	alias = core.NormalizeAlias(alias)
	if err := core.ValidateAlias(alias); err != nil {
		return core.Category{}, err
	}
	return withReadRetry(ctx, func(ctx context.Context) (core.Category, error) {
		return s.store.GetCategoryByAlias(ctx, conversationID, alias)
	})
}

// List returns every category of the conversation in creation order.
func (s *RegistryService) List(ctx context.Context, conversationID int64) ([]core.Category, error) {
	return withReadRetry(ctx, func(ctx context.Context) ([]core.Category, error) {
		return s.store.ListCategories(ctx, conversationID)
	})
}

// Rename updates the display name of an existing category. The alias is
// permanent; recorded entries keep pointing at the same category.
func (s *RegistryService) Rename(ctx context.Context, conversationID int64, alias, newName string) (core.Category, error) {
	alias = core.NormalizeAlias(alias)
	if err := core.ValidateAlias(alias); err != nil {
		return core.Category{}, err
	}
	if err := core.ValidateName(newName); err != nil {
		return core.Category{}, err
	}

	renamed, err := s.store.RenameCategory(ctx, conversationID, alias, newName)
	if err != nil {
		return core.Category{}, err
	}
	slog.InfoContext(ctx, "Category renamed",
		"conversation_id", conversationID, "category_id", renamed.ID, "alias", alias)
	return renamed, nil
}

func defaultCategoryName(alias string) string {
	r, size := utf8.DecodeRuneInString(alias)
	if r == utf8.RuneError {
		return alias
	}
	return string(unicode.ToUpper(r)) + alias[size:]
}
