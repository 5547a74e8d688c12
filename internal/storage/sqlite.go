package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"centesimi/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the default Store backed by a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows a single writer; one pooled connection keeps concurrent
	// handlers from tripping over the file lock.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, conversationID int64, alias, name string) (core.Category, error) {
	c := core.Category{ConversationID: conversationID, Alias: alias, Name: name}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO categories (conversation_id, alias, name) VALUES (?, ?, ?) RETURNING id`,
		conversationID, alias, name,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, fmt.Errorf("create category %q: %w", alias, core.ErrAlreadyExists)
		}
		return core.Category{}, storeFailure("create category", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetCategoryByAlias(ctx context.Context, conversationID int64, alias string) (core.Category, error) {
	var c core.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, conversation_id, alias, name FROM categories WHERE conversation_id = ? AND alias = ?`,
		conversationID, alias,
	).Scan(&c.ID, &c.ConversationID, &c.Alias, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %q: %w", alias, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, storeFailure("get category by alias", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetCategoryByID(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, conversation_id, alias, name FROM categories WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.ConversationID, &c.Alias, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category id %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, storeFailure("get category by id", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context, conversationID int64) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, alias, name FROM categories WHERE conversation_id = ? ORDER BY id`,
		conversationID,
	)
	if err != nil {
		return nil, storeFailure("list categories", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.ConversationID, &c.Alias, &c.Name); err != nil {
			return nil, storeFailure("scan category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("list categories", err)
	}
	return out, nil
}

func (s *SQLiteStore) RenameCategory(ctx context.Context, conversationID int64, alias, newName string) (core.Category, error) {
	var c core.Category
	err := s.db.QueryRowContext(ctx,
		`UPDATE categories SET name = ? WHERE conversation_id = ? AND alias = ?
		 RETURNING id, conversation_id, alias, name`,
		newName, conversationID, alias,
	).Scan(&c.ID, &c.ConversationID, &c.Alias, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %q: %w", alias, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, storeFailure("rename category", err)
	}
	return c, nil
}

func (s *SQLiteStore) InsertEntry(ctx context.Context, entry core.Entry) (core.Entry, error) {
	entry.Deleted = false
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO entries (occurred_at, category_id, amount_cents, is_deleted) VALUES (?, ?, ?, 0) RETURNING id`,
		entry.OccurredAt, entry.CategoryID, entry.AmountCents,
	).Scan(&entry.ID)
	if err != nil {
		return core.Entry{}, storeFailure("insert entry", err)
	}
	return entry, nil
}

func (s *SQLiteStore) GetEntry(ctx context.Context, conversationID, entryID int64) (core.Entry, error) {
	var e core.Entry
	err := s.db.QueryRowContext(ctx,
		`SELECT e.id, e.occurred_at, e.category_id, e.amount_cents, e.is_deleted
		 FROM entries e
		 JOIN categories c ON c.id = e.category_id
		 WHERE e.id = ? AND c.conversation_id = ?`,
		entryID, conversationID,
	).Scan(&e.ID, &e.OccurredAt, &e.CategoryID, &e.AmountCents, &e.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, fmt.Errorf("entry %d: %w", entryID, core.ErrNotFound)
	}
	if err != nil {
		return core.Entry{}, storeFailure("get entry", err)
	}
	return e, nil
}

func (s *SQLiteStore) SoftDeleteEntry(ctx context.Context, conversationID, entryID int64) (bool, error) {
	entry, err := s.GetEntry(ctx, conversationID, entryID)
	if err != nil {
		return false, err
	}
	if entry.Deleted {
		return true, nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE entries SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`,
		entryID,
	)
	if err != nil {
		return false, storeFailure("soft delete entry", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeFailure("soft delete entry", err)
	}
	// Zero rows means a concurrent delete won; either way the entry is gone.
	return affected == 0, nil
}

func (s *SQLiteStore) ListEntries(ctx context.Context, conversationID int64, filter core.EntryFilter) ([]core.Entry, error) {
	query := strings.Builder{}
	query.WriteString(
		`SELECT e.id, e.occurred_at, e.category_id, e.amount_cents, e.is_deleted
		 FROM entries e
		 JOIN categories c ON c.id = e.category_id
		 WHERE c.conversation_id = ? AND e.is_deleted = 0`)
	args := []any{conversationID}

	if filter.CategoryID != nil {
		query.WriteString(` AND e.category_id = ?`)
		args = append(args, *filter.CategoryID)
	}
	if filter.From != nil {
		query.WriteString(` AND e.occurred_at >= ?`)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query.WriteString(` AND e.occurred_at < ?`)
		args = append(args, *filter.To)
	}
	query.WriteString(` ORDER BY e.occurred_at, e.id`)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, storeFailure("list entries", err)
	}
	defer rows.Close()

	var out []core.Entry
	for rows.Next() {
		var e core.Entry
		if err := rows.Scan(&e.ID, &e.OccurredAt, &e.CategoryID, &e.AmountCents, &e.Deleted); err != nil {
			return nil, storeFailure("scan entry", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("list entries", err)
	}
	return out, nil
}

func (s *SQLiteStore) LatestEntry(ctx context.Context, conversationID int64) (core.Entry, error) {
	var e core.Entry
	err := s.db.QueryRowContext(ctx,
		`SELECT e.id, e.occurred_at, e.category_id, e.amount_cents, e.is_deleted
		 FROM entries e
		 JOIN categories c ON c.id = e.category_id
		 WHERE c.conversation_id = ? AND e.is_deleted = 0
		 ORDER BY e.id DESC
		 LIMIT 1`,
		conversationID,
	).Scan(&e.ID, &e.OccurredAt, &e.CategoryID, &e.AmountCents, &e.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, fmt.Errorf("latest entry: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.Entry{}, storeFailure("latest entry", err)
	}
	return e, nil
}

// isUniqueViolation detects the duplicate-key signal from the sqlite driver.
// The engine reports constraint names in the message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func storeFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, core.ErrStoreUnavailable, err)
}
