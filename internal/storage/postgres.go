package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"centesimi/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgConnectAttempts = 5
	pgConnectBackoff  = 2 * time.Second
	pgPingTimeout     = 5 * time.Second
)

// PostgresStore is the Store for shared deployments, backed by a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= pgConnectAttempts; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, pgPingTimeout)
			err = pool.Ping(pingCtx)
			cancel()
			if err == nil {
				break
			}
			pool.Close()
			pool = nil
		}
		if attempt < pgConnectAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(pgConnectBackoff):
			}
		}
	}
	if pool == nil {
		return nil, fmt.Errorf("connect to postgres after %d attempts: %w", pgConnectAttempts, err)
	}

	if err := RunPostgresMigrations(dsn); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) CreateCategory(ctx context.Context, conversationID int64, alias, name string) (core.Category, error) {
	c := core.Category{ConversationID: conversationID, Alias: alias, Name: name}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO categories (conversation_id, alias, name) VALUES ($1, $2, $3) RETURNING id`,
		conversationID, alias, name,
	).Scan(&c.ID)
	if err != nil {
		if isPgUniqueViolation(err) {
			return core.Category{}, fmt.Errorf("create category %q: %w", alias, core.ErrAlreadyExists)
		}
		return core.Category{}, storeFailure("create category", err)
	}
	return c, nil
}

func (s *PostgresStore) GetCategoryByAlias(ctx context.Context, conversationID int64, alias string) (core.Category, error) {
	var c core.Category
	err := s.pool.QueryRow(ctx,
		`SELECT id, conversation_id, alias, name FROM categories WHERE conversation_id = $1 AND alias = $2`,
		conversationID, alias,
	).Scan(&c.ID, &c.ConversationID, &c.Alias, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %q: %w", alias, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, storeFailure("get category by alias", err)
	}
	return c, nil
}

func (s *PostgresStore) GetCategoryByID(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := s.pool.QueryRow(ctx,
		`SELECT id, conversation_id, alias, name FROM categories WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.ConversationID, &c.Alias, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category id %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, storeFailure("get category by id", err)
	}
	return c, nil
}

func (s *PostgresStore) ListCategories(ctx context.Context, conversationID int64) ([]core.Category, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, conversation_id, alias, name FROM categories WHERE conversation_id = $1 ORDER BY id`,
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

func (s *PostgresStore) RenameCategory(ctx context.Context, conversationID int64, alias, newName string) (core.Category, error) {
	var c core.Category
	err := s.pool.QueryRow(ctx,
		`UPDATE categories SET name = $1 WHERE conversation_id = $2 AND alias = $3
		 RETURNING id, conversation_id, alias, name`,
		newName, conversationID, alias,
	).Scan(&c.ID, &c.ConversationID, &c.Alias, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %q: %w", alias, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, storeFailure("rename category", err)
	}
	return c, nil
}

func (s *PostgresStore) InsertEntry(ctx context.Context, entry core.Entry) (core.Entry, error) {
	entry.Deleted = false
	err := s.pool.QueryRow(ctx,
		`INSERT INTO entries (occurred_at, category_id, amount_cents, is_deleted) VALUES ($1, $2, $3, FALSE) RETURNING id`,
		entry.OccurredAt, entry.CategoryID, entry.AmountCents,
	).Scan(&entry.ID)
	if err != nil {
		return core.Entry{}, storeFailure("insert entry", err)
	}
	return entry, nil
}

func (s *PostgresStore) GetEntry(ctx context.Context, conversationID, entryID int64) (core.Entry, error) {
	var e core.Entry
	err := s.pool.QueryRow(ctx,
		`SELECT e.id, e.occurred_at, e.category_id, e.amount_cents, e.is_deleted
		 FROM entries e
		 JOIN categories c ON c.id = e.category_id
		 WHERE e.id = $1 AND c.conversation_id = $2`,
		entryID, conversationID,
	).Scan(&e.ID, &e.OccurredAt, &e.CategoryID, &e.AmountCents, &e.Deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Entry{}, fmt.Errorf("entry %d: %w", entryID, core.ErrNotFound)
	}
	if err != nil {
		return core.Entry{}, storeFailure("get entry", err)
	}
	return e, nil
}

func (s *PostgresStore) SoftDeleteEntry(ctx context.Context, conversationID, entryID int64) (bool, error) {
	entry, err := s.GetEntry(ctx, conversationID, entryID)
	if err != nil {
		return false, err
	}
	if entry.Deleted {
		return true, nil
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE entries SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE`,
		entryID,
	)
	if err != nil {
		return false, storeFailure("soft delete entry", err)
	}
	return tag.RowsAffected() == 0, nil
}

func (s *PostgresStore) ListEntries(ctx context.Context, conversationID int64, filter core.EntryFilter) ([]core.Entry, error) {
	query := strings.Builder{}
	query.WriteString(
		`SELECT e.id, e.occurred_at, e.category_id, e.amount_cents, e.is_deleted
		 FROM entries e
		 JOIN categories c ON c.id = e.category_id
		 WHERE c.conversation_id = $1 AND e.is_deleted = FALSE`)
	args := []any{conversationID}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		fmt.Fprintf(&query, ` AND e.category_id = $%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		fmt.Fprintf(&query, ` AND e.occurred_at >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		fmt.Fprintf(&query, ` AND e.occurred_at < $%d`, len(args))
	}
	query.WriteString(` ORDER BY e.occurred_at, e.id`)

	rows, err := s.pool.Query(ctx, query.String(), args...)
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

func (s *PostgresStore) LatestEntry(ctx context.Context, conversationID int64) (core.Entry, error) {
	var e core.Entry
	err := s.pool.QueryRow(ctx,
		`SELECT e.id, e.occurred_at, e.category_id, e.amount_cents, e.is_deleted
		 FROM entries e
		 JOIN categories c ON c.id = e.category_id
		 WHERE c.conversation_id = $1 AND e.is_deleted = FALSE
		 ORDER BY e.id DESC
		 LIMIT 1`,
		conversationID,
	).Scan(&e.ID, &e.OccurredAt, &e.CategoryID, &e.AmountCents, &e.Deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Entry{}, fmt.Errorf("latest entry: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.Entry{}, storeFailure("latest entry", err)
	}
	return e, nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
