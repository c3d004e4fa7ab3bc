package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sadaqat12/snapconnect/internal/domain"
	"github.com/sadaqat12/snapconnect/internal/repositories"
	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
	"github.com/sadaqat12/snapconnect/pkg/logger"
)

const table = "content_items"

var columns = []string{
	"id", "kind", "scope_id", "creator_id", "audience", "body", "media_path",
	"viewed_by", "saved_by", "read_by", "created_at", "expires_at", "status",
	"version", "finalized_at",
}

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger.WithComponent("ContentRepo"),
	}
}

var _ Repository = (*PgxRepository)(nil)

func (r *PgxRepository) Create(ctx context.Context, item domain.ContentItem) (*domain.ContentItem, error) {
	if item.Version == 0 {
		item.Version = 1
	}
	if item.Status == "" {
		item.Status = domain.StatusActive
	}

	query, args, err := repositories.SqBuilder.
		Insert(table).
		Columns(
			"id", "kind", "scope_id", "creator_id", "audience", "body", "media_path",
			"viewed_by", "saved_by", "read_by", "created_at", "expires_at", "status", "version",
		).
		Values(
			item.ID, string(item.Kind), item.ScopeID, item.CreatorID, nonNil(item.Audience), item.Body, item.MediaPath,
			nonNil(item.ViewedBy), nonNil(item.SavedBy), nonNil(item.ReadBy), item.CreatedAt, item.ExpiresAt,
			string(item.Status), item.Version,
		).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	if _, err = r.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == repositories.UniqueViolation {
				return nil, ErrAlreadyExists
			}
			return nil, errors.Join(ErrCannotCreate, err)
		}
		return nil, apperrors.Transient(err, "create content item")
	}

	return item.Clone(), nil
}

func (r *PgxRepository) Get(ctx context.Context, id string) (*domain.ContentItem, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": id, "status": string(domain.StatusActive)}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperrors.Transient(err, "get content item")
	}
	return item, nil
}

func (r *PgxRepository) ListActiveByScope(ctx context.Context, scopeID string) ([]*domain.ContentItem, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"scope_id": scopeID, "status": string(domain.StatusActive)}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	return r.queryItems(ctx, "list scope items", query, args...)
}

func (r *PgxRepository) AddToSet(ctx context.Context, id string, field domain.SetField, userID string) (*domain.ContentItem, bool, error) {
	if !field.Valid() {
		return nil, false, repositories.ErrBadQuery
	}
	col := string(field)

	// One statement: append only if absent, only for audience members, only
	// while active. Concurrent callers serialize on the row lock.
	query, args, err := repositories.SqBuilder.
		Update(table).
		Set(col, sq.Expr("array_append("+col+", ?)", userID)).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": id, "status": string(domain.StatusActive)}).
		Where(sq.Expr("? = ANY(audience)", userID)).
		Where(sq.Expr("NOT (? = ANY("+col+"))", userID)).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, false, repositories.ErrBadQuery
	}

	return r.applySetMutation(ctx, id, userID, query, args, "add to "+col)
}

func (r *PgxRepository) RemoveFromSet(ctx context.Context, id string, field domain.SetField, userID string) (*domain.ContentItem, bool, error) {
	if !field.Valid() {
		return nil, false, repositories.ErrBadQuery
	}
	col := string(field)

	query, args, err := repositories.SqBuilder.
		Update(table).
		Set(col, sq.Expr("array_remove("+col+", ?)", userID)).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": id, "status": string(domain.StatusActive)}).
		Where(sq.Expr("? = ANY("+col+")", userID)).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, false, repositories.ErrBadQuery
	}

	return r.applySetMutation(ctx, id, userID, query, args, "remove from "+col)
}

// applySetMutation runs a guarded UPDATE. When it matches nothing the row is
// re-read to tell "gone", "not allowed" and "already applied" apart.
func (r *PgxRepository) applySetMutation(ctx context.Context, id, userID, query string, args []any, op string) (*domain.ContentItem, bool, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if err == nil {
		return item, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, apperrors.Transient(err, op)
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !current.InAudience(userID) {
		return nil, false, ErrNotInAudience
	}
	return current, false, nil
}

func (r *PgxRepository) Finalize(ctx context.Context, id string, guard FinalizeGuard) (*domain.FinalizedItem, error) {
	now := guard.Now
	if now.IsZero() {
		now = time.Now()
	}

	builder := repositories.SqBuilder.
		Update(table).
		Set("status", string(domain.StatusExpired)).
		Set("finalized_at", now).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": id, "status": string(domain.StatusActive)})
	if guard.Unsaved {
		builder = builder.Where(sq.Expr("cardinality(saved_by) = 0"))
	}
	if guard.ExpiredBy != nil {
		builder = builder.Where(sq.LtOrEq{"expires_at": *guard.ExpiredBy})
	}

	query, args, err := builder.
		Suffix("RETURNING id, kind, scope_id, creator_id, media_path, version, finalized_at").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var (
		out  domain.FinalizedItem
		kind string
	)
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&out.ID, &kind, &out.ScopeID, &out.CreatorID, &out.MediaPath, &out.Version, &out.FinalizedAt,
	)
	if err == nil {
		out.Kind = domain.ContentKind(kind)
		return &out, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.Transient(err, "finalize content item")
	}

	// Either someone else finalized it or the guard no longer holds.
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrFinalizeRejected
}

func (r *PgxRepository) SweepCandidates(ctx context.Context, now time.Time, limit int) ([]*domain.ContentItem, error) {
	builder := repositories.SqBuilder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"status": string(domain.StatusActive)}).
		Where(sq.Or{
			sq.LtOrEq{"expires_at": now},
			sq.And{
				sq.NotEq{"kind": string(domain.KindStoryEntry)},
				sq.Expr("cardinality(saved_by) = 0"),
				sq.Expr("cardinality(viewed_by) > 0"),
				sq.Expr("array_remove(audience, creator_id) <@ viewed_by"),
			},
		}).
		OrderBy("created_at ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	return r.queryItems(ctx, "sweep candidates", query, args...)
}

func (r *PgxRepository) MediaReferenced(ctx context.Context, path string, excludingID string) (bool, error) {
	if path == "" {
		return false, nil
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM content_items
			WHERE media_path = $1 AND status = $2 AND id <> $3
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, path, string(domain.StatusActive), excludingID).Scan(&exists); err != nil {
		return false, apperrors.Transient(err, "check media references")
	}
	return exists, nil
}

func (r *PgxRepository) PurgeTombstones(ctx context.Context, olderThan time.Duration) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Delete(table).
		Where(sq.Eq{"status": string(domain.StatusExpired)}).
		Where(sq.Lt{"finalized_at": time.Now().Add(-olderThan)}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, apperrors.Transient(err, "purge content tombstones")
	}
	return result.RowsAffected(), nil
}

func (r *PgxRepository) queryItems(ctx context.Context, op string, query string, args ...any) ([]*domain.ContentItem, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Transient(err, op)
	}
	defer rows.Close()

	var items []*domain.ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transient(err, op)
	}

	return items, nil
}

func scanItem(row pgx.Row) (*domain.ContentItem, error) {
	var (
		item         domain.ContentItem
		kind, status string
	)
	err := row.Scan(
		&item.ID,
		&kind,
		&item.ScopeID,
		&item.CreatorID,
		&item.Audience,
		&item.Body,
		&item.MediaPath,
		&item.ViewedBy,
		&item.SavedBy,
		&item.ReadBy,
		&item.CreatedAt,
		&item.ExpiresAt,
		&status,
		&item.Version,
		&item.FinalizedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Kind = domain.ContentKind(kind)
	item.Status = domain.Status(status)
	return &item, nil
}

func joinColumns() string {
	return strings.Join(columns, ", ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
