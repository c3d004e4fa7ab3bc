package scope

import (
	"context"
	"errors"
	"fmt"
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

const table = "scopes"

var columns = []string{
	"id", "kind", "conversation_kind", "creator_id", "members", "viewers",
	"expires_at", "status", "created_at",
}

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger.WithComponent("ScopeRepo"),
	}
}

var _ Repository = (*PgxRepository)(nil)

func (r *PgxRepository) insert(scope domain.Scope, onConflictNothing bool) (string, []any, error) {
	if scope.Status == "" {
		scope.Status = domain.StatusActive
	}
	var conversationKind *string
	if scope.ConversationKind != "" {
		k := string(scope.ConversationKind)
		conversationKind = &k
	}
	members := scope.Members
	if members == nil {
		members = []string{}
	}

	builder := repositories.SqBuilder.
		Insert(table).
		Columns("id", "kind", "conversation_kind", "creator_id", "members", "expires_at", "status", "created_at").
		Values(scope.ID, string(scope.Kind), conversationKind, scope.CreatorID, members, scope.ExpiresAt,
			string(scope.Status), scope.CreatedAt)
	if onConflictNothing {
		builder = builder.Suffix("ON CONFLICT (id) DO NOTHING")
	}
	return builder.ToSql()
}

func (r *PgxRepository) Create(ctx context.Context, scope domain.Scope) (*domain.Scope, error) {
	query, args, err := r.insert(scope, false)
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == repositories.UniqueViolation {
				return nil, ErrAlreadyExists
			}
			return nil, errors.Join(ErrCannotCreate, err)
		}
		return nil, apperrors.Transient(err, "create scope")
	}

	return r.Get(ctx, scope.ID)
}

func (r *PgxRepository) Upsert(ctx context.Context, scope domain.Scope) (*domain.Scope, error) {
	query, args, err := r.insert(scope, true)
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return nil, apperrors.Transient(err, "upsert scope")
	}

	return r.Get(ctx, scope.ID)
}

func (r *PgxRepository) Get(ctx context.Context, id string) (*domain.Scope, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": id, "status": string(domain.StatusActive)}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	scope, err := scanScope(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperrors.Transient(err, "get scope")
	}
	return scope, nil
}

func (r *PgxRepository) AddViewer(ctx context.Context, id string, userID string) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Update(table).
		Set("viewers", sq.Expr("array_append(viewers, ?)", userID)).
		Where(sq.Eq{"id": id, "status": string(domain.StatusActive)}).
		Where(sq.Expr("? = ANY(members)", userID)).
		Where(sq.Expr("NOT (? = ANY(viewers))", userID)).
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, apperrors.Transient(err, "add story viewer")
	}
	return result.RowsAffected() > 0, nil
}

func (r *PgxRepository) ActiveStoryFor(ctx context.Context, creatorID string, now time.Time) (*domain.Scope, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From(table).
		Where(sq.Eq{
			"kind":       string(domain.ScopeStory),
			"creator_id": creatorID,
			"status":     string(domain.StatusActive),
		}).
		Where(sq.Gt{"expires_at": now}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	scope, err := scanScope(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperrors.Transient(err, "get active story")
	}
	return scope, nil
}

func (r *PgxRepository) ExpireStories(ctx context.Context, now time.Time) ([]string, error) {
	query, args, err := repositories.SqBuilder.
		Update(table).
		Set("status", string(domain.StatusExpired)).
		Where(sq.Eq{"kind": string(domain.ScopeStory), "status": string(domain.StatusActive)}).
		Where(sq.LtOrEq{"expires_at": now}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Transient(err, "expire stories")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expired story id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Transient(err, "expire stories")
	}
	return ids, nil
}

// PurgeExpired deletes expired stories that no longer own any content row.
func (r *PgxRepository) PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		DELETE FROM scopes s
		WHERE s.status = $1
		  AND s.expires_at < $2
		  AND NOT EXISTS (SELECT 1 FROM content_items c WHERE c.scope_id = s.id)
	`

	result, err := r.pool.Exec(ctx, query, string(domain.StatusExpired), time.Now().Add(-olderThan))
	if err != nil {
		return 0, apperrors.Transient(err, "purge expired scopes")
	}
	return result.RowsAffected(), nil
}

func scanScope(row pgx.Row) (*domain.Scope, error) {
	var (
		scope            domain.Scope
		kind, status     string
		conversationKind *string
	)
	err := row.Scan(
		&scope.ID,
		&kind,
		&conversationKind,
		&scope.CreatorID,
		&scope.Members,
		&scope.Viewers,
		&scope.ExpiresAt,
		&status,
		&scope.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	scope.Kind = domain.ScopeKind(kind)
	scope.Status = domain.Status(status)
	if conversationKind != nil {
		scope.ConversationKind = domain.ConversationKind(*conversationKind)
	}
	return &scope, nil
}
