package scope

import (
	"context"
	"errors"
	"time"

	"github.com/sadaqat12/snapconnect/internal/domain"
	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
)

var (
	ErrNotFound      = apperrors.WrapWithCode(apperrors.ErrNotFound, "scope_not_found", "scope not found")
	ErrAlreadyExists = errors.New("scope already exists")
	ErrCannotCreate  = errors.New("error create scope")
)

type Repository interface {
	Create(ctx context.Context, scope domain.Scope) (*domain.Scope, error)
	// Upsert inserts scope unless a scope with the same id exists and
	// returns whichever row is stored.
	Upsert(ctx context.Context, scope domain.Scope) (*domain.Scope, error)
	// Get returns ErrNotFound for missing and expired scopes.
	Get(ctx context.Context, id string) (*domain.Scope, error)
	// AddViewer records a story viewer. Non-members are ignored.
	AddViewer(ctx context.Context, id string, userID string) (bool, error)
	ActiveStoryFor(ctx context.Context, creatorID string, now time.Time) (*domain.Scope, error)
	// ExpireStories marks stories past their ceiling as expired and returns
	// their ids.
	ExpireStories(ctx context.Context, now time.Time) ([]string, error)
	PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
