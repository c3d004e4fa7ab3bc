package content

import (
	"context"
	"errors"
	"time"

	"github.com/sadaqat12/snapconnect/internal/domain"
	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
)

var (
	ErrNotFound         = apperrors.WrapWithCode(apperrors.ErrNotFound, "content_not_found", "content item not found")
	ErrNotInAudience    = apperrors.WrapWithCode(apperrors.ErrNotAuthorized, "not_in_audience", "user is not in the item audience")
	ErrAlreadyExists    = errors.New("content item already exists")
	ErrCannotCreate     = errors.New("error create content item")
	ErrFinalizeRejected = errors.New("finalization guard rejected")
)

// FinalizeGuard makes the active -> expired transition conditional on the
// state committed at the moment of the write, not on what the caller read.
type FinalizeGuard struct {
	// Unsaved requires savedBy to be empty. Set for the view-based rule.
	Unsaved bool
	// ExpiredBy requires expiresAt <= ExpiredBy. Set for the TTL ceiling.
	ExpiredBy *time.Time
	// Now is recorded as finalizedAt.
	Now time.Time
}

// Repository persists content items. Set mutations are single atomic
// statements; callers never read-modify-write the member lists.
type Repository interface {
	Create(ctx context.Context, item domain.ContentItem) (*domain.ContentItem, error)
	// Get returns ErrNotFound for missing and finalized items alike.
	Get(ctx context.Context, id string) (*domain.ContentItem, error)
	ListActiveByScope(ctx context.Context, scopeID string) ([]*domain.ContentItem, error)
	// AddToSet adds userID to field. The bool reports whether the set changed.
	// Users outside the stored audience get ErrNotInAudience.
	AddToSet(ctx context.Context, id string, field domain.SetField, userID string) (*domain.ContentItem, bool, error)
	RemoveFromSet(ctx context.Context, id string, field domain.SetField, userID string) (*domain.ContentItem, bool, error)
	// Finalize expires an active item if guard still holds. A second call
	// for the same item returns ErrNotFound.
	Finalize(ctx context.Context, id string, guard FinalizeGuard) (*domain.FinalizedItem, error)
	// SweepCandidates returns active items that are past their ceiling or
	// whose views look complete.
	SweepCandidates(ctx context.Context, now time.Time, limit int) ([]*domain.ContentItem, error)
	// MediaReferenced reports whether any other active item uses path.
	MediaReferenced(ctx context.Context, path string, excludingID string) (bool, error)
	PurgeTombstones(ctx context.Context, olderThan time.Duration) (int64, error)
}
