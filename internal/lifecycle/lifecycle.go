// Package lifecycle is the entry point for everything that creates, views,
// saves or expires ephemeral content.
package lifecycle

import (
	"context"

	"github.com/sadaqat12/snapconnect/internal/domain"
	"github.com/sadaqat12/snapconnect/internal/realtime"
	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
)

var ErrNotMember = apperrors.WrapWithCode(apperrors.ErrNotAuthorized, "not_a_member", "user is not a member of the scope")

// SendRequest describes new content. Which fields apply depends on Kind:
// snaps go to RecipientIDs, chat messages to ConversationID, and story
// entries to the creator's active story (RecipientIDs picks the audience of
// a story that does not exist yet).
type SendRequest struct {
	Kind           domain.ContentKind
	CreatorID      string
	RecipientIDs   []string
	ConversationID string
	Body           string
	MediaPath      string
}

type ViewResult struct {
	// AlreadyExpired means the item was finalized before the call.
	AlreadyExpired bool
	// Changed is true on the first view by this user.
	Changed bool
	// Eligible means the item now waits for a scope exit or sweep.
	Eligible bool
	Item     *domain.ContentItem
}

type SaveResult struct {
	AlreadyExpired bool
	// Saved is the new state for the calling user.
	Saved bool
	Item  *domain.ContentItem
}

type ReadResult struct {
	AlreadyExpired bool
	Changed        bool
}

// CleanupResult counts what a scope exit or sweep did.
type CleanupResult struct {
	Evaluated      int `json:"evaluated"`
	Finalized      int `json:"finalized"`
	Blocked        int `json:"blocked"`
	Failed         int `json:"failed"`
	StoriesExpired int `json:"storiesExpired,omitempty"`
}

//go:generate go run go.uber.org/mock/mockgen -source=lifecycle.go -destination=mocks/mock.go

type Service interface {
	Send(ctx context.Context, req SendRequest) (*domain.ContentItem, error)
	PostStory(ctx context.Context, creatorID string, audience []string, mediaPath, body string) (*domain.ContentItem, error)
	OpenConversation(ctx context.Context, creatorID string, participants []string) (*domain.Scope, error)

	MarkViewed(ctx context.Context, itemID, userID string) (ViewResult, error)
	ToggleSaved(ctx context.Context, itemID, userID string) (SaveResult, error)
	MarkRead(ctx context.Context, itemID, userID string) (ReadResult, error)

	LeaveScope(ctx context.Context, scopeID, userID string) (CleanupResult, error)
	Sweep(ctx context.Context) (CleanupResult, error)

	ListScope(ctx context.Context, scopeID, userID string) ([]*domain.ContentItem, error)
	SubscribeToScope(ctx context.Context, scopeID, userID string, handler realtime.Handler) (unsubscribe func(), err error)
	// AuthorizeScope returns the scope if userID is a member.
	AuthorizeScope(ctx context.Context, scopeID, userID string) (*domain.Scope, error)

	ScheduleSweep(ctx context.Context) error
	SchedulePurge(ctx context.Context) error
}
