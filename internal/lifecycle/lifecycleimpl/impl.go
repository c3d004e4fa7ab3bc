package lifecycleimpl

import (
	"context"
	"errors"
	"hash/fnv"
	"slices"
	"sync"
	"time"

	"github.com/sadaqat12/snapconnect/internal/domain"
	"github.com/sadaqat12/snapconnect/internal/expiration"
	"github.com/sadaqat12/snapconnect/internal/lifecycle"
	"github.com/sadaqat12/snapconnect/internal/media"
	"github.com/sadaqat12/snapconnect/internal/metrics"
	"github.com/sadaqat12/snapconnect/internal/realtime"
	"github.com/sadaqat12/snapconnect/internal/repositories/content"
	"github.com/sadaqat12/snapconnect/internal/repositories/scope"
	"github.com/sadaqat12/snapconnect/pkg/config"
	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
	"github.com/sadaqat12/snapconnect/pkg/logger"
	"github.com/sadaqat12/snapconnect/pkg/retry"
	"go.uber.org/fx"
)

const lockStripes = 64

// ErrForeignMedia rejects media outside the sender's "<userID>/" namespace.
// Finalizing an item deletes its blob, so only the creator's own blobs may
// be attached.
var ErrForeignMedia = apperrors.WrapWithCode(apperrors.ErrInvalidInput, "foreign_media", "media must live under the sender's namespace")

type Opts struct {
	fx.In

	Content  content.Repository
	Scopes   scope.Repository
	Media    media.Store
	Notifier realtime.Notifier
	Metrics  *metrics.Metrics
	Logger   logger.Logger
	Config   *config.Config
}

type pendingItem struct {
	scopeID string
	reason  expiration.Reason
}

type Impl struct {
	Content  content.Repository
	Scopes   scope.Repository
	Media    media.Store
	Notifier realtime.Notifier
	Metrics  *metrics.Metrics
	Logger   logger.Logger
	Config   *config.Config

	retry retry.Config
	now   func() time.Time

	// scopeLocks order "created" before "finalized" within a scope.
	scopeLocks [lockStripes]sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]pendingItem
}

func New(opts Opts) *Impl {
	return &Impl{
		Content:  opts.Content,
		Scopes:   opts.Scopes,
		Media:    opts.Media,
		Notifier: opts.Notifier,
		Metrics:  opts.Metrics,
		Logger:   opts.Logger.WithComponent("Lifecycle"),
		Config:   opts.Config,
		retry:    retry.DefaultConfig(),
		now:      time.Now,
		pending:  make(map[string]pendingItem),
	}
}

var _ lifecycle.Service = (*Impl)(nil)

func (s *Impl) lockScope(scopeID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(scopeID))
	mu := &s.scopeLocks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// publish delivers event under the scope lock. Delivery failures never fail
// the operation that caused them.
func (s *Impl) publish(ctx context.Context, event realtime.Event) {
	unlock := s.lockScope(event.ScopeID)
	defer unlock()

	if err := s.Notifier.Publish(ctx, event.ScopeID, event); err != nil {
		s.Logger.Warn("Failed to publish event",
			"kind", event.Kind, "scope_id", event.ScopeID, "item_id", event.ItemID, "error", err)
	}
}

func (s *Impl) Send(ctx context.Context, req lifecycle.SendRequest) (*domain.ContentItem, error) {
	if req.CreatorID == "" {
		return nil, apperrors.Invalid("creator is required")
	}
	if req.MediaPath != "" && !domain.MediaOwnedBy(req.MediaPath, req.CreatorID) {
		return nil, ErrForeignMedia
	}

	now := s.now()
	item := domain.ContentItem{
		ID:        domain.NewID(),
		Kind:      req.Kind,
		CreatorID: req.CreatorID,
		Body:      req.Body,
		MediaPath: req.MediaPath,
		CreatedAt: now,
		Status:    domain.StatusActive,
		Version:   1,
	}

	var (
		sc  *domain.Scope
		err error
	)
	switch req.Kind {
	case domain.KindSnap:
		sc, err = s.snapScope(ctx, req)
		if err == nil {
			expiresAt := now.Add(s.Config.Lifecycle.SnapTTL)
			item.ExpiresAt = &expiresAt
		}
	case domain.KindChatMessage:
		sc, err = s.conversationScope(ctx, req)
	case domain.KindStoryEntry:
		sc, err = s.storyScope(ctx, req, now)
		if err == nil {
			expiresAt := *sc.ExpiresAt
			item.ExpiresAt = &expiresAt
		}
	default:
		return nil, apperrors.Invalid("unknown content kind")
	}
	if err != nil {
		return nil, err
	}

	item.ScopeID = sc.ID
	item.Audience = domain.NormalizeMembers(sc.Members)

	unlock := s.lockScope(sc.ID)
	defer unlock()

	created, err := retry.DoValue(ctx, s.Logger, "CreateContent", func() (*domain.ContentItem, error) {
		return s.Content.Create(ctx, item)
	}, s.retry)
	if err != nil {
		return nil, err
	}

	if err := s.Notifier.Publish(ctx, created.ScopeID, realtime.Created(created, now)); err != nil {
		s.Logger.Warn("Failed to publish created event", "item_id", created.ID, "error", err)
	}
	s.Metrics.ItemsCreated.WithLabelValues(string(created.Kind)).Inc()
	s.Logger.Info("Content created",
		"item_id", created.ID, "kind", created.Kind, "scope_id", created.ScopeID, "audience", len(created.Audience))
	return created, nil
}

func (s *Impl) snapScope(ctx context.Context, req lifecycle.SendRequest) (*domain.Scope, error) {
	if req.MediaPath == "" {
		return nil, apperrors.Invalid("a snap needs media")
	}
	recipients := withoutMember(domain.NormalizeMembers(req.RecipientIDs), req.CreatorID)
	if len(recipients) == 0 {
		return nil, apperrors.Invalid("a snap needs at least one recipient")
	}

	members := domain.NormalizeMembers(append(recipients, req.CreatorID))
	return retry.DoValue(ctx, s.Logger, "UpsertRecipientScope", func() (*domain.Scope, error) {
		return s.Scopes.Upsert(ctx, domain.Scope{
			ID:        domain.RecipientScopeID(members),
			Kind:      domain.ScopeRecipients,
			CreatorID: req.CreatorID,
			Members:   members,
			CreatedAt: s.now(),
		})
	}, s.retry)
}

func (s *Impl) conversationScope(ctx context.Context, req lifecycle.SendRequest) (*domain.Scope, error) {
	if req.ConversationID == "" {
		return nil, apperrors.Invalid("conversation is required")
	}
	if req.Body == "" && req.MediaPath == "" {
		return nil, apperrors.Invalid("a message needs a body or media")
	}

	sc, err := s.AuthorizeScope(ctx, req.ConversationID, req.CreatorID)
	if err != nil {
		return nil, err
	}
	if sc.Kind != domain.ScopeConversation {
		return nil, apperrors.Invalid("messages can only be sent to conversations")
	}
	return sc, nil
}

func (s *Impl) storyScope(ctx context.Context, req lifecycle.SendRequest, now time.Time) (*domain.Scope, error) {
	if req.MediaPath == "" {
		return nil, apperrors.Invalid("a story entry needs media")
	}

	current, err := retry.DoValue(ctx, s.Logger, "ActiveStory", func() (*domain.Scope, error) {
		return s.Scopes.ActiveStoryFor(ctx, req.CreatorID, now)
	}, s.retry)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, scope.ErrNotFound) {
		return nil, err
	}

	expiresAt := now.Add(s.Config.Lifecycle.StoryTTL)
	story := domain.Scope{
		ID:        domain.NewID(),
		Kind:      domain.ScopeStory,
		CreatorID: req.CreatorID,
		Members:   domain.NormalizeMembers(append(slices.Clone(req.RecipientIDs), req.CreatorID)),
		ExpiresAt: &expiresAt,
		CreatedAt: now,
	}
	created, err := retry.DoValue(ctx, s.Logger, "CreateStory", func() (*domain.Scope, error) {
		return s.Scopes.Create(ctx, story)
	}, s.retry)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("Story started", "scope_id", created.ID, "creator_id", req.CreatorID, "expires_at", expiresAt)
	return created, nil
}

func (s *Impl) PostStory(ctx context.Context, creatorID string, audience []string, mediaPath, body string) (*domain.ContentItem, error) {
	return s.Send(ctx, lifecycle.SendRequest{
		Kind:         domain.KindStoryEntry,
		CreatorID:    creatorID,
		RecipientIDs: audience,
		MediaPath:    mediaPath,
		Body:         body,
	})
}

func (s *Impl) OpenConversation(ctx context.Context, creatorID string, participants []string) (*domain.Scope, error) {
	if creatorID == "" {
		return nil, apperrors.Invalid("creator is required")
	}
	members := domain.NormalizeMembers(append(slices.Clone(participants), creatorID))
	if len(members) < 2 {
		return nil, apperrors.Invalid("a conversation needs at least two participants")
	}

	conv := domain.Scope{
		Kind:      domain.ScopeConversation,
		CreatorID: creatorID,
		Members:   members,
		CreatedAt: s.now(),
	}
	if len(members) == 2 {
		conv.ID = domain.DirectConversationID(members[0], members[1])
		conv.ConversationKind = domain.ConversationDirect
		return retry.DoValue(ctx, s.Logger, "UpsertConversation", func() (*domain.Scope, error) {
			return s.Scopes.Upsert(ctx, conv)
		}, s.retry)
	}

	conv.ID = domain.NewID()
	conv.ConversationKind = domain.ConversationGroup
	return retry.DoValue(ctx, s.Logger, "CreateConversation", func() (*domain.Scope, error) {
		return s.Scopes.Create(ctx, conv)
	}, s.retry)
}

func (s *Impl) AuthorizeScope(ctx context.Context, scopeID, userID string) (*domain.Scope, error) {
	sc, err := retry.DoValue(ctx, s.Logger, "GetScope", func() (*domain.Scope, error) {
		return s.Scopes.Get(ctx, scopeID)
	}, s.retry)
	if err != nil {
		return nil, err
	}
	if !sc.IsMember(userID) {
		return nil, lifecycle.ErrNotMember
	}
	return sc, nil
}

func (s *Impl) ListScope(ctx context.Context, scopeID, userID string) ([]*domain.ContentItem, error) {
	if _, err := s.AuthorizeScope(ctx, scopeID, userID); err != nil {
		return nil, err
	}

	items, err := retry.DoValue(ctx, s.Logger, "ListScope", func() ([]*domain.ContentItem, error) {
		return s.Content.ListActiveByScope(ctx, scopeID)
	}, s.retry)
	if err != nil {
		return nil, err
	}

	now := s.now()
	visible := items[:0]
	for _, item := range items {
		if item.InAudience(userID) && !expiration.CeilingReached(item, now) {
			visible = append(visible, item)
		}
	}
	return visible, nil
}

func (s *Impl) SubscribeToScope(ctx context.Context, scopeID, userID string, handler realtime.Handler) (func(), error) {
	if _, err := s.AuthorizeScope(ctx, scopeID, userID); err != nil {
		return nil, err
	}
	return s.Notifier.Subscribe(scopeID, handler), nil
}

func withoutMember(members []string, userID string) []string {
	out := members[:0:0]
	for _, m := range members {
		if m != userID {
			out = append(out, m)
		}
	}
	return out
}
