package lifecycleimpl

import (
	"context"
	"errors"

	"github.com/sadaqat12/snapconnect/internal/domain"
	"github.com/sadaqat12/snapconnect/internal/expiration"
	"github.com/sadaqat12/snapconnect/internal/lifecycle"
	"github.com/sadaqat12/snapconnect/internal/realtime"
	"github.com/sadaqat12/snapconnect/internal/repositories/content"
	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
	"github.com/sadaqat12/snapconnect/pkg/retry"
)

type setMutation struct {
	item    *domain.ContentItem
	changed bool
}

func (s *Impl) addToSet(ctx context.Context, itemID string, field domain.SetField, userID string) (setMutation, error) {
	return retry.DoValue(ctx, s.Logger, "AddToSet", func() (setMutation, error) {
		item, changed, err := s.Content.AddToSet(ctx, itemID, field, userID)
		return setMutation{item: item, changed: changed}, err
	}, s.retry)
}

func (s *Impl) removeFromSet(ctx context.Context, itemID string, field domain.SetField, userID string) (setMutation, error) {
	return retry.DoValue(ctx, s.Logger, "RemoveFromSet", func() (setMutation, error) {
		item, changed, err := s.Content.RemoveFromSet(ctx, itemID, field, userID)
		return setMutation{item: item, changed: changed}, err
	}, s.retry)
}

// live re-reads an item for a user action. It returns nil for items that are
// gone or past their ceiling; the latter are queued so the next scope exit
// finalizes them without waiting for the sweep.
func (s *Impl) live(ctx context.Context, itemID, userID string) (*domain.ContentItem, error) {
	item, err := retry.DoValue(ctx, s.Logger, "GetContent", func() (*domain.ContentItem, error) {
		return s.Content.Get(ctx, itemID)
	}, s.retry)
	if errors.Is(err, content.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !item.InAudience(userID) {
		return nil, content.ErrNotInAudience
	}
	if expiration.CeilingReached(item, s.now()) {
		s.schedule(item, expiration.ReasonCeiling)
		return nil, nil
	}
	return item, nil
}

// MarkViewed records a view. It never finalizes: an item that becomes
// eligible waits for the viewer to leave the scope or for the next sweep.
func (s *Impl) MarkViewed(ctx context.Context, itemID, userID string) (lifecycle.ViewResult, error) {
	if userID == "" {
		return lifecycle.ViewResult{}, apperrors.Invalid("user is required")
	}

	current, err := s.live(ctx, itemID, userID)
	if err != nil {
		return lifecycle.ViewResult{}, err
	}
	if current == nil {
		s.Logger.Debug("View on expired item ignored", "item_id", itemID, "user_id", userID)
		return lifecycle.ViewResult{AlreadyExpired: true}, nil
	}

	res, err := s.addToSet(ctx, itemID, domain.FieldViewedBy, userID)
	if errors.Is(err, content.ErrNotFound) {
		s.Logger.Debug("View on expired item ignored", "item_id", itemID, "user_id", userID)
		return lifecycle.ViewResult{AlreadyExpired: true}, nil
	}
	if err != nil {
		return lifecycle.ViewResult{}, err
	}

	item := res.item
	if res.changed {
		s.Metrics.Views.Inc()
		s.publish(ctx, realtime.Updated(item, s.now()))

		if item.Kind == domain.KindStoryEntry {
			if _, err := s.Scopes.AddViewer(ctx, item.ScopeID, userID); err != nil {
				s.Logger.Warn("Failed to record story viewer", "scope_id", item.ScopeID, "user_id", userID, "error", err)
			}
		}
	}

	decision := expiration.Evaluate(item, s.now())
	if decision.Eligible {
		s.schedule(item, decision.Reason)
	}

	return lifecycle.ViewResult{
		Changed:  res.changed,
		Eligible: decision.Eligible,
		Item:     item,
	}, nil
}

// MarkRead records a list-view receipt. Receipts are cosmetic and never feed
// the evaluator.
func (s *Impl) MarkRead(ctx context.Context, itemID, userID string) (lifecycle.ReadResult, error) {
	if userID == "" {
		return lifecycle.ReadResult{}, apperrors.Invalid("user is required")
	}

	current, err := s.live(ctx, itemID, userID)
	if err != nil {
		return lifecycle.ReadResult{}, err
	}
	if current == nil {
		return lifecycle.ReadResult{AlreadyExpired: true}, nil
	}

	res, err := s.addToSet(ctx, itemID, domain.FieldReadBy, userID)
	if errors.Is(err, content.ErrNotFound) {
		return lifecycle.ReadResult{AlreadyExpired: true}, nil
	}
	if err != nil {
		return lifecycle.ReadResult{}, err
	}

	if res.changed {
		s.publish(ctx, realtime.Updated(res.item, s.now()))
	}
	return lifecycle.ReadResult{Changed: res.changed}, nil
}
