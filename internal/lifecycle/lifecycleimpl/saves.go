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
)

// ToggleSaved flips the caller's save flag. Any saver blocks the view rule.
// Unsaving never finalizes by itself; the item is only queued for the next
// scope exit or sweep.
func (s *Impl) ToggleSaved(ctx context.Context, itemID, userID string) (lifecycle.SaveResult, error) {
	if userID == "" {
		return lifecycle.SaveResult{}, apperrors.Invalid("user is required")
	}

	current, err := s.live(ctx, itemID, userID)
	if err != nil {
		return lifecycle.SaveResult{}, err
	}
	if current == nil {
		return lifecycle.SaveResult{AlreadyExpired: true}, nil
	}

	var res setMutation
	if current.HasSaved(userID) {
		res, err = s.removeFromSet(ctx, itemID, domain.FieldSavedBy, userID)
	} else {
		res, err = s.addToSet(ctx, itemID, domain.FieldSavedBy, userID)
	}
	if errors.Is(err, content.ErrNotFound) {
		return lifecycle.SaveResult{AlreadyExpired: true}, nil
	}
	if err != nil {
		return lifecycle.SaveResult{}, err
	}

	item := res.item
	saved := item.HasSaved(userID)
	if res.changed {
		state := "unsaved"
		if saved {
			state = "saved"
		}
		s.Metrics.SaveToggles.WithLabelValues(state).Inc()
		s.publish(ctx, realtime.Updated(item, s.now()))
	}

	if decision := expiration.Evaluate(item, s.now()); decision.Eligible {
		s.schedule(item, decision.Reason)
	} else {
		s.unschedule(item.ID)
	}

	return lifecycle.SaveResult{Saved: saved, Item: item}, nil
}
