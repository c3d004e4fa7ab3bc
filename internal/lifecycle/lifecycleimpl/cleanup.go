package lifecycleimpl

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sadaqat12/snapconnect/internal/domain"
	"github.com/sadaqat12/snapconnect/internal/expiration"
	"github.com/sadaqat12/snapconnect/internal/lifecycle"
	"github.com/sadaqat12/snapconnect/internal/realtime"
	"github.com/sadaqat12/snapconnect/internal/repositories/content"
	"github.com/sadaqat12/snapconnect/internal/repositories/scope"
	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
	"github.com/sadaqat12/snapconnect/pkg/retry"
)

const (
	triggerScopeExit = "scope_exit"
	triggerSweep     = "sweep"
)

type outcome int

const (
	outcomeFinalized outcome = iota
	// outcomeGone: someone else finalized first.
	outcomeGone
	// outcomeBlocked: the guard failed, usually a save that landed after
	// the decision was made.
	outcomeBlocked
)

func (s *Impl) schedule(item *domain.ContentItem, reason expiration.Reason) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	if _, ok := s.pending[item.ID]; !ok {
		s.Logger.Debug("Item eligible, waiting for scope exit", "item_id", item.ID, "reason", reason)
	}
	s.pending[item.ID] = pendingItem{scopeID: item.ScopeID, reason: reason}
	s.Metrics.PendingFinalization.Set(float64(len(s.pending)))
}

func (s *Impl) unschedule(itemID string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	if _, ok := s.pending[itemID]; !ok {
		return
	}
	delete(s.pending, itemID)
	s.Metrics.PendingFinalization.Set(float64(len(s.pending)))
}

// prunePending forgets pending items that were finalized outside this
// process. Lookups that fail keep their entry for the next pass.
func (s *Impl) prunePending(ctx context.Context) int {
	s.pendingMu.Lock()
	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	s.pendingMu.Unlock()

	pruned := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.Content.Get(ctx, id); errors.Is(err, content.ErrNotFound) {
			s.unschedule(id)
			pruned++
		}
	}
	return pruned
}

// Pending reports whether itemID is waiting for finalization.
func (s *Impl) Pending(itemID string) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	_, ok := s.pending[itemID]
	return ok
}

// LeaveScope evaluates every active item of the scope against freshly read
// state and finalizes the eligible ones.
func (s *Impl) LeaveScope(ctx context.Context, scopeID, userID string) (lifecycle.CleanupResult, error) {
	var result lifecycle.CleanupResult

	if _, err := s.AuthorizeScope(ctx, scopeID, userID); err != nil {
		if errors.Is(err, scope.ErrNotFound) {
			return result, nil
		}
		return result, err
	}

	items, err := retry.DoValue(ctx, s.Logger, "ListScope", func() ([]*domain.ContentItem, error) {
		return s.Content.ListActiveByScope(ctx, scopeID)
	}, s.retry)
	if err != nil {
		return result, err
	}

	now := s.now()
	for _, item := range items {
		result.Evaluated++

		decision := expiration.Evaluate(item, now)
		if !decision.Eligible {
			if decision.Reason == expiration.ReasonSaved {
				result.Blocked++
			}
			continue
		}

		switch out, err := s.finalize(ctx, item, decision.Reason, triggerScopeExit); {
		case err != nil:
			result.Failed++
			s.Logger.Error("Failed to finalize item on scope exit", "item_id", item.ID, "scope_id", scopeID, "error", err)
		case out == outcomeFinalized:
			result.Finalized++
		case out == outcomeBlocked:
			result.Blocked++
		}
	}

	s.Logger.Info("Scope exit processed",
		"scope_id", scopeID, "user_id", userID,
		"evaluated", result.Evaluated, "finalized", result.Finalized, "blocked", result.Blocked)
	return result, nil
}

// Sweep finalizes everything eligible across all scopes and expires stories
// past their ceiling. It covers clients that never signalled a scope exit.
func (s *Impl) Sweep(ctx context.Context) (lifecycle.CleanupResult, error) {
	started := time.Now()
	defer func() {
		s.Metrics.SweepDuration.Observe(time.Since(started).Seconds())
	}()

	var result lifecycle.CleanupResult
	batch := s.Config.Lifecycle.SweepBatch
	if batch <= 0 {
		batch = 500
	}

	for {
		now := s.now()
		candidates, err := retry.DoValue(ctx, s.Logger, "SweepCandidates", func() ([]*domain.ContentItem, error) {
			return s.Content.SweepCandidates(ctx, now, batch)
		}, s.retry)
		if err != nil {
			return result, err
		}

		pass := s.finalizeBatch(ctx, candidates, now)
		result.Evaluated += pass.Evaluated
		result.Finalized += pass.Finalized
		result.Blocked += pass.Blocked
		result.Failed += pass.Failed

		// A full batch may hide more candidates; stop once a pass makes no
		// progress so failing items cannot spin the loop.
		if len(candidates) < batch || pass.Finalized == 0 {
			break
		}
	}

	storyIDs, err := retry.DoValue(ctx, s.Logger, "ExpireStories", func() ([]string, error) {
		return s.Scopes.ExpireStories(ctx, s.now())
	}, s.retry)
	if err != nil {
		s.Logger.Error("Failed to expire stories", "error", err)
	}
	result.StoriesExpired = len(storyIDs)

	pruned := s.prunePending(ctx)

	s.Logger.Info("Sweep completed",
		"evaluated", result.Evaluated,
		"finalized", result.Finalized,
		"blocked", result.Blocked,
		"failed", result.Failed,
		"stories_expired", result.StoriesExpired,
		"pending_pruned", pruned,
		"duration", time.Since(started).Round(time.Millisecond).String(),
	)
	return result, nil
}

func (s *Impl) finalizeBatch(ctx context.Context, items []*domain.ContentItem, now time.Time) lifecycle.CleanupResult {
	var (
		wg                                    sync.WaitGroup
		evaluated, finalized, blocked, failed atomic.Int64
	)

	workers := s.Config.Lifecycle.SweepWorkers
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers, ants.WithPreAlloc(true))
	if err != nil {
		s.Logger.Error("Failed to create sweep pool", "error", err)
		return lifecycle.CleanupResult{Failed: len(items)}
	}
	defer pool.Release()

	for _, item := range items {
		itemToProcess := item
		wg.Add(1)

		err := pool.Submit(func() {
			defer wg.Done()
			evaluated.Add(1)

			decision := expiration.Evaluate(itemToProcess, now)
			if !decision.Eligible {
				if decision.Reason == expiration.ReasonSaved {
					blocked.Add(1)
				}
				return
			}

			out, err := s.finalize(ctx, itemToProcess, decision.Reason, triggerSweep)
			switch {
			case err != nil:
				failed.Add(1)
				s.Logger.Error("Failed to finalize item during sweep", "item_id", itemToProcess.ID, "error", err)
			case out == outcomeFinalized:
				finalized.Add(1)
			case out == outcomeBlocked:
				blocked.Add(1)
			}
		})
		if err != nil {
			wg.Done()
			failed.Add(1)
			s.Logger.Error("Failed to submit finalization to ants pool", "item_id", itemToProcess.ID, "error", err)
		}
	}
	wg.Wait()

	return lifecycle.CleanupResult{
		Evaluated: int(evaluated.Load()),
		Finalized: int(finalized.Load()),
		Blocked:   int(blocked.Load()),
		Failed:    int(failed.Load()),
	}
}

// finalize performs the active -> expired transition and its cascade. The
// transition is conditional on committed state: the view rule requires
// savedBy to still be empty, the ceiling rule requires expiresAt to have
// passed. Losing a race to another finalizer counts as success.
func (s *Impl) finalize(ctx context.Context, item *domain.ContentItem, reason expiration.Reason, trigger string) (outcome, error) {
	now := s.now()
	guard := content.FinalizeGuard{Now: now}
	switch reason {
	case expiration.ReasonCeiling:
		guard.ExpiredBy = &now
	default:
		guard.Unsaved = true
	}

	finalized, err := retry.DoValue(ctx, s.Logger, "FinalizeContent", func() (*domain.FinalizedItem, error) {
		return s.Content.Finalize(ctx, item.ID, guard)
	}, s.retry)
	switch {
	case errors.Is(err, content.ErrNotFound):
		s.unschedule(item.ID)
		s.Logger.Debug("Item already finalized", "item_id", item.ID, "trigger", trigger)
		return outcomeGone, nil
	case errors.Is(err, content.ErrFinalizeRejected):
		s.Metrics.FinalizeBlocked.Inc()
		s.Logger.Info("Finalization blocked by committed state", "item_id", item.ID, "reason", reason)
		return outcomeBlocked, nil
	case err != nil:
		return 0, err
	}

	s.unschedule(item.ID)
	s.Metrics.Finalized.WithLabelValues(string(reason), trigger).Inc()

	// The item is gone either way; a media failure only leaves a blob behind.
	if err := s.releaseMedia(ctx, finalized); apperrors.IsPartialFinalization(err) {
		s.Metrics.MediaDeleteFailures.Inc()
		s.Logger.Error("Partial finalization, media left behind",
			"item_id", finalized.ID, "media_path", finalized.MediaPath, "code", apperrors.GetCode(err), "error", err)
	}

	s.publish(ctx, realtime.Finalized(finalized))

	s.Logger.Info("Content finalized",
		"item_id", finalized.ID, "kind", finalized.Kind, "scope_id", finalized.ScopeID,
		"reason", reason, "trigger", trigger)
	return outcomeFinalized, nil
}

// releaseMedia deletes the blob of a finalized item unless another active
// item still points at it.
func (s *Impl) releaseMedia(ctx context.Context, item *domain.FinalizedItem) error {
	if item.MediaPath == "" {
		return nil
	}
	if !domain.MediaOwnedBy(item.MediaPath, item.CreatorID) {
		s.Logger.Warn("Media outside the creator's namespace, keeping blob",
			"item_id", item.ID, "creator_id", item.CreatorID, "media_path", item.MediaPath)
		return nil
	}

	shared, err := retry.DoValue(ctx, s.Logger, "MediaReferenced", func() (bool, error) {
		return s.Content.MediaReferenced(ctx, item.MediaPath, item.ID)
	}, s.retry)
	if err != nil {
		return apperrors.WrapWithCode(errors.Join(apperrors.ErrPartialFinalization, err), "media_check_failed", "check media references")
	}
	if shared {
		s.Logger.Debug("Media still referenced, keeping blob", "item_id", item.ID, "media_path", item.MediaPath)
		return nil
	}

	err = retry.Do(ctx, s.Logger, "DeleteBlob", func() error {
		return s.Media.DeleteBlob(ctx, item.MediaPath)
	}, s.retry)
	if err != nil {
		return apperrors.WrapWithCode(errors.Join(apperrors.ErrPartialFinalization, err), "media_delete_failed", "delete media blob")
	}
	return nil
}
