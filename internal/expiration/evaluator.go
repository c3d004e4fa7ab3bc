// Package expiration decides when ephemeral content may be finalized.
//
// Everything here is pure: callers pass the freshest state they could read
// and act on the returned decision themselves.
package expiration

import (
	"slices"
	"time"

	"github.com/sadaqat12/snapconnect/internal/domain"
)

type Reason string

const (
	// ReasonViewed: every required viewer has seen the item and nobody saved it.
	ReasonViewed Reason = "viewed"
	// ReasonCeiling: the absolute expiresAt has passed.
	ReasonCeiling Reason = "ceiling"
	// ReasonSaved: views are complete but a saver blocks the view rule.
	ReasonSaved Reason = "saved"
	// ReasonPending: required viewers are still missing.
	ReasonPending Reason = "pending"
	// ReasonStory: story entries only expire at their ceiling.
	ReasonStory Reason = "story"
	// ReasonInactive: already finalized.
	ReasonInactive Reason = "inactive"
)

type Decision struct {
	Eligible bool
	Reason   Reason
}

// RequiredViewers returns who must view item before the view rule applies.
// The creator is never required, for snaps and chat messages alike.
func RequiredViewers(item *domain.ContentItem) []string {
	if item.Kind == domain.KindStoryEntry {
		return nil
	}
	required := make([]string, 0, len(item.Audience))
	for _, member := range item.Audience {
		if member == item.CreatorID {
			continue
		}
		if slices.Contains(required, member) {
			continue
		}
		required = append(required, member)
	}
	return required
}

// IsEligible applies the view-based rule only. readBy is never consulted.
func IsEligible(item *domain.ContentItem) bool {
	if item == nil || !item.IsActive() {
		return false
	}
	if item.Kind == domain.KindStoryEntry {
		return false
	}
	if item.IsSaved() {
		return false
	}
	return viewsComplete(item)
}

func viewsComplete(item *domain.ContentItem) bool {
	required := RequiredViewers(item)
	if len(required) == 0 {
		// Degenerate audience: the sole member viewing is enough.
		return len(item.ViewedBy) > 0
	}
	for _, member := range required {
		if !slices.Contains(item.ViewedBy, member) {
			return false
		}
	}
	return true
}

// CeilingReached reports whether the absolute TTL has elapsed. The ceiling
// applies whether or not anybody saved the item.
func CeilingReached(item *domain.ContentItem, now time.Time) bool {
	if item == nil || item.ExpiresAt == nil {
		return false
	}
	return !now.Before(*item.ExpiresAt)
}

// Evaluate combines the ceiling and the view rule into a single decision.
func Evaluate(item *domain.ContentItem, now time.Time) Decision {
	switch {
	case item == nil || !item.IsActive():
		return Decision{Reason: ReasonInactive}
	case CeilingReached(item, now):
		return Decision{Eligible: true, Reason: ReasonCeiling}
	case item.Kind == domain.KindStoryEntry:
		return Decision{Reason: ReasonStory}
	case !viewsComplete(item):
		return Decision{Reason: ReasonPending}
	case item.IsSaved():
		return Decision{Reason: ReasonSaved}
	default:
		return Decision{Eligible: true, Reason: ReasonViewed}
	}
}
