package realtime

import (
	"context"
	"time"

	"github.com/sadaqat12/snapconnect/internal/domain"
)

type Kind string

const (
	KindCreated   Kind = "created"
	KindUpdated   Kind = "updated"
	KindFinalized Kind = "finalized"
	// KindDropped is the last event a subscriber sees after the hub cut it
	// off for falling behind. Events may have been lost; the subscriber has
	// to resubscribe and reload the scope.
	KindDropped Kind = "dropped"
)

// Event is one state transition of a content item. Version grows with every
// effective mutation, so subscribers can drop stale or repeated updates.
type Event struct {
	Kind    Kind                `json:"kind"`
	ScopeID string              `json:"scopeId"`
	ItemID  string              `json:"itemId"`
	Version int64               `json:"version"`
	Item    *domain.ContentItem `json:"item,omitempty"`
	At      time.Time           `json:"at"`
}

func Created(item *domain.ContentItem, at time.Time) Event {
	return Event{Kind: KindCreated, ScopeID: item.ScopeID, ItemID: item.ID, Version: item.Version, Item: item, At: at}
}

func Updated(item *domain.ContentItem, at time.Time) Event {
	return Event{Kind: KindUpdated, ScopeID: item.ScopeID, ItemID: item.ID, Version: item.Version, Item: item, At: at}
}

func Finalized(item *domain.FinalizedItem) Event {
	return Event{Kind: KindFinalized, ScopeID: item.ScopeID, ItemID: item.ID, Version: item.Version, At: item.FinalizedAt}
}

func Dropped(scopeID string, at time.Time) Event {
	return Event{Kind: KindDropped, ScopeID: scopeID, At: at}
}

type Handler func(Event)

//go:generate go run go.uber.org/mock/mockgen -source=realtime.go -destination=mocks/mock.go

type Notifier interface {
	Publish(ctx context.Context, scopeID string, event Event) error
	// Subscribe registers handler for scopeID. Events reach one handler in
	// publish order. The returned func removes the subscription and waits
	// for the handler to return, so it must not be called from the handler.
	// A subscriber that falls behind is removed and gets a final
	// KindDropped event.
	Subscribe(scopeID string, handler Handler) (unsubscribe func())
}
