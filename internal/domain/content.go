package domain

import (
	"path"
	"slices"
	"strings"
	"time"
)

type ContentKind string

const (
	KindSnap        ContentKind = "snap"
	KindChatMessage ContentKind = "chat_message"
	KindStoryEntry  ContentKind = "story_entry"
)

func (k ContentKind) Valid() bool {
	switch k {
	case KindSnap, KindChatMessage, KindStoryEntry:
		return true
	}
	return false
}

type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

// SetField names one of the per-user sets on a content item.
type SetField string

const (
	FieldViewedBy SetField = "viewed_by"
	FieldSavedBy  SetField = "saved_by"
	FieldReadBy   SetField = "read_by"
)

func (f SetField) Valid() bool {
	switch f {
	case FieldViewedBy, FieldSavedBy, FieldReadBy:
		return true
	}
	return false
}

// ContentItem is a snap, chat message or story entry.
//
// Audience is resolved from the scope when the item is created and never
// changes afterwards. ViewedBy only grows. SavedBy is toggled per user.
type ContentItem struct {
	ID        string      `json:"id"`
	Kind      ContentKind `json:"kind"`
	ScopeID   string      `json:"scopeId"`
	CreatorID string      `json:"creatorId"`
	Audience  []string    `json:"audience"`
	Body      string      `json:"body,omitempty"`
	MediaPath string      `json:"mediaPath,omitempty"`
	ViewedBy  []string    `json:"viewedBy"`
	SavedBy   []string    `json:"savedBy"`
	ReadBy    []string    `json:"readBy"`
	CreatedAt time.Time   `json:"createdAt"`
	ExpiresAt *time.Time  `json:"expiresAt,omitempty"`
	Status    Status      `json:"status"`
	Version   int64       `json:"version"`

	FinalizedAt *time.Time `json:"finalizedAt,omitempty"`
}

func (c *ContentItem) IsActive() bool {
	return c.Status == StatusActive
}

func (c *ContentItem) InAudience(userID string) bool {
	return slices.Contains(c.Audience, userID)
}

func (c *ContentItem) HasViewed(userID string) bool {
	return slices.Contains(c.ViewedBy, userID)
}

func (c *ContentItem) HasSaved(userID string) bool {
	return slices.Contains(c.SavedBy, userID)
}

func (c *ContentItem) IsSaved() bool {
	return len(c.SavedBy) > 0
}

// Set returns the member list backing field.
func (c *ContentItem) Set(field SetField) []string {
	switch field {
	case FieldViewedBy:
		return c.ViewedBy
	case FieldSavedBy:
		return c.SavedBy
	case FieldReadBy:
		return c.ReadBy
	}
	return nil
}

// Clone returns a deep copy so callers never share slices with a store.
func (c *ContentItem) Clone() *ContentItem {
	if c == nil {
		return nil
	}
	out := *c
	out.Audience = slices.Clone(c.Audience)
	out.ViewedBy = slices.Clone(c.ViewedBy)
	out.SavedBy = slices.Clone(c.SavedBy)
	out.ReadBy = slices.Clone(c.ReadBy)
	if c.ExpiresAt != nil {
		t := *c.ExpiresAt
		out.ExpiresAt = &t
	}
	if c.FinalizedAt != nil {
		t := *c.FinalizedAt
		out.FinalizedAt = &t
	}
	return &out
}

// FinalizedItem is what remains relevant once an item has been expired.
type FinalizedItem struct {
	ID          string
	Kind        ContentKind
	ScopeID     string
	CreatorID   string
	MediaPath   string
	Version     int64
	FinalizedAt time.Time
}

// MediaOwnedBy reports whether p is a clean relative path inside the
// creator's media namespace, "<creatorID>/...". Only such blobs may be
// attached to, and later deleted for, the creator's content.
func MediaOwnedBy(p, creatorID string) bool {
	if p == "" || creatorID == "" || strings.ContainsAny(creatorID, "/\\") || creatorID == "." || creatorID == ".." {
		return false
	}
	if path.IsAbs(p) || path.Clean(p) != p || strings.Contains(p, "\\") {
		return false
	}
	rest, ok := strings.CutPrefix(p, creatorID+"/")
	return ok && rest != ""
}
