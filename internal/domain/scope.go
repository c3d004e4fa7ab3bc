package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ScopeKind string

const (
	// ScopeRecipients is the fixed recipient list of a direct snap.
	ScopeRecipients   ScopeKind = "recipients"
	ScopeConversation ScopeKind = "conversation"
	ScopeStory        ScopeKind = "story"
)

type ConversationKind string

const (
	ConversationDirect ConversationKind = "direct"
	ConversationGroup  ConversationKind = "group"
)

// Scope is the audience that content is shared with. Conversations, stories
// and snap recipient sets are all scopes.
type Scope struct {
	ID               string           `json:"id"`
	Kind             ScopeKind        `json:"kind"`
	ConversationKind ConversationKind `json:"conversationKind,omitempty"`
	CreatorID        string           `json:"creatorId"`
	Members          []string         `json:"members"`
	// Viewers is only maintained for stories.
	Viewers   []string   `json:"viewers,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (s *Scope) IsMember(userID string) bool {
	return slices.Contains(s.Members, userID)
}

func (s *Scope) IsActive(now time.Time) bool {
	if s.Status != StatusActive {
		return false
	}
	return s.ExpiresAt == nil || now.Before(*s.ExpiresAt)
}

func (s *Scope) Clone() *Scope {
	if s == nil {
		return nil
	}
	out := *s
	out.Members = slices.Clone(s.Members)
	out.Viewers = slices.Clone(s.Viewers)
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		out.ExpiresAt = &t
	}
	return &out
}

var recipientNamespace = uuid.MustParse("3f0c1a52-6c4e-4b7e-9a43-0f1de3a1b7c2")

// RecipientScopeID derives a stable scope id from a set of users so that all
// snaps exchanged by the same people land in one scope.
func RecipientScopeID(members []string) string {
	set := NormalizeMembers(members)
	return "snap-" + uuid.NewSHA1(recipientNamespace, []byte(strings.Join(set, "\x00"))).String()
}

// NormalizeMembers trims, drops empties and sorts a member list with
// duplicates removed.
func NormalizeMembers(members []string) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		out = append(out, m)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func NewID() string {
	return uuid.NewString()
}

// DirectConversationID gives a 1:1 conversation the same id no matter which
// participant opens it.
func DirectConversationID(a, b string) string {
	set := NormalizeMembers([]string{a, b})
	return "dm-" + uuid.NewSHA1(recipientNamespace, []byte("dm\x00"+strings.Join(set, "\x00"))).String()
}
