package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecipientScopeIDIsOrderIndependent(t *testing.T) {
	a := RecipientScopeID([]string{"alice", "bob"})
	b := RecipientScopeID([]string{" bob", "alice", "alice"})
	c := RecipientScopeID([]string{"alice", "carol"})

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Contains(t, a, "snap-")
}

func TestNormalizeMembers(t *testing.T) {
	require.Equal(t, []string{"a", "b", "c"}, NormalizeMembers([]string{"c", " a", "", "b", "a"}))
	require.Empty(t, NormalizeMembers(nil))
}

func TestScopeIsActive(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	s := &Scope{Status: StatusActive}
	require.True(t, s.IsActive(now))

	s.ExpiresAt = &past
	require.False(t, s.IsActive(now))

	s.ExpiresAt = nil
	s.Status = StatusExpired
	require.False(t, s.IsActive(now))
}

func TestContentItemCloneIsDeep(t *testing.T) {
	exp := time.Now()
	item := &ContentItem{ViewedBy: []string{"a"}, Audience: []string{"a", "b"}, ExpiresAt: &exp}
	cp := item.Clone()
	cp.ViewedBy[0] = "z"
	*cp.ExpiresAt = exp.Add(time.Hour)

	require.Equal(t, "a", item.ViewedBy[0])
	require.Equal(t, exp, *item.ExpiresAt)
}

func TestMediaOwnedBy(t *testing.T) {
	cases := map[string]struct {
		path, creator string
		want          bool
	}{
		"own blob":         {"alice/snaps/1.jpg", "alice", true},
		"other user":       {"bob/snaps/1.jpg", "alice", false},
		"prefix lookalike": {"alice2/snaps/1.jpg", "alice", false},
		"climbs out":       {"alice/../bob/1.jpg", "alice", false},
		"absolute":         {"/alice/1.jpg", "alice", false},
		"namespace only":   {"alice/", "alice", false},
		"not cleaned":      {"alice//1.jpg", "alice", false},
		"empty creator":    {"alice/1.jpg", "", false},
		"dot-dot creator":  {"../1.jpg", "..", false},
		"backslash":        {"alice/..\\bob\\1.jpg", "alice", false},
		"unscoped shared":  {"users/C/private.jpg", "A", false},
		"nested own blob":  {"A/stories/2025/1.jpg", "A", true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, MediaOwnedBy(tc.path, tc.creator))
		})
	}
}
