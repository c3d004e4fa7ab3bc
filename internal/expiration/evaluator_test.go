package expiration

import (
	"testing"
	"time"

	"github.com/sadaqat12/snapconnect/internal/domain"
	"github.com/stretchr/testify/require"
)

func chat(sender string, participants []string, viewed, saved []string) *domain.ContentItem {
	return &domain.ContentItem{
		ID:        "m",
		Kind:      domain.KindChatMessage,
		CreatorID: sender,
		Audience:  participants,
		ViewedBy:  viewed,
		SavedBy:   saved,
		Status:    domain.StatusActive,
	}
}

func TestChatMessageEligibility(t *testing.T) {
	tests := []struct {
		name   string
		item   *domain.ContentItem
		expect bool
	}{
		{"nobody viewed", chat("A", []string{"A", "B"}, nil, nil), false},
		{"recipient viewed", chat("A", []string{"A", "B"}, []string{"B"}, nil), true},
		{"sender alone is not sufficient", chat("A", []string{"A", "B"}, []string{"A"}, nil), false},
		{"sender is not necessary", chat("A", []string{"A", "B", "C"}, []string{"B", "C"}, nil), true},
		{"group missing one", chat("A", []string{"A", "B", "C"}, []string{"B"}, nil), false},
		{"saved blocks", chat("A", []string{"A", "B"}, []string{"B"}, []string{"B"}), false},
		{"sender save blocks", chat("A", []string{"A", "B"}, []string{"B"}, []string{"A"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expect, IsEligible(tt.item))
		})
	}
}

func TestSnapEligibility(t *testing.T) {
	snap := &domain.ContentItem{
		Kind:      domain.KindSnap,
		CreatorID: "A",
		Audience:  []string{"A", "B"},
		Status:    domain.StatusActive,
	}
	require.Equal(t, []string{"B"}, RequiredViewers(snap))
	require.False(t, IsEligible(snap))

	snap.ViewedBy = []string{"A"}
	require.False(t, IsEligible(snap), "creator activity never satisfies the requirement")

	snap.ViewedBy = []string{"A", "B"}
	require.True(t, IsEligible(snap))
}

func TestDegenerateAudience(t *testing.T) {
	item := &domain.ContentItem{
		Kind:      domain.KindSnap,
		CreatorID: "A",
		Audience:  []string{"A"},
		Status:    domain.StatusActive,
	}
	require.False(t, IsEligible(item))

	item.ViewedBy = []string{"A"}
	require.True(t, IsEligible(item))
}

func TestStoryEntriesIgnoreViews(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Hour)
	entry := &domain.ContentItem{
		Kind:      domain.KindStoryEntry,
		CreatorID: "A",
		Audience:  []string{"A", "B"},
		ViewedBy:  []string{"B"},
		ExpiresAt: &later,
		Status:    domain.StatusActive,
	}

	require.False(t, IsEligible(entry))
	require.Equal(t, Decision{Reason: ReasonStory}, Evaluate(entry, now))
	require.Equal(t, Decision{Eligible: true, Reason: ReasonCeiling}, Evaluate(entry, later))
}

func TestCeilingAppliesToSavedItems(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Second)
	snap := &domain.ContentItem{
		Kind:      domain.KindSnap,
		CreatorID: "A",
		Audience:  []string{"A", "B"},
		SavedBy:   []string{"B"},
		ExpiresAt: &past,
		Status:    domain.StatusActive,
	}

	require.False(t, IsEligible(snap))
	require.Equal(t, Decision{Eligible: true, Reason: ReasonCeiling}, Evaluate(snap, now))
}

func TestEvaluateReasons(t *testing.T) {
	now := time.Now()

	require.Equal(t, ReasonPending, Evaluate(chat("A", []string{"A", "B"}, nil, nil), now).Reason)
	require.Equal(t, ReasonSaved, Evaluate(chat("A", []string{"A", "B"}, []string{"B"}, []string{"B"}), now).Reason)
	require.Equal(t, Decision{Eligible: true, Reason: ReasonViewed}, Evaluate(chat("A", []string{"A", "B"}, []string{"B"}, nil), now))

	expired := chat("A", []string{"A", "B"}, []string{"B"}, nil)
	expired.Status = domain.StatusExpired
	require.Equal(t, Decision{Reason: ReasonInactive}, Evaluate(expired, now))
	require.False(t, IsEligible(expired))
	require.Equal(t, Decision{Reason: ReasonInactive}, Evaluate(nil, now))
}

func TestReadReceiptsNeverCount(t *testing.T) {
	item := chat("A", []string{"A", "B"}, nil, nil)
	item.ReadBy = []string{"B"}
	require.False(t, IsEligible(item))
}
