package scope

import (
	"context"
	"testing"
	"time"

	"github.com/sadaqat12/snapconnect/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestUpsertKeepsFirstRow(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first, err := repo.Upsert(ctx, domain.Scope{ID: "s1", Kind: domain.ScopeRecipients, CreatorID: "A", Members: []string{"A", "B"}})
	require.NoError(t, err)

	second, err := repo.Upsert(ctx, domain.Scope{ID: "s1", Kind: domain.ScopeRecipients, CreatorID: "B", Members: []string{"A", "B"}})
	require.NoError(t, err)
	require.Equal(t, first.CreatorID, second.CreatorID)

	_, err = repo.Create(ctx, domain.Scope{ID: "s1"})
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestStoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now()
	exp := now.Add(time.Hour)

	_, err := repo.Create(ctx, domain.Scope{
		ID: "story-1", Kind: domain.ScopeStory, CreatorID: "A",
		Members: []string{"A", "B"}, ExpiresAt: &exp, CreatedAt: now,
	})
	require.NoError(t, err)

	story, err := repo.ActiveStoryFor(ctx, "A", now)
	require.NoError(t, err)
	require.Equal(t, "story-1", story.ID)

	added, err := repo.AddViewer(ctx, "story-1", "B")
	require.NoError(t, err)
	require.True(t, added)
	added, err = repo.AddViewer(ctx, "story-1", "B")
	require.NoError(t, err)
	require.False(t, added)
	added, err = repo.AddViewer(ctx, "story-1", "stranger")
	require.NoError(t, err)
	require.False(t, added)

	ids, err := repo.ExpireStories(ctx, now)
	require.NoError(t, err)
	require.Empty(t, ids)

	ids, err = repo.ExpireStories(ctx, exp)
	require.NoError(t, err)
	require.Equal(t, []string{"story-1"}, ids)

	_, err = repo.Get(ctx, "story-1")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = repo.ActiveStoryFor(ctx, "A", now)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPurgeExpiredRespectsOwnership(t *testing.T) {
	ctx := context.Background()
	owned := map[string]bool{"kept": true}
	repo := NewMemoryRepository().WithOwnership(func(id string) bool { return owned[id] })
	old := time.Now().Add(-72 * time.Hour)

	for _, id := range []string{"kept", "gone"} {
		_, err := repo.Create(ctx, domain.Scope{ID: id, Kind: domain.ScopeStory, CreatorID: "A", ExpiresAt: &old})
		require.NoError(t, err)
	}
	_, err := repo.ExpireStories(ctx, time.Now())
	require.NoError(t, err)

	purged, err := repo.PurgeExpired(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)
}
