package content

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sadaqat12/snapconnect/internal/domain"
	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(id string, audience ...string) domain.ContentItem {
	return domain.ContentItem{
		ID:        id,
		Kind:      domain.KindChatMessage,
		ScopeID:   "conv-1",
		CreatorID: audience[0],
		Audience:  audience,
		CreatedAt: time.Now(),
	}
}

func TestAddToSetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.Create(ctx, newItem("m1", "A", "B"))
	require.NoError(t, err)

	item, changed, err := repo.AddToSet(ctx, "m1", domain.FieldViewedBy, "B")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, []string{"B"}, item.ViewedBy)
	require.EqualValues(t, 2, item.Version)

	item, changed, err = repo.AddToSet(ctx, "m1", domain.FieldViewedBy, "B")
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, []string{"B"}, item.ViewedBy)
	require.EqualValues(t, 2, item.Version)
}

func TestAddToSetRejectsOutsiders(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.Create(ctx, newItem("m1", "A", "B"))
	require.NoError(t, err)

	_, _, err = repo.AddToSet(ctx, "m1", domain.FieldViewedBy, "mallory")
	require.ErrorIs(t, err, ErrNotInAudience)
	require.True(t, apperrors.IsNotAuthorized(err))

	item, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	require.Empty(t, item.ViewedBy)
}

func TestConcurrentViewersAreNotLost(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	audience := []string{"sender"}
	for i := 0; i < 50; i++ {
		audience = append(audience, fmt.Sprintf("user-%d", i))
	}
	_, err := repo.Create(ctx, newItem("m1", audience...))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, user := range audience[1:] {
		for n := 0; n < 3; n++ {
			wg.Add(1)
			go func(u string) {
				defer wg.Done()
				_, _, err := repo.AddToSet(ctx, "m1", domain.FieldViewedBy, u)
				assert.NoError(t, err)
			}(user)
		}
	}
	wg.Wait()

	item, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, item.ViewedBy, 50)
	require.EqualValues(t, 51, item.Version)
}

func TestRemoveFromSet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.Create(ctx, newItem("m1", "A", "B"))
	require.NoError(t, err)

	_, _, err = repo.AddToSet(ctx, "m1", domain.FieldSavedBy, "B")
	require.NoError(t, err)

	item, changed, err := repo.RemoveFromSet(ctx, "m1", domain.FieldSavedBy, "B")
	require.NoError(t, err)
	require.True(t, changed)
	require.Empty(t, item.SavedBy)

	_, changed, err = repo.RemoveFromSet(ctx, "m1", domain.FieldSavedBy, "B")
	require.NoError(t, err)
	require.False(t, changed)
}

func TestFinalizeGuards(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.Create(ctx, newItem("m1", "A", "B"))
	require.NoError(t, err)
	_, _, err = repo.AddToSet(ctx, "m1", domain.FieldSavedBy, "B")
	require.NoError(t, err)

	_, err = repo.Finalize(ctx, "m1", FinalizeGuard{Unsaved: true})
	require.ErrorIs(t, err, ErrFinalizeRejected)

	now := time.Now()
	_, err = repo.Finalize(ctx, "m1", FinalizeGuard{ExpiredBy: &now})
	require.ErrorIs(t, err, ErrFinalizeRejected, "no ceiling set")

	_, _, err = repo.RemoveFromSet(ctx, "m1", domain.FieldSavedBy, "B")
	require.NoError(t, err)

	fin, err := repo.Finalize(ctx, "m1", FinalizeGuard{Unsaved: true, Now: now})
	require.NoError(t, err)
	require.Equal(t, "conv-1", fin.ScopeID)
	require.Equal(t, now, fin.FinalizedAt)

	_, err = repo.Finalize(ctx, "m1", FinalizeGuard{Unsaved: true})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Get(ctx, "m1")
	require.ErrorIs(t, err, ErrNotFound)

	tomb, ok := repo.Tombstone("m1")
	require.True(t, ok)
	require.Equal(t, domain.StatusExpired, tomb.Status)
}

func TestSweepCandidates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now()
	past := now.Add(-time.Minute)

	pending := newItem("pending", "A", "B", "C")
	pending.ViewedBy = []string{"B"}
	viewed := newItem("viewed", "A", "B")
	viewed.ViewedBy = []string{"B"}
	saved := newItem("saved", "A", "B")
	saved.ViewedBy = []string{"B"}
	saved.SavedBy = []string{"B"}
	ceiling := newItem("ceiling", "A", "B")
	ceiling.Kind = domain.KindSnap
	ceiling.SavedBy = []string{"B"}
	ceiling.ExpiresAt = &past
	story := newItem("story", "A", "B")
	story.Kind = domain.KindStoryEntry
	story.ViewedBy = []string{"B"}

	for _, it := range []domain.ContentItem{pending, viewed, saved, ceiling, story} {
		_, err := repo.Create(ctx, it)
		require.NoError(t, err)
	}

	got, err := repo.SweepCandidates(ctx, now, 0)
	require.NoError(t, err)

	var ids []string
	for _, it := range got {
		ids = append(ids, it.ID)
	}
	require.ElementsMatch(t, []string{"viewed", "ceiling"}, ids)
}

func TestMediaReferencedAndPurge(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	a := newItem("a", "A", "B")
	a.MediaPath = "blobs/1.jpg"
	b := newItem("b", "A", "C")
	b.MediaPath = "blobs/1.jpg"
	for _, it := range []domain.ContentItem{a, b} {
		_, err := repo.Create(ctx, it)
		require.NoError(t, err)
	}

	shared, err := repo.MediaReferenced(ctx, "blobs/1.jpg", "a")
	require.NoError(t, err)
	require.True(t, shared)

	old := time.Now().Add(-48 * time.Hour)
	_, err = repo.Finalize(ctx, "b", FinalizeGuard{Now: old})
	require.NoError(t, err)

	shared, err = repo.MediaReferenced(ctx, "blobs/1.jpg", "a")
	require.NoError(t, err)
	require.False(t, shared)

	purged, err := repo.PurgeTombstones(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)

	_, ok := repo.Tombstone("b")
	require.False(t, ok)
}
