//go:build integration

package content_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sadaqat12/snapconnect/internal/domain"
	"github.com/sadaqat12/snapconnect/internal/migrations"
	"github.com/sadaqat12/snapconnect/internal/repositories/content"
	"github.com/sadaqat12/snapconnect/internal/repositories/scope"
	"github.com/sadaqat12/snapconnect/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("snapconnect"),
		postgres.WithUsername("snapconnect"),
		postgres.WithPassword("password"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("failed to get connection string: %v", err)
	}
	if err := migrations.Up(ctx, dsn); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to create pool: %v", err)
	}

	code := m.Run()

	testPool.Close()
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func repos(t *testing.T) (*content.PgxRepository, *scope.PgxRepository) {
	t.Helper()
	log := logger.NewNop()
	return content.NewPgxRepository(testPool, log), scope.NewPgxRepository(testPool, log)
}

func seed(t *testing.T, audience ...string) (string, string) {
	t.Helper()
	ctx := context.Background()
	items, scopes := repos(t)

	sc, err := scopes.Create(ctx, domain.Scope{
		ID:               domain.NewID(),
		Kind:             domain.ScopeConversation,
		ConversationKind: domain.ConversationGroup,
		CreatorID:        audience[0],
		Members:          audience,
		CreatedAt:        time.Now(),
	})
	require.NoError(t, err)

	item, err := items.Create(ctx, domain.ContentItem{
		ID:        domain.NewID(),
		Kind:      domain.KindChatMessage,
		ScopeID:   sc.ID,
		CreatorID: audience[0],
		Audience:  audience,
		Body:      "hello",
		MediaPath: "media/" + sc.ID + ".jpg",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	return sc.ID, item.ID
}

func TestPgxConcurrentViews(t *testing.T) {
	ctx := context.Background()
	items, _ := repos(t)

	audience := []string{"sender"}
	for i := 0; i < 20; i++ {
		audience = append(audience, fmt.Sprintf("user-%d", i))
	}
	_, id := seed(t, audience...)

	var wg sync.WaitGroup
	for _, user := range audience[1:] {
		for n := 0; n < 2; n++ {
			wg.Add(1)
			go func(u string) {
				defer wg.Done()
				_, _, err := items.AddToSet(ctx, id, domain.FieldViewedBy, u)
				assert.NoError(t, err)
			}(user)
		}
	}
	wg.Wait()

	item, err := items.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, item.ViewedBy, 20)
	require.EqualValues(t, 21, item.Version)

	_, _, err = items.AddToSet(ctx, id, domain.FieldViewedBy, "mallory")
	require.ErrorIs(t, err, content.ErrNotInAudience)
}

func TestPgxFinalizeGuard(t *testing.T) {
	ctx := context.Background()
	items, _ := repos(t)
	_, id := seed(t, "A", "B")

	_, _, err := items.AddToSet(ctx, id, domain.FieldViewedBy, "B")
	require.NoError(t, err)
	_, changed, err := items.AddToSet(ctx, id, domain.FieldSavedBy, "B")
	require.NoError(t, err)
	require.True(t, changed)

	_, err = items.Finalize(ctx, id, content.FinalizeGuard{Unsaved: true})
	require.ErrorIs(t, err, content.ErrFinalizeRejected)

	_, _, err = items.RemoveFromSet(ctx, id, domain.FieldSavedBy, "B")
	require.NoError(t, err)

	candidates, err := items.SweepCandidates(ctx, time.Now(), 0)
	require.NoError(t, err)
	var found bool
	for _, c := range candidates {
		found = found || c.ID == id
	}
	require.True(t, found)

	fin, err := items.Finalize(ctx, id, content.FinalizeGuard{Unsaved: true, Now: time.Now()})
	require.NoError(t, err)
	require.Equal(t, id, fin.ID)

	_, err = items.Finalize(ctx, id, content.FinalizeGuard{Unsaved: true})
	require.ErrorIs(t, err, content.ErrNotFound)

	_, err = items.Get(ctx, id)
	require.ErrorIs(t, err, content.ErrNotFound)

	shared, err := items.MediaReferenced(ctx, fin.MediaPath, "")
	require.NoError(t, err)
	require.False(t, shared)
}

func TestPgxStoryExpiry(t *testing.T) {
	ctx := context.Background()
	_, scopes := repos(t)

	past := time.Now().Add(-time.Hour)
	story, err := scopes.Create(ctx, domain.Scope{
		ID:        domain.NewID(),
		Kind:      domain.ScopeStory,
		CreatorID: "A",
		Members:   []string{"A", "B"},
		ExpiresAt: &past,
		CreatedAt: past.Add(-time.Hour),
	})
	require.NoError(t, err)

	_, err = scopes.ActiveStoryFor(ctx, "A", time.Now())
	require.ErrorIs(t, err, scope.ErrNotFound)

	ids, err := scopes.ExpireStories(ctx, time.Now())
	require.NoError(t, err)
	require.Contains(t, ids, story.ID)

	purged, err := scopes.PurgeExpired(ctx, 0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, purged, int64(1))
}
