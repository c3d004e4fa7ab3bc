package lifecycleimpl

import (
	"context"
	"testing"

	"github.com/sadaqat12/snapconnect/internal/domain"
	"github.com/sadaqat12/snapconnect/internal/lifecycle"
	"github.com/sadaqat12/snapconnect/internal/repositories/scope"
	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSendValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	conv := f.conversation(t, "A", "B")
	snapScope := f.snap(t, "A", []string{"B"}, "A/snaps/x.jpg").ScopeID

	cases := map[string]lifecycle.SendRequest{
		"no creator":             {Kind: domain.KindChatMessage, ConversationID: conv.ID, Body: "x"},
		"unknown kind":           {Kind: "poll", CreatorID: "A"},
		"snap without media":     {Kind: domain.KindSnap, CreatorID: "A", RecipientIDs: []string{"B"}},
		"snap to nobody":         {Kind: domain.KindSnap, CreatorID: "A", MediaPath: "A/x.jpg"},
		"snap to self":           {Kind: domain.KindSnap, CreatorID: "A", RecipientIDs: []string{"A", " "}, MediaPath: "A/x.jpg"},
		"message without conv":   {Kind: domain.KindChatMessage, CreatorID: "A", Body: "x"},
		"empty message":          {Kind: domain.KindChatMessage, CreatorID: "A", ConversationID: conv.ID},
		"message to snap scope":  {Kind: domain.KindChatMessage, CreatorID: "A", ConversationID: snapScope, Body: "x"},
		"story without media":    {Kind: domain.KindStoryEntry, CreatorID: "A"},
		"snap with foreign blob": {Kind: domain.KindSnap, CreatorID: "A", RecipientIDs: []string{"B"}, MediaPath: "C/private.jpg"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Send(ctx, req)
			require.True(t, apperrors.IsInvalidInput(err), "got %v", err)
		})
	}

	_, err := f.svc.Send(ctx, lifecycle.SendRequest{
		Kind:           domain.KindChatMessage,
		CreatorID:      "A",
		ConversationID: "missing",
		Body:           "x",
	})
	require.ErrorIs(t, err, scope.ErrNotFound)
}

func TestSnapsBetweenSamePeopleShareAScope(t *testing.T) {
	f := newFixture(t)

	first := f.snap(t, "A", []string{"B", "C"}, "A/snaps/1.jpg")
	second := f.snap(t, "A", []string{"C", "B", "B"}, "A/snaps/2.jpg")
	reply := f.snap(t, "B", []string{"A", "C"}, "B/snaps/3.jpg")

	require.Equal(t, first.ScopeID, second.ScopeID)
	require.Equal(t, first.ScopeID, reply.ScopeID)
	require.Equal(t, domain.RecipientScopeID([]string{"A", "B", "C"}), first.ScopeID)
}

func TestOpenConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ab, err := f.svc.OpenConversation(ctx, "A", []string{"B"})
	require.NoError(t, err)
	ba, err := f.svc.OpenConversation(ctx, "B", []string{"A", "B"})
	require.NoError(t, err)
	require.Equal(t, ab.ID, ba.ID)
	require.Equal(t, "A", ba.CreatorID, "the first opener stays the creator")

	g1, err := f.svc.OpenConversation(ctx, "A", []string{"B", "C"})
	require.NoError(t, err)
	g2, err := f.svc.OpenConversation(ctx, "A", []string{"B", "C"})
	require.NoError(t, err)
	require.NotEqual(t, g1.ID, g2.ID)
	require.Equal(t, []string{"A", "B", "C"}, g1.Members)

	_, err = f.svc.OpenConversation(ctx, "A", []string{"A"})
	require.True(t, apperrors.IsInvalidInput(err))
}

func TestListScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	conv := f.conversation(t, "A", "B")
	first := f.message(t, conv, "A", "one")
	f.clock.Advance(1)
	second := f.message(t, conv, "B", "two")

	items, err := f.svc.ListScope(ctx, conv.ID, "A")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, first.ID, items[0].ID)
	require.Equal(t, second.ID, items[1].ID)

	_, err = f.svc.ListScope(ctx, "missing", "A")
	require.True(t, apperrors.IsNotFound(err))
}

func TestSweepDefinition(t *testing.T) {
	f := newFixture(t)

	_, every := f.svc.sweepDefinition()
	require.Equal(t, "1m0s", every)

	f.svc.Config.Lifecycle.SweepCron = "*/2 * * * *"
	_, every = f.svc.sweepDefinition()
	require.Equal(t, "*/2 * * * *", every)

	f.svc.Config.Lifecycle.SweepCron = "every tuesday"
	_, every = f.svc.sweepDefinition()
	require.Equal(t, "1m0s", every)
}

func TestScheduleSweepStopsWithContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, f.svc.ScheduleSweep(ctx))
	require.NoError(t, f.svc.SchedulePurge(ctx))
}
