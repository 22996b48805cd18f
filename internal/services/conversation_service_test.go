package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversationFixture(t *testing.T) (*ConversationService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	return NewConversationService(newFakeConversationRepo(users), users), users
}

func TestGetOrCreateDirectIdempotent(t *testing.T) {
	svc, users := newConversationFixture(t)
	alice := users.seed("alice")
	bob := users.seed("bob")
	ctx := context.Background()

	first, err := svc.GetOrCreateDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	second, err := svc.GetOrCreateDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// Same pair from the other side resolves to the same conversation.
	reversed, err := svc.GetOrCreateDirect(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, reversed.ID)

	require.Len(t, first.Participants, 2)
	assert.Equal(t, "alice", first.Participants[0].Username)
	assert.Equal(t, "bob", first.Participants[1].Username)
}

func TestGetOrCreateDirectConcurrentFirstContact(t *testing.T) {
	svc, users := newConversationFixture(t)
	alice := users.seed("alice")
	bob := users.seed("bob")

	const callers = 16
	ids := make([]uint, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			self, other := alice.ID, bob.ID
			if i%2 == 0 {
				self, other = other, self
			}
			conv, err := svc.GetOrCreateDirect(context.Background(), self, other)
			require.NoError(t, err)
			ids[i] = conv.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestGetOrCreateDirectWithSelf(t *testing.T) {
	svc, users := newConversationFixture(t)
	alice := users.seed("alice")

	_, err := svc.GetOrCreateDirect(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetOrCreateDirectUnknownUser(t *testing.T) {
	svc, users := newConversationFixture(t)
	alice := users.seed("alice")

	_, err := svc.GetOrCreateDirect(context.Background(), alice.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrCreateGlobalSingleton(t *testing.T) {
	svc, _ := newConversationFixture(t)

	const callers = 16
	ids := make([]uint, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv, err := svc.GetOrCreateGlobal(context.Background())
			require.NoError(t, err)
			require.True(t, conv.IsGlobal)
			ids[i] = conv.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestGetConversationAccess(t *testing.T) {
	svc, users := newConversationFixture(t)
	alice := users.seed("alice")
	bob := users.seed("bob")
	carol := users.seed("carol")
	ctx := context.Background()

	conv, err := svc.GetOrCreateDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, conv.ID, alice.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, conv.ID, carol.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, 999, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The global conversation is visible to anyone.
	global, err := svc.GetOrCreateGlobal(ctx)
	require.NoError(t, err)
	_, err = svc.Get(ctx, global.ID, carol.ID)
	assert.NoError(t, err)
}

func TestListForUser(t *testing.T) {
	svc, users := newConversationFixture(t)
	alice := users.seed("alice")
	bob := users.seed("bob")
	carol := users.seed("carol")
	ctx := context.Background()

	ab, err := svc.GetOrCreateDirect(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.GetOrCreateDirect(ctx, bob.ID, carol.ID)
	require.NoError(t, err)

	convs, err := svc.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, ab.ID, convs[0].ID)

	convs, err = svc.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, convs, 2)
}
