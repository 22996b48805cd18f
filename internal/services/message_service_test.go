package services

import (
	"context"
	"testing"

	"wconnect-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messageFixture struct {
	svc       *MessageService
	convs     *ConversationService
	publisher *fakePublisher
	users     *fakeUserRepo
}

func newMessageFixture(t *testing.T) *messageFixture {
	t.Helper()
	users := newFakeUserRepo()
	convRepo := newFakeConversationRepo(users)
	msgRepo := newFakeMessageRepo(convRepo, users)
	publisher := newFakePublisher()
	return &messageFixture{
		svc:       NewMessageService(msgRepo, convRepo, users, publisher, NewNopEventProducer()),
		convs:     NewConversationService(convRepo, users),
		publisher: publisher,
		users:     users,
	}
}

func (f *messageFixture) directConversation(t *testing.T, a, b uint) uint {
	t.Helper()
	conv, err := f.convs.GetOrCreateDirect(context.Background(), a, b)
	require.NoError(t, err)
	return conv.ID
}

func TestSendAndHistoryRoundTrip(t *testing.T) {
	f := newMessageFixture(t)
	alice := f.users.seed("alice")
	bob := f.users.seed("bob")
	convID := f.directConversation(t, alice.ID, bob.ID)
	ctx := context.Background()

	sent, err := f.svc.Send(ctx, alice.ID, &models.SendMessageRequest{
		ConversationID: convID,
		Content:        "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MessageTypeText, sent.Type)
	assert.Equal(t, models.MessageStatusSent, sent.Status)
	assert.Equal(t, "alice", sent.Sender.Username)

	_, err = f.svc.Send(ctx, bob.ID, &models.SendMessageRequest{
		ConversationID: convID,
		Content:        "hi back",
	})
	require.NoError(t, err)

	history, err := f.svc.History(ctx, convID, bob.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, alice.ID, history[0].SenderID)
	assert.Equal(t, "hi back", history[1].Content)
	assert.True(t, history[0].CreatedAt.Before(history[1].CreatedAt))
}

func TestSendValidation(t *testing.T) {
	f := newMessageFixture(t)
	alice := f.users.seed("alice")
	bob := f.users.seed("bob")
	convID := f.directConversation(t, alice.ID, bob.ID)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.SendMessageRequest
	}{
		{"empty text", models.SendMessageRequest{ConversationID: convID, Content: "   "}},
		{"caption on text", models.SendMessageRequest{ConversationID: convID, Content: "hi", Caption: "nope"}},
		{"image without locator", models.SendMessageRequest{ConversationID: convID, Type: models.MessageTypeImage}},
		{"unknown type", models.SendMessageRequest{ConversationID: convID, Type: "video", Content: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Send(ctx, alice.ID, &tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// Image with locator and caption is fine.
	msg, err := f.svc.Send(ctx, alice.ID, &models.SendMessageRequest{
		ConversationID: convID,
		Type:           models.MessageTypeImage,
		Content:        "uploads/photo.jpg",
		Caption:        "sunset",
	})
	require.NoError(t, err)
	assert.Equal(t, "sunset", msg.Caption)
}

func TestSendToUnknownConversation(t *testing.T) {
	f := newMessageFixture(t)
	alice := f.users.seed("alice")

	_, err := f.svc.Send(context.Background(), alice.ID, &models.SendMessageRequest{
		ConversationID: 999,
		Content:        "hello?",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendByNonParticipant(t *testing.T) {
	f := newMessageFixture(t)
	alice := f.users.seed("alice")
	bob := f.users.seed("bob")
	carol := f.users.seed("carol")
	convID := f.directConversation(t, alice.ID, bob.ID)

	_, err := f.svc.Send(context.Background(), carol.ID, &models.SendMessageRequest{
		ConversationID: convID,
		Content:        "let me in",
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSendToGlobalConversation(t *testing.T) {
	f := newMessageFixture(t)
	carol := f.users.seed("carol")
	global, err := f.convs.GetOrCreateGlobal(context.Background())
	require.NoError(t, err)

	msg, err := f.svc.Send(context.Background(), carol.ID, &models.SendMessageRequest{
		ConversationID: global.ID,
		Content:        "hello world",
	})
	require.NoError(t, err)
	assert.Equal(t, carol.ID, msg.SenderID)
}

func TestMarkReadSweep(t *testing.T) {
	f := newMessageFixture(t)
	alice := f.users.seed("alice")
	bob := f.users.seed("bob")
	convID := f.directConversation(t, alice.ID, bob.ID)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		_, err := f.svc.Send(ctx, alice.ID, &models.SendMessageRequest{
			ConversationID: convID,
			Content:        content,
		})
		require.NoError(t, err)
	}

	read, err := f.svc.MarkRead(ctx, convID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), read)

	history, err := f.svc.History(ctx, convID, bob.ID)
	require.NoError(t, err)
	for _, msg := range history {
		assert.Equal(t, models.MessageStatusRead, msg.Status)
	}

	// Exactly one receipt to the sender's room.
	receipts := f.publisher.receiptsFor(alice.ID)
	require.Len(t, receipts, 1)
	assert.Equal(t, convID, receipts[0].ConversationID)
	assert.Empty(t, f.publisher.receiptsFor(bob.ID))

	// A second sweep is a no-op and publishes nothing.
	read, err = f.svc.MarkRead(ctx, convID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, read)
	assert.Len(t, f.publisher.receiptsFor(alice.ID), 1)
}

func TestMarkReadSkipsOwnMessages(t *testing.T) {
	f := newMessageFixture(t)
	alice := f.users.seed("alice")
	bob := f.users.seed("bob")
	convID := f.directConversation(t, alice.ID, bob.ID)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, alice.ID, &models.SendMessageRequest{ConversationID: convID, Content: "from alice"})
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, bob.ID, &models.SendMessageRequest{ConversationID: convID, Content: "from bob"})
	require.NoError(t, err)

	read, err := f.svc.MarkRead(ctx, convID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), read)

	history, err := f.svc.History(ctx, convID, alice.ID)
	require.NoError(t, err)
	for _, msg := range history {
		if msg.SenderID == bob.ID {
			assert.Equal(t, models.MessageStatusSent, msg.Status)
		} else {
			assert.Equal(t, models.MessageStatusRead, msg.Status)
		}
	}
}

func TestMarkReadByNonParticipant(t *testing.T) {
	f := newMessageFixture(t)
	alice := f.users.seed("alice")
	bob := f.users.seed("bob")
	carol := f.users.seed("carol")
	convID := f.directConversation(t, alice.ID, bob.ID)

	_, err := f.svc.MarkRead(context.Background(), convID, carol.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClearConversation(t *testing.T) {
	f := newMessageFixture(t)
	alice := f.users.seed("alice")
	bob := f.users.seed("bob")
	carol := f.users.seed("carol")
	convID := f.directConversation(t, alice.ID, bob.ID)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, alice.ID, &models.SendMessageRequest{ConversationID: convID, Content: "hi"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Clear(ctx, convID, carol.ID), ErrForbidden)

	require.NoError(t, f.svc.Clear(ctx, convID, bob.ID))

	history, err := f.svc.History(ctx, convID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	conv, err := f.convs.Get(ctx, convID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, conv.LastMessage)
}

func TestClearGlobalConversation(t *testing.T) {
	f := newMessageFixture(t)
	alice := f.users.seed("alice")
	global, err := f.convs.GetOrCreateGlobal(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Clear(context.Background(), global.ID, alice.ID), ErrForbidden)
}
