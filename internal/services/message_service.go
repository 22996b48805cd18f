package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"wconnect-service/internal/models"
	"wconnect-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

// RealtimePublisher is the hub surface the message service needs. Pushes
// are best-effort delivery optimizations: a failed publish is logged and
// never fails the durable write.
type RealtimePublisher interface {
	PublishReadReceipt(userID uint, receipt models.ReadReceipt) error
}

// MessageService persists messages, serves conversation history and
// performs the read sweep. The durable path through this service is
// authoritative; the realtime hub only accelerates delivery.
type MessageService struct {
	messages postgres.MessageRepository
	convs    postgres.ConversationRepository
	users    postgres.UserRepository
	realtime RealtimePublisher
	events   EventProducer
}

func NewMessageService(
	messages postgres.MessageRepository,
	convs postgres.ConversationRepository,
	users postgres.UserRepository,
	realtime RealtimePublisher,
	events EventProducer,
) *MessageService {
	return &MessageService{
		messages: messages,
		convs:    convs,
		users:    users,
		realtime: realtime,
		events:   events,
	}
}

// Send validates and persists a message with status sent, updating the
// conversation's last-message pointer atomically.
func (s *MessageService) Send(ctx context.Context, senderID uint, req *models.SendMessageRequest) (*models.MessageResponse, error) {
	msgType := req.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	switch msgType {
	case models.MessageTypeText:
		if strings.TrimSpace(req.Content) == "" {
			return nil, validationErr("text message content must not be empty")
		}
		if req.Caption != "" {
			return nil, validationErr("caption is only valid for image messages")
		}
	case models.MessageTypeImage:
		if req.Content == "" {
			return nil, validationErr("image message requires a media locator")
		}
	default:
		return nil, validationErr("unknown message type %q", msgType)
	}

	conv, err := s.lookupConversation(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}
	// Any authenticated user may post to the global conversation.
	if !conv.IsGlobal && !conv.HasParticipant(senderID) {
		return nil, forbiddenErr("user %d is not a participant of conversation %d", senderID, conv.ID)
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Type:           msgType,
		Content:        req.Content,
		Caption:        req.Caption,
		Status:         models.MessageStatusSent,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	msg.Sender = *sender
	resp := msg.Response()

	if err := s.events.MessageCreated(ctx, &resp); err != nil {
		slog.Error("failed to produce message.created event", "messageID", msg.ID, "error", err)
	}

	return &resp, nil
}

// History returns every message in the conversation ordered by creation
// time ascending. It is a pure query; the read sweep lives in MarkRead and
// is invoked by the client right after fetching.
func (s *MessageService) History(ctx context.Context, conversationID, userID uint) ([]models.MessageResponse, error) {
	conv, err := s.lookupConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsGlobal && !conv.HasParticipant(userID) {
		return nil, forbiddenErr("user %d is not a participant of conversation %d", userID, conversationID)
	}

	msgs, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		responses = append(responses, m.Response())
	}
	return responses, nil
}

// MarkRead performs the read sweep: every message in the conversation
// authored by someone else and not already read transitions to read, and
// one read receipt is pushed to each affected sender's room. Idempotent: a
// second sweep transitions nothing and publishes nothing.
func (s *MessageService) MarkRead(ctx context.Context, conversationID, userID uint) (int64, error) {
	conv, err := s.lookupConversation(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if !conv.IsGlobal && !conv.HasParticipant(userID) {
		return 0, forbiddenErr("user %d is not a participant of conversation %d", userID, conversationID)
	}

	senderIDs, changed, err := s.messages.MarkRead(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}

	receipt := models.ReadReceipt{ConversationID: conversationID}
	for _, senderID := range senderIDs {
		if err := s.realtime.PublishReadReceipt(senderID, receipt); err != nil {
			slog.Error("failed to publish read receipt", "conversationID", conversationID, "senderID", senderID, "error", err)
		}
	}
	return changed, nil
}

// Clear deletes all messages of a direct conversation and resets its
// last-message pointer. The conversation shell itself is kept.
func (s *MessageService) Clear(ctx context.Context, conversationID, userID uint) error {
	conv, err := s.lookupConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.IsGlobal {
		return forbiddenErr("the global conversation cannot be cleared")
	}
	if !conv.HasParticipant(userID) {
		return forbiddenErr("user %d is not a participant of conversation %d", userID, conversationID)
	}

	return s.messages.DeleteByConversation(ctx, conversationID)
}

func (s *MessageService) lookupConversation(ctx context.Context, conversationID uint) (*models.Conversation, error) {
	conv, err := s.convs.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("conversation %d does not exist", conversationID)
		}
		return nil, err
	}
	return conv, nil
}
