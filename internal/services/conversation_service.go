package services

import (
	"context"
	"errors"

	"wconnect-service/internal/models"
	"wconnect-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

// ConversationService resolves conversations: the 1:1 conversation for a
// user pair and the singleton global conversation. Both lookups are
// idempotent and safe under concurrent first calls because they go through
// the pair-key upsert in the repository.
type ConversationService struct {
	convs postgres.ConversationRepository
	users postgres.UserRepository
}

func NewConversationService(convs postgres.ConversationRepository, users postgres.UserRepository) *ConversationService {
	return &ConversationService{convs: convs, users: users}
}

// GetOrCreateDirect returns the one conversation for the unordered pair
// {selfID, otherID}, creating it on first contact.
func (s *ConversationService) GetOrCreateDirect(ctx context.Context, selfID, otherID uint) (*models.ConversationResponse, error) {
	if selfID == otherID {
		return nil, validationErr("cannot start a conversation with yourself")
	}

	participants, err := s.users.FindByIDs(ctx, []uint{selfID, otherID})
	if err != nil {
		return nil, err
	}
	if len(participants) != 2 {
		return nil, notFoundErr("user %d does not exist", otherID)
	}

	a, b := selfID, otherID
	if a > b {
		a, b = b, a
	}
	conv, err := s.convs.GetOrCreate(ctx, &models.Conversation{
		PairKey:        models.DirectPairKey(a, b),
		ParticipantAID: &a,
		ParticipantBID: &b,
	})
	if err != nil {
		return nil, err
	}

	return toConversationResponse(conv), nil
}

// GetOrCreateGlobal returns the singleton global conversation, creating it
// on first access.
func (s *ConversationService) GetOrCreateGlobal(ctx context.Context) (*models.ConversationResponse, error) {
	conv, err := s.convs.GetOrCreate(ctx, &models.Conversation{
		PairKey:  models.GlobalPairKey,
		IsGlobal: true,
	})
	if err != nil {
		return nil, err
	}
	return toConversationResponse(conv), nil
}

// ListForUser returns the direct conversations the user participates in,
// most recently active first.
func (s *ConversationService) ListForUser(ctx context.Context, userID uint) ([]*models.ConversationResponse, error) {
	convs, err := s.convs.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		responses = append(responses, toConversationResponse(conv))
	}
	return responses, nil
}

// Get returns a single conversation the user may see.
func (s *ConversationService) Get(ctx context.Context, conversationID, userID uint) (*models.ConversationResponse, error) {
	conv, err := s.convs.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("conversation %d does not exist", conversationID)
		}
		return nil, err
	}
	if !conv.IsGlobal && !conv.HasParticipant(userID) {
		return nil, forbiddenErr("user %d is not a participant of conversation %d", userID, conversationID)
	}
	return toConversationResponse(conv), nil
}

func toConversationResponse(conv *models.Conversation) *models.ConversationResponse {
	resp := &models.ConversationResponse{
		ID:        conv.ID,
		IsGlobal:  conv.IsGlobal,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
	if conv.ParticipantA != nil {
		resp.Participants = append(resp.Participants, conv.ParticipantA.Public())
	}
	if conv.ParticipantB != nil {
		resp.Participants = append(resp.Participants, conv.ParticipantB.Public())
	}
	if conv.LastMessage != nil {
		last := conv.LastMessage.Response()
		resp.LastMessage = &last
	}
	return resp
}
