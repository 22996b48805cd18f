package postgres

import (
	"context"

	"wconnect-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepository interface {
	// GetOrCreate inserts the conversation unless one with the same pair key
	// already exists, then returns the stored row. The unique index on
	// pair_key makes this race-safe: concurrent first-contact calls all
	// converge on a single conversation id.
	GetOrCreate(ctx context.Context, conv *models.Conversation) (*models.Conversation, error)
	FindByID(ctx context.Context, id uint) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.Conversation, error)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) GetOrCreate(ctx context.Context, conv *models.Conversation) (*models.Conversation, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).
		Create(conv).Error
	if err != nil {
		return nil, err
	}

	// Re-read by pair key: on conflict the insert assigns no id, and the
	// winner of a concurrent race may be another request entirely.
	var stored models.Conversation
	err = r.db.WithContext(ctx).
		Preload("ParticipantA").
		Preload("ParticipantB").
		Preload("LastMessage").
		Preload("LastMessage.Sender").
		First(&stored, "pair_key = ?", conv.PairKey).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("ParticipantA").
		Preload("ParticipantB").
		Preload("LastMessage").
		Preload("LastMessage.Sender").
		First(&conv, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	var convs []*models.Conversation
	err := r.db.WithContext(ctx).
		Preload("ParticipantA").
		Preload("ParticipantB").
		Preload("LastMessage").
		Preload("LastMessage.Sender").
		Where("participant_a_id = ? OR participant_b_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&convs).Error
	return convs, err
}
