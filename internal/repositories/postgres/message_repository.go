package postgres

import (
	"context"

	"wconnect-service/internal/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	// Create persists the message and bumps the conversation's last-message
	// pointer in the same transaction.
	Create(ctx context.Context, msg *models.Message) error
	ListByConversation(ctx context.Context, conversationID uint) ([]*models.Message, error)
	// MarkRead transitions every message in the conversation that was not
	// authored by readerID and is not already read. It returns the distinct
	// sender ids of the transitioned messages and how many rows changed.
	MarkRead(ctx context.Context, conversationID, readerID uint) ([]uint, int64, error)
	// DeleteByConversation removes all messages and clears the
	// conversation's last-message pointer in one transaction.
	DeleteByConversation(ctx context.Context, conversationID uint) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("last_message_id", msg.ID).Error
	})
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID uint) ([]*models.Message, error) {
	var msgs []*models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *messageRepository) MarkRead(ctx context.Context, conversationID, readerID uint) ([]uint, int64, error) {
	var senderIDs []uint
	var changed int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The status filter keeps the transition monotonic and the sweep
		// idempotent: already-read rows are never touched again.
		q := tx.Model(&models.Message{}).
			Where("conversation_id = ?", conversationID).
			Where("sender_id <> ?", readerID).
			Where("status <> ?", models.MessageStatusRead)

		if err := q.Distinct("sender_id").Pluck("sender_id", &senderIDs).Error; err != nil {
			return err
		}
		if len(senderIDs) == 0 {
			return nil
		}

		res := tx.Model(&models.Message{}).
			Where("conversation_id = ?", conversationID).
			Where("sender_id <> ?", readerID).
			Where("status <> ?", models.MessageStatusRead).
			Update("status", models.MessageStatusRead)
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return senderIDs, changed, nil
}

func (r *messageRepository) DeleteByConversation(ctx context.Context, conversationID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("last_message_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("conversation_id = ?", conversationID).
			Delete(&models.Message{}).Error
	})
}
