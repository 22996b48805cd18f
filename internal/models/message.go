package models

import (
	"time"

	"gorm.io/gorm"
)

// enum
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

// MessageStatus is the delivery state of a persisted message. Status is
// monotonic: once read, a message never reverts. Delivered exists in the
// vocabulary but is never produced by the service.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

/** --------------------ENTITIES-------------------- */
// Message represents a chat message
type Message struct {
	gorm.Model
	ConversationID uint        `gorm:"index;not null" json:"conversationId"`
	SenderID       uint        `gorm:"not null" json:"senderId"`
	Type           MessageType `gorm:"not null;default:'text'" json:"type"`
	// Content is the plain text body, or the media locator when type == image.
	Content string        `gorm:"not null" json:"content"`
	Caption string        `json:"caption,omitempty"` // image only
	Status  MessageStatus `gorm:"not null;default:'sent';index" json:"status"`

	Sender User `gorm:"foreignKey:SenderID" json:"-"`
}

// Response builds the read-model DTO with the sender's public profile attached.
func (m *Message) Response() MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Sender:         m.Sender.Public(),
		Type:           m.Type,
		Content:        m.Content,
		Caption:        m.Caption,
		Status:         m.Status,
		CreatedAt:      m.CreatedAt,
	}
}

/** -------------------- DTOs -------------------- */
// Request
type SendMessageRequest struct {
	ConversationID uint        `json:"conversationId" binding:"required"`
	Type           MessageType `json:"type" binding:"omitempty,oneof=text image"`
	Content        string      `json:"content"`
	Caption        string      `json:"caption,omitempty"`
}

// Response
type MessageResponse struct {
	ID             uint          `json:"id"`
	ConversationID uint          `json:"conversationId"`
	SenderID       uint          `json:"senderId"`
	Sender         UserResponse  `json:"sender"`
	Type           MessageType   `json:"type"`
	Content        string        `json:"content"`
	Caption        string        `json:"caption,omitempty"`
	Status         MessageStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// ReadReceipt is the realtime payload pushed to a sender's room after the
// other participant swept their messages to read.
type ReadReceipt struct {
	ConversationID uint `json:"conversationId"`
}
