package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GlobalPairKey is the reserved pair key of the singleton global conversation.
// The unique index on pair_key is what makes concurrent first access safe.
const GlobalPairKey = "global"

// DirectPairKey builds the canonical lookup key for a 1:1 conversation.
// Sorting the ids makes the key symmetric, so (a,b) and (b,a) resolve to
// the same conversation and a superset match is impossible.
func DirectPairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

/** --------------------ENTITIES-------------------- */
// Conversation is either a 1:1 conversation between two users or the
// singleton global conversation shared by everyone.
type Conversation struct {
	gorm.Model
	IsGlobal bool `gorm:"not null;default:false" json:"isGlobal"`
	// PairKey is "min:max" of the participant ids, or "global". Unique.
	PairKey string `gorm:"uniqueIndex;not null" json:"-"`

	// Participant ids are stored sorted (A < B) and are null for the
	// global conversation.
	ParticipantAID *uint `gorm:"index" json:"-"`
	ParticipantBID *uint `gorm:"index" json:"-"`

	LastMessageID *uint `json:"-"`

	ParticipantA *User    `gorm:"foreignKey:ParticipantAID" json:"-"`
	ParticipantB *User    `gorm:"foreignKey:ParticipantBID" json:"-"`
	LastMessage  *Message `gorm:"foreignKey:LastMessageID" json:"-"`
}

// HasParticipant reports whether the user is one of the two participants.
// The global conversation has no participant list.
func (c *Conversation) HasParticipant(userID uint) bool {
	if c.IsGlobal {
		return false
	}
	return (c.ParticipantAID != nil && *c.ParticipantAID == userID) ||
		(c.ParticipantBID != nil && *c.ParticipantBID == userID)
}

// OtherParticipant returns the id of the participant that is not userID.
func (c *Conversation) OtherParticipant(userID uint) (uint, bool) {
	if c.ParticipantAID != nil && *c.ParticipantAID != userID {
		return *c.ParticipantAID, true
	}
	if c.ParticipantBID != nil && *c.ParticipantBID != userID {
		return *c.ParticipantBID, true
	}
	return 0, false
}

/** -------------------- DTOs -------------------- */
// Request
type CreateDirectConversationRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// Response
type ConversationResponse struct {
	ID           uint             `json:"id"`
	IsGlobal     bool             `json:"isGlobal"`
	Participants []UserResponse   `json:"participants,omitempty"`
	LastMessage  *MessageResponse `json:"lastMessage,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}
