package models

import (
	"time"

	"gorm.io/gorm"
)

// Last-seen visibility options for the user's privacy settings.
const (
	LastSeenEveryone = "everyone"
	LastSeenContacts = "contacts"
	LastSeenNobody   = "nobody"
)

/** --------------------ENTITIES-------------------- */
// User represents the user entity
type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null" json:"username"` // Username for the user
	Email    string `gorm:"uniqueIndex;not null" json:"email"`    // Unique email for the user
	Password string `json:"-"`                                    // Password is hashed and never returned in responses
	// Avatar is optional and can be used to store a profile picture URL.
	Avatar string `json:"avatar,omitempty"`
	// Status is the short free-text line shown under the username.
	Status   string     `gorm:"default:'Hey there! I am using WConnect'" json:"status"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`

	// Privacy preferences. ReadReceipts is stored but does not gate the
	// read sweep; the sweep always notifies.
	LastSeenVisibility string `gorm:"default:'everyone'" json:"lastSeenVisibility"` // everyone | contacts | nobody
	ReadReceipts       *bool  `gorm:"default:true" json:"readReceipts"`

	Contacts []*User `gorm:"many2many:user_contacts;joinForeignKey:UserID;joinReferences:ContactID" json:"-"`
	Blocked  []*User `gorm:"many2many:user_blocks;joinForeignKey:UserID;joinReferences:BlockedID" json:"-"`
}

// Public returns the projection of the user that other components may see.
func (u *User) Public() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Status:    u.Status,
		LastSeen:  u.LastSeen,
		CreatedAt: u.CreatedAt,
	}
}

/** -------------------- DTOs -------------------- */
// Response
type UserResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Avatar    string     `json:"avatar,omitempty"`
	Status    string     `json:"status,omitempty"`
	LastSeen  *time.Time `json:"lastSeen,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Update profile request
type UpdateProfileRequest struct {
	Username           *string `json:"username,omitempty" binding:"omitempty,min=3,max=50"`
	Avatar             *string `json:"avatar,omitempty"`
	Status             *string `json:"status,omitempty" binding:"omitempty,max=140"`
	LastSeenVisibility *string `json:"lastSeenVisibility,omitempty" binding:"omitempty,oneof=everyone contacts nobody"`
	ReadReceipts       *bool   `json:"readReceipts,omitempty"`
}
