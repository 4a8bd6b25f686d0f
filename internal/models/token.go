package models

import (
	"time"
)

// RefreshToken represents a revocable JWT refresh token. UserID plus Role
// identifies the account across the three user tables.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index" json:"userId"`
	Role      Role      `gorm:"size:20" json:"role"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`
}

// PasswordResetToken represents a single-use password reset token.
type PasswordResetToken struct {
	BaseModel
	UserID    string     `gorm:"size:36;index" json:"userId"`
	Role      Role       `gorm:"size:20" json:"role"`
	Token     string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedAt    *time.Time `json:"-"`
}
