package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the local projection of an identity owned by the accounts service.
// The only column this service writes is ReferralCode.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	ReferralCode *string        `gorm:"uniqueIndex;size:20" json:"referral_code,omitempty"` // nil until lazily assigned
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }
