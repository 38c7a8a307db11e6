package models

import "time"

// ReferralClick is an append-only attribution record. Rows are never updated
// or deleted here; retention is handled out of band.
type ReferralClick struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ReferralCode string    `gorm:"size:20;not null;index" json:"referral_code"`
	VisitorID    string    `gorm:"size:64;not null" json:"visitor_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (ReferralClick) TableName() string { return "referral_clicks" }
