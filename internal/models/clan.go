package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ClanStatusWaiting  = "WAITING"
	ClanStatusComplete = "COMPLETE"
	ClanStatusExpired  = "EXPIRED"
)

// Clan is a time-boxed group buy. Invariants: MemberCount <= RequiredCount
// always; status COMPLETE iff MemberCount == RequiredCount. Rows are kept
// forever as a historical record, never deleted.
type Clan struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ProductID     uint            `gorm:"not null;index" json:"product_id"`
	CreatorID     uint            `gorm:"not null;index" json:"creator_id"`
	JoinToken     string          `gorm:"uniqueIndex;size:64;not null" json:"-"` // invite credential; never expose the numeric id for joining
	Status        string          `gorm:"size:20;not null;index" json:"status"`
	MemberCount   int             `gorm:"not null;default:1" json:"member_count"`
	RequiredCount int             `gorm:"not null" json:"required_count"`
	ClanPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"clan_price"`
	ExpiresAt     time.Time       `gorm:"not null;index" json:"expires_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (Clan) TableName() string { return "clans" }

// ClanMember records one user's membership in one clan. The composite unique
// index makes a double join impossible at the storage layer.
type ClanMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	ClanID   uint      `gorm:"not null;uniqueIndex:ux_clan_members_clan_user,priority:1" json:"clan_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:ux_clan_members_clan_user,priority:2;index" json:"user_id"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`
}

func (ClanMember) TableName() string { return "clan_members" }
