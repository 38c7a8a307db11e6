package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending  = "PENDING"
	OrderStatusPaid     = "PAID"
	OrderStatusFailed   = "FAILED"
	OrderStatusRefunded = "REFUNDED"
)

// Order is created PENDING by checkout and only ever transitioned by the
// webhook reconciler. PAID and FAILED are terminal except for the
// PAID -> REFUNDED exit.
type Order struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	BuyerID           uint            `gorm:"not null;index" json:"buyer_id"`
	ProductID         uint            `gorm:"not null;index" json:"product_id"`
	ClanID            *uint           `gorm:"index" json:"clan_id,omitempty"` // set when clan pricing was applied
	Quantity          int             `gorm:"not null" json:"quantity"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Currency          string          `gorm:"size:3;not null" json:"currency"`
	Status            string          `gorm:"size:20;not null;index" json:"status"`
	PaymentProvider   string          `gorm:"size:50;not null" json:"payment_provider"`
	CheckoutSessionID *string         `gorm:"uniqueIndex;size:255" json:"checkout_session_id,omitempty"`
	PaymentIntentID   *string         `gorm:"index;size:255" json:"payment_intent_id,omitempty"`
	PlatformFee       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"platform_fee"`
	MakerRevenue      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"maker_revenue"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }
