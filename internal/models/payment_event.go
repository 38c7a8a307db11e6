package models

import "time"

// PaymentEvent is the webhook idempotency ledger. A row for a gateway event id
// means the event was already applied; the unique index turns the insert into
// a mutual-exclusion gate under concurrent redelivery.
type PaymentEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    string    `gorm:"uniqueIndex;size:255;not null" json:"event_id"`
	Type       string    `gorm:"size:64;not null" json:"type"`
	OrderID    *uint     `gorm:"index" json:"order_id,omitempty"` // nil when the event matched no order
	ReceivedAt time.Time `gorm:"not null" json:"received_at"`
}

func (PaymentEvent) TableName() string { return "payment_events" }
