package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the purchasable projection of a catalog item. Catalog management
// lives elsewhere; checkout only needs price, availability and stock.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	MakerID     uint            `gorm:"not null;index" json:"maker_id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	SoloPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"solo_price"`
	Currency    string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	TrackStock  bool            `gorm:"not null;default:false" json:"track_stock"`
	IsAvailable bool            `gorm:"not null;default:true;index" json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Product) TableName() string { return "products" }
