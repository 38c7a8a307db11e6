package repository

import (
	"context"
	"errors"
	"time"

	"clanbuy/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateReserving inserts the PENDING order. When reserveStock is set the
// insert shares a transaction with a guarded stock decrement, so two checkouts
// cannot both take the last unit.
func (r *OrderRepository) CreateReserving(ctx context.Context, order *models.Order, reserveStock bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if reserveStock {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", order.ProductID, order.Quantity).
				Update("stock", gorm.Expr("stock - ?", order.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}
		return tx.Create(order).Error
	})
}

func (r *OrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetByIDForBuyer(ctx context.Context, id, buyerID uint) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Where("id = ? AND buyer_id = ?", id, buyerID).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

// SetCheckoutSession persists the gateway session id after the gateway call
// succeeded. Deliberately outside any larger transaction: the gateway call
// must never happen with a transaction held open.
func (r *OrderRepository) SetCheckoutSession(ctx context.Context, orderID uint, sessionID string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("checkout_session_id", sessionID).Error
}

// ListStalePending returns PENDING orders created before the cutoff, for
// out-of-band reconciliation tooling.
func (r *OrderRepository) ListStalePending(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var list []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.OrderStatusPending, cutoff).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}
