package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"clanbuy/internal/models"
	"clanbuy/internal/repository"

	"gorm.io/gorm"
)

// Gateway event types. Delivery is at-least-once and possibly out of order;
// everything below is written to tolerate that.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
	EventChargeRefunded    = "charge.refunded"
)

// GatewayEvent is the parsed webhook payload.
type GatewayEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string            `json:"id"`             // session id or payment-intent id depending on type
			PaymentIntent string            `json:"payment_intent"` // set on checkout.session.* objects
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

func ParseGatewayEvent(raw []byte) (*GatewayEvent, error) {
	var evt GatewayEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return nil, err
	}
	if evt.ID == "" {
		return nil, errors.New("gateway event missing id")
	}
	return &evt, nil
}

// WebhookService applies gateway events to orders with at-most-once effect.
// It owns the transaction spanning the payment_events ledger and the orders
// table, which is why it holds the DB handle rather than repositories.
type WebhookService struct {
	db       *gorm.DB
	splitter *RevenueSplitter
}

func NewWebhookService(db *gorm.DB, splitter *RevenueSplitter) *WebhookService {
	return &WebhookService{db: db, splitter: splitter}
}

// errEventSeen aborts the transaction when the ledger already has the event.
var errEventSeen = errors.New("event already recorded")

// Apply processes one verified event. Returns whether an order actually
// changed state; duplicates and unknown types return (false, nil) so the
// gateway gets a success and stops retrying.
func (s *WebhookService) Apply(ctx context.Context, evt *GatewayEvent) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The unique insert is the idempotency gate: under concurrent
		// redelivery exactly one transaction gets past this line.
		ledger := models.PaymentEvent{EventID: evt.ID, Type: evt.Type, ReceivedAt: time.Now()}
		if err := tx.Create(&ledger).Error; err != nil {
			if repository.IsDuplicateKey(err) {
				return errEventSeen
			}
			return err
		}

		order, err := s.locateOrder(tx, evt)
		if err != nil {
			return err
		}
		if order == nil {
			// No matching order: acknowledge so the gateway stops retrying,
			// but keep the ledger row.
			log.Printf("[webhook] event %s (%s) matched no order", evt.ID, evt.Type)
			return nil
		}
		if err := tx.Model(&ledger).Update("order_id", order.ID).Error; err != nil {
			return err
		}

		switch evt.Type {
		case EventCheckoutCompleted, EventPaymentSucceeded:
			fee, revenue := s.splitter.Split(order.TotalPrice)
			intentID := evt.intentID()
			now := time.Now()
			updates := map[string]interface{}{
				"status":        models.OrderStatusPaid,
				"platform_fee":  fee,
				"maker_revenue": revenue,
				"paid_at":       now,
			}
			if intentID != "" {
				updates["payment_intent_id"] = intentID
			}
			// The status guard protects terminal states from late or
			// out-of-order deliveries.
			res := tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			applied = res.RowsAffected > 0
		case EventPaymentFailed:
			res := tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
				Update("status", models.OrderStatusFailed)
			if res.Error != nil {
				return res.Error
			}
			applied = res.RowsAffected > 0
		case EventChargeRefunded:
			// The only legal exit from PAID.
			res := tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", order.ID, models.OrderStatusPaid).
				Update("status", models.OrderStatusRefunded)
			if res.Error != nil {
				return res.Error
			}
			applied = res.RowsAffected > 0
		default:
			// Unknown types are acknowledged without effect.
		}
		return nil
	})
	if errors.Is(err, errEventSeen) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return applied, nil
}

// locateOrder finds the order an event refers to: embedded order id first,
// then checkout session id, then payment-intent id. Returns nil when nothing
// matches.
func (s *WebhookService) locateOrder(tx *gorm.DB, evt *GatewayEvent) (*models.Order, error) {
	if raw, ok := evt.Data.Object.Metadata["order_id"]; ok {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			var order models.Order
			err := tx.First(&order, uint(id)).Error
			if err == nil {
				return &order, nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
	}
	ref := evt.Data.Object.ID
	if ref == "" {
		return nil, nil
	}
	var order models.Order
	err := tx.Where("checkout_session_id = ? OR payment_intent_id = ?", ref, ref).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// intentID returns the payment-intent reference carried by the event.
func (e *GatewayEvent) intentID() string {
	if e.Data.Object.PaymentIntent != "" {
		return e.Data.Object.PaymentIntent
	}
	if e.Type == EventPaymentSucceeded || e.Type == EventPaymentFailed {
		return e.Data.Object.ID
	}
	return ""
}
