package service

import (
	"context"
	"fmt"
	"testing"

	"clanbuy/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newWebhookService(db *gorm.DB) *WebhookService {
	return NewWebhookService(db, NewRevenueSplitter(decimal.RequireFromString("0.10")))
}

func seedPendingOrder(t *testing.T, db *gorm.DB, total, sessionID string) *models.Order {
	t.Helper()
	sid := sessionID
	order := &models.Order{
		BuyerID:         1,
		ProductID:       1,
		Quantity:        1,
		TotalPrice:      decimal.RequireFromString(total),
		Currency:        "USD",
		Status:          models.OrderStatusPending,
		PaymentProvider: "stub",
		CheckoutSessionID: func() *string {
			if sid == "" {
				return nil
			}
			return &sid
		}(),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func sessionCompletedEvent(eventID, sessionID string, orderID uint) *GatewayEvent {
	evt := &GatewayEvent{ID: eventID, Type: EventCheckoutCompleted}
	evt.Data.Object.ID = sessionID
	evt.Data.Object.PaymentIntent = "pi_" + eventID
	if orderID != 0 {
		evt.Data.Object.Metadata = map[string]string{"order_id": fmt.Sprint(orderID)}
	}
	return evt
}

func TestApplyMarksOrderPaidWithSplit(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(db)
	order := seedPendingOrder(t, db, "99.99", "cs_1")

	applied, err := svc.Apply(context.Background(), sessionCompletedEvent("evt_1", "cs_1", order.ID))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !applied {
		t.Fatal("event not applied")
	}

	var got models.Order
	db.First(&got, order.ID)
	if got.Status != models.OrderStatusPaid {
		t.Errorf("status = %s, want PAID", got.Status)
	}
	if got.PaymentIntentID == nil || *got.PaymentIntentID != "pi_evt_1" {
		t.Error("payment intent id not recorded")
	}
	if !got.PlatformFee.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("platformFee = %s, want 10.00", got.PlatformFee)
	}
	if !got.MakerRevenue.Equal(decimal.RequireFromString("89.99")) {
		t.Errorf("makerRevenue = %s, want 89.99", got.MakerRevenue)
	}
	if !got.PlatformFee.Add(got.MakerRevenue).Equal(got.TotalPrice) {
		t.Error("fee + revenue != total")
	}
	if got.PaidAt == nil {
		t.Error("paidAt not set")
	}
}

// Redelivering the same event id is a successful no-op: the order is PAID
// exactly once and the ledger keeps a single row.
func TestApplyIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(db)
	order := seedPendingOrder(t, db, "50.00", "cs_1")
	ctx := context.Background()

	evt := sessionCompletedEvent("evt_dup", "cs_1", order.ID)
	if applied, err := svc.Apply(ctx, evt); err != nil || !applied {
		t.Fatalf("first delivery: applied=%v err=%v", applied, err)
	}
	applied, err := svc.Apply(ctx, evt)
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if applied {
		t.Error("second delivery reported as applied")
	}

	var ledger int64
	db.Model(&models.PaymentEvent{}).Where("event_id = ?", "evt_dup").Count(&ledger)
	if ledger != 1 {
		t.Errorf("ledger rows = %d, want 1", ledger)
	}
	var got models.Order
	db.First(&got, order.ID)
	if got.Status != models.OrderStatusPaid {
		t.Errorf("status = %s, want PAID", got.Status)
	}
}

func TestApplyPaymentFailed(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(db)
	order := seedPendingOrder(t, db, "50.00", "")
	pi := "pi_abc"
	db.Model(order).Update("payment_intent_id", pi)

	evt := &GatewayEvent{ID: "evt_fail", Type: EventPaymentFailed}
	evt.Data.Object.ID = pi
	applied, err := svc.Apply(context.Background(), evt)
	if err != nil || !applied {
		t.Fatalf("applied=%v err=%v", applied, err)
	}
	var got models.Order
	db.First(&got, order.ID)
	if got.Status != models.OrderStatusFailed {
		t.Errorf("status = %s, want FAILED", got.Status)
	}
}

// Terminal states never get overwritten by late or out-of-order deliveries.
func TestApplyNeverOverwritesTerminalState(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(db)
	order := seedPendingOrder(t, db, "50.00", "cs_1")
	ctx := context.Background()

	if _, err := svc.Apply(ctx, sessionCompletedEvent("evt_pay", "cs_1", order.ID)); err != nil {
		t.Fatalf("pay: %v", err)
	}

	// A failure event arriving after settlement is acknowledged but ignored.
	late := &GatewayEvent{ID: "evt_late_fail", Type: EventPaymentFailed}
	late.Data.Object.Metadata = map[string]string{"order_id": fmt.Sprint(order.ID)}
	applied, err := svc.Apply(ctx, late)
	if err != nil {
		t.Fatalf("late fail: %v", err)
	}
	if applied {
		t.Error("late failure was applied over PAID")
	}
	var got models.Order
	db.First(&got, order.ID)
	if got.Status != models.OrderStatusPaid {
		t.Errorf("status = %s, want PAID", got.Status)
	}
}

func TestApplyRefundExitsPaidOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(db)
	order := seedPendingOrder(t, db, "50.00", "cs_1")
	ctx := context.Background()

	// Refund before payment: acknowledged, nothing changes.
	refund := &GatewayEvent{ID: "evt_refund_early", Type: EventChargeRefunded}
	refund.Data.Object.Metadata = map[string]string{"order_id": fmt.Sprint(order.ID)}
	if applied, err := svc.Apply(ctx, refund); err != nil || applied {
		t.Fatalf("early refund: applied=%v err=%v", applied, err)
	}

	if _, err := svc.Apply(ctx, sessionCompletedEvent("evt_pay", "cs_1", order.ID)); err != nil {
		t.Fatalf("pay: %v", err)
	}

	refund2 := &GatewayEvent{ID: "evt_refund", Type: EventChargeRefunded}
	refund2.Data.Object.Metadata = map[string]string{"order_id": fmt.Sprint(order.ID)}
	applied, err := svc.Apply(ctx, refund2)
	if err != nil || !applied {
		t.Fatalf("refund: applied=%v err=%v", applied, err)
	}
	var got models.Order
	db.First(&got, order.ID)
	if got.Status != models.OrderStatusRefunded {
		t.Errorf("status = %s, want REFUNDED", got.Status)
	}
}

func TestApplyUnknownTypeAndUnknownOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newWebhookService(db)
	order := seedPendingOrder(t, db, "50.00", "cs_1")
	ctx := context.Background()

	odd := &GatewayEvent{ID: "evt_odd", Type: "customer.updated"}
	odd.Data.Object.ID = "cs_1"
	if applied, err := svc.Apply(ctx, odd); err != nil || applied {
		t.Errorf("unknown type: applied=%v err=%v, want ack without effect", applied, err)
	}

	ghost := sessionCompletedEvent("evt_ghost", "cs_does_not_exist", 0)
	if applied, err := svc.Apply(ctx, ghost); err != nil || applied {
		t.Errorf("unknown order: applied=%v err=%v, want ack without effect", applied, err)
	}

	var got models.Order
	db.First(&got, order.ID)
	if got.Status != models.OrderStatusPending {
		t.Errorf("status = %s, want still PENDING", got.Status)
	}
}
