package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRequest asks the gateway for a hosted checkout session. OrderID is
// carried in session metadata so the webhook can find the order later.
type CheckoutRequest struct {
	OrderID     uint
	Amount      decimal.Decimal
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type CheckoutSession struct {
	ID        string
	URL       string
	ExpiresAt time.Time
}

// Provider is the outbound payment-gateway protocol. Confirmation never comes
// from here; it arrives asynchronously on the webhook.
type Provider interface {
	Name() string
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}
