package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StubProvider is a no-op provider for development and tests.
type StubProvider struct{}

func (s *StubProvider) Name() string { return "stub" }

func (s *StubProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	id := "cs_stub_" + uuid.NewString()
	return &CheckoutSession{
		ID:        id,
		URL:       fmt.Sprintf("https://checkout.stub.local/pay/%s", id),
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}, nil
}
