package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"clanbuy/config"
	"clanbuy/internal/models"
	"clanbuy/internal/repository"
	"clanbuy/pkg/payment"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrCurrencyMismatch    = errors.New("currency does not match the product currency")
	ErrClanNotComplete     = errors.New("clan pricing requires a completed clan")
	ErrNotClanMember       = errors.New("buyer is not a member of the referenced clan")
	ErrClanProductMismatch = errors.New("clan does not belong to this product")
	ErrGatewayFailure      = errors.New("payment gateway checkout failed")
)

// CheckoutService turns a purchase intent (solo or completed clan) into a
// PENDING order and a gateway checkout session. It never marks an order PAID;
// that is the webhook reconciler's job.
type CheckoutService struct {
	orderRepo   *repository.OrderRepository
	productRepo *repository.ProductRepository
	clanRepo    *repository.ClanRepository
	provider    payment.Provider
	cfg         *config.PaymentConfig
}

func NewCheckoutService(
	orderRepo *repository.OrderRepository,
	productRepo *repository.ProductRepository,
	clanRepo *repository.ClanRepository,
	provider payment.Provider,
	cfg *config.PaymentConfig,
) *CheckoutService {
	return &CheckoutService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		clanRepo:    clanRepo,
		provider:    provider,
		cfg:         cfg,
	}
}

type CheckoutResult struct {
	Order       *models.Order
	CheckoutURL string
	SessionID   string
}

// Checkout resolves the unit price, reserves stock together with the PENDING
// order in one transaction, then requests a gateway session. The gateway call
// runs after that transaction committed, never inside it; on gateway failure
// the order stays PENDING for later reconciliation.
func (s *CheckoutService) Checkout(ctx context.Context, buyerID, productID uint, quantity int, currency string, clanID *uint) (*CheckoutResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		return nil, ErrProductNotAvailable
	}
	if currency == "" {
		currency = product.Currency
	}
	if currency != product.Currency {
		return nil, ErrCurrencyMismatch
	}

	unitPrice := product.SoloPrice
	if clanID != nil {
		clan, err := s.clanRepo.GetByID(ctx, *clanID)
		if err != nil {
			return nil, err
		}
		if clan.ProductID != productID {
			return nil, ErrClanProductMismatch
		}
		if clan.Status != models.ClanStatusComplete {
			return nil, ErrClanNotComplete
		}
		isMember, err := s.clanRepo.IsMember(ctx, clan.ID, buyerID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, ErrNotClanMember
		}
		unitPrice = clan.ClanPrice
	}

	order := &models.Order{
		BuyerID:         buyerID,
		ProductID:       productID,
		ClanID:          clanID,
		Quantity:        quantity,
		TotalPrice:      unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		Currency:        currency,
		Status:          models.OrderStatusPending,
		PaymentProvider: s.provider.Name(),
	}
	if err := s.orderRepo.CreateReserving(ctx, order, product.TrackStock); err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout())
	defer cancel()
	session, err := s.provider.CreateCheckoutSession(gctx, payment.CheckoutRequest{
		OrderID:     order.ID,
		Amount:      order.TotalPrice,
		Currency:    order.Currency,
		Description: fmt.Sprintf("%s x%d", product.Name, quantity),
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
	})
	if err != nil {
		// The session may still exist gateway-side; leave the order PENDING
		// so a late webhook can settle it.
		log.Printf("[checkout] gateway session failed order_id=%d: %v", order.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}
	if err := s.orderRepo.SetCheckoutSession(ctx, order.ID, session.ID); err != nil {
		return nil, err
	}
	order.CheckoutSessionID = &session.ID

	return &CheckoutResult{Order: order, CheckoutURL: session.URL, SessionID: session.ID}, nil
}

func (s *CheckoutService) gatewayTimeout() time.Duration {
	if s.cfg.GatewayTimeout > 0 {
		return s.cfg.GatewayTimeout
	}
	return 15 * time.Second
}
