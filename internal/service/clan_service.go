package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"clanbuy/internal/models"
	"clanbuy/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotAvailable  = errors.New("product is not available for purchase")
	ErrInvalidRequiredCount = errors.New("required count must be at least 2")
	ErrInvalidClanPrice     = errors.New("clan price must be positive and not exceed the solo price")
)

// ClanService is the group-buy formation engine: it creates clans, admits
// joiners under the capacity/expiry invariants and transitions clan status.
// All cross-request invariants are enforced by the repository's conditional
// writes; this layer holds no mutable state.
type ClanService struct {
	clanRepo    *repository.ClanRepository
	productRepo *repository.ProductRepository
	ttl         time.Duration
}

func NewClanService(clanRepo *repository.ClanRepository, productRepo *repository.ProductRepository, ttl time.Duration) *ClanService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ClanService{clanRepo: clanRepo, productRepo: productRepo, ttl: ttl}
}

// generateJoinToken returns a 32-character hex invite credential. The token is
// the join handle; the numeric clan id is never accepted as one.
func generateJoinToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CreateClan opens a clan with the creator as its first member.
func (s *ClanService) CreateClan(ctx context.Context, productID, creatorID uint, clanPrice decimal.Decimal, requiredCount int) (*models.Clan, error) {
	if requiredCount < 2 {
		return nil, ErrInvalidRequiredCount
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		return nil, ErrProductNotAvailable
	}
	if !clanPrice.IsPositive() || clanPrice.GreaterThan(product.SoloPrice) {
		return nil, ErrInvalidClanPrice
	}
	token, err := generateJoinToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	clan := &models.Clan{
		ProductID:     productID,
		CreatorID:     creatorID,
		JoinToken:     token,
		Status:        models.ClanStatusWaiting,
		MemberCount:   1,
		RequiredCount: requiredCount,
		ClanPrice:     clanPrice,
		ExpiresAt:     now.Add(s.ttl),
		CreatedAt:     now,
	}
	if err := s.clanRepo.Create(ctx, clan); err != nil {
		return nil, err
	}
	return clan, nil
}

// Join admits userID into the clan. Returns whether this join completed the
// clan, which unlocks clan pricing for the members' checkouts.
func (s *ClanService) Join(ctx context.Context, clanID, userID uint) (bool, error) {
	return s.clanRepo.Join(ctx, clanID, userID, time.Now())
}

// JoinByToken resolves an invite token and joins, returning the fresh clan state.
func (s *ClanService) JoinByToken(ctx context.Context, token string, userID uint) (bool, *models.Clan, error) {
	clan, err := s.clanRepo.GetByToken(ctx, token)
	if err != nil {
		return false, nil, err
	}
	completed, err := s.Join(ctx, clan.ID, userID)
	if err != nil {
		return false, nil, err
	}
	clan, err = s.clanRepo.GetByID(ctx, clan.ID)
	if err != nil {
		return false, nil, err
	}
	return completed, clan, nil
}

// GetByToken loads a clan for display, expiring it first if its deadline has
// passed so reads never show a stale WAITING clan.
func (s *ClanService) GetByToken(ctx context.Context, token string) (*models.Clan, error) {
	clan, err := s.clanRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	expired, err := s.clanRepo.ExpireIfStale(ctx, clan.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if expired {
		clan.Status = models.ClanStatusExpired
	}
	return clan, nil
}

// StatsForProduct returns the public aggregate over a product's active clans.
func (s *ClanService) StatsForProduct(ctx context.Context, productID uint) (*repository.ClanStats, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.clanRepo.StatsForProduct(ctx, productID, product.SoloPrice, time.Now())
}
