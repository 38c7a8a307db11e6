package repository

import (
	"context"
	"errors"
	"time"

	"clanbuy/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ClanRepository struct {
	db *gorm.DB
}

func NewClanRepository(db *gorm.DB) *ClanRepository {
	return &ClanRepository{db: db}
}

// Create inserts the clan and its leader membership as one transaction:
// both rows or neither.
func (r *ClanRepository) Create(ctx context.Context, clan *models.Clan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(clan).Error; err != nil {
			return err
		}
		member := models.ClanMember{ClanID: clan.ID, UserID: clan.CreatorID, JoinedAt: clan.CreatedAt}
		return tx.Create(&member).Error
	})
}

func (r *ClanRepository) GetByID(ctx context.Context, id uint) (*models.Clan, error) {
	var clan models.Clan
	if err := r.db.WithContext(ctx).First(&clan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClanNotFound
		}
		return nil, err
	}
	return &clan, nil
}

func (r *ClanRepository) GetByToken(ctx context.Context, token string) (*models.Clan, error) {
	var clan models.Clan
	if err := r.db.WithContext(ctx).Where("join_token = ?", token).First(&clan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClanNotFound
		}
		return nil, err
	}
	return &clan, nil
}

// Join admits userID into the clan as a single transaction. The membership
// insert and the capacity-guarded increment commit or roll back together, so
// the last-slot race resolves to exactly one winner at the storage layer.
// Returns whether this join completed the clan.
func (r *ClanRepository) Join(ctx context.Context, clanID, userID uint, now time.Time) (bool, error) {
	// A join attempt on a stale clan expires it in the same check. The
	// transition commits outside the join transaction so the rejected join
	// cannot roll it back.
	expired, err := r.ExpireIfStale(ctx, clanID, now)
	if err != nil {
		return false, err
	}
	if expired {
		return false, ErrClanExpired
	}

	completed := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member := models.ClanMember{ClanID: clanID, UserID: userID, JoinedAt: now}
		if err := tx.Create(&member).Error; err != nil {
			if IsDuplicateKey(err) {
				return ErrAlreadyMember
			}
			return err
		}

		// Increment only while WAITING and below capacity; the WHERE clause is
		// the capacity check, so there is no read-then-write window.
		res := tx.Model(&models.Clan{}).
			Where("id = ? AND status = ? AND member_count < required_count",
				clanID, models.ClanStatusWaiting).
			Update("member_count", gorm.Expr("member_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var clan models.Clan
			if err := tx.First(&clan, clanID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrClanNotFound
				}
				return err
			}
			switch clan.Status {
			case models.ClanStatusExpired:
				return ErrClanExpired
			case models.ClanStatusComplete:
				return ErrClanAlreadyComplete
			default:
				return ErrClanFull
			}
		}

		var clan models.Clan
		if err := tx.First(&clan, clanID).Error; err != nil {
			return err
		}
		if clan.MemberCount == clan.RequiredCount {
			if err := tx.Model(&models.Clan{}).Where("id = ?", clanID).
				Updates(map[string]interface{}{
					"status":       models.ClanStatusComplete,
					"completed_at": now,
				}).Error; err != nil {
				return err
			}
			completed = true
		}
		return nil
	})
	return completed, err
}

// IsMember reports whether userID has a membership row in clanID.
func (r *ClanRepository) IsMember(ctx context.Context, clanID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ClanMember{}).
		Where("clan_id = ? AND user_id = ?", clanID, userID).
		Count(&count).Error
	return count > 0, err
}

// ExpireIfStale expires the given clan when its deadline has passed. Used on
// read paths so stale clans stop appearing active without a join attempt.
func (r *ClanRepository) ExpireIfStale(ctx context.Context, clanID uint, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Clan{}).
		Where("id = ? AND status = ? AND expires_at < ?", clanID, models.ClanStatusWaiting, now).
		Update("status", models.ClanStatusExpired)
	return res.RowsAffected > 0, res.Error
}

// ExpireStale transitions every WAITING clan past its deadline to EXPIRED and
// returns how many rows changed. Correctness never depends on when this runs;
// Join re-checks expiry itself.
func (r *ClanRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Clan{}).
		Where("status = ? AND expires_at < ?", models.ClanStatusWaiting, now).
		Update("status", models.ClanStatusExpired)
	return res.RowsAffected, res.Error
}

// ClanStats is the public aggregate for a product's active clans.
type ClanStats struct {
	ActiveClans     int64           `json:"active_clans"`
	TotalMembers    int64           `json:"total_members"`
	AverageDiscount decimal.Decimal `json:"average_discount"` // percent off solo price
}

// StatsForProduct aggregates WAITING, unexpired clans for one product.
func (r *ClanRepository) StatsForProduct(ctx context.Context, productID uint, soloPrice decimal.Decimal, now time.Time) (*ClanStats, error) {
	type row struct {
		Count        int64
		Members      int64
		AvgClanPrice decimal.NullDecimal
	}
	var agg row
	err := r.db.WithContext(ctx).Model(&models.Clan{}).
		Select("COUNT(*) AS count, COALESCE(SUM(member_count), 0) AS members, AVG(clan_price) AS avg_clan_price").
		Where("product_id = ? AND status = ? AND expires_at > ?", productID, models.ClanStatusWaiting, now).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	stats := &ClanStats{ActiveClans: agg.Count, TotalMembers: agg.Members}
	if agg.Count > 0 && agg.AvgClanPrice.Valid && soloPrice.IsPositive() {
		hundred := decimal.NewFromInt(100)
		stats.AverageDiscount = soloPrice.Sub(agg.AvgClanPrice.Decimal).
			Div(soloPrice).Mul(hundred).Round(2)
	}
	return stats, nil
}
