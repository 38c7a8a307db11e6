package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"clanbuy/internal/models"

	"gorm.io/gorm"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// generateReferralCode returns an 8-character lowercase hex code.
func generateReferralCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetOrCreateCode returns the user's referral code, lazily assigning a fresh
// unique one on first use. Safe to call repeatedly: concurrent callers race on
// the conditional update and both end up reading the same committed code.
func (r *ReferralRepository) GetOrCreateCode(ctx context.Context, userID uint) (string, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return "", err
	}
	if user.ReferralCode != nil {
		return *user.ReferralCode, nil
	}
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", err
		}
		res := r.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ? AND referral_code IS NULL", userID).
			Update("referral_code", code)
		if res.Error != nil {
			if IsDuplicateKey(res.Error) {
				continue // code collision, retry with a new one
			}
			return "", res.Error
		}
		if res.RowsAffected == 0 {
			// Another request assigned a code first; use theirs.
			if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
				return "", err
			}
			if user.ReferralCode != nil {
				return *user.ReferralCode, nil
			}
			continue
		}
		return code, nil
	}
	return "", fmt.Errorf("failed to generate a unique referral code after retries")
}

// TrackClick records attribution for a referral code. Unknown codes are
// dropped silently: tracking must never fail the visitor's request.
func (r *ReferralRepository) TrackClick(ctx context.Context, code, visitorID string) error {
	var user models.User
	err := r.db.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	click := models.ReferralClick{ReferralCode: code, VisitorID: visitorID}
	return r.db.WithContext(ctx).Create(&click).Error
}
