// services/referral.go
package services

import (
	"errors"

	"task-reward-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferralBonus is the flat per-referral credit, matching the product's
// published "refer a friend and earn 20" promise.
const ReferralBonus = 20

type ReferralService struct {
	DB *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{DB: db}
}

// Attach links referred to referrer exactly once and pays the flat bonus.
// The edge insert, the referrer's counters, the bonus event and the
// referred user's referrer pointer commit in one transaction; a duplicate
// attach rolls the whole thing back and surfaces ErrAlreadyReferred, so a
// half-applied referral can never exist.
func (s *ReferralService) Attach(referrerID, referredID string) error {
	if referrerID == "" || referredID == "" {
		return ErrInvalidInput
	}
	if referrerID == referredID {
		return ErrSelfReferral
	}
	return storeErr(withRetry(func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			var referred models.User
			if err := tx.Where("identifier = ?", referredID).First(&referred).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUserNotFound
				}
				return err
			}
			if referred.Referrer != nil {
				return ErrAlreadyReferred
			}

			var referrer models.User
			if err := tx.Where("identifier = ?", referrerID).First(&referrer).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUnknownReferrer
				}
				return err
			}

			edge := models.ReferralEdge{
				ID:               uuid.NewString(),
				ReferrerID:       referrerID,
				ReferredID:       referredID,
				ReferralCodeUsed: referrer.ReferralCode,
				BonusAmount:      ReferralBonus,
			}
			if err := tx.Create(&edge).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// The unique index on referred_id backstops a race
					// between two concurrent attach calls.
					return ErrAlreadyReferred
				}
				return err
			}

			// Conditional write keyed on "still unreferred" rather than a
			// blind set; RowsAffected 0 means another attach won.
			res := tx.Model(&models.User{}).
				Where("identifier = ? AND referrer IS NULL", referredID).
				Update("referrer", referrerID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrAlreadyReferred
			}

			bump := tx.Model(&models.User{}).
				Where("identifier = ?", referrerID).
				UpdateColumns(map[string]interface{}{
					"referral_count":        gorm.Expr("referral_count + 1"),
					"weekly_referral_count": gorm.Expr("weekly_referral_count + 1"),
				})
			if bump.Error != nil {
				return bump.Error
			}

			return creditTx(tx, referrerID, ReferralBonus,
				models.ScoreSourceReferralBonus, edge.ID, "referral_bonus:"+referredID)
		})
	}))
}

// Earnings derives the referral payout from the maintained counter. By
// invariant it equals the sum of referral_bonus events for the user.
func (s *ReferralService) Earnings(identifier string) (int64, error) {
	var user models.User
	if err := s.DB.Where("identifier = ?", identifier).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, storeErr(err)
	}
	return user.ReferralCount * ReferralBonus, nil
}

// ListReferrals returns the users a referrer has brought in.
func (s *ReferralService) ListReferrals(identifier string) ([]models.User, error) {
	var users []models.User
	err := s.DB.Where("referrer = ?", identifier).
		Order("created_at DESC").
		Find(&users).Error
	return users, storeErr(err)
}
