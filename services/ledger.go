// services/ledger.go
package services

import (
	"errors"

	"task-reward-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// Credit appends one ScoreEvent and bumps both counters in the same
// transaction. Amount must be positive; no debit operation exists. A
// non-empty idempotencyKey makes retries safe: a credit whose key was
// already posted is a silent no-op.
func (s *LedgerService) Credit(identifier string, amount int64, source models.ScoreEventSource, reference, idempotencyKey string) error {
	if identifier == "" || amount <= 0 {
		return ErrInvalidInput
	}
	return storeErr(withRetry(func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			return creditTx(tx, identifier, amount, source, reference, idempotencyKey)
		})
	}))
}

// creditTx is the transactional body of Credit. Claim and referral attach
// call it inside their own transactions so the status flip / edge insert
// and the credit commit or roll back as one unit.
func creditTx(tx *gorm.DB, identifier string, amount int64, source models.ScoreEventSource, reference, idempotencyKey string) error {
	if idempotencyKey != "" {
		var n int64
		if err := tx.Model(&models.ScoreEvent{}).
			Where("idempotency_key = ?", idempotencyKey).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil // already posted by an earlier attempt
		}
	}

	// Single conditional update, never read-then-write: two racing
	// credits must both land.
	res := tx.Model(&models.User{}).
		Where("identifier = ?", identifier).
		UpdateColumns(map[string]interface{}{
			"score":        gorm.Expr("score + ?", amount),
			"weekly_score": gorm.Expr("weekly_score + ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	event := models.ScoreEvent{
		ID:             uuid.NewString(),
		UserIdentifier: identifier,
		Amount:         amount,
		Source:         source,
		Reference:      reference,
	}
	if idempotencyKey != "" {
		event.IdempotencyKey = &idempotencyKey
	}
	return tx.Create(&event).Error
}

// TotalScore reads the maintained lifetime counter.
func (s *LedgerService) TotalScore(identifier string) (int64, error) {
	user, err := s.lookup(identifier)
	if err != nil {
		return 0, err
	}
	return user.Score, nil
}

// WeeklyScore reads the rotating counter.
func (s *LedgerService) WeeklyScore(identifier string) (int64, error) {
	user, err := s.lookup(identifier)
	if err != nil {
		return 0, err
	}
	return user.WeeklyScore, nil
}

func (s *LedgerService) lookup(identifier string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("identifier = ?", identifier).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr(err)
	}
	return &user, nil
}

// Events returns the user's ledger entries, oldest first.
func (s *LedgerService) Events(identifier string) ([]models.ScoreEvent, error) {
	var events []models.ScoreEvent
	err := s.DB.Where("user_identifier = ?", identifier).
		Order("created_at ASC").
		Find(&events).Error
	return events, storeErr(err)
}

// ResetWeekly zeroes the rotating counters for every user. Lifetime
// score, referral counts and the event log are untouched. Running it
// twice in the same window is a no-op on already-zero rows; the external
// scheduler owns the cadence. A credit landing mid-reset may count toward
// either week, which is accepted noise.
func (s *LedgerService) ResetWeekly() (int64, error) {
	res := s.DB.Model(&models.User{}).
		Where("weekly_score <> 0 OR weekly_referral_count <> 0").
		UpdateColumns(map[string]interface{}{
			"weekly_score":          0,
			"weekly_referral_count": 0,
		})
	return res.RowsAffected, storeErr(res.Error)
}

// Audit re-derives the lifetime score from the event log and returns it
// next to the maintained counter. The two must match at every
// observation point; the audit worker logs any drift.
func (s *LedgerService) Audit(identifier string) (counter int64, derived int64, err error) {
	user, err := s.lookup(identifier)
	if err != nil {
		return 0, 0, err
	}
	var sum struct{ Total int64 }
	if err := s.DB.Model(&models.ScoreEvent{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_identifier = ?", identifier).
		Scan(&sum).Error; err != nil {
		return 0, 0, storeErr(err)
	}
	return user.Score, sum.Total, nil
}
