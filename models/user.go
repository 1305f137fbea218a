// models/user.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the single per-user record shared by the score ledger, the
// referral graph and the task lifecycle. The ledger owns Score/WeeklyScore,
// the referral graph owns the referral fields; the field sets are disjoint
// so updates from the two never touch the same columns.
type User struct {
	ID         string `gorm:"primaryKey" json:"id"`
	Identifier string `gorm:"uniqueIndex;not null" json:"identifier"` // username or numeric account id
	Username   string `gorm:"index" json:"username"`
	ChatID     string `json:"chat_id,omitempty"` // contact handle used by the bot layer for notifications

	// Ledger counters. O(1) hot path; score_events is the audit trail.
	Score       int64 `json:"score" gorm:"default:0"`
	WeeklyScore int64 `json:"weekly_score" gorm:"default:0"`

	// Referral graph
	ReferralCode        string  `gorm:"uniqueIndex" json:"referral_code"`
	Referrer            *string `gorm:"index" json:"referrer,omitempty"` // identifier of the referrer, set at most once
	ReferralCount       int64   `json:"referral_count" gorm:"default:0"`
	WeeklyReferralCount int64   `json:"weekly_referral_count" gorm:"default:0"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
