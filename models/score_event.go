// models/score_event.go
package models

import "time"

// ScoreEventSource identifies what caused a credit
type ScoreEventSource string

const (
	ScoreSourceTaskClaim      ScoreEventSource = "task_claim"
	ScoreSourceReferralBonus  ScoreEventSource = "referral_bonus"
	ScoreSourceExternalCredit ScoreEventSource = "external_credit"
)

// ScoreEvent is one append-only ledger entry. Rows are never updated or
// deleted; a user's Score must equal the sum of their event amounts.
type ScoreEvent struct {
	ID             string           `gorm:"primaryKey" json:"id"`
	UserIdentifier string           `gorm:"index;not null" json:"user_identifier"`
	Amount         int64            `gorm:"not null" json:"amount"` // positive only, no debits exist
	Source         ScoreEventSource `gorm:"not null" json:"source"`
	Reference      string           `json:"reference,omitempty"` // originating task state or referral edge id

	// IdempotencyKey dedupes retried credits. Unique when set; NULL rows
	// (plain external credits) never collide.
	IdempotencyKey *string `gorm:"uniqueIndex" json:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
