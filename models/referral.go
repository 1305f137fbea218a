// models/referral.go
package models

// ReferralEdge links a referred user to the referrer who brought them in.
// At most one edge may exist per referred user; the unique index on
// ReferredID backs that rule at the schema level. Created once, never
// updated.
type ReferralEdge struct {
	ID         string `gorm:"primaryKey" json:"id"`
	ReferrerID string `gorm:"index;not null" json:"referrer_id"`      // User.Identifier
	ReferredID string `gorm:"uniqueIndex;not null" json:"referred_id"` // User.Identifier

	ReferralCodeUsed string `json:"referral_code_used,omitempty"`
	BonusAmount      int64  `json:"bonus_amount"`

	Timestamps
}
