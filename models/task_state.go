// models/task_state.go
package models

import "time"

// TaskState statuses. "submitted" is rendered as "validating" in
// user-facing text by the presentation layer.
const (
	TaskStateSubmitted = "submitted"
	TaskStateApproved  = "approved"
	TaskStateRejected  = "rejected"
	TaskStateClaimed   = "claimed"
)

// TaskState tracks one (user, task) pair through submit → validate → claim.
// Cycle increments each time a recurring task is re-submitted after its
// cooldown; claim history survives in ClaimCount/LastClaimedAt instead of
// being inferred from wall-clock arithmetic.
type TaskState struct {
	ID             string `gorm:"primaryKey" json:"id"`
	UserIdentifier string `gorm:"uniqueIndex:idx_task_states_user_task;not null" json:"user_identifier"`
	TaskID         string `gorm:"uniqueIndex:idx_task_states_user_task;not null" json:"task_id"`

	Status   string `gorm:"not null" json:"status"`
	Evidence string `json:"evidence"` // opaque string, typically a URL; never fetched by this service
	Cycle    int    `gorm:"default:1" json:"cycle"`

	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	ValidatedAt   *time.Time `json:"validated_at,omitempty"`
	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`
	LastClaimedAt *time.Time `json:"last_claimed_at,omitempty"` // gates recurring re-submission
	ClaimCount    int64      `gorm:"default:0" json:"claim_count"`

	Timestamps
}
