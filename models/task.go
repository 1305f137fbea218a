// models/task.go
package models

import "time"

const (
	TaskStatusActive   = "active"
	TaskStatusInactive = "inactive"
)

// Task is a catalog entry users can complete for points. RecurInterval is
// in hours; nil means one-off.
type Task struct {
	ID            string `gorm:"primaryKey" json:"id"`
	Description   string `gorm:"not null" json:"description"`
	Slug          string `gorm:"index" json:"slug"`
	Link          string `json:"link"`
	Score         int64  `gorm:"not null" json:"score"` // points granted on claim
	Icon          string `json:"icon"`                  // e.g. CDN URL from the icon upload endpoint
	RecurInterval *int   `json:"recur_interval,omitempty"`
	Status        string `gorm:"default:'active'" json:"status"` // active | inactive

	Timestamps
}

func (t *Task) IsRecurring() bool {
	return t.RecurInterval != nil && *t.RecurInterval > 0
}

// Cooldown is how long a recurring task stays locked after a claim.
func (t *Task) Cooldown() time.Duration {
	if !t.IsRecurring() {
		return 0
	}
	return time.Duration(*t.RecurInterval) * time.Hour
}
