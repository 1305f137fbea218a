// services/lifecycle.go
package services

import (
	"errors"
	"fmt"
	"time"

	"task-reward-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Validation decisions accepted by Validate.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

type LifecycleService struct {
	DB *gorm.DB
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{DB: db}
}

// SubmitEvidence opens (or reopens) a cycle for the (user, task) pair.
// Legal with no prior state, from rejected, and from claimed once a
// recurring task's cooldown has elapsed.
func (s *LifecycleService) SubmitEvidence(identifier, taskID, evidence string) (*models.TaskState, error) {
	if identifier == "" || taskID == "" || evidence == "" {
		return nil, ErrInvalidInput
	}
	var out models.TaskState
	err := withRetry(func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			var task models.Task
			if err := tx.Where("id = ? AND status = ?", taskID, models.TaskStatusActive).
				First(&task).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTaskNotFound
				}
				return err
			}
			var userCount int64
			if err := tx.Model(&models.User{}).
				Where("identifier = ?", identifier).
				Count(&userCount).Error; err != nil {
				return err
			}
			if userCount == 0 {
				return ErrUserNotFound
			}

			now := time.Now()
			var state models.TaskState
			err := tx.Where("user_identifier = ? AND task_id = ?", identifier, taskID).
				First(&state).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				state = models.TaskState{
					ID:             uuid.NewString(),
					UserIdentifier: identifier,
					TaskID:         taskID,
					Status:         models.TaskStateSubmitted,
					Evidence:       evidence,
					Cycle:          1,
					SubmittedAt:    &now,
				}
				if cerr := tx.Create(&state).Error; cerr != nil {
					if errors.Is(cerr, gorm.ErrDuplicatedKey) {
						return ErrAlreadySubmitted // concurrent first submit
					}
					return cerr
				}
				out = state
				return nil
			}
			if err != nil {
				return err
			}

			cycle := state.Cycle
			switch state.Status {
			case models.TaskStateSubmitted, models.TaskStateApproved:
				return ErrAlreadySubmitted
			case models.TaskStateRejected:
				// re-submission allowed immediately, same cycle
			case models.TaskStateClaimed:
				if !task.IsRecurring() {
					return ErrAlreadyClaimed
				}
				if state.LastClaimedAt != nil && now.Sub(*state.LastClaimedAt) < task.Cooldown() {
					return ErrCooldownActive
				}
				cycle++
			default:
				return ErrInvalidTransition
			}

			// CAS on the status we just read; a concurrent transition
			// zeroes RowsAffected and the whole submit rolls back.
			res := tx.Model(&models.TaskState{}).
				Where("id = ? AND status = ?", state.ID, state.Status).
				Updates(map[string]interface{}{
					"status":       models.TaskStateSubmitted,
					"evidence":     evidence,
					"cycle":        cycle,
					"submitted_at": now,
					"validated_at": nil,
					"claimed_at":   nil,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInvalidTransition
			}
			return tx.Where("id = ?", state.ID).First(&out).Error
		})
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &out, nil
}

// Validate applies the reviewer's decision to a submitted state. Approval
// posts nothing; the user must still claim, so a mis-click in the review
// UI can never silently credit points.
func (s *LifecycleService) Validate(identifier, taskID, decision string) (*models.TaskState, error) {
	if identifier == "" || taskID == "" {
		return nil, ErrInvalidInput
	}
	var target string
	switch decision {
	case DecisionApprove:
		target = models.TaskStateApproved
	case DecisionReject:
		target = models.TaskStateRejected
	default:
		return nil, ErrInvalidInput
	}

	var out models.TaskState
	err := withRetry(func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			now := time.Now()
			res := tx.Model(&models.TaskState{}).
				Where("user_identifier = ? AND task_id = ? AND status = ?",
					identifier, taskID, models.TaskStateSubmitted).
				Updates(map[string]interface{}{
					"status":       target,
					"validated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInvalidTransition
			}
			return tx.Where("user_identifier = ? AND task_id = ?", identifier, taskID).
				First(&out).Error
		})
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &out, nil
}

// Claim pays out an approved cycle. The status flip and the ledger credit
// share one transaction, and the credit carries an idempotency key on
// (user, task, cycle) so a retried or duplicate claim can never
// double-post.
func (s *LifecycleService) Claim(identifier, taskID string) (*models.TaskState, error) {
	if identifier == "" || taskID == "" {
		return nil, ErrInvalidInput
	}
	var out models.TaskState
	err := withRetry(func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			var task models.Task
			if err := tx.Where("id = ?", taskID).First(&task).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTaskNotFound
				}
				return err
			}

			var state models.TaskState
			if err := tx.Where("user_identifier = ? AND task_id = ?", identifier, taskID).
				First(&state).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotApproved
				}
				return err
			}
			switch state.Status {
			case models.TaskStateApproved:
				// proceed
			case models.TaskStateClaimed:
				return ErrAlreadyClaimed
			default:
				return ErrNotApproved
			}

			now := time.Now()
			res := tx.Model(&models.TaskState{}).
				Where("id = ? AND status = ?", state.ID, models.TaskStateApproved).
				Updates(map[string]interface{}{
					"status":          models.TaskStateClaimed,
					"claimed_at":      now,
					"last_claimed_at": now,
					"claim_count":     gorm.Expr("claim_count + 1"),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrAlreadyClaimed // concurrent claim won the CAS
			}

			key := fmt.Sprintf("task_claim:%s:%s:cycle:%d", identifier, taskID, state.Cycle)
			if err := creditTx(tx, identifier, task.Score,
				models.ScoreSourceTaskClaim, state.ID, key); err != nil {
				return err
			}
			return tx.Where("id = ?", state.ID).First(&out).Error
		})
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &out, nil
}

// PendingSubmission is a submitted state joined with its task, shaped for
// the reviewer UI.
type PendingSubmission struct {
	UserIdentifier string     `json:"username"`
	TaskID         string     `json:"task_id"`
	Description    string     `json:"description"`
	Score          int64      `json:"score"`
	IsRecurring    bool       `json:"is_recurring"`
	Evidence       string     `json:"evidence_url"`
	Cycle          int        `json:"cycle"`
	SubmittedAt    *time.Time `json:"submitted_at"`
}

// PendingSubmissions lists everything awaiting validation, oldest first.
func (s *LifecycleService) PendingSubmissions() ([]PendingSubmission, error) {
	var pending []PendingSubmission
	err := s.DB.Raw(`
		SELECT ts.user_identifier, ts.task_id, t.description, t.score,
		       (t.recur_interval IS NOT NULL) AS is_recurring,
		       ts.evidence, ts.cycle, ts.submitted_at
		FROM task_states ts
		INNER JOIN tasks t ON t.id = ts.task_id
		WHERE ts.status = ? AND ts.deleted_at IS NULL AND t.deleted_at IS NULL
		ORDER BY ts.submitted_at ASC
	`, models.TaskStateSubmitted).Scan(&pending).Error
	return pending, storeErr(err)
}

// StatesForUser returns the current-cycle states for the user's task page.
func (s *LifecycleService) StatesForUser(identifier string) ([]models.TaskState, error) {
	var states []models.TaskState
	err := s.DB.Where("user_identifier = ?", identifier).
		Order("updated_at DESC").
		Find(&states).Error
	return states, storeErr(err)
}
