// services/tasks.go
package services

import (
	"errors"
	"log"
	"path/filepath"
	"time"

	"task-reward-system/models"
	"task-reward-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// TaskService owns the task catalog. The catalog is read-mostly reference
// data; all mutation goes through the admin handlers below.
type TaskService struct {
	DB *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{DB: db}
}

// --- Admin Handlers ---

// CreateTask creates a one-off or recurring task (Admin only)
func (s *TaskService) CreateTask(c *fiber.Ctx) error {
	var req struct {
		Description   string `json:"description"`
		Link          string `json:"link"`
		Score         int64  `json:"score"`
		Icon          string `json:"icon"`
		RecurInterval *int   `json:"recur_interval"`
		Status        string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Description is required"})
	}
	if req.Score <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Score must be a positive integer"})
	}
	if req.RecurInterval != nil && *req.RecurInterval <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Recur interval must be positive hours"})
	}
	if req.Status == "" {
		req.Status = models.TaskStatusActive
	}
	if req.Status != models.TaskStatusActive && req.Status != models.TaskStatusInactive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Status must be active or inactive"})
	}

	task := &models.Task{
		ID:            uuid.NewString(),
		Description:   req.Description,
		Slug:          slug.Make(req.Description),
		Link:          req.Link,
		Score:         req.Score,
		Icon:          req.Icon,
		RecurInterval: req.RecurInterval,
		Status:        req.Status,
	}
	if err := s.DB.Create(task).Error; err != nil {
		log.Printf("DB Error creating task: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create task"})
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask updates an existing task (Admin only)
func (s *TaskService) UpdateTask(c *fiber.Ctx) error {
	id := c.Params("id")

	var existing models.Task
	if err := s.DB.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Description   *string `json:"description"`
		Link          *string `json:"link"`
		Score         *int64  `json:"score"`
		Icon          *string `json:"icon"`
		RecurInterval *int    `json:"recur_interval"`
		Status        *string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Description != nil {
		if *req.Description == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Description cannot be empty"})
		}
		existing.Description = *req.Description
		existing.Slug = slug.Make(*req.Description)
	}
	if req.Link != nil {
		existing.Link = *req.Link
	}
	if req.Score != nil {
		if *req.Score <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Score must be a positive integer"})
		}
		existing.Score = *req.Score
	}
	if req.Icon != nil {
		existing.Icon = *req.Icon
	}
	if req.RecurInterval != nil {
		if *req.RecurInterval <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Recur interval must be positive hours"})
		}
		existing.RecurInterval = req.RecurInterval
	}
	if req.Status != nil {
		if *req.Status != models.TaskStatusActive && *req.Status != models.TaskStatusInactive {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Status must be active or inactive"})
		}
		existing.Status = *req.Status
	}

	if err := s.DB.Save(&existing).Error; err != nil {
		log.Printf("DB Error updating task: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update task"})
	}
	return c.JSON(existing)
}

// DeleteTask removes a task from the catalog (Admin only). Task states
// referencing it keep their history; the soft delete hides the task from
// listings and blocks new submissions.
func (s *TaskService) DeleteTask(c *fiber.Ctx) error {
	id := c.Params("id")

	var task models.Task
	if err := s.DB.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if err := s.DB.Delete(&task).Error; err != nil {
		log.Printf("DB Error deleting task: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete task"})
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}

// UploadTaskIcon stores an icon image for a task and records its URL
// (Admin only). Uploads go to R2 when configured, otherwise to the local
// uploads directory.
func (s *TaskService) UploadTaskIcon(c *fiber.Ctx) error {
	id := c.Params("id")

	var task models.Task
	if err := s.DB.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	fileHeader, err := c.FormFile("icon")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing icon file"})
	}

	key := "icons/" + task.ID + filepath.Ext(fileHeader.Filename)
	var iconURL string
	if utils.R2Enabled() {
		iconURL, err = utils.UploadFileToR2(fileHeader, key)
		if err != nil {
			log.Printf("R2 upload failed for task %s: %v", task.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload icon"})
		}
	} else {
		destPath := utils.GetUploadPath(key)
		if err := utils.SaveFile(fileHeader, destPath); err != nil {
			log.Printf("Local icon save failed for task %s: %v", task.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save icon"})
		}
		iconURL = "/uploads/" + key
	}

	if err := s.DB.Model(&task).Update("icon", iconURL).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record icon URL"})
	}
	return c.JSON(fiber.Map{"message": "Icon uploaded successfully", "icon": iconURL})
}

// --- Reads (used by handlers and the lifecycle) ---

// ListOneOff returns the one-off tasks, newest first.
func (s *TaskService) ListOneOff() ([]models.Task, error) {
	var tasks []models.Task
	err := s.DB.Where("recur_interval IS NULL").
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, storeErr(err)
}

// ListRecurring returns the recurring tasks, newest first.
func (s *TaskService) ListRecurring() ([]models.Task, error) {
	var tasks []models.Task
	err := s.DB.Where("recur_interval IS NOT NULL").
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, storeErr(err)
}

// Get fetches one task or ErrTaskNotFound.
func (s *TaskService) Get(id string) (*models.Task, error) {
	var task models.Task
	if err := s.DB.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, storeErr(err)
	}
	return &task, nil
}

// CompletableAt reports when the user may next submit the task, for the
// task page's countdown display. Zero time means submittable now.
func (s *TaskService) CompletableAt(task *models.Task, state *models.TaskState) time.Time {
	if state == nil || !task.IsRecurring() || state.LastClaimedAt == nil {
		return time.Time{}
	}
	if state.Status != models.TaskStateClaimed {
		return time.Time{}
	}
	return state.LastClaimedAt.Add(task.Cooldown())
}
