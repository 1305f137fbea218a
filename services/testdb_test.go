package services

import (
	"testing"

	"task-reward-system/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema.
// MaxOpenConns(1) keeps every connection on the same in-memory database;
// TranslateError makes unique-key violations surface as
// gorm.ErrDuplicatedKey, same as the postgres driver in production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.ScoreEvent{},
		&models.ReferralEdge{},
		&models.Task{},
		&models.TaskState{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, identifier string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.NewString(),
		Identifier:   identifier,
		Username:     identifier,
		ReferralCode: uuid.NewString()[:8],
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", identifier, err)
	}
	return user
}

func createTask(t *testing.T, db *gorm.DB, description string, score int64, recurHours *int) *models.Task {
	t.Helper()
	task := &models.Task{
		ID:            uuid.NewString(),
		Description:   description,
		Score:         score,
		RecurInterval: recurHours,
		Status:        models.TaskStatusActive,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("create task %s: %v", description, err)
	}
	return task
}

func intPtr(n int) *int { return &n }
