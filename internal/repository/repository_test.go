package repository

import (
	"testing"

	"github.com/sidetrack-app/sidetrack/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB creates an in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Label{},
		&models.TaskLabel{},
		&models.Subtask{},
	)
	require.NoError(t, err)

	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "hashedpassword"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTask(t *testing.T, db *gorm.DB, ownerID uint64, title string) *models.Task {
	t.Helper()
	task := &models.Task{OwnerID: ownerID, Title: title}
	require.NoError(t, db.Create(task).Error)
	return task
}

func createSubtask(t *testing.T, db *gorm.DB, taskID uint64, title string) *models.Subtask {
	t.Helper()
	subtask := &models.Subtask{TaskID: taskID, Title: title}
	require.NoError(t, db.Create(subtask).Error)
	return subtask
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
