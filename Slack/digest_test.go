package Slack

import (
	"path/filepath"
	"testing"
	"time"

	"Bhumi/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	return db
}

func TestGenerateOverdueDigest(t *testing.T) {
	db := setupTestDB(t)
	land := Models.Land{Name: "Plot 7"}
	require.NoError(t, db.Create(&land).Error)
	task := Models.Task{Name: "Survey"}
	require.NoError(t, db.Create(&task).Error)
	employee := Models.User{Name: "Asha Patel", Username: "asha"}
	require.NoError(t, db.Create(&employee).Error)

	due := time.Now().AddDate(0, 0, -3)
	record := Models.AssignedTask{
		LandID: land.ID, TaskID: task.ID, EmployeeID: employee.ID,
		Status: Models.StatusInProgress, DueDate: &due,
	}
	require.NoError(t, db.Create(&record).Error)

	message, err := GenerateOverdueDigest(db, time.Now())
	require.NoError(t, err)
	assert.Contains(t, message, "Survey")
	assert.Contains(t, message, "Plot 7")
	assert.Contains(t, message, "Asha Patel")
	assert.Contains(t, message, "Total: 1 overdue assignments")
}

func TestGenerateOverdueDigestEmpty(t *testing.T) {
	db := setupTestDB(t)
	message, err := GenerateOverdueDigest(db, time.Now())
	require.NoError(t, err)
	assert.Empty(t, message)
}

func TestGenerateOverdueDigestExcludesSubmittedAndComplete(t *testing.T) {
	db := setupTestDB(t)
	land := Models.Land{Name: "Plot 8"}
	require.NoError(t, db.Create(&land).Error)
	task := Models.Task{Name: "Survey"}
	require.NoError(t, db.Create(&task).Error)
	employee := Models.User{Name: "Asha Patel", Username: "asha"}
	require.NoError(t, db.Create(&employee).Error)

	due := time.Now().AddDate(0, 0, -3)
	record := Models.AssignedTask{
		LandID: land.ID, TaskID: task.ID, EmployeeID: employee.ID,
		Status: Models.StatusPendingApproval, DueDate: &due,
	}
	require.NoError(t, db.Create(&record).Error)

	message, err := GenerateOverdueDigest(db, time.Now())
	require.NoError(t, err)
	assert.Empty(t, message)
}
