package Models

import (
	"path/filepath"
	"testing"
	"time"

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
	require.NoError(t, Migrate(db))
	return db
}

func createTestEmployee(t *testing.T, db *gorm.DB, name, username string) *User {
	t.Helper()
	user := &User{Name: name, Username: username, Permission: PermissionEmployee, IsApproved: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestTask(t *testing.T, db *gorm.DB, name string, days uint) *Task {
	t.Helper()
	task := &Task{Name: name, CompletionDays: days}
	require.NoError(t, db.Create(task).Error)
	return task
}

func createTestLand(t *testing.T, db *gorm.DB, name string) *Land {
	t.Helper()
	land := &Land{Name: name}
	require.NoError(t, db.Create(land).Error)
	return land
}

func TestDueDateDerivedFromCompletionDays(t *testing.T) {
	db := setupTestDB(t)
	land := createTestLand(t, db, "Plot 12")
	task := createTestTask(t, db, "Survey", 5)
	employee := createTestEmployee(t, db, "Asha Patel", "asha")

	before := time.Now()
	record := AssignedTask{
		LandID: land.ID, TaskID: task.ID, EmployeeID: employee.ID,
		CompletionDays: 5,
	}
	require.NoError(t, db.Create(&record).Error)

	require.NotNil(t, record.DueDate)
	expected := record.AssignedDate.AddDate(0, 0, 5)
	assert.WithinDuration(t, expected, *record.DueDate, time.Second)
	assert.False(t, record.AssignedDate.Before(before.Add(-time.Second)))
}

func TestNoDueDateWithoutCompletionDays(t *testing.T) {
	db := setupTestDB(t)
	land := createTestLand(t, db, "Plot 13")
	task := createTestTask(t, db, "Valuation", 0)
	employee := createTestEmployee(t, db, "Ravi Shah", "ravi")

	record := AssignedTask{LandID: land.ID, TaskID: task.ID, EmployeeID: employee.ID}
	require.NoError(t, db.Create(&record).Error)
	assert.Nil(t, record.DueDate)
}

func TestDueDateNotRecomputedOnSave(t *testing.T) {
	db := setupTestDB(t)
	land := createTestLand(t, db, "Plot 14")
	task := createTestTask(t, db, "Legal Review", 3)
	employee := createTestEmployee(t, db, "Asha Patel", "asha")

	record := AssignedTask{
		LandID: land.ID, TaskID: task.ID, EmployeeID: employee.ID,
		CompletionDays: 3,
	}
	require.NoError(t, db.Create(&record).Error)
	original := *record.DueDate

	require.NoError(t, record.MarkInProgress(db))
	var reloaded AssignedTask
	require.NoError(t, db.First(&reloaded, record.ID).Error)
	assert.Equal(t, original.Unix(), reloaded.DueDate.Unix())
}

func TestOverduePredicate(t *testing.T) {
	now := time.Now()
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 1)

	assert.True(t, (&AssignedTask{Status: StatusPending, DueDate: &past}).Overdue(now))
	assert.True(t, (&AssignedTask{Status: StatusInProgress, DueDate: &past}).Overdue(now))
	assert.False(t, (&AssignedTask{Status: StatusPendingApproval, DueDate: &past}).Overdue(now))
	assert.False(t, (&AssignedTask{Status: StatusComplete, DueDate: &past}).Overdue(now))
	assert.False(t, (&AssignedTask{Status: StatusPending, DueDate: &future}).Overdue(now))
	assert.False(t, (&AssignedTask{Status: StatusPending}).Overdue(now))
}

func TestSubmitForApprovalRequiresNotes(t *testing.T) {
	db := setupTestDB(t)
	land := createTestLand(t, db, "Plot 15")
	task := createTestTask(t, db, "Survey", 0)
	employee := createTestEmployee(t, db, "Asha Patel", "asha")

	record := AssignedTask{LandID: land.ID, TaskID: task.ID, EmployeeID: employee.ID, Status: StatusInProgress}
	require.NoError(t, db.Create(&record).Error)

	err := record.SubmitForApproval(db, "", "", "")
	require.ErrorIs(t, err, ErrValidation)

	var reloaded AssignedTask
	require.NoError(t, db.First(&reloaded, record.ID).Error)
	assert.Equal(t, StatusInProgress, reloaded.Status)
	assert.Nil(t, reloaded.CompletionSubmittedDate)
}

func TestApproveOnlyFromPendingApproval(t *testing.T) {
	db := setupTestDB(t)
	land := createTestLand(t, db, "Plot 16")
	task := createTestTask(t, db, "Survey", 0)
	employee := createTestEmployee(t, db, "Asha Patel", "asha")

	record := AssignedTask{LandID: land.ID, TaskID: task.ID, EmployeeID: employee.ID, Status: StatusPending}
	require.NoError(t, db.Create(&record).Error)

	require.ErrorIs(t, record.ApproveCompletion(db, "ok"), ErrIllegalTransition)
	require.ErrorIs(t, record.RejectCompletion(db, "no"), ErrIllegalTransition)
}

func TestRejectClearsCompletionArtifacts(t *testing.T) {
	db := setupTestDB(t)
	land := createTestLand(t, db, "Plot 17")
	task := createTestTask(t, db, "Survey", 0)
	employee := createTestEmployee(t, db, "Asha Patel", "asha")

	record := AssignedTask{LandID: land.ID, TaskID: task.ID, EmployeeID: employee.ID, Status: StatusInProgress}
	require.NoError(t, db.Create(&record).Error)
	require.NoError(t, record.SubmitForApproval(db, "done", "photo.jpg", "report.pdf"))

	require.NoError(t, record.RejectCompletion(db, "needs rework"))

	var reloaded AssignedTask
	require.NoError(t, db.First(&reloaded, record.ID).Error)
	assert.Equal(t, StatusInProgress, reloaded.Status)
	assert.Empty(t, reloaded.CompletionNotes)
	assert.Empty(t, reloaded.CompletionPhotoRef)
	assert.Empty(t, reloaded.CompletionPDFRef)
	assert.Nil(t, reloaded.CompletionSubmittedDate)
	assert.Equal(t, "needs rework", reloaded.AdminNotes)
}

func TestReassignRequiresNotesAndResetsClock(t *testing.T) {
	db := setupTestDB(t)
	land := createTestLand(t, db, "Plot 18")
	task := createTestTask(t, db, "Survey", 0)
	employee := createTestEmployee(t, db, "Asha Patel", "asha")

	record := AssignedTask{
		LandID: land.ID, TaskID: task.ID, EmployeeID: employee.ID,
		Status: StatusPendingApproval, AssignedDate: time.Now().AddDate(0, 0, -10),
	}
	require.NoError(t, db.Create(&record).Error)

	require.ErrorIs(t, record.Reassign(db, ""), ErrValidation)

	require.NoError(t, record.Reassign(db, "please redo the boundary check"))
	assert.Equal(t, StatusInProgress, record.Status)
	assert.WithinDuration(t, time.Now(), record.AssignedDate, time.Second)
}

func TestMarkPendingResetsEverything(t *testing.T) {
	db := setupTestDB(t)
	land := createTestLand(t, db, "Plot 19")
	task := createTestTask(t, db, "Survey", 0)
	employee := createTestEmployee(t, db, "Asha Patel", "asha")

	record := AssignedTask{LandID: land.ID, TaskID: task.ID, EmployeeID: employee.ID, Status: StatusInProgress}
	require.NoError(t, db.Create(&record).Error)
	require.NoError(t, record.SubmitForApproval(db, "done", "", ""))
	require.NoError(t, record.ApproveCompletion(db, "good"))

	require.NoError(t, record.MarkPending(db))
	assert.Equal(t, StatusPending, record.Status)
	assert.Nil(t, record.StartedDate)
	assert.Nil(t, record.CompletedDate)
	assert.Nil(t, record.CompletionSubmittedDate)
	assert.Nil(t, record.AdminApprovalDate)
	assert.Empty(t, record.CompletionNotes)
	assert.Empty(t, record.AdminNotes)
}

func TestEnsureTaskManageIdempotent(t *testing.T) {
	db := setupTestDB(t)
	task := createTestTask(t, db, "Survey", 0)
	employee := createTestEmployee(t, db, "Asha Patel", "asha")

	created, err := EnsureTaskManage(db, task.ID, employee.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureTaskManage(db, task.ID, employee.ID)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&TaskManage{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	eligible, err := EligibleEmployees(db, task.ID)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, employee.ID, eligible[0].ID)
}

func TestResolveEmployeeByName(t *testing.T) {
	db := setupTestDB(t)
	asha := createTestEmployee(t, db, "Asha Patel", "asha")
	createTestEmployee(t, db, "Ravi Shah", "ravi")

	// Case-insensitive display name match
	user, err := ResolveEmployeeByName(db, "asha patel")
	require.NoError(t, err)
	assert.Equal(t, asha.ID, user.ID)

	// Username fallback
	user, err = ResolveEmployeeByName(db, "ASHA")
	require.NoError(t, err)
	assert.Equal(t, asha.ID, user.ID)

	_, err = ResolveEmployeeByName(db, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestResolveEmployeeAmbiguousName(t *testing.T) {
	db := setupTestDB(t)
	createTestEmployee(t, db, "Asha Patel", "asha1")
	createTestEmployee(t, db, "Asha Patel", "asha2")

	_, err := ResolveEmployeeByName(db, "Asha Patel")
	assert.ErrorIs(t, err, ErrAmbiguousName)
}

func TestDefaultTasksPartitioned(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&Task{Name: "Survey", Position: 2, IsDefault: true}).Error)
	require.NoError(t, db.Create(&Task{Name: "Title Check", Position: 1, IsDefault: true}).Error)
	require.NoError(t, db.Create(&Task{Name: "Photo Shoot", Position: 1, IsDefault: true, Marketing: true}).Error)
	require.NoError(t, db.Create(&Task{Name: "Fencing", Position: 3}).Error)

	tasks, err := DefaultTasks(db, false)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Title Check", tasks[0].Name)
	assert.Equal(t, "Survey", tasks[1].Name)

	marketing, err := DefaultTasks(db, true)
	require.NoError(t, err)
	require.Len(t, marketing, 1)
	assert.Equal(t, "Photo Shoot", marketing[0].Name)
}
