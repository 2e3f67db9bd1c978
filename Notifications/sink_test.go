package Notifications

import (
	"path/filepath"
	"testing"

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

func TestDBSinkPersistsNotifications(t *testing.T) {
	db := setupTestDB(t)
	user := Models.User{Name: "Asha Patel", Username: "asha"}
	require.NoError(t, db.Create(&user).Error)

	sink := NewDBSink(db, nil)
	sink.Notify(user.ID, "You have been assigned the task \"Survey\" for land \"Plot 1\"")
	sink.Notify(user.ID, "Reminder: task \"Survey\" is overdue")

	var notifications []Models.Notification
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&notifications).Error)
	require.Len(t, notifications, 2)
	assert.False(t, notifications[0].Read)

	count, err := Models.UnreadNotificationCount(db, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

type failingPush struct{ calls int }

func (f *failingPush) Send(user *Models.User, message string) error {
	f.calls++
	return assert.AnError
}

func TestDBSinkPushFailureDoesNotDropRow(t *testing.T) {
	db := setupTestDB(t)
	user := Models.User{Name: "Asha Patel", Username: "asha", FCMToken: "token"}
	require.NoError(t, db.Create(&user).Error)

	push := &failingPush{}
	sink := NewDBSink(db, push)
	sink.Notify(user.ID, "hello")

	assert.Equal(t, 1, push.calls)
	var count int64
	require.NoError(t, db.Model(&Models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
