package Models

import (
	"gorm.io/gorm"
)

// Notification is a persisted message for one user. Delivery beyond the
// database row (push, digest) is handled by the Notifications package.
type Notification struct {
	gorm.Model
	UserID  uint   `json:"user_id" gorm:"index;not null"`
	Message string `json:"message"`
	// Column renamed to avoid the READ reserved word on MySQL.
	Read bool `json:"read" gorm:"column:is_read;default:false"`
}

// UnreadNotificationCount returns how many unread notifications a user has.
func UnreadNotificationCount(db *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := db.Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
