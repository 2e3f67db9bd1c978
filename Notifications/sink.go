package Notifications

import (
	"log"

	"Bhumi/Models"

	"gorm.io/gorm"
)

// Sink receives domain events destined for a user. Delivery is best-effort:
// a failed notification is logged and never propagated to the caller.
type Sink interface {
	Notify(userID uint, message string)
}

// DBSink persists notifications as rows and optionally forwards them to a
// push sender.
type DBSink struct {
	DB   *gorm.DB
	Push PushSender
}

// PushSender forwards a message to a device. Implemented by the FCM client;
// nil disables push.
type PushSender interface {
	Send(user *Models.User, message string) error
}

func NewDBSink(db *gorm.DB, push PushSender) *DBSink {
	return &DBSink{DB: db, Push: push}
}

func (s *DBSink) Notify(userID uint, message string) {
	notification := Models.Notification{UserID: userID, Message: message}
	if err := s.DB.Create(&notification).Error; err != nil {
		log.Printf("Failed to store notification for user %d: %v", userID, err)
		return
	}

	if s.Push == nil {
		return
	}
	var user Models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		log.Printf("Notification stored but user %d not found for push: %v", userID, err)
		return
	}
	if err := s.Push.Send(&user, message); err != nil {
		log.Printf("Error sending push notification to %s: %v", user.Username, err)
	}
}
