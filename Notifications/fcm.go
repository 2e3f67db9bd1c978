package Notifications

import (
	"context"
	"fmt"
	"log"
	"os"

	"Bhumi/Models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMSender pushes notifications to employee devices through Firebase Cloud
// Messaging.
type FCMSender struct {
	client *messaging.Client
	ctx    context.Context
}

// InitFCM initializes the Firebase messaging client from the service account
// key named by FIREBASE_CREDENTIALS. Returns nil (push disabled) when the
// variable is unset.
func InitFCM() (*FCMSender, error) {
	credentials := os.Getenv("FIREBASE_CREDENTIALS")
	if credentials == "" {
		log.Println("FIREBASE_CREDENTIALS not set, push notifications disabled")
		return nil, nil
	}

	ctx := context.Background()
	opt := option.WithCredentialsFile(credentials)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Messaging client: %v", err)
	}

	log.Println("Firebase initialized successfully")
	return &FCMSender{client: client, ctx: ctx}, nil
}

func (f *FCMSender) Send(user *Models.User, message string) error {
	if f == nil || f.client == nil {
		return fmt.Errorf("firebase client not initialized")
	}
	if user.FCMToken == "" {
		return fmt.Errorf("user %s has no registered device token", user.Username)
	}

	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: "Task Update",
			Body:  message,
		},
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
			Priority: "high",
		},
	}

	response, err := f.client.Send(f.ctx, msg)
	if err != nil {
		return fmt.Errorf("error sending Firebase message: %v", err)
	}
	log.Printf("Successfully sent Firebase notification: %s", response)
	return nil
}
