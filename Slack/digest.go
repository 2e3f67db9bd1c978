package Slack

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"Bhumi/Models"

	"github.com/slack-go/slack"
	"gorm.io/gorm"
)

// GenerateOverdueDigest builds the admin channel message listing every
// assignment past its due date. Returns an empty string when nothing is
// overdue.
func GenerateOverdueDigest(db *gorm.DB, now time.Time) (string, error) {
	var records []Models.AssignedTask
	err := db.Preload("Task").Preload("Land").Preload("Employee").
		Where("due_date IS NOT NULL AND due_date < ? AND status IN ?",
			now, []string{Models.StatusPending, Models.StatusInProgress}).
		Order("due_date ASC").
		Find(&records).Error
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}

	var message strings.Builder
	message.WriteString("# Overdue Task Assignments\n")
	message.WriteString(fmt.Sprintf("*Date: %s*\n\n", now.Format("January 2, 2006")))

	for _, record := range records {
		daysLate := int(now.Sub(*record.DueDate).Hours() / 24)
		message.WriteString(fmt.Sprintf("- *%s* on land *%s* — %s (%d days late, status: %s)\n",
			record.Task.Name, record.Land.Name, record.Employee.DisplayName(),
			daysLate, record.Status))
	}
	message.WriteString(fmt.Sprintf("\nTotal: %d overdue assignments\n", len(records)))
	return message.String(), nil
}

// SendOverdueDigest posts the overdue digest to the channel named by
// SLACK_TASK_CHANNEL. Silently disabled when SLACK_BOT_TOKEN is unset.
func SendOverdueDigest(db *gorm.DB) error {
	token := os.Getenv("SLACK_BOT_TOKEN")
	channel := os.Getenv("SLACK_TASK_CHANNEL")
	if token == "" || channel == "" {
		log.Println("Slack digest disabled: SLACK_BOT_TOKEN or SLACK_TASK_CHANNEL not set")
		return nil
	}

	message, err := GenerateOverdueDigest(db, time.Now())
	if err != nil {
		return fmt.Errorf("failed to build overdue digest: %w", err)
	}
	if message == "" {
		log.Println("No overdue assignments, skipping Slack digest")
		return nil
	}

	api := slack.New(token)
	_, _, err = api.PostMessage(channel, slack.MsgOptionText(message, false))
	if err != nil {
		return fmt.Errorf("failed to post overdue digest: %w", err)
	}
	return nil
}
