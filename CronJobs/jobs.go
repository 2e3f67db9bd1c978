package CronJobs

import (
	"fmt"
	"log"
	"time"

	"Bhumi/Models"
	"Bhumi/Notifications"
	"Bhumi/Slack"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// OverdueChecker is a scheduled service that reminds employees about
// assignments past their due date and posts the admin digest to Slack.
type OverdueChecker struct {
	cronScheduler  *cron.Cron
	db             *gorm.DB
	sink           Notifications.Sink
	runImmediately bool
	jobID          cron.EntryID
}

// NewOverdueChecker creates a new overdue checker with the given configuration
func NewOverdueChecker(db *gorm.DB, sink Notifications.Sink, runImmediately bool) *OverdueChecker {
	return &OverdueChecker{
		cronScheduler:  cron.New(cron.WithSeconds()),
		db:             db,
		sink:           sink,
		runImmediately: runImmediately,
	}
}

// Start schedules the daily overdue sweep
func (o *OverdueChecker) Start() error {
	var err error
	o.jobID, err = o.cronScheduler.AddFunc("0 0 8 * * *", func() {
		log.Println("Running scheduled daily overdue check")
		o.runOverdueCheck()
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	o.cronScheduler.Start()
	fmt.Println("Overdue check scheduler started - will run daily at 8:00 AM")

	if o.runImmediately {
		fmt.Println("Running initial overdue check")
		o.runOverdueCheck()
	}
	return nil
}

// Stop terminates the overdue checker
func (o *OverdueChecker) Stop() {
	o.cronScheduler.Remove(o.jobID)
	o.cronScheduler.Stop()
}

func (o *OverdueChecker) runOverdueCheck() {
	now := time.Now()
	var records []Models.AssignedTask
	err := o.db.Preload("Task").Preload("Land").
		Where("due_date IS NOT NULL AND due_date < ? AND status IN ?",
			now, []string{Models.StatusPending, Models.StatusInProgress}).
		Find(&records).Error
	if err != nil {
		log.Printf("Error fetching overdue assignments: %v", err)
		return
	}

	for _, record := range records {
		if o.sink != nil {
			o.sink.Notify(record.EmployeeID, fmt.Sprintf(
				"Reminder: task %q on land %q was due %s",
				record.Task.Name, record.Land.Name,
				record.DueDate.Format("January 2, 2006")))
		}
	}
	log.Printf("Overdue check complete: %d overdue assignments", len(records))

	if err := Slack.SendOverdueDigest(o.db); err != nil {
		log.Printf("Error sending Slack digest: %v", err)
	}
}
