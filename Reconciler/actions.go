package Reconciler

import (
	"errors"
	"fmt"

	"Bhumi/Models"

	"gorm.io/gorm"
)

var (
	ErrNotAssignee = errors.New("task is assigned to another employee")
	ErrNotAdmin    = errors.New("administrator permission required")
)

func (r *AssignmentReconciler) loadRecord(tx *gorm.DB, recordID uint) (*Models.AssignedTask, error) {
	var record Models.AssignedTask
	err := tx.Preload("Task").Preload("Land").Preload("Employee").
		First(&record, recordID).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *AssignmentReconciler) requireAdmin(tx *gorm.DB, adminID uint) (*Models.User, error) {
	var admin Models.User
	if err := tx.First(&admin, adminID).Error; err != nil {
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return &admin, nil
}

// Start marks the record as in progress. Only the assigned employee may
// start their own task.
func (r *AssignmentReconciler) Start(recordID, actorID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		record, err := r.loadRecord(tx, recordID)
		if err != nil {
			return err
		}
		if record.EmployeeID != actorID {
			return ErrNotAssignee
		}
		return record.MarkInProgress(tx)
	})
}

// SubmitForApproval records the employee's completion evidence and queues
// the record for admin review. Admins are notified after commit.
func (r *AssignmentReconciler) SubmitForApproval(recordID, actorID uint, notes, photoRef, pdfRef string) error {
	var queue []pendingNotification
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		record, err := r.loadRecord(tx, recordID)
		if err != nil {
			return err
		}
		if record.EmployeeID != actorID {
			return ErrNotAssignee
		}
		if err := record.SubmitForApproval(tx, notes, photoRef, pdfRef); err != nil {
			return err
		}

		var admins []Models.User
		if err := tx.Where("permission >= ?", Models.PermissionManager).Find(&admins).Error; err != nil {
			return err
		}
		message := fmt.Sprintf("%s submitted %q on land %q for approval",
			record.Employee.DisplayName(), record.Task.Name, record.Land.Name)
		for _, admin := range admins {
			queue = append(queue, pendingNotification{userID: admin.ID, message: message})
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.flush(queue)
	return nil
}

// approveAndCascade finalizes a submission. Every sibling record of the same
// land and task that is not yet complete is force-completed in the same
// transaction; approving one employee's work closes the task for the whole
// land.
func (r *AssignmentReconciler) approveAndCascade(tx *gorm.DB, record *Models.AssignedTask, notes string, queue *[]pendingNotification) error {
	if err := record.ApproveCompletion(tx, notes); err != nil {
		return err
	}
	*queue = append(*queue, pendingNotification{
		userID:  record.EmployeeID,
		message: fmt.Sprintf("Your task %q on land %q was approved", record.Task.Name, record.Land.Name),
	})

	var siblings []Models.AssignedTask
	err := tx.Where("land_id = ? AND task_id = ? AND id <> ? AND status <> ?",
		record.LandID, record.TaskID, record.ID, Models.StatusComplete).
		Find(&siblings).Error
	if err != nil {
		return err
	}
	note := fmt.Sprintf("Completed via approval of %s's submission", record.Employee.DisplayName())
	for i := range siblings {
		if err := siblings[i].ForceComplete(tx, note); err != nil {
			return err
		}
		*queue = append(*queue, pendingNotification{
			userID: siblings[i].EmployeeID,
			message: fmt.Sprintf("Task %q on land %q was completed by %s",
				record.Task.Name, record.Land.Name, record.Employee.DisplayName()),
		})
	}
	return nil
}

// Approve finalizes a submission awaiting review and cascades completion to
// the record's siblings.
func (r *AssignmentReconciler) Approve(recordID, adminID uint, notes string) error {
	var queue []pendingNotification
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := r.requireAdmin(tx, adminID); err != nil {
			return err
		}
		record, err := r.loadRecord(tx, recordID)
		if err != nil {
			return err
		}
		return r.approveAndCascade(tx, record, notes, &queue)
	})
	if err != nil {
		return err
	}
	r.flush(queue)
	return nil
}

// MarkComplete is the admin force-complete path: a record not yet awaiting
// approval is submitted on the admin's behalf, then approved, all in one
// transaction so a failure leaves no half-submitted record behind.
func (r *AssignmentReconciler) MarkComplete(recordID, adminID uint, notes string) error {
	var queue []pendingNotification
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		admin, err := r.requireAdmin(tx, adminID)
		if err != nil {
			return err
		}
		record, err := r.loadRecord(tx, recordID)
		if err != nil {
			return err
		}
		if record.Status == Models.StatusComplete {
			return fmt.Errorf("%w: task is already complete", Models.ErrIllegalTransition)
		}
		if record.Status != Models.StatusPendingApproval {
			submitNotes := notes
			if submitNotes == "" {
				submitNotes = "Marked complete by " + admin.DisplayName()
			}
			if err := record.SubmitForApproval(tx, submitNotes, "", ""); err != nil {
				return err
			}
		}
		return r.approveAndCascade(tx, record, notes, &queue)
	})
	if err != nil {
		return err
	}
	r.flush(queue)
	return nil
}

// Reject sends a submission back to the employee with the admin's notes.
func (r *AssignmentReconciler) Reject(recordID, adminID uint, notes string) error {
	var queue []pendingNotification
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := r.requireAdmin(tx, adminID); err != nil {
			return err
		}
		record, err := r.loadRecord(tx, recordID)
		if err != nil {
			return err
		}
		if err := record.RejectCompletion(tx, notes); err != nil {
			return err
		}
		queue = append(queue, pendingNotification{
			userID:  record.EmployeeID,
			message: fmt.Sprintf("Your task %q on land %q was rejected: %s", record.Task.Name, record.Land.Name, notes),
		})
		return nil
	})
	if err != nil {
		return err
	}
	r.flush(queue)
	return nil
}

// Reassign hands the task back to its employee with fresh instructions and
// restarts the clock.
func (r *AssignmentReconciler) Reassign(recordID, adminID uint, notes string) error {
	var queue []pendingNotification
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := r.requireAdmin(tx, adminID); err != nil {
			return err
		}
		record, err := r.loadRecord(tx, recordID)
		if err != nil {
			return err
		}
		if err := record.Reassign(tx, notes); err != nil {
			return err
		}
		queue = append(queue, pendingNotification{
			userID:  record.EmployeeID,
			message: fmt.Sprintf("Task %q on land %q was reassigned to you: %s", record.Task.Name, record.Land.Name, notes),
		})
		return nil
	})
	if err != nil {
		return err
	}
	r.flush(queue)
	return nil
}

// Reset returns the record to its just-created pending state.
func (r *AssignmentReconciler) Reset(recordID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		record, err := r.loadRecord(tx, recordID)
		if err != nil {
			return err
		}
		return record.MarkPending(tx)
	})
}
