package Models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Assignment statuses
const (
	StatusPending         = "pending"
	StatusInProgress      = "in_progress"
	StatusPendingApproval = "pending_approval"
	StatusComplete        = "complete"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// AssignedTask represents one employee's obligation to complete one catalog
// task for one land. Created by the reconciler, never by employee action.
type AssignedTask struct {
	gorm.Model
	LandID     uint   `json:"land_id" gorm:"uniqueIndex:idx_land_task_employee;not null"`
	TaskID     uint   `json:"task_id" gorm:"uniqueIndex:idx_land_task_employee;not null"`
	EmployeeID uint   `json:"employee_id" gorm:"uniqueIndex:idx_land_task_employee;not null"`
	Status     string `json:"status" gorm:"default:'pending'"`

	AssignedDate            time.Time  `json:"assigned_date"`
	StartedDate             *time.Time `json:"started_date"`
	CompletedDate           *time.Time `json:"completed_date"`
	CompletionSubmittedDate *time.Time `json:"completion_submitted_date"`
	AdminApprovalDate       *time.Time `json:"admin_approval_date"`

	// Expected completion time in days, resolved at creation from the
	// payload override or the catalog default.
	CompletionDays uint       `json:"completion_days" gorm:"default:0"`
	DueDate        *time.Time `json:"due_date"`

	CompletionNotes    string `json:"completion_notes"`
	CompletionPhotoRef string `json:"completion_photo_ref"`
	CompletionPDFRef   string `json:"completion_pdf_ref"`
	AdminNotes         string `json:"admin_notes"`

	Land     Land `json:"land,omitempty" gorm:"foreignKey:LandID"`
	Task     Task `json:"task,omitempty" gorm:"foreignKey:TaskID"`
	Employee User `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
}

// BeforeCreate stamps the assignment date and derives the due date. The due
// date is computed once here; only an explicit duration update by the
// reconciler recomputes it.
func (a *AssignedTask) BeforeCreate(tx *gorm.DB) error {
	if a.AssignedDate.IsZero() {
		a.AssignedDate = time.Now()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	a.deriveDueDate()
	return nil
}

func (a *AssignedTask) deriveDueDate() {
	if a.CompletionDays > 0 && a.DueDate == nil {
		due := a.AssignedDate.AddDate(0, 0, int(a.CompletionDays))
		a.DueDate = &due
	}
}

// RecomputeDueDate is the reconciler's duration-override path: it replaces
// CompletionDays and re-derives DueDate from the original assignment date.
func (a *AssignedTask) RecomputeDueDate(days uint) {
	a.CompletionDays = days
	a.DueDate = nil
	a.deriveDueDate()
}

// Overdue reports whether the assignment has blown past its due date while
// still unstarted or in progress.
func (a *AssignedTask) Overdue(now time.Time) bool {
	if a.DueDate == nil {
		return false
	}
	return a.DueDate.Before(now) &&
		(a.Status == StatusPending || a.Status == StatusInProgress)
}

// MarkInProgress marks the task as started.
func (a *AssignedTask) MarkInProgress(tx *gorm.DB) error {
	now := time.Now()
	a.Status = StatusInProgress
	a.StartedDate = &now
	return tx.Save(a).Error
}

// SubmitForApproval moves the task to pending approval with the employee's
// completion evidence. Notes are mandatory.
func (a *AssignedTask) SubmitForApproval(tx *gorm.DB, notes, photoRef, pdfRef string) error {
	if notes == "" {
		return fmt.Errorf("%w: completion notes are required", ErrValidation)
	}
	now := time.Now()
	a.Status = StatusPendingApproval
	a.CompletionNotes = notes
	if photoRef != "" {
		a.CompletionPhotoRef = photoRef
	}
	if pdfRef != "" {
		a.CompletionPDFRef = pdfRef
	}
	a.CompletionSubmittedDate = &now
	return tx.Save(a).Error
}

// ApproveCompletion finalizes the task. Only a submission awaiting approval
// can be approved.
func (a *AssignedTask) ApproveCompletion(tx *gorm.DB, adminNotes string) error {
	if a.Status != StatusPendingApproval {
		return fmt.Errorf("%w: cannot approve from %s", ErrIllegalTransition, a.Status)
	}
	now := time.Now()
	a.Status = StatusComplete
	a.CompletedDate = &now
	a.AdminApprovalDate = &now
	a.AdminNotes = adminNotes
	return tx.Save(a).Error
}

// ForceComplete closes out a sibling assignment when another employee's
// submission for the same land and task was approved.
func (a *AssignedTask) ForceComplete(tx *gorm.DB, note string) error {
	now := time.Now()
	a.Status = StatusComplete
	a.CompletedDate = &now
	a.AdminApprovalDate = &now
	a.AdminNotes = note
	return tx.Save(a).Error
}

// RejectCompletion sends the submission back to the employee, clearing the
// completion evidence so it can be redone.
func (a *AssignedTask) RejectCompletion(tx *gorm.DB, adminNotes string) error {
	if a.Status != StatusPendingApproval {
		return fmt.Errorf("%w: cannot reject from %s", ErrIllegalTransition, a.Status)
	}
	a.Status = StatusInProgress
	a.CompletionNotes = ""
	a.CompletionPhotoRef = ""
	a.CompletionPDFRef = ""
	a.CompletionSubmittedDate = nil
	a.AdminNotes = adminNotes
	return tx.Save(a).Error
}

// Reassign hands the task back to the employee with fresh instructions,
// restarting the clock. Prior completion evidence is kept; callers that want
// it cleared reject first.
func (a *AssignedTask) Reassign(tx *gorm.DB, adminNotes string) error {
	if adminNotes == "" {
		return fmt.Errorf("%w: reassignment notes are required", ErrValidation)
	}
	a.Status = StatusInProgress
	a.AssignedDate = time.Now()
	a.AdminNotes = adminNotes
	return tx.Save(a).Error
}

// MarkPending resets the assignment to its just-created state.
func (a *AssignedTask) MarkPending(tx *gorm.DB) error {
	a.Status = StatusPending
	a.StartedDate = nil
	a.CompletedDate = nil
	a.CompletionNotes = ""
	a.CompletionPhotoRef = ""
	a.CompletionPDFRef = ""
	a.CompletionSubmittedDate = nil
	a.AdminApprovalDate = nil
	a.AdminNotes = ""
	return tx.Save(a).Error
}
