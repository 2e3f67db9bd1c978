package Reconciler

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"Bhumi/Models"
	"Bhumi/Notifications"

	"gorm.io/gorm"
)

// RemovalPolicy controls what happens to assignment records of a task that
// disappears from the checklist during reconciliation.
type RemovalPolicy int

const (
	// PreserveComplete deletes only non-terminal records, keeping completed
	// ones as an audit trail. This is the default.
	PreserveComplete RemovalPolicy = iota
	// RemoveAll deletes every record of the task regardless of status,
	// matching the historical behavior.
	RemoveAll
)

// Payload is the desired checklist state for one land. WorkerIDs is the
// primary selection mechanism; Workers carries free-text names for callers
// that still submit them, resolved case-insensitively against display name
// then username.
type Payload struct {
	TaskNames []string            `json:"task_names"`
	WorkerIDs map[string][]uint   `json:"worker_ids"`
	Workers   map[string][]string `json:"workers"`
	Durations map[string]int      `json:"durations"`
}

// Summary reports what a reconciliation changed. UnassignedTasks counts
// checklist entries that were recorded with no workers selected, which is a
// deliberate outcome and not the same as an empty checklist.
type Summary struct {
	Created         int      `json:"created"`
	RemovedTasks    int      `json:"removed_tasks"`
	AddedTasks      int      `json:"added_tasks"`
	WorkerChanges   int      `json:"worker_changes"`
	DurationUpdates int      `json:"duration_updates"`
	UnassignedTasks int      `json:"unassigned_tasks"`
	Skipped         []string `json:"skipped,omitempty"`
}

// Message renders the summary for user-facing responses.
func (s *Summary) Message() string {
	parts := []string{}
	if s.Created > 0 {
		parts = append(parts, fmt.Sprintf("%d assignments created", s.Created))
	}
	if s.RemovedTasks > 0 {
		parts = append(parts, fmt.Sprintf("%d tasks removed", s.RemovedTasks))
	}
	if s.AddedTasks > 0 {
		parts = append(parts, fmt.Sprintf("%d tasks added", s.AddedTasks))
	}
	if s.WorkerChanges > 0 {
		parts = append(parts, fmt.Sprintf("%d worker changes", s.WorkerChanges))
	}
	if s.DurationUpdates > 0 {
		parts = append(parts, fmt.Sprintf("%d duration updates", s.DurationUpdates))
	}
	if s.UnassignedTasks > 0 {
		parts = append(parts, fmt.Sprintf("%d tasks recorded without assignees", s.UnassignedTasks))
	}
	msg := "No changes detected"
	if len(parts) > 0 {
		msg = strings.Join(parts, ", ")
	}
	if len(s.Skipped) > 0 {
		msg += " (skipped: " + strings.Join(s.Skipped, "; ") + ")"
	}
	return msg
}

// AssignmentReconciler diffs the desired checklist for a land against its
// existing assignment records and applies the minimal set of changes. All
// mutations for one call run in a single transaction, and calls for the same
// land are serialized.
type AssignmentReconciler struct {
	DB      *gorm.DB
	Sink    Notifications.Sink
	Removal RemovalPolicy

	landLocks sync.Map // landID -> *sync.Mutex
}

func NewAssignmentReconciler(db *gorm.DB, sink Notifications.Sink) *AssignmentReconciler {
	return &AssignmentReconciler{DB: db, Sink: sink, Removal: PreserveComplete}
}

func (r *AssignmentReconciler) lockLand(landID uint) func() {
	v, _ := r.landLocks.LoadOrStore(landID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// pendingNotification is queued during the transaction and delivered only
// after a successful commit.
type pendingNotification struct {
	userID  uint
	message string
}

func (r *AssignmentReconciler) flush(queue []pendingNotification) {
	if r.Sink == nil {
		return
	}
	for _, n := range queue {
		r.Sink.Notify(n.userID, n.message)
	}
}

func validateDurations(p *Payload) error {
	for name, days := range p.Durations {
		if days < 0 {
			return fmt.Errorf("%w: negative duration for task %q", Models.ErrValidation, name)
		}
	}
	return nil
}

// ReconcileCreate builds the initial assignment set for a land that has no
// prior records. Unresolvable task or worker references are skipped and
// reported, not fatal. A task with no workers selected is deliberately left
// unassigned.
func (r *AssignmentReconciler) ReconcileCreate(landID uint, p Payload) (*Summary, error) {
	if err := validateDurations(&p); err != nil {
		return nil, err
	}
	unlock := r.lockLand(landID)
	defer unlock()

	summary := &Summary{}
	var queue []pendingNotification

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var land Models.Land
		if err := tx.First(&land, landID).Error; err != nil {
			return err
		}
		if len(p.TaskNames) == 0 {
			return nil
		}

		for _, name := range p.TaskNames {
			task, err := Models.LookupTask(tx, name)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					summary.Skipped = append(summary.Skipped, fmt.Sprintf("task %q not found", name))
					continue
				}
				return err
			}
			workers, skipped, err := r.resolveWorkers(tx, &p, name)
			if err != nil {
				return err
			}
			summary.Skipped = append(summary.Skipped, skipped...)
			if len(workers) == 0 {
				summary.UnassignedTasks++
				continue
			}

			for _, worker := range workers {
				created, err := r.createAssignment(tx, &land, task, &worker, &p, &queue)
				if err != nil {
					return err
				}
				if created {
					summary.Created++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.flush(queue)
	return summary, nil
}

// createAssignment ensures the capability link and creates a pending record
// for the (land, task, worker) triple. An existing triple is a no-op.
func (r *AssignmentReconciler) createAssignment(tx *gorm.DB, land *Models.Land, task *Models.Task, worker *Models.User, p *Payload, queue *[]pendingNotification) (bool, error) {
	granted, err := Models.EnsureTaskManage(tx, task.ID, worker.ID)
	if err != nil {
		return false, err
	}
	if granted {
		log.Printf("Granted capability: employee %s may now perform task %q", worker.DisplayName(), task.Name)
	}

	var existing Models.AssignedTask
	err = tx.Where("land_id = ? AND task_id = ? AND employee_id = ?", land.ID, task.ID, worker.ID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	days := task.CompletionDays
	if override, ok := p.Durations[task.Name]; ok {
		days = uint(override)
	}
	record := Models.AssignedTask{
		LandID:         land.ID,
		TaskID:         task.ID,
		EmployeeID:     worker.ID,
		Status:         Models.StatusPending,
		CompletionDays: days,
	}
	if err := tx.Create(&record).Error; err != nil {
		return false, err
	}
	*queue = append(*queue, pendingNotification{
		userID:  worker.ID,
		message: fmt.Sprintf("You have been assigned the task %q for land %q", task.Name, land.Name),
	})
	return true, nil
}

// ReconcileUpdate diffs a new desired checklist against the land's existing
// records. Removed tasks are handled per the removal policy; kept tasks with
// an explicit worker selection get their worker set diffed; duration
// overrides that differ update every record of the task.
func (r *AssignmentReconciler) ReconcileUpdate(landID uint, p Payload) (*Summary, error) {
	if err := validateDurations(&p); err != nil {
		return nil, err
	}
	unlock := r.lockLand(landID)
	defer unlock()

	summary := &Summary{}
	var queue []pendingNotification

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var land Models.Land
		if err := tx.First(&land, landID).Error; err != nil {
			return err
		}

		var existing []Models.AssignedTask
		if err := tx.Preload("Task").Where("land_id = ?", landID).Find(&existing).Error; err != nil {
			return err
		}

		currentByTask := make(map[string][]Models.AssignedTask)
		for _, record := range existing {
			currentByTask[record.Task.Name] = append(currentByTask[record.Task.Name], record)
		}
		desired := make(map[string]bool, len(p.TaskNames))
		for _, name := range p.TaskNames {
			desired[name] = true
		}

		// Tasks no longer on the checklist
		for taskName, records := range currentByTask {
			if desired[taskName] {
				continue
			}
			removedAny := false
			for i := range records {
				if r.Removal == PreserveComplete && records[i].Status == Models.StatusComplete {
					continue
				}
				if err := tx.Unscoped().Delete(&records[i]).Error; err != nil {
					return err
				}
				queue = append(queue, pendingNotification{
					userID:  records[i].EmployeeID,
					message: fmt.Sprintf("Task %q on land %q is no longer assigned to you", taskName, land.Name),
				})
				removedAny = true
			}
			if removedAny {
				summary.RemovedTasks++
			}
		}

		for _, taskName := range p.TaskNames {
			task, err := Models.LookupTask(tx, taskName)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					summary.Skipped = append(summary.Skipped, fmt.Sprintf("task %q not found", taskName))
					continue
				}
				return err
			}

			records, exists := currentByTask[taskName]
			if !exists {
				// New task on the checklist
				workers, skipped, err := r.resolveWorkers(tx, &p, taskName)
				if err != nil {
					return err
				}
				summary.Skipped = append(summary.Skipped, skipped...)
				added := false
				for _, worker := range workers {
					created, err := r.createAssignment(tx, &land, task, &worker, &p, &queue)
					if err != nil {
						return err
					}
					if created {
						summary.Created++
						added = true
					}
				}
				if added {
					summary.AddedTasks++
				}
				continue
			}

			// Kept task: diff workers only when the payload selects them
			if hasWorkerSelection(&p, taskName) {
				changed, err := r.diffWorkers(tx, &land, task, records, &p, summary, &queue)
				if err != nil {
					return err
				}
				if changed {
					summary.WorkerChanges++
				}
			}

			// Duration override applies to every record of the task
			if override, ok := p.Durations[taskName]; ok {
				updated, err := r.applyDurationOverride(tx, landID, task.ID, uint(override))
				if err != nil {
					return err
				}
				if updated {
					summary.DurationUpdates++
				}
			}
		}

		// Persist the submitted checklist for redisplay, atomically with
		// the records it describes
		if err := land.SetTaskNames(p.TaskNames); err != nil {
			return err
		}
		return tx.Save(&land).Error
	})
	if err != nil {
		return nil, err
	}

	r.flush(queue)
	return summary, nil
}

// diffWorkers applies the symmetric difference between a kept task's current
// workers and the newly selected ones. Workers present in both keep their
// record untouched.
func (r *AssignmentReconciler) diffWorkers(tx *gorm.DB, land *Models.Land, task *Models.Task, records []Models.AssignedTask, p *Payload, summary *Summary, queue *[]pendingNotification) (bool, error) {
	workers, skipped, err := r.resolveWorkers(tx, p, task.Name)
	if err != nil {
		return false, err
	}
	summary.Skipped = append(summary.Skipped, skipped...)

	desired := make(map[uint]Models.User, len(workers))
	for _, worker := range workers {
		desired[worker.ID] = worker
	}
	current := make(map[uint]bool, len(records))

	changed := false
	for i := range records {
		current[records[i].EmployeeID] = true
		if _, keep := desired[records[i].EmployeeID]; keep {
			continue
		}
		if err := tx.Unscoped().Delete(&records[i]).Error; err != nil {
			return false, err
		}
		*queue = append(*queue, pendingNotification{
			userID:  records[i].EmployeeID,
			message: fmt.Sprintf("Task %q on land %q is no longer assigned to you", task.Name, land.Name),
		})
		changed = true
	}
	for id, worker := range desired {
		if current[id] {
			continue
		}
		w := worker
		created, err := r.createAssignment(tx, land, task, &w, p, queue)
		if err != nil {
			return false, err
		}
		if created {
			summary.Created++
			changed = true
		}
	}
	return changed, nil
}

// applyDurationOverride rewrites CompletionDays and re-derives the due date
// for every record of the task on this land, regardless of status.
func (r *AssignmentReconciler) applyDurationOverride(tx *gorm.DB, landID, taskID, days uint) (bool, error) {
	var records []Models.AssignedTask
	if err := tx.Where("land_id = ? AND task_id = ?", landID, taskID).Find(&records).Error; err != nil {
		return false, err
	}
	updated := false
	for i := range records {
		if records[i].CompletionDays == days {
			continue
		}
		records[i].RecomputeDueDate(days)
		if err := tx.Save(&records[i]).Error; err != nil {
			return false, err
		}
		updated = true
	}
	return updated, nil
}
