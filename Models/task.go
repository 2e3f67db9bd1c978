package Models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Task is a checklist item definition in the catalog. The Marketing flag
// partitions the catalog into two disjoint checklists.
type Task struct {
	gorm.Model
	Name           string `json:"name" gorm:"uniqueIndex;size:255"`
	Position       int    `json:"position"`
	IsDefault      bool   `json:"is_default"`
	Marketing      bool   `json:"marketing"`
	CompletionDays uint   `json:"completion_days"`

	TaskManages []TaskManage   `json:"-" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Assignments []AssignedTask `json:"-" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// LookupTask resolves a catalog task by exact name.
func LookupTask(db *gorm.DB, name string) (*Task, error) {
	var task Task
	if err := db.Where("name = ?", name).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// DefaultTasks returns the default checklist for the given catalog
// partition, in display order.
func DefaultTasks(db *gorm.DB, marketing bool) ([]Task, error) {
	var tasks []Task
	err := db.Where("is_default = ? AND marketing = ?", true, marketing).
		Order("position ASC").Find(&tasks).Error
	return tasks, err
}

// TaskManage links an employee to a catalog task it is eligible to perform.
type TaskManage struct {
	gorm.Model
	TaskID     uint `json:"task_id" gorm:"uniqueIndex:idx_task_employee;not null"`
	EmployeeID uint `json:"employee_id" gorm:"uniqueIndex:idx_task_employee;not null"`

	Task     Task `json:"task,omitempty" gorm:"foreignKey:TaskID"`
	Employee User `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
}

// EnsureTaskManage creates the (task, employee) capability link if absent.
// Idempotent; reports whether a new link was created.
func EnsureTaskManage(db *gorm.DB, taskID, employeeID uint) (bool, error) {
	var existing TaskManage
	err := db.Where("task_id = ? AND employee_id = ?", taskID, employeeID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	link := TaskManage{TaskID: taskID, EmployeeID: employeeID}
	if err := db.Create(&link).Error; err != nil {
		return false, err
	}
	return true, nil
}

// EligibleEmployees lists employees linked to the given task.
func EligibleEmployees(db *gorm.DB, taskID uint) ([]User, error) {
	var users []User
	err := db.Joins("JOIN task_manages ON task_manages.employee_id = users.id").
		Where("task_manages.task_id = ? AND task_manages.deleted_at IS NULL", taskID).
		Find(&users).Error
	return users, err
}

// ResolveEmployeeByName matches a worker by display name, falling back to
// username. Matching is case-insensitive. An ambiguous display name (shared
// by more than one user) is reported instead of picking the first match.
var ErrAmbiguousName = errors.New("ambiguous employee name")

func ResolveEmployeeByName(db *gorm.DB, name string) (*User, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var matches []User
	if err := db.Where("LOWER(name) = ?", needle).Limit(2).Find(&matches).Error; err != nil {
		return nil, err
	}
	if len(matches) > 1 {
		return nil, ErrAmbiguousName
	}
	if len(matches) == 1 {
		return &matches[0], nil
	}

	var user User
	if err := db.Where("LOWER(username) = ?", needle).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
