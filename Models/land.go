package Models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Land is the unit of work tasks are assigned against.
type Land struct {
	gorm.Model
	Name        string `json:"name"`
	Village     string `json:"village"`
	Taluka      string `json:"taluka"`
	District    string `json:"district"`
	Status      string `json:"status" gorm:"default:'in_process'"`
	IsMarketing bool   `json:"is_marketing"`

	// TaskNames holds the checklist as last submitted, as a JSON array of
	// catalog task names. AssignedTask rows are the source of truth for
	// who is actually working; this is kept for redisplay on the edit form.
	TaskNames datatypes.JSON `json:"task_names"`

	AssignedTasks []AssignedTask `json:"assigned_tasks,omitempty" gorm:"foreignKey:LandID;constraint:OnDelete:CASCADE"`
}

// TaskNameList decodes the stored checklist. A missing or malformed value
// decodes to an empty list rather than an error.
func (l *Land) TaskNameList() []string {
	if len(l.TaskNames) == 0 {
		return nil
	}
	var names []string
	if err := json.Unmarshal(l.TaskNames, &names); err != nil {
		return nil
	}
	return names
}

// SetTaskNames stores the checklist for redisplay.
func (l *Land) SetTaskNames(names []string) error {
	raw, err := json.Marshal(names)
	if err != nil {
		return err
	}
	l.TaskNames = datatypes.JSON(raw)
	return nil
}
