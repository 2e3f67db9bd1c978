package Reconciler

import (
	"errors"
	"fmt"

	"Bhumi/Models"

	"gorm.io/gorm"
)

func hasWorkerSelection(p *Payload, taskName string) bool {
	if _, ok := p.WorkerIDs[taskName]; ok {
		return true
	}
	_, ok := p.Workers[taskName]
	return ok
}

// resolveWorkers turns the payload's selection for one task into concrete
// users. IDs take precedence over names; names match display name first,
// then username, case-insensitively. Unresolvable and ambiguous references
// are skipped with a note, never substituted. An empty result is a
// deliberate no-assignment outcome.
func (r *AssignmentReconciler) resolveWorkers(tx *gorm.DB, p *Payload, taskName string) ([]Models.User, []string, error) {
	var workers []Models.User
	var skipped []string
	seen := make(map[uint]bool)

	for _, id := range p.WorkerIDs[taskName] {
		var user Models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				skipped = append(skipped, fmt.Sprintf("employee id %d not found for task %q", id, taskName))
				continue
			}
			return nil, nil, err
		}
		if !seen[user.ID] {
			seen[user.ID] = true
			workers = append(workers, user)
		}
	}

	for _, name := range p.Workers[taskName] {
		user, err := Models.ResolveEmployeeByName(tx, name)
		if err != nil {
			switch {
			case errors.Is(err, Models.ErrAmbiguousName):
				skipped = append(skipped, fmt.Sprintf("employee name %q is ambiguous for task %q", name, taskName))
			case errors.Is(err, gorm.ErrRecordNotFound):
				skipped = append(skipped, fmt.Sprintf("employee %q not found for task %q", name, taskName))
			default:
				return nil, nil, err
			}
			continue
		}
		if !seen[user.ID] {
			seen[user.ID] = true
			workers = append(workers, *user)
		}
	}

	return workers, skipped, nil
}
