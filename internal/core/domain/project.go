package domain

import "time"

// UnassignedProjectName is the well-known project that holds ungrouped documents.
const UnassignedProjectName = "Unassigned"

// Project groups documents in a fixed order.
type Project struct {
	ID          int64
	Name        string
	DocumentIDs []int64
	CreatedAt   time.Time
}

// IsUnassigned reports whether this is the well-known Unassigned project.
func (p *Project) IsUnassigned() bool {
	return p.Name == UnassignedProjectName
}
