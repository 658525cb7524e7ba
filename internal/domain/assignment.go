package domain

import "time"

// AssignmentType distinguishes admin-picked from queue-popped assignments.
type AssignmentType string

const (
	AssignmentTypeManual AssignmentType = "manual"
	AssignmentTypeAuto   AssignmentType = "auto"
)

// Assignment links a technician to a ticket. Rows are append-only:
// reassignment deactivates previous rows instead of deleting them.
type Assignment struct {
	ID             string
	TicketID       string
	UserID         string
	AssignedAt     time.Time
	Active         bool
	AssignmentType AssignmentType
}
