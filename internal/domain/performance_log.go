package domain

import "time"

// PerformanceLog records a technician's outcome on a closed ticket.
// Created once per (ticket, technician) pair at closure; regenerated in bulk
// by the recalculate operation.
type PerformanceLog struct {
	ID                 string
	UserID             string
	TicketID           string
	Result             PerformStatus
	CompletedWithinSLA bool
	DurationMinutes    int64
	CreatedAt          time.Time
}
