package service

import (
	"time"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

// SLA durations by ticket type. Installations get a longer window because
// they involve physical cable runs; every maintenance type is next-day.
const (
	slaInstallation = 72 * time.Hour
	slaMaintenance  = 24 * time.Hour
)

// ComputeSLADeadline returns the deadline for a ticket created (or reopened)
// at the given instant. Pure and deterministic.
func ComputeSLADeadline(ticketType domain.TicketType, createdAt time.Time) time.Time {
	if ticketType == domain.TicketTypeInstallation {
		return createdAt.Add(slaInstallation)
	}
	return createdAt.Add(slaMaintenance)
}
