package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
	"github.com/nusalink/ftth-helpdesk/internal/service"
)

func TestComputeSLADeadline(t *testing.T) {
	t.Parallel()
	createdAt := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		ticketType domain.TicketType
		want       time.Time
	}{
		{"installation gets 72 hours", domain.TicketTypeInstallation, createdAt.Add(72 * time.Hour)},
		{"home maintenance gets 24 hours", domain.TicketTypeHomeMaintenance, createdAt.Add(24 * time.Hour)},
		{"backbone maintenance gets 24 hours", domain.TicketTypeBackboneMaintenance, createdAt.Add(24 * time.Hour)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, service.ComputeSLADeadline(tc.ticketType, createdAt))
		})
	}
}

func TestComputeSLADeadlineDeterministic(t *testing.T) {
	t.Parallel()
	createdAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	first := service.ComputeSLADeadline(domain.TicketTypeInstallation, createdAt)
	second := service.ComputeSLADeadline(domain.TicketTypeInstallation, createdAt)
	assert.Equal(t, first, second)
}

func TestTicketOverdue(t *testing.T) {
	t.Parallel()
	now := time.Now()

	open := &domain.Ticket{Status: domain.TicketStatusAssigned, SLADeadline: now.Add(-time.Minute)}
	assert.True(t, open.Overdue(now))

	onTrack := &domain.Ticket{Status: domain.TicketStatusAssigned, SLADeadline: now.Add(time.Hour)}
	assert.False(t, onTrack.Overdue(now))

	// terminal and rejected tickets are never flagged overdue
	closed := &domain.Ticket{Status: domain.TicketStatusClosed, SLADeadline: now.Add(-time.Hour)}
	assert.False(t, closed.Overdue(now))
	rejected := &domain.Ticket{Status: domain.TicketStatusRejected, SLADeadline: now.Add(-time.Hour)}
	assert.False(t, rejected.Overdue(now))
}
