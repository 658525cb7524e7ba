package events

import (
	"time"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketClosed        EventType = "ticket_closed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID *string
	Role   *domain.Role
}

// Event is a lifecycle notification.
type Event struct {
	ID        string
	Type      EventType
	TicketID  string
	Actor     Actor
	Timestamp time.Time
	Payload   any
}

// TicketCreatedPayload describes a new ticket.
type TicketCreatedPayload struct {
	TicketNumber string
	Type         domain.TicketType
	Priority     domain.TicketPriority
	SLADeadline  time.Time
}

// TicketAssignedPayload describes an assignment decision.
type TicketAssignedPayload struct {
	AssigneeIDs    []string
	AssignmentType domain.AssignmentType
}

// TicketStatusChangedPayload describes a transition.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus
	NewStatus domain.TicketStatus
	Comment   string
}

// TicketClosedPayload describes closure accounting.
type TicketClosedPayload struct {
	PerformStatus   domain.PerformStatus
	DurationMinutes int64
	BonusPerTech    int64
}
