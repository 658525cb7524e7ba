package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen              TicketStatus = "open"
	TicketStatusWaitingAssignment TicketStatus = "waiting_assignment"
	TicketStatusAssigned          TicketStatus = "assigned"
	TicketStatusInProgress        TicketStatus = "in_progress"
	TicketStatusPendingRejection  TicketStatus = "pending_rejection"
	TicketStatusRejected          TicketStatus = "rejected"
	TicketStatusClosed            TicketStatus = "closed"
)

// IsTerminal reports whether the status admits no further technician action.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusClosed
}

// TicketType enumerates work categories.
type TicketType string

const (
	TicketTypeHomeMaintenance     TicketType = "home_maintenance"
	TicketTypeBackboneMaintenance TicketType = "backbone_maintenance"
	TicketTypeInstallation        TicketType = "installation"
)

// IsMaintenance reports whether the type belongs to the maintenance class of
// the auto-assign ratio cycle.
func (t TicketType) IsMaintenance() bool {
	return t == TicketTypeHomeMaintenance || t == TicketTypeBackboneMaintenance
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// PerformStatus records whether a ticket was closed within its SLA.
type PerformStatus string

const (
	PerformStatusPerform    PerformStatus = "perform"
	PerformStatusNotPerform PerformStatus = "not_perform"
)

// Ticket is the aggregate for customer issues and installation requests.
type Ticket struct {
	ID             string
	TicketNumber   string
	TicketIDCustom *string
	Type           TicketType
	Priority       TicketPriority
	Status         TicketStatus
	// PriorStatus holds the status the ticket had before entering
	// pending_rejection so cancel-reject can restore it.
	PriorStatus       *TicketStatus
	CustomerName      string
	CustomerPhone     string
	CustomerEmail     *string
	LocationURL       *string
	Area              *string
	Description       string
	DescriptionImages []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	SLADeadline       time.Time
	ClosedAt          *time.Time
	ClosedBy          *string
	DurationMinutes   *int64
	PerformStatus     *PerformStatus
	Bonus             *int64
	TicketFee         *int64
	TransportFee      *int64
	RejectionReason   *string
	ReopenReason      *string
	ClosedReason      *string
	ActionDescription *string
	ProofImageURL     *string
	SpeedtestURL      *string
}

// Overdue reports whether a non-terminal ticket has passed its SLA deadline.
// Overdue is a derived view, never a stored status.
func (t *Ticket) Overdue(now time.Time) bool {
	if t.Status.IsTerminal() || t.Status == TicketStatusRejected {
		return false
	}
	return now.After(t.SLADeadline)
}
