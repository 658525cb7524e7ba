package dto

import (
	"time"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	TicketIDCustom    *string               `json:"ticket_id_custom"`
	Type              domain.TicketType     `json:"type"`
	Priority          domain.TicketPriority `json:"priority"`
	CustomerName      string                `json:"customer_name"`
	CustomerPhone     string                `json:"customer_phone"`
	CustomerEmail     *string               `json:"customer_email"`
	LocationURL       *string               `json:"location_url"`
	Area              *string               `json:"area"`
	Description       string                `json:"description"`
	DescriptionImages []string              `json:"description_images"`
}

// AssignTicketRequest payload for manual assignment.
type AssignTicketRequest struct {
	UserID string `json:"user_id"`
}

// CloseTicketRequest payload from the closing technician.
type CloseTicketRequest struct {
	ActionDescription string  `json:"action_description"`
	ProofImageURL     *string `json:"proof_image_url"`
	SpeedtestURL      *string `json:"speedtest_url"`
}

// ReasonRequest carries the mandatory justification text used by
// no-response, reject and close-by-helpdesk.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// ReopenTicketRequest payload.
type ReopenTicketRequest struct {
	Reason        string   `json:"reason"`
	TechnicianIDs []string `json:"technician_ids"`
}

// AssignmentResponse is one row of the assignment trail.
type AssignmentResponse struct {
	ID             string                `json:"id"`
	UserID         string                `json:"user_id"`
	AssignedAt     time.Time             `json:"assigned_at"`
	Active         bool                  `json:"active"`
	AssignmentType domain.AssignmentType `json:"assignment_type"`
}

// TicketSummary response.
type TicketSummary struct {
	ID            string                `json:"id"`
	TicketNumber  string                `json:"ticket_number"`
	Type          domain.TicketType     `json:"type"`
	Priority      domain.TicketPriority `json:"priority"`
	Status        domain.TicketStatus   `json:"status"`
	CustomerName  string                `json:"customer_name"`
	CustomerPhone string                `json:"customer_phone"`
	Area          *string               `json:"area"`
	CreatedAt     time.Time             `json:"created_at"`
	SLADeadline   time.Time             `json:"sla_deadline"`
	Overdue       bool                  `json:"overdue"`
	ClosedAt      *time.Time            `json:"closed_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	TicketIDCustom    *string               `json:"ticket_id_custom"`
	CustomerEmail     *string               `json:"customer_email"`
	LocationURL       *string               `json:"location_url"`
	Description       string                `json:"description"`
	DescriptionImages []string              `json:"description_images"`
	DurationMinutes   *int64                `json:"duration_minutes"`
	PerformStatus     *domain.PerformStatus `json:"perform_status"`
	Bonus             *int64                `json:"bonus"`
	TicketFee         *int64                `json:"ticket_fee"`
	TransportFee      *int64                `json:"transport_fee"`
	RejectionReason   *string               `json:"rejection_reason"`
	ReopenReason      *string               `json:"reopen_reason"`
	ClosedReason      *string               `json:"closed_reason"`
	ActionDescription *string               `json:"action_description"`
	ProofImageURL     *string               `json:"proof_image_url"`
	SpeedtestURL      *string               `json:"speedtest_url"`
	Assignments       []AssignmentResponse  `json:"assignments"`
}
