package dto

import (
	"time"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

// BonusSummaryResponse is one technician/ticket fee line.
type BonusSummaryResponse struct {
	UserID       string               `json:"user_id"`
	UserName     string               `json:"user_name"`
	TicketID     string               `json:"ticket_id"`
	TicketNumber string               `json:"ticket_number"`
	TicketType   domain.TicketType    `json:"ticket_type"`
	ClosedAt     time.Time            `json:"closed_at"`
	Result       domain.PerformStatus `json:"result"`
	TicketFee    int64                `json:"ticket_fee"`
	TransportFee int64                `json:"transport_fee"`
	Total        int64                `json:"total"`
}

// PerformanceSummaryResponse aggregates SLA outcomes per technician.
type PerformanceSummaryResponse struct {
	UserID             string  `json:"user_id"`
	UserName           string  `json:"user_name"`
	ClosedTickets      int64   `json:"closed_tickets"`
	WithinSLA          int64   `json:"within_sla"`
	ComplianceRate     float64 `json:"compliance_rate"`
	AvgDurationMinutes float64 `json:"avg_duration_minutes"`
	OverdueClosed      int64   `json:"overdue_closed"`
}

// TechnicianPeriodResponse totals a technician's period.
type TechnicianPeriodResponse struct {
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name"`
	TotalTickets int64  `json:"total_tickets"`
	Performed    int64  `json:"performed"`
	NotPerformed int64  `json:"not_performed"`
	TotalBonus   int64  `json:"total_bonus"`
}

// AdminOpResponse reports how many rows a maintenance trigger touched.
type AdminOpResponse struct {
	Affected int64 `json:"affected"`
}
