package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nusalink/ftth-helpdesk/internal/api/dto"
	"github.com/nusalink/ftth-helpdesk/internal/repository"
	"github.com/nusalink/ftth-helpdesk/internal/service"
	apperrors "github.com/nusalink/ftth-helpdesk/pkg/util"
)

// ReportsHandler serves aggregated read-only views.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// TicketReport GET /reports/tickets.
func (h *ReportsHandler) TicketReport(c *fiber.Ctx) error {
	filter := parseTicketQuery(c)
	tickets, err := h.reports.TicketReport(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// BonusSummary GET /reports/bonus-summary.
func (h *ReportsHandler) BonusSummary(c *fiber.Ctx) error {
	from, to, err := parsePeriod(c)
	if err != nil {
		return err
	}
	rows, err := h.reports.BonusSummary(c.Context(), from, to)
	if err != nil {
		return err
	}
	items := make([]dto.BonusSummaryResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.BonusSummaryResponse{
			UserID:       row.UserID,
			UserName:     row.UserName,
			TicketID:     row.TicketID,
			TicketNumber: row.TicketNumber,
			TicketType:   row.TicketType,
			ClosedAt:     row.ClosedAt,
			Result:       row.Result,
			TicketFee:    row.TicketFee,
			TransportFee: row.TransportFee,
			Total:        row.Total,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// PerformanceSummary GET /reports/performance-summary.
func (h *ReportsHandler) PerformanceSummary(c *fiber.Ctx) error {
	from, to, err := parsePeriod(c)
	if err != nil {
		return err
	}
	rows, err := h.reports.PerformanceSummary(c.Context(), from, to)
	if err != nil {
		return err
	}
	items := make([]dto.PerformanceSummaryResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, performanceSummaryResponse(row))
	}
	return c.JSON(fiber.Map{"data": items})
}

// TechnicianPeriod GET /reports/technicians/:id.
func (h *ReportsHandler) TechnicianPeriod(c *fiber.Ctx) error {
	from, to, err := parsePeriod(c)
	if err != nil {
		return err
	}
	row, err := h.reports.TechnicianPeriod(c.Context(), c.Params("id"), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TechnicianPeriodResponse{
		UserID:       row.UserID,
		UserName:     row.UserName,
		TotalTickets: row.TotalTickets,
		Performed:    row.Performed,
		NotPerformed: row.NotPerformed,
		TotalBonus:   row.TotalBonus,
	}})
}

// DashboardStats GET /reports/dashboard.
func (h *ReportsHandler) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.reports.DashboardStats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

func performanceSummaryResponse(row repository.PerformanceSummaryRow) dto.PerformanceSummaryResponse {
	rate := 0.0
	if row.ClosedTickets > 0 {
		rate = float64(row.WithinSLA) / float64(row.ClosedTickets)
	}
	return dto.PerformanceSummaryResponse{
		UserID:             row.UserID,
		UserName:           row.UserName,
		ClosedTickets:      row.ClosedTickets,
		WithinSLA:          row.WithinSLA,
		ComplianceRate:     rate,
		AvgDurationMinutes: row.AvgDurationMinutes,
		OverdueClosed:      row.OverdueClosed,
	}
}

// parsePeriod reads the mandatory from/to RFC3339 query range. Missing "to"
// defaults to now.
func parsePeriod(c *fiber.Ctx) (time.Time, time.Time, error) {
	fromPtr := parseTime(c.Query("from"))
	if fromPtr == nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("from is required (RFC3339)", nil)
	}
	to := time.Now()
	if toPtr := parseTime(c.Query("to")); toPtr != nil {
		to = *toPtr
	}
	if to.Before(*fromPtr) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("to must not precede from", nil)
	}
	return *fromPtr, to, nil
}
