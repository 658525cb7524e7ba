package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nusalink/ftth-helpdesk/internal/api/dto"
	"github.com/nusalink/ftth-helpdesk/internal/auth"
	"github.com/nusalink/ftth-helpdesk/internal/domain"
	"github.com/nusalink/ftth-helpdesk/internal/repository"
	"github.com/nusalink/ftth-helpdesk/internal/service"
	apperrors "github.com/nusalink/ftth-helpdesk/pkg/util"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, assignments: assignments}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.CreateTicket(c.Context(), actor, service.TicketCreateInput{
		TicketIDCustom:    req.TicketIDCustom,
		Type:              req.Type,
		Priority:          req.Priority,
		CustomerName:      req.CustomerName,
		CustomerPhone:     req.CustomerPhone,
		CustomerEmail:     req.CustomerEmail,
		LocationURL:       req.LocationURL,
		Area:              req.Area,
		Description:       req.Description,
		DescriptionImages: req.DescriptionImages,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, _ := auth.UserFromContext(c)
	filter := parseTicketQuery(c)
	tickets, err := h.tickets.ListTickets(c.Context(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, assignments, err := h.tickets.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, assignments)})
}

// AssignTicket POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	ticket, err := h.assignments.ManualAssign(c.Context(), actor, c.Params("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AutoAssign POST /tickets/auto-assign. The acting technician is taken from
// the session.
func (h *TicketsHandler) AutoAssign(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.assignments.AutoAssign(c.Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// StartTicket POST /tickets/:id/start.
func (h *TicketsHandler) StartTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.Start(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CloseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.Close(c.Context(), actor, c.Params("id"), service.CloseInput{
		ActionDescription: req.ActionDescription,
		ProofImageURL:     req.ProofImageURL,
		SpeedtestURL:      req.SpeedtestURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetailNoAssignments(ticket)})
}

// NoResponse POST /tickets/:id/no-response.
func (h *TicketsHandler) NoResponse(c *fiber.Ctx) error {
	return h.reasonTransition(c, h.tickets.ReportNoResponse)
}

// RejectTicket POST /tickets/:id/reject.
func (h *TicketsHandler) RejectTicket(c *fiber.Ctx) error {
	return h.reasonTransition(c, h.tickets.Reject)
}

// CancelReject POST /tickets/:id/cancel-reject.
func (h *TicketsHandler) CancelReject(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.CancelReject(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ReopenTicket POST /tickets/:id/reopen.
func (h *TicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReopenTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.Reopen(c.Context(), actor, c.Params("id"), req.Reason, req.TechnicianIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// CloseByHelpdesk POST /tickets/:id/close-by-helpdesk.
func (h *TicketsHandler) CloseByHelpdesk(c *fiber.Ctx) error {
	return h.reasonTransition(c, h.tickets.CloseByHelpdesk)
}

func (h *TicketsHandler) reasonTransition(c *fiber.Ctx, fn func(ctx context.Context, actor *domain.User, ticketID, reason string) (*domain.Ticket, error)) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := fn(c.Context(), actor, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if typeStr := c.Query("type"); typeStr != "" {
		for _, part := range strings.Split(typeStr, ",") {
			filter.Types = append(filter.Types, domain.TicketType(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		filter.AssignedTo = &assignedTo
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:            ticket.ID,
		TicketNumber:  ticket.TicketNumber,
		Type:          ticket.Type,
		Priority:      ticket.Priority,
		Status:        ticket.Status,
		CustomerName:  ticket.CustomerName,
		CustomerPhone: ticket.CustomerPhone,
		Area:          ticket.Area,
		CreatedAt:     ticket.CreatedAt,
		SLADeadline:   ticket.SLADeadline,
		Overdue:       ticket.Overdue(time.Now()),
		ClosedAt:      ticket.ClosedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, assignments []domain.Assignment) dto.TicketDetailResponse {
	detail := ticketDetailNoAssignments(ticket)
	rows := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		rows = append(rows, dto.AssignmentResponse{
			ID:             assignment.ID,
			UserID:         assignment.UserID,
			AssignedAt:     assignment.AssignedAt,
			Active:         assignment.Active,
			AssignmentType: assignment.AssignmentType,
		})
	}
	detail.Assignments = rows
	return detail
}

func ticketDetailNoAssignments(ticket *domain.Ticket) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		TicketSummary:     ticketSummary(ticket),
		TicketIDCustom:    ticket.TicketIDCustom,
		CustomerEmail:     ticket.CustomerEmail,
		LocationURL:       ticket.LocationURL,
		Description:       ticket.Description,
		DescriptionImages: ticket.DescriptionImages,
		DurationMinutes:   ticket.DurationMinutes,
		PerformStatus:     ticket.PerformStatus,
		Bonus:             ticket.Bonus,
		TicketFee:         ticket.TicketFee,
		TransportFee:      ticket.TransportFee,
		RejectionReason:   ticket.RejectionReason,
		ReopenReason:      ticket.ReopenReason,
		ClosedReason:      ticket.ClosedReason,
		ActionDescription: ticket.ActionDescription,
		ProofImageURL:     ticket.ProofImageURL,
		SpeedtestURL:      ticket.SpeedtestURL,
	}
}
