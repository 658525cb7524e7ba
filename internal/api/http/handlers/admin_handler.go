package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nusalink/ftth-helpdesk/internal/api/dto"
	"github.com/nusalink/ftth-helpdesk/internal/repository"
	"github.com/nusalink/ftth-helpdesk/internal/service"
)

// AdminHandler exposes maintenance triggers normally driven by the
// scheduler or run once after data imports.
type AdminHandler struct {
	tickets    *service.TicketService
	ticketRepo repository.TicketRepository
}

// NewAdminHandler constructs handler.
func NewAdminHandler(tickets *service.TicketService, ticketRepo repository.TicketRepository) *AdminHandler {
	return &AdminHandler{tickets: tickets, ticketRepo: ticketRepo}
}

// ResetStaleAssignments POST /admin/reset-stale-assignments.
func (h *AdminHandler) ResetStaleAssignments(c *fiber.Ctx) error {
	affected, err := h.tickets.BulkResetStaleAssignments(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AdminOpResponse{Affected: int64(affected)}})
}

// RecalculateBonuses POST /admin/recalculate-bonuses.
func (h *AdminHandler) RecalculateBonuses(c *fiber.Ctx) error {
	affected, err := h.tickets.RecalculateBonuses(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AdminOpResponse{Affected: int64(affected)}})
}

// BackfillAreas POST /admin/backfill-areas.
func (h *AdminHandler) BackfillAreas(c *fiber.Ctx) error {
	affected, err := h.ticketRepo.BackfillAreas(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AdminOpResponse{Affected: affected}})
}

// BackfillCustomerNames POST /admin/backfill-names.
func (h *AdminHandler) BackfillCustomerNames(c *fiber.Ctx) error {
	affected, err := h.ticketRepo.BackfillCustomerNames(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AdminOpResponse{Affected: affected}})
}
