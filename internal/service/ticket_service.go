package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
	"github.com/nusalink/ftth-helpdesk/internal/events"
	"github.com/nusalink/ftth-helpdesk/internal/repository"
	apperrors "github.com/nusalink/ftth-helpdesk/pkg/util"
)

// TicketService owns the ticket status state machine. It is the sole writer
// of Ticket.status and Assignment.active; the assignment engine and the fee
// calculator are invoked from within its transitions.
type TicketService struct {
	tickets     repository.TicketRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	perfLogs    repository.PerformanceLogRepository
	history     repository.TicketHistoryRepository
	bonus       *BonusCalculator
	settings    *SettingsService
	tx          TxRunner
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// TicketDependencies bundles collaborators for the service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	AssignmentRepo repository.AssignmentRepository
	UserRepo       repository.UserRepository
	PerfLogRepo    repository.PerformanceLogRepository
	HistoryRepo    repository.TicketHistoryRepository
	Bonus          *BonusCalculator
	Settings       *SettingsService
	Tx             TxRunner
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		assignments: deps.AssignmentRepo,
		users:       deps.UserRepo,
		perfLogs:    deps.PerfLogRepo,
		history:     deps.HistoryRepo,
		bonus:       deps.Bonus,
		settings:    deps.Settings,
		tx:          deps.Tx,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	TicketIDCustom    *string
	Type              domain.TicketType
	Priority          domain.TicketPriority
	CustomerName      string
	CustomerPhone     string
	CustomerEmail     *string
	LocationURL       *string
	Area              *string
	Description       string
	DescriptionImages []string
}

// CloseInput carries the technician's completion evidence.
type CloseInput struct {
	ActionDescription string
	ProofImageURL     *string
	SpeedtestURL      *string
}

var validTicketTypes = map[domain.TicketType]bool{
	domain.TicketTypeHomeMaintenance:     true,
	domain.TicketTypeBackboneMaintenance: true,
	domain.TicketTypeInstallation:        true,
}

var validPriorities = map[domain.TicketPriority]bool{
	domain.TicketPriorityLow:      true,
	domain.TicketPriorityMedium:   true,
	domain.TicketPriorityHigh:     true,
	domain.TicketPriorityCritical: true,
}

// CreateTicket registers a new ticket in open status with its SLA deadline
// fixed from the creation instant.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleSuperadmin, domain.RoleAdmin, domain.RoleHelpdesk); err != nil {
		return nil, err
	}
	if !validTicketTypes[input.Type] {
		return nil, apperrors.NewValidationError("invalid ticket type", map[string]any{"type": string(input.Type)})
	}
	if strings.TrimSpace(input.CustomerName) == "" || strings.TrimSpace(input.CustomerPhone) == "" {
		return nil, apperrors.NewValidationError("customer_name and customer_phone required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !validPriorities[priority] {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(priority)})
	}

	now := time.Now()
	ticket := &domain.Ticket{
		TicketNumber:      generateTicketNumber(),
		TicketIDCustom:    input.TicketIDCustom,
		Type:              input.Type,
		Priority:          priority,
		Status:            domain.TicketStatusOpen,
		CustomerName:      strings.TrimSpace(input.CustomerName),
		CustomerPhone:     strings.TrimSpace(input.CustomerPhone),
		CustomerEmail:     input.CustomerEmail,
		LocationURL:       input.LocationURL,
		Area:              input.Area,
		Description:       strings.TrimSpace(input.Description),
		DescriptionImages: input.DescriptionImages,
		SLADeadline:       ComputeSLADeadline(input.Type, now),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Type:         ticket.Type,
			Priority:     ticket.Priority,
			SLADeadline:  ticket.SLADeadline,
		},
	})
	return ticket, nil
}

// GetTicket fetches one ticket with its assignment trail.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, []domain.Assignment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	assignments, err := s.assignments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, assignments, nil
}

// ListTickets returns tickets matching the filter. Technicians only see
// their own assigned work.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if actor != nil && actor.Role == domain.RoleTechnician {
		filter.AssignedTo = &actor.ID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Start moves an assigned ticket to in_progress. Only the assigned
// technician may start it.
func (s *TicketService) Start(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	var (
		ticket  *domain.Ticket
		pending []events.Event
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.loadTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if err := s.requireAssignee(ctx, actor, ticket); err != nil {
			return err
		}
		if ticket.Status != domain.TicketStatusAssigned {
			return transitionConflict(ticket.Status, domain.TicketStatusInProgress)
		}
		event, err := s.transition(ctx, actor, ticket, domain.TicketStatusInProgress, "started")
		if err != nil {
			return err
		}
		pending = append(pending, event)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishAll(ctx, actor, pending)
	return ticket, nil
}

// Close completes an in-progress ticket: evidence is recorded, the SLA
// outcome decides the payout, and one performance log is written per active
// assignee. DurationMinutes is anchored on the ticket's createdAt for every
// technician on the crew.
func (s *TicketService) Close(ctx context.Context, actor *domain.User, ticketID string, input CloseInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.ActionDescription) == "" {
		return nil, apperrors.NewValidationError("action_description required", nil)
	}

	var (
		ticket  *domain.Ticket
		pending []events.Event
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.loadTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if err := s.requireAssignee(ctx, actor, ticket); err != nil {
			return err
		}
		if ticket.Status != domain.TicketStatusInProgress {
			return transitionConflict(ticket.Status, domain.TicketStatusClosed)
		}

		now := time.Now()
		onTime := !now.After(ticket.SLADeadline)
		breakdown, err := s.bonus.Compute(ctx, ticket.Type, onTime)
		if err != nil {
			return err
		}

		perform := domain.PerformStatusPerform
		if !onTime {
			perform = domain.PerformStatusNotPerform
		}
		duration := int64(now.Sub(ticket.CreatedAt).Minutes())
		action := strings.TrimSpace(input.ActionDescription)

		ticket.ClosedAt = &now
		ticket.ClosedBy = &actor.ID
		ticket.DurationMinutes = &duration
		ticket.PerformStatus = &perform
		ticket.TicketFee = &breakdown.TicketFee
		ticket.TransportFee = &breakdown.TransportFee
		ticket.Bonus = &breakdown.TotalPerTechnician
		ticket.ActionDescription = &action
		ticket.ProofImageURL = input.ProofImageURL
		ticket.SpeedtestURL = input.SpeedtestURL

		event, err := s.transition(ctx, actor, ticket, domain.TicketStatusClosed, "closed")
		if err != nil {
			return err
		}
		if err := s.writePerformanceLogs(ctx, ticket, perform, onTime, duration); err != nil {
			return err
		}

		pending = append(pending, event, events.Event{
			Type:     events.EventTicketClosed,
			TicketID: ticket.ID,
			Payload: events.TicketClosedPayload{
				PerformStatus:   perform,
				DurationMinutes: duration,
				BonusPerTech:    breakdown.TotalPerTechnician,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishAll(ctx, actor, pending)
	return ticket, nil
}

// ReportNoResponse freezes a ticket pending admin review when the customer
// is unreachable. The prior status is retained for cancel-reject.
func (s *TicketService) ReportNoResponse(ctx context.Context, actor *domain.User, ticketID, reason string) (*domain.Ticket, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("reason required", nil)
	}

	var (
		ticket  *domain.Ticket
		pending []events.Event
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.loadTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if err := s.requireAssignee(ctx, actor, ticket); err != nil {
			return err
		}
		if ticket.Status != domain.TicketStatusAssigned && ticket.Status != domain.TicketStatusInProgress {
			return transitionConflict(ticket.Status, domain.TicketStatusPendingRejection)
		}
		prior := ticket.Status
		trimmed := strings.TrimSpace(reason)
		ticket.PriorStatus = &prior
		ticket.RejectionReason = &trimmed
		event, err := s.transition(ctx, actor, ticket, domain.TicketStatusPendingRejection, "no_response")
		if err != nil {
			return err
		}
		pending = append(pending, event)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishAll(ctx, actor, pending)
	return ticket, nil
}

// Reject confirms a pending rejection.
func (s *TicketService) Reject(ctx context.Context, actor *domain.User, ticketID, reason string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleSuperadmin, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("reason required", nil)
	}

	var (
		ticket  *domain.Ticket
		pending []events.Event
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.loadTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status != domain.TicketStatusPendingRejection {
			return transitionConflict(ticket.Status, domain.TicketStatusRejected)
		}
		trimmed := strings.TrimSpace(reason)
		ticket.RejectionReason = &trimmed
		ticket.PriorStatus = nil
		event, err := s.transition(ctx, actor, ticket, domain.TicketStatusRejected, "rejected")
		if err != nil {
			return err
		}
		pending = append(pending, event)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishAll(ctx, actor, pending)
	return ticket, nil
}

// CancelReject reverts a pending rejection, restoring the status the ticket
// held before the technician reported no response.
func (s *TicketService) CancelReject(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleSuperadmin, domain.RoleAdmin); err != nil {
		return nil, err
	}

	var (
		ticket  *domain.Ticket
		pending []events.Event
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.loadTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		restored := domain.TicketStatusAssigned
		if ticket.PriorStatus != nil {
			restored = *ticket.PriorStatus
		}
		if ticket.Status != domain.TicketStatusPendingRejection {
			return transitionConflict(ticket.Status, restored)
		}
		ticket.PriorStatus = nil
		ticket.RejectionReason = nil
		event, err := s.transition(ctx, actor, ticket, restored, "cancel_reject")
		if err != nil {
			return err
		}
		pending = append(pending, event)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishAll(ctx, actor, pending)
	return ticket, nil
}

// Reopen puts a rejected ticket back in play: fresh SLA deadline from the
// reopen instant, rejection fields cleared, and one or two technicians
// manually (re)assigned.
func (s *TicketService) Reopen(ctx context.Context, actor *domain.User, ticketID, reason string, technicianIDs []string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleSuperadmin, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("reason required", nil)
	}
	if len(technicianIDs) < 1 || len(technicianIDs) > 2 {
		return nil, apperrors.NewValidationError("reopen requires 1 or 2 technician ids",
			map[string]any{"count": len(technicianIDs)})
	}
	if len(technicianIDs) == 2 && technicianIDs[0] == technicianIDs[1] {
		return nil, apperrors.NewValidationError("duplicate technician id",
			map[string]any{"user_id": technicianIDs[0]})
	}

	var (
		ticket  *domain.Ticket
		pending []events.Event
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.loadTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status != domain.TicketStatusRejected {
			return transitionConflict(ticket.Status, domain.TicketStatusAssigned)
		}
		for _, techID := range technicianIDs {
			assignee, err := s.users.GetByID(ctx, techID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NewNotFound("user", map[string]any{"user_id": techID})
				}
				return apperrors.MapError(err)
			}
			if !assignee.Assignable() {
				return apperrors.NewValidationError("assignee must be an active technician",
					map[string]any{"user_id": techID})
			}
		}
		if _, err := s.assignments.DeactivateByTicket(ctx, ticket.ID); err != nil {
			return apperrors.MapError(err)
		}
		now := time.Now()
		for _, techID := range technicianIDs {
			assignment := &domain.Assignment{
				TicketID:       ticket.ID,
				UserID:         techID,
				AssignedAt:     now,
				Active:         true,
				AssignmentType: domain.AssignmentTypeManual,
			}
			if err := s.assignments.Create(ctx, assignment); err != nil {
				return apperrors.MapError(err)
			}
		}
		trimmed := strings.TrimSpace(reason)
		ticket.ReopenReason = &trimmed
		ticket.RejectionReason = nil
		ticket.SLADeadline = ComputeSLADeadline(ticket.Type, now)
		event, err := s.transition(ctx, actor, ticket, domain.TicketStatusAssigned, "reopened")
		if err != nil {
			return err
		}
		pending = append(pending, event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishAll(ctx, actor, pending)
	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload: events.TicketAssignedPayload{
			AssigneeIDs:    technicianIDs,
			AssignmentType: domain.AssignmentTypeManual,
		},
	})
	return ticket, nil
}

// CloseByHelpdesk administratively closes a ticket stuck in pending
// rejection. No fee computation: fees are zeroed and performance is recorded
// as not_perform.
func (s *TicketService) CloseByHelpdesk(ctx context.Context, actor *domain.User, ticketID, reason string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleSuperadmin, domain.RoleAdmin, domain.RoleHelpdesk); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("reason required", nil)
	}

	var (
		ticket  *domain.Ticket
		pending []events.Event
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.loadTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status != domain.TicketStatusPendingRejection {
			return transitionConflict(ticket.Status, domain.TicketStatusClosed)
		}

		now := time.Now()
		perform := domain.PerformStatusNotPerform
		duration := int64(now.Sub(ticket.CreatedAt).Minutes())
		trimmed := strings.TrimSpace(reason)
		zero := int64(0)

		ticket.ClosedAt = &now
		ticket.ClosedBy = &actor.ID
		ticket.ClosedReason = &trimmed
		ticket.DurationMinutes = &duration
		ticket.PerformStatus = &perform
		ticket.TicketFee = &zero
		ticket.TransportFee = &zero
		ticket.Bonus = &zero
		ticket.PriorStatus = nil

		event, err := s.transition(ctx, actor, ticket, domain.TicketStatusClosed, "closed_by_helpdesk")
		if err != nil {
			return err
		}
		if err := s.writePerformanceLogs(ctx, ticket, perform, false, duration); err != nil {
			return err
		}
		pending = append(pending, event)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishAll(ctx, actor, pending)
	return ticket, nil
}

// BulkResetStaleAssignments reverts tickets stuck in assigned status past
// the configured threshold back to open, deactivating their assignments.
// Safe to re-run; callable from the admin endpoint and the midnight job.
func (s *TicketService) BulkResetStaleAssignments(ctx context.Context) (int, error) {
	threshold, err := s.settings.StaleThreshold(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-threshold)

	reset := 0
	var pending []events.Event
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		stale, err := s.tickets.ListStaleAssigned(ctx, cutoff)
		if err != nil {
			return apperrors.MapError(err)
		}
		for i := range stale {
			ticket := &stale[i]
			if _, err := s.assignments.DeactivateByTicket(ctx, ticket.ID); err != nil {
				return apperrors.MapError(err)
			}
			event, err := s.transition(ctx, nil, ticket, domain.TicketStatusOpen, "stale_assignment_reset")
			if err != nil {
				return err
			}
			pending = append(pending, event)
			reset++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.publishAll(ctx, nil, pending)
	if reset > 0 {
		s.logger.Info("stale assignments reset", zap.Int("count", reset))
	}
	return reset, nil
}

// RecalculateBonuses deletes every performance log and regenerates logs and
// ticket fee fields for all closed tickets from current settings. Idempotent.
func (s *TicketService) RecalculateBonuses(ctx context.Context) (int, error) {
	recalculated := 0
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.perfLogs.DeleteAll(ctx); err != nil {
			return apperrors.MapError(err)
		}
		closed, err := s.tickets.ListClosed(ctx)
		if err != nil {
			return apperrors.MapError(err)
		}
		for i := range closed {
			ticket := &closed[i]
			if ticket.ClosedAt == nil {
				continue
			}
			onTime := !ticket.ClosedAt.After(ticket.SLADeadline)
			// administrative closures stay fee-less regardless of settings
			if ticket.ClosedReason != nil {
				onTime = false
			}
			breakdown, err := s.bonus.Compute(ctx, ticket.Type, onTime)
			if err != nil {
				return err
			}
			perform := domain.PerformStatusPerform
			if !onTime {
				perform = domain.PerformStatusNotPerform
			}
			duration := int64(ticket.ClosedAt.Sub(ticket.CreatedAt).Minutes())

			ticket.PerformStatus = &perform
			ticket.DurationMinutes = &duration
			ticket.TicketFee = &breakdown.TicketFee
			ticket.TransportFee = &breakdown.TransportFee
			ticket.Bonus = &breakdown.TotalPerTechnician
			if err := s.tickets.Update(ctx, ticket); err != nil {
				return apperrors.MapError(err)
			}
			if err := s.writePerformanceLogs(ctx, ticket, perform, onTime, duration); err != nil {
				return err
			}
			recalculated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return recalculated, nil
}

func (s *TicketService) writePerformanceLogs(ctx context.Context, ticket *domain.Ticket, perform domain.PerformStatus, onTime bool, duration int64) error {
	assignees, err := s.assignments.ListActiveByTicket(ctx, ticket.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	for _, assignment := range assignees {
		log := &domain.PerformanceLog{
			UserID:             assignment.UserID,
			TicketID:           ticket.ID,
			Result:             perform,
			CompletedWithinSLA: onTime,
			DurationMinutes:    duration,
		}
		if err := s.perfLogs.Create(ctx, log); err != nil {
			return apperrors.MapError(err)
		}
	}
	return nil
}

// transition persists a status change and its audit entry after the caller
// has validated legality. The status-changed event is returned, not
// published: callers publish it only once the transaction has committed, so
// a rollback never leaks an event for state that was undone.
func (s *TicketService) transition(ctx context.Context, actor *domain.User, ticket *domain.Ticket, next domain.TicketStatus, comment string) (events.Event, error) {
	oldStatus := ticket.Status
	ticket.Status = next
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return events.Event{}, apperrors.MapError(err)
	}
	if s.history != nil {
		var actorID *string
		if actor != nil {
			actorID = &actor.ID
		}
		entry := &domain.TicketHistory{
			TicketID:    ticket.ID,
			ChangedByID: actorID,
			ChangeType:  domain.ChangeTypeStatus,
			OldValue:    map[string]any{"status": oldStatus},
			NewValue:    map[string]any{"status": next, "comment": comment},
		}
		if err := s.history.Create(ctx, entry); err != nil {
			return events.Event{}, apperrors.MapError(err)
		}
	}
	return events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: next,
			Comment:   comment,
		},
	}, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// requireAssignee verifies the actor is a technician holding an active
// assignment on the ticket.
func (s *TicketService) requireAssignee(ctx context.Context, actor *domain.User, ticket *domain.Ticket) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role != domain.RoleTechnician {
		return apperrors.NewForbidden("technician role required")
	}
	assignees, err := s.assignments.ListActiveByTicket(ctx, ticket.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	for _, assignment := range assignees {
		if assignment.UserID == actor.ID {
			return nil
		}
	}
	return apperrors.NewForbidden("ticket is not assigned to you")
}

func (s *TicketService) publish(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if actor != nil {
		event.Actor = events.Actor{UserID: &actor.ID, Role: &actor.Role}
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *TicketService) publishAll(ctx context.Context, actor *domain.User, pending []events.Event) {
	for _, event := range pending {
		s.publish(ctx, actor, event)
	}
}

func transitionConflict(current, requested domain.TicketStatus) error {
	return apperrors.NewConflict("illegal status transition", map[string]any{
		"current":   string(current),
		"requested": string(requested),
	})
}

func generateTicketNumber() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
