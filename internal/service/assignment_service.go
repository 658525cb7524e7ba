package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
	"github.com/nusalink/ftth-helpdesk/internal/events"
	"github.com/nusalink/ftth-helpdesk/internal/repository"
	apperrors "github.com/nusalink/ftth-helpdesk/pkg/util"
)

// AssignmentService selects technicians for tickets, manually or via the
// ratio-based rotation. It only proposes and records assignments; ticket
// status writes happen within the same transaction.
type AssignmentService struct {
	tickets     repository.TicketRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	history     repository.TicketHistoryRepository
	settings    *SettingsService
	tx          TxRunner
	dispatcher  events.Dispatcher
}

// AssignmentDependencies bundles repositories for the service.
type AssignmentDependencies struct {
	TicketRepo     repository.TicketRepository
	AssignmentRepo repository.AssignmentRepository
	UserRepo       repository.UserRepository
	HistoryRepo    repository.TicketHistoryRepository
	Settings       *SettingsService
	Tx             TxRunner
	Dispatcher     events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:     deps.TicketRepo,
		assignments: deps.AssignmentRepo,
		users:       deps.UserRepo,
		history:     deps.HistoryRepo,
		settings:    deps.Settings,
		tx:          deps.Tx,
		dispatcher:  deps.Dispatcher,
	}
}

// manualAssignable lists the statuses an admin may (re)assign from.
var manualAssignable = map[domain.TicketStatus]bool{
	domain.TicketStatusOpen:              true,
	domain.TicketStatusWaitingAssignment: true,
	domain.TicketStatusAssigned:          true,
}

// ManualAssign assigns the ticket to the chosen technician. No eligibility
// filtering beyond "active technician"; the admin is trusted to pick
// appropriately. Prior active assignment rows are deactivated, never deleted.
func (s *AssignmentService) ManualAssign(ctx context.Context, actor *domain.User, ticketID, userID string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleSuperadmin, domain.RoleAdmin, domain.RoleHelpdesk); err != nil {
		return nil, err
	}

	assignee, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.Assignable() {
		return nil, apperrors.NewValidationError("assignee must be an active technician", map[string]any{"user_id": userID})
	}

	var ticket *domain.Ticket
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ticket, err = s.tickets.GetByID(ctx, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return apperrors.MapError(err)
		}
		if !manualAssignable[ticket.Status] {
			return apperrors.NewConflict("ticket cannot be assigned in current status",
				map[string]any{"status": string(ticket.Status)})
		}
		if _, err := s.assignments.DeactivateByTicket(ctx, ticket.ID); err != nil {
			return apperrors.MapError(err)
		}
		assignment := &domain.Assignment{
			TicketID:       ticket.ID,
			UserID:         assignee.ID,
			AssignedAt:     time.Now(),
			Active:         true,
			AssignmentType: domain.AssignmentTypeManual,
		}
		if err := s.assignments.Create(ctx, assignment); err != nil {
			return apperrors.MapError(err)
		}
		oldStatus := ticket.Status
		ticket.Status = domain.TicketStatusAssigned
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		return s.recordAssignment(ctx, actor.ID, ticket.ID, oldStatus, []string{assignee.ID}, domain.AssignmentTypeManual)
	})
	if err != nil {
		return nil, err
	}

	s.publishAssigned(ctx, actor, ticket.ID, []string{assignee.ID}, domain.AssignmentTypeManual)
	return ticket, nil
}

// AutoAssign pops the next eligible ticket for the requesting technician.
// Backbone specialists only ever receive backbone_maintenance work and
// generalists never do; a rolling counter interleaves maintenance and
// installation per the configured ratio. The whole reserve-and-pair step runs
// in one transaction with row locking so concurrent calls cannot double-book
// a ticket or a technician.
func (s *AssignmentService) AutoAssign(ctx context.Context, technician *domain.User) (*domain.Ticket, error) {
	if technician == nil || technician.Role != domain.RoleTechnician {
		return nil, apperrors.NewForbidden("technician role required")
	}
	if !technician.IsActive {
		return nil, apperrors.NewForbidden("inactive technician")
	}

	var (
		ticket      *domain.Ticket
		assigneeIDs []string
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.assignments.AcquireUserLock(ctx, technician.ID); err != nil {
			return apperrors.MapError(err)
		}
		active, err := s.assignments.CountActiveNonTerminal(ctx, technician.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if active > 0 {
			return apperrors.NewConflict("technician already holds an active ticket",
				map[string]any{"user_id": technician.ID})
		}

		maintenance, installation, err := s.settings.Ratio(ctx)
		if err != nil {
			return err
		}
		counter, err := s.settings.CycleCounter(ctx)
		if err != nil {
			return err
		}
		window := maintenance + installation
		wantMaintenance := counter%window < maintenance

		ticket, err = s.pickTicket(ctx, technician, wantMaintenance)
		if err != nil {
			return err
		}

		if _, err := s.assignments.DeactivateByTicket(ctx, ticket.ID); err != nil {
			return apperrors.MapError(err)
		}
		now := time.Now()
		lead := &domain.Assignment{
			TicketID:       ticket.ID,
			UserID:         technician.ID,
			AssignedAt:     now,
			Active:         true,
			AssignmentType: domain.AssignmentTypeAuto,
		}
		if err := s.assignments.Create(ctx, lead); err != nil {
			return apperrors.MapError(err)
		}
		assigneeIDs = []string{technician.ID}

		// non-backbone work defaults to a two-technician crew when an idle
		// partner exists; the ticket is never blocked on finding one
		if ticket.Type != domain.TicketTypeBackboneMaintenance {
			idle, err := s.users.ListIdleTechnicians(ctx, false, technician.ID)
			if err != nil {
				return apperrors.MapError(err)
			}
			for i := range idle {
				candidate := &idle[i]
				// a held lock means the candidate's own auto-assign is in
				// flight and may already have booked them; skip the candidate
				locked, err := s.assignments.TryAcquireUserLock(ctx, candidate.ID)
				if err != nil {
					return apperrors.MapError(err)
				}
				if !locked {
					continue
				}
				partner := &domain.Assignment{
					TicketID:       ticket.ID,
					UserID:         candidate.ID,
					AssignedAt:     now,
					Active:         true,
					AssignmentType: domain.AssignmentTypeAuto,
				}
				if err := s.assignments.Create(ctx, partner); err != nil {
					return apperrors.MapError(err)
				}
				assigneeIDs = append(assigneeIDs, candidate.ID)
				break
			}
		}

		oldStatus := ticket.Status
		ticket.Status = domain.TicketStatusAssigned
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		if err := s.settings.StoreCycleCounter(ctx, (counter+1)%window); err != nil {
			return err
		}
		return s.recordAssignment(ctx, technician.ID, ticket.ID, oldStatus, assigneeIDs, domain.AssignmentTypeAuto)
	})
	if err != nil {
		return nil, err
	}

	s.publishAssigned(ctx, technician, ticket.ID, assigneeIDs, domain.AssignmentTypeAuto)
	return ticket, nil
}

// pickTicket picks the oldest open ticket in the cycle-selected class for the
// technician's specialization, falling back to the other class rather than
// leaving a technician idle.
func (s *AssignmentService) pickTicket(ctx context.Context, technician *domain.User, wantMaintenance bool) (*domain.Ticket, error) {
	var first, second []domain.TicketType
	if technician.IsBackboneSpecialist {
		// specialists are isolated to backbone work in both cycle classes
		first = []domain.TicketType{domain.TicketTypeBackboneMaintenance}
	} else if wantMaintenance {
		first = []domain.TicketType{domain.TicketTypeHomeMaintenance}
		second = []domain.TicketType{domain.TicketTypeInstallation}
	} else {
		first = []domain.TicketType{domain.TicketTypeInstallation}
		second = []domain.TicketType{domain.TicketTypeHomeMaintenance}
	}

	ticket, err := s.tickets.LockOldestEligible(ctx, first)
	if err == nil {
		return ticket, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if len(second) > 0 {
		ticket, err = s.tickets.LockOldestEligible(ctx, second)
		if err == nil {
			return ticket, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
	}
	return nil, apperrors.NewNotFound("eligible ticket", map[string]any{"user_id": technician.ID})
}

func (s *AssignmentService) recordAssignment(ctx context.Context, actorID, ticketID string, oldStatus domain.TicketStatus, assigneeIDs []string, assignmentType domain.AssignmentType) error {
	if s.history == nil {
		return nil
	}
	entry := &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: &actorID,
		ChangeType:  domain.ChangeTypeAssignment,
		OldValue: map[string]any{
			"status": oldStatus,
		},
		NewValue: map[string]any{
			"status":          domain.TicketStatusAssigned,
			"assignee_ids":    assigneeIDs,
			"assignment_type": assignmentType,
		},
	}
	if err := s.history.Create(ctx, entry); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AssignmentService) publishAssigned(ctx context.Context, actor *domain.User, ticketID string, assigneeIDs []string, assignmentType domain.AssignmentType) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticketID,
		Actor:     events.Actor{UserID: &actor.ID, Role: &actor.Role},
		Timestamp: time.Now(),
		Payload: events.TicketAssignedPayload{
			AssigneeIDs:    assigneeIDs,
			AssignmentType: assignmentType,
		},
	})
}

func requireRole(actor *domain.User, allowed ...domain.Role) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	for _, role := range allowed {
		if actor.Role == role {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient role")
}
