package repository

import (
	"context"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

// AssignmentRepository stores the append-only assignment trail.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) error
	// DeactivateByTicket flips every active row for the ticket; rows are never
	// deleted so the audit history stays intact.
	DeactivateByTicket(ctx context.Context, ticketID string) (int64, error)
	ListActiveByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error)
	// CountActiveNonTerminal counts the user's active assignments on tickets
	// that are not closed or rejected.
	CountActiveNonTerminal(ctx context.Context, userID string) (int64, error)
	// AcquireUserLock takes a transaction-scoped advisory lock for the user so
	// concurrent auto-assign calls serialize their check-then-act.
	AcquireUserLock(ctx context.Context, userID string) error
	// TryAcquireUserLock is the non-blocking variant; false means another
	// transaction already holds the user's lock.
	TryAcquireUserLock(ctx context.Context, userID string) (bool, error)
}

type assignmentRepository struct {
	db Database
}

// NewAssignmentRepository builds the repository.
func NewAssignmentRepository(db Database) AssignmentRepository {
	return &assignmentRepository{db: db}
}

const assignmentColumns = `id, ticket_id, user_id, assigned_at, active, assignment_type`

// CreateAssignmentSQL is exported for test expectations.
const CreateAssignmentSQL = `
        INSERT INTO ticket_assignments (ticket_id, user_id, assigned_at, active, assignment_type)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	return querierFor(ctx, r.db).QueryRow(ctx, CreateAssignmentSQL,
		assignment.TicketID,
		assignment.UserID,
		assignment.AssignedAt,
		assignment.Active,
		assignment.AssignmentType,
	).Scan(&assignment.ID)
}

// DeactivateByTicketSQL is exported for test expectations.
const DeactivateByTicketSQL = `
        UPDATE ticket_assignments SET active=FALSE
        WHERE ticket_id=$1 AND active=TRUE`

func (r *assignmentRepository) DeactivateByTicket(ctx context.Context, ticketID string) (int64, error) {
	cmd, err := querierFor(ctx, r.db).Exec(ctx, DeactivateByTicketSQL, ticketID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *assignmentRepository) ListActiveByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM ticket_assignments
        WHERE ticket_id=$1 AND active=TRUE ORDER BY assigned_at ASC`
	return r.list(ctx, query, ticketID)
}

func (r *assignmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM ticket_assignments
        WHERE ticket_id=$1 ORDER BY assigned_at ASC`
	return r.list(ctx, query, ticketID)
}

// CountActiveNonTerminalSQL is exported for test expectations.
const CountActiveNonTerminalSQL = `
        SELECT COUNT(*) FROM ticket_assignments a
        JOIN tickets t ON t.id = a.ticket_id
        WHERE a.user_id=$1 AND a.active=TRUE AND t.status NOT IN ('closed','rejected')`

func (r *assignmentRepository) CountActiveNonTerminal(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := querierFor(ctx, r.db).QueryRow(ctx, CountActiveNonTerminalSQL, userID).Scan(&count)
	return count, err
}

func (r *assignmentRepository) AcquireUserLock(ctx context.Context, userID string) error {
	_, err := querierFor(ctx, r.db).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID)
	return err
}

// TryAcquireUserLockSQL is exported for test expectations.
const TryAcquireUserLockSQL = `SELECT pg_try_advisory_xact_lock(hashtext($1))`

func (r *assignmentRepository) TryAcquireUserLock(ctx context.Context, userID string) (bool, error) {
	var locked bool
	err := querierFor(ctx, r.db).QueryRow(ctx, TryAcquireUserLockSQL, userID).Scan(&locked)
	return locked, err
}

func (r *assignmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Assignment, error) {
	rows, err := querierFor(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		var assignment domain.Assignment
		if err := rows.Scan(
			&assignment.ID,
			&assignment.TicketID,
			&assignment.UserID,
			&assignment.AssignedAt,
			&assignment.Active,
			&assignment.AssignmentType,
		); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}
