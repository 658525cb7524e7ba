package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

// TicketFilter captures list/search parameters.
type TicketFilter struct {
	Statuses    []domain.TicketStatus
	Types       []domain.TicketType
	Priorities  []domain.TicketPriority
	AssignedTo  *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByTicketNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// LockOldestEligible selects the oldest open ticket of the given types and
	// locks the row for the remainder of the transaction. Concurrent callers
	// skip locked rows instead of blocking on them.
	LockOldestEligible(ctx context.Context, types []domain.TicketType) (*domain.Ticket, error)
	// ListStaleAssigned returns tickets still in assigned status whose active
	// assignment predates the cutoff.
	ListStaleAssigned(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error)
	ListClosed(ctx context.Context) ([]domain.Ticket, error)
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
	BackfillAreas(ctx context.Context) (int64, error)
	BackfillCustomerNames(ctx context.Context) (int64, error)
}

type ticketRepository struct {
	db Database
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db Database) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, ticket_number, ticket_id_custom, type, priority, status, prior_status,
               customer_name, customer_phone, customer_email, location_url, area,
               description, description_images, created_at, updated_at, sla_deadline,
               closed_at, closed_by, duration_minutes, perform_status, bonus, ticket_fee,
               transport_fee, rejection_reason, reopen_reason, closed_reason,
               action_description, proof_image_url, speedtest_url`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, ticket_id_custom, type, priority, status,
            customer_name, customer_phone, customer_email, location_url, area,
            description, description_images, sla_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return querierFor(ctx, r.db).QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.TicketIDCustom,
		ticket.Type,
		ticket.Priority,
		ticket.Status,
		ticket.CustomerName,
		ticket.CustomerPhone,
		ticket.CustomerEmail,
		ticket.LocationURL,
		ticket.Area,
		ticket.Description,
		ticket.DescriptionImages,
		ticket.SLADeadline,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET priority=$1, status=$2, prior_status=$3, customer_name=$4,
            customer_phone=$5, customer_email=$6, location_url=$7, area=$8,
            description=$9, description_images=$10, sla_deadline=$11, closed_at=$12,
            closed_by=$13, duration_minutes=$14, perform_status=$15, bonus=$16,
            ticket_fee=$17, transport_fee=$18, rejection_reason=$19, reopen_reason=$20,
            closed_reason=$21, action_description=$22, proof_image_url=$23,
            speedtest_url=$24, updated_at=NOW()
        WHERE id=$25`
	cmd, err := querierFor(ctx, r.db).Exec(ctx, query,
		ticket.Priority,
		ticket.Status,
		ticket.PriorStatus,
		ticket.CustomerName,
		ticket.CustomerPhone,
		ticket.CustomerEmail,
		ticket.LocationURL,
		ticket.Area,
		ticket.Description,
		ticket.DescriptionImages,
		ticket.SLADeadline,
		ticket.ClosedAt,
		ticket.ClosedBy,
		ticket.DurationMinutes,
		ticket.PerformStatus,
		ticket.Bonus,
		ticket.TicketFee,
		ticket.TransportFee,
		ticket.RejectionReason,
		ticket.ReopenReason,
		ticket.ClosedReason,
		ticket.ActionDescription,
		ticket.ProofImageURL,
		ticket.SpeedtestURL,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByTicketNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	row := querierFor(ctx, r.db).QueryRow(ctx, query, arg)
	return scanTicketRow(row)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			args = append(args, t)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf(
			"id IN (SELECT ticket_id FROM ticket_assignments WHERE user_id=$%d AND active=TRUE)", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(customer_name) LIKE %s OR LOWER(customer_phone) LIKE %s OR LOWER(ticket_number) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := querierFor(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// LockOldestEligibleSQL is exported for test expectations.
const LockOldestEligibleSQL = `
        SELECT ` + ticketColumns + `
        FROM tickets
        WHERE status='open' AND type = ANY($1)
        ORDER BY created_at ASC,
                 CASE priority WHEN 'critical' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC
        LIMIT 1
        FOR UPDATE SKIP LOCKED`

func (r *ticketRepository) LockOldestEligible(ctx context.Context, types []domain.TicketType) (*domain.Ticket, error) {
	if len(types) == 0 {
		return nil, pgx.ErrNoRows
	}
	values := make([]string, 0, len(types))
	for _, t := range types {
		values = append(values, string(t))
	}
	row := querierFor(ctx, r.db).QueryRow(ctx, LockOldestEligibleSQL, values)
	return scanTicketRow(row)
}

// ListStaleAssignedSQL is exported for test expectations.
const ListStaleAssignedSQL = `
        SELECT ` + ticketColumns + `
        FROM tickets
        WHERE status='assigned'
          AND EXISTS (
            SELECT 1 FROM ticket_assignments a
            WHERE a.ticket_id = tickets.id AND a.active=TRUE AND a.assigned_at < $1
          )
        ORDER BY created_at ASC`

func (r *ticketRepository) ListStaleAssigned(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	rows, err := querierFor(ctx, r.db).Query(ctx, ListStaleAssignedSQL, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListClosed(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE status='closed' ORDER BY closed_at ASC`
	rows, err := querierFor(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM tickets GROUP BY status`
	rows, err := querierFor(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int64)
	for rows.Next() {
		var status domain.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE status NOT IN ('closed','rejected') AND sla_deadline < $1`
	var count int64
	err := querierFor(ctx, r.db).QueryRow(ctx, query, now).Scan(&count)
	return count, err
}

func (r *ticketRepository) BackfillAreas(ctx context.Context) (int64, error) {
	const query = `
        UPDATE tickets t SET area = src.area, updated_at = NOW()
        FROM (
            SELECT DISTINCT ON (customer_phone) customer_phone, area
            FROM tickets
            WHERE area IS NOT NULL AND area <> ''
            ORDER BY customer_phone, created_at DESC
        ) src
        WHERE t.customer_phone = src.customer_phone
          AND (t.area IS NULL OR t.area = '')`
	cmd, err := querierFor(ctx, r.db).Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *ticketRepository) BackfillCustomerNames(ctx context.Context) (int64, error) {
	const query = `
        UPDATE tickets t SET customer_name = src.customer_name, updated_at = NOW()
        FROM (
            SELECT DISTINCT ON (customer_phone) customer_phone, customer_name
            FROM tickets
            WHERE customer_name <> ''
            ORDER BY customer_phone, created_at DESC
        ) src
        WHERE t.customer_phone = src.customer_phone
          AND t.customer_name = ''`
	cmd, err := querierFor(ctx, r.db).Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanTicketRow(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.TicketIDCustom,
		&ticket.Type,
		&ticket.Priority,
		&ticket.Status,
		&ticket.PriorStatus,
		&ticket.CustomerName,
		&ticket.CustomerPhone,
		&ticket.CustomerEmail,
		&ticket.LocationURL,
		&ticket.Area,
		&ticket.Description,
		&ticket.DescriptionImages,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.SLADeadline,
		&ticket.ClosedAt,
		&ticket.ClosedBy,
		&ticket.DurationMinutes,
		&ticket.PerformStatus,
		&ticket.Bonus,
		&ticket.TicketFee,
		&ticket.TransportFee,
		&ticket.RejectionReason,
		&ticket.ReopenReason,
		&ticket.ClosedReason,
		&ticket.ActionDescription,
		&ticket.ProofImageURL,
		&ticket.SpeedtestURL,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicketRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
