package repository

import (
	"context"
	"time"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

// BonusSummaryRow is one technician/ticket fee line.
type BonusSummaryRow struct {
	UserID       string
	UserName     string
	TicketID     string
	TicketNumber string
	TicketType   domain.TicketType
	ClosedAt     time.Time
	Result       domain.PerformStatus
	TicketFee    int64
	TransportFee int64
	Total        int64
}

// PerformanceSummaryRow aggregates SLA outcomes per technician.
type PerformanceSummaryRow struct {
	UserID             string
	UserName           string
	ClosedTickets      int64
	WithinSLA          int64
	AvgDurationMinutes float64
	OverdueClosed      int64
}

// TechnicianPeriodRow totals a technician's work over a period.
type TechnicianPeriodRow struct {
	UserID       string
	UserName     string
	TotalTickets int64
	Performed    int64
	NotPerformed int64
	TotalBonus   int64
}

// ReportRepository exposes read-only projections over closed tickets and
// performance logs.
type ReportRepository interface {
	BonusSummary(ctx context.Context, from, to time.Time) ([]BonusSummaryRow, error)
	PerformanceSummary(ctx context.Context, from, to time.Time) ([]PerformanceSummaryRow, error)
	TechnicianPeriod(ctx context.Context, userID string, from, to time.Time) (*TechnicianPeriodRow, error)
}

type reportRepository struct {
	db Database
}

// NewReportRepository builds the repository.
func NewReportRepository(db Database) ReportRepository {
	return &reportRepository{db: db}
}

// BonusSummarySQL is exported for test expectations.
const BonusSummarySQL = `
        SELECT u.id, u.name, t.id, t.ticket_number, t.type, t.closed_at, p.result,
               COALESCE(t.ticket_fee, 0), COALESCE(t.transport_fee, 0)
        FROM performance_logs p
        JOIN users u ON u.id = p.user_id
        JOIN tickets t ON t.id = p.ticket_id
        WHERE t.status='closed' AND t.closed_at >= $1 AND t.closed_at <= $2
        ORDER BY t.closed_at ASC, u.name ASC`

func (r *reportRepository) BonusSummary(ctx context.Context, from, to time.Time) ([]BonusSummaryRow, error) {
	rows, err := querierFor(ctx, r.db).Query(ctx, BonusSummarySQL, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BonusSummaryRow
	for rows.Next() {
		var row BonusSummaryRow
		if err := rows.Scan(
			&row.UserID,
			&row.UserName,
			&row.TicketID,
			&row.TicketNumber,
			&row.TicketType,
			&row.ClosedAt,
			&row.Result,
			&row.TicketFee,
			&row.TransportFee,
		); err != nil {
			return nil, err
		}
		// fees are withheld on SLA breach, so the per-row total is always
		// the stored fee columns added together
		row.Total = row.TicketFee + row.TransportFee
		result = append(result, row)
	}
	return result, rows.Err()
}

// PerformanceSummarySQL is exported for test expectations.
const PerformanceSummarySQL = `
        SELECT u.id, u.name,
               COUNT(*),
               COUNT(*) FILTER (WHERE p.completed_within_sla),
               COALESCE(AVG(p.duration_minutes), 0),
               COUNT(*) FILTER (WHERE NOT p.completed_within_sla)
        FROM performance_logs p
        JOIN users u ON u.id = p.user_id
        WHERE p.created_at >= $1 AND p.created_at <= $2
        GROUP BY u.id, u.name
        ORDER BY u.name ASC`

func (r *reportRepository) PerformanceSummary(ctx context.Context, from, to time.Time) ([]PerformanceSummaryRow, error) {
	rows, err := querierFor(ctx, r.db).Query(ctx, PerformanceSummarySQL, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PerformanceSummaryRow
	for rows.Next() {
		var row PerformanceSummaryRow
		if err := rows.Scan(
			&row.UserID,
			&row.UserName,
			&row.ClosedTickets,
			&row.WithinSLA,
			&row.AvgDurationMinutes,
			&row.OverdueClosed,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// TechnicianPeriodSQL is exported for test expectations.
const TechnicianPeriodSQL = `
        SELECT u.id, u.name,
               COUNT(*),
               COUNT(*) FILTER (WHERE p.result='perform'),
               COUNT(*) FILTER (WHERE p.result='not_perform'),
               COALESCE(SUM(t.bonus), 0)
        FROM performance_logs p
        JOIN users u ON u.id = p.user_id
        JOIN tickets t ON t.id = p.ticket_id
        WHERE p.user_id=$1 AND p.created_at >= $2 AND p.created_at <= $3
        GROUP BY u.id, u.name`

func (r *reportRepository) TechnicianPeriod(ctx context.Context, userID string, from, to time.Time) (*TechnicianPeriodRow, error) {
	var row TechnicianPeriodRow
	if err := querierFor(ctx, r.db).QueryRow(ctx, TechnicianPeriodSQL, userID, from, to).Scan(
		&row.UserID,
		&row.UserName,
		&row.TotalTickets,
		&row.Performed,
		&row.NotPerformed,
		&row.TotalBonus,
	); err != nil {
		return nil, err
	}
	return &row, nil
}
