package repository

import (
	"context"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

// PerformanceLogRepository stores per-technician closure outcomes.
type PerformanceLogRepository interface {
	Create(ctx context.Context, log *domain.PerformanceLog) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.PerformanceLog, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.PerformanceLog, error)
	// DeleteAll wipes every log row ahead of a full recalculation.
	DeleteAll(ctx context.Context) (int64, error)
}

type performanceLogRepository struct {
	db Database
}

// NewPerformanceLogRepository builds the repository.
func NewPerformanceLogRepository(db Database) PerformanceLogRepository {
	return &performanceLogRepository{db: db}
}

const performanceLogColumns = `id, user_id, ticket_id, result, completed_within_sla, duration_minutes, created_at`

func (r *performanceLogRepository) Create(ctx context.Context, log *domain.PerformanceLog) error {
	const query = `
        INSERT INTO performance_logs (user_id, ticket_id, result, completed_within_sla, duration_minutes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return querierFor(ctx, r.db).QueryRow(ctx, query,
		log.UserID,
		log.TicketID,
		log.Result,
		log.CompletedWithinSLA,
		log.DurationMinutes,
	).Scan(&log.ID, &log.CreatedAt)
}

func (r *performanceLogRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.PerformanceLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + performanceLogColumns + ` FROM performance_logs
        WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *performanceLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.PerformanceLog, error) {
	query := `SELECT ` + performanceLogColumns + ` FROM performance_logs
        WHERE ticket_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, ticketID)
}

func (r *performanceLogRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := querierFor(ctx, r.db).Exec(ctx, `DELETE FROM performance_logs`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *performanceLogRepository) list(ctx context.Context, query string, args ...any) ([]domain.PerformanceLog, error) {
	rows, err := querierFor(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PerformanceLog
	for rows.Next() {
		var log domain.PerformanceLog
		if err := rows.Scan(
			&log.ID,
			&log.UserID,
			&log.TicketID,
			&log.Result,
			&log.CompletedWithinSLA,
			&log.DurationMinutes,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, log)
	}
	return result, rows.Err()
}
