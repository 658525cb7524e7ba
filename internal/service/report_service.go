package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
	"github.com/nusalink/ftth-helpdesk/internal/repository"
	apperrors "github.com/nusalink/ftth-helpdesk/pkg/util"
)

const (
	dashboardCacheKey = "dashboard:stats"
	dashboardCacheTTL = 30 * time.Second
)

// DashboardStats aggregates counts for the landing view.
type DashboardStats struct {
	ByStatus map[domain.TicketStatus]int64 `json:"by_status"`
	Overdue  int64                         `json:"overdue"`
}

// ReportService provides read-only projections over closed tickets and
// performance logs. It never mutates state.
type ReportService struct {
	reports repository.ReportRepository
	tickets repository.TicketRepository
	cache   *redis.Client
	logger  *zap.Logger
}

// NewReportService constructs the service. cache may be nil.
func NewReportService(reports repository.ReportRepository, tickets repository.TicketRepository, cache *redis.Client, logger *zap.Logger) *ReportService {
	return &ReportService{reports: reports, tickets: tickets, cache: cache, logger: logger}
}

// TicketReport lists tickets for the report view.
func (s *ReportService) TicketReport(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// BonusSummary lists per-technician, per-ticket fee lines over a date range.
func (s *ReportService) BonusSummary(ctx context.Context, from, to time.Time) ([]repository.BonusSummaryRow, error) {
	rows, err := s.reports.BonusSummary(ctx, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rows, nil
}

// PerformanceSummary aggregates SLA compliance per technician.
func (s *ReportService) PerformanceSummary(ctx context.Context, from, to time.Time) ([]repository.PerformanceSummaryRow, error) {
	rows, err := s.reports.PerformanceSummary(ctx, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rows, nil
}

// TechnicianPeriod totals one technician's work over a period.
func (s *ReportService) TechnicianPeriod(ctx context.Context, userID string, from, to time.Time) (*repository.TechnicianPeriodRow, error) {
	row, err := s.reports.TechnicianPeriod(ctx, userID, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return row, nil
}

// DashboardStats returns status counts plus the derived overdue count,
// cached briefly in redis.
func (s *ReportService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, dashboardCacheKey).Bytes(); err == nil {
			var stats DashboardStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	byStatus, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	overdue, err := s.tickets.CountOverdue(ctx, time.Now())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	stats := &DashboardStats{ByStatus: byStatus, Overdue: overdue}

	if s.cache != nil {
		if encoded, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, encoded, dashboardCacheTTL).Err(); err != nil {
				s.logger.Warn("dashboard cache set failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}
