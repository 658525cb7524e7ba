package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/nusalink/ftth-helpdesk/internal/service"
)

// Scheduler runs periodic maintenance jobs. The only job today is the
// nightly reset that returns stale assigned tickets to the open queue.
type Scheduler struct {
	cron    *cron.Cron
	tickets *service.TicketService
	logger  *zap.Logger
}

// NewScheduler constructs the scheduler without starting it.
func NewScheduler(tickets *service.TicketService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		tickets: tickets,
		logger:  logger,
	}
}

// Start registers the stale-assignment reset job on the given cron spec
// and launches the scheduler.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		affected, err := s.tickets.BulkResetStaleAssignments(ctx)
		if err != nil {
			s.logger.Error("stale assignment reset failed", zap.Error(err))
			return
		}
		s.logger.Info("stale assignment reset completed", zap.Int("tickets_reopened", affected))
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
