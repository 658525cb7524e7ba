package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/nusalink/ftth-helpdesk/internal/api/http"
	"github.com/nusalink/ftth-helpdesk/internal/api/http/handlers"
	"github.com/nusalink/ftth-helpdesk/internal/auth"
	"github.com/nusalink/ftth-helpdesk/internal/config"
	"github.com/nusalink/ftth-helpdesk/internal/events"
	"github.com/nusalink/ftth-helpdesk/internal/observability"
	"github.com/nusalink/ftth-helpdesk/internal/persistence"
	"github.com/nusalink/ftth-helpdesk/internal/repository"
	"github.com/nusalink/ftth-helpdesk/internal/service"
	"github.com/nusalink/ftth-helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	db := pg.PoolHandle()
	userRepo := repository.NewUserRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	perfLogRepo := repository.NewPerformanceLogRepository(db)
	historyRepo := repository.NewTicketHistoryRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	reportRepo := repository.NewReportRepository(db)
	txManager := repository.NewTxManager(db)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	settingsService := service.NewSettingsService(settingRepo, redis.Client, logger)
	bonusCalculator := service.NewBonusCalculator(settingsService)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		AssignmentRepo: assignmentRepo,
		UserRepo:       userRepo,
		PerfLogRepo:    perfLogRepo,
		HistoryRepo:    historyRepo,
		Bonus:          bonusCalculator,
		Settings:       settingsService,
		Tx:             txManager,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:     ticketRepo,
		AssignmentRepo: assignmentRepo,
		UserRepo:       userRepo,
		HistoryRepo:    historyRepo,
		Settings:       settingsService,
		Tx:             txManager,
		Dispatcher:     dispatcher,
	})
	reportService := service.NewReportService(reportRepo, ticketRepo, redis.Client, logger)
	authService := service.NewAuthService(cfg.Auth, userRepo)
	notificationService := service.NewNotificationService(dispatcher, logger)

	worker.StartNotificationWorker(notificationService)

	scheduler := worker.NewScheduler(ticketService, logger)
	if cfg.Scheduler.Enabled {
		if err := scheduler.Start(cfg.Scheduler.StaleResetSpec); err != nil {
			logger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, time.Duration(cfg.App.RequestTimeoutSeconds)*time.Second)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, assignmentService),
		Reports:        handlers.NewReportsHandler(reportService),
		Settings:       handlers.NewSettingsHandler(settingsService),
		Admin:          handlers.NewAdminHandler(ticketService, ticketRepo),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
