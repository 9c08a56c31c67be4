package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/equipo-6-uruguay/backend-ticket-service/internal/api/http"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/api/http/handlers"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/auth"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/config"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/domain"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/events"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/messaging"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/observability"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/persistence"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/repository"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/service"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/worker"
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

	pool := pg.PoolHandle()
	outboxRepo := repository.NewOutboxRepository(pool)
	ticketRepo := repository.NewCachedTicketRepository(
		repository.NewTicketRepository(pool, outboxRepo),
		redis.Client,
		cfg.Redis.TicketTTL(),
		logger,
	)
	userRepo := repository.NewUserRepository(pool)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	ticketService := service.NewTicketService(ticketRepo, domain.SystemClock(), logger)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	broker := messaging.NewPublisher(cfg.Rabbit, logger)
	defer broker.Close()

	outboxWorker := worker.NewOutboxWorker(outboxRepo, broker, dispatcher, logger,
		cfg.Outbox.PollInterval(), cfg.Outbox.BatchSize)
	go outboxWorker.Run(ctx)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
