package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/equipo-6-uruguay/backend-ticket-service/internal/config"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/messaging"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/observability"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/persistence"
	"github.com/equipo-6-uruguay/backend-ticket-service/internal/repository"
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

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool, repository.NewOutboxRepository(pool))

	consumer := messaging.NewConsumer(cfg.Rabbit, ticketRepo, logger)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}
