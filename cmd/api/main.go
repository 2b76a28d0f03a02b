// Command api serves the building management HTTP API.
//
// @title                       Building Management API
// @version                     1.0
// @description                 Residents, tenancy agreements, announcements and rent payments for a managed building.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/skyline-residence/building-api/internal/api"
	"github.com/skyline-residence/building-api/internal/core/ports"
	"github.com/skyline-residence/building-api/internal/core/service"
	"github.com/skyline-residence/building-api/internal/infrastructure/config"
	redisstore "github.com/skyline-residence/building-api/internal/infrastructure/db/redis"
	"github.com/skyline-residence/building-api/internal/infrastructure/http/handlers"
	"github.com/skyline-residence/building-api/internal/infrastructure/payments"
	"github.com/skyline-residence/building-api/internal/infrastructure/queue"
	"github.com/skyline-residence/building-api/pkg/logger"
)

func main() {
	_ = godotenv.Load(".env")

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "building-api",
	})

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	checks := append([]handlers.Check(nil), st.checks...)

	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		idemStore, err := redisstore.Open(ctx, redisstore.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, idempotency keys disabled")
		} else {
			defer idemStore.Close()
			idem = idemStore
			checks = append(checks, handlers.Check{Name: "redis", Ping: idemStore.Ping})
		}
	}

	var processor ports.PaymentProcessor
	if cfg.Stripe.SecretKey != "" {
		processor = payments.NewStripeProcessor(cfg.Stripe.SecretKey, logger.Component("stripe"))
	} else {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, payment intents disabled")
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	dispatcher := queue.NewAuditDispatcher(cfg.AuditWorkers, st.audit, logger.Component("audit"))
	dispatcher.Start(workerCtx)

	authService := service.NewAuthService(cfg.AccessTokenSecret, cfg.AccessTokenTTL)
	userService := service.NewUserService(st.users, logger.Component("users"))
	agreementService := service.NewAgreementService(
		st.agreements,
		st.users,
		st.tx,
		dispatcher,
		service.AgreementOptions{StrictTransitions: cfg.StrictTransitions},
		logger.Component("agreements"),
	)
	listingService := service.NewListingService(st.apartments, st.announcements, logger.Component("listings"))
	paymentService := service.NewPaymentService(st.payments, processor, idem, cfg.Stripe.Currency, logger.Component("payments"))

	e := api.NewRouter(api.Deps{
		Auth:        authService,
		Users:       userService,
		Agreements:  agreementService,
		Listings:    listingService,
		Payments:    paymentService,
		Checks:      checks,
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			shutdownBackground(st, dispatcher, cfg, log)
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	shutdownBackground(st, dispatcher, cfg, log)
	log.Info().Msg("shutdown complete")
	return nil
}

// shutdownBackground drains the audit queue and then releases the store.
func shutdownBackground(st *store, dispatcher *queue.AuditDispatcher, cfg *config.Config, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := dispatcher.Stop(ctx); err != nil {
		log.Warn().Err(err).Msg("audit queue not fully drained")
	}
	if err := st.close(ctx); err != nil {
		log.Warn().Err(err).Msg("store close failed")
	}
}
