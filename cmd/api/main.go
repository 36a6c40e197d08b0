package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/marketplace-trust/internal/api/http"
	"github.com/spec-kit/marketplace-trust/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-trust/internal/auth"
	"github.com/spec-kit/marketplace-trust/internal/billing"
	"github.com/spec-kit/marketplace-trust/internal/config"
	"github.com/spec-kit/marketplace-trust/internal/events"
	"github.com/spec-kit/marketplace-trust/internal/observability"
	"github.com/spec-kit/marketplace-trust/internal/persistence"
	"github.com/spec-kit/marketplace-trust/internal/ratelimit"
	"github.com/spec-kit/marketplace-trust/internal/repository"
	"github.com/spec-kit/marketplace-trust/internal/service"
	"github.com/spec-kit/marketplace-trust/internal/worker"
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

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	entityRepo := repository.NewEntityRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	abuseRepo := repository.NewAbuseSignalRepository(pool)

	authority := billing.NewHTTPAuthority(cfg.Billing)
	verifier := billing.NewVerifier(authority, redis.Client, subscriptionRepo, logger, cfg.Billing.CacheTTL())

	limiter, err := ratelimit.NewLimiter(ratelimit.DefaultRules(), redis.Client, logger)
	if err != nil {
		logger.Fatal("invalid rate limit rules", zap.Error(err))
	}
	contentFilter := ratelimit.NewContentFilter()
	lockoutPolicy := ratelimit.LockoutPolicy{
		RejectedReportThreshold: cfg.RateLimit.RejectedReportThreshold,
		SpamFlagThreshold:       cfg.RateLimit.SpamFlagThreshold,
		LockoutDuration:         cfg.RateLimit.LockoutDuration(),
	}

	authService := service.NewAuthService(*cfg, entityRepo)
	trustService := service.NewTrustService(entityRepo, subscriptionRepo, verifier, metrics, dispatcher)
	directoryService := service.NewDirectoryService(entityRepo)
	inquiryService := service.NewInquiryService(entityRepo, limiter, contentFilter, trustService, dispatcher)
	moderationService := service.NewModerationService(abuseRepo, lockoutPolicy, dispatcher, logger)

	worker.StartModerationWorker(moderationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), entityRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Entities:       handlers.NewEntitiesHandler(authService, trustService),
		Directory:      handlers.NewDirectoryHandler(directoryService),
		Inquiries:      handlers.NewInquiriesHandler(inquiryService),
		Reports:        handlers.NewReportsHandler(moderationService),
		AuthMiddleware: authMiddleware,
		Limiter:        limiter,
		Metrics:        metrics,
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
