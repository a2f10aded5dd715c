package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/auth-gate/internal/api/http"
	"github.com/spec-kit/auth-gate/internal/api/http/handlers"
	"github.com/spec-kit/auth-gate/internal/auth"
	"github.com/spec-kit/auth-gate/internal/config"
	"github.com/spec-kit/auth-gate/internal/events"
	"github.com/spec-kit/auth-gate/internal/observability"
	"github.com/spec-kit/auth-gate/internal/persistence"
	"github.com/spec-kit/auth-gate/internal/repository"
	"github.com/spec-kit/auth-gate/internal/service"
	"github.com/spec-kit/auth-gate/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Realm.Domain == "" {
		logger.Warn("AXIOMS_DOMAIN not set; challenge headers will carry an empty realm")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Configured() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), os.DirFS("migrations"), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	verifier, err := newCredentialVerifier(cfg.Auth, pg)
	if err != nil {
		logger.Fatal("failed to init credential verifier", zap.Error(err))
	}

	var attempts repository.LoginAttemptRepository
	if redis.Configured() {
		attempts = repository.NewLoginAttemptRepository(redis.Client, cfg.Auth.FailedLoginWindow)
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	codec := auth.NewTokenCodec(cfg.Auth.Secret)
	gate := auth.NewGate(codec,
		auth.WithTokenExtractor(auth.FirstOf(auth.QueryTokenExtractor(cfg.Auth.TokenQueryParam), auth.BearerTokenExtractor)),
		auth.WithDispatcher(dispatcher),
	)
	authService := service.NewAuthService(service.AuthDependencies{
		Codec:           codec,
		Verifier:        verifier,
		Attempts:        attempts,
		MaxFailedLogins: cfg.Auth.MaxFailedLogins,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})

	metrics := observability.NewMetrics()
	translator := httptransport.NewErrorTranslator(cfg.Realm)

	app := httptransport.NewApp(cfg.App.Name, translator)
	httptransport.RegisterMiddlewares(app, translator, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Index:  handlers.NewIndexHandler(cfg.App.Name),
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:   handlers.NewAuthHandler(authService),
		Gate:   gate,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("credential_source", cfg.Auth.CredentialSource))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func newCredentialVerifier(cfg config.AuthConfig, pg *persistence.Postgres) (auth.CredentialVerifier, error) {
	if cfg.CredentialSource == config.CredentialSourcePostgres {
		return auth.NewRepositoryVerifier(repository.NewCredentialRepository(pg.PoolHandle())), nil
	}
	if cfg.LoginPasswordHash != "" {
		return auth.NewStaticVerifier(cfg.LoginUsername, cfg.LoginPasswordHash)
	}
	return auth.NewStaticVerifierFromPassword(cfg.LoginUsername, cfg.LoginPassword, cfg.BcryptCost)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
