package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/firstrun/firstrun-gate/internal/config"
	"github.com/firstrun/firstrun-gate/internal/guard"
	httptransport "github.com/firstrun/firstrun-gate/internal/http"
	"github.com/firstrun/firstrun-gate/internal/http/handler"
	httpmiddleware "github.com/firstrun/firstrun-gate/internal/http/middleware"
	apimiddleware "github.com/firstrun/firstrun-gate/internal/middleware"
	"github.com/firstrun/firstrun-gate/internal/onboarding"
	"github.com/firstrun/firstrun-gate/internal/progress"
	"github.com/firstrun/firstrun-gate/internal/repository"
	"github.com/firstrun/firstrun-gate/internal/server"
	"github.com/firstrun/firstrun-gate/internal/service"
	"github.com/firstrun/firstrun-gate/internal/session"
	"github.com/firstrun/firstrun-gate/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newPGXPool,
			newUserRepository,
			newProgressStore,
			newResolver,
			newTokenStore,
			newRoutes,
			newRateLimiter,
			service.NewAuthService,
			newOnboardingService,
			handler.NewAuthHandler,
			handler.NewOnboardingHandler,
			handler.NewAppHandler,
			newSessionMiddleware,
			newGuards,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, warmUpSessions, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	_ = godotenv.Load()
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return repository.NewPostgresUserRepo(pool)
}

func newProgressStore(lc fx.Lifecycle, cfg config.Config) (progress.Store, error) {
	store, err := progress.Open(cfg.ProgressDBPath)
	if err != nil {
		return nil, fmt.Errorf("open progress store: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}

func newResolver(store progress.Store, logger *zap.Logger) *onboarding.Resolver {
	return onboarding.NewResolver(store, logger)
}

func newTokenStore(users repository.UserRepository, cfg config.Config, logger *zap.Logger) *session.TokenStore {
	return session.NewTokenStore(users, []byte(cfg.SessionSecret), cfg.SessionIssuer, cfg.SessionTTL, logger)
}

func newRoutes(cfg config.Config) guard.Routes {
	return guard.Routes{
		Login:      cfg.LoginPath,
		Onboarding: cfg.OnboardingPath,
		App:        cfg.AppPath,
	}
}

func newRateLimiter(cfg config.Config) *apimiddleware.RateLimiter {
	return apimiddleware.NewRateLimiter(cfg.RateLimitRPM)
}

func newOnboardingService(resolver *onboarding.Resolver, users repository.UserRepository, logger *zap.Logger) *service.OnboardingService {
	return service.NewOnboardingService(resolver, users, logger)
}

func newSessionMiddleware(tokens *session.TokenStore) *httpmiddleware.Session {
	return &httpmiddleware.Session{Tokens: tokens}
}

func newGuards(resolver *onboarding.Resolver, routes guard.Routes) *httpmiddleware.Guards {
	return httpmiddleware.NewGuards(resolver, routes)
}

func warmUpSessions(lc fx.Lifecycle, tokens *session.TokenStore) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return tokens.WarmUp(ctx)
		},
	})
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
