package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ogmaths/clientpulse/internal/adapter/email"
	"github.com/ogmaths/clientpulse/internal/adapter/httpserver"
	"github.com/ogmaths/clientpulse/internal/adapter/postgres"
	"github.com/ogmaths/clientpulse/internal/adapter/redis"
	"github.com/ogmaths/clientpulse/internal/app"
	"github.com/ogmaths/clientpulse/internal/domain"
	"github.com/ogmaths/clientpulse/internal/platform/config"
	"github.com/ogmaths/clientpulse/internal/platform/logging"
	"github.com/ogmaths/clientpulse/internal/sentiment"
	"github.com/ogmaths/clientpulse/internal/tenant"
)

const orgCacheMemoryTTL = 10 * time.Second

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupNotifier(cfg *config.Config) domain.Notifier {
	if cfg.EmailAPIKey == "" {
		slog.Info("No email API key configured, notifications disabled")
		return email.NopNotifier{}
	}
	return email.NewClient(cfg.EmailAPIKey, cfg.EmailBaseURL, cfg.EmailFrom)
}

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	defer func() { _ = redisClient.Close() }()

	session := postgres.NewTenantSession(cfg.TenantBindTimeout, cfg.StrictTenancy)

	orgRepo := postgres.NewOrganizationRepo(pool)
	clientRepo := postgres.NewClientRepo(pool, session)
	interactionRepo := postgres.NewInteractionRepo(pool, session)
	taskRepo := postgres.NewTaskRepo(pool, session)
	assessmentRepo := postgres.NewAssessmentRepo(pool, session)

	orgCache := redis.NewOrgCache(redisClient, orgRepo, orgCacheMemoryTTL, clock)
	stopEviction := orgCache.StartEvictionTimer(1 * time.Minute)
	defer stopEviction()

	resolver := tenant.NewResolver(cfg.TenantOverrides(), cfg.StrictTenancy)
	analyzer := sentiment.NewAnalyzer(sentiment.DefaultLexicon())
	notifier := setupNotifier(cfg)

	appSvc := app.NewService(
		resolver,
		analyzer,
		orgCache,
		clientRepo,
		interactionRepo,
		taskRepo,
		assessmentRepo,
		notifier,
		clock,
	)

	healthChecks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
		{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	}

	srv := httpserver.NewServer(cfg, appSvc, healthChecks)

	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
