package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stylefeed/catalog-service/config"
	"github.com/stylefeed/catalog-service/internal/adapters"
	"github.com/stylefeed/catalog-service/internal/alerts"
	"github.com/stylefeed/catalog-service/internal/database"
	"github.com/stylefeed/catalog-service/internal/handlers"
	"github.com/stylefeed/catalog-service/internal/http/ratelimit"
	"github.com/stylefeed/catalog-service/internal/logging"
	"github.com/stylefeed/catalog-service/internal/migration"
	"github.com/stylefeed/catalog-service/internal/store"
	"github.com/stylefeed/catalog-service/internal/sync"
	"github.com/stylefeed/catalog-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Init(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		NoColor: cfg.Logging.NoColor,
	})

	logger.Info().Str("driver", cfg.Storage.Driver).Msg("Starting catalog service")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	st, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer st.Close()

	syncService := sync.NewService(st, cfg.Sync.MaxConcurrent).
		WithSelector(adapters.NewSelector(outboundLimits(cfg.RateLimit)))
	if err := syncService.RecoverOrphanedRuns(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to recover orphaned sync runs")
	}

	evaluator := alerts.NewEvaluator(st)
	sweeper := alerts.NewSweeper(evaluator, logger, cfg.Alerts.SweepInterval)
	go sweeper.Start(ctx)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := handlers.New(st, syncService, evaluator, logger)
	router := handler.Router(handlers.RouterConfig{
		InternalAPIKey:     cfg.Server.APIKey,
		RateLimitPerSecond: 10,
		RateLimitBurst:     20,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

func outboundLimits(rl config.RateLimitConfig) ratelimit.Config {
	return ratelimit.Config{
		RequestsPerSecond: rl.RequestsPerSecond,
		Burst:             rl.Burst,
		MaxRetries:        rl.MaxRetries,
		InitialBackoff:    time.Duration(rl.InitialBackoffMs) * time.Millisecond,
		MaxBackoff:        time.Duration(rl.MaxBackoffMs) * time.Millisecond,
	}
}

// buildStore selects the persistence backend. The postgres driver runs
// migrations before handing the pool over.
func buildStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (store.Store, error) {
	switch store.Driver(cfg.Storage.Driver) {
	case store.DriverPostgres:
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("storage driver postgres requires DATABASE_URL")
		}
		if err := migration.Up(cfg.Storage.MigrationsPath, cfg.Database.URL); err != nil {
			return nil, err
		}
		logger.Info().Msg("Migrations applied")

		pool, err := database.Connect(ctx, cfg.Database.URL, database.PoolConfig{
			MaxConns:    cfg.Database.MaxConnections,
			MinConns:    cfg.Database.MinConnections,
			MaxLifetime: cfg.Database.MaxConnLifetime,
			MaxIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("Database connected")
		return store.NewPostgresStore(pool), nil
	case store.DriverMemory, "":
		logger.Info().Msg("Using in-memory storage with seed data")
		return store.NewMemoryStoreSeeded(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
