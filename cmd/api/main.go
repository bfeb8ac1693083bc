package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Jaseempk/dashtok-server/internal/activity"
	"github.com/Jaseempk/dashtok-server/internal/allowance"
	"github.com/Jaseempk/dashtok-server/internal/api"
	"github.com/Jaseempk/dashtok-server/internal/auth"
	"github.com/Jaseempk/dashtok-server/internal/blockedapps"
	"github.com/Jaseempk/dashtok-server/internal/config"
	"github.com/Jaseempk/dashtok-server/internal/enforcement"
	"github.com/Jaseempk/dashtok-server/internal/goal"
	"github.com/Jaseempk/dashtok-server/internal/outbox"
	persistence "github.com/Jaseempk/dashtok-server/internal/persistence/postgres"
	"github.com/Jaseempk/dashtok-server/internal/recalc"
	"github.com/Jaseempk/dashtok-server/internal/streak"
	httptransport "github.com/Jaseempk/dashtok-server/internal/transport/http"
	"github.com/Jaseempk/dashtok-server/internal/usage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "dashtok-api").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	activityRepo := persistence.NewActivityRepository(pool)
	goalRepo := persistence.NewGoalRepository(pool)
	allowanceRepo := persistence.NewAllowanceRepository(pool)
	streakRepo := persistence.NewStreakRepository(pool)
	blockedAppsRepo := persistence.NewBlockedAppsRepository(pool)
	bypassRepo := persistence.NewBypassRepository(pool)
	usageRepo := persistence.NewUsageRepository(pool)

	producer := outbox.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
	dispatcher := outbox.NewDispatcher(pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize, logger)
	go dispatcher.Start(ctx)

	allowanceEngine := allowance.NewEngine(activityRepo, goalRepo, streakRepo, allowanceRepo)
	streakEngine := streak.NewEngine(streakRepo, allowanceRepo)
	trigger := recalc.NewTrigger(allowanceEngine, streakEngine, cfg.RecalcTimeout, logger)

	activityService := activity.NewService(activityRepo, trigger)
	goalService := goal.NewService(goalRepo)
	blockedAppsManager := blockedapps.NewManager(blockedAppsRepo)
	decider := enforcement.NewDecider(allowanceEngine, blockedAppsManager, goalRepo, activityRepo, bypassRepo)
	usageService := usage.NewService(usageRepo, allowanceRepo)

	handler := api.NewHandler(
		activityService,
		goalService,
		goal.RuleSuggester{},
		allowanceEngine,
		streakEngine,
		decider,
		blockedAppsManager,
		usageService,
		logger,
	)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	requestLogger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("elapsed", time.Since(start)).Msg("request")
		})
	}

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, func(r *http.Request) bool {
		return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
	})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, authMiddleware.Wrap(requestLogger(mux)))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-shutdownCh
	cancel()

	if err := httptransport.Shutdown(server, 15*time.Second); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	dispatcher.Wait()
}
