package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mgrady/gridiron/internal/adapters/bus"
	"github.com/mgrady/gridiron/internal/adapters/http/api"
	"github.com/mgrady/gridiron/internal/adapters/repository"
	app "github.com/mgrady/gridiron/internal/app"
	"github.com/mgrady/gridiron/internal/config"
	"github.com/mgrady/gridiron/internal/database"
	"github.com/mgrady/gridiron/internal/domain/contest"
	"github.com/mgrady/gridiron/internal/domain/marquee"
	"github.com/mgrady/gridiron/internal/domain/power"
	"github.com/mgrady/gridiron/internal/domain/predict"
	"github.com/mgrady/gridiron/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection; the registry carries only the
	// service's own metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to set up storage", logger.Error(err))
		return
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithBus(bus.NewInMemoryBus(bus.WithBufferSize(cfg.BusBufferSize))),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithEstimator(power.NewEstimator(
			power.WithWeights(cfg.MarginWeight, cfg.YardageWeight, cfg.TurnoverWeight),
		)),
		app.WithPredictor(predict.New(
			predict.WithHomeFieldBonus(cfg.HomeFieldBonus),
			predict.WithScoreCurve(cfg.MarginDivisor, cfg.BaseLoserScore, cfg.MaxMargin),
			predict.WithConfidenceSlope(cfg.ConfidenceSlope),
		)),
		app.WithSelector(marquee.New(
			marquee.WithWeights(cfg.CompetitivenessWeight, cfg.QualityWeight, cfg.StakesWeight, cfg.RivalryWeight),
		)),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// HTTP mux and routes.
	mux := http.NewServeMux()
	api.NewServer(svc, cfg.MaxLeaderboardLimit).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildStore selects Postgres when a DSN is configured, falling back to the
// in-memory store for local runs.
func buildStore(ctx context.Context, cfg *config.Config, log logger.Logger) (contest.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info(ctx, "no database_url configured; using in-memory store")
		return repository.NewMemStore(), nil
	}

	if err := database.RunMigrations(cfg.MigrationsURL, cfg.DatabaseURL); err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "connected to postgres")
	return repository.NewGormStore(db), nil
}
