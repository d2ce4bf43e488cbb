package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/averine/datamart/internal/config"
	"github.com/averine/datamart/internal/domain/audit"
	"github.com/averine/datamart/internal/domain/balance"
	"github.com/averine/datamart/internal/domain/dataset"
	"github.com/averine/datamart/internal/domain/job"
	"github.com/averine/datamart/internal/height"
	"github.com/averine/datamart/internal/metrics"
	"github.com/averine/datamart/internal/sqlite"
	"github.com/averine/datamart/internal/treasury"
	"github.com/averine/datamart/internal/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles the marketplace service layer. Operations are submitted
// by the hosting ledger runtime through these services; marketd itself only
// exposes health and metrics over HTTP.
type Services struct {
	Datasets *dataset.Service
	Jobs     *job.Service
	Balances *balance.Service
	Audit    *audit.Service
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	validate := validation.New()
	heights := height.NewLocalFromClock()
	transfer := treasury.NewLocal()

	svcs := Services{
		Datasets: dataset.NewService(sqlite.NewDatasetStore(db), heights, validate, m, logger),
		Jobs:     job.NewService(sqlite.NewJobStore(db), heights, validate, m, logger),
		Balances: balance.NewService(sqlite.NewBalanceStore(db), transfer, heights, m, logger),
		Audit:    audit.NewService(sqlite.NewAuditRepository(db), logger),
	}
	if err := primeEscrowGauge(context.Background(), svcs.Jobs, m); err != nil {
		logger.Warn("failed to prime escrow gauge", "error", err)
	}

	logger.Info("marketplace services initialized",
		"db", cfg.DB.Path,
		"platform_fee_percent", job.PlatformFeePercent,
	)

	router := http.NewServeMux()
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

// primeEscrowGauge seeds the escrow gauge from jobs whose escrow is still
// held, so the metric survives restarts.
func primeEscrowGauge(ctx context.Context, jobs *job.Service, m *metrics.Metrics) error {
	open, err := jobs.List(ctx, job.ListOptions{
		Statuses: []job.Status{job.StatusPending, job.StatusProcessing},
	})
	if err != nil {
		return err
	}
	var held uint64
	for _, j := range open {
		held += j.TotalCost
	}
	m.AddEscrow(float64(held))
	return nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
