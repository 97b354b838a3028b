package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/deusflow/trends/internal/app"
	"github.com/deusflow/trends/internal/config"
	"github.com/deusflow/trends/internal/logger"
	"github.com/deusflow/trends/internal/metrics"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	if cfg.EnableHTTPMonitoring {
		go startMonitoringServer(cfg.MonitoringPort)
	}

	ctx := context.Background()
	result, err := app.Run(ctx, cfg)
	if err != nil {
		var runErr *app.RunError
		if errors.As(err, &runErr) && runErr.Kind == app.FailureDelivery {
			logger.Error("delivery failed", "region", cfg.Region, "error", err)
			os.Exit(1)
		}
		// Fetch, parse and store failures are absorbed: the next scheduled
		// run starts fresh, and cron should not treat them as job failures.
		logger.Error("run failed", "region", cfg.Region, "error", err)
		return
	}

	logger.Info("done",
		"region", result.Region,
		"trends", result.Fetched,
		"new", result.NewCount,
		"notified", result.Notified,
		"skipped", result.Skipped)
}

func startMonitoringServer(port int) {
	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	addr := fmt.Sprintf(":%d", port)
	logger.Info("starting monitoring server", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Error("monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
