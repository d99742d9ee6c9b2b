package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nishkal/triage-api/config"
	"github.com/nishkal/triage-api/data"
	"github.com/nishkal/triage-api/geocode"
	"github.com/nishkal/triage-api/health"
	"github.com/nishkal/triage-api/logging"
	"github.com/nishkal/triage-api/refdata"
	"github.com/nishkal/triage-api/scheduler"
	"github.com/nishkal/triage-api/server"
)

func main() {
	// .env is optional, real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logging.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogDir)

	container := data.NewContainer()
	container.SetServerStartTime(time.Now())

	refreshInterval := time.Duration(cfg.RefreshMinutes) * time.Minute

	sched := scheduler.NewScheduler(container, refdata.NewLoader(cfg.DataDir), refreshInterval)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start the refresh scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	var geocoder *geocode.Client
	if cfg.GeocodeBaseURL != "" {
		geocoder = geocode.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeAPIKey, time.Duration(cfg.GeocodeTimeout)*time.Millisecond)
	}

	checker := health.NewHealthChecker(container, refreshInterval)
	srv := server.NewServer(cfg, container, checker, geocoder)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
		os.Exit(1)
	}
}
