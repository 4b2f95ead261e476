// Package main is the entry point for the LotPilot autonomous dealership
// agent. The service loads the CSV record store, asks a reasoning service
// for decisions on a fixed interval, validates them against authoritative
// inventory and inquiry records, executes the surviving actions, and keeps
// a bounded audit log of every cycle.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lotpilot/lotpilot/internal/actionlog"
	"github.com/lotpilot/lotpilot/internal/agent"
	"github.com/lotpilot/lotpilot/internal/config"
	"github.com/lotpilot/lotpilot/internal/decision"
	"github.com/lotpilot/lotpilot/internal/domain"
	"github.com/lotpilot/lotpilot/internal/driver"
	"github.com/lotpilot/lotpilot/internal/executor"
	"github.com/lotpilot/lotpilot/internal/scheduler"
	"github.com/lotpilot/lotpilot/internal/server"
	"github.com/lotpilot/lotpilot/internal/store"
	"github.com/lotpilot/lotpilot/internal/transport"
	"github.com/lotpilot/lotpilot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().
		Str("dealer", cfg.DealerName).
		Str("data_dir", cfg.DataDir).
		Bool("dry_run", cfg.DryRun).
		Int("interval_minutes", cfg.RunIntervalMinutes).
		Msg("Starting LotPilot")

	st := store.New(cfg.DataDir, log)
	if err := st.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load record store")
	}

	// The reasoning client is optional. Without a model ID the decision
	// source degrades to locally generated fallback decisions.
	var client *agent.Client
	if cfg.BedrockModelID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		client, err = agent.NewClient(ctx, cfg.AWSRegion, cfg.BedrockModelID, log)
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("Failed to create reasoning client, using fallback decisions")
			client = nil
		}
	} else {
		log.Warn().Msg("No model configured, using fallback decisions")
	}
	source := agent.NewSource(client, cfg.DealerName, cfg.MinProfitMargin, cfg.MaxPriceAdjustment, log)

	email := transport.NewFileEmailTransport(cfg.LogDir, log)
	social := transport.NewFileSocialPublisher(cfg.LogDir, log)
	actions := actionlog.New(filepath.Join(cfg.LogDir, "action_log.json"), log)

	exec := executor.New(st, email, social, actions, log)
	validator := decision.NewValidator(log)

	mode := domain.ModeExecute
	if cfg.DryRun {
		mode = domain.ModeSimulate
	}
	drv := driver.New(st, source, validator, exec, mode, log)

	sched := scheduler.New(log)
	agingJob := scheduler.NewInventoryAgingJob(st, drv, log)
	if err := sched.AddJob("@daily", agingJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule inventory aging job")
	}

	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		Store:     st,
		Driver:    drv,
		ActionLog: actions,
		DevMode:   cfg.DevMode,
	})

	if err := drv.Start(time.Duration(cfg.RunIntervalMinutes) * time.Minute); err != nil {
		log.Fatal().Err(err).Msg("Failed to start autonomous driver")
	}
	sched.Start()

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("LotPilot running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	drv.Stop()
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Shutdown complete")
}
