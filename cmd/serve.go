package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"machine_monitor/internal/config"
	"machine_monitor/internal/handlers"
	"machine_monitor/internal/logger"
	"machine_monitor/internal/repository"
	"machine_monitor/internal/server"
	"machine_monitor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulation with the HTTP API and live stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.New(), configPath)
		if err != nil {
			return err
		}

		log, err := logger.Init(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
		if err != nil {
			log.Warnw("log file unavailable, logging to stdout only", "file", cfg.Log.File, "err", err)
		}
		defer func() { _ = log.Close() }()

		if cfg.Log.Level != logger.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}

		db, err := repository.InitDB(cfg.DB.Path)
		if err != nil {
			log.Errorw("failed to init sqlite", "path", cfg.DB.Path, "err", err)
			return err
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				log.Errorw("failed to close sqlite", "err", cerr)
			}
		}()

		repos := repository.NewRepository(db)
		recorder := service.NewEventRecorder(repos.EventRepo, log)
		f, err := newFleet(cfg.Simulation.Fleet(), cfg.Simulation.Seed, recorder)
		if err != nil {
			return err
		}
		host := service.NewFleetHost(f, cfg.Simulation.HistoryWindow)
		services := service.NewService(repos, host, service.AuthConfig{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		}, log)
		api := handlers.NewHandler(services, log)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		recorder.Start()
		simDone := services.Simulator.Start(ctx, cfg.Simulation.Tick)
		// Runs before db.Close: no tick or queued event may outlive the store.
		defer func() {
			stop()
			<-simDone
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := recorder.Close(flushCtx); err != nil {
				log.Errorw("event log not flushed", "err", err)
			}
		}()

		srv := server.New(cfg.Port, api.InitRoutes())
		errc := make(chan error, 1)
		go func() { errc <- srv.Run() }()
		log.Infow("server started", "port", cfg.Port, "machines", f.Names(), "run_id", host.RunID())

		select {
		case <-ctx.Done():
		case err := <-errc:
			if err != nil {
				log.Errorw("error starting server", "err", err)
				return err
			}
		}

		log.Infow("shutting down server...")
		stop()
		<-simDone

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorw("server forced to shutdown", "err", err)
			return err
		}
		return nil
	},
}
