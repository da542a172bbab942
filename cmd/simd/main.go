// Package main provides the entry point for the simulation daemon: scheduled
// scenario runs, an optional observation stream, health checks and metrics.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/choice-sim/internal/config"
	"github.com/yourusername/choice-sim/internal/database"
	"github.com/yourusername/choice-sim/internal/datasource"
	"github.com/yourusername/choice-sim/internal/health"
	"github.com/yourusername/choice-sim/internal/logger"
	"github.com/yourusername/choice-sim/internal/logit"
	"github.com/yourusername/choice-sim/internal/metrics"
	"github.com/yourusername/choice-sim/internal/repository"
	"github.com/yourusername/choice-sim/internal/scheduler"
	"github.com/yourusername/choice-sim/internal/service"
	"github.com/yourusername/choice-sim/internal/tracing"
)

func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if !cfg.Schedule.Enabled && !cfg.DataSources.Stream.Enabled {
		log.Fatalf("Daemon needs either a schedule or a stream enabled")
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Simulation daemon starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := tracing.Initialize(tracing.Config{
		ServiceName:  cfg.App.Name,
		Enabled:      cfg.Tracing.Enabled,
		SamplingRate: cfg.Tracing.SamplingRate,
		DaemonAddr:   cfg.Tracing.DaemonAddr,
	}, appLog); err != nil {
		appLog.WithError(err).Fatal("Failed to initialize tracing")
	}

	var repo repository.RunRepository
	if cfg.Database.Enabled {
		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()
		repo = repository.NewPostgresRunRepository(db)
		appLog.Info("Database connection established")
	}

	httpLog := log.New(os.Stdout, "datasource: ", log.LstdFlags)
	sources := datasource.NewRegistry(cfg.DataSources, httpLog)
	simulation := service.NewSimulationService(cfg, sources, repo, appLog)

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Port:        cfg.Health.Port,
		Logger:      appLog,
	})

	var sched *scheduler.Scheduler
	if cfg.Schedule.Enabled {
		sched = scheduler.NewScheduler(simulation, appLog)
		if cfg.Tracing.Enabled {
			sched.EnableTracing()
		}
		if err := sched.ScheduleScenarios(cfg.Schedule.Cron, cfg.Schedule.Scenarios); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule scenarios")
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
		defer sched.Stop()
		healthServer.AddChecker("scheduler", func(ctx context.Context) error {
			if !sched.IsRunning() {
				return fmt.Errorf("scheduler not running")
			}
			return nil
		})
	}

	if cfg.DataSources.Stream.Enabled {
		stream := datasource.NewStreamSource(cfg.DataSources.Stream, appLog)
		healthServer.AddChecker("stream", stream.Healthy)

		scenario, err := cfg.Scenario(cfg.DataSources.Stream.Scenario)
		if err != nil {
			appLog.WithError(err).Fatal("Stream references unknown scenario")
		}

		go func() {
			err := stream.Run(ctx, func(table logit.ObservationTable) {
				metrics.RecordStreamBatch()
				if _, err := simulation.RunScenarioWith(ctx, scenario, table); err != nil {
					appLog.WithError(err).Error("Stream batch simulation failed")
				}
			})
			if err != nil && ctx.Err() == nil {
				appLog.WithError(err).Error("Observation stream stopped")
			}
		}()
	}

	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg, appLog)
	}

	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}
	healthServer.SetReady(true)
	defer healthServer.Shutdown()

	appLog.WithFields(logrus.Fields{
		"schedule": cfg.Schedule.Enabled,
		"stream":   cfg.DataSources.Stream.Enabled,
		"metrics":  cfg.Metrics.Enabled,
	}).Info("Simulation daemon running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig.String()).Info("Shutdown signal received")

	healthServer.SetReady(false)
	cancel()

	// Give components time to cleanup
	time.Sleep(2 * time.Second)
	appLog.Info("Simulation daemon shut down")
}

func startMetricsServer(cfg *config.Config, appLog *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
	appLog.WithField("addr", addr).Info("Metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		appLog.WithError(err).Error("Metrics server stopped")
	}
}
