// Package main provides the entry point for the one-shot simulation CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/choice-sim/internal/config"
	"github.com/yourusername/choice-sim/internal/database"
	"github.com/yourusername/choice-sim/internal/datasource"
	"github.com/yourusername/choice-sim/internal/logger"
	"github.com/yourusername/choice-sim/internal/repository"
	"github.com/yourusername/choice-sim/internal/service"
)

var (
	configFile string
	scenario   string
	outputDir  string
	quiet      bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&scenario, "scenario", "s", "", "Scenario name to run (default: all configured scenarios)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Override output directory for artifacts")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the console report")
}

var rootCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run choice-probability scenarios",
	Long:  `Evaluates configured multinomial logit scenarios and writes probability reports, exports and charts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runSimulate()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runSimulate() error {
	cfg, err := loadConfigWithSecrets(configFile)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.Output.Directory = outputDir
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	ctx := context.Background()

	var repo repository.RunRepository
	if cfg.Database.Enabled {
		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		repo = repository.NewPostgresRunRepository(db)
		appLog.Info("Database connection established")
	}

	httpLog := log.New(os.Stdout, "datasource: ", log.LstdFlags)
	sources := datasource.NewRegistry(cfg.DataSources, httpLog)
	simulation := service.NewSimulationService(cfg, sources, repo, appLog)

	results, runErr := runScenarios(ctx, simulation, scenario)
	if runErr != nil {
		appLog.WithError(runErr).Error("Simulation finished with errors")
	}

	if !quiet {
		for _, result := range results {
			fmt.Println(simulation.ConsoleReport(result))
		}
	}

	appLog.WithFields(logrus.Fields{
		"succeeded": len(results),
		"output":    cfg.Output.Directory,
	}).Info("Simulation complete")

	return runErr
}

func runScenarios(ctx context.Context, simulation *service.SimulationService, name string) ([]*service.Result, error) {
	if name == "" {
		return simulation.RunAll(ctx)
	}
	result, err := simulation.RunScenario(ctx, name)
	if err != nil {
		return nil, err
	}
	return []*service.Result{result}, nil
}

func loadConfigWithSecrets(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
