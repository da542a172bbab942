// Package service orchestrates scenario runs: observation loading, utility
// parsing, probability computation, caching, persistence and artifacts.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/choice-sim/internal/config"
	"github.com/yourusername/choice-sim/internal/datasource"
	"github.com/yourusername/choice-sim/internal/logger"
	"github.com/yourusername/choice-sim/internal/logit"
	"github.com/yourusername/choice-sim/internal/metrics"
	"github.com/yourusername/choice-sim/internal/models"
	"github.com/yourusername/choice-sim/internal/report"
	"github.com/yourusername/choice-sim/internal/repository"
	"github.com/yourusername/choice-sim/internal/viz"
)

// Result is the outcome of one scenario run.
type Result struct {
	Run    *models.SimulationRun
	Table  *logit.ProbabilityTable
	Cached bool
}

// SimulationService runs configured scenarios through the probability engine.
type SimulationService struct {
	cfg     *config.Config
	engine  *logit.Engine
	sources *datasource.Registry
	repo    repository.RunRepository
	cache   *ResultCache
	logger  *logger.SimulationLogger
}

// NewSimulationService creates the scenario orchestrator. repo may be nil
// when persistence is disabled.
func NewSimulationService(
	cfg *config.Config,
	sources *datasource.Registry,
	repo repository.RunRepository,
	baseLogger *logrus.Logger,
) *SimulationService {
	engine := logit.NewEngine(logit.EngineConfig{
		Workers:          cfg.Simulation.Workers,
		StabilizeSoftmax: cfg.Simulation.StabilizeSoftmax,
	}, baseLogger)

	return &SimulationService{
		cfg:     cfg,
		engine:  engine,
		sources: sources,
		repo:    repo,
		cache:   NewResultCache(time.Duration(cfg.Simulation.CacheTTLSeconds)*time.Second, cfg.Simulation.CacheMaxSize),
		logger:  logger.NewSimulationLogger(baseLogger),
	}
}

// RunScenario executes the named scenario against its configured data.
func (s *SimulationService) RunScenario(ctx context.Context, name string) (*Result, error) {
	scenario, err := s.cfg.Scenario(name)
	if err != nil {
		return nil, err
	}

	observations, err := s.resolveObservations(ctx, scenario)
	if err != nil {
		metrics.RecordSimulationError("source")
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}

	return s.RunScenarioWith(ctx, scenario, observations)
}

// RunScenarioWith executes a scenario against an explicit observation table,
// bypassing the configured data source. Stream batches come through here.
func (s *SimulationService) RunScenarioWith(ctx context.Context, scenario *config.ScenarioConfig, observations logit.ObservationTable) (*Result, error) {
	coeffs := logit.CoefficientSet(scenario.Coefficients)

	utilities, err := logit.ParseUtilities(scenario.Utilities)
	if err != nil {
		metrics.RecordSimulationError("parse")
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	hash, err := ParameterHash(coeffs, scenario.Utilities, observations, s.cfg.Simulation.StabilizeSoftmax)
	if err != nil {
		return nil, err
	}

	run := models.NewSimulationRun(scenario.Name, 0, len(utilities))
	run.ParameterHash = hash
	run.Stabilized = s.cfg.Simulation.StabilizeSoftmax

	if table, found := s.cache.Get(hash); found {
		run.Observations = table.Observations()
		s.logger.LogRunCompleted(run.ID.String(), scenario.Name, 0, true)
		return &Result{Run: run, Table: table, Cached: true}, nil
	}

	obsCount := 0
	for _, values := range observations {
		obsCount = len(values)
		break
	}
	s.logger.LogRunStarted(run.ID.String(), scenario.Name, obsCount, len(utilities))

	start := time.Now()
	table, err := s.engine.Compute(ctx, coeffs, observations, utilities)
	if err != nil {
		kind := faultKind(err)
		metrics.RecordSimulationError(kind)
		s.logger.LogRunFailed(run.ID.String(), scenario.Name, kind, err)
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	elapsed := time.Since(start)

	run.Observations = table.Observations()
	run.Duration = elapsed.Seconds()

	metrics.RecordSimulation(scenario.Name, table.Observations(), table.Alternatives(), elapsed.Seconds())
	s.cache.Set(hash, table)

	if s.repo != nil {
		if err := s.repo.Create(ctx, run, table); err != nil {
			// Persistence failure does not invalidate the computed result
			s.logger.WithError(err).Warn("Failed to persist simulation run")
		}
	}

	if err := s.writeArtifacts(run, scenario.Name, table); err != nil {
		s.logger.WithError(err).Warn("Failed to write artifacts")
	}

	s.logger.LogRunCompleted(run.ID.String(), scenario.Name, float64(elapsed.Milliseconds()), false)
	return &Result{Run: run, Table: table}, nil
}

// RunAll executes every configured scenario, collecting per-scenario errors
// without aborting the batch.
func (s *SimulationService) RunAll(ctx context.Context) ([]*Result, error) {
	var results []*Result
	var errs []error
	for _, scenario := range s.cfg.Scenarios {
		result, err := s.RunScenario(ctx, scenario.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, result)
	}
	return results, errors.Join(errs...)
}

// ConsoleReport renders a result for terminal output
func (s *SimulationService) ConsoleReport(result *Result) string {
	return report.GenerateConsoleReport(result.Run.Scenario, result.Table)
}

func (s *SimulationService) resolveObservations(ctx context.Context, scenario *config.ScenarioConfig) (logit.ObservationTable, error) {
	if len(scenario.Data) > 0 {
		return logit.ObservationTable(scenario.Data), nil
	}

	source, err := s.sources.Get(scenario.Source)
	if err != nil {
		return nil, err
	}
	return source.FetchObservations(ctx)
}

func (s *SimulationService) writeArtifacts(run *models.SimulationRun, scenario string, table *logit.ProbabilityTable) error {
	out := s.cfg.Output
	base := filepath.Join(out.Directory, scenario)

	if out.JSONEnabled {
		path := base + ".json"
		if err := report.GenerateJSONExport(scenario, table, path); err != nil {
			return err
		}
		s.logger.LogArtifactWritten(run.ID.String(), "json", path)
	}
	if out.CSVEnabled {
		path := base + ".csv"
		if err := report.GenerateCSVExport(table, path); err != nil {
			return err
		}
		s.logger.LogArtifactWritten(run.ID.String(), "csv", path)
	}
	if out.ChartEnabled {
		path := base + ".png"
		chartCfg := viz.DefaultChartConfig()
		chartCfg.Title = fmt.Sprintf("Choice Probabilities: %s", scenario)
		if err := viz.WriteChartPNG(table, chartCfg, path); err != nil {
			return err
		}
		s.logger.LogArtifactWritten(run.ID.String(), "chart", path)
	}
	return nil
}

// faultKind classifies an engine error for metrics and logging.
func faultKind(err error) string {
	var shapeErr *logit.DataShapeError
	var evalErr *logit.EvaluationError
	var invErr *logit.InvariantError

	switch {
	case errors.As(err, &shapeErr):
		return "shape"
	case errors.As(err, &evalErr):
		return "evaluation"
	case errors.As(err, &invErr):
		return "invariant"
	case errors.Is(err, logit.ErrNoCoefficients),
		errors.Is(err, logit.ErrNoObservations),
		errors.Is(err, logit.ErrNoUtilities):
		return "empty_input"
	default:
		return "unknown"
	}
}
