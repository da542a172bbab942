// Package logger provides simulation-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SimulationLogger provides dedicated logging for simulation runs.
type SimulationLogger struct {
	*logrus.Entry
}

// NewSimulationLogger creates a new simulation logger.
func NewSimulationLogger(baseLogger *logrus.Logger) *SimulationLogger {
	return &SimulationLogger{
		Entry: baseLogger.WithField("component", "simulation"),
	}
}

// LogRunStarted logs the start of a scenario run.
func (sl *SimulationLogger) LogRunStarted(runID, scenario string, observations, alternatives int) {
	sl.WithFields(logrus.Fields{
		"run_id":       runID,
		"scenario":     scenario,
		"observations": observations,
		"alternatives": alternatives,
	}).Info("Simulation run started")
}

// LogRunCompleted logs a completed scenario run.
func (sl *SimulationLogger) LogRunCompleted(runID, scenario string, durationMs float64, cached bool) {
	sl.WithFields(logrus.Fields{
		"run_id":      runID,
		"scenario":    scenario,
		"duration_ms": durationMs,
		"cached":      cached,
	}).Info("Simulation run completed")
}

// LogRunFailed logs a failed scenario run with its fault kind.
func (sl *SimulationLogger) LogRunFailed(runID, scenario, faultKind string, err error) {
	sl.WithFields(logrus.Fields{
		"run_id":     runID,
		"scenario":   scenario,
		"fault_kind": faultKind,
		"error":      err.Error(),
	}).Error("Simulation run failed")
}

// LogArtifactWritten logs a persisted output artifact.
func (sl *SimulationLogger) LogArtifactWritten(runID, kind, path string) {
	sl.WithFields(logrus.Fields{
		"run_id":   runID,
		"artifact": kind,
		"path":     path,
	}).Info("Artifact written")
}
