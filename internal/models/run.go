package models

import (
	"time"

	"github.com/google/uuid"
)

// SimulationRun records one completed probability computation for persistence
// and audit.
type SimulationRun struct {
	ID            uuid.UUID `json:"id"`
	Scenario      string    `json:"scenario"`
	Observations  int       `json:"observations"`
	Alternatives  int       `json:"alternatives"`
	ParameterHash string    `json:"parameter_hash"`
	Stabilized    bool      `json:"stabilized"`
	Duration      float64   `json:"duration_seconds"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewSimulationRun creates a run record with a fresh ID
func NewSimulationRun(scenario string, observations, alternatives int) *SimulationRun {
	return &SimulationRun{
		ID:           uuid.New(),
		Scenario:     scenario,
		Observations: observations,
		Alternatives: alternatives,
		CreatedAt:    time.Now().UTC(),
	}
}
