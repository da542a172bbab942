package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/choice-sim/internal/database"
	"github.com/yourusername/choice-sim/internal/logit"
	"github.com/yourusername/choice-sim/internal/models"
)

// RunRepository defines persistence for simulation runs
type RunRepository interface {
	Create(ctx context.Context, run *models.SimulationRun, table *logit.ProbabilityTable) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SimulationRun, *logit.ProbabilityTable, error)
	ListRecent(ctx context.Context, scenario string, limit int) ([]*models.SimulationRun, error)
}

// PostgresRunRepository implements RunRepository for PostgreSQL
type PostgresRunRepository struct {
	db *database.DB
}

// NewPostgresRunRepository creates a new run repository
func NewPostgresRunRepository(db *database.DB) RunRepository {
	return &PostgresRunRepository{db: db}
}

// Create inserts a run together with its probability series
func (r *PostgresRunRepository) Create(ctx context.Context, run *models.SimulationRun, table *logit.ProbabilityTable) error {
	probabilities, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode probabilities: %w", err)
	}

	query := `
		INSERT INTO simulation_runs (id, scenario, observations, alternatives, parameter_hash, stabilized, duration_seconds, probabilities, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	err = r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			run.ID, run.Scenario, run.Observations, run.Alternatives,
			run.ParameterHash, run.Stabilized, run.Duration, probabilities, run.CreatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create simulation run: %w", err)
	}

	return nil
}

// GetByID retrieves a run and its probability series by ID
func (r *PostgresRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SimulationRun, *logit.ProbabilityTable, error) {
	query := `
		SELECT id, scenario, observations, alternatives, parameter_hash, stabilized, duration_seconds, probabilities, created_at
		FROM simulation_runs WHERE id = $1
	`

	run := &models.SimulationRun{}
	var probabilities []byte
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&run.ID, &run.Scenario, &run.Observations, &run.Alternatives,
		&run.ParameterHash, &run.Stabilized, &run.Duration, &probabilities, &run.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil, models.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get simulation run: %w", err)
	}

	table, err := decodeProbabilities(probabilities, run.Alternatives, run.Observations)
	if err != nil {
		return nil, nil, err
	}

	return run, table, nil
}

// ListRecent retrieves the most recent runs, optionally filtered by scenario
func (r *PostgresRunRepository) ListRecent(ctx context.Context, scenario string, limit int) ([]*models.SimulationRun, error) {
	query := `
		SELECT id, scenario, observations, alternatives, parameter_hash, stabilized, duration_seconds, created_at
		FROM simulation_runs
		WHERE ($1 = '' OR scenario = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, scenario, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list simulation runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SimulationRun
	for rows.Next() {
		run := &models.SimulationRun{}
		if err := rows.Scan(
			&run.ID, &run.Scenario, &run.Observations, &run.Alternatives,
			&run.ParameterHash, &run.Stabilized, &run.Duration, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan simulation run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate simulation runs: %w", err)
	}

	return runs, nil
}

// decodeProbabilities rebuilds a ProbabilityTable from its stored JSON form,
// which is keyed "P1".."Pm". Every series must carry one value per recorded
// observation so a corrupt row cannot produce a ragged table.
func decodeProbabilities(data []byte, alternatives, observations int) (*logit.ProbabilityTable, error) {
	keyed := make(map[string][]float64)
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil, fmt.Errorf("failed to decode probabilities: %w", err)
	}

	series := make([][]float64, alternatives)
	for j := 1; j <= alternatives; j++ {
		values, ok := keyed[fmt.Sprintf("P%d", j)]
		if !ok {
			return nil, fmt.Errorf("stored probabilities missing series P%d", j)
		}
		if len(values) != observations {
			return nil, fmt.Errorf("stored series P%d has %d values, expected %d", j, len(values), observations)
		}
		series[j-1] = values
	}

	return logit.NewProbabilityTable(series), nil
}
