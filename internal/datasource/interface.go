package datasource

import (
	"context"

	"github.com/yourusername/choice-sim/internal/logit"
)

// ObservationSource fetches covariate data for a scenario from an external
// provider. Implementations return a complete table; shape validation is the
// probability engine's job.
type ObservationSource interface {
	// FetchObservations retrieves the full observation table
	FetchObservations(ctx context.Context) (logit.ObservationTable, error)

	// Name returns the source name as referenced by scenarios
	Name() string
}
