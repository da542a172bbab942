package logit

import (
	"errors"
	"fmt"
)

// Input contract violations detected before any evaluation.
var (
	ErrNoCoefficients = errors.New("coefficient set is empty")
	ErrNoObservations = errors.New("observation table has no data")
	ErrNoUtilities    = errors.New("no utility functions supplied")
)

// DataShapeError reports an observation vector whose length disagrees with the
// rest of the table.
type DataShapeError struct {
	Variable string
	Expected int
	Actual   int
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("data length mismatch for variable %q: expected %d, got %d", e.Variable, e.Expected, e.Actual)
}

// EvaluationError reports a utility function that failed for a specific
// alternative and observation. Alternative is 1-based, Observation 0-based.
type EvaluationError struct {
	Alternative int
	Observation int
	Err         error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("utility %d failed at observation %d: %v", e.Alternative, e.Observation, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// InvariantError reports a probability row that does not sum to one within
// tolerance. It signals a defect in the engine, not bad input.
type InvariantError struct {
	Observation int
	Sum         float64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("probabilities do not sum to 1 for observation %d: got %g", e.Observation, e.Sum)
}
