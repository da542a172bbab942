package logit

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// SimplexTolerance is the allowed deviation of a probability row sum from 1.
const SimplexTolerance = 1e-6

// EngineConfig configures probability computation
type EngineConfig struct {
	// Workers bounds the evaluation worker pool. Zero means NumCPU.
	Workers int
	// StabilizeSoftmax subtracts each observation's maximum utility before
	// exponentiating. Mathematically equivalent, but keeps very large
	// utilities from overflowing exp. Off by default to match the plain
	// softmax definition.
	StabilizeSoftmax bool
}

// Engine computes multinomial logit choice probabilities. It holds no state
// between computations.
type Engine struct {
	config EngineConfig
	logger *logrus.Logger
}

// NewEngine creates a probability engine
func NewEngine(cfg EngineConfig, logger *logrus.Logger) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{config: cfg, logger: logger}
}

// Compute evaluates every utility for every observation, applies softmax
// normalization per observation and returns the per-alternative probability
// series. It validates input shapes before invoking any utility and verifies
// the simplex invariant before returning. No partial result is ever produced.
func (e *Engine) Compute(ctx context.Context, coeffs CoefficientSet, observations ObservationTable, utilities []Utility) (*ProbabilityTable, error) {
	n, err := validateInputs(coeffs, observations, utilities)
	if err != nil {
		return nil, err
	}

	matrix, err := e.evaluateUtilities(ctx, coeffs, observations, utilities, n)
	if err != nil {
		return nil, err
	}

	probabilities := e.normalize(matrix, n)

	if err := checkSimplex(probabilities, n); err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"observations": n,
		"alternatives": len(utilities),
	}).Debug("Computed choice probabilities")

	return NewProbabilityTable(probabilities), nil
}

// validateInputs rejects empty inputs and mismatched observation vectors.
// Variables are visited in sorted order so the reported offender is stable.
func validateInputs(coeffs CoefficientSet, observations ObservationTable, utilities []Utility) (int, error) {
	if len(coeffs) == 0 {
		return 0, ErrNoCoefficients
	}
	if len(utilities) == 0 {
		return 0, ErrNoUtilities
	}
	if len(observations) == 0 {
		return 0, ErrNoObservations
	}

	names := observations.Variables()
	n := len(observations[names[0]])
	for _, name := range names[1:] {
		if actual := len(observations[name]); actual != n {
			return 0, &DataShapeError{Variable: name, Expected: n, Actual: actual}
		}
	}
	if n == 0 {
		return 0, ErrNoObservations
	}
	return n, nil
}

// evaluateUtilities fills the utility matrix, fanning observations out across
// the worker pool. Each observation owns a disjoint column, so workers write
// without locks.
func (e *Engine) evaluateUtilities(ctx context.Context, coeffs CoefficientSet, observations ObservationTable, utilities []Utility, n int) (UtilityMatrix, error) {
	m := len(utilities)
	matrix := make(UtilityMatrix, m)
	for j := range matrix {
		matrix[j] = make([]float64, n)
	}

	workers := e.config.Workers
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	workerErrs := make([]error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < n; i += workers {
				if err := ctx.Err(); err != nil {
					workerErrs[w] = err
					return
				}
				row := observations.Row(i)
				for j, utility := range utilities {
					value, err := utility.Evaluate(coeffs, row)
					if err != nil {
						workerErrs[w] = &EvaluationError{Alternative: j + 1, Observation: i, Err: err}
						return
					}
					matrix[j][i] = value
				}
			}
		}(w)
	}
	wg.Wait()

	for _, err := range workerErrs {
		if err != nil {
			return nil, err
		}
	}
	return matrix, nil
}

// normalize applies softmax across alternatives for each observation.
func (e *Engine) normalize(matrix UtilityMatrix, n int) [][]float64 {
	m := len(matrix)
	probabilities := make([][]float64, m)
	for j := range probabilities {
		probabilities[j] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		shift := 0.0
		if e.config.StabilizeSoftmax {
			shift = matrix[0][i]
			for j := 1; j < m; j++ {
				if matrix[j][i] > shift {
					shift = matrix[j][i]
				}
			}
		}

		sum := 0.0
		for j := 0; j < m; j++ {
			exp := math.Exp(matrix[j][i] - shift)
			probabilities[j][i] = exp
			sum += exp
		}
		for j := 0; j < m; j++ {
			probabilities[j][i] /= sum
		}
	}

	return probabilities
}

// checkSimplex asserts that every observation's probabilities sum to 1 within
// tolerance. A failure means the arithmetic above is broken.
func checkSimplex(probabilities [][]float64, n int) error {
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := range probabilities {
			sum += probabilities[j][i]
		}
		if math.Abs(sum-1.0) > SimplexTolerance {
			return &InvariantError{Observation: i, Sum: sum}
		}
	}
	return nil
}
