package logit

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

func newTestEngine(cfg EngineConfig) *Engine {
	return NewEngine(cfg, nil)
}

func constantUtility(value float64) Utility {
	return UtilityFunc(func(coeffs CoefficientSet, obs Observation) (float64, error) {
		return value, nil
	})
}

func TestComputeSimplexProperty(t *testing.T) {
	engine := newTestEngine(EngineConfig{})
	coeffs := CoefficientSet{"b1": 0.5, "b2": -0.3}
	observations := ObservationTable{
		"X1": {2, 3, 5, 7, 1, 8, 4},
		"X2": {1, 5, 3, 8, 2, 7, 5},
	}
	utilities := []Utility{
		&LinearUtility{Terms: []Term{{Coefficient: "b1", Variable: "X1"}}},
		&LinearUtility{Terms: []Term{{Coefficient: "b2", Variable: "X2"}}},
		&LinearUtility{Terms: []Term{{Coefficient: "b1", Variable: "X2"}, {Coefficient: "b2", Variable: "X1"}}},
	}

	table, err := engine.Compute(context.Background(), coeffs, observations, utilities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < table.Observations(); i++ {
		sum := 0.0
		for j := 1; j <= table.Alternatives(); j++ {
			sum += table.Series(j)[i]
		}
		if math.Abs(sum-1.0) > SimplexTolerance {
			t.Fatalf("observation %d: probabilities sum to %g", i, sum)
		}
	}
}

func TestComputeShapeMismatchRejectedBeforeEvaluation(t *testing.T) {
	engine := newTestEngine(EngineConfig{})
	var calls int64
	counting := UtilityFunc(func(coeffs CoefficientSet, obs Observation) (float64, error) {
		atomic.AddInt64(&calls, 1)
		return 0, nil
	})

	observations := ObservationTable{
		"X1": {1, 2, 3},
		"X2": {1, 2},
	}

	_, err := engine.Compute(context.Background(), CoefficientSet{"b": 1}, observations, []Utility{counting, counting})
	var shapeErr *DataShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected DataShapeError, got %v", err)
	}
	if shapeErr.Variable != "X2" || shapeErr.Expected != 3 || shapeErr.Actual != 2 {
		t.Fatalf("unexpected shape error detail: %+v", shapeErr)
	}
	if atomic.LoadInt64(&calls) != 0 {
		t.Fatalf("utility functions were invoked %d times before validation failed", calls)
	}
}

func TestComputeSingleAlternativeDegeneracy(t *testing.T) {
	engine := newTestEngine(EngineConfig{})
	observations := ObservationTable{"X": {-4, 0, 12.5}}

	table, err := engine.Compute(context.Background(), CoefficientSet{"b": 2}, observations, []Utility{
		&LinearUtility{Terms: []Term{{Coefficient: "b", Variable: "X"}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, p := range table.Series(1) {
		if p != 1.0 {
			t.Fatalf("observation %d: expected probability exactly 1, got %g", i, p)
		}
	}
}

func TestComputeSymmetry(t *testing.T) {
	engine := newTestEngine(EngineConfig{})
	observations := ObservationTable{"X": {1, 2, 3, 4}}
	utility := &LinearUtility{Terms: []Term{{Coefficient: "b", Variable: "X"}}}

	table, err := engine.Compute(context.Background(), CoefficientSet{"b": 0.7}, observations, []Utility{utility, utility, constantUtility(0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, second := table.Series(1), table.Series(2)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("observation %d: identical utilities produced %g and %g", i, first[i], second[i])
		}
	}
}

func TestComputeMonotonicity(t *testing.T) {
	engine := newTestEngine(EngineConfig{})
	observations := ObservationTable{"X": {1}}
	compute := func(v float64) *ProbabilityTable {
		table, err := engine.Compute(context.Background(), CoefficientSet{"b": 1}, observations, []Utility{
			constantUtility(v), constantUtility(0.5), constantUtility(-0.5),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return table
	}

	low := compute(0.0)
	high := compute(1.0)

	if high.Series(1)[0] <= low.Series(1)[0] {
		t.Fatalf("raising utility 1 did not raise P1: %g -> %g", low.Series(1)[0], high.Series(1)[0])
	}
	for j := 2; j <= 3; j++ {
		if high.Series(j)[0] >= low.Series(j)[0] {
			t.Fatalf("raising utility 1 did not lower P%d: %g -> %g", j, low.Series(j)[0], high.Series(j)[0])
		}
	}
}

func TestComputeTwoAlternativeScenario(t *testing.T) {
	engine := newTestEngine(EngineConfig{})
	observations := ObservationTable{"X": {0, 1}}
	utilities := []Utility{
		&LinearUtility{Terms: []Term{{Coefficient: "b", Variable: "X"}}},
		constantUtility(0),
	}

	table, err := engine.Compute(context.Background(), CoefficientSet{"b": 1}, observations, utilities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedP1 := []float64{0.5, math.E / (math.E + 1)}
	expectedP2 := []float64{0.5, 1 / (math.E + 1)}
	for i := 0; i < 2; i++ {
		if math.Abs(table.Series(1)[i]-expectedP1[i]) > 1e-9 {
			t.Fatalf("P1[%d]: expected %.12f, got %.12f", i, expectedP1[i], table.Series(1)[i])
		}
		if math.Abs(table.Series(2)[i]-expectedP2[i]) > 1e-9 {
			t.Fatalf("P2[%d]: expected %.12f, got %.12f", i, expectedP2[i], table.Series(2)[i])
		}
	}
}

func TestComputeEqualUtilitiesScenario(t *testing.T) {
	engine := newTestEngine(EngineConfig{})
	observations := ObservationTable{"X": {42}}
	utilities := []Utility{constantUtility(1), constantUtility(1), constantUtility(1)}

	table, err := engine.Compute(context.Background(), CoefficientSet{"b": 1}, observations, utilities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for j := 1; j <= 3; j++ {
		if math.Abs(table.Series(j)[0]-1.0/3.0) > 1e-9 {
			t.Fatalf("P%d: expected 1/3, got %.12f", j, table.Series(j)[0])
		}
	}
}

func TestComputeEmptyInputs(t *testing.T) {
	engine := newTestEngine(EngineConfig{})
	coeffs := CoefficientSet{"b": 1}
	observations := ObservationTable{"X": {1, 2}}
	utilities := []Utility{constantUtility(0)}

	if _, err := engine.Compute(context.Background(), CoefficientSet{}, observations, utilities); !errors.Is(err, ErrNoCoefficients) {
		t.Fatalf("expected ErrNoCoefficients, got %v", err)
	}
	if _, err := engine.Compute(context.Background(), coeffs, observations, nil); !errors.Is(err, ErrNoUtilities) {
		t.Fatalf("expected ErrNoUtilities, got %v", err)
	}
	if _, err := engine.Compute(context.Background(), coeffs, ObservationTable{}, utilities); !errors.Is(err, ErrNoObservations) {
		t.Fatalf("expected ErrNoObservations for empty table, got %v", err)
	}
	if _, err := engine.Compute(context.Background(), coeffs, ObservationTable{"X": {}}, utilities); !errors.Is(err, ErrNoObservations) {
		t.Fatalf("expected ErrNoObservations for zero-length vectors, got %v", err)
	}
}

func TestComputeEvaluationErrorPropagation(t *testing.T) {
	engine := newTestEngine(EngineConfig{Workers: 1})
	observations := ObservationTable{"X": {1, 2}}
	utilities := []Utility{
		constantUtility(0),
		&LinearUtility{Terms: []Term{{Coefficient: "missing", Variable: "X"}}},
	}

	_, err := engine.Compute(context.Background(), CoefficientSet{"b": 1}, observations, utilities)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if evalErr.Alternative != 2 {
		t.Fatalf("expected failure reported for alternative 2, got %d", evalErr.Alternative)
	}
	if evalErr.Unwrap() == nil {
		t.Fatal("expected wrapped cause")
	}
}

func TestComputeStabilizedSoftmaxMatchesPlain(t *testing.T) {
	coeffs := CoefficientSet{"b": 0.9}
	observations := ObservationTable{"X": {1, 2, 3}}
	utilities := []Utility{
		&LinearUtility{Terms: []Term{{Coefficient: "b", Variable: "X"}}},
		constantUtility(1.5),
	}

	plain, err := newTestEngine(EngineConfig{}).Compute(context.Background(), coeffs, observations, utilities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stabilized, err := newTestEngine(EngineConfig{StabilizeSoftmax: true}).Compute(context.Background(), coeffs, observations, utilities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for j := 1; j <= 2; j++ {
		for i := 0; i < 3; i++ {
			if math.Abs(plain.Series(j)[i]-stabilized.Series(j)[i]) > 1e-12 {
				t.Fatalf("P%d[%d] diverged: %g vs %g", j, i, plain.Series(j)[i], stabilized.Series(j)[i])
			}
		}
	}
}

func TestComputeStabilizedSoftmaxSurvivesLargeUtilities(t *testing.T) {
	engine := newTestEngine(EngineConfig{StabilizeSoftmax: true})
	observations := ObservationTable{"X": {1}}
	utilities := []Utility{constantUtility(800), constantUtility(790)}

	table, err := engine.Compute(context.Background(), CoefficientSet{"b": 1}, observations, utilities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsNaN(table.Series(1)[0]) {
		t.Fatal("stabilized softmax produced NaN for large utilities")
	}
	if table.Series(1)[0] <= table.Series(2)[0] {
		t.Fatalf("expected dominant alternative to keep higher probability, got %g vs %g", table.Series(1)[0], table.Series(2)[0])
	}
}

func TestCheckSimplexDetectsCorruptRow(t *testing.T) {
	corrupt := [][]float64{{0.5, 0.5}, {0.5, 0.4}}
	err := checkSimplex(corrupt, 2)
	var invErr *InvariantError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvariantError, got %v", err)
	}
	if invErr.Observation != 1 {
		t.Fatalf("expected violation at observation 1, got %d", invErr.Observation)
	}
}

func TestComputeParallelMatchesSequential(t *testing.T) {
	coeffs := CoefficientSet{"b1": 0.5, "b2": 0.2}
	values := make([]float64, 500)
	for i := range values {
		values[i] = float64(i%17) - 8
	}
	observations := ObservationTable{"X1": values, "X2": values}
	utilities := []Utility{
		&LinearUtility{Terms: []Term{{Coefficient: "b1", Variable: "X1"}}},
		&LinearUtility{Terms: []Term{{Coefficient: "b2", Variable: "X2"}}},
	}

	sequential, err := newTestEngine(EngineConfig{Workers: 1}).Compute(context.Background(), coeffs, observations, utilities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parallel, err := newTestEngine(EngineConfig{Workers: 8}).Compute(context.Background(), coeffs, observations, utilities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for j := 1; j <= 2; j++ {
		for i := range values {
			if sequential.Series(j)[i] != parallel.Series(j)[i] {
				t.Fatalf("P%d[%d] differs between worker counts", j, i)
			}
		}
	}
}
