// Package logit implements forward simulation of multinomial logit
// discrete-choice models: utility evaluation, softmax normalization and the
// resulting per-alternative choice probabilities.
package logit

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CoefficientSet maps coefficient names to their values. It is supplied by the
// caller and never mutated by the engine.
type CoefficientSet map[string]float64

// ObservationTable maps variable names to per-observation value vectors. Every
// vector must have the same length.
type ObservationTable map[string][]float64

// Observation is a single-row view of an ObservationTable: one value per
// variable.
type Observation map[string]float64

// Variables returns the variable names in deterministic order.
func (t ObservationTable) Variables() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Row builds the single-observation view at index i.
func (t ObservationTable) Row(i int) Observation {
	row := make(Observation, len(t))
	for name, values := range t {
		row[name] = values[i]
	}
	return row
}

// UtilityMatrix holds evaluated utilities, one row per alternative and one
// column per observation.
type UtilityMatrix [][]float64

// ProbabilityTable holds choice probabilities, one row per alternative and one
// column per observation. Alternatives are identified by their 1-based row
// position.
type ProbabilityTable struct {
	series [][]float64
}

// NewProbabilityTable wraps per-alternative probability series.
func NewProbabilityTable(series [][]float64) *ProbabilityTable {
	return &ProbabilityTable{series: series}
}

// Alternatives returns the number of alternatives m.
func (p *ProbabilityTable) Alternatives() int {
	return len(p.series)
}

// Observations returns the number of observations n.
func (p *ProbabilityTable) Observations() int {
	if len(p.series) == 0 {
		return 0
	}
	return len(p.series[0])
}

// Series returns the probability vector for the 1-based alternative index.
func (p *ProbabilityTable) Series(alternative int) []float64 {
	return p.series[alternative-1]
}

// ToMap returns the table keyed "P1".."Pm", matching the published result
// contract.
func (p *ProbabilityTable) ToMap() map[string][]float64 {
	result := make(map[string][]float64, len(p.series))
	for j, values := range p.series {
		result[fmt.Sprintf("P%d", j+1)] = values
	}
	return result
}

// MarshalJSON serializes the table as {"P1": [...], ..., "Pm": [...]}.
func (p *ProbabilityTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}
