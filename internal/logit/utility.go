package logit

import "fmt"

// Utility scores one alternative for a single observation. Implementations
// must be pure: same inputs, same score, no side effects.
type Utility interface {
	Evaluate(coeffs CoefficientSet, obs Observation) (float64, error)
}

// UtilityFunc adapts a plain function to the Utility interface, for callers
// that register utilities programmatically.
type UtilityFunc func(coeffs CoefficientSet, obs Observation) (float64, error)

// Evaluate invokes the wrapped function.
func (f UtilityFunc) Evaluate(coeffs CoefficientSet, obs Observation) (float64, error) {
	return f(coeffs, obs)
}

// Term is one coefficient*variable product in a linear utility.
type Term struct {
	Coefficient string `json:"coefficient"`
	Variable    string `json:"variable"`
}

// LinearUtility is a utility that is linear in coefficients and covariates:
// an optional intercept coefficient plus a sum of coefficient*variable terms.
// Unlike an opaque closure it can be serialized, inspected and validated.
type LinearUtility struct {
	Intercept string `json:"intercept,omitempty"`
	Terms     []Term `json:"terms"`
}

// Evaluate computes the utility score. Referencing a name absent from the
// coefficient set or the observation fails with an error naming it.
func (u *LinearUtility) Evaluate(coeffs CoefficientSet, obs Observation) (float64, error) {
	score := 0.0
	if u.Intercept != "" {
		value, ok := coeffs[u.Intercept]
		if !ok {
			return 0, fmt.Errorf("undefined coefficient %q", u.Intercept)
		}
		score += value
	}
	for _, term := range u.Terms {
		coeff, ok := coeffs[term.Coefficient]
		if !ok {
			return 0, fmt.Errorf("undefined coefficient %q", term.Coefficient)
		}
		value, ok := obs[term.Variable]
		if !ok {
			return 0, fmt.Errorf("undefined variable %q", term.Variable)
		}
		score += coeff * value
	}
	return score, nil
}

// References returns every coefficient and variable name the utility uses,
// for static validation against a scenario before any run.
func (u *LinearUtility) References() (coefficients []string, variables []string) {
	if u.Intercept != "" {
		coefficients = append(coefficients, u.Intercept)
	}
	for _, term := range u.Terms {
		coefficients = append(coefficients, term.Coefficient)
		variables = append(variables, term.Variable)
	}
	return coefficients, variables
}
