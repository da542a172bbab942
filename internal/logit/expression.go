package logit

import (
	"fmt"
	"strings"
)

// ParseUtility parses a linear utility formula such as
//
//	"b01 + b1*X1 + b2*X2"
//
// into a LinearUtility. A formula is a '+'-separated list of terms; a term is
// either a bare coefficient name (the intercept, at most one) or a
// coefficient*variable product. Negative effects are expressed through
// coefficient values, not formula syntax.
func ParseUtility(formula string) (*LinearUtility, error) {
	trimmed := strings.TrimSpace(formula)
	if trimmed == "" {
		return nil, fmt.Errorf("empty utility formula")
	}

	utility := &LinearUtility{}
	for _, raw := range strings.Split(trimmed, "+") {
		segment := strings.TrimSpace(raw)
		if segment == "" {
			return nil, fmt.Errorf("malformed utility formula %q: empty term", formula)
		}

		if !strings.Contains(segment, "*") {
			if utility.Intercept != "" {
				return nil, fmt.Errorf("malformed utility formula %q: multiple intercept terms", formula)
			}
			utility.Intercept = segment
			continue
		}

		parts := strings.Split(segment, "*")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed term %q in utility formula %q", segment, formula)
		}
		coefficient := strings.TrimSpace(parts[0])
		variable := strings.TrimSpace(parts[1])
		if coefficient == "" || variable == "" {
			return nil, fmt.Errorf("malformed term %q in utility formula %q", segment, formula)
		}
		utility.Terms = append(utility.Terms, Term{Coefficient: coefficient, Variable: variable})
	}

	return utility, nil
}

// ParseUtilities parses an ordered list of formulas, one per alternative.
func ParseUtilities(formulas []string) ([]Utility, error) {
	utilities := make([]Utility, 0, len(formulas))
	for i, formula := range formulas {
		utility, err := ParseUtility(formula)
		if err != nil {
			return nil, fmt.Errorf("alternative %d: %w", i+1, err)
		}
		utilities = append(utilities, utility)
	}
	return utilities, nil
}

// String renders the utility back into formula form.
func (u *LinearUtility) String() string {
	segments := make([]string, 0, len(u.Terms)+1)
	if u.Intercept != "" {
		segments = append(segments, u.Intercept)
	}
	for _, term := range u.Terms {
		segments = append(segments, term.Coefficient+"*"+term.Variable)
	}
	return strings.Join(segments, " + ")
}
