package logit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUtility(t *testing.T) {
	tests := []struct {
		name      string
		formula   string
		expected  *LinearUtility
		shouldErr bool
	}{
		{
			name:    "intercept and two terms",
			formula: "b01 + b1*X1 + b2*X2",
			expected: &LinearUtility{
				Intercept: "b01",
				Terms: []Term{
					{Coefficient: "b1", Variable: "X1"},
					{Coefficient: "b2", Variable: "X2"},
				},
			},
		},
		{
			name:     "intercept only",
			formula:  "b03",
			expected: &LinearUtility{Intercept: "b03"},
		},
		{
			name:    "terms without intercept",
			formula: "b1*X1 + b2*X2",
			expected: &LinearUtility{
				Terms: []Term{
					{Coefficient: "b1", Variable: "X1"},
					{Coefficient: "b2", Variable: "X2"},
				},
			},
		},
		{
			name:    "whitespace tolerated",
			formula: "  b01 +b1 * X1 ",
			expected: &LinearUtility{
				Intercept: "b01",
				Terms:     []Term{{Coefficient: "b1", Variable: "X1"}},
			},
		},
		{
			name:      "empty formula",
			formula:   "   ",
			shouldErr: true,
		},
		{
			name:      "dangling plus",
			formula:   "b01 + ",
			shouldErr: true,
		},
		{
			name:      "two intercepts",
			formula:   "b01 + b02",
			shouldErr: true,
		},
		{
			name:      "double star",
			formula:   "b1*X1*X2",
			shouldErr: true,
		},
		{
			name:      "missing variable",
			formula:   "b1*",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			utility, err := ParseUtility(tt.formula)
			if tt.shouldErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, utility)
		})
	}
}

func TestParseUtilitiesReportsAlternative(t *testing.T) {
	_, err := ParseUtilities([]string{"b01 + b1*X1", "b1**X1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alternative 2")
}

func TestLinearUtilityRoundTrip(t *testing.T) {
	formula := "b01 + b1*X1 + b2*X2"
	utility, err := ParseUtility(formula)
	require.NoError(t, err)
	assert.Equal(t, formula, utility.String())
}

func TestLinearUtilityReferences(t *testing.T) {
	utility, err := ParseUtility("b01 + b1*X1 + b2*X2")
	require.NoError(t, err)

	coefficients, variables := utility.References()
	assert.Equal(t, []string{"b01", "b1", "b2"}, coefficients)
	assert.Equal(t, []string{"X1", "X2"}, variables)
}
