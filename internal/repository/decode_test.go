package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProbabilities(t *testing.T) {
	data := []byte(`{"P1": [0.2, 0.3], "P2": [0.8, 0.7]}`)

	table, err := decodeProbabilities(data, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Alternatives())
	assert.Equal(t, []float64{0.2, 0.3}, table.Series(1))
	assert.Equal(t, []float64{0.8, 0.7}, table.Series(2))
}

func TestDecodeProbabilitiesMissingSeries(t *testing.T) {
	data := []byte(`{"P1": [0.2, 0.3]}`)

	_, err := decodeProbabilities(data, 2, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing series P2")
}

func TestDecodeProbabilitiesShortSeries(t *testing.T) {
	data := []byte(`{"P1": [0.2, 0.3], "P2": [0.8]}`)

	_, err := decodeProbabilities(data, 2, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "P2 has 1 values, expected 2")
}

func TestDecodeProbabilitiesWrongObservationCount(t *testing.T) {
	data := []byte(`{"P1": [0.2, 0.3], "P2": [0.8, 0.7]}`)

	_, err := decodeProbabilities(data, 2, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3")
}

func TestDecodeProbabilitiesMalformedJSON(t *testing.T) {
	_, err := decodeProbabilities([]byte(`not json`), 2, 2)
	require.Error(t, err)
}
