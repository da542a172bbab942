package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/choice-sim/internal/config"
	"github.com/yourusername/choice-sim/internal/logit"
)

// CSVSource reads an observation table from a CSV file. The header row names
// the variables; every following row is one observation.
type CSVSource struct {
	name string
	path string
}

// NewCSVSource creates a CSV file observation source
func NewCSVSource(cfg config.CSVSourceConfig) *CSVSource {
	return &CSVSource{name: cfg.Name, path: cfg.Path}
}

// Name returns the source name
func (s *CSVSource) Name() string {
	return s.name
}

// FetchObservations reads and parses the CSV file
func (s *CSVSource) FetchObservations(ctx context.Context) (logit.ObservationTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open observation file %s: %w", s.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse observation file %s: %w", s.path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("observation file %s is empty", s.path)
	}

	header := records[0]
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
		if header[i] == "" {
			return nil, fmt.Errorf("observation file %s: empty variable name in column %d", s.path, i+1)
		}
	}

	table := make(logit.ObservationTable, len(header))
	for _, name := range header {
		table[name] = make([]float64, 0, len(records)-1)
	}

	for rowIdx, row := range records[1:] {
		for colIdx, cell := range row {
			value, err := parseNumericCell(cell)
			if err != nil {
				return nil, fmt.Errorf("observation file %s row %d column %q: %w", s.path, rowIdx+2, header[colIdx], err)
			}
			name := header[colIdx]
			table[name] = append(table[name], value)
		}
	}

	return table, nil
}

// parseNumericCell converts a CSV cell to a float, tolerating surrounding
// whitespace and thousands separators.
func parseNumericCell(cell string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value %q: %w", cell, err)
	}
	return d.InexactFloat64(), nil
}
