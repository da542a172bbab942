// Package report formats simulation results for terminal and file output.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yourusername/choice-sim/internal/logit"
)

// GenerateConsoleReport formats a probability table for terminal output
func GenerateConsoleReport(scenario string, table *logit.ProbabilityTable) string {
	var builder strings.Builder
	builder.WriteString("Simulation Report\n")
	builder.WriteString("=================\n")
	builder.WriteString(fmt.Sprintf("Scenario: %s\n", scenario))
	builder.WriteString(fmt.Sprintf("Observations: %d\n", table.Observations()))
	builder.WriteString(fmt.Sprintf("Alternatives: %d\n", table.Alternatives()))
	builder.WriteString("\n")

	builder.WriteString("obs")
	for alt := 1; alt <= table.Alternatives(); alt++ {
		builder.WriteString(fmt.Sprintf("%10s", fmt.Sprintf("P%d", alt)))
	}
	builder.WriteString("\n")

	for i := 0; i < table.Observations(); i++ {
		builder.WriteString(fmt.Sprintf("%3d", i))
		for alt := 1; alt <= table.Alternatives(); alt++ {
			builder.WriteString(fmt.Sprintf("%10.4f", table.Series(alt)[i]))
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

// GenerateJSONExport writes the probability table as a JSON document
func GenerateJSONExport(scenario string, table *logit.ProbabilityTable, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	doc := struct {
		Scenario      string               `json:"scenario"`
		Observations  int                  `json:"observations"`
		Alternatives  int                  `json:"alternatives"`
		Probabilities map[string][]float64 `json:"probabilities"`
	}{
		Scenario:      scenario,
		Observations:  table.Observations(),
		Alternatives:  table.Alternatives(),
		Probabilities: table.ToMap(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// GenerateCSVExport exports probabilities for spreadsheets, one row per
// observation with a column per alternative
func GenerateCSVExport(table *logit.ProbabilityTable, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := make([]string, 0, table.Alternatives()+1)
	header = append(header, "observation")
	for alt := 1; alt <= table.Alternatives(); alt++ {
		header = append(header, fmt.Sprintf("P%d", alt))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i := 0; i < table.Observations(); i++ {
		row := make([]string, 0, table.Alternatives()+1)
		row = append(row, strconv.Itoa(i))
		for alt := 1; alt <= table.Alternatives(); alt++ {
			row = append(row, strconv.FormatFloat(table.Series(alt)[i], 'f', -1, 64))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
