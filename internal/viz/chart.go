// Package viz renders simulation results as charts.
package viz

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/yourusername/choice-sim/internal/logit"
)

// ChartConfig controls the rendered probability chart
type ChartConfig struct {
	Title  string
	Width  int
	Height int
}

// DefaultChartConfig returns recommended chart settings
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:  "Choice Probabilities",
		Width:  1024,
		Height: 576,
	}
}

// ProbabilityChart builds a line chart with one series per alternative,
// indexed by observation.
func ProbabilityChart(table *logit.ProbabilityTable, cfg ChartConfig) (*chart.Chart, error) {
	if table == nil || table.Observations() == 0 {
		return nil, fmt.Errorf("no probabilities to chart")
	}

	xs := make([]float64, table.Observations())
	for i := range xs {
		xs[i] = float64(i)
	}

	series := make([]chart.Series, 0, table.Alternatives())
	for alt := 1; alt <= table.Alternatives(); alt++ {
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("P%d", alt),
			XValues: xs,
			YValues: table.Series(alt),
		})
	}

	graph := &chart.Chart{
		Title:  cfg.Title,
		Width:  cfg.Width,
		Height: cfg.Height,
		XAxis: chart.XAxis{
			Name: "Observation",
		},
		YAxis: chart.YAxis{
			Name: "Probability",
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: 1,
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}

	return graph, nil
}

// WriteChartPNG renders the probability chart to a PNG file, creating the
// parent directory if needed.
func WriteChartPNG(table *logit.ProbabilityTable, cfg ChartConfig, path string) error {
	graph, err := ProbabilityChart(table, cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file %s: %w", path, err)
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
