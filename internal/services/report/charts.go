package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/folio/internal/models"
)

var (
	gainColor = drawing.ColorFromHex("16a34a") // green-600
	lossColor = drawing.ColorFromHex("dc2626") // red-600
)

// RenderAllocationChart renders a pie chart of portfolio allocation by
// current value. Positions without a quote carry no value and are excluded.
// Returns raw PNG bytes.
func RenderAllocationChart(positions []models.PricedPosition) ([]byte, error) {
	values := make([]chart.Value, 0, len(positions))
	for _, pp := range positions {
		if pp.CurrentValue <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: pp.CurrentValue,
			Label: fmt.Sprintf("%s %.1f%%", pp.Symbol, pp.WeightPct),
		})
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("need at least 2 priced positions, got %d", len(values))
	}

	graph := chart.PieChart{
		Title:  "Allocation by Current Value",
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPLChart renders a bar chart of per-position P&L percentage, gains
// green and losses red. Returns raw PNG bytes.
func RenderPLChart(positions []models.PricedPosition, thresholdPct float64) ([]byte, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("no positions to chart")
	}

	bars := make([]chart.Value, 0, len(positions))
	minPL, maxPL := 0.0, 0.0
	for _, pp := range positions {
		color := gainColor
		if pp.PLPercentage < 0 {
			color = lossColor
		}
		bars = append(bars, chart.Value{
			Value: pp.PLPercentage,
			Label: pp.Symbol,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
		if pp.PLPercentage < minPL {
			minPL = pp.PLPercentage
		}
		if pp.PLPercentage > maxPL {
			maxPL = pp.PLPercentage
		}
	}

	// Pad the axis past the threshold band so the bars never fill the
	// full frame; also guards go-chart against a zero-size value range.
	lo := minPL - 2
	hi := maxPL + 2
	if lo > -thresholdPct-2 {
		lo = -thresholdPct - 2
	}
	if hi < thresholdPct+2 {
		hi = thresholdPct + 2
	}

	graph := chart.BarChart{
		Title:    "P&L by Position (%)",
		Width:    900,
		Height:   400,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f%%", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderHistoryChart renders a PNG line chart from the performance history.
// Two series: portfolio value (blue solid) and total investment (gray
// dashed). Returns raw PNG bytes.
func RenderHistoryChart(history *models.PerformanceHistory) ([]byte, error) {
	if history == nil || history.Len() < 2 {
		n := 0
		if history != nil {
			n = history.Len()
		}
		return nil, fmt.Errorf("need at least 2 data points, got %d", n)
	}

	xValues := make([]time.Time, history.Len())
	valueY := make([]float64, history.Len())
	costY := make([]float64, history.Len())

	for i, snap := range history.Snapshots {
		xValues[i] = snap.Date
		valueY[i] = snap.TotalCurrentValue
		costY[i] = snap.TotalInvestment
	}

	valueSeries := chart.TimeSeries{
		Name: "Portfolio Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	costSeries := chart.TimeSeries{
		Name: "Total Investment",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: costY,
	}

	title := "Portfolio Value Over Time"
	if history.Synthetic {
		title += " (synthetic backfill)"
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			costSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
