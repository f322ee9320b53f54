package models

import "time"

// DailyReport is the immutable assembly of one reporting cycle: the current
// snapshot, ranked positions, alerts, monthly returns, and risk metrics,
// together with the degradation flags downstream consumers assert on.
type DailyReport struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`

	Snapshot  PortfolioSnapshot `json:"snapshot"`
	Positions []PricedPosition  `json:"positions"` // ranked by PLPercentage descending
	Alerts    []Alert           `json:"alerts"`
	Monthly   []MonthlyReturn   `json:"monthly,omitempty"`
	Risk      *RiskMetrics      `json:"risk,omitempty"`

	// Degradation flags, propagated so consumers and tests can assert on
	// them instead of on silently wrong numbers.
	Synthetic     bool    `json:"synthetic,omitempty"`      // history was backfilled
	PricesMissing int     `json:"prices_missing,omitempty"` // positions without a quote
	ThresholdPct  float64 `json:"threshold_pct"`
}

// TopPerformer returns the best-ranked position and true, or false when the
// report has no positions.
func (r *DailyReport) TopPerformer() (PricedPosition, bool) {
	if len(r.Positions) == 0 {
		return PricedPosition{}, false
	}
	return r.Positions[0], true
}

// BottomPerformer returns the worst-ranked position and true, or false when
// the report has no positions.
func (r *DailyReport) BottomPerformer() (PricedPosition, bool) {
	if len(r.Positions) == 0 {
		return PricedPosition{}, false
	}
	return r.Positions[len(r.Positions)-1], true
}

// ChartArtifact references a rendered chart on disk. Opaque to the core;
// rendering failure is non-fatal and simply yields no artifact.
type ChartArtifact struct {
	Name string `json:"name"`
	Path string `json:"path"`
}
