package models

// ReturnSeries is a derived period-over-period return series in percent.
// DroppedSteps counts steps that could not be computed because the prior
// value was exactly zero (division guard, never surfaced as NaN entries).
type ReturnSeries struct {
	Values       []float64 `json:"values"`
	DroppedSteps int       `json:"dropped_steps,omitempty"`
}

// RiskMetrics is a stateless, derived summary of a performance history.
// It is recomputed fresh each cycle; persisted copies are a cache, never the
// source of truth. All percentage fields are in percent units.
type RiskMetrics struct {
	TotalReturnPct          float64 `json:"total_return_pct"`
	AnnualizedReturnPct     float64 `json:"annualized_return_pct"`
	AnnualizedVolatilityPct float64 `json:"annualized_volatility_pct"`

	// SharpeRatio is NaN when volatility is zero (flat series);
	// SharpeDefined distinguishes that sentinel from a legitimate value.
	SharpeRatio   float64 `json:"sharpe_ratio"`
	SharpeDefined bool    `json:"sharpe_defined"`

	MaxDrawdownPct  float64 `json:"max_drawdown_pct"` // always <= 0
	BestDayPct      float64 `json:"best_day_pct"`
	WorstDayPct     float64 `json:"worst_day_pct"`
	PositiveDayPct  float64 `json:"positive_day_pct"`
	ObservationDays int     `json:"observation_days"`
	DroppedSteps    int     `json:"dropped_steps,omitempty"`

	// Distributional shape of the daily return series. Only populated when
	// enough observations exist (3 for skewness, 4 for kurtosis).
	Skewness   float64 `json:"skewness,omitempty"`
	ExKurtosis float64 `json:"ex_kurtosis,omitempty"`

	// Synthetic is carried from the source history so consumers can
	// disclaim metrics computed on backfilled data.
	Synthetic bool `json:"synthetic,omitempty"`
}
