// Package interfaces defines service contracts for Folio
package interfaces

import (
	"time"

	"github.com/bobmcallan/folio/internal/models"
)

// ValuationService turns raw positions plus current prices into priced
// positions and an aggregate snapshot.
type ValuationService interface {
	// Value computes per-position and aggregate valuation figures as of a
	// given date. The prices map is partial; absent symbols are treated as
	// "price unavailable", never as zero.
	Value(positions []models.Position, prices map[string]float64, asOf time.Time) ([]models.PricedPosition, *models.PortfolioSnapshot, error)

	// Alerts flags positions whose |P&L %| strictly exceeds the threshold,
	// preserving input order.
	Alerts(priced []models.PricedPosition, thresholdPct float64) []models.Alert
}

// HistoryService produces and extends the daily performance history.
type HistoryService interface {
	// Append upserts a snapshot into the history keyed by calendar date,
	// keeping snapshots strictly sorted.
	Append(history *models.PerformanceHistory, snapshot models.PortfolioSnapshot) *models.PerformanceHistory

	// Synthesize backfills a deterministic business-day history from the
	// earliest purchase date through asOf using a seeded random walk.
	// The result is flagged Synthetic.
	Synthesize(positions []models.Position, asOf time.Time) (*models.PerformanceHistory, error)
}

// MetricsService derives return and risk metrics from a performance history.
// All operations are pure: calling twice with unchanged history yields
// identical results.
type MetricsService interface {
	// MonthlyReturns groups the history by calendar month, keeping the last
	// snapshot per month, and computes month-over-month P&L% change.
	MonthlyReturns(history *models.PerformanceHistory) []models.MonthlyReturn

	// DailyReturnSeries is the percent change of consecutive snapshots'
	// TotalPLPercentage, the literal series the original reports were
	// built on (a percentage of a percentage).
	DailyReturnSeries(history *models.PerformanceHistory) models.ReturnSeries

	// ValueReturnSeries is the corrected, value-based alternative: percent
	// change of consecutive snapshots' TotalCurrentValue.
	ValueReturnSeries(history *models.PerformanceHistory) models.ReturnSeries

	// Compute derives the full risk metric set from the history.
	Compute(history *models.PerformanceHistory) (*models.RiskMetrics, error)
}

// ReportService assembles reports and renders their presentation artifacts.
type ReportService interface {
	// Assemble combines the cycle's outputs into one immutable report.
	Assemble(snapshot *models.PortfolioSnapshot, priced []models.PricedPosition, alerts []models.Alert, monthly []models.MonthlyReturn, risk *models.RiskMetrics, synthetic bool, thresholdPct float64) *models.DailyReport

	// FormatHTML renders the report as the email HTML document.
	FormatHTML(report *models.DailyReport) string

	// RenderCharts renders chart artifacts for the report and history and
	// stores them via the file store. Failure is non-fatal.
	RenderCharts(report *models.DailyReport, history *models.PerformanceHistory) ([]models.ChartArtifact, error)
}
