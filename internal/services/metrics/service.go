// Package metrics derives monthly returns, drawdown, volatility, Sharpe
// ratio, and distributional statistics from a portfolio performance history.
// Every operation is a pure function of the history: recomputation with
// unchanged input yields bit-identical results.
package metrics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// tradingDaysPerYear is the annualization factor for daily return series.
const tradingDaysPerYear = 252

// ErrInsufficientHistory is returned when the history has fewer than two
// snapshots and no period-over-period return can be derived.
var ErrInsufficientHistory = errors.New("performance history needs at least 2 snapshots for return metrics")

// Service implements MetricsService
type Service struct {
	logger *common.Logger
}

// NewService creates a new metrics service
func NewService(logger *common.Logger) *Service {
	return &Service{logger: logger}
}

// MonthlyReturns groups snapshots by calendar month, keeping the last
// snapshot per month, and computes each month's change of TotalPLPercentage
// relative to the prior month. The first month's return is 0 by definition.
// Months with no snapshots simply do not appear; there is no gap filling.
func (s *Service) MonthlyReturns(history *models.PerformanceHistory) []models.MonthlyReturn {
	if history == nil || history.Len() == 0 {
		return nil
	}

	var monthly []models.MonthlyReturn
	for _, snap := range history.Snapshots {
		y, m, _ := snap.Date.Date()
		if n := len(monthly); n > 0 && monthly[n-1].Year == y && monthly[n-1].Month == m {
			monthly[n-1].Snapshot = snap // later snapshot in the same month wins
			continue
		}
		monthly = append(monthly, models.MonthlyReturn{Year: y, Month: m, Snapshot: snap})
	}

	for i := range monthly {
		if i == 0 {
			continue
		}
		prev := monthly[i-1].Snapshot.TotalPLPercentage
		if prev == 0 {
			// Undefined change from a zero base; emit 0 rather than blow up.
			continue
		}
		cur := monthly[i].Snapshot.TotalPLPercentage
		monthly[i].MonthlyReturnPct = (cur - prev) / prev * 100
	}

	return monthly
}

// DailyReturnSeries is the percent change of consecutive snapshots'
// TotalPLPercentage, first element dropped. This is the literal series the
// original reports were built on: a percent change of a cumulative
// percentage, not a true value return (see ValueReturnSeries for the
// corrected variant). Steps whose prior value is exactly zero are undefined;
// they are skipped and counted in DroppedSteps instead of surfacing NaN.
func (s *Service) DailyReturnSeries(history *models.PerformanceHistory) models.ReturnSeries {
	if history == nil {
		return models.ReturnSeries{}
	}
	return pctChangeSeries(history.Snapshots, func(snap models.PortfolioSnapshot) float64 {
		return snap.TotalPLPercentage
	})
}

// ValueReturnSeries is the percent change of consecutive snapshots'
// TotalCurrentValue: a true value-based daily return series, exposed as a
// clearly labeled alternative to the literal series.
func (s *Service) ValueReturnSeries(history *models.PerformanceHistory) models.ReturnSeries {
	if history == nil {
		return models.ReturnSeries{}
	}
	return pctChangeSeries(history.Snapshots, func(snap models.PortfolioSnapshot) float64 {
		return snap.TotalCurrentValue
	})
}

func pctChangeSeries(snapshots []models.PortfolioSnapshot, field func(models.PortfolioSnapshot) float64) models.ReturnSeries {
	var series models.ReturnSeries
	for i := 1; i < len(snapshots); i++ {
		prev := field(snapshots[i-1])
		if prev == 0 {
			series.DroppedSteps++
			continue
		}
		cur := field(snapshots[i])
		series.Values = append(series.Values, (cur-prev)/prev*100)
	}
	return series
}

// Compute derives the full risk metric set from the history.
//
// Annualization follows the 252-trading-day convention; volatility uses the
// population standard deviation of the daily return series. Division guards
// never panic: a flat series (zero volatility) yields a NaN Sharpe ratio
// with SharpeDefined=false.
func (s *Service) Compute(history *models.PerformanceHistory) (*models.RiskMetrics, error) {
	if history == nil || history.Len() < 2 {
		return nil, ErrInsufficientHistory
	}

	series := s.DailyReturnSeries(history)
	returns := series.Values
	n := len(returns)
	if n == 0 {
		return nil, ErrInsufficientHistory
	}

	last, _ := history.Last()

	mean := stat.Mean(returns, nil)
	// Population variance: second central moment (no Bessel correction).
	popStdDev := math.Sqrt(stat.MomentAbout(2, returns, mean, nil))

	m := &models.RiskMetrics{
		TotalReturnPct:          last.TotalPLPercentage,
		AnnualizedReturnPct:     mean * tradingDaysPerYear,
		AnnualizedVolatilityPct: popStdDev * math.Sqrt(tradingDaysPerYear),
		MaxDrawdownPct:          maxDrawdown(returns),
		ObservationDays:         n,
		DroppedSteps:            series.DroppedSteps,
		Synthetic:               history.Synthetic,
	}

	if m.AnnualizedVolatilityPct == 0 {
		m.SharpeRatio = math.NaN()
	} else {
		m.SharpeRatio = m.AnnualizedReturnPct / m.AnnualizedVolatilityPct
		m.SharpeDefined = true
	}

	best, worst, positive := returns[0], returns[0], 0
	for _, r := range returns {
		if r > best {
			best = r
		}
		if r < worst {
			worst = r
		}
		if r > 0 {
			positive++
		}
	}
	m.BestDayPct = best
	m.WorstDayPct = worst
	m.PositiveDayPct = float64(positive) / float64(n) * 100

	if n >= 3 {
		m.Skewness = stat.Skew(returns, nil)
	}
	if n >= 4 {
		m.ExKurtosis = stat.ExKurtosis(returns, nil)
	}

	return m, nil
}

// maxDrawdown computes the worst peak-to-trough decline of the cumulative
// growth series implied by the daily returns (in percent): growth factors
// g_i = Π(1 + r_j/100), drawdown_i = (g_i − max(g_0..g_i)) / max(g_0..g_i).
// The result is ≤ 0; it is 0 only when the growth series never declines
// from its running peak.
func maxDrawdown(returns []float64) float64 {
	growth := 1.0
	runningMax := 1.0
	worst := 0.0

	for _, r := range returns {
		growth *= 1 + r/100
		if growth > runningMax {
			runningMax = growth
		}
		drawdown := (growth - runningMax) / runningMax * 100
		if drawdown < worst {
			worst = drawdown
		}
	}

	return worst
}

// Ensure Service implements MetricsService
var _ interfaces.MetricsService = (*Service)(nil)
