package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/report"
)

// CycleOptions tunes a single reporting cycle run.
type CycleOptions struct {
	// AsOf overrides the valuation date; zero means now.
	AsOf time.Time

	// MockPrices bypasses the live feed when non-nil. Used by the test verb
	// and by tests to run a cycle without network access.
	MockPrices map[string]float64

	SkipEmail  bool
	SkipCharts bool
}

// CycleResult summarizes a completed cycle. Degraded lists the non-fatal
// failures that were skipped over, in the order they occurred.
type CycleResult struct {
	Report   *models.DailyReport
	History  *models.PerformanceHistory
	Charts   []models.ChartArtifact
	Degraded []string
}

// RunCycle executes one full reporting cycle: load holdings, fetch prices,
// value the portfolio, extend history, compute metrics, assemble the report,
// persist, render charts, and send the email.
//
// Only an unreadable or empty holdings table is fatal. Every later stage
// degrades: its failure is logged, recorded in the result, and the cycle
// continues with what it has.
func (a *App) RunCycle(ctx context.Context, opts CycleOptions) (*CycleResult, error) {
	cycleID := uuid.NewString()
	logger := a.Logger.WithCorrelationId(cycleID)
	start := time.Now()

	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	result := &CycleResult{}
	degrade := func(stage string, err error) {
		logger.Warn().Err(err).Str("stage", stage).Msg("Cycle stage failed (continuing)")
		result.Degraded = append(result.Degraded, stage)
	}

	logger.Info().Str("as_of", asOf.Format("2006-01-02")).Msg("Reporting cycle started")

	// Holdings are the one thing the cycle cannot proceed without.
	positions, err := a.Storage.Workbook().LoadPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	prices := a.fetchPrices(ctx, positions, opts, degrade)

	priced, snapshot, err := a.ValuationService.Value(positions, prices, asOf)
	if err != nil {
		return nil, fmt.Errorf("portfolio valuation failed: %w", err)
	}
	alerts := a.ValuationService.Alerts(priced, a.Config.Report.AlertThresholdPct)

	history := a.buildHistory(ctx, positions, *snapshot, asOf, degrade)
	result.History = history

	monthly := a.MetricsService.MonthlyReturns(history)
	risk, err := a.MetricsService.Compute(history)
	if err != nil {
		degrade("metrics", err)
		risk = nil
	}

	rep := a.ReportService.Assemble(snapshot, priced, alerts, monthly, risk, history.Synthetic, a.Config.Report.AlertThresholdPct)
	rep.GeneratedAt = asOf
	result.Report = rep

	if err := a.Storage.Workbook().SaveReportTables(ctx, rep, history); err != nil {
		degrade("workbook", err)
	}
	if err := a.Storage.Files().SaveReport(ctx, rep); err != nil {
		degrade("archive", err)
	}

	if a.Config.Report.Charts && !opts.SkipCharts {
		charts, err := a.ReportService.RenderCharts(rep, history)
		if err != nil {
			degrade("charts", err)
		}
		result.Charts = charts
	}

	if !opts.SkipEmail {
		if err := a.sendReportEmail(ctx, rep, history); err != nil {
			degrade("email", err)
		}
	}

	logger.Info().
		Int("positions", len(priced)).
		Int("alerts", len(alerts)).
		Int("degraded", len(result.Degraded)).
		Dur("elapsed", time.Since(start)).
		Msg("Reporting cycle complete")

	return result, nil
}

// AnalyzeResult summarizes an offline analysis run. Degraded lists the
// non-fatal export failures that were skipped over.
type AnalyzeResult struct {
	Risk     *models.RiskMetrics
	Monthly  []models.MonthlyReturn
	History  *models.PerformanceHistory
	Charts   []models.ChartArtifact
	Degraded []string
}

// RunAnalyze runs the offline analysis path: no network fetch, no email.
// It loads the persisted history (synthesizing a flagged backfill when none
// exists), computes metrics, exports the history, monthly, and risk tables
// to the output workbook, and renders the history chart. Positions are
// valued without quotes, so the exported portfolio table records every row
// price-unavailable. Export and chart failures degrade as in RunCycle.
func (a *App) RunAnalyze(ctx context.Context, asOf time.Time) (*AnalyzeResult, error) {
	logger := a.Logger.WithCorrelationId(uuid.NewString())

	if asOf.IsZero() {
		asOf = time.Now()
	}

	result := &AnalyzeResult{}
	degrade := func(stage string, err error) {
		logger.Warn().Err(err).Str("stage", stage).Msg("Analysis stage failed (continuing)")
		result.Degraded = append(result.Degraded, stage)
	}

	positions, err := a.Storage.Workbook().LoadPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	history, err := a.Storage.Workbook().LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if history.Len() == 0 {
		history, err = a.HistoryService.Synthesize(positions, asOf)
		if err != nil {
			return nil, fmt.Errorf("failed to synthesize history: %w", err)
		}
	}
	result.History = history

	result.Monthly = a.MetricsService.MonthlyReturns(history)
	risk, err := a.MetricsService.Compute(history)
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}
	result.Risk = risk

	priced, snapshot, err := a.ValuationService.Value(positions, map[string]float64{}, asOf)
	if err != nil {
		return nil, fmt.Errorf("portfolio valuation failed: %w", err)
	}
	rep := a.ReportService.Assemble(snapshot, priced, nil, result.Monthly, risk, history.Synthetic, a.Config.Report.AlertThresholdPct)
	rep.GeneratedAt = asOf

	if err := a.Storage.Workbook().SaveReportTables(ctx, rep, history); err != nil {
		degrade("workbook", err)
	}

	if a.Config.Report.Charts {
		name := "value_" + asOf.Format("20060102") + ".png"
		if png, err := report.RenderHistoryChart(history); err != nil {
			degrade("charts", err)
		} else if path, err := a.Storage.Files().WriteRaw("charts", name, png); err != nil {
			degrade("charts", err)
		} else {
			result.Charts = append(result.Charts, models.ChartArtifact{Name: name, Path: path})
		}
	}

	logger.Info().
		Int("observations", risk.ObservationDays).
		Int("degraded", len(result.Degraded)).
		Msg("Analysis complete")

	return result, nil
}

// fetchPrices returns the quote map for the cycle. Mock prices short-circuit
// the feed; an unconfigured or failing feed degrades to an empty map, which
// marks every position price-unavailable downstream.
func (a *App) fetchPrices(ctx context.Context, positions []models.Position, opts CycleOptions, degrade func(string, error)) map[string]float64 {
	if opts.MockPrices != nil {
		return opts.MockPrices
	}
	if a.PriceFeed == nil {
		degrade("feed", fmt.Errorf("price feed not configured"))
		return map[string]float64{}
	}

	symbols := make([]string, len(positions))
	for i, p := range positions {
		symbols[i] = p.Symbol
	}

	prices, err := a.PriceFeed.GetQuotes(ctx, symbols)
	if err != nil {
		degrade("feed", err)
		if prices == nil {
			prices = map[string]float64{}
		}
	}
	return prices
}

// buildHistory loads the persisted history, synthesizing a flagged backfill
// when none exists, and upserts the cycle's snapshot.
func (a *App) buildHistory(ctx context.Context, positions []models.Position, snapshot models.PortfolioSnapshot, asOf time.Time, degrade func(string, error)) *models.PerformanceHistory {
	history, err := a.Storage.Workbook().LoadHistory(ctx)
	if err != nil {
		degrade("history", err)
		history = &models.PerformanceHistory{}
	}

	if history.Len() == 0 {
		synthesized, err := a.HistoryService.Synthesize(positions, asOf)
		if err != nil {
			degrade("synthesis", err)
		} else {
			history = synthesized
		}
	}

	return a.HistoryService.Append(history, snapshot)
}

// sendReportEmail formats and delivers the report with the history chart
// embedded when it can be rendered.
func (a *App) sendReportEmail(ctx context.Context, rep *models.DailyReport, history *models.PerformanceHistory) error {
	html := a.ReportService.FormatHTML(rep)
	subject := fmt.Sprintf("Daily Portfolio Report - %s", rep.GeneratedAt.Format("2006-01-02"))

	var chartPNG []byte
	if png, err := report.RenderHistoryChart(history); err == nil {
		chartPNG = png
	}

	return a.Mailer.SendReport(ctx, subject, html, chartPNG)
}
