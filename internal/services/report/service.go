// Package report assembles the daily portfolio report and renders its
// presentation artifacts: the email HTML document and chart images.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Service implements ReportService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new report service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{storage: storage, logger: logger}
}

// Assemble combines the cycle's outputs into one immutable report. The only
// computation here is structural: positions are ranked by P&L percentage
// descending for top/bottom performer views, and degradation flags are
// propagated so downstream consumers can assert on them.
func (s *Service) Assemble(snapshot *models.PortfolioSnapshot, priced []models.PricedPosition, alerts []models.Alert, monthly []models.MonthlyReturn, risk *models.RiskMetrics, synthetic bool, thresholdPct float64) *models.DailyReport {
	ranked := make([]models.PricedPosition, len(priced))
	copy(ranked, priced)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PLPercentage > ranked[j].PLPercentage
	})

	missing := 0
	for _, pp := range ranked {
		if pp.PriceUnavailable {
			missing++
		}
	}

	report := &models.DailyReport{
		ID:            uuid.NewString(),
		GeneratedAt:   time.Now(),
		Positions:     ranked,
		Alerts:        alerts,
		Monthly:       monthly,
		Risk:          risk,
		Synthetic:     synthetic,
		PricesMissing: missing,
		ThresholdPct:  thresholdPct,
	}
	if snapshot != nil {
		report.Snapshot = *snapshot
	}

	s.logger.Info().
		Str("report_id", report.ID).
		Int("positions", len(ranked)).
		Int("alerts", len(alerts)).
		Int("prices_missing", missing).
		Msg("Report assembled")

	return report
}

// RenderCharts renders the report's chart artifacts and writes them through
// the file store. Individual chart failures are logged and skipped; chart
// rendering is never fatal to the reporting cycle.
func (s *Service) RenderCharts(report *models.DailyReport, history *models.PerformanceHistory) ([]models.ChartArtifact, error) {
	stamp := report.GeneratedAt.Format("20060102")
	var artifacts []models.ChartArtifact

	renderers := []struct {
		name   string
		render func() ([]byte, error)
	}{
		{"allocation_" + stamp + ".png", func() ([]byte, error) { return RenderAllocationChart(report.Positions) }},
		{"pl_" + stamp + ".png", func() ([]byte, error) { return RenderPLChart(report.Positions, report.ThresholdPct) }},
		{"value_" + stamp + ".png", func() ([]byte, error) { return RenderHistoryChart(history) }},
	}

	for _, r := range renderers {
		png, err := r.render()
		if err != nil {
			s.logger.Warn().Err(err).Str("chart", r.name).Msg("Chart render failed (continuing)")
			continue
		}
		path, err := s.storage.Files().WriteRaw("charts", r.name, png)
		if err != nil {
			s.logger.Warn().Err(err).Str("chart", r.name).Msg("Chart write failed (continuing)")
			continue
		}
		artifacts = append(artifacts, models.ChartArtifact{Name: r.name, Path: path})
	}

	s.logger.Info().Int("charts", len(artifacts)).Msg("Charts rendered")
	return artifacts, nil
}

// Ensure Service implements ReportService
var _ interfaces.ReportService = (*Service)(nil)
