// Package history produces and extends the daily portfolio performance
// history, either by upserting real snapshots or by backfilling a
// deterministic synthetic series when no history has been persisted yet.
package history

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// trendPerDay is the gradual growth factor applied per elapsed day in
// synthesize mode, on top of the random daily return.
const trendPerDay = 0.0001

// Service implements HistoryService
type Service struct {
	synthesis common.SynthesisConfig
	logger    *common.Logger
}

// NewService creates a new history service. The synthesis config carries the
// seed and walk parameters used for backfilling.
func NewService(synthesis common.SynthesisConfig, logger *common.Logger) *Service {
	if synthesis.DailyDrift == 0 && synthesis.DailyVolatility == 0 {
		synthesis.DailyDrift = 0.0008
		synthesis.DailyVolatility = 0.015
	}
	return &Service{synthesis: synthesis, logger: logger}
}

// Append upserts a snapshot into the history keyed by calendar date: a
// snapshot for an already-present date replaces the prior one, otherwise it
// is appended. The history stays strictly sorted by date with no duplicates.
func (s *Service) Append(history *models.PerformanceHistory, snapshot models.PortfolioSnapshot) *models.PerformanceHistory {
	if history == nil {
		history = &models.PerformanceHistory{}
	}

	replaced := false
	for i, existing := range history.Snapshots {
		if existing.SameDay(snapshot) {
			history.Snapshots[i] = snapshot
			replaced = true
			break
		}
	}
	mode := "append"
	if replaced {
		mode = "replace"
	} else {
		history.Snapshots = append(history.Snapshots, snapshot)
	}
	history.Sort()

	s.logger.Debug().
		Str("date", snapshot.Date.Format("2006-01-02")).
		Str("mode", mode).
		Int("entries", history.Len()).
		Msg("History snapshot upserted")

	return history
}

// Synthesize backfills a business-day (Monday to Friday) history from the
// earliest purchase date through asOf. The series is a seeded random walk:
// daily returns drawn from N(drift, volatility) around the initial aggregate
// investment, plus a gradual deterministic trend. Two calls with the same
// seed, start date, and investment produce identical snapshots.
//
// The result is flagged Synthetic: it is a placeholder, not real market
// history, and every consumer must disclaim it.
func (s *Service) Synthesize(positions []models.Position, asOf time.Time) (*models.PerformanceHistory, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("cannot synthesize history without positions")
	}

	start := earliestPurchaseDate(positions)
	if start.IsZero() {
		return nil, fmt.Errorf("no purchase dates present in positions")
	}
	if asOf.Before(start) {
		return nil, fmt.Errorf("as-of date %s precedes earliest purchase %s",
			asOf.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	var initialInvestment float64
	for _, p := range positions {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		initialInvestment += p.TotalInvestment()
	}

	rng := rand.New(rand.NewSource(s.synthesis.Seed))

	history := &models.PerformanceHistory{Synthetic: true}
	for d := start; !d.After(asOf); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		dailyReturn := rng.NormFloat64()*s.synthesis.DailyVolatility + s.synthesis.DailyDrift
		daysSinceStart := int(d.Sub(start).Hours() / 24)
		trendFactor := 1 + float64(daysSinceStart)*trendPerDay

		value := initialInvestment * trendFactor * (1 + dailyReturn)
		pl := value - initialInvestment

		history.Snapshots = append(history.Snapshots, models.PortfolioSnapshot{
			Date:              d,
			TotalInvestment:   initialInvestment,
			TotalCurrentValue: value,
			TotalPL:           pl,
			TotalPLPercentage: pl / initialInvestment * 100,
		})
	}

	s.logger.Info().
		Str("from", start.Format("2006-01-02")).
		Str("to", asOf.Format("2006-01-02")).
		Int("days", history.Len()).
		Msg("Synthetic history generated, not real market data")

	return history, nil
}

// earliestPurchaseDate scans positions for the oldest purchase date.
func earliestPurchaseDate(positions []models.Position) time.Time {
	var earliest time.Time
	for _, p := range positions {
		if p.PurchaseDate.IsZero() {
			continue
		}
		if earliest.IsZero() || p.PurchaseDate.Before(earliest) {
			earliest = p.PurchaseDate
		}
	}
	return earliest
}

// Ensure Service implements HistoryService
var _ interfaces.HistoryService = (*Service)(nil)
