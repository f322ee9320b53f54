// Package valuation turns raw positions plus current prices into priced
// positions and an aggregate portfolio snapshot.
package valuation

import (
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Service implements ValuationService
type Service struct {
	logger *common.Logger
}

// NewService creates a new valuation service
func NewService(logger *common.Logger) *Service {
	return &Service{logger: logger}
}

// Value computes per-position valuation figures and the aggregate snapshot
// as of the given date. Positions failing validation abort the whole
// valuation: percentage math must stay defined for every position.
//
// A symbol absent from the prices map is priced-unavailable: its current
// value contributes 0 to the aggregate and the position carries a visible
// PriceUnavailable flag so consumers can distinguish "no data" from a total
// loss.
func (s *Service) Value(positions []models.Position, prices map[string]float64, asOf time.Time) ([]models.PricedPosition, *models.PortfolioSnapshot, error) {
	priced := make([]models.PricedPosition, 0, len(positions))

	var totalInvestment, totalCurrentValue float64

	for _, p := range positions {
		if err := p.Validate(); err != nil {
			return nil, nil, err
		}

		pp := models.PricedPosition{
			Position:        p,
			TotalInvestment: p.TotalInvestment(),
		}

		if price, ok := prices[p.Symbol]; ok {
			pp.Quote = models.Quote{Price: price, Available: true}
			pp.CurrentValue = price * float64(p.Quantity)
			pp.UnrealizedPL = pp.CurrentValue - pp.TotalInvestment
			pp.PLPercentage = pp.UnrealizedPL / pp.TotalInvestment * 100
		} else {
			// No quote is no data, not a total loss: P&L stays zero and the
			// flag carries the distinction downstream.
			pp.PriceUnavailable = true
		}

		totalInvestment += pp.TotalInvestment
		totalCurrentValue += pp.CurrentValue
		priced = append(priced, pp)
	}

	applyWeights(priced)
	applyContributions(priced)

	snapshot := &models.PortfolioSnapshot{
		Date:              asOf,
		TotalInvestment:   totalInvestment,
		TotalCurrentValue: totalCurrentValue,
		TotalPL:           totalCurrentValue - totalInvestment,
	}
	if totalInvestment > 0 {
		snapshot.TotalPLPercentage = snapshot.TotalPL / totalInvestment * 100
	}

	s.logger.Info().
		Int("positions", len(priced)).
		Int("unpriced", countUnpriced(priced)).
		Msg("Portfolio valued")

	return priced, snapshot, nil
}

// applyWeights sets each position's share of total current value. Weights
// are computed over priced positions only and sum to 100 within floating
// point epsilon; unpriced positions carry weight 0.
func applyWeights(priced []models.PricedPosition) {
	var totalValue float64
	for _, pp := range priced {
		totalValue += pp.CurrentValue
	}
	if totalValue == 0 {
		return
	}
	for i := range priced {
		priced[i].WeightPct = priced[i].CurrentValue / totalValue * 100
	}
}

// applyContributions sets each position's share of total unrealized P&L.
// When the portfolio P&L sums to exactly zero the ratio is undefined for
// every position: emit 0 with the ContributionUndefined flag, never NaN.
func applyContributions(priced []models.PricedPosition) {
	var totalPL float64
	for _, pp := range priced {
		totalPL += pp.UnrealizedPL
	}
	if totalPL == 0 {
		for i := range priced {
			priced[i].ContributionUndefined = true
		}
		return
	}
	for i := range priced {
		priced[i].ContributionPct = priced[i].UnrealizedPL / totalPL * 100
	}
}

func countUnpriced(priced []models.PricedPosition) int {
	n := 0
	for _, pp := range priced {
		if pp.PriceUnavailable {
			n++
		}
	}
	return n
}

// Ensure Service implements ValuationService
var _ interfaces.ValuationService = (*Service)(nil)
