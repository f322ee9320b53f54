package valuation

import (
	"math"

	"github.com/bobmcallan/folio/internal/models"
)

// Alerts flags positions whose |P&L %| strictly exceeds the threshold.
// Input order is preserved. A position sitting exactly at the threshold does
// not alert, and positions without a quote never alert; their P&L reflects
// missing data, not a real loss.
func (s *Service) Alerts(priced []models.PricedPosition, thresholdPct float64) []models.Alert {
	var alerts []models.Alert

	for _, pp := range priced {
		if pp.PriceUnavailable {
			continue
		}
		if math.Abs(pp.PLPercentage) <= thresholdPct {
			continue
		}

		direction := models.AlertProfit
		if pp.PLPercentage < -thresholdPct {
			direction = models.AlertLoss
		}

		alerts = append(alerts, models.Alert{
			Symbol:       pp.Symbol,
			Direction:    direction,
			PLPercentage: pp.PLPercentage,
			ThresholdPct: thresholdPct,
		})
	}

	if len(alerts) > 0 {
		s.logger.Info().Int("alerts", len(alerts)).Msg("Positions outside alert threshold")
	}

	return alerts
}
