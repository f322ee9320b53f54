package report

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

const (
	cellStyle   = `padding: 8px; border: 1px solid #ddd;`
	headerStyle = `padding: 8px; border: 1px solid #ddd; background-color: #007bff; color: white;`
)

// FormatHTML renders the report as a self-contained HTML email document:
// portfolio summary, per-position performance, alerts, risk metrics, and
// monthly returns, with explicit disclaimers for degraded data.
func (s *Service) FormatHTML(report *models.DailyReport) string {
	var b strings.Builder

	b.WriteString("<html><head><style>body { font-family: Arial, sans-serif; margin: 20px; } h2, h3 { color: #333; } table { border-collapse: collapse; width: 100%; margin: 16px 0; }</style></head><body>\n")

	fmt.Fprintf(&b, "<h2>Daily Portfolio Report - %s</h2>\n<hr>\n", report.GeneratedAt.Format("January 2, 2006"))

	writeSummarySection(&b, report)
	writePositionsSection(&b, report)
	writeAlertsSection(&b, report)
	writeRiskSection(&b, report)
	writeMonthlySection(&b, report)

	fmt.Fprintf(&b, "<hr>\n<p style=\"color: #666; font-size: 12px;\">Generated %s · report %s</p>\n",
		report.GeneratedAt.Format("2006-01-02 15:04:05"), html.EscapeString(report.ID))
	b.WriteString("</body></html>\n")

	return b.String()
}

func writeSummarySection(b *strings.Builder, report *models.DailyReport) {
	snap := report.Snapshot
	plColor := "green"
	if snap.TotalPL < 0 {
		plColor = "red"
	}

	b.WriteString("<h3>Portfolio Summary</h3>\n<table>\n")
	fmt.Fprintf(b, "<tr><td style=\"%s\"><strong>Total Investment</strong></td><td style=\"%s\">%s</td></tr>\n",
		cellStyle, cellStyle, formatMoney(snap.TotalInvestment))
	fmt.Fprintf(b, "<tr><td style=\"%s\"><strong>Current Value</strong></td><td style=\"%s\">%s</td></tr>\n",
		cellStyle, cellStyle, formatMoney(snap.TotalCurrentValue))
	fmt.Fprintf(b, "<tr><td style=\"%s\"><strong>Total P&amp;L</strong></td><td style=\"%s color: %s;\">%s (%+.2f%%)</td></tr>\n",
		cellStyle, cellStyle, plColor, formatMoney(snap.TotalPL), snap.TotalPLPercentage)
	b.WriteString("</table>\n")

	if report.PricesMissing > 0 {
		fmt.Fprintf(b, "<p style=\"color: #b45309;\"><strong>Note:</strong> %d position(s) had no price available; they contribute zero to current value.</p>\n",
			report.PricesMissing)
	}
	if report.Synthetic {
		b.WriteString("<p style=\"color: #b45309;\"><strong>Note:</strong> performance history is a synthetic backfill, not real market data; history-derived metrics are indicative only.</p>\n")
	}
}

func writePositionsSection(b *strings.Builder, report *models.DailyReport) {
	if len(report.Positions) == 0 {
		return
	}

	b.WriteString("<h3>Position Performance</h3>\n<table>\n")
	fmt.Fprintf(b, "<tr><th style=\"%s\">Symbol</th><th style=\"%s\">Current Price</th><th style=\"%s\">Weight</th><th style=\"%s\">P&amp;L</th><th style=\"%s\">P&amp;L %%</th></tr>\n",
		headerStyle, headerStyle, headerStyle, headerStyle, headerStyle)

	for _, pp := range report.Positions {
		if pp.PriceUnavailable {
			fmt.Fprintf(b, "<tr><td style=\"%s\"><strong>%s</strong></td><td style=\"%s\" colspan=\"4\"><em>price unavailable</em></td></tr>\n",
				cellStyle, html.EscapeString(pp.Symbol), cellStyle)
			continue
		}
		color := "green"
		if pp.PLPercentage < 0 {
			color = "red"
		}
		fmt.Fprintf(b, "<tr><td style=\"%s\"><strong>%s</strong></td><td style=\"%s\">%.2f</td><td style=\"%s\">%.1f%%</td><td style=\"%s color: %s;\">%s</td><td style=\"%s color: %s;\">%+.2f%%</td></tr>\n",
			cellStyle, html.EscapeString(pp.Symbol),
			cellStyle, pp.Quote.Price,
			cellStyle, pp.WeightPct,
			cellStyle, color, formatMoney(pp.UnrealizedPL),
			cellStyle, color, pp.PLPercentage)
	}
	b.WriteString("</table>\n")
}

func writeAlertsSection(b *strings.Builder, report *models.DailyReport) {
	if len(report.Alerts) == 0 {
		return
	}

	fmt.Fprintf(b, "<h3>Alerts (%d positions outside ±%.1f%% threshold)</h3>\n<table>\n",
		len(report.Alerts), report.ThresholdPct)
	fmt.Fprintf(b, "<tr><th style=\"%s\">Symbol</th><th style=\"%s\">Direction</th><th style=\"%s\">P&amp;L %%</th></tr>\n",
		headerStyle, headerStyle, headerStyle)

	for _, a := range report.Alerts {
		label, color := "PROFIT ALERT", "green"
		if a.Direction == models.AlertLoss {
			label, color = "LOSS ALERT", "red"
		}
		fmt.Fprintf(b, "<tr><td style=\"%s\"><strong>%s</strong></td><td style=\"%s\">%s</td><td style=\"%s color: %s;\">%+.2f%%</td></tr>\n",
			cellStyle, html.EscapeString(a.Symbol), cellStyle, label, cellStyle, color, a.PLPercentage)
	}
	b.WriteString("</table>\n")
}

func writeRiskSection(b *strings.Builder, report *models.DailyReport) {
	risk := report.Risk
	if risk == nil {
		return
	}

	sharpe := "undefined (flat series)"
	if risk.SharpeDefined && !math.IsNaN(risk.SharpeRatio) {
		sharpe = fmt.Sprintf("%.2f", risk.SharpeRatio)
	}

	rows := [][2]string{
		{"Total Return", fmt.Sprintf("%+.2f%%", risk.TotalReturnPct)},
		{"Annualized Return", fmt.Sprintf("%+.2f%%", risk.AnnualizedReturnPct)},
		{"Annualized Volatility", fmt.Sprintf("%.2f%%", risk.AnnualizedVolatilityPct)},
		{"Sharpe Ratio", sharpe},
		{"Max Drawdown", fmt.Sprintf("%.2f%%", risk.MaxDrawdownPct)},
		{"Best Day", fmt.Sprintf("%+.2f%%", risk.BestDayPct)},
		{"Worst Day", fmt.Sprintf("%+.2f%%", risk.WorstDayPct)},
		{"Positive Days", fmt.Sprintf("%.1f%%", risk.PositiveDayPct)},
	}

	b.WriteString("<h3>Risk Metrics</h3>\n<table>\n")
	for _, row := range rows {
		fmt.Fprintf(b, "<tr><td style=\"%s\"><strong>%s</strong></td><td style=\"%s\">%s</td></tr>\n",
			cellStyle, row[0], cellStyle, row[1])
	}
	b.WriteString("</table>\n")
}

func writeMonthlySection(b *strings.Builder, report *models.DailyReport) {
	if len(report.Monthly) == 0 {
		return
	}

	b.WriteString("<h3>Monthly Performance</h3>\n<table>\n")
	fmt.Fprintf(b, "<tr><th style=\"%s\">Month</th><th style=\"%s\">Cumulative P&amp;L %%</th><th style=\"%s\">Monthly Return</th></tr>\n",
		headerStyle, headerStyle, headerStyle)

	for _, m := range report.Monthly {
		fmt.Fprintf(b, "<tr><td style=\"%s\">%s</td><td style=\"%s\">%+.2f%%</td><td style=\"%s\">%+.2f%%</td></tr>\n",
			cellStyle, m.Label(), cellStyle, m.Snapshot.TotalPLPercentage, cellStyle, m.MonthlyReturnPct)
	}
	b.WriteString("</table>\n")
}

// formatMoney renders an amount with thousands separators, e.g. "1,234,567.89".
func formatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)

	intPart := s[:len(s)-3]
	frac := s[len(s)-3:]
	var out strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	if neg {
		return "-" + out.String() + frac
	}
	return out.String() + frac
}
