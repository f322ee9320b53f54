package report

import (
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

func newTestService() *Service {
	return NewService(nil, common.NewLogger("error"))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func samplePriced() []models.PricedPosition {
	return []models.PricedPosition{
		{
			Position:        models.Position{Symbol: "AAA", Name: "Alpha"},
			Quote:           models.Quote{Price: 120, Available: true},
			TotalInvestment: 1000, CurrentValue: 1200, UnrealizedPL: 200, PLPercentage: 20,
			WeightPct: 40,
		},
		{
			Position:        models.Position{Symbol: "BBB", Name: "Beta"},
			Quote:           models.Quote{Price: 180, Available: true},
			TotalInvestment: 2000, CurrentValue: 1800, UnrealizedPL: -200, PLPercentage: -10,
			WeightPct: 60,
		},
		{
			Position:         models.Position{Symbol: "CCC", Name: "Gamma"},
			TotalInvestment:  500,
			PriceUnavailable: true,
		},
	}
}

func sampleSnapshot() *models.PortfolioSnapshot {
	return &models.PortfolioSnapshot{
		Date:              date(2025, 6, 2),
		TotalInvestment:   3500,
		TotalCurrentValue: 3000,
		TotalPL:           -500,
		TotalPLPercentage: -14.29,
	}
}

func TestAssemble_RanksByPLDescending(t *testing.T) {
	svc := newTestService()

	rep := svc.Assemble(sampleSnapshot(), samplePriced(), nil, nil, nil, false, 5.0)

	want := []string{"AAA", "CCC", "BBB"} // 20, 0 (unpriced), -10
	for i, sym := range want {
		if rep.Positions[i].Symbol != sym {
			t.Errorf("rank %d: got %q, want %q", i, rep.Positions[i].Symbol, sym)
		}
	}

	top, ok := rep.TopPerformer()
	if !ok || top.Symbol != "AAA" {
		t.Errorf("top performer: got %q", top.Symbol)
	}
	bottom, ok := rep.BottomPerformer()
	if !ok || bottom.Symbol != "BBB" {
		t.Errorf("bottom performer: got %q", bottom.Symbol)
	}
}

func TestAssemble_CountsAndFlags(t *testing.T) {
	svc := newTestService()

	alerts := []models.Alert{{Symbol: "AAA", Direction: models.AlertProfit, PLPercentage: 20, ThresholdPct: 5}}
	rep := svc.Assemble(sampleSnapshot(), samplePriced(), alerts, nil, nil, true, 5.0)

	if rep.ID == "" {
		t.Error("report should carry a generated ID")
	}
	if rep.PricesMissing != 1 {
		t.Errorf("prices missing: got %d, want 1", rep.PricesMissing)
	}
	if !rep.Synthetic {
		t.Error("synthetic flag should propagate")
	}
	if rep.ThresholdPct != 5.0 {
		t.Errorf("threshold: got %v, want 5", rep.ThresholdPct)
	}
	if len(rep.Alerts) != 1 {
		t.Errorf("alerts: got %d, want 1", len(rep.Alerts))
	}
}

func TestAssemble_DoesNotMutateInput(t *testing.T) {
	svc := newTestService()

	priced := samplePriced()
	svc.Assemble(sampleSnapshot(), priced, nil, nil, nil, false, 5.0)

	if priced[0].Symbol != "AAA" || priced[1].Symbol != "BBB" || priced[2].Symbol != "CCC" {
		t.Error("input slice order was mutated by ranking")
	}
}

func TestFormatHTML_Sections(t *testing.T) {
	svc := newTestService()

	alerts := []models.Alert{
		{Symbol: "AAA", Direction: models.AlertProfit, PLPercentage: 20, ThresholdPct: 5},
		{Symbol: "BBB", Direction: models.AlertLoss, PLPercentage: -10, ThresholdPct: 5},
	}
	monthly := []models.MonthlyReturn{
		{Year: 2025, Month: time.May, Snapshot: models.PortfolioSnapshot{TotalPLPercentage: 2}},
		{Year: 2025, Month: time.June, Snapshot: models.PortfolioSnapshot{TotalPLPercentage: 5}, MonthlyReturnPct: 150},
	}
	risk := &models.RiskMetrics{
		TotalReturnPct:          5,
		AnnualizedReturnPct:     12.6,
		AnnualizedVolatilityPct: 18.2,
		SharpeRatio:             0.69,
		SharpeDefined:           true,
		MaxDrawdownPct:          -7.5,
		ObservationDays:         120,
	}

	rep := svc.Assemble(sampleSnapshot(), samplePriced(), alerts, monthly, risk, true, 5.0)
	rep.GeneratedAt = date(2025, 6, 2)
	html := svc.FormatHTML(rep)

	for _, want := range []string{
		"Portfolio Summary",
		"Position Performance",
		"Risk Metrics",
		"Monthly Performance",
		"PROFIT ALERT",
		"LOSS ALERT",
		"price unavailable",
		"synthetic backfill",
		"3,500.00",  // investment with thousands separator
		"-14.29%",   // total P&L percentage
		"May 2025",
		"+150.00%",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestFormatHTML_UndefinedSharpe(t *testing.T) {
	svc := newTestService()

	risk := &models.RiskMetrics{SharpeDefined: false}
	rep := svc.Assemble(sampleSnapshot(), nil, nil, nil, risk, false, 5.0)
	html := svc.FormatHTML(rep)

	if !strings.Contains(html, "undefined (flat series)") {
		t.Error("undefined Sharpe should render as text, not NaN")
	}
	if strings.Contains(html, "NaN") {
		t.Error("NaN leaked into the HTML output")
	}
}

func TestFormatHTML_EscapesNames(t *testing.T) {
	svc := newTestService()

	priced := []models.PricedPosition{{
		Position:     models.Position{Symbol: "<script>"},
		Quote:        models.Quote{Price: 1, Available: true},
		PLPercentage: 1,
	}}
	rep := svc.Assemble(sampleSnapshot(), priced, nil, nil, nil, false, 5.0)
	html := svc.FormatHTML(rep)

	if strings.Contains(html, "<script>") {
		t.Error("symbol was not HTML-escaped")
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{999.5, "999.50"},
		{1000, "1,000.00"},
		{1234567.891, "1,234,567.89"},
		{-50000, "-50,000.00"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.in); got != tt.want {
			t.Errorf("formatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
