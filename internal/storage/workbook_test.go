package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

func newTestWorkbookStore(t *testing.T) (*WorkbookStore, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &common.StorageConfig{
		WorkbookPath: filepath.Join(dir, "holdings.xlsx"),
		OutputPath:   filepath.Join(dir, "updated.xlsx"),
	}
	return NewWorkbookStore(common.NewLogger("error"), cfg), dir
}

func writeHoldingsWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetHoldings)

	headers := []interface{}{"Stock_Symbol", "Company_Name", "Purchase_Date", "Purchase_Price", "Quantity"}
	if err := writeRow(f, sheetHoldings, 1, headers); err != nil {
		t.Fatalf("writing headers: %v", err)
	}
	for i, row := range rows {
		if err := writeRow(f, sheetHoldings, i+2, row); err != nil {
			t.Fatalf("writing row %d: %v", i, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving workbook: %v", err)
	}
}

func TestLoadPositions(t *testing.T) {
	ws, _ := newTestWorkbookStore(t)
	writeHoldingsWorkbook(t, ws.sourcePath, [][]interface{}{
		{"RELIANCE", "Reliance Industries", "2024-01-15", 2450.00, 10},
		{"TCS", "Tata Consultancy Services", "2024-02-01", 3890.50, 5},
	})

	positions, err := ws.LoadPositions(context.Background())
	if err != nil {
		t.Fatalf("LoadPositions failed: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(positions))
	}

	p := positions[0]
	if p.Symbol != "RELIANCE" || p.Name != "Reliance Industries" {
		t.Errorf("got %q/%q", p.Symbol, p.Name)
	}
	if p.PurchasePrice != 2450.00 || p.Quantity != 10 {
		t.Errorf("got price %v qty %d", p.PurchasePrice, p.Quantity)
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !p.PurchaseDate.Equal(want) {
		t.Errorf("date: got %v, want %v", p.PurchaseDate, want)
	}
}

func TestLoadPositions_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing workbook", func(t *testing.T) {
		ws, _ := newTestWorkbookStore(t)
		if _, err := ws.LoadPositions(ctx); err == nil {
			t.Fatal("expected error for missing workbook")
		}
	})

	t.Run("empty holdings", func(t *testing.T) {
		ws, _ := newTestWorkbookStore(t)
		writeHoldingsWorkbook(t, ws.sourcePath, nil)
		_, err := ws.LoadPositions(ctx)
		if err == nil {
			t.Fatal("expected error for empty holdings table")
		}
		if !errors.Is(err, ErrNoPositions) {
			t.Errorf("expected ErrNoPositions, got %v", err)
		}
	})

	t.Run("bad price", func(t *testing.T) {
		ws, _ := newTestWorkbookStore(t)
		writeHoldingsWorkbook(t, ws.sourcePath, [][]interface{}{
			{"BAD", "Bad Co", "2024-01-15", "not-a-number", 10},
		})
		if _, err := ws.LoadPositions(ctx); err == nil {
			t.Fatal("expected error for unparseable price")
		}
	})

	t.Run("fractional quantity", func(t *testing.T) {
		ws, _ := newTestWorkbookStore(t)
		writeHoldingsWorkbook(t, ws.sourcePath, [][]interface{}{
			{"FRAC", "Fractional Co", "2024-01-15", 100.0, 10.7},
		})
		_, err := ws.LoadPositions(ctx)
		if err == nil {
			t.Fatal("expected error for non-integral quantity")
		}
		if !strings.Contains(err.Error(), "whole number") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("duplicate symbol", func(t *testing.T) {
		ws, _ := newTestWorkbookStore(t)
		writeHoldingsWorkbook(t, ws.sourcePath, [][]interface{}{
			{"AAA", "Alpha", "2024-01-15", 100.0, 10},
			{"BBB", "Beta", "2024-02-01", 200.0, 5},
			{"AAA", "Alpha Again", "2024-03-01", 110.0, 3},
		})
		_, err := ws.LoadPositions(ctx)
		if err == nil {
			t.Fatal("expected error for duplicate symbol")
		}
		if !strings.Contains(err.Error(), "duplicate symbol") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("blank trailing rows skipped", func(t *testing.T) {
		ws, _ := newTestWorkbookStore(t)
		writeHoldingsWorkbook(t, ws.sourcePath, [][]interface{}{
			{"AAA", "Alpha", "2024-01-15", 100.0, 10},
			{"", "", "", "", ""},
		})
		positions, err := ws.LoadPositions(ctx)
		if err != nil {
			t.Fatalf("LoadPositions failed: %v", err)
		}
		if len(positions) != 1 {
			t.Errorf("got %d positions, want 1", len(positions))
		}
	})
}

func TestLoadHistory_MissingIsEmptyNotError(t *testing.T) {
	ws, _ := newTestWorkbookStore(t)

	history, err := ws.LoadHistory(context.Background())
	if err != nil {
		t.Fatalf("LoadHistory should not fail on missing workbook: %v", err)
	}
	if history.Len() != 0 {
		t.Errorf("got %d entries, want empty history", history.Len())
	}
}

func TestSaveReportTables_RoundTrip(t *testing.T) {
	ws, _ := newTestWorkbookStore(t)
	ctx := context.Background()

	history := &models.PerformanceHistory{Snapshots: []models.PortfolioSnapshot{
		{Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), TotalInvestment: 3500, TotalCurrentValue: 3000, TotalPL: -500, TotalPLPercentage: -14.29},
		{Date: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), TotalInvestment: 3500, TotalCurrentValue: 3100, TotalPL: -400, TotalPLPercentage: -11.43},
	}}

	report := &models.DailyReport{
		ID:          "r1",
		GeneratedAt: time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC),
		Positions: []models.PricedPosition{
			{
				Position:        models.Position{Symbol: "AAA", Name: "Alpha", PurchasePrice: 100, Quantity: 10},
				Quote:           models.Quote{Price: 120, Available: true},
				TotalInvestment: 1000, CurrentValue: 1200, UnrealizedPL: 200, PLPercentage: 20, WeightPct: 100,
			},
		},
		Monthly: []models.MonthlyReturn{
			{Year: 2025, Month: time.June, Snapshot: history.Snapshots[1], MonthlyReturnPct: 0},
		},
		Risk: &models.RiskMetrics{TotalReturnPct: -11.43, SharpeDefined: true, SharpeRatio: 0.5, ObservationDays: 1},
	}

	if err := ws.SaveReportTables(ctx, report, history); err != nil {
		t.Fatalf("SaveReportTables failed: %v", err)
	}

	// The persisted history reads back through the output workbook.
	got, err := ws.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("got %d history entries, want 2", got.Len())
	}
	if got.Snapshots[1].TotalCurrentValue != 3100 {
		t.Errorf("value: got %v, want 3100", got.Snapshots[1].TotalCurrentValue)
	}
	if !got.Snapshots[0].Date.Equal(history.Snapshots[0].Date) {
		t.Errorf("date: got %v, want %v", got.Snapshots[0].Date, history.Snapshots[0].Date)
	}

	// All four sheets exist in the output workbook.
	f, err := excelize.OpenFile(ws.outputPath)
	if err != nil {
		t.Fatalf("opening output workbook: %v", err)
	}
	defer f.Close()
	for _, sheet := range []string{sheetPortfolio, sheetHistory, sheetMonthly, sheetRisk} {
		if _, err := f.GetRows(sheet); err != nil {
			t.Errorf("sheet %s missing: %v", sheet, err)
		}
	}
}

func TestCreateSampleWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.xlsx")
	if err := CreateSampleWorkbook(path); err != nil {
		t.Fatalf("CreateSampleWorkbook failed: %v", err)
	}

	// Refuses to clobber an existing file.
	if err := CreateSampleWorkbook(path); err == nil {
		t.Fatal("expected error when workbook exists")
	}

	ws := NewWorkbookStore(common.NewLogger("error"), &common.StorageConfig{
		WorkbookPath: path,
		OutputPath:   filepath.Join(t.TempDir(), "out.xlsx"),
	})
	positions, err := ws.LoadPositions(context.Background())
	if err != nil {
		t.Fatalf("sample workbook does not load: %v", err)
	}
	if len(positions) == 0 {
		t.Error("sample workbook has no holdings")
	}
	for _, p := range positions {
		if err := p.Validate(); err != nil {
			t.Errorf("sample position invalid: %v", err)
		}
	}
}
