package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Sheet names used by the workbook tables.
const (
	sheetHoldings  = "Holdings"
	sheetHistory   = "Performance_History"
	sheetPortfolio = "Portfolio"
	sheetMonthly   = "Monthly_Returns"
	sheetRisk      = "Risk_Metrics"
)

// dateLayouts are tried in order when parsing date cells. Spreadsheet
// editors are inconsistent about how they render dates as text.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06",
	"1/2/2006",
	"02/01/2006",
}

// WorkbookStore reads holdings and history from the source workbook and
// writes the computed tables to the output workbook. The source is never
// modified.
// ErrNoPositions indicates the holdings sheet exists but holds no rows.
var ErrNoPositions = errors.New("no positions in holdings sheet")

type WorkbookStore struct {
	sourcePath string
	outputPath string
	logger     *common.Logger
}

// NewWorkbookStore creates a workbook store over the configured paths.
func NewWorkbookStore(logger *common.Logger, config *common.StorageConfig) *WorkbookStore {
	return &WorkbookStore{
		sourcePath: config.WorkbookPath,
		outputPath: config.OutputPath,
		logger:     logger,
	}
}

// LoadPositions reads the holdings table. An unreadable workbook, a missing
// holdings sheet, or an empty table is an error: there is nothing to track.
func (w *WorkbookStore) LoadPositions(ctx context.Context) ([]models.Position, error) {
	f, err := excelize.OpenFile(w.sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", w.sourcePath, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetHoldings)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", sheetHoldings, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s sheet has no data rows: %w", sheetHoldings, ErrNoPositions)
	}

	cols := headerIndex(rows[0])
	required := []string{"Stock_Symbol", "Purchase_Price", "Quantity"}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%s sheet missing required column %s", sheetHoldings, name)
		}
	}

	var positions []models.Position
	seen := make(map[string]int)
	for i, row := range rows[1:] {
		symbol := cell(row, cols, "Stock_Symbol")
		if symbol == "" {
			continue // blank trailing row
		}
		if first, dup := seen[symbol]; dup {
			return nil, fmt.Errorf("row %d (%s): duplicate symbol, first seen at row %d", i+2, symbol, first)
		}
		seen[symbol] = i + 2

		price, err := parseFloat(cell(row, cols, "Purchase_Price"))
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): bad purchase price: %w", i+2, symbol, err)
		}
		qty, err := parseFloat(cell(row, cols, "Quantity"))
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): bad quantity: %w", i+2, symbol, err)
		}
		if qty != math.Trunc(qty) {
			return nil, fmt.Errorf("row %d (%s): quantity must be a whole number, got %v", i+2, symbol, qty)
		}

		p := models.Position{
			Symbol:        symbol,
			Name:          cell(row, cols, "Company_Name"),
			PurchasePrice: price,
			Quantity:      int(qty),
		}
		if raw := cell(row, cols, "Purchase_Date"); raw != "" {
			d, err := parseDate(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): bad purchase date %q: %w", i+2, symbol, raw, err)
			}
			p.PurchaseDate = d
		}

		positions = append(positions, p)
	}

	if len(positions) == 0 {
		return nil, fmt.Errorf("%s sheet contains no holdings: %w", sheetHoldings, ErrNoPositions)
	}

	w.logger.Info().Int("positions", len(positions)).Str("workbook", w.sourcePath).Msg("Holdings loaded")
	return positions, nil
}

// LoadHistory reads the persisted performance history table from the output
// workbook if present, otherwise from the source. A missing workbook or
// missing sheet yields an empty history, not an error.
func (w *WorkbookStore) LoadHistory(ctx context.Context) (*models.PerformanceHistory, error) {
	for _, path := range []string{w.outputPath, w.sourcePath} {
		history, ok, err := w.loadHistoryFrom(path)
		if err != nil {
			return nil, err
		}
		if ok {
			return history, nil
		}
	}
	return &models.PerformanceHistory{}, nil
}

func (w *WorkbookStore) loadHistoryFrom(path string) (*models.PerformanceHistory, bool, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, false, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetHistory)
	if err != nil || len(rows) < 2 {
		// Sheet absent or empty; history simply has not been persisted yet.
		return nil, false, nil
	}

	cols := headerIndex(rows[0])
	history := &models.PerformanceHistory{}
	for i, row := range rows[1:] {
		raw := cell(row, cols, "Date")
		if raw == "" {
			continue
		}
		d, err := parseDate(raw)
		if err != nil {
			return nil, false, fmt.Errorf("%s row %d: bad date %q: %w", sheetHistory, i+2, raw, err)
		}

		snap := models.PortfolioSnapshot{Date: d}
		snap.TotalInvestment, _ = parseFloat(cell(row, cols, "Total_Investment"))
		snap.TotalCurrentValue, _ = parseFloat(cell(row, cols, "Total_Current_Value"))
		snap.TotalPL, _ = parseFloat(cell(row, cols, "Total_PL"))
		snap.TotalPLPercentage, _ = parseFloat(cell(row, cols, "Total_PL_Percentage"))
		history.Snapshots = append(history.Snapshots, snap)

		// The synthetic flag survives persistence so every later cycle keeps
		// disclaiming backfilled data.
		if isTrue(cell(row, cols, "Synthetic")) {
			history.Synthetic = true
		}
	}
	history.Sort()

	w.logger.Debug().Int("entries", history.Len()).Str("workbook", path).Msg("Performance history loaded")
	return history, true, nil
}

// SaveReportTables writes the computed tables to the output workbook:
// priced positions, performance history, monthly returns, and risk metrics.
// The output is rewritten whole each cycle.
func (w *WorkbookStore) SaveReportTables(ctx context.Context, report *models.DailyReport, history *models.PerformanceHistory) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetPortfolio)
	if err := w.writePortfolioSheet(f, report); err != nil {
		return err
	}
	if err := w.writeHistorySheet(f, history); err != nil {
		return err
	}
	if err := w.writeMonthlySheet(f, report.Monthly); err != nil {
		return err
	}
	if err := w.writeRiskSheet(f, report.Risk); err != nil {
		return err
	}

	if err := f.SaveAs(w.outputPath); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.outputPath, err)
	}

	w.logger.Info().Str("workbook", w.outputPath).Msg("Report tables saved")
	return nil
}

func (w *WorkbookStore) writePortfolioSheet(f *excelize.File, report *models.DailyReport) error {
	headers := []interface{}{
		"Stock_Symbol", "Company_Name", "Purchase_Price", "Quantity",
		"Current_Price", "Total_Investment", "Current_Value",
		"Unrealized_PL", "PL_Percentage", "Weight_Percentage", "Price_Available",
	}
	if err := writeRow(f, sheetPortfolio, 1, headers); err != nil {
		return err
	}

	for i, pp := range report.Positions {
		var price interface{}
		if pp.Quote.Available {
			price = pp.Quote.Price
		} else {
			price = ""
		}
		row := []interface{}{
			pp.Symbol, pp.Name, pp.PurchasePrice, pp.Quantity,
			price, pp.TotalInvestment, pp.CurrentValue,
			pp.UnrealizedPL, pp.PLPercentage, pp.WeightPct, pp.Quote.Available,
		}
		if err := writeRow(f, sheetPortfolio, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookStore) writeHistorySheet(f *excelize.File, history *models.PerformanceHistory) error {
	if _, err := f.NewSheet(sheetHistory); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", sheetHistory, err)
	}
	headers := []interface{}{"Date", "Total_Investment", "Total_Current_Value", "Total_PL", "Total_PL_Percentage", "Synthetic"}
	if err := writeRow(f, sheetHistory, 1, headers); err != nil {
		return err
	}
	if history == nil {
		return nil
	}
	for i, snap := range history.Snapshots {
		row := []interface{}{
			snap.Date.Format("2006-01-02"),
			snap.TotalInvestment, snap.TotalCurrentValue,
			snap.TotalPL, snap.TotalPLPercentage,
			history.Synthetic,
		}
		if err := writeRow(f, sheetHistory, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookStore) writeMonthlySheet(f *excelize.File, monthly []models.MonthlyReturn) error {
	if _, err := f.NewSheet(sheetMonthly); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", sheetMonthly, err)
	}
	headers := []interface{}{"Month", "Cumulative_PL_Percentage", "Monthly_Return_Percentage"}
	if err := writeRow(f, sheetMonthly, 1, headers); err != nil {
		return err
	}
	for i, m := range monthly {
		row := []interface{}{m.Label(), m.Snapshot.TotalPLPercentage, m.MonthlyReturnPct}
		if err := writeRow(f, sheetMonthly, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookStore) writeRiskSheet(f *excelize.File, risk *models.RiskMetrics) error {
	if _, err := f.NewSheet(sheetRisk); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", sheetRisk, err)
	}
	if err := writeRow(f, sheetRisk, 1, []interface{}{"Metric", "Value"}); err != nil {
		return err
	}
	if risk == nil {
		return nil
	}

	sharpe := ""
	if risk.SharpeDefined && !math.IsNaN(risk.SharpeRatio) {
		sharpe = strconv.FormatFloat(risk.SharpeRatio, 'f', 4, 64)
	}

	rows := [][]interface{}{
		{"Total_Return_Percentage", risk.TotalReturnPct},
		{"Annualized_Return_Percentage", risk.AnnualizedReturnPct},
		{"Annualized_Volatility_Percentage", risk.AnnualizedVolatilityPct},
		{"Sharpe_Ratio", sharpe},
		{"Max_Drawdown_Percentage", risk.MaxDrawdownPct},
		{"Best_Day_Percentage", risk.BestDayPct},
		{"Worst_Day_Percentage", risk.WorstDayPct},
		{"Positive_Day_Percentage", risk.PositiveDayPct},
		{"Skewness", risk.Skewness},
		{"Excess_Kurtosis", risk.ExKurtosis},
		{"Observation_Days", risk.ObservationDays},
		{"Synthetic_History", risk.Synthetic},
	}
	for i, row := range rows {
		if err := writeRow(f, sheetRisk, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// CreateSampleWorkbook writes a starter holdings workbook at path. It fails
// if the file already exists so a real portfolio is never clobbered.
func CreateSampleWorkbook(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("workbook %s already exists", path)
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetHoldings)

	headers := []interface{}{"Stock_Symbol", "Company_Name", "Purchase_Date", "Purchase_Price", "Quantity"}
	if err := writeRow(f, sheetHoldings, 1, headers); err != nil {
		return err
	}

	samples := [][]interface{}{
		{"RELIANCE", "Reliance Industries", "2024-01-15", 2450.00, 10},
		{"TCS", "Tata Consultancy Services", "2024-02-01", 3890.50, 5},
		{"HDFCBANK", "HDFC Bank", "2024-03-10", 1520.75, 15},
		{"INFY", "Infosys", "2024-04-20", 1455.25, 12},
	}
	for i, row := range samples {
		if err := writeRow(f, sheetHoldings, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// writeRow writes one row of values starting at column A.
func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		cellName, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("bad cell coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cellName, v); err != nil {
			return fmt.Errorf("failed to set cell %s!%s: %w", sheet, cellName, err)
		}
	}
	return nil
}

// headerIndex maps trimmed header names to their column index.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

// cell returns the trimmed value of a named column in a row, or "".
func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty cell")
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// isTrue recognizes the boolean spellings spreadsheet tools produce.
func isTrue(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

// Ensure WorkbookStore implements WorkbookStore interface
var _ interfaces.WorkbookStore = (*WorkbookStore)(nil)
