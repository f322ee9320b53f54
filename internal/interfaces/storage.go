package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// StorageManager coordinates the two storage areas: the holdings workbook
// (spreadsheet tables) and the file store (JSON report archive + charts).
type StorageManager interface {
	Workbook() WorkbookStore
	Files() FileStore

	// DataPath returns the base data directory path.
	DataPath() string

	Close() error
}

// WorkbookStore is the spreadsheet-as-database abstraction. The core never
// sees the file format: one logical table per concept, keyed by sheet name.
type WorkbookStore interface {
	// LoadPositions reads the holdings table. An unreadable or empty table
	// is a fatal error for the reporting cycle.
	LoadPositions(ctx context.Context) ([]models.Position, error)

	// LoadHistory reads the persisted performance history table. A missing
	// table returns an empty history, not an error.
	LoadHistory(ctx context.Context) (*models.PerformanceHistory, error)

	// SaveReportTables persists the computed tables: priced positions,
	// performance history, monthly returns, and risk metrics key/values.
	SaveReportTables(ctx context.Context, report *models.DailyReport, history *models.PerformanceHistory) error
}

// FileStore persists derived artifacts: the JSON report archive and raw
// chart PNGs. All writes are atomic.
type FileStore interface {
	SaveReport(ctx context.Context, report *models.DailyReport) error
	GetReport(ctx context.Context, id string) (*models.DailyReport, error)
	ListReports(ctx context.Context) ([]string, error)

	// WriteRaw writes arbitrary binary data (e.g. a chart PNG) to a
	// subdirectory atomically and returns the path written.
	WriteRaw(subdir, key string, data []byte) (string, error)
}
