package storage

import (
	"fmt"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
)

// Manager implements interfaces.StorageManager using 2 storage areas:
// the holdings workbook and the file store for derived artifacts.
type Manager struct {
	workbook *WorkbookStore
	files    *FileStore
	logger   *common.Logger
}

// NewManager creates a new StorageManager over the configured paths.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	files, err := NewFileStore(logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create file store: %w", err)
	}

	workbook := NewWorkbookStore(logger, &config.Storage)

	logger.Info().
		Str("workbook", config.Storage.WorkbookPath).
		Str("data", config.Storage.DataPath).
		Msg("Storage manager initialized (2 areas)")

	return &Manager{
		workbook: workbook,
		files:    files,
		logger:   logger,
	}, nil
}

func (m *Manager) Workbook() interfaces.WorkbookStore {
	return m.workbook
}

func (m *Manager) Files() interfaces.FileStore {
	return m.files
}

func (m *Manager) DataPath() string {
	return m.files.basePath
}

// Close releases storage resources. Both areas are plain files, so there
// is nothing to flush; the method exists to satisfy the manager contract.
func (m *Manager) Close() error {
	return nil
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
