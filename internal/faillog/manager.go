package faillog

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/altomedia/gallery-bridge/internal/types"
)

// Manager handles failed-save logging based on configuration
type Manager struct {
	logger Logger
	slog   *slog.Logger
	cfg    *types.Config
}

// NewManager creates a new failed-save logging manager
func NewManager(cfg *types.Config, logger *slog.Logger) (*Manager, error) {
	if !cfg.FailLog.Enabled {
		return &Manager{
			logger: &noopLogger{},
			slog:   logger,
			cfg:    cfg,
		}, nil
	}

	var failLogger Logger
	var err error

	switch cfg.FailLog.StorageType {
	case "file", "":
		failLogger, err = NewFileLogger(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported fail log storage type: %s", cfg.FailLog.StorageType)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create fail logger: %w", err)
	}

	return &Manager{
		logger: failLogger,
		slog:   logger,
		cfg:    cfg,
	}, nil
}

// LogFailedSave records a failed save attempt
func (m *Manager) LogFailedSave(source, fileName, writerType, checksum, errorType string, saveErr error) error {
	if !m.cfg.FailLog.Enabled {
		return nil
	}

	entry := SaveError{
		ID:        uuid.NewString(),
		ConfigID:  m.cfg.Meta.ID,
		Source:    source,
		FileName:  fileName,
		Writer:    writerType,
		Checksum:  checksum,
		FailedAt:  time.Now().UTC(),
		ErrorType: errorType,
		ErrorMsg:  saveErr.Error(),
	}

	if err := m.logger.LogError(entry); err != nil {
		m.slog.Error("failed to log save error",
			slog.String("config_id", m.cfg.Meta.ID),
			slog.String("file_name", fileName),
			slog.Any("error", err))
		return fmt.Errorf("failed to log save error: %w", err)
	}

	return nil
}

// GetErrors retrieves logged errors for this configuration
func (m *Manager) GetErrors(filters map[string]string) ([]SaveError, error) {
	if !m.cfg.FailLog.Enabled {
		return nil, nil
	}

	if filters == nil {
		filters = make(map[string]string)
	}
	filters["config_id"] = m.cfg.Meta.ID

	return m.logger.GetErrors(filters)
}

// CleanupOldErrors removes errors older than the retention period
func (m *Manager) CleanupOldErrors() error {
	if !m.cfg.FailLog.Enabled {
		return nil
	}
	return m.logger.CleanupOldErrors()
}

// Close releases logger resources
func (m *Manager) Close() error {
	return m.logger.Close()
}

// noopLogger is used when fail logging is disabled
type noopLogger struct{}

func (n *noopLogger) LogError(err SaveError) error { return nil }

func (n *noopLogger) GetErrors(filters map[string]string) ([]SaveError, error) { return nil, nil }

func (n *noopLogger) CleanupOldErrors() error { return nil }

func (n *noopLogger) Close() error { return nil }
