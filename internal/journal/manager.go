package journal

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/altomedia/gallery-bridge/internal/types"
)

// Manager gates journal access behind the profile's journal settings.
// With the journal disabled every operation silently succeeds.
type Manager struct {
	cfg     *types.Config
	logger  *slog.Logger
	storage Storage
	mu      sync.Mutex
}

// NewManager creates a new journal manager
func NewManager(cfg *types.Config, logger *slog.Logger) (*Manager, error) {
	if !cfg.Journal.Enabled {
		logger.Debug("save journal is disabled")
		return &Manager{
			cfg:    cfg,
			logger: logger,
		}, nil
	}

	storage, err := NewStorage(cfg.Journal.StorageType, cfg.Journal.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal storage: %w", err)
	}

	if err := storage.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize journal storage: %w", err)
	}

	logger.Debug("initialized save journal",
		"storage_type", cfg.Journal.StorageType,
		"storage_path", cfg.Journal.StoragePath,
	)

	return &Manager{
		cfg:     cfg,
		logger:  logger,
		storage: storage,
	}, nil
}

// Close cleans up resources
func (m *Manager) Close() error {
	if m.storage != nil {
		return m.storage.Close()
	}
	return nil
}

// RecordSave journals one saved file
func (m *Manager) RecordSave(source, checksum, fileName, destination, status string) error {
	if !m.cfg.Journal.Enabled || m.storage == nil {
		return nil // Journal is disabled, silently succeed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record := Record{
		ID:          uuid.NewString(),
		ConfigID:    m.cfg.Meta.ID,
		Source:      source,
		Checksum:    checksum,
		FileName:    fileName,
		Destination: destination,
		SavedAt:     time.Now().UTC(),
		Status:      status,
	}

	if err := m.storage.AddRecord(record); err != nil {
		m.logger.Error("failed to journal save",
			"file_name", fileName,
			"error", err,
		)
		return err
	}

	m.logger.Debug("journaled save",
		"file_name", fileName,
		"checksum", checksum,
		"destination", destination,
	)

	return nil
}

// IsSaved checks if content with this checksum was already saved
func (m *Manager) IsSaved(checksum string) (bool, error) {
	if !m.cfg.Journal.Enabled || m.storage == nil || checksum == "" {
		return false, nil
	}

	saved, err := m.storage.HasRecord(m.cfg.Meta.ID, checksum)
	if err != nil {
		m.logger.Error("failed to check journal",
			"checksum", checksum,
			"error", err,
		)
		return false, err
	}

	if saved {
		m.logger.Debug("content already saved",
			"checksum", checksum,
		)
	}

	return saved, nil
}

// Records retrieves journal entries for this profile
func (m *Manager) Records() ([]Record, error) {
	if !m.cfg.Journal.Enabled || m.storage == nil {
		return nil, nil
	}
	return m.storage.GetRecords(map[string]string{"config_id": m.cfg.Meta.ID})
}

// CleanupOldRecords removes records older than the retention period
func (m *Manager) CleanupOldRecords() error {
	if !m.cfg.Journal.Enabled || m.storage == nil {
		return nil // Journal is disabled, silently succeed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.storage.CleanupOldRecords(m.cfg.Journal.RetentionDays); err != nil {
		m.logger.Error("failed to clean up old journal records", "error", err)
		return err
	}

	m.logger.Info("cleaned up old journal records",
		"retention_days", m.cfg.Journal.RetentionDays,
	)

	return nil
}
