// Package journal tracks which files have already been saved to the
// gallery, so watched-directory imports never save the same content
// twice.
package journal

import (
	"errors"
	"time"
)

// Record represents one saved media file
type Record struct {
	ID          string    `json:"id"`
	ConfigID    string    `json:"config_id"`
	Source      string    `json:"source"`
	Checksum    string    `json:"checksum"`
	FileName    string    `json:"file_name"`
	Destination string    `json:"destination"`
	SavedAt     time.Time `json:"saved_at"`
	Status      string    `json:"status"`
}

// Storage defines the interface for persisting save records
type Storage interface {
	// Initialize prepares the storage for use
	Initialize() error

	// Close cleans up any resources used by the storage
	Close() error

	// AddRecord adds a new save record to the storage
	AddRecord(record Record) error

	// HasRecord checks if content with the given checksum was already saved
	HasRecord(configID, checksum string) (bool, error)

	// GetRecords retrieves all save records, optionally filtered
	GetRecords(filter map[string]string) ([]Record, error)

	// CleanupOldRecords removes records older than the specified retention period
	CleanupOldRecords(retentionDays int) error
}

// NewStorage creates a new storage implementation based on the specified type
func NewStorage(storageType, storagePath string) (Storage, error) {
	switch storageType {
	case "file":
		return NewFileStorage(storagePath)
	case "sqlite":
		return NewSQLiteStorage(storagePath)
	default:
		return nil, ErrUnsupportedStorageType
	}
}

// Common errors
var (
	ErrUnsupportedStorageType = errors.New("unsupported storage type")
	ErrStorageNotInitialized  = errors.New("storage not initialized")
)
