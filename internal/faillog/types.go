package faillog

import (
	"time"
)

// SaveError represents a failed gallery save
type SaveError struct {
	ID        string    `json:"id"`
	ConfigID  string    `json:"config_id"`
	Source    string    `json:"source"`
	FileName  string    `json:"file_name"`
	Writer    string    `json:"writer"`
	Checksum  string    `json:"checksum,omitempty"`
	FailedAt  time.Time `json:"failed_at"`
	ErrorType string    `json:"error_type"`
	ErrorMsg  string    `json:"error_message"`
}

// Error types recorded by the importer and the CLI
const (
	ErrorTypeRead    = "read"
	ErrorTypeSave    = "save"
	ErrorTypeStage   = "stage"
	ErrorTypeJournal = "journal"
)

// Logger defines the interface for failed-save logging
type Logger interface {
	// LogError records a failed save
	LogError(err SaveError) error

	// GetErrors retrieves errors based on filters
	GetErrors(filters map[string]string) ([]SaveError, error)

	// CleanupOldErrors removes errors older than the retention period
	CleanupOldErrors() error

	// Close releases any resources used by the logger
	Close() error
}
