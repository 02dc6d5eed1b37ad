package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStorage implements the Storage interface using a JSON file
type FileStorage struct {
	basePath    string
	recordsPath string
	mu          sync.RWMutex
	initialized bool
}

// NewFileStorage creates a new file-based storage
func NewFileStorage(basePath string) (*FileStorage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	return &FileStorage{
		basePath:    basePath,
		recordsPath: filepath.Join(basePath, "save_records.json"),
	}, nil
}

// Initialize prepares the storage for use
func (fs *FileStorage) Initialize() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.MkdirAll(fs.basePath, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	// Create the records file if it doesn't exist
	if _, err := os.Stat(fs.recordsPath); os.IsNotExist(err) {
		if err := fs.saveRecords([]Record{}); err != nil {
			return fmt.Errorf("failed to create records file: %w", err)
		}
	}

	fs.initialized = true
	return nil
}

// Close cleans up any resources
func (fs *FileStorage) Close() error {
	// No resources to clean up for file storage
	return nil
}

// AddRecord adds a new save record
func (fs *FileStorage) AddRecord(record Record) error {
	if !fs.initialized {
		return ErrStorageNotInitialized
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	records, err := fs.loadRecordsLocked()
	if err != nil {
		return err
	}

	records = append(records, record)

	return fs.saveRecords(records)
}

// HasRecord checks if content was already saved for this profile
func (fs *FileStorage) HasRecord(configID, checksum string) (bool, error) {
	if !fs.initialized {
		return false, ErrStorageNotInitialized
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	records, err := fs.loadRecordsLocked()
	if err != nil {
		return false, err
	}

	for _, record := range records {
		if record.ConfigID == configID && record.Checksum == checksum {
			return true, nil
		}
	}

	return false, nil
}

// GetRecords retrieves all save records, optionally filtered
func (fs *FileStorage) GetRecords(filter map[string]string) ([]Record, error) {
	if !fs.initialized {
		return nil, ErrStorageNotInitialized
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	records, err := fs.loadRecordsLocked()
	if err != nil {
		return nil, err
	}

	if len(filter) == 0 {
		return records, nil
	}

	var filteredRecords []Record
	for _, record := range records {
		match := true
		for key, value := range filter {
			switch key {
			case "config_id":
				if record.ConfigID != value {
					match = false
				}
			case "checksum":
				if record.Checksum != value {
					match = false
				}
			case "destination":
				if record.Destination != value {
					match = false
				}
			case "status":
				if record.Status != value {
					match = false
				}
			}
			if !match {
				break
			}
		}
		if match {
			filteredRecords = append(filteredRecords, record)
		}
	}

	return filteredRecords, nil
}

// CleanupOldRecords removes records older than the specified retention period
func (fs *FileStorage) CleanupOldRecords(retentionDays int) error {
	if !fs.initialized {
		return ErrStorageNotInitialized
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	records, err := fs.loadRecordsLocked()
	if err != nil {
		return err
	}

	cutoffTime := time.Now().AddDate(0, 0, -retentionDays)
	var newRecords []Record

	for _, record := range records {
		if record.SavedAt.After(cutoffTime) {
			newRecords = append(newRecords, record)
		}
	}

	return fs.saveRecords(newRecords)
}

// loadRecordsLocked loads all records from the file (assumes lock is held)
func (fs *FileStorage) loadRecordsLocked() ([]Record, error) {
	data, err := os.ReadFile(fs.recordsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}

	// Handle empty file case
	if len(data) == 0 {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records file: %w", err)
	}

	return records, nil
}

// saveRecords saves all records to the file
func (fs *FileStorage) saveRecords(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize records: %w", err)
	}

	if err := os.WriteFile(fs.recordsPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write records file: %w", err)
	}

	return nil
}
