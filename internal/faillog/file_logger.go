package faillog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/altomedia/gallery-bridge/internal/types"
)

// FileLogger writes failed saves to per-day JSON files
type FileLogger struct {
	basePath      string
	configID      string
	retentionDays int
	logger        *slog.Logger
	mu            sync.Mutex
}

// NewFileLogger creates a file-based fail logger
func NewFileLogger(cfg *types.Config, logger *slog.Logger) (*FileLogger, error) {
	basePath := cfg.FailLog.StoragePath
	if basePath == "" {
		basePath = "./faillog"
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create fail log directory: %w", err)
	}

	return &FileLogger{
		basePath:      basePath,
		configID:      cfg.Meta.ID,
		retentionDays: cfg.FailLog.RetentionDays,
		logger:        logger,
	}, nil
}

// currentFilePath returns the log file for today
func (f *FileLogger) currentFilePath() string {
	date := time.Now().UTC().Format("2006-01-02")
	return filepath.Join(f.basePath, fmt.Sprintf("errors_%s_%s.json", f.configID, date))
}

// LogError appends a failed save to today's log file
func (f *FileLogger) LogError(entry SaveError) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.currentFilePath()

	entries, err := f.readFile(path)
	if err != nil {
		return err
	}

	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal errors: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write error file: %w", err)
	}

	f.logger.Debug("logged failed save",
		slog.String("file", path),
		slog.String("file_name", entry.FileName),
		slog.String("error_type", entry.ErrorType))

	return nil
}

// GetErrors retrieves errors matching the given filters across all log files
func (f *FileLogger) GetErrors(filters map[string]string) ([]SaveError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pattern := filepath.Join(f.basePath, fmt.Sprintf("errors_%s_*.json", f.configID))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list error files: %w", err)
	}

	var result []SaveError
	for _, file := range files {
		entries, err := f.readFile(file)
		if err != nil {
			f.logger.Warn("skipping unreadable error file",
				slog.String("file", file),
				slog.Any("error", err))
			continue
		}

		for _, entry := range entries {
			if matchesFilters(entry, filters) {
				result = append(result, entry)
			}
		}
	}

	return result, nil
}

// CleanupOldErrors removes log files older than the retention period
func (f *FileLogger) CleanupOldErrors() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.retentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -f.retentionDays)

	pattern := filepath.Join(f.basePath, fmt.Sprintf("errors_%s_*.json", f.configID))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to list error files: %w", err)
	}

	removed := 0
	for _, file := range files {
		fileDate, ok := f.fileDate(file)
		if !ok {
			continue
		}

		if fileDate.Before(cutoff) {
			if err := os.Remove(file); err != nil {
				f.logger.Warn("failed to remove old error file",
					slog.String("file", file),
					slog.Any("error", err))
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		f.logger.Info("removed old error files",
			slog.String("config_id", f.configID),
			slog.Int("count", removed))
	}

	return nil
}

// Close is a no-op for file-based logging
func (f *FileLogger) Close() error {
	return nil
}

// fileDate extracts the date from an error file name, falling back to
// the file modification time when the name does not parse
func (f *FileLogger) fileDate(path string) (time.Time, bool) {
	name := strings.TrimSuffix(filepath.Base(path), ".json")
	prefix := fmt.Sprintf("errors_%s_", f.configID)
	if strings.HasPrefix(name, prefix) {
		if t, err := time.Parse("2006-01-02", strings.TrimPrefix(name, prefix)); err == nil {
			return t, true
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func (f *FileLogger) readFile(path string) ([]SaveError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveError{}, nil
		}
		return nil, fmt.Errorf("failed to read error file: %w", err)
	}

	var entries []SaveError
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse error file: %w", err)
	}

	return entries, nil
}

func matchesFilters(entry SaveError, filters map[string]string) bool {
	for key, value := range filters {
		switch key {
		case "config_id":
			if entry.ConfigID != value {
				return false
			}
		case "file_name":
			if entry.FileName != value {
				return false
			}
		case "writer":
			if entry.Writer != value {
				return false
			}
		case "error_type":
			if entry.ErrorType != value {
				return false
			}
		case "checksum":
			if entry.Checksum != value {
				return false
			}
		}
	}
	return true
}
