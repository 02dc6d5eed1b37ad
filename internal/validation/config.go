package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/altomedia/gallery-bridge/internal/gallery/writer"
	"github.com/altomedia/gallery-bridge/internal/types"
)

// ValidateConfig performs validation on a single configuration
func ValidateConfig(cfg *types.Config) error {
	if err := validateMeta(cfg); err != nil {
		return fmt.Errorf("meta validation failed: %w", err)
	}

	if err := validateGallery(cfg); err != nil {
		return fmt.Errorf("gallery validation failed: %w", err)
	}

	if err := validateStaging(cfg); err != nil {
		return fmt.Errorf("staging validation failed: %w", err)
	}

	if err := validateImport(cfg); err != nil {
		return fmt.Errorf("import validation failed: %w", err)
	}

	if err := validateJournal(cfg); err != nil {
		return fmt.Errorf("journal validation failed: %w", err)
	}

	if err := validateFailLog(cfg); err != nil {
		return fmt.Errorf("faillog validation failed: %w", err)
	}

	if err := validateLogging(cfg); err != nil {
		return fmt.Errorf("logging validation failed: %w", err)
	}

	if err := validateScheduling(cfg); err != nil {
		return fmt.Errorf("scheduling validation failed: %w", err)
	}

	return nil
}

func validateMeta(cfg *types.Config) error {
	if cfg.Meta.ID == "" {
		return fmt.Errorf("meta.id is required")
	}

	if !isValidID(cfg.Meta.ID) {
		return fmt.Errorf("meta.id contains invalid characters (use only alphanumeric, dash, underscore)")
	}

	if cfg.Meta.Name == "" {
		return fmt.Errorf("meta.name is required")
	}

	return nil
}

func validateGallery(cfg *types.Config) error {
	if cfg.Gallery.Quality < 0 || cfg.Gallery.Quality > 100 {
		return fmt.Errorf("gallery.quality must be between 0 and 100")
	}

	switch cfg.Gallery.Writer.Type {
	case "", writer.TypeFilesystem:
		// Filesystem needs nothing, an empty root falls back to the home directory
	case writer.TypeGDrive:
		if cfg.Gallery.Writer.GDrive.CredentialsFile == "" && cfg.Gallery.Writer.GDrive.TokenDir == "" {
			return fmt.Errorf("gallery.writer.gdrive requires credentials_file or token_dir")
		}
	case writer.TypeS3:
		if cfg.Gallery.Writer.S3.Bucket == "" {
			return fmt.Errorf("gallery.writer.s3.bucket is required")
		}
		if cfg.Gallery.Writer.S3.AccessKeyID == "" || cfg.Gallery.Writer.S3.SecretAccessKey == "" {
			return fmt.Errorf("gallery.writer.s3 requires access_key_id and secret_access_key")
		}
	default:
		return fmt.Errorf("gallery.writer.type must be one of: filesystem, gdrive, s3")
	}

	return nil
}

func validateStaging(cfg *types.Config) error {
	if cfg.Staging.MaxAge < 0 {
		return fmt.Errorf("staging.max_age must not be negative")
	}
	return nil
}

func validateImport(cfg *types.Config) error {
	for _, dir := range cfg.Import.WatchDirs {
		if dir == "" {
			return fmt.Errorf("import.watch_dirs must not contain empty entries")
		}
		if !filepath.IsAbs(dir) {
			return fmt.Errorf("import.watch_dirs: %q must be absolute", dir)
		}
	}

	for _, entry := range cfg.Import.AllowedTypes {
		if !strings.HasPrefix(entry, ".") && !strings.Contains(entry, "/") {
			return fmt.Errorf("import.allowed_types: %q must be a dot extension or a media type", entry)
		}
	}

	if cfg.Import.MaxSize < 0 {
		return fmt.Errorf("import.max_size must not be negative")
	}

	return nil
}

func validateJournal(cfg *types.Config) error {
	if !cfg.Journal.Enabled {
		return nil // Skip validation if the journal is disabled
	}

	switch cfg.Journal.StorageType {
	case "file", "sqlite":
		// Valid storage types
	default:
		return fmt.Errorf("journal.storage_type must be 'file' or 'sqlite'")
	}

	if cfg.Journal.StoragePath == "" {
		return fmt.Errorf("journal.storage_path is required when the journal is enabled")
	}
	if !filepath.IsAbs(cfg.Journal.StoragePath) {
		return fmt.Errorf("journal.storage_path must be absolute")
	}

	if cfg.Journal.RetentionDays <= 0 {
		return fmt.Errorf("journal.retention_days must be positive")
	}

	return nil
}

func validateFailLog(cfg *types.Config) error {
	if !cfg.FailLog.Enabled {
		return nil
	}

	switch cfg.FailLog.StorageType {
	case "file", "":
		// Valid storage types
	default:
		return fmt.Errorf("faillog.storage_type must be 'file'")
	}

	if cfg.FailLog.StoragePath == "" {
		return fmt.Errorf("faillog.storage_path is required when the fail log is enabled")
	}
	if !filepath.IsAbs(cfg.FailLog.StoragePath) {
		return fmt.Errorf("faillog.storage_path must be absolute")
	}

	if cfg.FailLog.RetentionDays <= 0 {
		return fmt.Errorf("faillog.retention_days must be positive")
	}

	return nil
}

func validateLogging(cfg *types.Config) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"dev":  true,
	}

	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: text, json, dev")
	}

	validOutputs := map[string]bool{
		"stdout": true,
		"file":   true,
	}

	if !validOutputs[cfg.Logging.Output] {
		return fmt.Errorf("logging.output must be one of: stdout, file")
	}

	if cfg.Logging.Output == "file" && cfg.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path is required when output is 'file'")
	}

	return nil
}

func validateScheduling(cfg *types.Config) error {
	if !cfg.Scheduling.Enabled {
		return nil // Skip validation if scheduling is disabled
	}

	// Validate frequency_every
	validFrequencies := map[string]bool{
		"minute": true,
		"hour":   true,
		"day":    true,
		"week":   true,
		"month":  true,
	}

	if !validFrequencies[cfg.Scheduling.FrequencyEvery] {
		return fmt.Errorf("scheduling.frequency_every must be one of: minute, hour, day, week, month")
	}

	// Validate frequency_amount
	if cfg.Scheduling.FrequencyAmount < 1 {
		return fmt.Errorf("scheduling.frequency_amount must be greater than 0")
	}

	// Validate start and stop times if provided
	if !cfg.Scheduling.StartNow {
		if cfg.Scheduling.StartAt == "" {
			return fmt.Errorf("scheduling.start_at is required when start_now is false")
		}
		if _, err := time.Parse(time.RFC3339, cfg.Scheduling.StartAt); err != nil {
			return fmt.Errorf("scheduling.start_at must be in RFC3339 format (e.g., 2006-01-02T15:04:05Z)")
		}
	}

	if cfg.Scheduling.StopAt != "" {
		stopAt, err := time.Parse(time.RFC3339, cfg.Scheduling.StopAt)
		if err != nil {
			return fmt.Errorf("scheduling.stop_at must be in RFC3339 format (e.g., 2006-01-02T15:04:05Z)")
		}

		// If start_at is provided, validate stop_at is after start_at
		if cfg.Scheduling.StartAt != "" {
			startAt, _ := time.Parse(time.RFC3339, cfg.Scheduling.StartAt)
			if stopAt.Before(startAt) {
				return fmt.Errorf("scheduling.stop_at must be after start_at")
			}
		}

		// If start_now is true, validate stop_at is in the future
		if cfg.Scheduling.StartNow {
			if stopAt.Before(time.Now().UTC()) {
				return fmt.Errorf("scheduling.stop_at must be in the future when start_now is true")
			}
		}
	}

	// Additional frequency-specific validations
	switch cfg.Scheduling.FrequencyEvery {
	case "minute":
		if cfg.Scheduling.FrequencyAmount > 60 {
			return fmt.Errorf("scheduling.frequency_amount must not exceed 60 for minute frequency")
		}
	case "hour":
		if cfg.Scheduling.FrequencyAmount > 24 {
			return fmt.Errorf("scheduling.frequency_amount must not exceed 24 for hour frequency")
		}
	case "day":
		if cfg.Scheduling.FrequencyAmount > 31 {
			return fmt.Errorf("scheduling.frequency_amount must not exceed 31 for day frequency")
		}
	case "week":
		if cfg.Scheduling.FrequencyAmount > 52 {
			return fmt.Errorf("scheduling.frequency_amount must not exceed 52 for week frequency")
		}
	case "month":
		if cfg.Scheduling.FrequencyAmount > 12 {
			return fmt.Errorf("scheduling.frequency_amount must not exceed 12 for month frequency")
		}
	}

	return nil
}

func isValidID(id string) bool {
	for _, r := range id {
		if !isValidIDChar(r) {
			return false
		}
	}
	return true
}

func isValidIDChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '-' ||
		r == '_'
}
