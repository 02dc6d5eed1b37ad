package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStorage implements the Storage interface on a SQLite database.
type SQLiteStorage struct {
	path string
	db   *sql.DB
}

// NewSQLiteStorage creates a new SQLite-backed storage
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	return &SQLiteStorage{path: path}, nil
}

// Initialize opens the database and creates the schema if needed
func (s *SQLiteStorage) Initialize() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS save_records (
			id TEXT PRIMARY KEY,
			config_id TEXT,
			source TEXT,
			checksum TEXT,
			file_name TEXT,
			destination TEXT,
			saved_at TIMESTAMP,
			status TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_save_records_checksum
			ON save_records (config_id, checksum);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database
func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AddRecord adds a new save record
func (s *SQLiteStorage) AddRecord(record Record) error {
	if s.db == nil {
		return ErrStorageNotInitialized
	}

	_, err := s.db.Exec(`
		INSERT INTO save_records
		(id, config_id, source, checksum, file_name, destination, saved_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.ConfigID,
		record.Source,
		record.Checksum,
		record.FileName,
		record.Destination,
		record.SavedAt,
		record.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// HasRecord checks if content was already saved for this profile
func (s *SQLiteStorage) HasRecord(configID, checksum string) (bool, error) {
	if s.db == nil {
		return false, ErrStorageNotInitialized
	}

	var exists bool
	err := s.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM save_records WHERE config_id = ? AND checksum = ?)",
		configID, checksum,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query record: %w", err)
	}
	return exists, nil
}

// GetRecords retrieves all save records, optionally filtered
func (s *SQLiteStorage) GetRecords(filter map[string]string) ([]Record, error) {
	if s.db == nil {
		return nil, ErrStorageNotInitialized
	}

	query := "SELECT id, config_id, source, checksum, file_name, destination, saved_at, status FROM save_records"
	var conditions []string
	var args []any
	for _, key := range []string{"config_id", "checksum", "destination", "status"} {
		if value, ok := filter[key]; ok {
			conditions = append(conditions, key+" = ?")
			args = append(args, value)
		}
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY saved_at"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.ConfigID, &r.Source, &r.Checksum, &r.FileName, &r.Destination, &r.SavedAt, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return records, nil
}

// CleanupOldRecords removes records older than the specified retention period
func (s *SQLiteStorage) CleanupOldRecords(retentionDays int) error {
	if s.db == nil {
		return ErrStorageNotInitialized
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	_, err := s.db.Exec("DELETE FROM save_records WHERE saved_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete old records: %w", err)
	}
	return nil
}
