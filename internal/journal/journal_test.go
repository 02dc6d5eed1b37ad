package journal

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/altomedia/gallery-bridge/internal/types"
)

func testRecord(configID, checksum string, savedAt time.Time) Record {
	return Record{
		ID:          checksum + "-id",
		ConfigID:    configID,
		Source:      "/drop/" + checksum + ".jpg",
		Checksum:    checksum,
		FileName:    checksum + ".jpg",
		Destination: "filesystem",
		SavedAt:     savedAt,
		Status:      "saved",
	}
}

func runStorageTests(t *testing.T, storage Storage) {
	t.Helper()

	if err := storage.Initialize(); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}
	defer storage.Close()

	now := time.Now().UTC()
	if err := storage.AddRecord(testRecord("profile-a", "aaa", now)); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}
	if err := storage.AddRecord(testRecord("profile-a", "bbb", now.AddDate(0, 0, -40))); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}
	if err := storage.AddRecord(testRecord("profile-b", "aaa", now)); err != nil {
		t.Fatalf("failed to add record: %v", err)
	}

	has, err := storage.HasRecord("profile-a", "aaa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !has {
		t.Errorf("expected record for profile-a/aaa")
	}

	has, err = storage.HasRecord("profile-a", "ccc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Errorf("did not expect record for profile-a/ccc")
	}

	// Checksums are scoped per profile.
	has, err = storage.HasRecord("profile-c", "aaa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Errorf("checksum must not leak across profiles")
	}

	records, err := storage.GetRecords(map[string]string{"config_id": "profile-a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records for profile-a, got %d", len(records))
	}

	all, err := storage.GetRecords(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 records total, got %d", len(all))
	}

	if err := storage.CleanupOldRecords(30); err != nil {
		t.Fatalf("failed to cleanup: %v", err)
	}

	has, err = storage.HasRecord("profile-a", "bbb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Errorf("expected 40 day old record to be removed")
	}
	has, err = storage.HasRecord("profile-a", "aaa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !has {
		t.Errorf("expected fresh record to survive cleanup")
	}
}

func TestFileStorage(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	runStorageTests(t, storage)
}

func TestSQLiteStorage(t *testing.T) {
	storage, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	runStorageTests(t, storage)
}

func TestFileStorageRequiresInitialize(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	if err := storage.AddRecord(testRecord("p", "x", time.Now())); err != ErrStorageNotInitialized {
		t.Errorf("expected ErrStorageNotInitialized, got %v", err)
	}
}

func TestNewStorageUnsupportedType(t *testing.T) {
	if _, err := NewStorage("redis", "/tmp/x"); err != ErrUnsupportedStorageType {
		t.Errorf("expected ErrUnsupportedStorageType, got %v", err)
	}
}

func TestManagerDisabled(t *testing.T) {
	cfg := &types.Config{}
	cfg.Meta.ID = "test"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m, err := NewManager(cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.Close()

	// Everything silently succeeds with the journal disabled.
	if err := m.RecordSave("/src/a.jpg", "abc", "a.jpg", "filesystem", "saved"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	saved, err := m.IsSaved("abc")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if saved {
		t.Errorf("disabled journal must never report content as saved")
	}
}

func TestManagerRoundTrip(t *testing.T) {
	cfg := &types.Config{}
	cfg.Meta.ID = "test"
	cfg.Journal.Enabled = true
	cfg.Journal.StorageType = "file"
	cfg.Journal.StoragePath = t.TempDir()
	cfg.Journal.RetentionDays = 30
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m, err := NewManager(cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.Close()

	if err := m.RecordSave("/drop/a.jpg", "abc", "a.jpg", "filesystem", "saved"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved, err := m.IsSaved("abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !saved {
		t.Errorf("expected content to be reported as saved")
	}

	records, err := m.Records()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ID == "" {
		t.Errorf("expected generated record ID")
	}
	if records[0].ConfigID != "test" {
		t.Errorf("expected profile id on record, got %q", records[0].ConfigID)
	}

	if err := m.CleanupOldRecords(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
