package faillog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/altomedia/gallery-bridge/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, enabled bool) *types.Config {
	t.Helper()
	cfg := &types.Config{}
	cfg.Meta.ID = "profile-a"
	cfg.FailLog.Enabled = enabled
	cfg.FailLog.StorageType = "file"
	cfg.FailLog.StoragePath = t.TempDir()
	cfg.FailLog.RetentionDays = 30
	return cfg
}

func TestManagerDisabled(t *testing.T) {
	cfg := testConfig(t, false)
	mgr, err := NewManager(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer mgr.Close()

	if err := mgr.LogFailedSave("import", "a.jpg", "filesystem", "", ErrorTypeSave, errors.New("disk full")); err != nil {
		t.Fatalf("LogFailedSave on disabled manager: %v", err)
	}

	got, err := mgr.GetErrors(nil)
	if err != nil {
		t.Fatalf("GetErrors: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no errors from disabled manager, got %d", len(got))
	}
}

func TestManagerRoundTrip(t *testing.T) {
	cfg := testConfig(t, true)
	mgr, err := NewManager(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer mgr.Close()

	if err := mgr.LogFailedSave("import", "a.jpg", "filesystem", "abc123", ErrorTypeSave, errors.New("disk full")); err != nil {
		t.Fatalf("LogFailedSave: %v", err)
	}
	if err := mgr.LogFailedSave("cli", "b.mp4", "s3", "", ErrorTypeRead, errors.New("no such file")); err != nil {
		t.Fatalf("LogFailedSave: %v", err)
	}

	got, err := mgr.GetErrors(nil)
	if err != nil {
		t.Fatalf("GetErrors: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(got))
	}

	saves, err := mgr.GetErrors(map[string]string{"error_type": ErrorTypeSave})
	if err != nil {
		t.Fatalf("GetErrors filtered: %v", err)
	}
	if len(saves) != 1 {
		t.Fatalf("expected 1 save error, got %d", len(saves))
	}
	if saves[0].FileName != "a.jpg" {
		t.Errorf("file name = %q, want a.jpg", saves[0].FileName)
	}
	if saves[0].ErrorMsg != "disk full" {
		t.Errorf("error message = %q, want disk full", saves[0].ErrorMsg)
	}
	if saves[0].ID == "" {
		t.Error("expected entry ID to be set")
	}
	if saves[0].ConfigID != "profile-a" {
		t.Errorf("config id = %q, want profile-a", saves[0].ConfigID)
	}
}

func TestFileLoggerDailyFiles(t *testing.T) {
	cfg := testConfig(t, true)
	fl, err := NewFileLogger(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	defer fl.Close()

	entry := SaveError{
		ID:        "e1",
		ConfigID:  "profile-a",
		FileName:  "a.jpg",
		Writer:    "filesystem",
		FailedAt:  time.Now().UTC(),
		ErrorType: ErrorTypeSave,
		ErrorMsg:  "disk full",
	}
	if err := fl.LogError(entry); err != nil {
		t.Fatalf("LogError: %v", err)
	}

	date := time.Now().UTC().Format("2006-01-02")
	want := filepath.Join(cfg.FailLog.StoragePath, fmt.Sprintf("errors_profile-a_%s.json", date))
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected daily file %s: %v", want, err)
	}
}

func TestCleanupOldErrors(t *testing.T) {
	cfg := testConfig(t, true)
	fl, err := NewFileLogger(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	defer fl.Close()

	oldDate := time.Now().UTC().AddDate(0, 0, -40).Format("2006-01-02")
	oldFile := filepath.Join(cfg.FailLog.StoragePath, fmt.Sprintf("errors_profile-a_%s.json", oldDate))
	if err := os.WriteFile(oldFile, []byte("[]"), 0644); err != nil {
		t.Fatalf("write old file: %v", err)
	}

	if err := fl.LogError(SaveError{ID: "e1", ConfigID: "profile-a", FileName: "a.jpg"}); err != nil {
		t.Fatalf("LogError: %v", err)
	}

	if err := fl.CleanupOldErrors(); err != nil {
		t.Fatalf("CleanupOldErrors: %v", err)
	}

	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Errorf("expected old file to be removed")
	}

	date := time.Now().UTC().Format("2006-01-02")
	fresh := filepath.Join(cfg.FailLog.StoragePath, fmt.Sprintf("errors_profile-a_%s.json", date))
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("expected fresh file to survive cleanup: %v", err)
	}
}

func TestUnsupportedStorageType(t *testing.T) {
	cfg := testConfig(t, true)
	cfg.FailLog.StorageType = "redis"
	if _, err := NewManager(cfg, testLogger()); err == nil {
		t.Fatal("expected error for unsupported storage type")
	}
}
