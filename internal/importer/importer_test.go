package importer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/altomedia/gallery-bridge/internal/faillog"
	"github.com/altomedia/gallery-bridge/internal/gallery"
	"github.com/altomedia/gallery-bridge/internal/gallery/staging"
	"github.com/altomedia/gallery-bridge/internal/gallery/writer"
	"github.com/altomedia/gallery-bridge/internal/journal"
	"github.com/altomedia/gallery-bridge/internal/types"
)

var pngBytes = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, []byte("png-payload")...)

type testEnv struct {
	importer *Importer
	watchDir string
	root     string
	journal  *journal.Manager
	faillog  *faillog.Manager
}

func newTestEnv(t *testing.T, mutate func(cfg *types.Config)) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	watchDir := t.TempDir()

	cfg := &types.Config{}
	cfg.Meta.ID = "import-test"
	cfg.Import.WatchDirs = []string{watchDir}
	cfg.Journal.Enabled = true
	cfg.Journal.StorageType = "file"
	cfg.Journal.StoragePath = t.TempDir()
	cfg.FailLog.Enabled = true
	cfg.FailLog.StorageType = "file"
	cfg.FailLog.StoragePath = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}

	root := t.TempDir()
	fs, err := writer.NewFilesystem(writer.FilesystemConfig{Root: root}, logger)
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}

	saver := gallery.NewSaver(fs, staging.New(t.TempDir(), logger), logger)

	jm, err := journal.NewManager(cfg, logger)
	if err != nil {
		t.Fatalf("journal.NewManager: %v", err)
	}
	t.Cleanup(func() { jm.Close() })

	fm, err := faillog.NewManager(cfg, logger)
	if err != nil {
		t.Fatalf("faillog.NewManager: %v", err)
	}
	t.Cleanup(func() { fm.Close() })

	return &testEnv{
		importer: New(cfg, logger, saver, jm, fm),
		watchDir: watchDir,
		root:     root,
		journal:  jm,
		faillog:  fm,
	}
}

func writeWatched(t *testing.T, env *testEnv, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(env.watchDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write watched file: %v", err)
	}
	return path
}

func TestSweepImportsFiles(t *testing.T) {
	env := newTestEnv(t, nil)
	src := writeWatched(t, env, "photo.png", pngBytes)
	writeWatched(t, env, "note.txt", []byte("hello from the watch dir"))

	imported, err := env.importer.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if imported != 2 {
		t.Fatalf("imported = %d, want 2", imported)
	}

	if _, err := os.Stat(filepath.Join(env.root, "Pictures", "photo.png")); err != nil {
		t.Errorf("expected photo in Pictures: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.root, "Documents", "note.txt")); err != nil {
		t.Errorf("expected note in Documents: %v", err)
	}

	// Sources stay in place unless delete after import is enabled
	if _, err := os.Stat(src); err != nil {
		t.Errorf("expected source file to remain: %v", err)
	}

	records, err := env.journal.Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("journal records = %d, want 2", len(records))
	}
	for _, rec := range records {
		if rec.Status != "saved" {
			t.Errorf("record %s status = %q, want saved", rec.FileName, rec.Status)
		}
		if rec.Source != filepath.Join(env.watchDir, rec.FileName) {
			t.Errorf("record %s source = %q, want path under watch dir", rec.FileName, rec.Source)
		}
	}
}

func TestSweepSkipsDuplicateContent(t *testing.T) {
	env := newTestEnv(t, nil)
	writeWatched(t, env, "copy1.png", pngBytes)
	writeWatched(t, env, "copy2.png", pngBytes)

	imported, err := env.importer.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if imported != 1 {
		t.Fatalf("imported = %d, want 1 for identical content", imported)
	}

	records, err := env.journal.Records()
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("journal records = %d, want 1", len(records))
	}
}

func TestDeleteAfterImport(t *testing.T) {
	env := newTestEnv(t, func(cfg *types.Config) {
		cfg.Import.DeleteAfterImport = true
	})
	src := writeWatched(t, env, "photo.png", pngBytes)

	if _, err := env.importer.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("expected source file to be removed")
	}
	if _, err := os.Stat(filepath.Join(env.root, "Pictures", "photo.png")); err != nil {
		t.Errorf("expected photo in Pictures: %v", err)
	}
}

func TestAllowedTypesFilter(t *testing.T) {
	env := newTestEnv(t, func(cfg *types.Config) {
		cfg.Import.AllowedTypes = []string{".png"}
	})
	writeWatched(t, env, "photo.png", pngBytes)
	skipped := writeWatched(t, env, "note.txt", []byte("not a picture"))

	imported, err := env.importer.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if imported != 1 {
		t.Fatalf("imported = %d, want 1", imported)
	}

	if _, err := os.Stat(skipped); err != nil {
		t.Errorf("expected filtered file to remain untouched: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.root, "Documents", "note.txt")); !os.IsNotExist(err) {
		t.Errorf("filtered file must not reach the gallery")
	}
}

func TestMediaTypeFilter(t *testing.T) {
	env := newTestEnv(t, func(cfg *types.Config) {
		cfg.Import.AllowedTypes = []string{"image/*"}
	})
	writeWatched(t, env, "photo.png", pngBytes)
	writeWatched(t, env, "note.txt", []byte("plain text, not an image"))

	imported, err := env.importer.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if imported != 1 {
		t.Fatalf("imported = %d, want 1", imported)
	}

	if _, err := os.Stat(filepath.Join(env.root, "Pictures", "photo.png")); err != nil {
		t.Errorf("expected photo in Pictures: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.root, "Documents", "note.txt")); !os.IsNotExist(err) {
		t.Errorf("text file must not match image/*")
	}
}

func TestMaxSizeFilter(t *testing.T) {
	env := newTestEnv(t, func(cfg *types.Config) {
		cfg.Import.MaxSize = 4
	})
	writeWatched(t, env, "big.txt", []byte("way over four bytes"))

	imported, err := env.importer.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if imported != 0 {
		t.Fatalf("imported = %d, want 0", imported)
	}
}

func TestSanitizeFilenames(t *testing.T) {
	env := newTestEnv(t, func(cfg *types.Config) {
		cfg.Import.SanitizeFilenames = true
	})
	writeWatched(t, env, "bad name?.txt", []byte("odd characters in the name"))

	if _, err := env.importer.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if _, err := os.Stat(filepath.Join(env.root, "Documents", "bad name_.txt")); err != nil {
		t.Errorf("expected sanitized file name: %v", err)
	}
}

func TestImportMissingFileRecordsFailure(t *testing.T) {
	env := newTestEnv(t, nil)

	if _, err := env.importer.ImportFile(context.Background(), filepath.Join(env.watchDir, "gone.jpg")); err == nil {
		t.Fatal("expected error for missing file")
	}

	entries, err := env.faillog.GetErrors(map[string]string{"error_type": faillog.ErrorTypeRead})
	if err != nil {
		t.Fatalf("GetErrors: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("fail log entries = %d, want 1", len(entries))
	}
	if entries[0].FileName != "gone.jpg" {
		t.Errorf("file name = %q, want gone.jpg", entries[0].FileName)
	}
}

func TestStartRequiresWatchDirs(t *testing.T) {
	env := newTestEnv(t, func(cfg *types.Config) {
		cfg.Import.WatchDirs = nil
	})
	if err := env.importer.Start(context.Background()); err == nil {
		t.Fatal("expected error when no watch directories are configured")
	}
}

func TestStartRunsInitialSweep(t *testing.T) {
	env := newTestEnv(t, nil)
	writeWatched(t, env, "photo.png", pngBytes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := env.importer.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer env.importer.Stop()

	if _, err := os.Stat(filepath.Join(env.root, "Pictures", "photo.png")); err != nil {
		t.Errorf("expected initial sweep to import photo: %v", err)
	}
}
