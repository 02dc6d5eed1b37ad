package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/altomedia/gallery-bridge/internal/faillog"
	"github.com/altomedia/gallery-bridge/internal/gallery"
	"github.com/altomedia/gallery-bridge/internal/journal"
	"github.com/altomedia/gallery-bridge/internal/types"
	"github.com/altomedia/gallery-bridge/internal/utility/u_io"
)

// sweepDebounce is how long the watcher waits after the last event
// before sweeping. Files are often written in bursts, so importing on
// the first event would race the producer.
const sweepDebounce = 2 * time.Second

// Importer picks up media files from watch directories and saves them
// to the gallery. Files are deduplicated by content checksum, so a
// re-delivered or partially imported file is handled idempotently on
// the next sweep.
type Importer struct {
	cfg     *types.Config
	logger  *slog.Logger
	saver   *gallery.Saver
	journal *journal.Manager
	faillog *faillog.Manager

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New creates an importer for a single configuration profile.
func New(cfg *types.Config, logger *slog.Logger, saver *gallery.Saver, jm *journal.Manager, fm *faillog.Manager) *Importer {
	return &Importer{
		cfg:     cfg,
		logger:  logger,
		saver:   saver,
		journal: jm,
		faillog: fm,
	}
}

// Start runs an initial sweep of all watch directories and then watches
// them for new files until Stop is called.
func (i *Importer) Start(ctx context.Context) error {
	if len(i.cfg.Import.WatchDirs) == 0 {
		return errors.New("no watch directories configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	for _, dir := range i.cfg.Import.WatchDirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			watcher.Close()
			return fmt.Errorf("failed to create watch directory: %w", err)
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	i.watcher = watcher
	i.done = make(chan struct{})

	if _, err := i.Sweep(ctx); err != nil {
		i.logger.Error("initial import sweep failed",
			"config_id", i.cfg.Meta.ID,
			"error", err,
		)
	}

	go i.watch(ctx)
	return nil
}

// Stop closes the directory watcher.
func (i *Importer) Stop() {
	if i.watcher != nil {
		i.watcher.Close()
	}
	if i.done != nil {
		<-i.done
	}
}

// watch schedules a debounced sweep whenever files change. Events never
// trigger an import directly: the file behind a Create event may still
// be mid-copy, and the sweep picks it up once writes have settled.
func (i *Importer) watch(ctx context.Context) {
	defer close(i.done)

	debounce := time.NewTimer(sweepDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case event, ok := <-i.watcher.Events:
			if !ok {
				return
			}

			// Skip hidden and temporary files
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}

			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(sweepDebounce)
			}

		case <-debounce.C:
			if _, err := i.Sweep(ctx); err != nil {
				i.logger.Error("import sweep failed",
					"config_id", i.cfg.Meta.ID,
					"error", err,
				)
			}

		case err, ok := <-i.watcher.Errors:
			if !ok {
				return
			}
			i.logger.Error("watcher error", "error", err)

		case <-ctx.Done():
			return
		}
	}
}

// Sweep imports every eligible file currently present in the watch
// directories and returns the number of files saved.
func (i *Importer) Sweep(ctx context.Context) (int, error) {
	imported := 0

	for _, dir := range i.cfg.Import.WatchDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return imported, fmt.Errorf("failed to read watch directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if err := ctx.Err(); err != nil {
				return imported, err
			}

			path := filepath.Join(dir, entry.Name())
			saved, err := i.ImportFile(ctx, path)
			if err != nil {
				i.logger.Error("failed to import file",
					"config_id", i.cfg.Meta.ID,
					"path", path,
					"error", err,
				)
				continue
			}
			if saved {
				imported++
			}
		}
	}

	return imported, nil
}

// ImportFile saves a single file to the gallery. It reports whether
// the file was saved: filtered, duplicate and skipped files return
// false without touching the gallery.
func (i *Importer) ImportFile(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		i.faillog.LogFailedSave("import", filepath.Base(path), i.saver.WriterType(), "", faillog.ErrorTypeRead, err)
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return false, nil
	}

	fileName := filepath.Base(path)

	if !gallery.TypeAllowed(path, i.cfg.Import.AllowedTypes) {
		i.logger.Debug("skipping file with disallowed type",
			"config_id", i.cfg.Meta.ID,
			"file_name", fileName,
		)
		return false, nil
	}

	if i.cfg.Import.MaxSize > 0 && info.Size() > i.cfg.Import.MaxSize {
		i.logger.Warn("skipping oversized file",
			"config_id", i.cfg.Meta.ID,
			"file_name", fileName,
			"size", info.Size(),
			"max_size", i.cfg.Import.MaxSize,
		)
		return false, nil
	}

	checksum, err := u_io.FileChecksum(path)
	if err != nil {
		i.faillog.LogFailedSave("import", fileName, i.saver.WriterType(), "", faillog.ErrorTypeRead, err)
		return false, fmt.Errorf("failed to checksum file: %w", err)
	}

	seen, err := i.journal.IsSaved(checksum)
	if err != nil {
		i.logger.Warn("failed to check save journal",
			"config_id", i.cfg.Meta.ID,
			"file_name", fileName,
			"error", err,
		)
	}
	if seen {
		i.logger.Debug("skipping already saved file",
			"config_id", i.cfg.Meta.ID,
			"file_name", fileName,
			"checksum", checksum,
		)
		return false, i.finishFile(path)
	}

	if i.cfg.Import.SanitizeFilenames {
		fileName = u_io.CleanFilename(fileName)
	}

	result := i.saver.SaveFile(ctx, path, fileName, gallery.SaveOptions{
		Quality:      i.cfg.Gallery.Quality,
		RelativePath: i.cfg.Gallery.RelativePath,
		SkipIfExists: i.cfg.Gallery.SkipIfExists,
	})
	if !result.IsSuccess {
		saveErr := errors.New(result.ErrorMessage)
		i.faillog.LogFailedSave("import", fileName, i.saver.WriterType(), checksum, faillog.ErrorTypeSave, saveErr)
		return false, fmt.Errorf("failed to save file: %s", result.ErrorMessage)
	}

	if err := i.journal.RecordSave(path, checksum, fileName, i.saver.WriterType(), "saved"); err != nil {
		i.logger.Warn("failed to record save in journal",
			"config_id", i.cfg.Meta.ID,
			"file_name", fileName,
			"error", err,
		)
	}

	i.logger.Info("imported file",
		"config_id", i.cfg.Meta.ID,
		"file_name", fileName,
		"writer", i.saver.WriterType(),
	)

	return true, i.finishFile(path)
}

// finishFile removes the source file when the profile is configured to
// delete after import.
func (i *Importer) finishFile(path string) error {
	if !i.cfg.Import.DeleteAfterImport {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove imported file: %w", err)
	}
	return nil
}
