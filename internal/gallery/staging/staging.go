// Package staging manages the scratch directory that image bytes pass
// through on their way to a gallery writer's file-save path.
package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultDirName is the scratch directory created under the system
// temp directory when no explicit staging dir is configured.
const DefaultDirName = "gallery-bridge"

// Area is a process-scoped scratch directory. Staged files are owned
// by the caller, which must Unstage each one exactly once.
type Area struct {
	dir    string
	logger *slog.Logger
}

// New creates a staging area rooted at dir. An empty dir selects the
// default location under the system temp directory. The directory
// itself is created lazily on first Stage.
func New(dir string, logger *slog.Logger) *Area {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), DefaultDirName)
	}
	return &Area{dir: dir, logger: logger}
}

// Dir returns the scratch directory path.
func (a *Area) Dir() string {
	return a.dir
}

// Stage writes data to a freshly named file in the scratch directory
// and returns its path. Names are random, so concurrent callers never
// collide.
func (a *Area) Stage(ext string, data []byte) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	name := uuid.NewString()
	if ext != "" {
		name += "." + strings.TrimPrefix(ext, ".")
	}

	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}

	return path, nil
}

// Unstage removes a staged file. Best effort: a failure is logged at
// debug level and otherwise ignored, an already-gone file is fine.
func (a *Area) Unstage(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		a.logger.Debug("failed to remove staged file",
			"path", path,
			"error", err,
		)
	}
}

// Clear removes the whole scratch directory recursively. A directory
// that does not exist counts as success.
func (a *Area) Clear() bool {
	if err := os.RemoveAll(a.dir); err != nil {
		a.logger.Warn("failed to clear staging directory",
			"dir", a.dir,
			"error", err,
		)
		return false
	}
	return true
}

// Sweep removes staged files older than maxAge and returns how many
// were deleted. Files left behind by a crashed save are the only thing
// that should ever be old enough to match.
func (a *Area) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read staging directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(a.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}

	if removed > 0 {
		a.logger.Info("swept stale staged files",
			"dir", a.dir,
			"removed", removed,
		)
	}
	return removed, nil
}
