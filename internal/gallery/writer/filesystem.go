package writer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/altomedia/gallery-bridge/internal/utility/u_io"
)

// Filesystem writes media into a local gallery folder hierarchy
// (Pictures, Movies, Music, ... under the configured root).
type Filesystem struct {
	root   string
	logger *slog.Logger
}

// NewFilesystem creates a local gallery writer. An empty root selects
// the user home directory, where the conventional media folders live.
func NewFilesystem(cfg FilesystemConfig, logger *slog.Logger) (*Filesystem, error) {
	root := cfg.Root
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine home directory: %w", err)
		}
		root = home
	}
	return &Filesystem{root: root, logger: logger}, nil
}

// Type returns the writer type identifier.
func (w *Filesystem) Type() string {
	return TypeFilesystem
}

// Capabilities reports that the image path re-encodes pixel data, so
// animated GIF frames do not survive it.
func (w *Filesystem) Capabilities() Capabilities {
	return Capabilities{PreservesAnimatedGIF: false}
}

// SaveImage writes image bytes into the gallery, re-encoding them in
// their detected format so the JPEG quality setting takes effect.
func (w *Filesystem) SaveImage(ctx context.Context, req ImageRequest) error {
	target, skipped, err := w.prepareTarget(req.RelativePath, req.FileName, req.SkipIfExists)
	if err != nil {
		return err
	}
	if skipped {
		w.logger.Debug("target already exists, skipping",
			"file_name", req.FileName,
			"target", target,
		)
		return nil
	}

	return w.writeFile(target, w.encode(req))
}

// SaveFile copies a file from disk into the gallery.
func (w *Filesystem) SaveFile(ctx context.Context, req FileRequest) error {
	src, err := os.Open(req.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	target, skipped, err := w.prepareTarget(req.RelativePath, req.FileName, req.SkipIfExists)
	if err != nil {
		return err
	}
	if skipped {
		w.logger.Debug("target already exists, skipping",
			"file_name", req.FileName,
			"target", target,
		)
		return nil
	}

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(target) // Clean up on error
		return fmt.Errorf("failed to write file content: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(target)
		return fmt.Errorf("failed to close file: %w", err)
	}

	w.logger.Debug("file saved",
		"file_name", req.FileName,
		"target", target,
	)
	return nil
}

// SaveFiles saves a batch with independent per-item outcomes.
func (w *Filesystem) SaveFiles(ctx context.Context, reqs []FileRequest) (BatchOutcome, error) {
	return saveEach(ctx, w, reqs)
}

// prepareTarget creates the destination directory and decides the
// final path. The skipped return is true when the target exists and
// the request asked to skip; otherwise an existing target gets a
// numbered suffix.
func (w *Filesystem) prepareTarget(relativePath, fileName string, skipIfExists bool) (string, bool, error) {
	fileName = u_io.CleanFilename(fileName)
	if fileName == "" {
		return "", false, fmt.Errorf("file name is required")
	}

	dir := filepath.Join(w.root, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create gallery directory: %w", err)
	}

	target := filepath.Join(dir, fileName)
	if _, err := os.Stat(target); err == nil {
		if skipIfExists {
			return target, true, nil
		}
		target = u_io.EnsureUniqueFilename(target)
	}

	return target, false, nil
}

// encode re-encodes image bytes in their detected format, applying the
// quality setting for JPEG. Payloads that do not decode are written
// verbatim.
func (w *Filesystem) encode(req ImageRequest) []byte {
	img, format, err := image.Decode(bytes.NewReader(req.Bytes))
	if err != nil {
		w.logger.Debug("payload does not decode as image, writing verbatim",
			"file_name", req.FileName,
			"error", err,
		)
		return req.Bytes
	}

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		quality := req.Quality
		if quality <= 0 || quality > 100 {
			quality = 100
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		return req.Bytes
	}
	if err != nil {
		w.logger.Debug("failed to re-encode image, writing verbatim",
			"file_name", req.FileName,
			"format", format,
			"error", err,
		)
		return req.Bytes
	}

	return buf.Bytes()
}

func (w *Filesystem) writeFile(path string, content []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(content); err != nil {
		os.Remove(path) // Clean up on error
		return fmt.Errorf("failed to write file content: %w", err)
	}
	return nil
}
