// Package writer defines the gallery backend interface and its
// filesystem, Google Drive and S3 implementations.
package writer

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/oauth2"

	"github.com/altomedia/gallery-bridge/internal/models"
)

// ImageRequest carries one in-memory image to the gallery. The caller
// has already resolved the extension and destination folder.
type ImageRequest struct {
	Bytes        []byte
	FileName     string
	Extension    string
	Quality      int
	RelativePath string
	SkipIfExists bool
}

// FileRequest carries one on-disk file to the gallery.
type FileRequest struct {
	FilePath     string
	FileName     string
	RelativePath string
	SkipIfExists bool
}

// Capabilities reports backend behavior the caller adapts to.
type Capabilities struct {
	// PreservesAnimatedGIF is false when the backend's image path
	// re-encodes pixel data and therefore flattens animated GIFs to a
	// single frame. Callers route GIF saves through the file path when
	// this is false.
	PreservesAnimatedGIF bool
}

// Writer stores media in a gallery backend. SaveImage and SaveFile
// report a single outcome; SaveFiles keeps per-item outcomes
// independent and only returns an error for call-level faults.
type Writer interface {
	SaveImage(ctx context.Context, req ImageRequest) error
	SaveFile(ctx context.Context, req FileRequest) error
	SaveFiles(ctx context.Context, reqs []FileRequest) (BatchOutcome, error)
	Capabilities() Capabilities
	Type() string
}

// ItemError records the failure of one entry in a batch.
type ItemError struct {
	FileName string
	Err      error
}

// BatchOutcome collects the per-item results of a batch save.
type BatchOutcome struct {
	Saved  int
	Errors []ItemError
}

// Result folds a batch outcome into a single SaveResult. The batch
// counts as successful while at least one item was saved; the message
// enumerates counts and per-item errors only when something failed.
func (b BatchOutcome) Result() models.SaveResult {
	if len(b.Errors) == 0 {
		return models.SuccessResult()
	}

	parts := make([]string, 0, len(b.Errors))
	for _, e := range b.Errors {
		parts = append(parts, fmt.Sprintf("%s: %v", e.FileName, e.Err))
	}

	return models.SaveResult{
		IsSuccess: b.Saved > 0,
		ErrorMessage: fmt.Sprintf("Saved %d files, failed %d files. Errors: %s",
			b.Saved, len(b.Errors), strings.Join(parts, "; ")),
	}
}

// saveEach is the batch loop shared by all backends. A failed item
// never aborts the rest; a canceled context does.
func saveEach(ctx context.Context, w Writer, reqs []FileRequest) (BatchOutcome, error) {
	var out BatchOutcome
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if err := w.SaveFile(ctx, req); err != nil {
			out.Errors = append(out.Errors, ItemError{FileName: req.FileName, Err: err})
			continue
		}
		out.Saved++
	}
	return out, nil
}

// detectContentType sniffs data when available and falls back to the
// file name. Remote stores want this in their object metadata.
func detectContentType(fileName string, data []byte) string {
	if len(data) > 0 {
		return mimetype.Detect(data).String()
	}
	if byName := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); byName != "" {
		return byName
	}
	return "application/octet-stream"
}

// Type identifiers for the writer backends
const (
	TypeFilesystem = "filesystem"
	TypeGDrive     = "gdrive"
	TypeS3         = "s3"
)

// Config holds configuration for creating writer instances
type Config struct {
	Type       string
	Filesystem FilesystemConfig
	GDrive     GDriveConfig
	S3         S3Config
}

// FilesystemConfig parameterizes the local gallery writer.
type FilesystemConfig struct {
	Root string // defaults to the user home directory
}

// GDriveConfig parameterizes the Google Drive writer. TokenSource
// takes precedence over CredentialsFile when both are set.
type GDriveConfig struct {
	CredentialsFile string
	TokenSource     oauth2.TokenSource
	RootFolder      string // Drive folder name the gallery lives under
}

// S3Config parameterizes the S3 writer. Endpoint and path-style are
// for MinIO and other S3-compatible services.
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	KeyPrefix    string
}

// New creates a writer instance based on the configuration
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Writer, error) {
	switch cfg.Type {
	case TypeFilesystem, "":
		return NewFilesystem(cfg.Filesystem, logger)
	case TypeGDrive:
		return NewGDrive(ctx, cfg.GDrive, logger)
	case TypeS3:
		return NewS3(ctx, cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unsupported writer type: %s", cfg.Type)
	}
}
