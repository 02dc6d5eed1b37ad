// Package gallery implements the media save facade: it resolves MIME
// types and destination folders, stages bytes when a writer needs a
// file path, and folds every failure into a SaveResult.
package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/altomedia/gallery-bridge/internal/gallery/staging"
	"github.com/altomedia/gallery-bridge/internal/gallery/writer"
	"github.com/altomedia/gallery-bridge/internal/models"
)

// DefaultQuality is applied when a save request does not set one.
const DefaultQuality = 100

// SaveOptions tunes a single-item save.
type SaveOptions struct {
	Quality      int    // 0 selects DefaultQuality
	Extension    string // overrides content-based resolution
	RelativePath string // overrides the MIME-derived destination folder
	SkipIfExists bool
}

// Saver is the save facade. None of its methods return an error: every
// fault, writer-side or local, becomes a failed SaveResult.
type Saver struct {
	writer  writer.Writer
	staging *staging.Area
	logger  *slog.Logger
}

// NewSaver creates a save facade on top of a gallery writer.
func NewSaver(w writer.Writer, area *staging.Area, logger *slog.Logger) *Saver {
	logger.Debug("creating gallery saver",
		"writer_type", w.Type(),
		"staging_dir", area.Dir(),
	)
	return &Saver{
		writer:  w,
		staging: area,
		logger:  logger,
	}
}

// WriterType returns the type of the underlying gallery writer.
func (s *Saver) WriterType() string {
	return s.writer.Type()
}

// SaveImage writes image bytes to the gallery. GIF payloads are routed
// through the staging area and the writer's file path when the writer
// re-encodes image bytes, so animation frames survive.
func (s *Saver) SaveImage(ctx context.Context, data []byte, fileName string, opts SaveOptions) models.SaveResult {
	quality := opts.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}

	ext := strings.TrimPrefix(opts.Extension, ".")
	name := NormalizeFileName(fileName, ext)
	mimeType, resolvedExt := Resolve(name, data)
	if ext == "" {
		ext = resolvedExt
	}
	name = NormalizeFileName(name, ext)

	folder := opts.RelativePath
	if folder == "" {
		folder = DefaultFolder(mimeType)
	}

	if ext == "gif" && !s.writer.Capabilities().PreservesAnimatedGIF {
		return s.saveStagedImage(ctx, data, name, ext, folder, opts.SkipIfExists)
	}

	err := s.writer.SaveImage(ctx, writer.ImageRequest{
		Bytes:        data,
		FileName:     name,
		Extension:    ext,
		Quality:      quality,
		RelativePath: folder,
		SkipIfExists: opts.SkipIfExists,
	})
	return s.resultFromErr(err, name)
}

// SaveFile copies a single file into the gallery. An empty fileName
// falls back to the source file's base name.
func (s *Saver) SaveFile(ctx context.Context, filePath, fileName string, opts SaveOptions) models.SaveResult {
	mimeType, ext := ResolveFile(filePath)

	if fileName == "" {
		fileName = filepath.Base(filePath)
	}
	fileName = NormalizeFileName(fileName, ext)

	folder := opts.RelativePath
	if folder == "" {
		folder = DefaultFolder(mimeType)
	}

	err := s.writer.SaveFile(ctx, writer.FileRequest{
		FilePath:     filePath,
		FileName:     fileName,
		RelativePath: folder,
		SkipIfExists: opts.SkipIfExists,
	})
	return s.resultFromErr(err, fileName)
}

// SaveImages stages every image and delegates to SaveFiles, so all
// backends get the same batch semantics. Staged files are always
// removed before this returns, whatever the outcome.
func (s *Saver) SaveImages(ctx context.Context, images []models.SaveImageData, quality int, skipIfExists bool) models.SaveResult {
	if len(images) == 0 {
		return models.FailureResult("Image list is empty")
	}

	s.logger.Debug("batch image save",
		"count", len(images),
		"quality", quality,
		"skip_if_exists", skipIfExists,
	)

	var staged []string
	defer func() {
		for _, path := range staged {
			s.staging.Unstage(path)
		}
	}()

	files := make([]models.SaveFileData, 0, len(images))
	for _, img := range images {
		ext := strings.TrimPrefix(img.Extension, ".")
		name := NormalizeFileName(img.FileName, ext)
		_, resolvedExt := Resolve(name, img.Bytes)
		if ext == "" {
			ext = resolvedExt
		}
		name = NormalizeFileName(name, ext)

		path, err := s.staging.Stage(ext, img.Bytes)
		if err != nil {
			return models.FailureResult(fmt.Sprintf("failed to stage image %s: %v", name, err))
		}
		staged = append(staged, path)

		files = append(files, models.SaveFileData{
			FilePath:     path,
			FileName:     name,
			RelativePath: img.RelativePath,
		})
	}

	return s.SaveFiles(ctx, files, skipIfExists)
}

// SaveFiles saves a batch of files in one writer call. Per-item
// outcomes stay independent; the aggregate succeeds while at least one
// item was saved.
func (s *Saver) SaveFiles(ctx context.Context, files []models.SaveFileData, skipIfExists bool) models.SaveResult {
	if len(files) == 0 {
		return models.FailureResult("File list is empty")
	}

	reqs := make([]writer.FileRequest, 0, len(files))
	for _, f := range files {
		mimeType, ext := ResolveFile(f.FilePath)

		name := f.FileName
		if name == "" {
			name = filepath.Base(f.FilePath)
		}
		name = NormalizeFileName(name, ext)

		folder := f.RelativePath
		if folder == "" {
			folder = DefaultFolder(mimeType)
		}

		reqs = append(reqs, writer.FileRequest{
			FilePath:     f.FilePath,
			FileName:     name,
			RelativePath: folder,
			SkipIfExists: skipIfExists,
		})
	}

	outcome, err := s.writer.SaveFiles(ctx, reqs)
	if err != nil {
		s.logger.Error("batch save failed",
			"count", len(files),
			"error", err,
		)
		return models.FailureResult(fmt.Sprintf("failed to save files: %v", err))
	}

	if len(outcome.Errors) > 0 {
		s.logger.Warn("batch save finished with failures",
			"saved", outcome.Saved,
			"failed", len(outcome.Errors),
		)
	}
	return outcome.Result()
}

// ClearCache removes the staging directory and everything in it. A
// directory that never existed counts as cleared.
func (s *Saver) ClearCache() bool {
	return s.staging.Clear()
}

// saveStagedImage routes image bytes through the staging area and the
// writer's file path, which copies them verbatim.
func (s *Saver) saveStagedImage(ctx context.Context, data []byte, fileName, ext, folder string, skipIfExists bool) models.SaveResult {
	stagedPath, err := s.staging.Stage(ext, data)
	if err != nil {
		return models.FailureResult(fmt.Sprintf("failed to stage image: %v", err))
	}
	defer s.staging.Unstage(stagedPath)

	err = s.writer.SaveFile(ctx, writer.FileRequest{
		FilePath:     stagedPath,
		FileName:     fileName,
		RelativePath: folder,
		SkipIfExists: skipIfExists,
	})
	return s.resultFromErr(err, fileName)
}

func (s *Saver) resultFromErr(err error, fileName string) models.SaveResult {
	if err != nil {
		s.logger.Error("save failed",
			"file_name", fileName,
			"error", err,
		)
		return models.FailureResult(err.Error())
	}
	return models.SuccessResult()
}
