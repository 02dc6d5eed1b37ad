package writer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const driveFolderMimeType = "application/vnd.google-apps.folder"

// GDrive writes media into a Google Drive folder tree mirroring the
// gallery layout.
type GDrive struct {
	logger     *slog.Logger
	service    *drive.Service
	rootFolder string
	rootID     string // resolved lazily on first save
}

// NewGDrive creates a Google Drive writer. A token source from an
// interactive OAuth2 flow takes precedence over a service account
// credentials file.
func NewGDrive(ctx context.Context, cfg GDriveConfig, logger *slog.Logger) (*GDrive, error) {
	var opts []option.ClientOption
	switch {
	case cfg.TokenSource != nil:
		opts = append(opts, option.WithTokenSource(cfg.TokenSource))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		return nil, fmt.Errorf("gdrive writer requires a token source or a credentials file")
	}

	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive client: %w", err)
	}

	return &GDrive{
		logger:     logger,
		service:    service,
		rootFolder: cfg.RootFolder,
	}, nil
}

// Type returns the writer type identifier.
func (gd *GDrive) Type() string {
	return TypeGDrive
}

// Capabilities reports that bytes are uploaded verbatim, so animated
// GIFs survive the image path.
func (gd *GDrive) Capabilities() Capabilities {
	return Capabilities{PreservesAnimatedGIF: true}
}

// SaveImage uploads image bytes into the folder for the request's
// relative path.
func (gd *GDrive) SaveImage(ctx context.Context, req ImageRequest) error {
	folderID, err := gd.ensureFolderStructure(ctx, req.RelativePath)
	if err != nil {
		return fmt.Errorf("failed to ensure folder structure: %w", err)
	}

	if req.SkipIfExists {
		exists, err := gd.fileExists(ctx, folderID, req.FileName)
		if err != nil {
			return err
		}
		if exists {
			gd.logger.Debug("file already exists in Drive, skipping",
				"file_name", req.FileName,
			)
			return nil
		}
	}

	return gd.upload(ctx, folderID, req.FileName, bytes.NewReader(req.Bytes), detectContentType(req.FileName, req.Bytes))
}

// SaveFile streams a file from disk into Drive.
func (gd *GDrive) SaveFile(ctx context.Context, req FileRequest) error {
	src, err := os.Open(req.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	folderID, err := gd.ensureFolderStructure(ctx, req.RelativePath)
	if err != nil {
		return fmt.Errorf("failed to ensure folder structure: %w", err)
	}

	if req.SkipIfExists {
		exists, err := gd.fileExists(ctx, folderID, req.FileName)
		if err != nil {
			return err
		}
		if exists {
			gd.logger.Debug("file already exists in Drive, skipping",
				"file_name", req.FileName,
			)
			return nil
		}
	}

	return gd.upload(ctx, folderID, req.FileName, src, detectContentType(req.FilePath, nil))
}

// SaveFiles saves a batch with independent per-item outcomes.
func (gd *GDrive) SaveFiles(ctx context.Context, reqs []FileRequest) (BatchOutcome, error) {
	return saveEach(ctx, gd, reqs)
}

func (gd *GDrive) upload(ctx context.Context, folderID, name string, content io.Reader, mimeType string) error {
	file := &drive.File{
		Name:     name,
		Parents:  []string{folderID},
		MimeType: mimeType,
	}

	uploaded, err := gd.service.Files.Create(file).Media(content).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}

	gd.logger.Debug("file uploaded",
		"file_name", name,
		"id", uploaded.Id,
	)
	return nil
}

// resolveRoot finds or creates the configured root folder. An empty
// root folder name means the Drive root itself.
func (gd *GDrive) resolveRoot(ctx context.Context) (string, error) {
	if gd.rootID != "" {
		return gd.rootID, nil
	}
	if gd.rootFolder == "" {
		gd.rootID = "root"
		return gd.rootID, nil
	}

	id, err := gd.ensureFolder(ctx, "root", gd.rootFolder)
	if err != nil {
		return "", err
	}
	gd.rootID = id
	return id, nil
}

func (gd *GDrive) ensureFolderStructure(ctx context.Context, relativePath string) (string, error) {
	currentParentID, err := gd.resolveRoot(ctx)
	if err != nil {
		return "", err
	}

	for _, part := range strings.Split(relativePath, "/") {
		if part == "" || part == "." {
			continue
		}
		id, err := gd.ensureFolder(ctx, currentParentID, part)
		if err != nil {
			return "", err
		}
		currentParentID = id
	}

	return currentParentID, nil
}

func (gd *GDrive) ensureFolder(ctx context.Context, parentID, name string) (string, error) {
	// Search for existing folder
	query := fmt.Sprintf("name = '%s' and '%s' in parents and mimeType = '%s' and trashed = false",
		escapeQueryTerm(name), parentID, driveFolderMimeType)

	fileList, err := gd.service.Files.List().Q(query).Fields("files(id)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to search for folder: %w", err)
	}
	if len(fileList.Files) > 0 {
		return fileList.Files[0].Id, nil
	}

	// Create new folder
	folder := &drive.File{
		Name:     name,
		MimeType: driveFolderMimeType,
		Parents:  []string{parentID},
	}

	createdFolder, err := gd.service.Files.Create(folder).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	return createdFolder.Id, nil
}

func (gd *GDrive) fileExists(ctx context.Context, folderID, name string) (bool, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
		escapeQueryTerm(name), folderID)

	fileList, err := gd.service.Files.List().Q(query).Fields("files(id)").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("failed to check for existing file: %w", err)
	}
	return len(fileList.Files) > 0, nil
}

func escapeQueryTerm(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}
