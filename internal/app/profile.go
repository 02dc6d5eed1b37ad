package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/altomedia/gallery-bridge/internal/faillog"
	"github.com/altomedia/gallery-bridge/internal/gallery"
	"github.com/altomedia/gallery-bridge/internal/gallery/staging"
	"github.com/altomedia/gallery-bridge/internal/gallery/writer"
	"github.com/altomedia/gallery-bridge/internal/importer"
	"github.com/altomedia/gallery-bridge/internal/journal"
	"github.com/altomedia/gallery-bridge/internal/oauth2"
	"github.com/altomedia/gallery-bridge/internal/types"
	"github.com/altomedia/gallery-bridge/internal/validation"
)

// Profile bundles the running services for one configuration: the
// gallery writer, the staging area, the save journal, the fail log and
// an optional watch-directory importer.
type Profile struct {
	cfg      *types.Config
	logger   *slog.Logger
	staging  *staging.Area
	saver    *gallery.Saver
	journal  *journal.Manager
	faillog  *faillog.Manager
	importer *importer.Importer
}

// NewProfile validates a configuration and builds its service graph.
func NewProfile(ctx context.Context, cfg *types.Config, logger *slog.Logger) (*Profile, error) {
	if err := validation.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", cfg.Meta.ID, err)
	}

	area := staging.New(cfg.Staging.Dir, logger)

	w, err := buildWriter(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create gallery writer: %w", err)
	}

	jm, err := journal.NewManager(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create save journal: %w", err)
	}

	fm, err := faillog.NewManager(cfg, logger)
	if err != nil {
		jm.Close()
		return nil, fmt.Errorf("failed to create fail log: %w", err)
	}

	saver := gallery.NewSaver(w, area, logger)

	p := &Profile{
		cfg:     cfg,
		logger:  logger,
		staging: area,
		saver:   saver,
		journal: jm,
		faillog: fm,
	}

	if len(cfg.Import.WatchDirs) > 0 {
		p.importer = importer.New(cfg, logger, saver, jm, fm)
	}

	return p, nil
}

// Saver returns the save facade for this profile
func (p *Profile) Saver() *gallery.Saver {
	return p.saver
}

// Journal returns the save journal for this profile
func (p *Profile) Journal() *journal.Manager {
	return p.journal
}

// FailLog returns the fail log for this profile
func (p *Profile) FailLog() *faillog.Manager {
	return p.faillog
}

// Start brings up the watch-directory importer when one is configured
func (p *Profile) Start(ctx context.Context) error {
	if p.importer == nil {
		return nil
	}
	if err := p.importer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start importer: %w", err)
	}
	return nil
}

// Maintenance is the scheduled task body for this profile: sweep the
// watch directories, prune journal and fail log retention, and clear
// staged files that outlived their maximum age.
func (p *Profile) Maintenance(ctx context.Context) {
	if p.importer != nil {
		if _, err := p.importer.Sweep(ctx); err != nil {
			p.logger.Error("import sweep failed",
				"config_id", p.cfg.Meta.ID,
				"error", err,
			)
		}
	}

	if err := p.journal.CleanupOldRecords(); err != nil {
		p.logger.Error("journal cleanup failed",
			"config_id", p.cfg.Meta.ID,
			"error", err,
		)
	}

	if err := p.faillog.CleanupOldErrors(); err != nil {
		p.logger.Error("fail log cleanup failed",
			"config_id", p.cfg.Meta.ID,
			"error", err,
		)
	}

	if p.cfg.Staging.MaxAge > 0 {
		maxAge := time.Duration(p.cfg.Staging.MaxAge) * time.Hour
		if removed, err := p.staging.Sweep(maxAge); err != nil {
			p.logger.Error("staging sweep failed",
				"config_id", p.cfg.Meta.ID,
				"error", err,
			)
		} else if removed > 0 {
			p.logger.Info("removed stale staged files",
				"config_id", p.cfg.Meta.ID,
				"count", removed,
			)
		}
	}
}

// Close stops the importer and releases journal and fail log resources
func (p *Profile) Close() {
	if p.importer != nil {
		p.importer.Stop()
	}
	if err := p.journal.Close(); err != nil {
		p.logger.Warn("failed to close journal",
			"config_id", p.cfg.Meta.ID,
			"error", err,
		)
	}
	if err := p.faillog.Close(); err != nil {
		p.logger.Warn("failed to close fail log",
			"config_id", p.cfg.Meta.ID,
			"error", err,
		)
	}
}

// buildWriter maps a profile configuration onto a writer configuration.
// Drive profiles with a token directory authenticate through the stored
// OAuth2 token and keep it fresh in the background.
func buildWriter(ctx context.Context, cfg *types.Config, logger *slog.Logger) (writer.Writer, error) {
	wcfg := writer.Config{Type: cfg.Gallery.Writer.Type}

	switch cfg.Gallery.Writer.Type {
	case writer.TypeFilesystem, "":
		wcfg.Filesystem.Root = cfg.Gallery.Writer.Filesystem.Root

	case writer.TypeGDrive:
		g := cfg.Gallery.Writer.GDrive
		wcfg.GDrive.RootFolder = g.RootFolder
		if g.TokenDir != "" {
			oatCfg := oauth2.GetGoogleConfig(g.ClientID, g.ClientSecret, oauth2.RedirectURL)
			tm, err := oauth2.NewTokenManager(oatCfg, g.TokenDir, oauth2.DriveAccountID(cfg.Meta.ID), logger)
			if err != nil {
				return nil, err
			}
			if !tm.HasToken() {
				return nil, fmt.Errorf("no OAuth2 token for %s, run 'gallery-bridge oauth2 generate %s' first",
					cfg.Meta.ID, cfg.Meta.ID)
			}
			wcfg.GDrive.TokenSource = tm.TokenSource(ctx)
			tm.StartRefreshWorker(ctx)
		} else {
			wcfg.GDrive.CredentialsFile = g.CredentialsFile
		}

	case writer.TypeS3:
		s := cfg.Gallery.Writer.S3
		wcfg.S3 = writer.S3Config{
			Endpoint:     s.Endpoint,
			Region:       s.Region,
			Bucket:       s.Bucket,
			AccessKey:    s.AccessKeyID,
			SecretKey:    s.SecretAccessKey,
			UsePathStyle: s.UsePathStyle,
			KeyPrefix:    s.KeyPrefix,
		}
	}

	return writer.New(ctx, wcfg, logger)
}
