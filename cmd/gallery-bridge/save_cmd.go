package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/altomedia/gallery-bridge/internal/app"
	"github.com/altomedia/gallery-bridge/internal/models"
)

var (
	saveQuality      int
	saveExtension    string
	saveRelativePath string
	saveSkipExisting bool
)

// createSaveCommand creates the save command with its images and files
// subcommands
func createSaveCommand() *cobra.Command {
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Save media to the gallery",
		Long:  `Save images or files into the configured gallery backend`,
	}

	saveCmd.PersistentFlags().IntVar(&saveQuality, "quality", 0, "re-encode quality for images (1-100, writer dependent)")
	saveCmd.PersistentFlags().StringVar(&saveRelativePath, "relative-path", "", "destination folder, overrides the media type mapping")
	saveCmd.PersistentFlags().BoolVar(&saveSkipExisting, "skip-existing", false, "treat an already present destination as success")

	imagesCmd := &cobra.Command{
		Use:   "images [paths...]",
		Short: "Save images from disk as gallery images",
		Long:  `Read each file into memory and save it through the gallery image path`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSaveImages,
	}
	imagesCmd.Flags().StringVar(&saveExtension, "extension", "", "extension override applied to every image")

	filesCmd := &cobra.Command{
		Use:   "files [paths...]",
		Short: "Save files into the gallery",
		Long:  `Copy each file into the gallery without touching its bytes`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSaveFiles,
	}

	saveCmd.AddCommand(imagesCmd)
	saveCmd.AddCommand(filesCmd)

	return saveCmd
}

func runSaveImages(cmd *cobra.Command, args []string) error {
	cfg, err := selectConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	profile, err := app.NewProfile(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer profile.Close()

	images := make([]models.SaveImageData, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read image %s: %w", path, err)
		}
		images = append(images, models.SaveImageData{
			Bytes:        data,
			FileName:     filepath.Base(path),
			Extension:    saveExtension,
			RelativePath: relativePath(cfg.Gallery.RelativePath),
		})
	}

	result := profile.Saver().SaveImages(ctx, images, quality(cfg.Gallery.Quality), skipExisting(cfg.Gallery.SkipIfExists))
	return reportResult(result, len(images))
}

func runSaveFiles(cmd *cobra.Command, args []string) error {
	cfg, err := selectConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	profile, err := app.NewProfile(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer profile.Close()

	files := make([]models.SaveFileData, 0, len(args))
	for _, path := range args {
		files = append(files, models.SaveFileData{
			FilePath:     path,
			FileName:     filepath.Base(path),
			RelativePath: relativePath(cfg.Gallery.RelativePath),
		})
	}

	result := profile.Saver().SaveFiles(ctx, files, skipExisting(cfg.Gallery.SkipIfExists))
	return reportResult(result, len(files))
}

// Flag values win over the profile defaults

func quality(configured int) int {
	if saveQuality > 0 {
		return saveQuality
	}
	return configured
}

func relativePath(configured string) string {
	if saveRelativePath != "" {
		return saveRelativePath
	}
	return configured
}

func skipExisting(configured bool) bool {
	return saveSkipExisting || configured
}

func reportResult(result models.SaveResult, total int) error {
	if result.ErrorMessage != "" {
		fmt.Println(result.ErrorMessage)
	} else if result.IsSuccess {
		fmt.Printf("Saved %d file(s)\n", total)
	}

	if !result.IsSuccess {
		return fmt.Errorf("save failed")
	}
	return nil
}
