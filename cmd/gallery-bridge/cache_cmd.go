package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/altomedia/gallery-bridge/internal/gallery/staging"
)

// createCacheCommand creates the cache command
func createCacheCommand() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Staging cache management",
		Long:  `Manage the staging area used for temporary save files`,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the staging cache",
		Long:  `Remove the staging directory and everything in it`,
		RunE:  runCacheClear,
	}

	cacheCmd.AddCommand(clearCmd)
	return cacheCmd
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := selectConfig()
	if err != nil {
		return err
	}

	area := staging.New(cfg.Staging.Dir, log)
	if !area.Clear() {
		return fmt.Errorf("failed to clear staging cache at %s", area.Dir())
	}

	fmt.Printf("Cleared staging cache at %s\n", area.Dir())
	return nil
}
