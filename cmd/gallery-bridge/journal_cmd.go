package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/altomedia/gallery-bridge/internal/journal"
)

// createJournalCommand creates the journal command
func createJournalCommand() *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Save journal management",
		Long:  `Inspect and prune the journal of completed saves`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List journal records",
		Long:  `List all save records for the selected configuration`,
		RunE:  runJournalList,
	}

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove old journal records",
		Long:  `Remove records older than the configured retention period`,
		RunE:  runJournalCleanup,
	}

	journalCmd.AddCommand(listCmd)
	journalCmd.AddCommand(cleanupCmd)
	return journalCmd
}

func runJournalList(cmd *cobra.Command, args []string) error {
	cfg, err := selectConfig()
	if err != nil {
		return err
	}

	if !cfg.Journal.Enabled {
		fmt.Printf("Journal is disabled for configuration %s\n", cfg.Meta.ID)
		return nil
	}

	mgr, err := journal.NewManager(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer mgr.Close()

	records, err := mgr.Records()
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No journal records found")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %-10s %-12s %s -> %s\n",
			rec.SavedAt.Format("2006-01-02 15:04:05"),
			rec.Status,
			rec.Source,
			rec.FileName,
			rec.Destination,
		)
	}
	fmt.Printf("%d record(s)\n", len(records))
	return nil
}

func runJournalCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := selectConfig()
	if err != nil {
		return err
	}

	if !cfg.Journal.Enabled {
		fmt.Printf("Journal is disabled for configuration %s\n", cfg.Meta.ID)
		return nil
	}

	mgr, err := journal.NewManager(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer mgr.Close()

	if err := mgr.CleanupOldRecords(); err != nil {
		return fmt.Errorf("failed to clean up journal: %w", err)
	}

	fmt.Printf("Removed records older than %d days\n", cfg.Journal.RetentionDays)
	return nil
}
