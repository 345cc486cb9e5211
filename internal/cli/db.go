package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/yigit/coursewatch/internal/pkg/helpers"
	"github.com/yigit/coursewatch/internal/pkg/logger"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Store maintenance operations",
	}
	cmd.AddCommand(newStatsCmd(), newCleanupCmd(), newMigrateCmd(), newBackupCmd())
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print store statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(false)
			if err != nil {
				return err
			}
			defer app.Close()

			stats, err := app.Maintenance.Stats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Courses:            %d\n", stats.Courses)
			fmt.Printf("Sections:           %d\n", stats.Sections)
			fmt.Printf("Snapshots:          %d\n", stats.Snapshots)
			fmt.Printf("Enrollment records: %d\n", stats.EnrollmentRecords)
			fmt.Printf("Reports logged:     %d\n", stats.Reports)
			if stats.FirstSnapshot != "" {
				fmt.Printf("First snapshot:     %s\n", stats.FirstSnapshot)
				fmt.Printf("Latest snapshot:    %s\n", stats.LatestSnapshot)
			}
			return nil
		},
	}
}

func newCleanupCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete all but the N most recent snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(false)
			if err != nil {
				return err
			}
			defer app.Close()

			if keep == 0 {
				keep = app.Config.Retention.KeepSnapshots
			}

			result, err := app.Maintenance.Cleanup(cmd.Context(), keep)
			if err != nil {
				return err
			}
			if result.Skipped {
				fmt.Printf("Cleanup skipped: %s\n", result.Reason)
				return nil
			}
			fmt.Printf("Deleted %d snapshots, kept the %d most recent\n", result.Deleted, keep)
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 0, "snapshots to keep (default from configuration)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var (
		dir    string
		dryRun bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Replay legacy JSON snapshot files into the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(false)
			if err != nil {
				return err
			}
			defer app.Close()

			if dir == "" {
				dir = app.Config.Directories.Data
			}

			result, err := app.Maintenance.Migrate(cmd.Context(), dir, dryRun, force)
			if err != nil {
				return err
			}

			fmt.Printf("Files: %d, migrated: %d, skipped: %d, failed: %d\n",
				result.Total, result.Migrated, result.Skipped, result.Failed)
			for _, msg := range result.Errors {
				logger.Warn().Msg(msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "legacy snapshot directory (default from configuration)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate files without writing")
	cmd.Flags().BoolVar(&force, "force", false, "migrate even when the store already contains snapshots")
	return cmd
}

func newBackupCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a replayable JSON dump of every stored snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(false)
			if err != nil {
				return err
			}
			defer app.Close()

			path := outPath
			if path == "" {
				stamp := helpers.SafeTimestampName(time.Now().UTC().Format(time.RFC3339))
				path = filepath.Join(app.Config.Directories.Data, fmt.Sprintf("backup-%s.json", stamp))
			}
			return app.Maintenance.Backup(cmd.Context(), path)
		},
	}

	cmd.Flags().StringVar(&outPath, "output", "", "backup path (default <data dir>/backup-<timestamp>.json)")
	return cmd
}
