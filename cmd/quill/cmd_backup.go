package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/springroll-app/quill/internal/backup"
	"github.com/springroll-app/quill/internal/store"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export all feedback data to a backup file",
		Long: `Backup all feedback records and style profiles to a JSON file.

Default location: .quill/backups/quill-backup-YYYYMMDD-HHMMSS.json

Examples:
  quill backup                           # Backup to default location
  quill backup --output my-backup.json   # Backup to specific file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			outputPath, _ := cmd.Flags().GetString("output")

			if outputPath == "" {
				outputPath = backup.DefaultBackupPath(filepath.Join(store.LocalQuillPath(root), "backups"))
			}

			_, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			result, err := backup.Backup(cmd.Context(), st, outputPath)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"path":     outputPath,
					"records":  result.Records,
					"profiles": result.Profiles,
				})
			}
			fmt.Printf("✓ Backup created: %d records, %d profiles\n", result.Records, result.Profiles)
			fmt.Printf("  Path: %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().String("output", "", "Output file path (default: auto-generated in .quill/backups/)")

	return cmd
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore feedback data from a backup file",
		Long: `Restore feedback records and style profiles from a backup JSON file.

Modes:
  merge   - Skip records that already exist (default)
  replace - Clear the store first, then restore

Examples:
  quill restore .quill/backups/quill-backup-20260828-120000.json
  quill restore backup.json --mode replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			mode, _ := cmd.Flags().GetString("mode")

			_, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			result, err := backup.Restore(cmd.Context(), st, args[0], backup.RestoreMode(mode))
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"records":  result.Records,
					"skipped":  result.Skipped,
					"profiles": result.Profiles,
				})
			}
			fmt.Printf("✓ Restore complete (mode: %s)\n", mode)
			fmt.Printf("  Records: %d restored, %d skipped\n", result.Records, result.Skipped)
			fmt.Printf("  Profiles: %d restored\n", result.Profiles)
			return nil
		},
	}

	cmd.Flags().String("mode", "merge", "Restore mode: merge or replace")

	return cmd
}
