package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/springroll-app/quill/internal/feedback"
	"github.com/springroll-app/quill/internal/models"
	"github.com/springroll-app/quill/internal/store"
)

func newExportTrainingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-training",
		Short: "Export edit history as instruction-tuning data",
		Long: `Export all edit records as instruction/input/output triples in JSONL
format, suitable for fine-tuning pipelines.

Default location: .quill/training-YYYYMMDD-HHMMSS.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			outputPath, _ := cmd.Flags().GetString("output")

			svc, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			export, err := svc.ExportTrainingData(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to export training data: %w", err)
			}

			if outputPath == "" {
				outputPath = filepath.Join(store.LocalQuillPath(root),
					fmt.Sprintf("training-%s.jsonl", time.Now().Format("20060102-150405")))
			}
			if err := os.WriteFile(outputPath, []byte(export.JSONL), 0600); err != nil {
				return fmt.Errorf("failed to write training data: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"path":  outputPath,
					"count": export.Count,
				})
			}
			fmt.Printf("✓ Exported %d training examples\n", export.Count)
			fmt.Printf("  Path: %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().String("output", "", "Output file path (default: auto-generated in .quill/)")

	return cmd
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Export or import a portable style profile",
	}
	cmd.AddCommand(
		newProfileExportCmd(),
		newProfileImportCmd(),
		newProfileShowCmd(),
	)
	return cmd
}

func newProfileExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export learned preferences as a shareable profile",
		Long: `Compose the current terminology patterns and style preferences into a
versioned profile JSON, for moving preferences to another device.

The profile holds only derived preferences, never document content.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			userID, _ := cmd.Flags().GetString("user")
			outputPath, _ := cmd.Flags().GetString("output")

			svc, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			profile, err := svc.ExportStyleProfile(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("failed to export profile: %w", err)
			}

			if outputPath == "" {
				return json.NewEncoder(os.Stdout).Encode(profile)
			}

			data, err := json.MarshalIndent(profile, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal profile: %w", err)
			}
			if err := os.WriteFile(outputPath, data, 0600); err != nil {
				return fmt.Errorf("failed to write profile: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"path":        outputPath,
					"terminology": len(profile.Terminology),
					"has_style":   profile.Style != nil,
				})
			}
			fmt.Printf("✓ Profile exported: %d terminology patterns\n", len(profile.Terminology))
			fmt.Printf("  Path: %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().String("user", "", "User ID to export as (default: default)")
	cmd.Flags().String("output", "", "Output file path (default: stdout)")

	return cmd
}

func newProfileImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a style profile exported on another device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read profile file: %w", err)
			}
			var profile models.StyleProfile
			if err := json.Unmarshal(data, &profile); err != nil {
				return fmt.Errorf("failed to parse profile file: %w", err)
			}

			svc, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			imported, err := svc.ImportStyleProfile(cmd.Context(), profile)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"user_id":     imported.UserID,
					"terminology": len(imported.Terminology),
					"has_style":   imported.Style != nil,
				})
			}
			fmt.Printf("✓ Profile imported for user %q\n", imported.UserID)
			fmt.Printf("  Terminology patterns: %d\n", len(imported.Terminology))
			return nil
		},
	}

	return cmd
}

func newProfileShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the imported profile for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			userID, _ := cmd.Flags().GetString("user")
			if userID == "" {
				userID = feedback.DefaultUserID
			}

			svc, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			profile, err := svc.GetStyleProfile(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"found":   profile != nil,
					"profile": profile,
				})
			}

			if profile == nil {
				fmt.Printf("No imported profile for user %q.\n", userID)
				return nil
			}
			fmt.Printf("Profile for %q (version %s):\n", profile.UserID, profile.Version)
			fmt.Printf("  Terminology patterns: %d\n", len(profile.Terminology))
			if profile.Style != nil {
				fmt.Printf("  Style samples: %d\n", profile.Style.SampleCount)
			}
			if profile.ImportedAt != nil {
				fmt.Printf("  Imported: %s\n", profile.ImportedAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().String("user", "", "User ID (default: default)")

	return cmd
}
