package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/springroll-app/quill/internal/config"
	"github.com/springroll-app/quill/internal/feedback"
	"github.com/springroll-app/quill/internal/store"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "quill",
		Short: "Quill - feedback-driven personalization for generated documents",
		Long: `quill learns how a user writes from their feedback on AI-generated
document sections.

It captures edits, acceptances and rejections, extracts terminology and
style preferences from them, and serves that learned context back to
generation prompts. All data stays in the local .quill directory.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for tool consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newCaptureCmd(),
		newFeedbackCmd(),
		newPatternsCmd(),
		newStyleCmd(),
		newExamplesCmd(),
		newEnrichCmd(),
		newStatsCmd(),
		newExportTrainingCmd(),
		newProfileCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newClearCmd(),
		newMCPServerCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openService opens the feedback service for a project root, creating the
// .quill directory on first use. The caller must Close the returned store.
func openService(root string) (*feedback.Service, *store.SQLiteStore, config.Config, error) {
	if err := store.EnsureQuillDir(root); err != nil {
		return nil, nil, config.Config{}, err
	}
	if err := store.EnsureGitignore(store.LocalQuillPath(root)); err != nil {
		return nil, nil, config.Config{}, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, config.Config{}, err
	}

	st := store.NewSQLiteStore(cfg.DBPath)
	return feedback.NewService(st, cfg.PatternConfig()), st, cfg, nil
}

// parseContext decodes the --context flag, an optional JSON object of
// caller metadata stored verbatim with the record.
func parseContext(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	var ctx map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &ctx); err != nil {
		return nil, fmt.Errorf("invalid --context JSON: %w", err)
	}
	return ctx, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{"version": version})
			} else {
				fmt.Printf("quill version %s\n", version)
			}
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize feedback tracking in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			quillDir := store.LocalQuillPath(root)

			if err := store.EnsureQuillDir(root); err != nil {
				return err
			}
			if err := store.EnsureGitignore(quillDir); err != nil {
				return err
			}

			// Write a commented default config on first init only.
			configPath := filepath.Join(quillDir, config.FileName)
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				defaults := config.Default(root)
				content := fmt.Sprintf(`# Quill configuration
# Thresholds control how much evidence is needed before preferences
# are treated as learned.
min_pattern_count: %d
min_style_samples: %d
example_count: %d
`, defaults.MinPatternCount, defaults.MinStyleSamples, defaults.ExampleCount)
				if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
					return fmt.Errorf("failed to create %s: %w", config.FileName, err)
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{
					"status": "initialized",
					"path":   quillDir,
				})
			} else {
				fmt.Printf("Initialized .quill/ in %s\n", root)
			}

			return nil
		},
	}
}

func newCaptureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Record feedback on a generated section",
	}
	cmd.AddCommand(
		newCaptureEditCmd(),
		newCaptureAcceptCmd(),
		newCaptureRejectCmd(),
	)
	return cmd
}

func newCaptureEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Record that the user edited generated text",
		Long: `Record that the user modified a generated section, computing a
word-level diff between the generated and final versions.

Example:
  quill capture edit --template pitch-deck --section problem \
    --original "We utilize cutting-edge tools" \
    --edited "We use modern tools"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			docID, _ := cmd.Flags().GetString("doc")
			templateID, _ := cmd.Flags().GetString("template")
			sectionID, _ := cmd.Flags().GetString("section")
			original, _ := cmd.Flags().GetString("original")
			edited, _ := cmd.Flags().GetString("edited")
			rawCtx, _ := cmd.Flags().GetString("context")

			captureCtx, err := parseContext(rawCtx)
			if err != nil {
				return err
			}

			svc, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			record, err := svc.CaptureEdit(cmd.Context(), docID, templateID, sectionID, original, edited, captureCtx)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"captured": record != nil,
					"record":   record,
				})
			}
			if record == nil {
				fmt.Println("Nothing captured: template, section, original and edited are all required.")
				return nil
			}
			fmt.Printf("✓ Edit captured: %s\n", record.ID)
			if record.Diff != nil {
				fmt.Printf("  Substitutions: %d, words added: %d, words removed: %d\n",
					len(record.Diff.Substitutions), len(record.Diff.Additions), len(record.Diff.Deletions))
			}
			return nil
		},
	}

	cmd.Flags().String("doc", "", "Document ID")
	cmd.Flags().String("template", "", "Template ID (required)")
	cmd.Flags().String("section", "", "Section ID (required)")
	cmd.Flags().String("original", "", "The generated text (required)")
	cmd.Flags().String("edited", "", "The user's final text (required)")
	cmd.Flags().String("context", "", "Caller context as a JSON object")

	return cmd
}

func newCaptureAcceptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Record that the user accepted generated text unchanged",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			docID, _ := cmd.Flags().GetString("doc")
			templateID, _ := cmd.Flags().GetString("template")
			sectionID, _ := cmd.Flags().GetString("section")
			content, _ := cmd.Flags().GetString("content")
			rawCtx, _ := cmd.Flags().GetString("context")

			captureCtx, err := parseContext(rawCtx)
			if err != nil {
				return err
			}

			svc, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			record, err := svc.CaptureAcceptance(cmd.Context(), docID, templateID, sectionID, content, captureCtx)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"captured": record != nil,
					"record":   record,
				})
			}
			if record == nil {
				fmt.Println("Nothing captured: template, section and content are all required.")
				return nil
			}
			fmt.Printf("✓ Acceptance captured: %s\n", record.ID)
			return nil
		},
	}

	cmd.Flags().String("doc", "", "Document ID")
	cmd.Flags().String("template", "", "Template ID (required)")
	cmd.Flags().String("section", "", "Section ID (required)")
	cmd.Flags().String("content", "", "The accepted text (required)")
	cmd.Flags().String("context", "", "Caller context as a JSON object")

	return cmd
}

func newCaptureRejectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reject",
		Short: "Record that the user rejected or regenerated a section",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			docID, _ := cmd.Flags().GetString("doc")
			templateID, _ := cmd.Flags().GetString("template")
			sectionID, _ := cmd.Flags().GetString("section")
			content, _ := cmd.Flags().GetString("content")
			reason, _ := cmd.Flags().GetString("reason")
			rawCtx, _ := cmd.Flags().GetString("context")

			captureCtx, err := parseContext(rawCtx)
			if err != nil {
				return err
			}

			svc, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			record, err := svc.CaptureRejection(cmd.Context(), docID, templateID, sectionID, content, reason, captureCtx)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"captured": record != nil,
					"record":   record,
				})
			}
			if record == nil {
				fmt.Println("Nothing captured: template, section and content are all required.")
				return nil
			}
			fmt.Printf("✓ Rejection captured: %s\n", record.ID)
			if record.Reason != "" {
				fmt.Printf("  Reason: %s\n", record.Reason)
			}
			return nil
		},
	}

	cmd.Flags().String("doc", "", "Document ID")
	cmd.Flags().String("template", "", "Template ID (required)")
	cmd.Flags().String("section", "", "Section ID (required)")
	cmd.Flags().String("content", "", "The rejected text (required)")
	cmd.Flags().String("reason", "", "Optional reason for the rejection")
	cmd.Flags().String("context", "", "Caller context as a JSON object")

	return cmd
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all feedback records and style profiles",
		Long: `Permanently delete all captured feedback and imported style profiles.

This is irreversible. Requires --force to run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			force, _ := cmd.Flags().GetBool("force")

			if !force {
				return fmt.Errorf("refusing to delete feedback data without --force")
			}

			svc, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := svc.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear feedback data: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "cleared"})
			}
			fmt.Println("✓ All feedback data deleted")
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Confirm deletion")

	return cmd
}
