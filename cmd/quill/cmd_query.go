package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/springroll-app/quill/internal/enrich"
	"github.com/springroll-app/quill/internal/models"
)

func newFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "List captured feedback records",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			templateID, _ := cmd.Flags().GetString("template")
			sectionID, _ := cmd.Flags().GetString("section")
			limit, _ := cmd.Flags().GetInt("limit")

			svc, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := svc.GetFeedback(cmd.Context(), templateID, sectionID, limit)
			if err != nil {
				return fmt.Errorf("failed to list feedback: %w", err)
			}

			if jsonOut {
				if records == nil {
					records = []models.FeedbackRecord{}
				}
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"records": records,
					"count":   len(records),
				})
			}

			if len(records) == 0 {
				fmt.Println("No feedback captured yet.")
				fmt.Println("\nUse 'quill capture edit|accept|reject' to record feedback.")
				return nil
			}
			fmt.Printf("Feedback records (%d):\n\n", len(records))
			for i, r := range records {
				fmt.Printf("%d. [%s] %s/%s\n", i+1, r.FeedbackType, r.TemplateID, r.SectionID)
				fmt.Printf("   ID:   %s\n", r.ID)
				fmt.Printf("   Time: %s\n", r.Timestamp.Format(time.RFC3339))
				if r.FeedbackType == models.FeedbackEdit && r.Diff != nil {
					fmt.Printf("   Diff: %d substitutions, %+d chars, %+d words\n",
						len(r.Diff.Substitutions), r.Diff.LengthChange, r.Diff.WordCountChange)
				}
				if r.Reason != "" {
					fmt.Printf("   Reason: %s\n", r.Reason)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().String("template", "", "Filter by template ID")
	cmd.Flags().String("section", "", "Filter by section ID")
	cmd.Flags().Int("limit", 0, "Maximum records to list (default: 100)")

	return cmd
}

func newPatternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Show learned terminology substitutions",
		Long: `Show terminology patterns derived from edit history.

A substitution counts as a pattern once the user has made the same
word replacement at least 5 times (configurable via min_pattern_count).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			templateID, _ := cmd.Flags().GetString("template")

			svc, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			patterns, err := svc.TerminologyPatterns(cmd.Context(), templateID)
			if err != nil {
				return fmt.Errorf("failed to extract patterns: %w", err)
			}

			if jsonOut {
				if patterns == nil {
					patterns = []models.TerminologyPattern{}
				}
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"patterns": patterns,
					"count":    len(patterns),
				})
			}

			if len(patterns) == 0 {
				fmt.Println("No terminology patterns learned yet.")
				return nil
			}
			fmt.Printf("Terminology patterns (%d):\n\n", len(patterns))
			for i, p := range patterns {
				fmt.Printf("%d. %q → %q (%d corrections)\n", i+1, p.From, p.To, p.Count)
			}
			return nil
		},
	}

	cmd.Flags().String("template", "", "Restrict to one template")

	return cmd
}

func newStyleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "style",
		Short: "Show inferred style preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			templateID, _ := cmd.Flags().GetString("template")

			svc, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			style, err := svc.StylePreferences(cmd.Context(), templateID)
			if err != nil {
				return fmt.Errorf("failed to infer style: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"found": style != nil,
					"style": style,
				})
			}

			if style == nil {
				fmt.Println("Not enough feedback yet to infer style preferences.")
				return nil
			}
			fmt.Println("Style preferences:")
			fmt.Printf("  Avg sentence length: ~%d words\n", style.AvgSentenceLength)
			fmt.Printf("  Length tendency:     %s\n", style.LengthTendency)
			fmt.Printf("  Prefers bullets:     %t\n", style.PrefersBullets)
			fmt.Printf("  Based on %d samples\n", style.SampleCount)
			return nil
		},
	}

	cmd.Flags().String("template", "", "Restrict to one template")

	return cmd
}

func newExamplesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "examples",
		Short: "Show approved contents usable as few-shot examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			templateID, _ := cmd.Flags().GetString("template")
			sectionID, _ := cmd.Flags().GetString("section")
			limit, _ := cmd.Flags().GetInt("limit")

			svc, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			examples, err := svc.ExampleOutputs(cmd.Context(), templateID, sectionID, limit)
			if err != nil {
				return fmt.Errorf("failed to select examples: %w", err)
			}

			if jsonOut {
				if examples == nil {
					examples = []string{}
				}
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"examples": examples,
					"count":    len(examples),
				})
			}

			if len(examples) == 0 {
				fmt.Println("No approved examples yet for this template/section.")
				return nil
			}
			for i, ex := range examples {
				fmt.Printf("--- Example %d ---\n%s\n\n", i+1, ex)
			}
			return nil
		},
	}

	cmd.Flags().String("template", "", "Template ID (required)")
	cmd.Flags().String("section", "", "Section ID (required)")
	cmd.Flags().Int("limit", 0, "Maximum examples to show (default: 3)")
	cmd.MarkFlagRequired("template")
	cmd.MarkFlagRequired("section")

	return cmd
}

func newEnrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Augment a generation prompt with learned preferences",
		Long: `Build terminology, style and example guidance blocks from feedback
history and append them to a base prompt.

The prompt passes through unchanged when there is no learned history.

Example:
  quill enrich --template pitch-deck --section problem \
    --prompt "Write the problem section."`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			templateID, _ := cmd.Flags().GetString("template")
			sectionID, _ := cmd.Flags().GetString("section")
			prompt, _ := cmd.Flags().GetString("prompt")

			svc, st, cfg, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			builder := enrich.NewBuilder(svc, cfg.ExampleCount)
			e, err := builder.Build(cmd.Context(), templateID, sectionID)
			if err != nil {
				return fmt.Errorf("failed to build enrichment: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"prompt":        e.Apply(prompt),
					"enriched_with": e.EnrichedWith,
				})
			}

			fmt.Println(e.Apply(prompt))
			return nil
		},
	}

	cmd.Flags().String("template", "", "Template ID (required)")
	cmd.Flags().String("section", "", "Section ID (required)")
	cmd.Flags().String("prompt", "", "Base prompt to augment")
	cmd.MarkFlagRequired("template")
	cmd.MarkFlagRequired("section")

	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate feedback statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			svc, st, _, err := openService(root)
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := svc.GetStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to compute stats: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(stats)
			}

			fmt.Printf("Feedback records: %d\n", stats.Total)
			fmt.Printf("  Edits:   %d\n", stats.Edits)
			fmt.Printf("  Accepts: %d\n", stats.Accepts)
			fmt.Printf("  Rejects: %d\n", stats.Rejects)
			if len(stats.ByTemplate) > 0 {
				fmt.Println("\nBy template:")
				for templateID, count := range stats.ByTemplate {
					fmt.Printf("  %s: %d\n", templateID, count)
				}
			}
			if stats.OldestRecord != nil && stats.NewestRecord != nil {
				fmt.Printf("\nRange: %s to %s\n",
					stats.OldestRecord.Format(time.RFC3339),
					stats.NewestRecord.Format(time.RFC3339))
			}
			return nil
		},
	}
}
