// Package enrich turns learned patterns into guidance text blocks and merges
// them into generation prompts. Enrichment is strictly additive: when there
// is no history the prompt passes through untouched, and an enrichment
// failure never blocks generation.
package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/springroll-app/quill/internal/feedback"
	"github.com/springroll-app/quill/internal/models"
)

const (
	// maxTerminologyLines caps the terminology guidance block.
	maxTerminologyLines = 10

	// maxExampleChars truncates embedded exemplars to keep prompts bounded.
	maxExampleChars = 500

	// DefaultExampleCount is how many exemplars the builder requests.
	DefaultExampleCount = 2
)

// Enrichment holds the optional guidance blocks derived from feedback
// history, plus a summary of what was applied.
type Enrichment struct {
	TerminologyBlock string `json:"terminology_block,omitempty"`
	StyleBlock       string `json:"style_block,omitempty"`
	ExamplesBlock    string `json:"examples_block,omitempty"`

	// EnrichedWith reports what the prompt was augmented with, for the
	// caller's telemetry.
	EnrichedWith EnrichedWith `json:"enriched_with"`
}

// EnrichedWith summarizes the applied enrichment.
type EnrichedWith struct {
	Terminology int  `json:"terminology"`
	Style       bool `json:"style"`
	Examples    int  `json:"examples"`
}

// Empty reports whether no guidance was derived.
func (e *Enrichment) Empty() bool {
	return e.TerminologyBlock == "" && e.StyleBlock == "" && e.ExamplesBlock == ""
}

// Apply appends the guidance blocks to a base prompt. An empty enrichment
// returns the prompt unchanged.
func (e *Enrichment) Apply(prompt string) string {
	if e.Empty() {
		return prompt
	}
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString(e.StyleBlock)
	b.WriteString(e.TerminologyBlock)
	b.WriteString(e.ExamplesBlock)
	return b.String()
}

// Builder assembles enrichments from a feedback service.
type Builder struct {
	svc          *feedback.Service
	exampleCount int
}

// NewBuilder creates a builder. exampleCount <= 0 selects the default of 2.
func NewBuilder(svc *feedback.Service, exampleCount int) *Builder {
	if exampleCount <= 0 {
		exampleCount = DefaultExampleCount
	}
	return &Builder{svc: svc, exampleCount: exampleCount}
}

// Build derives the enrichment blocks for a template/section pair. Each
// block is independent; a fresh user with no history yields an empty
// enrichment, never an error the generation path must handle.
func (b *Builder) Build(ctx context.Context, templateID, sectionID string) (*Enrichment, error) {
	e := &Enrichment{}

	terminology, err := b.svc.TerminologyPatterns(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load terminology patterns: %w", err)
	}
	e.TerminologyBlock = TerminologyBlock(terminology)
	e.EnrichedWith.Terminology = len(terminology)

	style, err := b.svc.StylePreferences(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load style preferences: %w", err)
	}
	e.StyleBlock = StyleBlock(style)
	e.EnrichedWith.Style = style != nil

	examples, err := b.svc.ExampleOutputs(ctx, templateID, sectionID, b.exampleCount)
	if err != nil {
		return nil, fmt.Errorf("failed to load example outputs: %w", err)
	}
	e.ExamplesBlock = ExamplesBlock(examples)
	e.EnrichedWith.Examples = len(examples)

	return e, nil
}

// TerminologyBlock formats learned substitutions as prompt guidance,
// listing at most 10 pairs with their correction counts.
func TerminologyBlock(patterns []models.TerminologyPattern) string {
	if len(patterns) == 0 {
		return ""
	}
	if len(patterns) > maxTerminologyLines {
		patterns = patterns[:maxTerminologyLines]
	}
	var b strings.Builder
	b.WriteString("\n\n[TERMINOLOGY - Use these preferred terms]\n")
	for _, p := range patterns {
		fmt.Fprintf(&b, "- Use %q instead of %q (%d user corrections)\n", p.To, p.From, p.Count)
	}
	return b.String()
}

// StyleBlock formats inferred style tendencies as prompt guidance. A nil
// summary (insufficient evidence) yields an empty block.
func StyleBlock(style *models.StyleSummary) string {
	if style == nil {
		return ""
	}
	tendency := "Balanced length"
	switch style.LengthTendency {
	case models.TendencyExpand:
		tendency = "User prefers more detail"
	case models.TendencyCondense:
		tendency = "User prefers concise content"
	}
	formatting := "Use flowing prose"
	if style.PrefersBullets {
		formatting = "Use bullet points for lists"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n\n[STYLE PREFERENCES - Based on %d samples]\n", style.SampleCount)
	fmt.Fprintf(&b, "- Target sentence length: ~%d words\n", style.AvgSentenceLength)
	fmt.Fprintf(&b, "- Content tendency: %s\n", tendency)
	fmt.Fprintf(&b, "- Formatting: %s\n", formatting)
	return b.String()
}

// ExamplesBlock embeds prior approved outputs as few-shot examples, each
// truncated to 500 characters.
func ExamplesBlock(examples []string) string {
	if len(examples) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n[EXAMPLES - Content this user has approved]\n")
	for i, ex := range examples {
		truncated := ex
		suffix := ""
		if len(ex) > maxExampleChars {
			truncated = ex[:maxExampleChars]
			suffix = "..."
		}
		fmt.Fprintf(&b, "--- Example %d ---\n%s%s\n", i+1, truncated, suffix)
	}
	return b.String()
}
