// Package patterns derives terminology and style preferences from the stored
// feedback corpus. Both views are recomputed from a full scan on every call;
// the corpus is personal, local data and stays small enough for that to be
// cheap. The significance thresholds are the contract: a preference is never
// reported until the evidence clears them.
package patterns

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/springroll-app/quill/internal/models"
	"github.com/springroll-app/quill/internal/store"
)

// Config holds the significance thresholds for pattern extraction.
type Config struct {
	// MinPatternCount is the minimum number of times a from→to substitution
	// must repeat before it is reported as a terminology pattern.
	MinPatternCount int

	// MinStyleSamples is the minimum number of feedback records required
	// before style preferences are inferred. Below this, StylePreferences
	// returns nil rather than fabricating a preference from sparse data.
	MinStyleSamples int

	// LengthTendencyDelta is the average character delta beyond which edits
	// are classified as expanding (+) or condensing (-).
	LengthTendencyDelta float64

	// DefaultSentenceLength is reported when the kept content contains no
	// sentences at all.
	DefaultSentenceLength int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinPatternCount:       5,
		MinStyleSamples:       10,
		LengthTendencyDelta:   50,
		DefaultSentenceLength: 15,
	}
}

// Extractor computes derived views over a feedback store.
type Extractor struct {
	store  store.FeedbackStore
	config Config
}

// NewExtractor creates an extractor with the given store and config.
// If config is nil, default thresholds are used.
func NewExtractor(s store.FeedbackStore, config *Config) *Extractor {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	return &Extractor{store: s, config: cfg}
}

// TerminologyPatterns returns the from→to substitutions observed at least
// MinPatternCount times across edit records, sorted by count descending.
// Counting is case-insensitive; the reported casing is taken from an
// observed occurrence. An empty templateID means all templates.
func (e *Extractor) TerminologyPatterns(ctx context.Context, templateID string) ([]models.TerminologyPattern, error) {
	records, err := e.corpus(ctx, templateID)
	if err != nil {
		return nil, err
	}

	type pairCount struct {
		from, to string // casing of the first observed occurrence
		count    int
	}
	counts := make(map[string]*pairCount)
	var keys []string

	for _, r := range records {
		if r.FeedbackType != models.FeedbackEdit || r.Diff == nil {
			continue
		}
		for _, sub := range r.Diff.Substitutions {
			key := strings.ToLower(sub.From) + "|" + strings.ToLower(sub.To)
			pc, ok := counts[key]
			if !ok {
				pc = &pairCount{from: sub.From, to: sub.To}
				counts[key] = pc
				keys = append(keys, key)
			}
			pc.count++
		}
	}

	var patterns []models.TerminologyPattern
	for _, key := range keys {
		pc := counts[key]
		if pc.count < e.config.MinPatternCount {
			continue
		}
		patterns = append(patterns, models.TerminologyPattern{
			From:  pc.from,
			To:    pc.to,
			Count: pc.count,
		})
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Count > patterns[j].Count
	})
	return patterns, nil
}

// StylePreferences infers stylistic tendencies from the feedback corpus for
// templateID (empty means all templates). It returns nil when fewer than
// MinStyleSamples records match: insufficient evidence, not an error.
func (e *Extractor) StylePreferences(ctx context.Context, templateID string) (*models.StyleSummary, error) {
	records, err := e.corpus(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if len(records) < e.config.MinStyleSamples {
		return nil, nil
	}

	// Only content the user kept (accepted as-is or edited) carries a style
	// signal; rejections tell us nothing about what the user wants.
	var kept []models.FeedbackRecord
	for _, r := range records {
		if r.FeedbackType == models.FeedbackAccept || r.FeedbackType == models.FeedbackEdit {
			kept = append(kept, r)
		}
	}

	summary := &models.StyleSummary{
		AvgSentenceLength: e.avgSentenceLength(kept),
		LengthTendency:    e.lengthTendency(records),
		PrefersBullets:    prefersBullets(kept),
		SampleCount:       len(records),
		LastUpdated:       time.Now(),
	}
	return summary, nil
}

func (e *Extractor) corpus(ctx context.Context, templateID string) ([]models.FeedbackRecord, error) {
	if templateID != "" {
		return e.store.GetAllByIndex(ctx, store.IndexTemplateID, templateID)
	}
	return e.store.GetAll(ctx)
}

func (e *Extractor) avgSentenceLength(kept []models.FeedbackRecord) int {
	totalWords := 0
	totalSentences := 0
	for i := range kept {
		content := kept[i].FinalContent()
		if content == "" {
			continue
		}
		totalSentences += countSentences(content)
		totalWords += len(strings.Fields(content))
	}
	if totalSentences == 0 {
		return e.config.DefaultSentenceLength
	}
	// Round to nearest whole word.
	return int(float64(totalWords)/float64(totalSentences) + 0.5)
}

func (e *Extractor) lengthTendency(records []models.FeedbackRecord) models.LengthTendency {
	sum := 0
	edits := 0
	for _, r := range records {
		if r.FeedbackType != models.FeedbackEdit || r.Diff == nil {
			continue
		}
		sum += r.Diff.LengthChange
		edits++
	}
	if edits == 0 {
		return models.TendencyNeutral
	}
	avg := float64(sum) / float64(edits)
	switch {
	case avg > e.config.LengthTendencyDelta:
		return models.TendencyExpand
	case avg < -e.config.LengthTendencyDelta:
		return models.TendencyCondense
	default:
		return models.TendencyNeutral
	}
}

// countSentences splits on sentence terminators and counts the non-empty
// fragments.
func countSentences(content string) int {
	fragments := strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	count := 0
	for _, f := range fragments {
		if strings.TrimSpace(f) != "" {
			count++
		}
	}
	return count
}

// prefersBullets reports whether more than half of the kept contents contain
// a bullet marker.
func prefersBullets(kept []models.FeedbackRecord) bool {
	if len(kept) == 0 {
		return false
	}
	bulleted := 0
	for i := range kept {
		content := kept[i].FinalContent()
		if content == "" {
			continue
		}
		if strings.Contains(content, "•") || strings.Contains(content, "- ") || strings.Contains(content, "* ") {
			bulleted++
		}
	}
	return float64(bulleted)/float64(len(kept)) > 0.5
}
