// Package feedback exposes the engine's public API: capturing user feedback
// on generated sections and querying the preferences derived from it.
//
// Capture is best-effort telemetry. A capture call with missing generation
// metadata is a silent no-op rather than an error, because recording feedback
// must never block the user's document workflow. Storage failures, by
// contrast, are reported upward so the caller can decide to retry or proceed
// without learning.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/springroll-app/quill/internal/diff"
	"github.com/springroll-app/quill/internal/exemplars"
	"github.com/springroll-app/quill/internal/models"
	"github.com/springroll-app/quill/internal/patterns"
	"github.com/springroll-app/quill/internal/store"
)

// DefaultUserID keys style profiles when the caller does not name a user.
const DefaultUserID = "default"

// defaultFeedbackLimit caps GetFeedback results when no limit is given.
const defaultFeedbackLimit = 100

// Service is the façade over the store, diff engine, pattern extractor and
// exemplar selector. It is the only API external callers use.
type Service struct {
	store     store.FeedbackStore
	extractor *patterns.Extractor
	selector  *exemplars.Selector
}

// NewService creates a feedback service over the given store. A nil
// patternConfig selects the default significance thresholds.
func NewService(s store.FeedbackStore, patternConfig *patterns.Config) *Service {
	return &Service{
		store:     s,
		extractor: patterns.NewExtractor(s, patternConfig),
		selector:  exemplars.NewSelector(s),
	}
}

// newRecordID returns a collision-resistant identifier with a rough
// chronological prefix.
func newRecordID() string {
	return fmt.Sprintf("fb_%d_%s", time.Now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
}

// CaptureEdit records that the user modified generated text, computing a
// word-level diff between the two versions. Returns the stored record, or
// (nil, nil) when required metadata is missing.
func (s *Service) CaptureEdit(ctx context.Context, docID, templateID, sectionID, original, edited string, captureCtx map[string]interface{}) (*models.FeedbackRecord, error) {
	if templateID == "" || sectionID == "" || original == "" || edited == "" {
		return nil, nil
	}

	record := models.FeedbackRecord{
		ID:           newRecordID(),
		DocID:        docID,
		TemplateID:   templateID,
		SectionID:    sectionID,
		FeedbackType: models.FeedbackEdit,
		Original:     original,
		Edited:       edited,
		Diff:         diff.Compute(original, edited),
		Context:      captureCtx,
		Timestamp:    time.Now(),
	}
	if err := s.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to capture edit: %w", err)
	}
	return &record, nil
}

// CaptureAcceptance records that the user kept generated text unchanged.
func (s *Service) CaptureAcceptance(ctx context.Context, docID, templateID, sectionID, content string, captureCtx map[string]interface{}) (*models.FeedbackRecord, error) {
	if templateID == "" || sectionID == "" || content == "" {
		return nil, nil
	}

	record := models.FeedbackRecord{
		ID:           newRecordID(),
		DocID:        docID,
		TemplateID:   templateID,
		SectionID:    sectionID,
		FeedbackType: models.FeedbackAccept,
		Original:     content,
		Context:      captureCtx,
		Timestamp:    time.Now(),
	}
	if err := s.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to capture acceptance: %w", err)
	}
	return &record, nil
}

// CaptureRejection records that the user discarded generated text, with an
// optional free-text reason.
func (s *Service) CaptureRejection(ctx context.Context, docID, templateID, sectionID, content, reason string, captureCtx map[string]interface{}) (*models.FeedbackRecord, error) {
	if templateID == "" || sectionID == "" || content == "" {
		return nil, nil
	}

	record := models.FeedbackRecord{
		ID:           newRecordID(),
		DocID:        docID,
		TemplateID:   templateID,
		SectionID:    sectionID,
		FeedbackType: models.FeedbackReject,
		Original:     content,
		Reason:       reason,
		Context:      captureCtx,
		Timestamp:    time.Now(),
	}
	if err := s.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to capture rejection: %w", err)
	}
	return &record, nil
}

// GetFeedback returns records for a template, newest first, optionally
// filtered to a section. limit <= 0 selects the default of 100.
func (s *Service) GetFeedback(ctx context.Context, templateID, sectionID string, limit int) ([]models.FeedbackRecord, error) {
	if limit <= 0 {
		limit = defaultFeedbackLimit
	}
	records, err := s.store.GetAllByIndex(ctx, store.IndexTemplateID, templateID)
	if err != nil {
		return nil, err
	}
	if sectionID != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.SectionID == sectionID {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// TerminologyPatterns returns learned from→to substitutions for templateID
// (empty means all templates).
func (s *Service) TerminologyPatterns(ctx context.Context, templateID string) ([]models.TerminologyPattern, error) {
	return s.extractor.TerminologyPatterns(ctx, templateID)
}

// StylePreferences returns inferred style tendencies for templateID, or nil
// when the corpus is too small.
func (s *Service) StylePreferences(ctx context.Context, templateID string) (*models.StyleSummary, error) {
	return s.extractor.StylePreferences(ctx, templateID)
}

// ExampleOutputs returns up to limit prior kept contents for few-shot reuse.
func (s *Service) ExampleOutputs(ctx context.Context, templateID, sectionID string, limit int) ([]string, error) {
	return s.selector.ExampleOutputs(ctx, templateID, sectionID, limit)
}

// ExportTrainingData maps every edit record with both versions present into
// an instruction/input/output triple, plus a JSONL serialization. This is a
// pure format transform for potential offline fine-tuning; no learning
// happens here.
func (s *Service) ExportTrainingData(ctx context.Context) (*models.TrainingExport, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	export := &models.TrainingExport{Data: []models.TrainingExample{}}
	var lines []string
	for _, r := range records {
		if r.FeedbackType != models.FeedbackEdit || r.Original == "" || r.Edited == "" {
			continue
		}
		input := "{}"
		if r.Context != nil {
			data, err := json.Marshal(r.Context)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal context for record %s: %w", r.ID, err)
			}
			input = string(data)
		}
		example := models.TrainingExample{
			Instruction: fmt.Sprintf("Generate a %s section for a %s document.", r.SectionID, r.TemplateID),
			Input:       input,
			Output:      r.Edited,
		}
		export.Data = append(export.Data, example)

		line, err := json.Marshal(example)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal training example: %w", err)
		}
		lines = append(lines, string(line))
	}

	export.JSONL = strings.Join(lines, "\n")
	export.Count = len(export.Data)
	return export, nil
}

// ExportStyleProfile composes the current terminology and style views into a
// shareable profile. The profile is computed, not persisted; persistence
// happens only on import.
func (s *Service) ExportStyleProfile(ctx context.Context, userID string) (*models.StyleProfile, error) {
	if userID == "" {
		userID = DefaultUserID
	}
	terminology, err := s.extractor.TerminologyPatterns(ctx, "")
	if err != nil {
		return nil, err
	}
	style, err := s.extractor.StylePreferences(ctx, "")
	if err != nil {
		return nil, err
	}
	return &models.StyleProfile{
		UserID:      userID,
		Terminology: terminology,
		Style:       style,
		ExportedAt:  time.Now(),
		Version:     models.StyleProfileVersion,
	}, nil
}

// ImportStyleProfile persists a profile keyed by its user ID, overwriting
// any existing profile for that user (last write wins).
func (s *Service) ImportStyleProfile(ctx context.Context, profile models.StyleProfile) (*models.StyleProfile, error) {
	if profile.UserID == "" {
		profile.UserID = DefaultUserID
	}
	now := time.Now()
	profile.ImportedAt = &now
	if err := s.store.PutProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to import style profile: %w", err)
	}
	return &profile, nil
}

// GetStyleProfile returns the persisted profile for userID, or nil if none
// has been imported.
func (s *Service) GetStyleProfile(ctx context.Context, userID string) (*models.StyleProfile, error) {
	if userID == "" {
		userID = DefaultUserID
	}
	return s.store.GetProfile(ctx, userID)
}

// GetStats aggregates counts over the stored feedback corpus.
func (s *Service) GetStats(ctx context.Context) (*models.Stats, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.Stats{
		Total:      len(records),
		ByTemplate: make(map[string]int),
	}
	for i := range records {
		r := &records[i]
		switch r.FeedbackType {
		case models.FeedbackEdit:
			stats.Edits++
		case models.FeedbackAccept:
			stats.Accepts++
		case models.FeedbackReject:
			stats.Rejects++
		}
		stats.ByTemplate[r.TemplateID]++

		ts := r.Timestamp
		if stats.OldestRecord == nil || ts.Before(*stats.OldestRecord) {
			t := ts
			stats.OldestRecord = &t
		}
		if stats.NewestRecord == nil || ts.After(*stats.NewestRecord) {
			t := ts
			stats.NewestRecord = &t
		}
	}
	return stats, nil
}

// Clear wipes all feedback records and style profiles. Irreversible;
// intended for an explicit user-triggered privacy reset.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
