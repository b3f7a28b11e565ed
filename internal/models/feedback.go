// Package models defines the core domain types for feedback capture and
// the derived personalization artifacts.
package models

import (
	"time"
)

// FeedbackType classifies how the user responded to a generated section.
type FeedbackType string

const (
	// FeedbackEdit means the user modified the generated text before keeping it.
	FeedbackEdit FeedbackType = "edit"

	// FeedbackAccept means the user kept the generated text unchanged.
	FeedbackAccept FeedbackType = "accept"

	// FeedbackReject means the user discarded the text (e.g. hit regenerate).
	FeedbackReject FeedbackType = "reject"
)

// Valid reports whether t is one of the known feedback types.
func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackEdit, FeedbackAccept, FeedbackReject:
		return true
	}
	return false
}

// FeedbackRecord is one immutable observation of how the user responded to a
// generated section. Records are never mutated once written; corrections are
// new records.
type FeedbackRecord struct {
	// Unique identifier (timestamp prefix + random suffix)
	ID string `json:"id" yaml:"id"`

	// External references to the document/template/section being rated.
	// Opaque to this engine.
	DocID      string `json:"doc_id" yaml:"doc_id"`
	TemplateID string `json:"template_id" yaml:"template_id"`
	SectionID  string `json:"section_id" yaml:"section_id"`

	FeedbackType FeedbackType `json:"feedback_type" yaml:"feedback_type"`

	// The generated text shown to the user. Always present.
	Original string `json:"original" yaml:"original"`

	// Final user text. Only set for edit records.
	Edited string `json:"edited,omitempty" yaml:"edited,omitempty"`

	// Word-level diff between Original and Edited. Only set for edit records.
	Diff *Diff `json:"diff,omitempty" yaml:"diff,omitempty"`

	// Free-text rationale. Only meaningful for reject records.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Caller-supplied context (company name, industry, ...). Stored but never
	// interpreted by this engine.
	Context map[string]interface{} `json:"context,omitempty" yaml:"context,omitempty"`

	// When the feedback was captured
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// FinalContent returns the text the user ultimately kept: the edited version
// when present, otherwise the original.
func (r *FeedbackRecord) FinalContent() string {
	if r.Edited != "" {
		return r.Edited
	}
	return r.Original
}

// Substitution is a position-aligned word replacement observed in an edit.
type Substitution struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Diff summarizes word-level changes between original and edited text.
type Diff struct {
	// Words added by the edit (present in edited, absent from original)
	Additions []string `json:"additions" yaml:"additions"`

	// Words removed by the edit
	Deletions []string `json:"deletions" yaml:"deletions"`

	// Position-aligned replacements, capped at 10
	Substitutions []Substitution `json:"substitutions" yaml:"substitutions"`

	// Character delta (len(edited) - len(original))
	LengthChange int `json:"length_change" yaml:"length_change"`

	// Token-count delta
	WordCountChange int `json:"word_count_change" yaml:"word_count_change"`
}

// TerminologyPattern is a from→to substitution seen often enough to be
// treated as a durable user preference.
type TerminologyPattern struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Count int    `json:"count" yaml:"count"`
}

// LengthTendency describes whether the user's edits tend to grow or shrink
// the generated text.
type LengthTendency string

const (
	TendencyExpand   LengthTendency = "expand"
	TendencyCondense LengthTendency = "condense"
	TendencyNeutral  LengthTendency = "neutral"
)

// StyleSummary holds stylistic tendencies inferred from the feedback corpus.
// A nil summary means "not enough evidence", which is distinct from a neutral
// preference.
type StyleSummary struct {
	// Average words per sentence across kept content
	AvgSentenceLength int `json:"avg_sentence_length" yaml:"avg_sentence_length"`

	LengthTendency LengthTendency `json:"length_tendency" yaml:"length_tendency"`

	// True when the majority of kept content uses bullet markers
	PrefersBullets bool `json:"prefers_bullets" yaml:"prefers_bullets"`

	// Number of records the summary was computed from
	SampleCount int `json:"sample_count" yaml:"sample_count"`

	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`
}

// StyleProfileVersion is the current export format version for style profiles.
const StyleProfileVersion = "1.0"

// StyleProfile is the exportable/importable personalization artifact. It is
// computed on demand from the feedback corpus and only persisted when
// explicitly imported (e.g. shared between team members).
type StyleProfile struct {
	UserID      string               `json:"user_id" yaml:"user_id"`
	Terminology []TerminologyPattern `json:"terminology" yaml:"terminology"`
	Style       *StyleSummary        `json:"style" yaml:"style"`
	ExportedAt  time.Time            `json:"exported_at" yaml:"exported_at"`
	ImportedAt  *time.Time           `json:"imported_at,omitempty" yaml:"imported_at,omitempty"`
	Version     string               `json:"version" yaml:"version"`
}

// TrainingExample is one instruction/input/output triple derived from an
// edit record, suitable for offline fine-tuning.
type TrainingExample struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

// TrainingExport bundles the training examples with their JSONL serialization.
type TrainingExport struct {
	Data  []TrainingExample `json:"data"`
	JSONL string            `json:"jsonl"`
	Count int               `json:"count"`
}

// Stats summarizes the stored feedback corpus.
type Stats struct {
	Total   int `json:"total"`
	Edits   int `json:"edits"`
	Accepts int `json:"accepts"`
	Rejects int `json:"rejects"`

	// Record counts keyed by template ID
	ByTemplate map[string]int `json:"by_template"`

	OldestRecord *time.Time `json:"oldest_record,omitempty"`
	NewestRecord *time.Time `json:"newest_record,omitempty"`
}
