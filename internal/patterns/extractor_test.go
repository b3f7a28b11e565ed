package patterns

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/springroll-app/quill/internal/models"
	"github.com/springroll-app/quill/internal/store"
)

func editRecord(id, templateID string, subs []models.Substitution, lengthChange int) models.FeedbackRecord {
	return models.FeedbackRecord{
		ID:           id,
		TemplateID:   templateID,
		SectionID:    "summary",
		FeedbackType: models.FeedbackEdit,
		Original:     "original text",
		Edited:       "edited text",
		Diff: &models.Diff{
			Substitutions: subs,
			LengthChange:  lengthChange,
		},
		Timestamp: time.Now(),
	}
}

func acceptRecord(id, templateID, content string) models.FeedbackRecord {
	return models.FeedbackRecord{
		ID:           id,
		TemplateID:   templateID,
		SectionID:    "summary",
		FeedbackType: models.FeedbackAccept,
		Original:     content,
		Timestamp:    time.Now(),
	}
}

func TestTerminologyPatterns_Threshold(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	e := NewExtractor(s, nil)

	sub := []models.Substitution{{From: "utilize", To: "use"}}

	// Four occurrences: below the significance threshold.
	for i := 0; i < 4; i++ {
		if err := s.Put(ctx, editRecord(fmt.Sprintf("r%d", i), "pitch-deck", sub, 0)); err != nil {
			t.Fatal(err)
		}
	}

	patterns, err := e.TerminologyPatterns(ctx, "")
	if err != nil {
		t.Fatalf("TerminologyPatterns() error = %v", err)
	}
	if len(patterns) != 0 {
		t.Errorf("with 4 occurrences, got %d patterns, want 0", len(patterns))
	}

	// The fifth occurrence crosses the threshold.
	if err := s.Put(ctx, editRecord("r4", "pitch-deck", sub, 0)); err != nil {
		t.Fatal(err)
	}

	patterns, err = e.TerminologyPatterns(ctx, "")
	if err != nil {
		t.Fatalf("TerminologyPatterns() error = %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("with 5 occurrences, got %d patterns, want 1", len(patterns))
	}
	p := patterns[0]
	if p.From != "utilize" || p.To != "use" || p.Count != 5 {
		t.Errorf("pattern = %+v, want {utilize use 5}", p)
	}
}

func TestTerminologyPatterns_CaseInsensitiveCounting(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	e := NewExtractor(s, nil)

	// Mixed casing must aggregate under one key.
	variants := []models.Substitution{
		{From: "Utilize", To: "Use"},
		{From: "utilize", To: "use"},
		{From: "UTILIZE", To: "USE"},
		{From: "utilize", To: "Use"},
		{From: "Utilize", To: "use"},
	}
	for i, v := range variants {
		rec := editRecord(fmt.Sprintf("r%d", i), "pitch-deck", []models.Substitution{v}, 0)
		if err := s.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	patterns, err := e.TerminologyPatterns(ctx, "")
	if err != nil {
		t.Fatalf("TerminologyPatterns() error = %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("got %d patterns, want 1", len(patterns))
	}
	if patterns[0].Count != 5 {
		t.Errorf("Count = %d, want 5", patterns[0].Count)
	}
}

func TestTerminologyPatterns_TemplateFilter(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	e := NewExtractor(s, nil)

	sub := []models.Substitution{{From: "leverage", To: "apply"}}
	for i := 0; i < 5; i++ {
		if err := s.Put(ctx, editRecord(fmt.Sprintf("a%d", i), "pitch-deck", sub, 0)); err != nil {
			t.Fatal(err)
		}
	}

	patterns, err := e.TerminologyPatterns(ctx, "grant-proposal")
	if err != nil {
		t.Fatalf("TerminologyPatterns() error = %v", err)
	}
	if len(patterns) != 0 {
		t.Errorf("other template got %d patterns, want 0", len(patterns))
	}

	patterns, err = e.TerminologyPatterns(ctx, "pitch-deck")
	if err != nil {
		t.Fatalf("TerminologyPatterns() error = %v", err)
	}
	if len(patterns) != 1 {
		t.Errorf("matching template got %d patterns, want 1", len(patterns))
	}
}

func TestTerminologyPatterns_SortedByCountDescending(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	e := NewExtractor(s, nil)

	common := []models.Substitution{{From: "utilize", To: "use"}}
	rare := []models.Substitution{{From: "synergy", To: "teamwork"}}
	id := 0
	put := func(subs []models.Substitution, n int) {
		for i := 0; i < n; i++ {
			if err := s.Put(ctx, editRecord(fmt.Sprintf("r%d", id), "t", subs, 0)); err != nil {
				t.Fatal(err)
			}
			id++
		}
	}
	put(rare, 5)
	put(common, 8)

	patterns, err := e.TerminologyPatterns(ctx, "")
	if err != nil {
		t.Fatalf("TerminologyPatterns() error = %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("got %d patterns, want 2", len(patterns))
	}
	if patterns[0].From != "utilize" || patterns[0].Count != 8 {
		t.Errorf("patterns[0] = %+v, want utilize with count 8", patterns[0])
	}
	if patterns[1].From != "synergy" || patterns[1].Count != 5 {
		t.Errorf("patterns[1] = %+v, want synergy with count 5", patterns[1])
	}
}

func TestStylePreferences_NullBelowMinSamples(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	e := NewExtractor(s, nil)

	for i := 0; i < 9; i++ {
		if err := s.Put(ctx, acceptRecord(fmt.Sprintf("r%d", i), "t", "Fine content here.")); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := e.StylePreferences(ctx, "")
	if err != nil {
		t.Fatalf("StylePreferences() error = %v", err)
	}
	if summary != nil {
		t.Errorf("with 9 records, got %+v, want nil", summary)
	}

	// The tenth record crosses the evidence threshold.
	if err := s.Put(ctx, acceptRecord("r9", "t", "Fine content here.")); err != nil {
		t.Fatal(err)
	}
	summary, err = e.StylePreferences(ctx, "")
	if err != nil {
		t.Fatalf("StylePreferences() error = %v", err)
	}
	if summary == nil {
		t.Fatal("with 10 records, got nil, want a summary")
	}
	if summary.SampleCount != 10 {
		t.Errorf("SampleCount = %d, want 10", summary.SampleCount)
	}
}

func TestStylePreferences_AvgSentenceLength(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	e := NewExtractor(s, nil)

	// 6 words over 2 sentences: average of 3.
	for i := 0; i < 10; i++ {
		if err := s.Put(ctx, acceptRecord(fmt.Sprintf("r%d", i), "t", "I like cats. Dogs are great too.")); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := e.StylePreferences(ctx, "")
	if err != nil {
		t.Fatalf("StylePreferences() error = %v", err)
	}
	if summary == nil {
		t.Fatal("got nil summary")
	}
	if summary.AvgSentenceLength != 3 {
		t.Errorf("AvgSentenceLength = %d, want 3", summary.AvgSentenceLength)
	}
}

func TestStylePreferences_DefaultSentenceLength(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	e := NewExtractor(s, nil)

	// Rejections only: nothing kept, so no sentences to measure.
	for i := 0; i < 10; i++ {
		rec := models.FeedbackRecord{
			ID:           fmt.Sprintf("r%d", i),
			TemplateID:   "t",
			SectionID:    "s",
			FeedbackType: models.FeedbackReject,
			Original:     "Rejected content.",
			Reason:       "off topic",
			Timestamp:    time.Now(),
		}
		if err := s.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := e.StylePreferences(ctx, "")
	if err != nil {
		t.Fatalf("StylePreferences() error = %v", err)
	}
	if summary == nil {
		t.Fatal("got nil summary")
	}
	if summary.AvgSentenceLength != 15 {
		t.Errorf("AvgSentenceLength = %d, want default 15", summary.AvgSentenceLength)
	}
}

func TestStylePreferences_LengthTendency(t *testing.T) {
	tests := []struct {
		name         string
		lengthChange int
		want         models.LengthTendency
	}{
		{"expanding edits", 120, models.TendencyExpand},
		{"condensing edits", -120, models.TendencyCondense},
		{"small changes", 10, models.TendencyNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := store.NewMemoryStore()
			e := NewExtractor(s, nil)

			for i := 0; i < 10; i++ {
				rec := editRecord(fmt.Sprintf("r%d", i), "t", nil, tt.lengthChange)
				if err := s.Put(ctx, rec); err != nil {
					t.Fatal(err)
				}
			}

			summary, err := e.StylePreferences(ctx, "")
			if err != nil {
				t.Fatalf("StylePreferences() error = %v", err)
			}
			if summary == nil {
				t.Fatal("got nil summary")
			}
			if summary.LengthTendency != tt.want {
				t.Errorf("LengthTendency = %q, want %q", summary.LengthTendency, tt.want)
			}
		})
	}
}

func TestStylePreferences_PrefersBullets(t *testing.T) {
	tests := []struct {
		name     string
		bulleted int
		plain    int
		want     bool
	}{
		{"6 of 10 bulleted", 6, 4, true},
		{"4 of 10 bulleted", 4, 6, false},
		{"exactly half is not a preference", 5, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := store.NewMemoryStore()
			e := NewExtractor(s, nil)

			id := 0
			for i := 0; i < tt.bulleted; i++ {
				rec := acceptRecord(fmt.Sprintf("r%d", id), "t", "Highlights:\n- first point\n- second point")
				if err := s.Put(ctx, rec); err != nil {
					t.Fatal(err)
				}
				id++
			}
			for i := 0; i < tt.plain; i++ {
				rec := acceptRecord(fmt.Sprintf("r%d", id), "t", "A paragraph of flowing prose without any list markers.")
				if err := s.Put(ctx, rec); err != nil {
					t.Fatal(err)
				}
				id++
			}

			summary, err := e.StylePreferences(ctx, "")
			if err != nil {
				t.Fatalf("StylePreferences() error = %v", err)
			}
			if summary == nil {
				t.Fatal("got nil summary")
			}
			if summary.PrefersBullets != tt.want {
				t.Errorf("PrefersBullets = %v, want %v", summary.PrefersBullets, tt.want)
			}
		})
	}
}
