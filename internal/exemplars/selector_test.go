package exemplars

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/springroll-app/quill/internal/models"
	"github.com/springroll-app/quill/internal/store"
)

func longContent(tag string) string {
	return fmt.Sprintf("Exemplar %s: %s", tag, strings.Repeat("quality prose ", 8))
}

func putRecord(t *testing.T, s store.FeedbackStore, id string, ft models.FeedbackType, content string, ts time.Time) {
	t.Helper()
	rec := models.FeedbackRecord{
		ID:           id,
		TemplateID:   "pitch-deck",
		SectionID:    "problem",
		FeedbackType: ft,
		Original:     content,
		Timestamp:    ts,
	}
	if err := s.Put(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
}

func TestExampleOutputs_LimitAndRecency(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	sel := NewSelector(s)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		putRecord(t, s, fmt.Sprintf("r%d", i), models.FeedbackAccept, longContent(fmt.Sprintf("%d", i)), base.Add(time.Duration(i)*time.Minute))
	}

	examples, err := sel.ExampleOutputs(ctx, "pitch-deck", "problem", 2)
	if err != nil {
		t.Fatalf("ExampleOutputs() error = %v", err)
	}
	if len(examples) != 2 {
		t.Fatalf("got %d examples, want 2", len(examples))
	}
	// Newest qualifying record first.
	if !strings.Contains(examples[0], "Exemplar 4") {
		t.Errorf("examples[0] = %q, want the newest record", examples[0])
	}
	if !strings.Contains(examples[1], "Exemplar 3") {
		t.Errorf("examples[1] = %q, want the second newest record", examples[1])
	}
}

func TestExampleOutputs_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	sel := NewSelector(s)

	for i := 0; i < 6; i++ {
		putRecord(t, s, fmt.Sprintf("r%d", i), models.FeedbackAccept, longContent(fmt.Sprintf("%d", i)), time.Now())
	}

	examples, err := sel.ExampleOutputs(ctx, "pitch-deck", "problem", 0)
	if err != nil {
		t.Fatalf("ExampleOutputs() error = %v", err)
	}
	if len(examples) != DefaultLimit {
		t.Errorf("got %d examples, want default %d", len(examples), DefaultLimit)
	}
}

func TestExampleOutputs_FiltersRejectionsAndShortContent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	sel := NewSelector(s)

	putRecord(t, s, "rejected", models.FeedbackReject, longContent("rejected"), time.Now())
	putRecord(t, s, "short", models.FeedbackAccept, "Too short.", time.Now())
	putRecord(t, s, "kept", models.FeedbackAccept, longContent("kept"), time.Now())

	examples, err := sel.ExampleOutputs(ctx, "pitch-deck", "problem", 5)
	if err != nil {
		t.Fatalf("ExampleOutputs() error = %v", err)
	}
	if len(examples) != 1 {
		t.Fatalf("got %d examples, want 1", len(examples))
	}
	if !strings.Contains(examples[0], "kept") {
		t.Errorf("examples[0] = %q, want the kept record", examples[0])
	}
}

func TestExampleOutputs_UsesEditedContent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	sel := NewSelector(s)

	rec := models.FeedbackRecord{
		ID:           "edited",
		TemplateID:   "pitch-deck",
		SectionID:    "problem",
		FeedbackType: models.FeedbackEdit,
		Original:     longContent("generated"),
		Edited:       longContent("user-final"),
		Timestamp:    time.Now(),
	}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}

	examples, err := sel.ExampleOutputs(ctx, "pitch-deck", "problem", 1)
	if err != nil {
		t.Fatalf("ExampleOutputs() error = %v", err)
	}
	if len(examples) != 1 {
		t.Fatalf("got %d examples, want 1", len(examples))
	}
	if !strings.Contains(examples[0], "user-final") {
		t.Errorf("examples[0] = %q, want the edited version", examples[0])
	}
}
