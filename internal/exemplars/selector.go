// Package exemplars retrieves previously approved or edited section contents
// for few-shot reuse in generation prompts.
package exemplars

import (
	"context"

	"github.com/springroll-app/quill/internal/models"
	"github.com/springroll-app/quill/internal/store"
)

const (
	// DefaultLimit is the number of exemplars returned when the caller does
	// not specify one.
	DefaultLimit = 3

	// fetchLimit bounds the store read; selection happens in memory over
	// the most recent records.
	fetchLimit = 50

	// minContentLength drops fragments too short to be useful few-shot
	// examples.
	minContentLength = 50
)

// Selector picks exemplar contents from a feedback store.
type Selector struct {
	store store.FeedbackStore
}

// NewSelector creates a selector over the given store.
func NewSelector(s store.FeedbackStore) *Selector {
	return &Selector{store: s}
}

// ExampleOutputs returns up to limit kept contents for the template/section
// pair, newest first. Only accepted or edited records qualify, and content
// under 50 characters is skipped. limit <= 0 selects the default of 3.
// Ordering is recency-biased, not quality-ranked.
func (s *Selector) ExampleOutputs(ctx context.Context, templateID, sectionID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	records, err := s.store.Recent(ctx, templateID, sectionID, fetchLimit)
	if err != nil {
		return nil, err
	}

	var examples []string
	for i := range records {
		if len(examples) >= limit {
			break
		}
		r := &records[i]
		if r.FeedbackType != models.FeedbackAccept && r.FeedbackType != models.FeedbackEdit {
			continue
		}
		content := r.FinalContent()
		if len(content) <= minContentLength {
			continue
		}
		examples = append(examples, content)
	}
	return examples, nil
}
