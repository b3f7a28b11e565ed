// Package diff computes word-level diffs between generated and user-edited
// text. It deliberately uses a simple positional heuristic rather than a
// sequence-alignment algorithm: the output feeds terminology learning, and
// which substitutions get detected is part of the engine's observable
// behavior.
package diff

import (
	"strings"

	"github.com/springroll-app/quill/internal/models"
)

const (
	// minWordLength filters punctuation and stopword noise out of the
	// addition/deletion lists.
	minWordLength = 3

	// maxSubstitutions caps the substitution list per diff.
	maxSubstitutions = 10

	// maxLengthDelta is the character-length gate for treating two
	// position-aligned words as a substitution rather than unrelated churn.
	maxLengthDelta = 5
)

// Compute returns a word-level diff between original and edited text, or nil
// when either input is empty. The result is deterministic for identical
// inputs and never panics.
//
// Substitution detection is index-aligned up to the shorter token count. An
// insertion early in the text will cascade spurious substitutions for the
// positions after it; that is an accepted limitation of the heuristic, not a
// bug to fix with a smarter alignment.
func Compute(original, edited string) *models.Diff {
	if original == "" || edited == "" {
		return nil
	}

	originalWords := strings.Fields(original)
	editedWords := strings.Fields(edited)

	originalSet := make(map[string]struct{}, len(originalWords))
	for _, w := range originalWords {
		originalSet[w] = struct{}{}
	}
	editedSet := make(map[string]struct{}, len(editedWords))
	for _, w := range editedWords {
		editedSet[w] = struct{}{}
	}

	deletions := collectAbsent(originalWords, editedSet)
	additions := collectAbsent(editedWords, originalSet)

	var substitutions []models.Substitution
	minLen := len(originalWords)
	if len(editedWords) < minLen {
		minLen = len(editedWords)
	}
	for i := 0; i < minLen && len(substitutions) < maxSubstitutions; i++ {
		origWord := strings.ToLower(originalWords[i])
		editWord := strings.ToLower(editedWords[i])
		if origWord == editWord {
			continue
		}
		delta := len(origWord) - len(editWord)
		if delta < 0 {
			delta = -delta
		}
		if delta < maxLengthDelta {
			substitutions = append(substitutions, models.Substitution{
				From: originalWords[i],
				To:   editedWords[i],
			})
		}
	}

	return &models.Diff{
		Additions:       additions,
		Deletions:       deletions,
		Substitutions:   substitutions,
		LengthChange:    len(edited) - len(original),
		WordCountChange: len(editedWords) - len(originalWords),
	}
}

// collectAbsent returns the words from source missing from other, dropping
// short tokens and duplicates while preserving first-seen order.
func collectAbsent(source []string, other map[string]struct{}) []string {
	var result []string
	seen := make(map[string]struct{})
	for _, w := range source {
		if len(w) < minWordLength {
			continue
		}
		if _, ok := other[w]; ok {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		result = append(result, w)
	}
	return result
}
