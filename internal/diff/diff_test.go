package diff

import (
	"reflect"
	"strings"
	"testing"

	"github.com/springroll-app/quill/internal/models"
)

func TestCompute_EmptyInputs(t *testing.T) {
	tests := []struct {
		name     string
		original string
		edited   string
	}{
		{"both empty", "", ""},
		{"empty original", "", "some edited text"},
		{"empty edited", "the original text", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.original, tt.edited); got != nil {
				t.Errorf("Compute(%q, %q) = %+v, want nil", tt.original, tt.edited, got)
			}
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	original := "We will utilize synergies to leverage our core competencies going forward."
	edited := "We will use synergy to build on our strengths going forward."

	first := Compute(original, edited)
	second := Compute(original, edited)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Compute is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCompute_AdditionsAndDeletions(t *testing.T) {
	d := Compute("alpha beta gamma", "alpha delta gamma")
	if d == nil {
		t.Fatal("Compute returned nil")
	}

	if !reflect.DeepEqual(d.Deletions, []string{"beta"}) {
		t.Errorf("Deletions = %v, want [beta]", d.Deletions)
	}
	if !reflect.DeepEqual(d.Additions, []string{"delta"}) {
		t.Errorf("Additions = %v, want [delta]", d.Additions)
	}
}

func TestCompute_ShortWordsFiltered(t *testing.T) {
	// "to" and "an" are under the 3-character floor and must not appear
	// in additions or deletions.
	d := Compute("walked to the store", "walked an entire mile")
	if d == nil {
		t.Fatal("Compute returned nil")
	}
	for _, w := range d.Deletions {
		if len(w) < 3 {
			t.Errorf("Deletions contains short word %q", w)
		}
	}
	for _, w := range d.Additions {
		if len(w) < 3 {
			t.Errorf("Additions contains short word %q", w)
		}
	}
}

func TestCompute_DeduplicatesWords(t *testing.T) {
	d := Compute("foo foo foo bar", "bar baz baz baz")
	if d == nil {
		t.Fatal("Compute returned nil")
	}
	if !reflect.DeepEqual(d.Deletions, []string{"foo"}) {
		t.Errorf("Deletions = %v, want [foo]", d.Deletions)
	}
	if !reflect.DeepEqual(d.Additions, []string{"baz"}) {
		t.Errorf("Additions = %v, want [baz]", d.Additions)
	}
}

func TestCompute_Substitutions(t *testing.T) {
	tests := []struct {
		name     string
		original string
		edited   string
		want     []models.Substitution
	}{
		{
			name:     "aligned replacement within length gate",
			original: "we utilize tools",
			edited:   "we use tools",
			want:     []models.Substitution{{From: "utilize", To: "use"}},
		},
		{
			name:     "length delta of 5 or more is not a substitution",
			original: "the cat sat",
			edited:   "the elephant sat",
			want:     nil,
		},
		{
			name:     "case-only difference is ignored",
			original: "Hello world",
			edited:   "hello world",
			want:     nil,
		},
		{
			name:     "multiple aligned replacements",
			original: "utilize best synergies",
			edited:   "use good synergy",
			want: []models.Substitution{
				{From: "utilize", To: "use"},
				{From: "best", To: "good"},
				{From: "synergies", To: "synergy"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Compute(tt.original, tt.edited)
			if d == nil {
				t.Fatal("Compute returned nil")
			}
			if !reflect.DeepEqual(d.Substitutions, tt.want) {
				t.Errorf("Substitutions = %v, want %v", d.Substitutions, tt.want)
			}
		})
	}
}

func TestCompute_SubstitutionCap(t *testing.T) {
	// 15 aligned single-word replacements; only the first 10 are kept.
	origWords := make([]string, 15)
	editWords := make([]string, 15)
	for i := range origWords {
		origWords[i] = "aaa" + string(rune('a'+i))
		editWords[i] = "bbb" + string(rune('a'+i))
	}
	d := Compute(strings.Join(origWords, " "), strings.Join(editWords, " "))
	if d == nil {
		t.Fatal("Compute returned nil")
	}
	if len(d.Substitutions) != 10 {
		t.Errorf("len(Substitutions) = %d, want 10", len(d.Substitutions))
	}
	if d.Substitutions[0].From != "aaaa" || d.Substitutions[0].To != "bbba" {
		t.Errorf("Substitutions[0] = %+v, want aaaa->bbba", d.Substitutions[0])
	}
}

func TestCompute_LengthAndWordCountChange(t *testing.T) {
	original := "one two three"
	edited := "one two"
	d := Compute(original, edited)
	if d == nil {
		t.Fatal("Compute returned nil")
	}
	if want := len(edited) - len(original); d.LengthChange != want {
		t.Errorf("LengthChange = %d, want %d", d.LengthChange, want)
	}
	if d.WordCountChange != -1 {
		t.Errorf("WordCountChange = %d, want -1", d.WordCountChange)
	}
}

func TestCompute_InsertionCascadesSubstitutions(t *testing.T) {
	// An upstream insertion shifts every following position; the heuristic
	// is expected to report the shifted pairs, not realign.
	d := Compute("alpha bravo charlie", "newly alpha bravo charlie")
	if d == nil {
		t.Fatal("Compute returned nil")
	}
	if len(d.Substitutions) == 0 {
		t.Error("expected cascaded substitutions after insertion, got none")
	}
}
