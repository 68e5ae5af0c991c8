package assessment

import (
	"testing"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/letters"
	"github.com/google/go-cmp/cmp"
)

// chartIndexOf returns the 1-based chart position of a letter label.
func chartIndexOf(t *testing.T, label string) int {
	t.Helper()
	for i, l := range Items(Letters) {
		if l == label {
			return i + 1
		}
	}
	t.Fatalf("label %q not on letters chart", label)
	return 0
}

func TestBuildKnowledgeMatrixBasic(t *testing.T) {
	rec := NewLearnerRecord("L-1")
	rec.School = "Masinyusane Primary"
	rec.Attempted[ScalarKey{Domain: Letters, Round: RoundA1}] = "26"
	// Chart label "M" lowercases to canonical "m"; "a" is already canonical.
	rec.RawCells[CellKey{Domain: Letters, Round: RoundA1, Index: chartIndexOf(t, "M")}] = "1"
	rec.RawCells[CellKey{Domain: Letters, Round: RoundA1, Index: chartIndexOf(t, "a")}] = "0"

	rows := BuildKnowledgeMatrix([]*LearnerRecord{rec})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Knows("m") != 1 {
		t.Error("letter m should be known")
	}
	if row.Knows("a") != 0 {
		t.Error("letter a was marked incorrect and should not be known")
	}
	if row.Knows("j") != 0 {
		t.Error("unattempted letter j should not be known")
	}
}

func TestCollapseLetterMarksIncorrectPrecedence(t *testing.T) {
	// Administration charts can carry several labels collapsing to the same
	// canonical letter ("S" and "s"). One wrong mark zeroes the letter
	// regardless of the correct mark and of cell order.
	sPos := letters.Position("s")

	incorrectFirst := []ResolvedItem{
		{Domain: Letters, Index: 1, Label: "S", Mark: MarkIncorrect},
		{Domain: Letters, Index: 2, Label: "s", Mark: MarkCorrect},
	}
	if known := CollapseLetterMarks(incorrectFirst); known[sPos] != 0 {
		t.Error("incorrect-then-correct: letter s should stay unknown")
	}

	correctFirst := []ResolvedItem{
		{Domain: Letters, Index: 1, Label: "s", Mark: MarkCorrect},
		{Domain: Letters, Index: 2, Label: "S", Mark: MarkIncorrect},
	}
	if known := CollapseLetterMarks(correctFirst); known[sPos] != 0 {
		t.Error("correct-then-incorrect: letter s should stay unknown")
	}

	// Not-administered cells carry no evidence either way.
	withGap := []ResolvedItem{
		{Domain: Letters, Index: 1, Label: "b", Mark: MarkNotAdministered},
		{Domain: Letters, Index: 2, Label: "B", Mark: MarkCorrect},
	}
	if known := CollapseLetterMarks(withGap); known[letters.Position("b")] != 1 {
		t.Error("not-administered cell should not block a correct mark")
	}
}

func TestBuildKnowledgeMatrixSchemaStability(t *testing.T) {
	// A record with no resolvable cells still yields a full-width row.
	rec := NewLearnerRecord("L-4")
	rows := BuildKnowledgeMatrix([]*LearnerRecord{rec})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if got := len(rows[0].Known); got != letters.Count {
		t.Fatalf("row width = %d, want %d", got, letters.Count)
	}
	for i, bit := range rows[0].Known {
		if bit != 0 {
			t.Errorf("letter %s: bit = %d, want 0", letters.Sequence[i], bit)
		}
	}
}

func TestBuildKnowledgeMatrixDedupsLearners(t *testing.T) {
	first := NewLearnerRecord("L-5")
	first.School = "original"
	dup := NewLearnerRecord("L-5")
	dup.School = "duplicate"

	rows := BuildKnowledgeMatrix([]*LearnerRecord{first, dup})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].School != "original" {
		t.Errorf("dedup kept %q, want the first record", rows[0].School)
	}
}

func TestBuildKnowledgeMatrixIdempotent(t *testing.T) {
	rec := NewLearnerRecord("L-6")
	rec.Attempted[ScalarKey{Domain: Letters, Round: RoundA1}] = "26"
	for i := 1; i <= 10; i++ {
		rec.RawCells[CellKey{Domain: Letters, Round: RoundA1, Index: i}] = "1"
	}

	first := BuildKnowledgeMatrix([]*LearnerRecord{rec})
	second := BuildKnowledgeMatrix([]*LearnerRecord{rec})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("matrix not idempotent (-first +second):\n%s", diff)
	}
}

func TestBuildKnowledgeMatrixCarriesDemographics(t *testing.T) {
	rec := NewLearnerRecord("L-7")
	rec.TA = "Nomsa D"
	rec.School = "Emsengeni Primary"
	rec.ClassCohort = "1A"
	rec.FirstName = "Lwazi"
	rec.Surname = "Mbeki"
	rec.Group = 3
	rec.LettersCorrect = 11

	row := BuildKnowledgeMatrix([]*LearnerRecord{rec})[0]
	if row.TA != "Nomsa D" || row.School != "Emsengeni Primary" ||
		row.ClassCohort != "1A" || row.Group != 3 || row.LettersCorrect != 11 {
		t.Errorf("demographics not carried: %+v", row)
	}
}
