package assessment

import (
	"strings"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/letters"
)

// KnowledgeRow is one learner's row of the letter-knowledge matrix:
// demographics plus one 0/1 bit per canonical letter in teaching order.
type KnowledgeRow struct {
	LearnerID      string `json:"learner_id"`
	TA             string `json:"ta"`
	School         string `json:"school"`
	ClassCohort    string `json:"class_cohort"`
	FirstName      string `json:"name_first"`
	Surname        string `json:"name_second"`
	Group          int    `json:"group"`
	LettersCorrect int    `json:"letters_correct"`

	// Known is aligned with letters.Sequence: Known[i] is 1 when the
	// learner knows letters.Sequence[i].
	Known [letters.Count]int `json:"known"`
}

// Knows reports the knowledge bit for a canonical letter.
func (r *KnowledgeRow) Knows(letter string) int {
	pos := letters.Position(letter)
	if pos < 0 {
		return 0
	}
	return r.Known[pos]
}

// BuildKnowledgeMatrix collapses resolved letter cells into one row per
// unique learner. The decision per (learner, canonical letter) is: any
// incorrect mark zeroes the letter, otherwise any correct mark sets it,
// otherwise it stays 0. Chart labels are lowercased to find the canonical
// letter, so the randomised upper/lower-case chart collapses correctly. The
// matrix always carries all 26 columns regardless of input coverage, and
// rebuilding from the same records yields the same matrix.
//
// Duplicate learner IDs keep the first record seen; the export is sorted by
// collection time so the first row is the original capture.
func BuildKnowledgeMatrix(recs []*LearnerRecord) []KnowledgeRow {
	rows := make([]KnowledgeRow, 0, len(recs))
	seen := make(map[string]bool, len(recs))

	for _, rec := range recs {
		if rec.LearnerID != "" && seen[rec.LearnerID] {
			continue
		}
		seen[rec.LearnerID] = true

		row := KnowledgeRow{
			LearnerID:      rec.LearnerID,
			TA:             rec.TA,
			School:         rec.School,
			ClassCohort:    rec.ClassCohort,
			FirstName:      rec.FirstName,
			Surname:        rec.Surname,
			Group:          rec.Group,
			LettersCorrect: rec.LettersCorrect,
		}

		row.Known = CollapseLetterMarks(ResolveDomain(rec, Letters))
		rows = append(rows, row)
	}
	return rows
}

// CollapseLetterMarks applies the per-letter decision rule to resolved
// letter-chart items: an incorrect mark zeroes the canonical letter even
// when another cell for the same letter was correct; not-administered cells
// carry no evidence either way.
func CollapseLetterMarks(items []ResolvedItem) [letters.Count]int {
	var known [letters.Count]int
	var wrong [letters.Count]bool
	for _, item := range items {
		pos := letters.Position(strings.ToLower(item.Label))
		if pos < 0 {
			continue
		}
		switch item.Mark {
		case MarkIncorrect:
			wrong[pos] = true
			known[pos] = 0
		case MarkCorrect:
			if !wrong[pos] {
				known[pos] = 1
			}
		}
	}
	return known
}
