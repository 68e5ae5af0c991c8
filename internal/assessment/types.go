package assessment

import (
	"strings"
	"unicode"
)

// LearnerRecord is one row of the survey export: one child, one assessment
// round pair. Records are immutable within a pipeline run except for the
// Group field, which the grouping engine assigns.
type LearnerRecord struct {
	LearnerID   string `json:"learner_id"`
	School      string `json:"school"`
	Grade       string `json:"grade"`
	Class       string `json:"class"`
	ClassCohort string `json:"class_cohort"`
	FirstName   string `json:"name_first"`
	Surname     string `json:"name_second"`
	TA          string `json:"ta"`

	// LettersCorrect is the assessment-provided total of correct letters,
	// used as the ability score for grouping.
	LettersCorrect int `json:"letters_correct"`

	// Group is assigned by the grouping engine; zero means unassigned.
	Group int `json:"group"`

	// RawCells holds the raw item-cell values keyed by typed column key.
	// Values are kept as exported: unparseable or absent values resolve to
	// "not administered" later, never to an error.
	RawCells map[CellKey]string `json:"-"`

	// Attempted holds the raw stop-rule scalars per (domain, round).
	Attempted map[ScalarKey]string `json:"-"`

	// Scores holds the raw score scalars per (domain, round). Presence of a
	// numeric a2 score switches resolution to round a2.
	Scores map[ScalarKey]string `json:"-"`
}

// NewLearnerRecord returns a record with initialised cell maps.
func NewLearnerRecord(learnerID string) *LearnerRecord {
	return &LearnerRecord{
		LearnerID: learnerID,
		RawCells:  make(map[CellKey]string),
		Attempted: make(map[ScalarKey]string),
		Scores:    make(map[ScalarKey]string),
	}
}

// DeriveClassCohort builds the (school-local) cohort label from the grade
// and class fields. Exports repeat the grade token at the front of the class
// ("3", "3B"), so the leading grade token is stripped before joining:
// ("3", "3B") -> "3B", ("2", "B") -> "2B".
func DeriveClassCohort(grade, class string) string {
	g := strings.TrimSpace(grade)
	c := strings.TrimSpace(class)

	// Keep only the digits of the grade ("Grade 3" and "3" both mean 3).
	var digits strings.Builder
	for _, r := range g {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	gradeToken := digits.String()

	if gradeToken != "" {
		c = strings.TrimPrefix(c, gradeToken)
	}
	return gradeToken + strings.ToUpper(c)
}

// CohortKey identifies the unit over which grouping is performed.
type CohortKey struct {
	School      string `json:"school"`
	ClassCohort string `json:"class_cohort"`
}

// Cohort returns the grouping partition key for the record.
func (r *LearnerRecord) Cohort() CohortKey {
	return CohortKey{School: r.School, ClassCohort: r.ClassCohort}
}
