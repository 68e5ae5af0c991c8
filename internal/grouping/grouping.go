// Package grouping partitions learners within a (school, class) cohort into
// fixed-size instructional groups with deterministic remainder handling.
package grouping

import (
	"fmt"
	"sort"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/assessment"
)

// DefaultGroupSize is the target number of learners per instructional group.
const DefaultGroupSize = 7

// CohortWarning flags a cohort that the correction rules cannot touch: a
// cohort that forms only one group is never rebalanced, so a lone learner
// stays in a group of one. That is a data-quality signal for operators, not
// an error.
type CohortWarning struct {
	School      string `json:"school"`
	ClassCohort string `json:"class_cohort"`
	Learners    int    `json:"learners"`
}

func (w CohortWarning) String() string {
	return fmt.Sprintf("degenerate cohort %s/%s: %d learner(s) form a single group",
		w.School, w.ClassCohort, w.Learners)
}

// AssignGroups sorts each (school, class) cohort by ascending score so the
// weakest readers cluster first, numbers groups of groupSize from 1, then
// rebalances the tail so no corrected group ends up with a single member.
// Group numbers are local to the cohort. The records' Group fields are set
// in place; everything else is left untouched.
//
// The same input always yields the same assignment: the sort key is
// (letters_correct, surname, first name, learner_id) and cohorts are
// processed in sorted key order.
func AssignGroups(recs []*assessment.LearnerRecord, groupSize int) []CohortWarning {
	if groupSize <= 0 {
		groupSize = DefaultGroupSize
	}

	cohorts := make(map[assessment.CohortKey][]*assessment.LearnerRecord)
	for _, rec := range recs {
		key := rec.Cohort()
		cohorts[key] = append(cohorts[key], rec)
	}

	keys := make([]assessment.CohortKey, 0, len(cohorts))
	for key := range cohorts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].School != keys[j].School {
			return keys[i].School < keys[j].School
		}
		return keys[i].ClassCohort < keys[j].ClassCohort
	})

	var warnings []CohortWarning
	for _, key := range keys {
		cohort := cohorts[key]
		assignCohort(cohort, groupSize)
		if len(cohort) < 2 {
			warnings = append(warnings, CohortWarning{
				School:      key.School,
				ClassCohort: key.ClassCohort,
				Learners:    len(cohort),
			})
		}
	}
	return warnings
}

// assignCohort numbers one cohort's groups and applies the tail correction.
func assignCohort(cohort []*assessment.LearnerRecord, groupSize int) {
	sort.SliceStable(cohort, func(i, j int) bool {
		a, b := cohort[i], cohort[j]
		if a.LettersCorrect != b.LettersCorrect {
			return a.LettersCorrect < b.LettersCorrect
		}
		if a.Surname != b.Surname {
			return a.Surname < b.Surname
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.LearnerID < b.LearnerID
	})

	n := len(cohort)
	for i, rec := range cohort {
		rec.Group = i/groupSize + 1
	}

	// Tail correction applies only when more than one group exists.
	tail := n % groupSize
	if tail == 0 || n <= groupSize {
		return
	}

	switch tail {
	case 1:
		// Merge the lone learner into the second-to-last group.
		cohort[n-1].Group--
	case 2:
		// Move the trailing member of the second-to-last group forward so
		// the tail grows to 3 instead of sitting at 2.
		cohort[n-3].Group++
	case 3:
		// Move the trailing two members forward: 7+3 becomes 5+5.
		cohort[n-4].Group++
		cohort[n-5].Group++
	case 4:
		// Move the trailing member forward: 7+4 becomes 6+5.
		cohort[n-5].Group++
	}
	// Tails of 5 and 6 stand as naively assigned.
}
