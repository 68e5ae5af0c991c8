package grouping

import (
	"fmt"
	"testing"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/assessment"
	"github.com/google/go-cmp/cmp"
)

// makeCohort builds n learners in one (school, class) cohort with ascending
// scores, so the sort order equals the construction order.
func makeCohort(school, cohort string, n int) []*assessment.LearnerRecord {
	recs := make([]*assessment.LearnerRecord, n)
	for i := 0; i < n; i++ {
		rec := assessment.NewLearnerRecord(fmt.Sprintf("%s-%s-%03d", school, cohort, i+1))
		rec.School = school
		rec.ClassCohort = cohort
		rec.Surname = fmt.Sprintf("Surname%03d", i+1)
		rec.FirstName = "Learner"
		rec.LettersCorrect = i
		recs[i] = rec
	}
	return recs
}

func groupSizes(recs []*assessment.LearnerRecord) map[int]int {
	sizes := make(map[int]int)
	for _, rec := range recs {
		sizes[rec.Group]++
	}
	return sizes
}

func TestAssignGroupsTailCorrections(t *testing.T) {
	tests := []struct {
		n         int
		wantSizes map[int]int
	}{
		{7, map[int]int{1: 7}},            // exact multiple, no tail
		{14, map[int]int{1: 7, 2: 7}},     // exact multiple, two groups
		{8, map[int]int{1: 8}},            // tail 1: lone learner merged back
		{9, map[int]int{1: 6, 2: 3}},      // tail 2: rank-7 learner moves forward
		{10, map[int]int{1: 5, 2: 5}},     // tail 3: two learners move forward
		{11, map[int]int{1: 6, 2: 5}},     // tail 4: one learner moves forward
		{12, map[int]int{1: 7, 2: 5}},     // tail 5: no correction
		{13, map[int]int{1: 7, 2: 6}},     // tail 6: no correction
		{16, map[int]int{1: 7, 2: 6, 3: 3}},
		{5, map[int]int{1: 5}}, // single group, no correction
		{2, map[int]int{1: 2}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			recs := makeCohort("Seyisi Primary", "1A", tt.n)
			AssignGroups(recs, DefaultGroupSize)
			if diff := cmp.Diff(tt.wantSizes, groupSizes(recs)); diff != "" {
				t.Errorf("group sizes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssignGroupsNineLearnerMembership(t *testing.T) {
	// The canonical 9-learner case: ranks 1-6 stay in group 1, the rank-7
	// learner joins the two tail learners in group 2.
	recs := makeCohort("Seyisi Primary", "1A", 9)
	AssignGroups(recs, DefaultGroupSize)

	for i, rec := range recs {
		wantGroup := 1
		if i >= 6 {
			wantGroup = 2
		}
		if rec.Group != wantGroup {
			t.Errorf("rank %d (%s): group = %d, want %d", i+1, rec.LearnerID, rec.Group, wantGroup)
		}
	}
}

func TestAssignGroupsNoGroupOfOne(t *testing.T) {
	for n := 2; n <= 60; n++ {
		recs := makeCohort("Ndzondelelo Primary", "2B", n)
		AssignGroups(recs, DefaultGroupSize)
		for group, size := range groupSizes(recs) {
			if size == 1 {
				t.Errorf("n=%d: group %d has exactly 1 member", n, group)
			}
		}
	}
}

func TestAssignGroupsSortOrder(t *testing.T) {
	// Weakest readers first; ties broken by surname then first name.
	build := func(id, surname, first string, score int) *assessment.LearnerRecord {
		rec := assessment.NewLearnerRecord(id)
		rec.School = "Khwezi Primary"
		rec.ClassCohort = "1A"
		rec.Surname = surname
		rec.FirstName = first
		rec.LettersCorrect = score
		return rec
	}
	recs := []*assessment.LearnerRecord{
		build("L-1", "Zulu", "Aya", 20),
		build("L-2", "Abrahams", "Bongi", 0),
		build("L-3", "Abrahams", "Aza", 0),
		build("L-4", "Mbali", "Cebo", 5),
	}
	AssignGroups(recs, 2)

	// Sorted for grouping: Abrahams Aza (0), Abrahams Bongi (0), Mbali (5),
	// Zulu (20). The first two land in group 1, the rest in group 2.
	wantGroups := map[string]int{"L-3": 1, "L-2": 1, "L-4": 2, "L-1": 2}
	gotGroups := make(map[string]int, len(recs))
	for _, rec := range recs {
		gotGroups[rec.LearnerID] = rec.Group
	}
	if diff := cmp.Diff(wantGroups, gotGroups); diff != "" {
		t.Errorf("group assignments mismatch (-want +got):\n%s", diff)
	}

	// Only the Group fields change; the caller's slice keeps its order.
	wantOrder := []string{"L-1", "L-2", "L-3", "L-4"}
	for i, want := range wantOrder {
		if recs[i].LearnerID != want {
			t.Errorf("position %d: learner %s, want %s", i, recs[i].LearnerID, want)
		}
	}
}

func TestAssignGroupsIdempotent(t *testing.T) {
	recs := makeCohort("Seyisi Primary", "1A", 23)
	AssignGroups(recs, DefaultGroupSize)
	first := make(map[string]int, len(recs))
	for _, rec := range recs {
		first[rec.LearnerID] = rec.Group
	}

	AssignGroups(recs, DefaultGroupSize)
	for _, rec := range recs {
		if rec.Group != first[rec.LearnerID] {
			t.Errorf("learner %s: group changed from %d to %d on regroup",
				rec.LearnerID, first[rec.LearnerID], rec.Group)
		}
	}
}

func TestAssignGroupsCohortsAreIndependent(t *testing.T) {
	a := makeCohort("School A", "1A", 9)
	b := makeCohort("School B", "1A", 7)
	all := append(append([]*assessment.LearnerRecord{}, a...), b...)
	AssignGroups(all, DefaultGroupSize)

	// Group numbers restart per cohort.
	if sizes := groupSizes(b); len(sizes) != 1 || sizes[1] != 7 {
		t.Errorf("school B sizes = %v, want one group of 7", sizes)
	}
	if sizes := groupSizes(a); sizes[1] != 6 || sizes[2] != 3 {
		t.Errorf("school A sizes = %v, want 6 and 3", sizes)
	}
}

func TestAssignGroupsDegenerateCohortWarning(t *testing.T) {
	lone := makeCohort("Tiny School", "3C", 1)
	warnings := AssignGroups(lone, DefaultGroupSize)

	if lone[0].Group != 1 {
		t.Errorf("lone learner group = %d, want 1", lone[0].Group)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	w := warnings[0]
	if w.School != "Tiny School" || w.ClassCohort != "3C" || w.Learners != 1 {
		t.Errorf("warning = %+v", w)
	}
}

func TestAssignGroupsZeroGroupSizeFallsBack(t *testing.T) {
	recs := makeCohort("Seyisi Primary", "1A", 9)
	AssignGroups(recs, 0)
	if sizes := groupSizes(recs); sizes[1] != 6 || sizes[2] != 3 {
		t.Errorf("sizes with default fallback = %v, want 6 and 3", sizes)
	}
}
