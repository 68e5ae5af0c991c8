// Package pipeline orchestrates a full assessment processing run: group
// assignment, letter-knowledge derivation and persistence, plus the summary
// statistics reported afterwards.
package pipeline

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/assessment"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/db"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/grouping"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/monitoring"
)

// Result summarizes one completed pipeline run.
type Result struct {
	RunID     string          `json:"run_id"`
	Learners  int             `json:"learners"`
	Cohorts   int             `json:"cohorts"`
	Warnings  []string        `json:"warnings,omitempty"`
	Summaries []CohortSummary `json:"summaries"`
}

// Run processes one batch of learner records end to end and persists the
// outcome under a fresh run ID. The records are mutated in place: group
// numbers are written into rec.Group.
func Run(database *db.DB, recs []*assessment.LearnerRecord, groupSize int) (*Result, error) {
	if len(recs) == 0 {
		return nil, fmt.Errorf("no learner records to process")
	}
	if groupSize <= 0 {
		groupSize = grouping.DefaultGroupSize
	}

	runID := uuid.NewString()
	monitoring.Logf("pipeline run %s: %d learners, group size %d", runID, len(recs), groupSize)

	cohortWarnings := grouping.AssignGroups(recs, groupSize)
	warnings := make([]string, 0, len(cohortWarnings))
	for _, w := range cohortWarnings {
		monitoring.Logf("pipeline run %s: %s", runID, w)
		warnings = append(warnings, w.String())
	}

	matrix := assessment.BuildKnowledgeMatrix(recs)
	summaries := SummarizeCohorts(recs)

	if err := database.CreatePipelineRun(runID); err != nil {
		return nil, err
	}
	if err := database.SaveLearners(runID, recs); err != nil {
		return nil, err
	}
	if err := database.SaveKnowledgeMatrix(runID, matrix); err != nil {
		return nil, err
	}
	if err := database.FinishPipelineRun(runID, len(recs), len(summaries), warnings); err != nil {
		return nil, err
	}

	monitoring.Logf("pipeline run %s finished: %d cohorts, %d warnings", runID, len(summaries), len(warnings))
	return &Result{
		RunID:     runID,
		Learners:  len(recs),
		Cohorts:   len(summaries),
		Warnings:  warnings,
		Summaries: summaries,
	}, nil
}

// CohortSummary carries per-cohort descriptive statistics over the letters
// EGRA score.
type CohortSummary struct {
	School         string  `json:"school"`
	ClassCohort    string  `json:"class_cohort"`
	Learners       int     `json:"learners"`
	Groups         int     `json:"groups"`
	MeanLetters    float64 `json:"mean_letters_correct"`
	MedianLetters  float64 `json:"median_letters_correct"`
	P85Letters     float64 `json:"p85_letters_correct"`
	MinLetters     int     `json:"min_letters_correct"`
	MaxLetters     int     `json:"max_letters_correct"`
}

// SummarizeCohorts computes descriptive statistics for each (school, class
// cohort) present in recs. Cohorts come back in sorted key order.
func SummarizeCohorts(recs []*assessment.LearnerRecord) []CohortSummary {
	byCohort := make(map[assessment.CohortKey][]*assessment.LearnerRecord)
	for _, rec := range recs {
		key := rec.Cohort()
		byCohort[key] = append(byCohort[key], rec)
	}

	keys := make([]assessment.CohortKey, 0, len(byCohort))
	for key := range byCohort {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].School != keys[j].School {
			return keys[i].School < keys[j].School
		}
		return keys[i].ClassCohort < keys[j].ClassCohort
	})

	summaries := make([]CohortSummary, 0, len(keys))
	for _, key := range keys {
		cohort := byCohort[key]
		scores := make([]float64, len(cohort))
		groups := make(map[int]bool)
		minScore, maxScore := cohort[0].LettersCorrect, cohort[0].LettersCorrect
		for i, rec := range cohort {
			scores[i] = float64(rec.LettersCorrect)
			groups[rec.Group] = true
			if rec.LettersCorrect < minScore {
				minScore = rec.LettersCorrect
			}
			if rec.LettersCorrect > maxScore {
				maxScore = rec.LettersCorrect
			}
		}
		// stat.Quantile requires sorted input.
		sort.Float64s(scores)
		summaries = append(summaries, CohortSummary{
			School:        key.School,
			ClassCohort:   key.ClassCohort,
			Learners:      len(cohort),
			Groups:        len(groups),
			MeanLetters:   stat.Mean(scores, nil),
			MedianLetters: stat.Quantile(0.5, stat.Empirical, scores, nil),
			P85Letters:    stat.Quantile(0.85, stat.Empirical, scores, nil),
			MinLetters:    minScore,
			MaxLetters:    maxScore,
		})
	}
	return summaries
}

// StalledProgressFlag marks a TA whose groups sit at the same point in the
// teaching sequence. Several groups at one progress index usually means the
// groups are being taught as a single class.
type StalledProgressFlag struct {
	School        string   `json:"school"`
	TA            string   `json:"ta"`
	ProgressIndex int      `json:"progress_index"`
	Groups        []string `json:"groups"`
}

// FlagSameProgress scans the latest-session rollup and flags every
// (school, TA) where minGroups or more groups share one progress index.
// Pass minGroups <= 0 for the default of 3.
func FlagSameProgress(rollup []db.GroupProgress, minGroups int) []StalledProgressFlag {
	if minGroups <= 0 {
		minGroups = 3
	}

	type taKey struct {
		school, ta string
		index      int
	}
	byIndex := make(map[taKey][]string)
	for _, gp := range rollup {
		key := taKey{school: gp.School, ta: gp.TA, index: gp.ProgressIndex}
		byIndex[key] = append(byIndex[key], gp.GroupName)
	}

	var flags []StalledProgressFlag
	for key, groups := range byIndex {
		if len(groups) < minGroups {
			continue
		}
		sort.Strings(groups)
		flags = append(flags, StalledProgressFlag{
			School:        key.school,
			TA:            key.ta,
			ProgressIndex: key.index,
			Groups:        groups,
		})
	}
	sort.Slice(flags, func(i, j int) bool {
		if flags[i].School != flags[j].School {
			return flags[i].School < flags[j].School
		}
		if flags[i].TA != flags[j].TA {
			return flags[i].TA < flags[j].TA
		}
		return flags[i].ProgressIndex < flags[j].ProgressIndex
	})
	return flags
}
