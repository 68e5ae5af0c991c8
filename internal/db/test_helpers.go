package db

import (
	"testing"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/assessment"
)

// setupTestDB creates a fresh database in a per-test temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(t.TempDir() + "/test_assessment.db")
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// testLearner builds a minimal learner record for storage tests.
func testLearner(t *testing.T, id, school, cohort string, score int) *assessment.LearnerRecord {
	t.Helper()
	rec := assessment.NewLearnerRecord(id)
	rec.School = school
	rec.ClassCohort = cohort
	rec.Grade = "1"
	rec.Class = "1A"
	rec.FirstName = "Test"
	rec.Surname = "Learner"
	rec.TA = "Test TA"
	rec.LettersCorrect = score
	return rec
}
