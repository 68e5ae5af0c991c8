package ingest

import (
	"fmt"
	"strconv"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/assessment"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/monitoring"
)

// LoadLearners reads an EGRA survey export (CSV or xlsx) into learner
// records. Item cells, attempted scalars and score scalars are recognised by
// the column-name convention; demographic columns by a small alias list.
// Unrecognised columns are ignored and missing ones degrade silently.
func LoadLearners(path string) ([]*assessment.LearnerRecord, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return ParseLearners(rows)
}

// ParseLearners converts raw table rows (header first) into learner records.
func ParseLearners(rows [][]string) ([]*assessment.LearnerRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("export is empty")
	}

	header := rows[0]
	idx := headerIndex(header)

	// Classify the assessment columns once against the naming convention.
	type cellCol struct {
		col int
		key assessment.CellKey
	}
	type scalarCol struct {
		col   int
		key   assessment.ScalarKey
		score bool
	}
	var cellCols []cellCol
	var scalarCols []scalarCol
	for name, col := range idx {
		if key, ok := assessment.ParseCellColumn(name); ok {
			cellCols = append(cellCols, cellCol{col: col, key: key})
			continue
		}
		if key, ok := assessment.ParseAttemptedColumn(name); ok {
			scalarCols = append(scalarCols, scalarCol{col: col, key: key})
			continue
		}
		if key, ok := assessment.ParseScoreColumn(name); ok {
			scalarCols = append(scalarCols, scalarCol{col: col, key: key, score: true})
		}
	}

	recs := make([]*assessment.LearnerRecord, 0, len(rows)-1)
	for rowNum, row := range rows[1:] {
		learnerID := lookup(idx, row, "learner_id", "learner id", "mcode")
		if learnerID == "" {
			monitoring.Logf("skipping export row %d: no learner_id", rowNum+2)
			continue
		}

		rec := assessment.NewLearnerRecord(learnerID)
		rec.School = lookup(idx, row, "school", "school_name")
		rec.Grade = lookup(idx, row, "grade")
		rec.Class = lookup(idx, row, "class")
		rec.ClassCohort = assessment.DeriveClassCohort(rec.Grade, rec.Class)
		rec.FirstName = lookup(idx, row, "name_first", "first_name")
		rec.Surname = lookup(idx, row, "name_second", "surname", "last_name")
		rec.TA = lookup(idx, row, "ta", "ea", "ea_name", "ta_name")

		if raw := lookup(idx, row, "letters_correct"); raw != "" {
			// The score arrives as "12" or "12.0" depending on the export.
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				rec.LettersCorrect = int(v)
			}
		}

		for _, c := range cellCols {
			if v := cell(row, c.col); v != "" {
				rec.RawCells[c.key] = v
			}
		}
		for _, s := range scalarCols {
			v := cell(row, s.col)
			if v == "" {
				continue
			}
			if s.score {
				rec.Scores[s.key] = v
			} else {
				rec.Attempted[s.key] = v
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
