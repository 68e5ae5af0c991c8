// Package report renders pipeline output for humans: the letter tracker CSV
// consumed by the field teams, the raw response export, and the progress
// charts served over HTTP.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/assessment"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/letters"
)

// WriteTrackerCSV writes the letter-knowledge matrix as the tracker sheet:
// demographics first, then one 0/1 column per canonical letter in teaching
// order.
func WriteTrackerCSV(w io.Writer, rows []assessment.KnowledgeRow) error {
	cw := csv.NewWriter(w)

	header := []string{
		"learner_id", "name_first", "name_second", "school",
		"class_cohort", "ta", "group", "letters_correct",
	}
	header = append(header, letters.All()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write tracker header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.LearnerID, row.FirstName, row.Surname, row.School,
			row.ClassCohort, row.TA,
			strconv.Itoa(row.Group), strconv.Itoa(row.LettersCorrect),
		}
		for _, bit := range row.Known {
			record = append(record, strconv.Itoa(bit))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write tracker row for %s: %w", row.LearnerID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteResponsesCSV writes every resolved chart item per learner using the
// legacy marking sentinels: "X" incorrect, "0" correct, "" not administered.
// Downstream spreadsheets built around the paper marking scheme read this
// directly.
func WriteResponsesCSV(w io.Writer, recs []*assessment.LearnerRecord) error {
	cw := csv.NewWriter(w)

	header := []string{"learner_id", "school", "class_cohort"}
	for _, d := range assessment.Domains {
		for i := 1; i <= assessment.ItemCount(d); i++ {
			header = append(header, fmt.Sprintf("%s_%d", d, i))
		}
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write responses header: %w", err)
	}

	for _, rec := range recs {
		record := []string{rec.LearnerID, rec.School, rec.ClassCohort}
		for _, item := range assessment.ResolveAll(rec) {
			record = append(record, item.Mark.Sentinel())
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write responses row for %s: %w", rec.LearnerID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
