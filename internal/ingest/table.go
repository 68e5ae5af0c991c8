// Package ingest loads EGRA survey exports and TeamPact session exports
// into typed records. Exports arrive as CSV or xlsx; the loaders tolerate
// missing columns per the silent-degrade policy of the pipeline.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readTable reads a whole export into rows of cells. The file extension
// selects the reader: .csv goes through encoding/csv, anything else is
// opened as a workbook and the first sheet is read.
func readTable(path string) ([][]string, error) {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return readCSV(path)
	}
	return readExcel(path)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // exports often have ragged trailing columns
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// headerIndex maps normalised header names to their column positions. The
// first occurrence of a header wins.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, exists := idx[name]; !exists {
			idx[name] = i
		}
	}
	return idx
}

// cell returns the trimmed value at column i, or "" when the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// lookup returns the value of the first matching header alias.
func lookup(idx map[string]int, row []string, aliases ...string) string {
	for _, alias := range aliases {
		if col, ok := idx[alias]; ok {
			return cell(row, col)
		}
	}
	return ""
}
