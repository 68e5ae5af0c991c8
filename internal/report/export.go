package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/assessment"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/db"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/monitoring"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/security"
)

// ExportTracker writes the tracker CSV for a finished run into exportDir and
// records the export in the database. The run ID becomes part of the file
// name after sanitization.
func ExportTracker(database *db.DB, exportDir, runID string) (*db.TrackerExport, error) {
	recs, err := database.Learners(runID, "", "")
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("run %s has no learners", runID)
	}

	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export dir: %w", err)
	}

	filename := fmt.Sprintf("tracker_%s.csv", security.SanitizeFilename(runID))
	path := filepath.Join(exportDir, filename)
	if err := security.ValidatePathWithinDirectory(path, exportDir); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracker file: %w", err)
	}
	defer f.Close()

	rows := assessment.BuildKnowledgeMatrix(recs)
	if err := WriteTrackerCSV(f, rows); err != nil {
		return nil, err
	}

	export := &db.TrackerExport{RunID: runID, Filepath: path, Filename: filename}
	if err := database.CreateTrackerExport(export); err != nil {
		return nil, err
	}
	monitoring.Logf("exported tracker for run %s to %s (%d learners)", runID, path, len(rows))
	return export, nil
}
