// Package db stores assessment data in sqlite: learner records per pipeline
// run, session logs, the derived letter-knowledge matrix and export
// bookkeeping. The raw item cells ride along as JSON so a run can always be
// rebuilt from what was ingested.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/assessment"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/letters"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the sqlite database at path and ensures
// the base schema exists. Schema changes beyond the base tables are managed
// by migrations (see migrate.go).
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenDB opens the database without touching the schema. The migrate
// subcommand uses this so migrations fully own schema changes.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Busy timeout keeps the API server and a CLI run from tripping over
	// each other on the single writer.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000; PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func (db *DB) ensureSchema() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS pipeline_runs (
			run_id        TEXT PRIMARY KEY,
			started_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			finished_at   TIMESTAMP,
			learners      BIGINT DEFAULT 0,
			cohorts       BIGINT DEFAULT 0,
			warnings      TEXT
		);
		CREATE TABLE IF NOT EXISTS learners (
			run_id          TEXT,
			learner_id      TEXT,
			school          TEXT,
			grade           TEXT,
			class           TEXT,
			class_cohort    TEXT,
			name_first      TEXT,
			name_second     TEXT,
			ta              TEXT,
			letters_correct BIGINT,
			grp             BIGINT,
			raw_cells       TEXT,
			timestamp       TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(run_id) REFERENCES pipeline_runs(run_id)
		);
		CREATE TABLE IF NOT EXISTS letter_knowledge (
			run_id     TEXT,
			learner_id TEXT,
			letter     TEXT,
			known      BIGINT,
			FOREIGN KEY(run_id) REFERENCES pipeline_runs(run_id)
		);
		CREATE TABLE IF NOT EXISTS sessions (
			school         TEXT,
			ta             TEXT,
			group_name     TEXT,
			taught_letters TEXT,
			progress_index BIGINT,
			progress_pct   DOUBLE,
			rightmost      TEXT,
			session_at     TIMESTAMP,
			timestamp      TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS tracker_exports (
			export_id  INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT,
			filepath   TEXT,
			filename   TEXT,
			timestamp  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_learners_run ON learners(run_id);
		CREATE INDEX IF NOT EXISTS idx_knowledge_run ON letter_knowledge(run_id);
		CREATE INDEX IF NOT EXISTS idx_sessions_group ON sessions(school, ta, group_name);
	`)
	return err
}

// CreatePipelineRun records the start of a derivation run.
func (db *DB) CreatePipelineRun(runID string) error {
	_, err := db.Exec("INSERT INTO pipeline_runs (run_id) VALUES (?)", runID)
	if err != nil {
		return fmt.Errorf("failed to create pipeline run: %w", err)
	}
	return nil
}

// FinishPipelineRun closes out a run with its counts and warnings.
func (db *DB) FinishPipelineRun(runID string, learners, cohorts int, warnings any) error {
	encoded, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("failed to encode warnings: %w", err)
	}
	_, err = db.Exec(
		`UPDATE pipeline_runs SET finished_at = CURRENT_TIMESTAMP, learners = ?, cohorts = ?, warnings = ? WHERE run_id = ?`,
		learners, cohorts, string(encoded), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish pipeline run: %w", err)
	}
	return nil
}

// LatestRunID returns the run_id of the most recent finished run, or "" when
// no run has completed yet.
func (db *DB) LatestRunID() (string, error) {
	var runID string
	err := db.QueryRow(
		"SELECT run_id FROM pipeline_runs WHERE finished_at IS NOT NULL ORDER BY finished_at DESC, started_at DESC LIMIT 1",
	).Scan(&runID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest run: %w", err)
	}
	return runID, nil
}

// SaveLearners persists the learner rows of one run, raw cells included.
func (db *DB) SaveLearners(runID string, recs []*assessment.LearnerRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO learners (
			run_id, learner_id, school, grade, class, class_cohort,
			name_first, name_second, ta, letters_correct, grp, raw_cells
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		cells, err := encodeRawCells(rec)
		if err != nil {
			return fmt.Errorf("failed to encode cells for %s: %w", rec.LearnerID, err)
		}
		if _, err := stmt.Exec(
			runID, rec.LearnerID, rec.School, rec.Grade, rec.Class, rec.ClassCohort,
			rec.FirstName, rec.Surname, rec.TA, rec.LettersCorrect, rec.Group, cells,
		); err != nil {
			return fmt.Errorf("failed to insert learner %s: %w", rec.LearnerID, err)
		}
	}
	return tx.Commit()
}

// encodeRawCells flattens the typed cell maps back to the export's column
// names so the stored form stays readable with plain SQL.
func encodeRawCells(rec *assessment.LearnerRecord) (string, error) {
	flat := make(map[string]string, len(rec.RawCells)+len(rec.Attempted)+len(rec.Scores))
	for key, v := range rec.RawCells {
		flat[key.ColumnName()] = v
	}
	for key, v := range rec.Attempted {
		flat[key.AttemptedColumn()] = v
	}
	for key, v := range rec.Scores {
		flat[key.ScoreColumn()] = v
	}
	encoded, err := json.Marshal(flat)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// decodeRawCells restores the typed cell maps from the stored JSON.
func decodeRawCells(rec *assessment.LearnerRecord, raw string) error {
	if raw == "" {
		return nil
	}
	flat := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &flat); err != nil {
		return err
	}
	for name, v := range flat {
		if key, ok := assessment.ParseCellColumn(name); ok {
			rec.RawCells[key] = v
			continue
		}
		if key, ok := assessment.ParseAttemptedColumn(name); ok {
			rec.Attempted[key] = v
			continue
		}
		if key, ok := assessment.ParseScoreColumn(name); ok {
			rec.Scores[key] = v
		}
	}
	return nil
}

// Learners loads the learner rows of one run. school and classCohort filter
// when non-empty.
func (db *DB) Learners(runID, school, classCohort string) ([]*assessment.LearnerRecord, error) {
	query := `
		SELECT learner_id, school, grade, class, class_cohort,
		       name_first, name_second, ta, letters_correct, grp, raw_cells
		FROM learners WHERE run_id = ?`
	args := []any{runID}
	if school != "" {
		query += " AND school = ?"
		args = append(args, school)
	}
	if classCohort != "" {
		query += " AND class_cohort = ?"
		args = append(args, classCohort)
	}
	query += " ORDER BY school, class_cohort, grp, letters_correct, name_second"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query learners: %w", err)
	}
	defer rows.Close()

	var recs []*assessment.LearnerRecord
	for rows.Next() {
		rec := assessment.NewLearnerRecord("")
		var rawCells string
		if err := rows.Scan(
			&rec.LearnerID, &rec.School, &rec.Grade, &rec.Class, &rec.ClassCohort,
			&rec.FirstName, &rec.Surname, &rec.TA, &rec.LettersCorrect, &rec.Group, &rawCells,
		); err != nil {
			return nil, err
		}
		if err := decodeRawCells(rec, rawCells); err != nil {
			return nil, fmt.Errorf("corrupt raw cells for %s: %w", rec.LearnerID, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// SaveKnowledgeMatrix persists the letter-knowledge rows of one run, one
// database row per (learner, canonical letter).
func (db *DB) SaveKnowledgeMatrix(runID string, matrix []assessment.KnowledgeRow) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO letter_knowledge (run_id, learner_id, letter, known) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range matrix {
		for i, letter := range letters.Sequence {
			if _, err := stmt.Exec(runID, row.LearnerID, letter, row.Known[i]); err != nil {
				return fmt.Errorf("failed to insert knowledge bit: %w", err)
			}
		}
	}
	return tx.Commit()
}

// KnowledgeBits loads the per-letter bits of one run keyed by learner.
func (db *DB) KnowledgeBits(runID string) (map[string][letters.Count]int, error) {
	rows, err := db.Query("SELECT learner_id, letter, known FROM letter_knowledge WHERE run_id = ?", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge matrix: %w", err)
	}
	defer rows.Close()

	out := make(map[string][letters.Count]int)
	for rows.Next() {
		var learnerID, letter string
		var known int
		if err := rows.Scan(&learnerID, &letter, &known); err != nil {
			return nil, err
		}
		pos := letters.Position(letter)
		if pos < 0 {
			continue
		}
		bits := out[learnerID]
		bits[pos] = known
		out[learnerID] = bits
	}
	return out, rows.Err()
}

// RecordSession stores one session log row with its derived progress
// snapshot.
func (db *DB) RecordSession(school, ta, groupName, taughtLetters string, progress letters.Progress, sessionAt time.Time) error {
	// Stored as RFC3339 in UTC so MAX() over the text column orders by time.
	_, err := db.Exec(`
		INSERT INTO sessions (school, ta, group_name, taught_letters, progress_index, progress_pct, rightmost, session_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		school, ta, groupName, taughtLetters,
		progress.Index, progress.Percentage, progress.Rightmost,
		sessionAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}

// GroupProgress is the current progress snapshot for one instructional
// group, taken from its most recent session.
type GroupProgress struct {
	School        string    `json:"school"`
	TA            string    `json:"ta"`
	GroupName     string    `json:"group_name"`
	TaughtLetters string    `json:"taught_letters"`
	ProgressIndex int       `json:"progress_index"`
	ProgressPct   float64   `json:"progress_pct"`
	Rightmost     string    `json:"rightmost"`
	SessionAt     time.Time `json:"session_at"`
}

// GroupProgressRollup returns the latest session per (school, ta, group).
// sqlite guarantees that bare columns in a MAX() aggregate come from the
// row holding the maximum, which is exactly the latest-session-wins rule.
func (db *DB) GroupProgressRollup() ([]GroupProgress, error) {
	rows, err := db.Query(`
		SELECT school, ta, group_name, taught_letters,
		       progress_index, progress_pct, rightmost, MAX(session_at)
		FROM sessions
		GROUP BY school, ta, group_name
		ORDER BY school, ta, group_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress rollup: %w", err)
	}
	defer rows.Close()

	var out []GroupProgress
	for rows.Next() {
		var gp GroupProgress
		var sessionAt string
		if err := rows.Scan(
			&gp.School, &gp.TA, &gp.GroupName, &gp.TaughtLetters,
			&gp.ProgressIndex, &gp.ProgressPct, &gp.Rightmost, &sessionAt,
		); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, sessionAt); err == nil {
			gp.SessionAt = t
		}
		out = append(out, gp)
	}
	return out, rows.Err()
}

// TrackerExport records a generated tracker file so the dashboard can list
// recent exports.
type TrackerExport struct {
	ExportID  int       `json:"export_id"`
	RunID     string    `json:"run_id"`
	Filepath  string    `json:"filepath"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTrackerExport stores an export record and fills in its ID.
func (db *DB) CreateTrackerExport(export *TrackerExport) error {
	result, err := db.Exec(
		"INSERT INTO tracker_exports (run_id, filepath, filename) VALUES (?, ?, ?)",
		export.RunID, export.Filepath, export.Filename,
	)
	if err != nil {
		return fmt.Errorf("failed to create tracker export: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	export.ExportID = int(id)
	return nil
}

// RecentTrackerExports returns the most recent export records, newest first.
func (db *DB) RecentTrackerExports(limit int) ([]TrackerExport, error) {
	rows, err := db.Query(`
		SELECT export_id, run_id, filepath, filename, timestamp
		FROM tracker_exports ORDER BY timestamp DESC, export_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracker exports: %w", err)
	}
	defer rows.Close()

	var out []TrackerExport
	for rows.Next() {
		var e TrackerExport
		if err := rows.Scan(&e.ExportID, &e.RunID, &e.Filepath, &e.Filename, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
