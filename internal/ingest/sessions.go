package ingest

import (
	"fmt"
	"time"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/monitoring"
)

// Session is one TeamPact session-tracking row: an instructor logged a
// teaching session for one group, including the free-text letters taught.
type Session struct {
	School        string    `json:"school"`
	TA            string    `json:"ta"`
	GroupName     string    `json:"group_name"`
	TaughtLetters string    `json:"taught_letters"`
	SessionAt     time.Time `json:"session_at"`
}

// sessionTimeLayouts lists the timestamp formats seen across TeamPact
// exports, tried in order.
var sessionTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
}

func parseSessionTime(raw string) (time.Time, error) {
	for _, layout := range sessionTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

// LoadSessions reads a TeamPact session export (CSV or xlsx).
func LoadSessions(path string) ([]Session, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return ParseSessions(rows)
}

// ParseSessions converts raw table rows (header first) into sessions. Rows
// without a parseable timestamp are skipped with a log line; the progress
// snapshot for a group comes from its latest session, so an unusable
// timestamp makes the row unusable.
func ParseSessions(rows [][]string) ([]Session, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("export is empty")
	}
	idx := headerIndex(rows[0])

	sessions := make([]Session, 0, len(rows)-1)
	for rowNum, row := range rows[1:] {
		raw := lookup(idx, row, "timestamp", "session_at", "date", "session_started")
		at, err := parseSessionTime(raw)
		if err != nil {
			monitoring.Logf("skipping session row %d: %v", rowNum+2, err)
			continue
		}
		sessions = append(sessions, Session{
			School:        lookup(idx, row, "school", "school_name"),
			TA:            lookup(idx, row, "ta", "ea", "ea_name", "ta_name", "collector"),
			GroupName:     lookup(idx, row, "group", "group_name"),
			TaughtLetters: lookup(idx, row, "letters_taught", "taught_letters", "letters"),
			SessionAt:     at,
		})
	}
	return sessions, nil
}
