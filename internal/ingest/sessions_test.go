package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseSessions(t *testing.T) {
	rows := [][]string{
		{"school", "ta", "group", "letters_taught", "timestamp"},
		{"Seyisi Primary", "Nomsa D", "Group 1", "a, e, i", "2026-03-02 10:30:00"},
		{"Seyisi Primary", "Nomsa D", "Group 2", "a, e", "2026-03-02"},
	}
	sessions, err := ParseSessions(rows)
	if err != nil {
		t.Fatalf("ParseSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}

	s := sessions[0]
	if s.School != "Seyisi Primary" || s.TA != "Nomsa D" || s.GroupName != "Group 1" {
		t.Errorf("identity fields wrong: %+v", s)
	}
	if s.TaughtLetters != "a, e, i" {
		t.Errorf("taught letters = %q", s.TaughtLetters)
	}
	want := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	if !s.SessionAt.Equal(want) {
		t.Errorf("session time = %v, want %v", s.SessionAt, want)
	}
}

func TestParseSessionsSkipsBadTimestamps(t *testing.T) {
	rows := [][]string{
		{"school", "ta", "group", "letters_taught", "timestamp"},
		{"Seyisi Primary", "Nomsa D", "Group 1", "a", "not-a-date"},
		{"Seyisi Primary", "Nomsa D", "Group 1", "a", ""},
		{"Seyisi Primary", "Nomsa D", "Group 1", "a", "2026-03-02T08:00:00Z"},
	}
	sessions, err := ParseSessions(rows)
	if err != nil {
		t.Fatalf("ParseSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("got %d sessions, want 1 (bad timestamps skipped)", len(sessions))
	}
}

func TestLoadSessionsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	content := "school,ta,group,letters_taught,timestamp\n" +
		"Khwezi Primary,Zanele M,Group 3,\"a, e, i, o\",2026-03-05T09:00:00Z\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	sessions, err := LoadSessions(path)
	if err != nil {
		t.Fatalf("LoadSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].TaughtLetters != "a, e, i, o" {
		t.Errorf("unexpected sessions: %+v", sessions)
	}
}
