package letters

import "strings"

// Progress is a point-in-time snapshot of how far along the teaching
// sequence a group has reached, derived from one session's free-text
// taught-letters field.
type Progress struct {
	// Index is the zero-based position of the furthest letter reached, or
	// -1 when no recognisable letter was logged.
	Index int `json:"index"`
	// Percentage is (Index+1)/26 * 100, or 0 when Index is -1.
	Percentage float64 `json:"percentage"`
	// Rightmost is the letter at Index, or "" when Index is -1.
	Rightmost string `json:"rightmost"`
}

// CalculateProgress converts a free-text, comma-separated list of taught
// letters (e.g. "a, e, i") into a position within the teaching sequence.
// Tokens are trimmed and lowercased; empty tokens and tokens that are not in
// the sequence are dropped silently. The furthest position wins, and because
// positions are unique per letter the result does not depend on token order.
func CalculateProgress(taught string) Progress {
	result := Progress{Index: -1}
	for _, tok := range strings.Split(taught, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		pos := Position(tok)
		if pos > result.Index {
			result.Index = pos
			result.Rightmost = tok
		}
	}
	if result.Index >= 0 {
		result.Percentage = float64(result.Index+1) / float64(Count) * 100
	}
	return result
}
