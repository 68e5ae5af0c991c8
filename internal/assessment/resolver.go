package assessment

import (
	"math"
	"strconv"
	"strings"
)

// Mark is the resolved state of one administered item.
type Mark int

const (
	// MarkNotAdministered covers items beyond the stop rule, missing cells
	// and unparseable values.
	MarkNotAdministered Mark = iota
	MarkCorrect
	MarkIncorrect
)

// Sentinel renders the legacy scoring-sheet encoding used by downstream
// tracker consumers: 'X' for incorrect, '0' for correct, empty for not
// administered. The inversion is a paper-sheet convention; do not read '0'
// as zero.
func (m Mark) Sentinel() string {
	switch m {
	case MarkCorrect:
		return "0"
	case MarkIncorrect:
		return "X"
	}
	return ""
}

func (m Mark) String() string {
	switch m {
	case MarkCorrect:
		return "correct"
	case MarkIncorrect:
		return "incorrect"
	}
	return "not_administered"
}

// ResolvedItem is one chart item after applying the stop rule and value
// coercion for the selected round.
type ResolvedItem struct {
	Domain Domain `json:"domain"`
	Index  int    `json:"index"` // 1-based chart position
	Label  string `json:"label"`
	Mark   Mark   `json:"mark"`
}

// parseNumeric coerces a raw cell or scalar to a float. The second return
// value is false for absent, blank, non-numeric or NaN values.
func parseNumeric(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "na") || strings.EqualFold(raw, "nan") {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// SelectRound picks the round used for resolution: a2 when its score scalar
// is present and numeric, a1 otherwise.
func SelectRound(rec *LearnerRecord, d Domain) Round {
	if _, ok := parseNumeric(rec.Scores[ScalarKey{Domain: d, Round: RoundA2}]); ok {
		return RoundA2
	}
	return RoundA1
}

// ResolveDomain resolves every item on a domain's chart for one learner.
// The computation is pure: it reads the record's raw cells and scalars and
// never mutates them. Missing columns degrade to MarkNotAdministered so a
// partial export still yields a full (if sparse) result row.
func ResolveDomain(rec *LearnerRecord, d Domain) []ResolvedItem {
	round := SelectRound(rec, d)

	attempted, ok := parseNumeric(rec.Attempted[ScalarKey{Domain: d, Round: round}])
	if !ok {
		attempted = 0
	}

	items := Items(d)
	resolved := make([]ResolvedItem, len(items))
	for i, label := range items {
		index := i + 1
		item := ResolvedItem{Domain: d, Index: index, Label: label}

		// Items past the stop rule are never counted, whatever the raw
		// cell says.
		if float64(index) > attempted {
			resolved[i] = item
			continue
		}

		raw, present := rec.RawCells[CellKey{Domain: d, Round: round, Index: index}]
		if !present {
			resolved[i] = item
			continue
		}
		switch v, ok := parseNumeric(raw); {
		case !ok:
			// unparseable: treated the same as not administered
		case v == 0:
			item.Mark = MarkIncorrect
		case v == 1:
			item.Mark = MarkCorrect
		}
		resolved[i] = item
	}
	return resolved
}

// ResolveAll resolves all three domains for one learner.
func ResolveAll(rec *LearnerRecord) []ResolvedItem {
	var out []ResolvedItem
	for _, d := range Domains {
		out = append(out, ResolveDomain(rec, d)...)
	}
	return out
}
