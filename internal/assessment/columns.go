package assessment

import (
	"fmt"
	"regexp"
	"strconv"
)

// The survey export encodes its schema in column names:
//
//	letters_a1_7          raw cell, item 7 of the letters chart, round a1
//	letters_attempted_a1  highest item index administered before the stop rule
//	letters_score_a2      assessment-provided score for round a2
//
// CellKey and ScalarKey give those names a typed form shared by the ingest
// layer and the storage layer.

// CellKey addresses one raw item cell on a learner record.
type CellKey struct {
	Domain Domain
	Round  Round
	Index  int // 1-based position on the domain's chart
}

// ColumnName renders the key back into the export's column convention.
func (k CellKey) ColumnName() string {
	return fmt.Sprintf("%s_%s_%d", k.Domain, k.Round, k.Index)
}

// ScalarKey addresses a per-domain, per-round scalar column.
type ScalarKey struct {
	Domain Domain
	Round  Round
}

// AttemptedColumn renders the stop-rule scalar column name.
func (k ScalarKey) AttemptedColumn() string {
	return fmt.Sprintf("%s_attempted_%s", k.Domain, k.Round)
}

// ScoreColumn renders the score scalar column name.
func (k ScalarKey) ScoreColumn() string {
	return fmt.Sprintf("%s_score_%s", k.Domain, k.Round)
}

var (
	cellColumnRe      = regexp.MustCompile(`^(letters|nonwords|words)_(a1|a2)_([0-9]+)$`)
	attemptedColumnRe = regexp.MustCompile(`^(letters|nonwords|words)_attempted_(a1|a2)$`)
	scoreColumnRe     = regexp.MustCompile(`^(letters|nonwords|words)_score_(a1|a2)$`)
)

// ParseCellColumn parses an export column name into a CellKey. The second
// return value reports whether the name follows the cell convention.
func ParseCellColumn(name string) (CellKey, bool) {
	m := cellColumnRe.FindStringSubmatch(name)
	if m == nil {
		return CellKey{}, false
	}
	idx, err := strconv.Atoi(m[3])
	if err != nil || idx < 1 {
		return CellKey{}, false
	}
	return CellKey{Domain: Domain(m[1]), Round: Round(m[2]), Index: idx}, true
}

// ParseAttemptedColumn parses a stop-rule scalar column name.
func ParseAttemptedColumn(name string) (ScalarKey, bool) {
	m := attemptedColumnRe.FindStringSubmatch(name)
	if m == nil {
		return ScalarKey{}, false
	}
	return ScalarKey{Domain: Domain(m[1]), Round: Round(m[2])}, true
}

// ParseScoreColumn parses a score scalar column name.
func ParseScoreColumn(name string) (ScalarKey, bool) {
	m := scoreColumnRe.FindStringSubmatch(name)
	if m == nil {
		return ScalarKey{}, false
	}
	return ScalarKey{Domain: Domain(m[1]), Round: Round(m[2])}, true
}
