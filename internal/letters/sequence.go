// Package letters holds the canonical teaching-order alphabet used by the
// programme and the progress calculations derived from it.
package letters

// Sequence is the frequency-based teaching order. Instructors work through
// the alphabet in this order, vowels first, so "how far along the sequence a
// group has reached" is the programme's primary progress measure. Changing
// the order is a deployment-time decision, not a runtime one.
var Sequence = []string{
	"a", "e", "i", "o", "u",
	"b", "l", "m", "k", "p",
	"s", "h", "z", "n", "d",
	"y", "f", "w", "v", "x",
	"g", "t", "q", "r", "c", "j",
}

// Count is the number of letters in the teaching sequence.
const Count = 26

var positions = buildPositions()

func buildPositions() map[string]int {
	m := make(map[string]int, len(Sequence))
	for i, l := range Sequence {
		m[l] = i
	}
	return m
}

// Position returns the zero-based position of letter in the teaching
// sequence, or -1 if the letter is not part of the sequence.
func Position(letter string) int {
	if pos, ok := positions[letter]; ok {
		return pos
	}
	return -1
}

// All returns a copy of the teaching sequence so callers cannot mutate the
// canonical order.
func All() []string {
	out := make([]string, len(Sequence))
	copy(out, Sequence)
	return out
}
