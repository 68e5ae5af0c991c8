package letters

import "testing"

func TestSequenceHas26UniqueLetters(t *testing.T) {
	if len(Sequence) != Count {
		t.Fatalf("sequence has %d letters, want %d", len(Sequence), Count)
	}

	seen := make(map[string]bool)
	for _, l := range Sequence {
		if len(l) != 1 {
			t.Errorf("letter %q is not a single character", l)
		}
		if seen[l] {
			t.Errorf("letter %q appears more than once", l)
		}
		seen[l] = true
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		letter string
		want   int
	}{
		{"a", 0},
		{"u", 4},
		{"b", 5},
		{"j", 25},
		{"A", -1}, // positions are lowercase only
		{"zz", -1},
		{"", -1},
	}

	for _, tt := range tests {
		if got := Position(tt.letter); got != tt.want {
			t.Errorf("Position(%q) = %d, want %d", tt.letter, got, tt.want)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0] = "mutated"
	if Sequence[0] != "a" {
		t.Error("mutating All() result changed the canonical sequence")
	}
}
