package letters

import (
	"math"
	"testing"
)

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name          string
		taught        string
		wantIndex     int
		wantPct       float64
		wantRightmost string
	}{
		{"vowels", "a,e,i", 2, 3.0 / 26 * 100, "i"},
		{"empty string", "", -1, 0, ""},
		{"only commas", ", ,,", -1, 0, ""},
		{"unknown token ignored", "a,zz", 0, 1.0 / 26 * 100, "a"},
		{"all unknown", "zz,yy", -1, 0, ""},
		{"whitespace and case", " A , e ,  I ", 2, 3.0 / 26 * 100, "i"},
		{"order does not matter", "i,a,e", 2, 3.0 / 26 * 100, "i"},
		{"last letter", "j", 25, 100, "j"},
		{"skipped letters still count furthest", "a,d", 14, 15.0 / 26 * 100, "d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateProgress(tt.taught)
			if got.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", got.Index, tt.wantIndex)
			}
			if math.Abs(got.Percentage-tt.wantPct) > 1e-9 {
				t.Errorf("Percentage = %f, want %f", got.Percentage, tt.wantPct)
			}
			if got.Rightmost != tt.wantRightmost {
				t.Errorf("Rightmost = %q, want %q", got.Rightmost, tt.wantRightmost)
			}
		})
	}
}

func TestCalculateProgressDeterministic(t *testing.T) {
	a := CalculateProgress("m, b, a, e")
	b := CalculateProgress("m, b, a, e")
	if a != b {
		t.Errorf("same input produced different results: %+v vs %+v", a, b)
	}
}
