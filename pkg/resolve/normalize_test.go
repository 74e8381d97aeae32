package resolve

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Embry\u2010Riddle Aeronautical University", "Embry-Riddle Aeronautical University"},
		{"University of Illinois at Urbana\u2010Champaign\u2010X", "University of Illinois at Urbana-Champaign-X"},
		{"Texas A&M University \u2013 Commerce", "Texas A&M University \u2013 Commerce"}, // en dash untouched
		{"  Spaced  ", "  Spaced  "},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
