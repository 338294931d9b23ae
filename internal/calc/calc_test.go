package calc

import (
	"strings"
	"testing"

	"github.com/tomhartill/omnidex/internal/intent"
)

func evalText(t *testing.T, input string) string {
	t.Helper()
	in := intent.New().Classify(input)
	display, errMsg := Evaluate(in)
	if errMsg != "" {
		t.Fatalf("Evaluate(%q): %s", input, errMsg)
	}
	return display
}

func TestEvaluateMath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"=2+2", "4"},
		{"=2 * (3+4)", "14"},
		{"=10/4", "2.5"},
		{"=2^10", "1024"},
		{"=10 % 3", "1"},
		{"=-5 + 2", "-3"},
		{"=sqrt(16)", "4"},
		{"=abs(-3)", "3"},
		{"=sin(0)", "0"},
		{"=log(100)", "2"},
		{"=ln(1)", "0"},
	}
	for _, tt := range tests {
		if got := evalText(t, tt.input); got != tt.want {
			t.Errorf("%q = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEvaluateMathErrors(t *testing.T) {
	for _, input := range []string{"=1/0", "=((", "="} {
		in := intent.New().Classify(input)
		_, errMsg := Evaluate(in)
		if !strings.HasPrefix(errMsg, "Math error:") {
			t.Errorf("%q: got %q, want a math error", input, errMsg)
		}
	}
}

func TestEvaluateUnitConversions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 km to m", "1000"},
		{"1 km to mi", "0.621371"},
		{"0 C to F", "32"},
		{"32 F to C", "0"},
		{"1 GB to MB", "1024"},
		{"1 kg to g", "1000"},
		{"0 C to K", "273.15"},
		{"1 h to min", "60"},
	}
	for _, tt := range tests {
		if got := evalText(t, tt.input); got != tt.want {
			t.Errorf("%q = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{4, "4"},
		{4.00001, "4"},    // within 1e-4 of integer
		{2.5, "2.5"},
		{0.621371, "0.621371"},
		{1234.5678, "1.2346e+03"},
		{0.0001234, "1.2340e-04"},
		{-3, "-3"},
	}
	for _, tt := range tests {
		if got := Format(tt.v); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
