package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTotality(t *testing.T) {
	// every input maps to exactly one variant; none of these may panic
	c := New()
	inputs := []string{
		"", " ", "=", "= ", "> ", "ai ", "cb ", "a", "微信",
		"=2+2", "1 km to mi", "http://x.y", "gh rust", "example.com",
		"!!!", "1+", "....", "\t\n", "chr", "sin(0)",
	}
	for _, in := range inputs {
		got := c.Classify(in)
		assert.GreaterOrEqual(t, int(got.Type), int(Empty), "input %q", in)
		assert.LessOrEqual(t, int(got.Type), int(FileOrApp), "input %q", in)
	}
}

func TestClassifyPrecedence(t *testing.T) {
	c := New()
	tests := []struct {
		input string
		want  Type
	}{
		{"", Empty},
		{"   ", Empty},
		{"=1+1", Math},          // explicit math beats everything
		{"=example.com", Math},  // even URL-shaped payloads
		{"> ls -la", Shell},
		{"ai what is go", AI},
		{"cb token", ClipboardLookup},
		{"1 km to mi", UnitConvert},
		{"100cm to m", UnitConvert},
		{"2+2", Math},           // bare math needs an operator
		{"1234", FileOrApp},     // plain number is not math
		{"gh rust", WebSearch},  // keyword beats URL heuristic
		{"gh", FileOrApp},       // keyword alone is a lookup
		{"example.com", URL},
		{"www.example.com", URL},
		{"http://example.com", URL},
		{"chrome", FileOrApp},
		{"微信", FileOrApp},
		{"Chrome Notes.md", FileOrApp}, // whitespace disables URL heuristic
	}
	for _, tt := range tests {
		got := c.Classify(tt.input)
		assert.Equal(t, tt.want, got.Type, "input %q", tt.input)
	}
}

func TestClassifyMathPayload(t *testing.T) {
	c := New()
	in := c.Classify("= 2 * (3+4) ")
	require.Equal(t, Math, in.Type)
	assert.Equal(t, "2 * (3+4)", in.Text)
}

func TestClassifyUnitConvert(t *testing.T) {
	c := New()
	tests := []struct {
		input    string
		value    float64
		from, to string
		category string
	}{
		{"1 km to mi", 1, "km", "mi", "length"},
		{"100km to mi", 100, "km", "mi", "length"},
		{"0 C to F", 0, "C", "F", "temperature"},
		{"0 °C to °F", 0, "C", "F", "temperature"}, // glyph forms normalize
		{"1 GB to MB", 1, "GB", "MB", "data"},
		{"2.5 kg to g", 2.5, "kg", "g", "weight"},
	}
	for _, tt := range tests {
		in := c.Classify(tt.input)
		require.Equal(t, UnitConvert, in.Type, "input %q", tt.input)
		assert.Equal(t, tt.value, in.Value, "input %q", tt.input)
		assert.Equal(t, tt.from, in.FromUnit, "input %q", tt.input)
		assert.Equal(t, tt.to, in.ToUnit, "input %q", tt.input)
		assert.Equal(t, tt.category, in.Category, "input %q", tt.input)
	}
}

func TestClassifyUnitConvertRejectsCrossCategory(t *testing.T) {
	c := New()
	// km and kg live in different tables; fall through to file lookup
	in := c.Classify("1 km to kg")
	assert.NotEqual(t, UnitConvert, in.Type)
}

func TestClassifyWebSearch(t *testing.T) {
	c := New()
	in := c.Classify("gh rust")
	require.Equal(t, WebSearch, in.Type)
	assert.Equal(t, "GitHub", in.EngineName)
	assert.Equal(t, "rust", in.Query)
	assert.Equal(t, "https://github.com/search?q=rust", in.URL)
}

func TestClassifyWebSearchEncoding(t *testing.T) {
	c := New()
	in := c.Classify("gg hello world")
	require.Equal(t, WebSearch, in.Type)
	assert.Contains(t, in.URL, "hello%20world")
	assert.NotContains(t, in.URL, "+")
}

func TestClassifyURLNormalization(t *testing.T) {
	c := New()
	tests := []struct {
		input string
		want  string
	}{
		{"example.com", "https://example.com"},
		{"www.example.com", "https://www.example.com"},
		{"http://example.com", "http://example.com"},
		{"youtube.com/watch", "https://youtube.com/watch"},
	}
	for _, tt := range tests {
		in := c.Classify(tt.input)
		require.Equal(t, URL, in.Type, "input %q", tt.input)
		assert.Equal(t, tt.want, in.Text, "input %q", tt.input)
	}
}

func TestClassifyURLRejects(t *testing.T) {
	c := New()
	for _, input := range []string{"file.1", "a.b c", "v1.2.3", "nodots"} {
		in := c.Classify(input)
		assert.NotEqual(t, URL, in.Type, "input %q", input)
	}
}

func TestCustomEngines(t *testing.T) {
	c := NewWithEngines([]Engine{
		{Keyword: "rs", Name: "docs.rs", URLTemplate: "https://docs.rs/releases/search?query={query}"},
		{Keyword: "bad", Name: "broken", URLTemplate: "https://x.test/no-placeholder"},
	})

	in := c.Classify("rs serde")
	require.Equal(t, WebSearch, in.Type)
	assert.Equal(t, "docs.rs", in.EngineName)
	assert.Equal(t, "https://docs.rs/releases/search?query=serde", in.URL)

	// engines without {query} are dropped at construction
	in = c.Classify("bad query")
	assert.NotEqual(t, WebSearch, in.Type)
}

func TestCustomEngineShadowsBuiltin(t *testing.T) {
	c := NewWithEngines([]Engine{
		{Keyword: "gh", Name: "GitLab", URLTemplate: "https://gitlab.com/search?search={query}"},
	})
	in := c.Classify("gh rust")
	require.Equal(t, WebSearch, in.Type)
	assert.Equal(t, "GitLab", in.EngineName)
}

func TestLooksLikeMath(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2+2", true},
		{"(1+2)*3", true},
		{"2^10", true},
		{"10 % 3", true},
		{"sqrt(16)", true},
		{"1234", false}, // digits without operator
		{"hello", false},
		{"a+b", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, looksLikeMath(tt.input), "input %q", tt.input)
	}
}

func TestConversionRates(t *testing.T) {
	from, to, ok := ConversionRates("length", "km", "m")
	require.True(t, ok)
	assert.Equal(t, float64(1000), from/to)

	_, _, ok = ConversionRates("length", "km", "kg")
	assert.False(t, ok)
}
