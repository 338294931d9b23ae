// Package intent turns one line of user input into a typed intent.
//
// Classification is pure and total: every string maps to exactly one intent,
// and no index state is consulted. Malformed math or unit expressions still
// classify as Math/UnitConvert; evaluation errors surface later as result
// strings.
package intent

import (
	"net/url"
	"strings"
)

// Type enumerates the closed set of intents.
type Type int

const (
	Empty Type = iota
	Math
	UnitConvert
	URL
	WebSearch
	AI
	ClipboardLookup
	Shell
	FileOrApp
)

func (t Type) String() string {
	switch t {
	case Empty:
		return "empty"
	case Math:
		return "math"
	case UnitConvert:
		return "unit_convert"
	case URL:
		return "url"
	case WebSearch:
		return "web_search"
	case AI:
		return "ai"
	case ClipboardLookup:
		return "clipboard"
	case Shell:
		return "shell"
	default:
		return "file_or_app"
	}
}

// Intent is the classified form of an input line. Exactly the fields for the
// matched Type are populated.
type Intent struct {
	Type Type

	// Text carries the payload for Math, AI, ClipboardLookup, Shell and
	// FileOrApp, and the normalized URL for URL.
	Text string

	// Unit conversion fields.
	Value    float64
	FromUnit string
	ToUnit   string
	Category string

	// Web search fields.
	EngineName string
	Query      string
	URL        string
}

// Classifier classifies input against the builtin tables plus any
// user-configured web-search engines.
type Classifier struct {
	engines map[string]Engine
	units   *unitTable
}

// New returns a classifier with the builtin engine table.
func New() *Classifier {
	return NewWithEngines(nil)
}

// NewWithEngines merges extra engines over the builtin table. Extra engines
// win keyword collisions so users can shadow builtins.
func NewWithEngines(extra []Engine) *Classifier {
	engines := make(map[string]Engine, len(builtinEngines)+len(extra))
	for _, e := range builtinEngines {
		engines[e.Keyword] = e
	}
	for _, e := range extra {
		if e.Keyword != "" && strings.Contains(e.URLTemplate, "{query}") {
			engines[e.Keyword] = e
		}
	}
	return &Classifier{engines: engines, units: defaultTable}
}

// Classify maps the trimmed input to exactly one Intent. First match wins,
// in the fixed precedence order documented on each step.
func (c *Classifier) Classify(input string) Intent {
	s := strings.TrimSpace(input)

	// 1. Empty
	if s == "" {
		return Intent{Type: Empty}
	}

	// 2. Explicit calculator mode
	if rest, ok := strings.CutPrefix(s, "="); ok {
		return Intent{Type: Math, Text: strings.TrimSpace(rest)}
	}

	// 3. Shell command
	if rest, ok := strings.CutPrefix(s, "> "); ok {
		return Intent{Type: Shell, Text: strings.TrimSpace(rest)}
	}

	// 4. AI prompt
	if rest, ok := strings.CutPrefix(s, "ai "); ok {
		return Intent{Type: AI, Text: strings.TrimSpace(rest)}
	}

	// 5. Clipboard lookup
	if rest, ok := strings.CutPrefix(s, "cb "); ok {
		return Intent{Type: ClipboardLookup, Text: strings.TrimSpace(rest)}
	}

	// 6. Unit conversion ("1 km to mi", "100cm to m")
	if conv, ok := c.units.parse(s); ok {
		return conv
	}

	// 7. Bare math
	if looksLikeMath(s) {
		return Intent{Type: Math, Text: s}
	}

	// 8. Web search keyword ("gh rust")
	if kw, rest, ok := strings.Cut(s, " "); ok {
		if e, found := c.engines[kw]; found && strings.TrimSpace(rest) != "" {
			q := strings.TrimSpace(rest)
			return Intent{
				Type:       WebSearch,
				EngineName: e.Name,
				Query:      q,
				URL:        e.BuildURL(q),
			}
		}
	}

	// 9. URL heuristic
	if u, ok := normalizeURL(s); ok {
		return Intent{Type: URL, Text: u}
	}

	// 10. Everything else is a file or app lookup
	return Intent{Type: FileOrApp, Text: s}
}

// mathFuncs are the named unary functions accepted in bare math mode.
var mathFuncs = []string{"sin", "cos", "tan", "sqrt", "log", "ln", "abs"}

func looksLikeMath(s string) bool {
	for _, fn := range mathFuncs {
		if strings.Contains(s, fn) {
			return true
		}
	}
	hasOperator := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ' ', r == '(', r == ')':
		case r == '+', r == '-', r == '*', r == '/', r == '^', r == '%':
			hasOperator = true
		default:
			return false
		}
	}
	return hasOperator
}

// normalizeURL applies the URL heuristic: explicit scheme or www prefix, or
// a dotted token whose last segment is 2+ ASCII letters. The returned URL
// always carries a scheme.
func normalizeURL(s string) (string, bool) {
	if strings.ContainsAny(s, " \t") {
		return "", false
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s, true
	}
	if strings.HasPrefix(s, "www.") {
		return "https://" + s, true
	}
	if !strings.Contains(s, ".") {
		return "", false
	}
	segs := strings.Split(s, ".")
	last := segs[len(segs)-1]
	// strip any path from the TLD segment ("example.com/watch")
	if i := strings.IndexAny(last, "/?#"); i >= 0 {
		last = last[:i]
	}
	if len(last) < 2 {
		return "", false
	}
	for _, r := range last {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return "", false
		}
	}
	return "https://" + s, true
}

// percentEncode is query escaping with spaces as %20 rather than '+',
// matching what URL templates expect in a query position.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
