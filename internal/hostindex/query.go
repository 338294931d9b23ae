package hostindex

import "strings"

// BuildQuery synthesizes the host-index query from a plain input string
// ("smart wildcard"):
//
//	"chrome"        -> "*chrome*"
//	"pkg_x.pck"     -> "*pkg_x.pck*"   (filename stays whole)
//	"google chrome" -> "*google* *chrome*"  (AND semantics)
//	""              -> ""
func BuildQuery(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	if looksLikeFilename(input) {
		return "*" + input + "*"
	}
	if strings.ContainsAny(input, " \t") {
		tokens := strings.Fields(input)
		for i, tok := range tokens {
			tokens[i] = "*" + tok + "*"
		}
		return strings.Join(tokens, " ")
	}
	return "*" + input + "*"
}

// looksLikeFilename reports whether input is a single "stem.ext" token:
// the extension is 10 chars or fewer and carries no spaces.
func looksLikeFilename(input string) bool {
	dot := strings.LastIndex(input, ".")
	if dot < 0 {
		return false
	}
	ext := input[dot+1:]
	return len(ext) > 0 && len(ext) <= 10 && !strings.Contains(ext, " ")
}
