// Package launcher holds the result and candidate types shared by every
// query source, plus the engine-wide error taxonomy.
package launcher

import "time"

// Kind classifies a result row for display and dedup purposes.
type Kind string

const (
	KindApp       Kind = "app"
	KindFile      Kind = "file"
	KindFolder    Kind = "folder"
	KindCalc      Kind = "calc"
	KindURL       Kind = "url"
	KindWeb       Kind = "web"
	KindAI        Kind = "ai"
	KindClipboard Kind = "clipboard"
	KindCommand   Kind = "command"
)

// Source identifies which matcher produced a candidate. Order matters:
// lower value wins score ties during dedup.
type Source int

const (
	SourceAppIndex Source = iota
	SourceProcIndex
	SourceHostIndex
	SourceSynthetic
)

func (s Source) String() string {
	switch s {
	case SourceAppIndex:
		return "appindex"
	case SourceProcIndex:
		return "procindex"
	case SourceHostIndex:
		return "hostindex"
	default:
		return "synthetic"
	}
}

// MatchType tags how a candidate matched the query.
type MatchType string

const (
	MatchExactName      MatchType = "exact_name"
	MatchPrefixName     MatchType = "prefix_name"
	MatchContainsName   MatchType = "contains_name"
	MatchFuzzyName      MatchType = "fuzzy_name"
	MatchPinyinFull     MatchType = "pinyin_full"
	MatchPinyinInitials MatchType = "pinyin_initials"
	MatchTrigram        MatchType = "trigram"
	MatchSynthetic      MatchType = "synthetic"
)

// Span is a matched character range within the display name, for highlighting.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Entry is one unified result row. Entries are owned by the returned result
// list; nothing mutates them after construction.
type Entry struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name,omitempty"`
	Path        string    `json:"path,omitempty"`
	Extension   string    `json:"extension,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      Source    `json:"source"`
	Score       float64   `json:"score"`
	MatchType   MatchType `json:"match_type,omitempty"`
	Spans       []Span    `json:"spans,omitempty"`
	Modified    time.Time `json:"modified,omitzero"`
}

// DedupKey returns the key used when merging candidate streams.
// File-like kinds collapse on canonical path; synthetic kinds on display text.
func (e *Entry) DedupKey() string {
	switch e.Kind {
	case KindApp, KindFile, KindFolder:
		return "p:" + lowerASCII(e.Path)
	default:
		return "k:" + string(e.Kind) + ":" + e.Name
	}
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
