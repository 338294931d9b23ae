// Package appindex maintains the in-memory catalog of launchable
// applications and serves ranked matches over mixed CJK and Latin names.
package appindex

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/tomhartill/omnidex/internal/launcher"
	"github.com/tomhartill/omnidex/internal/logging"
)

var appLog = logging.ForComponent(logging.CompAppIndex)

// Tier is the provenance of a discovered entry. Menu-surface entries win
// dedup collisions and get a score boost.
type Tier int

const (
	TierStartMenu Tier = iota
	TierDesktop
	TierUserApps
	TierSystemApps
)

func (t Tier) String() string {
	switch t {
	case TierStartMenu:
		return "start_menu"
	case TierDesktop:
		return "desktop"
	case TierUserApps:
		return "user_apps"
	default:
		return "system_apps"
	}
}

// Entry is one indexed application.
type Entry struct {
	Name           string
	DisplayName    string
	PinyinFull     string
	PinyinInitials string
	Path           string
	Extension      string
	Tier           Tier

	// scanOrder breaks score ties stably.
	scanOrder int
}

// Result is a scored match.
type Result struct {
	Entry     Entry
	Score     int
	MatchType launcher.MatchType
	Spans     []launcher.Span
}

// noiseTokens filter out uninstallers and documentation shortcuts.
var noiseTokens = []string{"uninstall", "卸载", "readme", "help"}

// Indexer holds the app catalog behind a single RW lock. Refresh replaces
// the whole slice; Search only ever takes the read lock.
type Indexer struct {
	mu       sync.RWMutex
	entries  []Entry
	discover DiscoverFunc
}

// New creates an indexer with the platform's default discovery sources.
func New() *Indexer {
	return NewWithDiscovery(defaultDiscovery)
}

// NewWithDiscovery creates an indexer with a custom discovery function.
// Tests seed deterministic catalogs this way.
func NewWithDiscovery(discover DiscoverFunc) *Indexer {
	return &Indexer{discover: discover}
}

// Refresh rescans the discovery sources and replaces the catalog.
// Returns the number of unique entries indexed.
func (ix *Indexer) Refresh(ctx context.Context) (int, error) {
	raw, err := ix.discover(ctx)
	if err != nil {
		return 0, err
	}

	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		if e.Name == "" || isNoise(e.Name) {
			continue
		}
		e.PinyinFull, e.PinyinInitials = ToPinyin(e.Name)
		entries = append(entries, e)
	}
	entries = dedupe(entries)
	for i := range entries {
		entries[i].scanOrder = i
	}

	ix.mu.Lock()
	ix.entries = entries
	ix.mu.Unlock()

	appLog.Info("app_index_refreshed", slog.Int("count", len(entries)))
	return len(entries), nil
}

// Seed replaces the catalog directly, running the same normalization as
// Refresh: noise filtering, pinyin generation and name dedup.
func (ix *Indexer) Seed(entries []Entry) {
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" || isNoise(e.Name) {
			continue
		}
		e.PinyinFull, e.PinyinInitials = ToPinyin(e.Name)
		kept = append(kept, e)
	}
	kept = dedupe(kept)
	for i := range kept {
		kept[i].scanOrder = i
	}
	ix.mu.Lock()
	ix.entries = kept
	ix.mu.Unlock()
}

// Count returns the number of indexed apps.
func (ix *Indexer) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

func isNoise(name string) bool {
	lower := strings.ToLower(name)
	for _, tok := range noiseTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// dedupe collapses entries with the same case-insensitive name, preferring
// the lower tier (start menu first).
func dedupe(entries []Entry) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		ni, nj := strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name)
		if ni != nj {
			return ni < nj
		}
		return entries[i].Tier < entries[j].Tier
	})
	out := entries[:0]
	var prev string
	for _, e := range entries {
		lower := strings.ToLower(e.Name)
		if lower == prev {
			continue
		}
		prev = lower
		out = append(out, e)
	}
	return out
}

// Score bucket constants. Each entry takes its best bucket, then positive
// scores get the tier and extension boosts.
const (
	scoreExactName      = 10000
	scorePinyinFull     = 9000
	scorePinyinInitials = 8500
	scorePrefixName     = 8000
	scorePinyinPrefix   = 7000
	scoreInitialsPrefix = 6500
	scoreContainsName   = 6000
	fuzzyNameBoost      = 1000
	fuzzyPinyinBoost    = 500
	boostStartMenu      = 200
	boostShortcut       = 100
)

// Search returns at most k entries sorted by descending score; ties break by
// original scan order. Empty query returns nothing.
func (ix *Indexer) Search(query string, k int) []Result {
	if query == "" || k <= 0 {
		return nil
	}
	q := strings.ToLower(query)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := make([]Result, 0, 16)
	for i := range ix.entries {
		if r, ok := scoreEntry(&ix.entries[i], q); ok {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entry.scanOrder < results[j].Entry.scanOrder
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func scoreEntry(e *Entry, q string) (Result, bool) {
	best := 0
	matchType := launcher.MatchFuzzyName
	var spans []launcher.Span

	take := func(score int, mt launcher.MatchType, sp []launcher.Span) {
		if score > best {
			best, matchType, spans = score, mt, sp
		}
	}

	nameLower := strings.ToLower(e.Name)
	switch {
	case nameLower == q:
		take(scoreExactName, launcher.MatchExactName, wholeSpan(nameLower))
	case strings.HasPrefix(nameLower, q):
		take(scorePrefixName+lengthBonus(nameLower), launcher.MatchPrefixName,
			[]launcher.Span{{Start: 0, End: len(q)}})
	case strings.Contains(nameLower, q):
		at := strings.Index(nameLower, q)
		take(scoreContainsName+lengthBonus(nameLower), launcher.MatchContainsName,
			[]launcher.Span{{Start: at, End: at + len(q)}})
	}

	if score, sp, ok := fuzzyScore(q, nameLower); ok {
		take(score+fuzzyNameBoost, launcher.MatchFuzzyName, sp)
	}

	if e.PinyinFull != "" {
		switch {
		case e.PinyinFull == q:
			take(scorePinyinFull, launcher.MatchPinyinFull, nil)
		case strings.HasPrefix(e.PinyinFull, q):
			take(scorePinyinPrefix+lengthBonus(e.PinyinFull), launcher.MatchPinyinFull, nil)
		default:
			if score, _, ok := fuzzyScore(q, e.PinyinFull); ok {
				take(score+fuzzyPinyinBoost, launcher.MatchPinyinFull, nil)
			}
		}
	}

	if e.PinyinInitials != "" {
		switch {
		case e.PinyinInitials == q:
			take(scorePinyinInitials, launcher.MatchPinyinInitials, nil)
		case strings.HasPrefix(e.PinyinInitials, q):
			take(scoreInitialsPrefix+lengthBonus(e.PinyinInitials), launcher.MatchPinyinInitials, nil)
		}
	}

	if best <= 0 {
		return Result{}, false
	}
	if e.Tier == TierStartMenu {
		best += boostStartMenu
	}
	if isShortcutExt(e.Extension) {
		best += boostShortcut
	}
	return Result{Entry: *e, Score: best, MatchType: matchType, Spans: spans}, true
}

func lengthBonus(s string) int {
	if b := 100 - len(s); b > 0 {
		return b
	}
	return 0
}

func wholeSpan(s string) []launcher.Span {
	return []launcher.Span{{Start: 0, End: len(s)}}
}

// isShortcutExt reports whether the extension is a shortcut form, which
// users prefer over the raw executable.
func isShortcutExt(ext string) bool {
	switch ext {
	case "lnk", "desktop", "app":
		return true
	}
	return false
}

// fuzzyScore runs the skim-style matcher over a single string.
func fuzzyScore(q, s string) (int, []launcher.Span, bool) {
	matches := fuzzy.Find(q, []string{s})
	if len(matches) == 0 {
		return 0, nil, false
	}
	m := matches[0]
	spans := make([]launcher.Span, 0, len(m.MatchedIndexes))
	for _, idx := range m.MatchedIndexes {
		spans = append(spans, launcher.Span{Start: idx, End: idx + 1})
	}
	return m.Score, spans, true
}
