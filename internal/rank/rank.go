// Package rank scores candidate entries and orders merged result lists.
package rank

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/tomhartill/omnidex/internal/frecency"
	"github.com/tomhartill/omnidex/internal/launcher"
)

const (
	baseExact    = 100.0
	basePrefix   = 50.0
	baseContains = 25.0

	wordBoundaryBonus = 20.0

	frequencyWeight = 5.0
	recencyWeight   = 10.0
	recencyHalfDays = 30.0

	maxLengthPenalty = 5.0
)

// Ranker computes relevance scores. It reads frecency summaries but never
// writes them.
type Ranker struct {
	store *frecency.Store
	now   func() time.Time
}

func New(store *frecency.Store) *Ranker {
	return &Ranker{store: store, now: time.Now}
}

// SetClock overrides the recency reference time, for tests.
func (r *Ranker) SetClock(now func() time.Time) {
	r.now = now
}

// Score computes the generic relevance score for an entry against query.
// Entries whose display name does not contain the query at all still get
// their frecency contribution, so previously launched items surface on
// loose matches from the fuzzy tiers.
func (r *Ranker) Score(query string, e *launcher.Entry) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	name := strings.ToLower(e.Name)

	var score float64
	switch {
	case q == "":
	case name == q:
		score = baseExact
	case strings.HasPrefix(name, q):
		score = basePrefix
	case strings.Contains(name, q):
		score = baseContains
	}

	if q != "" && score > 0 && matchesWordBoundary(name, q) {
		score += wordBoundaryBonus
	}

	score += r.frecencyBonus(e.DedupKey())
	score -= lengthPenalty(e.Name)
	if score < 0 {
		score = 0
	}
	return score
}

// ScoreApp is the app source's contribution: the matcher's bucket score on
// top of the generic formula.
func (r *Ranker) ScoreApp(query string, e *launcher.Entry, bucket int) float64 {
	return r.Score(query, e) + float64(bucket)
}

// ScoreProc is the in-process indexer's contribution, the full formula.
func (r *Ranker) ScoreProc(query string, e *launcher.Entry) float64 {
	return r.Score(query, e)
}

// ScoreHost is the external adapter's contribution. Rows from the host index
// get base plus recency only; their access counts stay with the app and
// in-proc copies of the same path.
func (r *Ranker) ScoreHost(query string, e *launcher.Entry) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	name := strings.ToLower(e.Name)

	var score float64
	switch {
	case q == "":
	case name == q:
		score = baseExact
	case strings.HasPrefix(name, q):
		score = basePrefix
	case strings.Contains(name, q):
		score = baseContains
	}
	_, rec := r.frecencyParts(e.DedupKey())
	score += rec
	if score < 0 {
		score = 0
	}
	return score
}

// frecencyBonus is ln(1+count)*5 plus exp(-days/30)*10.
func (r *Ranker) frecencyBonus(id string) float64 {
	freq, rec := r.frecencyParts(id)
	return freq + rec
}

func (r *Ranker) frecencyParts(id string) (freq, rec float64) {
	if r.store == nil {
		return 0, 0
	}
	record, ok := r.store.Get(id)
	if !ok {
		return 0, 0
	}
	days := r.now().Sub(record.LastTS).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Log(1+float64(record.Count)) * frequencyWeight,
		math.Exp(-days/recencyHalfDays) * recencyWeight
}

func lengthPenalty(name string) float64 {
	p := float64(len(name)) / 100
	if p > maxLengthPenalty {
		return maxLengthPenalty
	}
	return p
}

// matchesWordBoundary reports whether q starts at the beginning of some
// word in name. "chr" matches "google chrome" at the second word.
func matchesWordBoundary(name, q string) bool {
	atBoundary := true
	for i, r := range name {
		if atBoundary && strings.HasPrefix(name[i:], q) {
			return true
		}
		atBoundary = !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}
	return false
}

// Sort orders entries by score descending. Ties keep the merge order,
// which already encodes source preference.
func Sort(entries []launcher.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}
