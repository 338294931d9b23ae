package rank

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomhartill/omnidex/internal/frecency"
	"github.com/tomhartill/omnidex/internal/launcher"
)

func newTestRanker(t *testing.T) (*Ranker, *frecency.Store) {
	t.Helper()
	store, err := frecency.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	r := New(store)
	return r, store
}

func fileEntry(name, path string) launcher.Entry {
	return launcher.Entry{Kind: launcher.KindFile, Name: name, Path: path}
}

func TestBaseScores(t *testing.T) {
	r, _ := newTestRanker(t)
	tests := []struct {
		query string
		name  string
		min   float64
		max   float64
	}{
		{"chrome", "chrome", 119, 120},             // exact + boundary, tiny length penalty
		{"chrome", "chrome notes", 69, 71},         // prefix + boundary bonus
		{"chrome", "google chrome", 44, 46}, // contains + boundary
		{"chrome", "xxchromexx", 24, 26},    // contains mid-word
		{"chrome", "unrelated", 0, 0},
	}
	for _, tt := range tests {
		e := fileEntry(tt.name, "/x/"+tt.name)
		got := r.Score(tt.query, &e)
		assert.GreaterOrEqual(t, got, tt.min, "query %q name %q", tt.query, tt.name)
		assert.LessOrEqual(t, got, tt.max, "query %q name %q", tt.query, tt.name)
	}
}

func TestWordBoundaryBonus(t *testing.T) {
	r, _ := newTestRanker(t)
	boundary := fileEntry("google chrome", "/a")
	midWord := fileEntry("xxchromexx", "/b")
	q := "chrome"
	assert.Greater(t, r.Score(q, &boundary), r.Score(q, &midWord))
}

func TestWordBoundaryBonusOnExactMatch(t *testing.T) {
	// an exact name match starts at a token start, so it carries the
	// boundary bonus like every other boundary match
	r, _ := newTestRanker(t)
	e := fileEntry("chrome", "/a/chrome")
	want := 100.0 + 20.0 - float64(len("chrome"))/100
	assert.InDelta(t, want, r.Score("chrome", &e), 1e-9)
}

func TestFrecencyMonotone(t *testing.T) {
	// two otherwise-identical candidates: the more-accessed one ranks first
	r, store := newTestRanker(t)
	a := fileEntry("notes.md", "/one/notes.md")
	b := fileEntry("notes.md", "/two/notes.md")

	store.RecordAccess(b.DedupKey())
	store.RecordAccess(b.DedupKey())
	store.RecordAccess(a.DedupKey())

	assert.Greater(t, r.Score("notes.md", &b), r.Score("notes.md", &a))
}

func TestRecencyDecay(t *testing.T) {
	r, store := newTestRanker(t)
	now := time.Now()

	fresh := fileEntry("doc.txt", "/fresh/doc.txt")
	stale := fileEntry("doc.txt", "/stale/doc.txt")

	store.SetClock(func() time.Time { return now.AddDate(0, 0, -90) })
	store.RecordAccess(stale.DedupKey())
	store.SetClock(func() time.Time { return now })
	store.RecordAccess(fresh.DedupKey())

	r.SetClock(func() time.Time { return now })
	assert.Greater(t, r.Score("doc.txt", &fresh), r.Score("doc.txt", &stale))
}

func TestFrecencyBonusFormula(t *testing.T) {
	r, store := newTestRanker(t)
	now := time.Now()
	store.SetClock(func() time.Time { return now })
	r.SetClock(func() time.Time { return now })

	e := fileEntry("zzz", "/zzz") // no textual match with the query below
	for i := 0; i < 5; i++ {
		store.RecordAccess(e.DedupKey())
	}

	got := r.Score("qqq", &e)
	want := math.Log(6)*5 + 10 - float64(len("zzz"))/100
	assert.InDelta(t, want, got, 1e-9)
}

func TestLengthPenaltyClamp(t *testing.T) {
	r, _ := newTestRanker(t)
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	e := fileEntry(string(long), "/l")
	// penalty clamps at 5 and the final score clamps at 0
	assert.Equal(t, 0.0, r.Score("zzz", &e))
}

func TestScoreHostIgnoresFrequency(t *testing.T) {
	r, store := newTestRanker(t)
	now := time.Now()
	store.SetClock(func() time.Time { return now })
	r.SetClock(func() time.Time { return now })

	e := fileEntry("report.pdf", "/r/report.pdf")
	for i := 0; i < 10; i++ {
		store.RecordAccess(e.DedupKey())
	}

	full := r.Score("report.pdf", &e)
	host := r.ScoreHost("report.pdf", &e)
	assert.Greater(t, full, host, "host contribution must omit the frequency term")
	// host still carries base + recency
	assert.InDelta(t, 100+10, host, 1e-9)
}

func TestScoreAppAddsBucket(t *testing.T) {
	r, _ := newTestRanker(t)
	e := launcher.Entry{Kind: launcher.KindApp, Name: "chrome", Path: "/apps/chrome"}
	assert.InDelta(t, r.Score("chrome", &e)+10200, r.ScoreApp("chrome", &e, 10200), 1e-9)
}

func TestSortStable(t *testing.T) {
	entries := []launcher.Entry{
		{Name: "b", Score: 50, Source: launcher.SourceProcIndex},
		{Name: "a", Score: 100},
		{Name: "c", Score: 50, Source: launcher.SourceHostIndex},
	}
	Sort(entries)
	require.Equal(t, "a", entries[0].Name)
	// equal scores keep their original (source-preference) order
	assert.Equal(t, "b", entries[1].Name)
	assert.Equal(t, "c", entries[2].Name)
}
