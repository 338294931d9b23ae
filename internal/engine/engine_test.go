package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomhartill/omnidex/internal/appindex"
	"github.com/tomhartill/omnidex/internal/intent"
	"github.com/tomhartill/omnidex/internal/launcher"
	"github.com/tomhartill/omnidex/internal/procindex"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Options{ScanConfig: procindex.DefaultScanConfig()})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func seedApps(e *Engine, names ...string) {
	entries := make([]appindex.Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, appindex.Entry{
			Name:      name,
			Path:      "/apps/" + name + ".lnk",
			Extension: "lnk",
			Tier:      appindex.TierStartMenu,
		})
	}
	e.Apps().Seed(entries)
}

func indexFile(t *testing.T, e *Engine, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, e.Files().AddFile(path, ""))
	return path
}

func TestSearchMath(t *testing.T) {
	e := newTestEngine(t)
	results, err := e.Search(context.Background(), "=2+2", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, launcher.KindCalc, results[0].Kind)
	assert.Equal(t, "4", results[0].Name)
}

func TestSearchUnitConvert(t *testing.T) {
	e := newTestEngine(t)
	results, err := e.Search(context.Background(), "1 km to mi", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, launcher.KindCalc, results[0].Kind)
	assert.Equal(t, "0.621371", results[0].Name)
}

func TestSearchMathError(t *testing.T) {
	e := newTestEngine(t)
	results, err := e.Search(context.Background(), "=((", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Name, "Math error")
}

func TestSearchWebKeyword(t *testing.T) {
	e := newTestEngine(t)
	results, err := e.Search(context.Background(), "gh rust", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, launcher.KindWeb, results[0].Kind)
	assert.Equal(t, "https://github.com/search?q=rust", results[0].URL)
}

func TestSearchURL(t *testing.T) {
	e := newTestEngine(t)
	results, err := e.Search(context.Background(), "example.com", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, launcher.KindURL, results[0].Kind)
	assert.Equal(t, "https://example.com", results[0].URL)
}

func TestSearchEmpty(t *testing.T) {
	e := newTestEngine(t)
	results, err := e.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExactNameBeatsPinyin(t *testing.T) {
	e := newTestEngine(t)
	seedApps(e, "WeChat", "微信")

	results, err := e.Search(context.Background(), "微信", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "微信", results[0].Name)
}

func TestAppOutranksInProcFile(t *testing.T) {
	e := newTestEngine(t)
	seedApps(e, "Google Chrome")
	dir := t.TempDir()
	indexFile(t, e, dir, "Chrome Notes.md")

	results, err := e.Search(context.Background(), "chr", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, launcher.KindApp, results[0].Kind)
	assert.Equal(t, "Google Chrome", results[0].Name)
	assert.Equal(t, launcher.KindFile, results[1].Kind)
}

func TestRecordAccessPromotes(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	indexFile(t, e, dir, "alpha notes.txt")
	beta := indexFile(t, e, dir, "beta notes.txt")

	ctx := context.Background()
	first, err := e.Search(ctx, "notes", 10)
	require.NoError(t, err)
	require.Len(t, first, 2)

	var betaID string
	for _, r := range first {
		if r.Path == beta {
			betaID = r.ID
		}
	}
	require.NotEmpty(t, betaID)

	for i := 0; i < 5; i++ {
		e.RecordAccess(betaID)
	}

	second, err := e.Search(ctx, "notes", 10)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, beta, second[0].Path, "accessed entry must rank first")
}

func TestSearchResultCached(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	path := indexFile(t, e, dir, "doc.txt")

	ctx := context.Background()
	first, err := e.Search(ctx, "doc", 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// index mutation is not visible through the cache within the TTL
	e.Files().RemoveFile(path)
	cached, err := e.Search(ctx, "doc", 10)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// feedback purges the cache
	e.RecordAccess(first[0].ID)
	fresh, err := e.Search(ctx, "doc", 10)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestSearchLimit(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	for _, name := range []string{"note1.txt", "note2.txt", "note3.txt"} {
		indexFile(t, e, dir, name)
	}
	results, err := e.Search(context.Background(), "note", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestClassifyPassThrough(t *testing.T) {
	e := newTestEngine(t)
	in := e.Classify("=1+1")
	assert.Equal(t, intent.Math, in.Type)
}

func TestDedupKeyStability(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	indexFile(t, e, dir, "report.txt")

	results, err := e.Search(context.Background(), "report", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, results[0].DedupKey(), results[0].ID)
}
