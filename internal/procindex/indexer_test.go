package procindex

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomhartill/omnidex/internal/launcher"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIndexDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "report.txt", "x")
	writeFile(t, dir, "notes.md", "x")
	writeFile(t, dir, "sub/deep.txt", "x")

	ix := New(DefaultScanConfig())
	n, err := ix.IndexDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, ix.Count())

	matches := ix.Search("report")
	require.Len(t, matches, 1)
	assert.Equal(t, "report.txt", matches[0].Entry.Name)
}

func TestIndexDirectorySkipsExcluded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", "x")
	writeFile(t, dir, "node_modules/dep.js", "x")
	writeFile(t, dir, ".hidden/secret.txt", "x")

	ix := New(DefaultScanConfig())
	n, err := ix.IndexDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIndexDirectoryIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x")

	ix := New(DefaultScanConfig())
	_, err := ix.IndexDirectory(dir)
	require.NoError(t, err)
	n, err := ix.IndexDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "rescan must not duplicate entries")
	assert.Equal(t, 1, ix.Count())
}

func TestAddFileAlreadyIndexed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "x")

	ix := New(DefaultScanConfig())
	require.NoError(t, ix.AddFile(path, ""))
	err := ix.AddFile(path, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, launcher.ErrAlreadyIndexed))
}

func TestAddFileMissing(t *testing.T) {
	ix := New(DefaultScanConfig())
	err := ix.AddFile(filepath.Join(t.TempDir(), "nope.txt"), "")
	require.Error(t, err)
	var ioErr *launcher.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestRemoveFileIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "x")

	ix := New(DefaultScanConfig())
	require.NoError(t, ix.AddFile(path, ""))
	ix.RemoveFile(path)
	ix.RemoveFile(path) // second remove is a no-op
	assert.Equal(t, 0, ix.Count())
	assert.Empty(t, ix.Search("a"))
}

func TestUpdateFileAlwaysSucceeds(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "x")

	ix := New(DefaultScanConfig())

	// update without prior add behaves like add
	require.NoError(t, ix.UpdateFile(path))
	assert.Equal(t, 1, ix.Count())

	// update of an indexed file re-indexes under a fresh id
	require.NoError(t, ix.UpdateFile(path))
	assert.Equal(t, 1, ix.Count())
}

func TestUpdateFilePreservesDisplayName(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "x")

	ix := New(DefaultScanConfig())
	require.NoError(t, ix.AddFile(path, "项目报告"))
	require.NoError(t, ix.UpdateFile(path))

	entry, ok := ix.Lookup(path)
	require.True(t, ok)
	assert.Equal(t, "项目报告", entry.DisplayName)
}

func TestCJKDisplayNameSingleCharPrefix(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc1.txt", "x")

	ix := New(DefaultScanConfig())
	require.NoError(t, ix.AddFile(path, "工作报告"))

	// each CJK code point is its own trie word
	matches := ix.Search("报")
	require.Len(t, matches, 1)
	assert.Equal(t, path, matches[0].Entry.Path)
}

func TestSearchUnionTrieTrigram(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "chrome_notes.md", "x")
	writeFile(t, dir, "chromium.txt", "x")

	ix := New(DefaultScanConfig())
	_, err := ix.IndexDirectory(dir)
	require.NoError(t, err)

	// "chrom" prefix-matches both tokens; trigram adds nothing new
	matches := ix.Search("chrom")
	assert.Len(t, matches, 2)

	// no duplicates when both structures hit the same id
	seen := make(map[uint64]bool)
	for _, m := range matches {
		assert.False(t, seen[m.Entry.ID], "duplicate id %d", m.Entry.ID)
		seen[m.Entry.ID] = true
	}
}

func TestFuzzySearch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hello.txt", "x")

	ix := New(DefaultScanConfig())
	_, err := ix.IndexDirectory(dir)
	require.NoError(t, err)

	entries := ix.FuzzySearch("hallo", 1)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello.txt", entries[0].Name)

	assert.Empty(t, ix.FuzzySearch("zzzzz", 1))
}

func TestRecent(t *testing.T) {
	dir := t.TempDir()
	old := writeFile(t, dir, "old.txt", "x")
	newer := writeFile(t, dir, "new.txt", "x")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	ix := New(DefaultScanConfig())
	_, err := ix.IndexDirectory(dir)
	require.NoError(t, err)

	recent := ix.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, newer, recent[0].Path)
}

func TestSearchEmptyQuery(t *testing.T) {
	ix := New(DefaultScanConfig())
	assert.Nil(t, ix.Search(""))
	assert.Nil(t, ix.Search("   "))
}
