// Package procindex is the in-process text index: a trie over filename
// tokens plus a trigram index over whole names, kept in lockstep with a
// path/id map under one reader-writer lock.
package procindex

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/tomhartill/omnidex/internal/launcher"
	"github.com/tomhartill/omnidex/internal/logging"
)

var procLog = logging.ForComponent(logging.CompProcIndex)

// FileEntry is one indexed file.
type FileEntry struct {
	ID          uint64
	Name        string
	DisplayName string
	Path        string
	Size        uint64
	Modified    time.Time
}

// Match is a search hit with its trigram score (zero for trie-only hits).
type Match struct {
	Entry FileEntry
	Score float64
}

// Indexer glues the trie and trigram index together with the file and path
// maps. One RW lock covers all four structures: writers take it exclusively,
// Search only ever reads. The (path -> id) map is a partial bijection kept
// in lockstep with the posting lists.
type Indexer struct {
	mu      sync.RWMutex
	trie    *trie
	trigram *trigramIndex
	files   map[uint64]FileEntry
	paths   map[string]uint64
	nextID  uint64

	scanner *scanner
}

// New creates an indexer with the given scan bounds.
func New(cfg ScanConfig) *Indexer {
	return &Indexer{
		trie:    newTrie(),
		trigram: newTrigramIndex(),
		files:   make(map[uint64]FileEntry),
		paths:   make(map[string]uint64),
		scanner: newScanner(cfg),
	}
}

// IndexDirectory scans root and indexes every accepted file.
// Returns the number of files added.
func (ix *Indexer) IndexDirectory(root string) (int, error) {
	files := ix.scanner.scan(root)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	added := 0
	for _, f := range files {
		if _, dup := ix.paths[f.path]; dup {
			continue
		}
		ix.insertLocked(f, "")
		added++
	}
	procLog.Info("directory_indexed", slog.String("root", root), slog.Int("added", added))
	return added, nil
}

// AddFile indexes a single path. displayName, when non-empty, is indexed
// alongside the filesystem name; CJK display names get each code point
// indexed as its own trie word so single-character prefixes match.
func (ix *Indexer) AddFile(path, displayName string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, dup := ix.paths[path]; dup {
		return fmt.Errorf("add %s: %w", path, launcher.ErrAlreadyIndexed)
	}
	f, err := statFile(path)
	if err != nil {
		return &launcher.IOError{Op: "stat", Path: path, Err: err}
	}
	ix.insertLocked(f, displayName)
	return nil
}

// RemoveFile drops every posting for the path's id. Removing an unknown
// path is a no-op.
func (ix *Indexer) RemoveFile(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(path)
}

// UpdateFile re-indexes path: remove followed by add. It succeeds whenever
// the file exists, whether or not it was indexed before.
func (ix *Indexer) UpdateFile(path string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var display string
	if id, ok := ix.paths[path]; ok {
		display = ix.files[id].DisplayName
	}
	ix.removeLocked(path)

	f, err := statFile(path)
	if err != nil {
		return &launcher.IOError{Op: "stat", Path: path, Err: err}
	}
	ix.insertLocked(f, display)
	return nil
}

// Search unions trie prefix hits with trigram hits, deduplicates, and
// returns the matches with their trigram scores. Ranking happens in the
// rank package.
func (ix *Indexer) Search(query string) []Match {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[uint64]float64)
	for _, id := range ix.trie.searchPrefix(query) {
		if _, ok := seen[id]; !ok {
			seen[id] = 0
		}
	}
	for _, s := range ix.trigram.search(query) {
		if prev, ok := seen[s.id]; !ok || s.score > prev {
			seen[s.id] = s.score
		}
	}

	matches := make([]Match, 0, len(seen))
	for id, score := range seen {
		entry, ok := ix.files[id]
		if !ok {
			continue
		}
		matches = append(matches, Match{Entry: entry, Score: score})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Entry.ID < matches[j].Entry.ID
	})
	return matches
}

// FuzzySearch returns entries whose indexed tokens are within maxDistance
// edits of query.
func (ix *Indexer) FuzzySearch(query string, maxDistance int) []FileEntry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []FileEntry
	seen := make(map[uint64]struct{})
	for _, id := range ix.trie.fuzzySearch(query, maxDistance) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if entry, ok := ix.files[id]; ok {
			out = append(out, entry)
		}
	}
	return out
}

// Recent returns the n most recently modified entries, for empty-query
// browsing.
func (ix *Indexer) Recent(n int) []FileEntry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]FileEntry, 0, len(ix.files))
	for _, e := range ix.files {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Modified.After(out[j].Modified)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Lookup returns the entry for a path.
func (ix *Indexer) Lookup(path string) (FileEntry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	id, ok := ix.paths[path]
	if !ok {
		return FileEntry{}, false
	}
	return ix.files[id], true
}

// Count returns the number of indexed files.
func (ix *Indexer) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.files)
}

// insertLocked assigns a fresh id and writes all four structures.
// Caller holds the write lock.
func (ix *Indexer) insertLocked(f scannedFile, displayName string) {
	ix.nextID++
	id := ix.nextID

	entry := FileEntry{
		ID:          id,
		Name:        f.name,
		DisplayName: displayName,
		Path:        f.path,
		Size:        f.size,
		Modified:    f.modified,
	}
	ix.files[id] = entry
	ix.paths[f.path] = id

	for _, word := range tokenize(f.name) {
		ix.trie.insert(word, id)
	}
	if displayName != "" {
		for _, word := range tokenize(displayName) {
			ix.trie.insert(word, id)
		}
		// single-character prefixes matter for CJK display names
		for _, r := range displayName {
			if unicode.Is(unicode.Han, r) {
				ix.trie.insert(string(r), id)
			}
		}
		ix.trigram.add(displayName, id)
	}
	ix.trigram.add(f.name, id)
}

// removeLocked rewrites every posting list referencing the path's id.
// Caller holds the write lock.
func (ix *Indexer) removeLocked(path string) {
	id, ok := ix.paths[path]
	if !ok {
		return
	}
	entry := ix.files[id]

	for _, word := range tokenize(entry.Name) {
		ix.trie.remove(word, id)
	}
	if entry.DisplayName != "" {
		for _, word := range tokenize(entry.DisplayName) {
			ix.trie.remove(word, id)
		}
		for _, r := range entry.DisplayName {
			if unicode.Is(unicode.Han, r) {
				ix.trie.remove(string(r), id)
			}
		}
	}
	ix.trigram.remove(id)

	delete(ix.files, id)
	delete(ix.paths, path)
}

// tokenize splits a name on non-alphanumeric boundaries.
func tokenize(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
