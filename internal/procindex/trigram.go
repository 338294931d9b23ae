package procindex

import (
	"sort"
	"strings"
)

// trigramThreshold is the minimum fraction of query trigrams a file must
// share to count as a match.
const trigramThreshold = 0.3

// trigramIndex maps padded 3-rune windows to the ids containing them.
// Not safe for concurrent use; the Indexer's lock covers it.
type trigramIndex struct {
	index map[string]map[uint64]struct{}
}

func newTrigramIndex() *trigramIndex {
	return &trigramIndex{index: make(map[string]map[uint64]struct{})}
}

// add inserts id into the posting set of every distinct trigram of text.
func (t *trigramIndex) add(text string, id uint64) {
	for _, tg := range extractTrigrams(lower(text)) {
		set, ok := t.index[tg]
		if !ok {
			set = make(map[uint64]struct{})
			t.index[tg] = set
		}
		set[id] = struct{}{}
	}
}

// remove deletes id from every posting set; empty sets are dropped so the
// index invariant (id present iff a live entry has it) holds.
func (t *trigramIndex) remove(id uint64) {
	for tg, set := range t.index {
		delete(set, id)
		if len(set) == 0 {
			delete(t.index, tg)
		}
	}
}

// scored pairs an id with its trigram overlap score.
type scored struct {
	id    uint64
	score float64
}

// search returns ids whose trigram overlap with query exceeds the threshold,
// sorted by descending score.
func (t *trigramIndex) search(query string) []scored {
	queryTrigrams := extractTrigrams(lower(query))
	if len(queryTrigrams) == 0 {
		return nil
	}

	counts := make(map[uint64]int)
	for _, tg := range queryTrigrams {
		for id := range t.index[tg] {
			counts[id]++
		}
	}

	results := make([]scored, 0, len(counts))
	for id, n := range counts {
		score := float64(n) / float64(len(queryTrigrams))
		if score > trigramThreshold {
			results = append(results, scored{id: id, score: score})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].id < results[j].id
	})
	return results
}

// extractTrigrams returns every 3-rune window of text padded with two spaces
// on each side, so word boundaries participate in matching.
func extractTrigrams(text string) []string {
	padded := []rune("  " + text + "  ")
	if len(padded) < 3 {
		return nil
	}
	seen := make(map[string]struct{}, len(padded))
	out := make([]string, 0, len(padded)-2)
	for i := 0; i+3 <= len(padded); i++ {
		tg := string(padded[i : i+3])
		if _, dup := seen[tg]; dup {
			continue
		}
		seen[tg] = struct{}{}
		out = append(out, tg)
	}
	return out
}

func lower(s string) string {
	return strings.ToLower(s)
}
