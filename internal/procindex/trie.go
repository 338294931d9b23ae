package procindex

// trieNode stores children by rune plus the posting list of file ids that
// terminate here. A non-empty posting list implies terminal.
type trieNode struct {
	children map[rune]*trieNode
	terminal bool
	postings []uint64
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// trie is a lowercased prefix tree over filename tokens. Not safe for
// concurrent use; the Indexer's lock covers it.
type trie struct {
	root *trieNode
}

func newTrie() *trie {
	return &trie{root: newTrieNode()}
}

// insert lowercases word and records id at its terminal node.
func (t *trie) insert(word string, id uint64) {
	node := t.root
	for _, r := range lower(word) {
		child, ok := node.children[r]
		if !ok {
			child = newTrieNode()
			node.children[r] = child
		}
		node = child
	}
	node.terminal = true
	for _, existing := range node.postings {
		if existing == id {
			return
		}
	}
	node.postings = append(node.postings, id)
}

// remove deletes id from the word's posting list. The terminal flag clears
// when the posting list empties; emptied nodes are kept (pruning is not
// worth the bookkeeping at this scale).
func (t *trie) remove(word string, id uint64) {
	node := t.root
	for _, r := range lower(word) {
		child, ok := node.children[r]
		if !ok {
			return
		}
		node = child
	}
	for i, existing := range node.postings {
		if existing == id {
			node.postings = append(node.postings[:i], node.postings[i+1:]...)
			break
		}
	}
	if len(node.postings) == 0 {
		node.terminal = false
	}
}

// searchPrefix returns the union of posting lists in the subtree under
// prefix.
func (t *trie) searchPrefix(prefix string) []uint64 {
	node := t.root
	for _, r := range lower(prefix) {
		child, ok := node.children[r]
		if !ok {
			return nil
		}
		node = child
	}
	var ids []uint64
	collectPostings(node, &ids)
	return ids
}

func collectPostings(node *trieNode, ids *[]uint64) {
	if node.terminal {
		*ids = append(*ids, node.postings...)
	}
	for _, child := range node.children {
		collectPostings(child, ids)
	}
}

// fuzzySearch returns postings of terminal words within maxDistance edits of
// query. The DFS is bounded: paths longer than len(query)+maxDistance cannot
// come back under the limit.
func (t *trie) fuzzySearch(query string, maxDistance int) []uint64 {
	q := []rune(lower(query))
	var ids []uint64
	var walk func(node *trieNode, path []rune)
	walk = func(node *trieNode, path []rune) {
		if node.terminal && levenshtein(path, q) <= maxDistance {
			ids = append(ids, node.postings...)
		}
		if len(path) >= len(q)+maxDistance {
			return
		}
		for r, child := range node.children {
			walk(child, append(path, r))
		}
	}
	walk(t.root, nil)
	return ids
}

// levenshtein computes edit distance over rune slices.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
