package procindex

import "testing"

func containsID(ids []uint64, want uint64) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func TestTrieInsertSearch(t *testing.T) {
	tr := newTrie()
	tr.insert("hello", 1)
	tr.insert("help", 2)
	tr.insert("world", 3)

	ids := tr.searchPrefix("hel")
	if len(ids) != 2 {
		t.Fatalf("searchPrefix(hel) = %v, want 2 ids", ids)
	}
	if !containsID(ids, 1) || !containsID(ids, 2) {
		t.Errorf("searchPrefix(hel) = %v, want ids 1 and 2", ids)
	}
	if ids := tr.searchPrefix("xyz"); len(ids) != 0 {
		t.Errorf("searchPrefix(xyz) = %v, want empty", ids)
	}
}

func TestTrieCaseInsensitive(t *testing.T) {
	tr := newTrie()
	tr.insert("README", 7)
	if ids := tr.searchPrefix("read"); !containsID(ids, 7) {
		t.Errorf("searchPrefix(read) = %v, want id 7", ids)
	}
}

func TestTrieRemoveRoundTrip(t *testing.T) {
	tr := newTrie()
	tr.insert("hello", 1)
	tr.insert("hello", 2)
	tr.remove("hello", 1)

	ids := tr.searchPrefix("hello")
	if containsID(ids, 1) {
		t.Errorf("id 1 still present after remove: %v", ids)
	}
	if !containsID(ids, 2) {
		t.Errorf("id 2 lost by removing id 1: %v", ids)
	}

	// last posting clears the terminal flag
	tr.remove("hello", 2)
	if ids := tr.searchPrefix("hello"); len(ids) != 0 {
		t.Errorf("postings remain after full removal: %v", ids)
	}
}

func TestTrieInsertIdempotent(t *testing.T) {
	tr := newTrie()
	tr.insert("dup", 1)
	tr.insert("dup", 1)
	if ids := tr.searchPrefix("dup"); len(ids) != 1 {
		t.Errorf("duplicate insert grew postings: %v", ids)
	}
}

func TestTrieFuzzySearch(t *testing.T) {
	tr := newTrie()
	tr.insert("hello", 1)
	tr.insert("hallo", 2)
	tr.insert("world", 3)

	ids := tr.fuzzySearch("hello", 1)
	if !containsID(ids, 1) || !containsID(ids, 2) {
		t.Errorf("fuzzySearch(hello,1) = %v, want ids 1 and 2", ids)
	}
	if containsID(ids, 3) {
		t.Errorf("fuzzySearch(hello,1) matched world: %v", ids)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"hello", "hello", 0},
		{"hello", "hallo", 1},
		{"hello", "world", 4},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		got := levenshtein([]rune(tt.a), []rune(tt.b))
		if got != tt.want {
			t.Errorf("levenshtein(%q,%q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
