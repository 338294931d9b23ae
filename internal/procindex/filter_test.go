package procindex

import (
	"testing"
	"time"
)

func TestFilterZeroMatchesEverything(t *testing.T) {
	var f Filter
	e := FileEntry{Name: "anything.bin", Path: "/x/anything.bin", Size: 42}
	if !f.Matches(&e) {
		t.Error("zero filter rejected an entry")
	}
}

func TestFilterExtensions(t *testing.T) {
	f := DocumentsFilter()
	tests := []struct {
		name string
		want bool
	}{
		{"report.pdf", true},
		{"README.MD", true}, // case-insensitive
		{"photo.png", false},
		{"noext", false},
	}
	for _, tt := range tests {
		e := FileEntry{Name: tt.name}
		if got := f.Matches(&e); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFilterPathPatterns(t *testing.T) {
	f := Filter{PathPatterns: []string{"Projects"}}
	in := FileEntry{Name: "a.txt", Path: "/home/u/projects/a.txt"}
	out := FileEntry{Name: "b.txt", Path: "/tmp/b.txt"}
	if !f.Matches(&in) {
		t.Error("pattern should match case-insensitively")
	}
	if f.Matches(&out) {
		t.Error("unrelated path matched")
	}
}

func TestFilterSizeBounds(t *testing.T) {
	f := Filter{MinSize: 10, MaxSize: 100}
	for size, want := range map[uint64]bool{5: false, 10: true, 100: true, 101: false} {
		e := FileEntry{Name: "f", Size: size}
		if got := f.Matches(&e); got != want {
			t.Errorf("size %d: Matches = %v, want %v", size, got, want)
		}
	}
}

func TestFilterModifiedBounds(t *testing.T) {
	now := time.Now()
	f := Filter{ModifiedAfter: now.Add(-time.Hour)}
	fresh := FileEntry{Name: "f", Modified: now}
	stale := FileEntry{Name: "f", Modified: now.Add(-2 * time.Hour)}
	if !f.Matches(&fresh) {
		t.Error("fresh entry rejected")
	}
	if f.Matches(&stale) {
		t.Error("stale entry accepted")
	}
}
