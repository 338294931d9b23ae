package procindex

import (
	"path/filepath"
	"strings"
	"time"
)

// Filter narrows search results after ranking. A zero Filter matches
// everything.
type Filter struct {
	// Extensions restricts to these lowercase extensions (without dot).
	Extensions []string

	// PathPatterns keeps entries whose path contains any pattern
	// (case-insensitive substring).
	PathPatterns []string

	// Size bounds in bytes; zero means unbounded.
	MinSize uint64
	MaxSize uint64

	// Modified-time bounds; zero values mean unbounded.
	ModifiedAfter  time.Time
	ModifiedBefore time.Time
}

// Matches reports whether a file entry passes every set criterion.
func (f *Filter) Matches(e *FileEntry) bool {
	if len(f.Extensions) > 0 {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(e.Name), "."))
		if ext == "" || !containsFold(f.Extensions, ext) {
			return false
		}
	}
	if len(f.PathPatterns) > 0 {
		pathLower := strings.ToLower(e.Path)
		hit := false
		for _, p := range f.PathPatterns {
			if strings.Contains(pathLower, strings.ToLower(p)) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if f.MinSize > 0 && e.Size < f.MinSize {
		return false
	}
	if f.MaxSize > 0 && e.Size > f.MaxSize {
		return false
	}
	if !f.ModifiedAfter.IsZero() && e.Modified.Before(f.ModifiedAfter) {
		return false
	}
	if !f.ModifiedBefore.IsZero() && e.Modified.After(f.ModifiedBefore) {
		return false
	}
	return true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// DocumentsFilter matches common document formats.
func DocumentsFilter() Filter {
	return Filter{Extensions: []string{"txt", "md", "pdf", "doc", "docx"}}
}

// ImagesFilter matches common image formats.
func ImagesFilter() Filter {
	return Filter{Extensions: []string{"jpg", "jpeg", "png", "gif", "bmp", "svg"}}
}

// CodeFilter matches common source-file formats.
func CodeFilter() Filter {
	return Filter{Extensions: []string{"go", "rs", "js", "ts", "tsx", "py", "java", "c", "cpp", "h"}}
}
