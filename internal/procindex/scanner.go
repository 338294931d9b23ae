package procindex

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
)

// ScanConfig bounds the directory scan.
type ScanConfig struct {
	// MaxDepth is the recursion bound (default 10).
	MaxDepth int

	// ExcludeGlobs are gitignore-style patterns for paths to skip.
	ExcludeGlobs []string

	// ExcludeExts are lowercase extensions (without dot) to skip.
	ExcludeExts []string

	// IncludeHidden keeps dot-prefixed entries (default false).
	IncludeHidden bool

	// MaxFileSizeBytes skips files above this size; 0 means no limit.
	MaxFileSizeBytes uint64
}

// DefaultExcludeGlobs skip common build, cache and system directories.
var DefaultExcludeGlobs = []string{
	"node_modules/",
	".git/",
	"target/",
	"dist/",
	"build/",
	".cache/",
	"Library/",
	"AppData/",
}

// DefaultScanConfig returns the stock scan bounds.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		MaxDepth:     10,
		ExcludeGlobs: DefaultExcludeGlobs,
	}
}

// scannedFile is one accepted file from a scan.
type scannedFile struct {
	path     string
	name     string
	size     uint64
	modified time.Time
}

// scanner walks directories applying the configured bounds.
type scanner struct {
	cfg     ScanConfig
	exclude *ignore.GitIgnore
}

func newScanner(cfg ScanConfig) *scanner {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 10
	}
	return &scanner{
		cfg:     cfg,
		exclude: ignore.CompileIgnoreLines(cfg.ExcludeGlobs...),
	}
}

// scan walks root depth-first and returns accepted files. Unreadable
// entries are logged and skipped.
func (s *scanner) scan(root string) []scannedFile {
	var out []scannedFile
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			procLog.Debug("scan_skip", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator)) + 1

		name := d.Name()
		hidden := strings.HasPrefix(name, ".")

		if d.IsDir() {
			if depth > s.cfg.MaxDepth || (hidden && !s.cfg.IncludeHidden) || s.excluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden && !s.cfg.IncludeHidden {
			return nil
		}
		if s.excluded(rel, false) {
			return nil
		}
		if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")); ext != "" {
			for _, skip := range s.cfg.ExcludeExts {
				if skip == ext {
					return nil
				}
			}
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if s.cfg.MaxFileSizeBytes > 0 && uint64(info.Size()) > s.cfg.MaxFileSizeBytes {
			return nil
		}
		out = append(out, scannedFile{
			path:     path,
			name:     name,
			size:     uint64(info.Size()),
			modified: info.ModTime(),
		})
		return nil
	})
	return out
}

// statFile builds a scannedFile for a single path.
func statFile(path string) (scannedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return scannedFile{}, err
	}
	return scannedFile{
		path:     path,
		name:     filepath.Base(path),
		size:     uint64(info.Size()),
		modified: info.ModTime(),
	}, nil
}

func (s *scanner) excluded(rel string, isDir bool) bool {
	// gitignore matching expects forward slashes
	p := filepath.ToSlash(rel)
	if isDir {
		p += "/"
	}
	return s.exclude.MatchesPath(p)
}
