package appindex

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DiscoverFunc produces raw entries from the platform's launchable-app
// surfaces. Name, Path, Extension and Tier must be set; pinyin fields are
// filled by the indexer.
type DiscoverFunc func(ctx context.Context) ([]Entry, error)

// maxScanDepth bounds the walk under each source root.
const maxScanDepth = 5

// source is one directory to scan with its tier and accepted extensions.
type source struct {
	dir  string
	tier Tier
	exts []string
}

// defaultDiscovery scans the platform's app surfaces.
func defaultDiscovery(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	for _, src := range platformSources() {
		if _, err := os.Stat(src.dir); err != nil {
			continue
		}
		scanSource(ctx, src, &entries)
	}
	return entries, nil
}

func platformSources() []source {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		exts := []string{"lnk", "exe"}
		var srcs []source
		srcs = append(srcs, source{
			dir:  `C:\ProgramData\Microsoft\Windows\Start Menu\Programs`,
			tier: TierStartMenu, exts: exts,
		})
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			srcs = append(srcs, source{
				dir:  filepath.Join(appdata, `Microsoft\Windows\Start Menu\Programs`),
				tier: TierStartMenu, exts: exts,
			})
		}
		srcs = append(srcs,
			source{dir: filepath.Join(home, "Desktop"), tier: TierDesktop, exts: exts},
			source{dir: `C:\Users\Public\Desktop`, tier: TierDesktop, exts: exts},
		)
		return srcs
	case "darwin":
		exts := []string{"app"}
		return []source{
			{dir: "/Applications", tier: TierSystemApps, exts: exts},
			{dir: "/System/Applications", tier: TierSystemApps, exts: exts},
			{dir: filepath.Join(home, "Applications"), tier: TierUserApps, exts: exts},
		}
	default:
		exts := []string{"desktop"}
		return []source{
			{dir: "/usr/share/applications", tier: TierSystemApps, exts: exts},
			{dir: filepath.Join(home, ".local/share/applications"), tier: TierUserApps, exts: exts},
			{dir: filepath.Join(home, "Desktop"), tier: TierDesktop, exts: exts},
		}
	}
}

func scanSource(ctx context.Context, src source, entries *[]Entry) {
	root := src.dir
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// Permission problems are logged and skipped, never fatal.
			appLog.Debug("app_scan_skip", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		if d.IsDir() {
			if walkDepth(root, path) > maxScanDepth {
				return filepath.SkipDir
			}
			// macOS bundles are directories named *.app
			if ext := extOf(path); ext == "app" && accepts(src.exts, ext) {
				addEntry(entries, path, ext, src.tier)
				return filepath.SkipDir
			}
			return nil
		}
		ext := extOf(path)
		if !accepts(src.exts, ext) {
			return nil
		}
		addEntry(entries, path, ext, src.tier)
		return nil
	})
}

func addEntry(entries *[]Entry, path, ext string, tier Tier) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if name == "" {
		return
	}
	*entries = append(*entries, Entry{
		Name:      name,
		Path:      path,
		Extension: ext,
		Tier:      tier,
	})
}

func extOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func accepts(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

func walkDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
