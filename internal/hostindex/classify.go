package hostindex

import (
	"strings"

	"github.com/tomhartill/omnidex/internal/launcher"
)

// Classify assigns a display kind to a host-index row:
//   - executable-like rows are apps
//   - shortcut-like rows in a recent-docs folder are files (history
//     entries, not launchable apps)
//   - shortcut-like rows in menu/desktop/programs folders are apps
//   - installer packages are apps
//   - everything else is a file, or a folder when sizeless and
//     extensionless
func Classify(path, ext string, isFolder bool) launcher.Kind {
	if isFolder {
		return launcher.KindFolder
	}
	pathLower := strings.ToLower(path)
	switch ext {
	case "exe", "msi":
		return launcher.KindApp
	case "lnk":
		if inRecentDocs(pathLower) {
			return launcher.KindFile
		}
		if strings.Contains(pathLower, "start menu") ||
			strings.Contains(pathLower, `\desktop\`) ||
			strings.Contains(pathLower, "/desktop/") ||
			strings.HasSuffix(pathLower, `\desktop`) ||
			strings.Contains(pathLower, `\programs\`) {
			return launcher.KindApp
		}
		return launcher.KindFile
	}
	return launcher.KindFile
}

func inRecentDocs(pathLower string) bool {
	return strings.Contains(pathLower, `\recent\`) ||
		strings.Contains(pathLower, `microsoft\windows\recent`) ||
		strings.Contains(pathLower, "/recent/")
}

// displayPathLimit is where full paths get elided to their tail segments.
const displayPathLimit = 80

// DisplayPath synthesizes the secondary display line for a row: recent-docs
// shortcuts show "Recent: name", over-long paths show their last three
// segments.
func DisplayPath(path, filename string) string {
	if inRecentDocs(strings.ToLower(path)) {
		return "Recent: " + filename
	}
	if len(path) > displayPathLimit {
		sep := `\`
		if !strings.Contains(path, sep) {
			sep = "/"
		}
		parts := strings.Split(path, sep)
		if len(parts) > 3 {
			return "..." + sep + strings.Join(parts[len(parts)-3:], sep)
		}
	}
	return path
}
