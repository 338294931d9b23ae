// Package platform detects the host environment so the launcher can pick
// the right clipboard tool and know when filesystem watching is unreliable.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform represents the detected platform
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformWSL1    Platform = "wsl1"
	PlatformWSL2    Platform = "wsl2"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

// cached detection result
var detectedPlatform Platform
var detectionDone bool

// Detect returns the current platform, caching the result
func Detect() Platform {
	if detectionDone {
		return detectedPlatform
	}

	detectedPlatform = detectPlatform()
	detectionDone = true
	return detectedPlatform
}

func detectPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "linux":
		return detectLinuxOrWSL()
	default:
		return PlatformUnknown
	}
}

// detectLinuxOrWSL distinguishes between native Linux and WSL (1 or 2)
func detectLinuxOrWSL() Platform {
	// WSL_DISTRO_NAME is set in WSL environments
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		return detectWSLVersion()
	}

	procVersion, err := os.ReadFile("/proc/version")
	if err != nil {
		return PlatformLinux
	}

	versionStr := string(procVersion)
	if strings.Contains(versionStr, "microsoft") || strings.Contains(versionStr, "Microsoft") {
		return detectWSLVersion()
	}

	return PlatformLinux
}

// detectWSLVersion distinguishes between WSL1 and WSL2.
// WSL2 kernels carry "microsoft-standard" in /proc/version; WSL1 has
// "Microsoft" without it.
func detectWSLVersion() Platform {
	procVersion, err := os.ReadFile("/proc/version")
	if err == nil {
		versionStr := string(procVersion)
		if strings.Contains(versionStr, "microsoft-standard") {
			return PlatformWSL2
		}
		if strings.Contains(versionStr, "Microsoft") {
			return PlatformWSL1
		}
	}

	// /run/WSL and /dev/vsock exist only under WSL2
	if _, err := os.Stat("/run/WSL"); err == nil {
		return PlatformWSL2
	}
	if _, err := os.Stat("/dev/vsock"); err == nil {
		return PlatformWSL2
	}

	// WSL1 is the safer assumption; it has more limitations
	return PlatformWSL1
}

// IsWSL returns true if running in any WSL environment
func IsWSL() bool {
	p := Detect()
	return p == PlatformWSL1 || p == PlatformWSL2
}

// String returns a human-readable platform name
func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macOS"
	case PlatformLinux:
		return "Linux"
	case PlatformWSL1:
		return "WSL1"
	case PlatformWSL2:
		return "WSL2"
	case PlatformWindows:
		return "Windows"
	default:
		return "Unknown"
	}
}

// CheckWatchSupport checks if a path's filesystem delivers fsnotify events
// reliably. Returns a warning message if the path sits on a problematic
// filesystem (9p, nfs, cifs, sshfs), or an empty string if watching should
// work normally. Network mounts and the WSL2 Windows drives silently drop
// change events, which makes the index go stale without this warning.
func CheckWatchSupport(path string) string {
	// Only relevant on Linux (WSL2 mounts Windows drives over 9p)
	if runtime.GOOS != "linux" {
		return ""
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	mounts, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return ""
	}

	// /proc/mounts format: device mountpoint fstype options ...
	// Longest matching mountpoint wins.
	var matchedMount, matchedFsType string
	for _, line := range strings.Split(string(mounts), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		mountPoint := fields[1]
		fsType := fields[2]
		if strings.HasPrefix(absPath, mountPoint) {
			if len(mountPoint) > len(matchedMount) {
				matchedMount = mountPoint
				matchedFsType = fsType
			}
		}
	}

	if matchedFsType == "" {
		return ""
	}

	switch {
	case matchedFsType == "9p":
		return "root is on a 9p mount (WSL2 Windows drive): change watching disabled, re-run 'omnidex index' to refresh"
	case matchedFsType == "nfs" || matchedFsType == "nfs4":
		return "root is on an NFS mount: change watching may miss events, re-run 'omnidex index' to refresh"
	case matchedFsType == "cifs" || matchedFsType == "smbfs":
		return "root is on a CIFS/SMB mount: change watching may miss events, re-run 'omnidex index' to refresh"
	case strings.HasPrefix(matchedFsType, "fuse.sshfs"):
		return "root is on an SSHFS mount: change watching disabled, re-run 'omnidex index' to refresh"
	}

	return ""
}
