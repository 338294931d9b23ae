// Package clipboard puts launcher results on the system clipboard, so a
// calc answer or a result path can be pasted straight into another app.
package clipboard

import (
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/tomhartill/omnidex/internal/platform"
)

// CopyResult contains metadata about a successful clipboard copy.
type CopyResult struct {
	Method    string // which tool took the content (e.g. "pbcopy", "xclip", "osc52")
	ByteSize  int    // number of bytes copied
	LineCount int    // number of lines in the content
}

// Copy places text on the system clipboard. The chain is: platform-native
// clipboard tool, then the OSC 52 terminal escape sequence when a tty is
// available. OSC 52 matters over SSH, where no native tool can reach the
// local clipboard.
func Copy(text string) (*CopyResult, error) {
	if text == "" {
		return nil, fmt.Errorf("no content to copy")
	}

	res := &CopyResult{
		ByteSize:  len(text),
		LineCount: countLines(text),
	}

	method, err := copyNative(text)
	if err == nil {
		res.Method = method
		return res, nil
	}

	if err := copyOSC52(text); err == nil {
		res.Method = "osc52"
		return res, nil
	}

	return nil, fmt.Errorf("no clipboard method available (install pbcopy, xclip, xsel, or wl-copy)")
}

// copyNative attempts a platform-native clipboard command.
// Returns the method name on success.
func copyNative(text string) (string, error) {
	switch platform.Detect() {
	case platform.PlatformMacOS:
		return "pbcopy", runClipCmd("pbcopy", nil, text)

	case platform.PlatformWindows:
		return "clip", runClipCmd("clip", nil, text)

	case platform.PlatformWSL1, platform.PlatformWSL2:
		return "clip.exe", runClipCmd("clip.exe", nil, text)

	case platform.PlatformLinux:
		// Wayland takes priority over X11
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			if path, err := exec.LookPath("wl-copy"); err == nil {
				return "wl-copy", runClipCmd(path, nil, text)
			}
		}
		if path, err := exec.LookPath("xclip"); err == nil {
			return "xclip", runClipCmd(path, []string{"-selection", "clipboard"}, text)
		}
		if path, err := exec.LookPath("xsel"); err == nil {
			return "xsel", runClipCmd(path, []string{"--clipboard", "--input"}, text)
		}
		return "", fmt.Errorf("no clipboard command found on Linux")

	default:
		return "", fmt.Errorf("unsupported platform: %s", platform.Detect())
	}
}

// runClipCmd executes a clipboard command, piping text to its stdin.
func runClipCmd(name string, args []string, text string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// copyOSC52 copies text using the OSC 52 terminal escape sequence.
// Inside tmux, wraps the sequence in a DCS passthrough.
func copyOSC52(text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	seq := generateOSC52(encoded, os.Getenv("TMUX") != "")

	// Write to /dev/tty to bypass any stdout redirection
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("cannot open /dev/tty: %w", err)
	}
	defer tty.Close()

	_, err = tty.WriteString(seq)
	return err
}

// generateOSC52 builds the OSC 52 escape sequence.
// If inTmux is true, wraps it in a DCS passthrough for tmux compatibility.
func generateOSC52(base64Content string, inTmux bool) string {
	osc := "\x1b]52;c;" + base64Content + "\x07"
	if inTmux {
		return "\x1bPtmux;\x1b" + osc + "\x1b\\"
	}
	return osc
}

// countLines counts lines in text. A trailing newline does not add a line.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
