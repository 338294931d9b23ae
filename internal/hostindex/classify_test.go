package hostindex

import (
	"strings"
	"testing"

	"github.com/tomhartill/omnidex/internal/launcher"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path     string
		ext      string
		isFolder bool
		want     launcher.Kind
	}{
		{`C:\Program Files\App\app.exe`, "exe", false, launcher.KindApp},
		{`C:\Downloads\setup.msi`, "msi", false, launcher.KindApp},
		{`C:\Users\u\AppData\Roaming\Microsoft\Windows\Recent\report.lnk`, "lnk", false, launcher.KindFile},
		{`C:\Users\u\AppData\Roaming\Microsoft\Windows\Start Menu\Programs\Chrome.lnk`, "lnk", false, launcher.KindApp},
		{`C:\Users\u\Desktop\Chrome.lnk`, "lnk", false, launcher.KindApp},
		{`C:\Stuff\random.lnk`, "lnk", false, launcher.KindFile},
		{`C:\Docs\report.pdf`, "pdf", false, launcher.KindFile},
		{`C:\Projects\src`, "", true, launcher.KindFolder},
	}
	for _, tt := range tests {
		got := Classify(tt.path, tt.ext, tt.isFolder)
		if got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestDisplayPathRecent(t *testing.T) {
	path := `C:\Users\u\AppData\Roaming\Microsoft\Windows\Recent\report.lnk`
	got := DisplayPath(path, "report.lnk")
	if got != "Recent: report.lnk" {
		t.Errorf("DisplayPath = %q, want Recent form", got)
	}
}

func TestDisplayPathElision(t *testing.T) {
	long := `C:\` + strings.Repeat(`verylongsegment\`, 8) + `dir\sub\file.txt`
	got := DisplayPath(long, "file.txt")
	want := `...\dir\sub\file.txt`
	if got != want {
		t.Errorf("DisplayPath = %q, want %q", got, want)
	}
}

func TestDisplayPathShortUnchanged(t *testing.T) {
	short := `C:\Docs\file.txt`
	if got := DisplayPath(short, "file.txt"); got != short {
		t.Errorf("DisplayPath = %q, want unchanged", got)
	}
}
