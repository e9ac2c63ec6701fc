package paths

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"~", xdg.Home},
		{"~/.ssh/id_rsa", filepath.Join(xdg.Home, ".ssh", "id_rsa")},
		{"/etc/key", "/etc/key"},
		{"relative/key", "relative/key"},
		{"~other/key", "~other/key"},
	}

	for _, tt := range tests {
		if got := Expand(tt.in); got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultsUseAppName(t *testing.T) {
	for _, p := range []string{ConfigFile(), KeyFile(), Socket(), PIDFile()} {
		if !strings.Contains(p, appName) {
			t.Errorf("path %q does not contain %q", p, appName)
		}
	}
}

func TestSocketUnderRuntime(t *testing.T) {
	if filepath.Dir(Socket()) != Runtime() {
		t.Fatalf("socket %q not under runtime dir %q", Socket(), Runtime())
	}
	if filepath.Dir(PIDFile()) != Runtime() {
		t.Fatalf("pid file %q not under runtime dir %q", PIDFile(), Runtime())
	}
}
