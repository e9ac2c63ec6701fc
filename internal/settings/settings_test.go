package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Defaults(), got); diff != "" {
		t.Fatalf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEmptyFileReturnsDefaults(t *testing.T) {
	got, err := Load(writeSettings(t, ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Defaults(), got); diff != "" {
		t.Fatalf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "secret.key")
	path := writeSettings(t, `
binary: docker
timeout: 30s
key_file: `+keyFile+`
containerd:
  namespace: dev
`)

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Defaults()
	want.Binary = "docker"
	want.Timeout = 30 * time.Second
	want.KeyFile = keyFile
	want.Containerd.Namespace = "dev"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "runtimee: cli\n"},
		{"unknown runtime", "runtime: lxc\n"},
		{"negative timeout", "timeout: -1s\n"},
		{"bad duration", "timeout: soon\n"},
		{"empty binary", "binary: \"\"\n"},
		{"not yaml", "runtime: [cli\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeSettings(t, tt.content)); !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("Load() error = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestLoadContainerdRuntimeIgnoresBinary(t *testing.T) {
	got, err := Load(writeSettings(t, "runtime: containerd\nbinary: \"\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Runtime != BackendContainerd {
		t.Errorf("Runtime = %q, want %q", got.Runtime, BackendContainerd)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	s := Defaults()
	s.Runtime = BackendContainerd
	s.Timeout = 90 * time.Second
	s.Socket = filepath.Join(t.TempDir(), "podsmith.sock")

	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Fatalf("Load() after Save() mismatch (-want +got):\n%s", diff)
	}
}
