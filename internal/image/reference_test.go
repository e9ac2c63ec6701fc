package image

import (
	"errors"
	"testing"
)

func TestParseValid(t *testing.T) {
	for _, s := range []string{
		"ubuntu",
		"ubuntu:latest",
		"library/ubuntu:22.04",
		"quay.io/podman/hello",
		"localhost:5000/team/app:v1.2",
		"ubuntu@sha256:" + "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
	} {
		ref, err := Parse(s)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", s, err)
			continue
		}
		if ref.String() != s {
			t.Errorf("Parse(%q).String() = %q", s, ref.String())
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{
		"",
		"x; rm -rf /",
		"ubuntu && echo",
		"$(whoami)",
		"`id`",
		"../etc/passwd",
		"registry/../image",
		"-rm",
		"Ubuntu",
		"ubuntu:",
	} {
		_, err := Parse(s)
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
			continue
		}
		if !errors.Is(err, ErrInvalidReference) {
			t.Errorf("Parse(%q) error %v does not unwrap to ErrInvalidReference", s, err)
		}
		var invalid *InvalidReferenceError
		if !errors.As(err, &invalid) || invalid.Value != s {
			t.Errorf("Parse(%q) error = %#v", s, err)
		}
	}
}

func TestNormalized(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ubuntu", "docker.io/library/ubuntu:latest"},
		{"ubuntu:22.04", "docker.io/library/ubuntu:22.04"},
		{"quay.io/podman/hello", "quay.io/podman/hello:latest"},
	}

	for _, tt := range tests {
		if got := MustParse(tt.in).Normalized(); got != tt.want {
			t.Errorf("Normalized(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestZero(t *testing.T) {
	var ref Reference
	if !ref.IsZero() {
		t.Fatal("zero Reference is not IsZero")
	}
	if MustParse("ubuntu").IsZero() {
		t.Fatal("parsed Reference reports IsZero")
	}
}
