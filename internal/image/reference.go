package image

import (
	"errors"
	"fmt"
	"strings"

	"github.com/distribution/reference"
)

// Characters a shell would interpret. None of them can appear in a valid
// reference, but they are rejected explicitly so the error says why.
const shellMetacharacters = ";&|`$<>(){}[]*?!\\'\"#~ \t\r\n"

var ErrInvalidReference = errors.New("invalid image reference")

// Returned by [Parse] when the input is not an acceptable image reference.
type InvalidReferenceError struct {
	Value  string // Rejected input.
	Reason string // Short explanation.
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid image reference %q: %s", e.Value, e.Reason)
}

func (e *InvalidReferenceError) Unwrap() error { return ErrInvalidReference }

// A validated image reference in "name[:tag]" or "name@digest" form.
type Reference struct {
	raw string
}

// Validates s and returns it as a [Reference].
func Parse(s string) (Reference, error) {
	switch {
	case s == "":
		return Reference{}, &InvalidReferenceError{Value: s, Reason: "must not be empty"}
	case strings.ContainsAny(s, shellMetacharacters):
		return Reference{}, &InvalidReferenceError{Value: s, Reason: "contains shell metacharacters"}
	case strings.HasPrefix(s, "-"):
		return Reference{}, &InvalidReferenceError{Value: s, Reason: "must not start with '-'"}
	}

	for segment := range strings.SplitSeq(s, "/") {
		if segment == ".." || segment == "." {
			return Reference{}, &InvalidReferenceError{Value: s, Reason: "contains a path traversal segment"}
		}
	}

	if _, err := reference.ParseNormalizedNamed(s); err != nil {
		return Reference{}, &InvalidReferenceError{Value: s, Reason: err.Error()}
	}

	return Reference{raw: s}, nil
}

// Like [Parse] but panics on invalid input. For constants and tests.
func MustParse(s string) Reference {
	ref, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return ref
}

// Returns the reference exactly as it was given.
func (r Reference) String() string { return r.raw }

// Reports whether r is the zero value.
func (r Reference) IsZero() bool { return r.raw == "" }

// Returns the fully qualified form, e.g. "docker.io/library/ubuntu:latest".
// A missing tag defaults to "latest".
func (r Reference) Normalized() string {
	named, err := reference.ParseDockerRef(r.raw)
	if err != nil {
		return r.raw
	}
	return named.String()
}
