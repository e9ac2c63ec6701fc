// Package image validates container image references before they reach the
// runtime.
//
// A [Reference] is the text the user typed ("ubuntu:latest",
// "quay.io/podman/hello"), checked once at construction. It must be a valid
// docker-style reference and must not contain path-traversal segments or shell
// metacharacters. The text is kept as given; [Reference.Normalized] expands it
// to the fully qualified form when a backend needs one.
package image
