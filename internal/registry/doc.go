// Package registry searches, pulls, and lists images by invoking the
// container runtime's own subcommands.
//
// The package holds no state; every call is a pass-through to the runtime
// with its JSON output decoded into [SearchResult] and [Image] values. Podman
// and docker print differently shaped JSON for the same subcommands; both are
// accepted.
package registry
