// Package orchestrate composes the registry, provisioner, and credential
// manager into podsmith's user-facing verbs.
//
// A [Service] holds no state beyond its collaborators. Each verb validates
// its input, delegates to one collaborator, and turns the outcome into a
// human-readable message or returns the collaborator's typed error
// unchanged. Presentation is left to the caller.
//
// Access setup accepts a container ID but does not scope the key to it:
// every container shares the key pair at the configured SSH key path.
package orchestrate
