package server

import (
	"errors"

	"github.com/cruciblehq/podsmith/internal/command"
	"github.com/cruciblehq/podsmith/internal/credential"
	"github.com/cruciblehq/podsmith/internal/image"
	"github.com/cruciblehq/podsmith/internal/orchestrate"
	"github.com/cruciblehq/podsmith/internal/protocol"
	"github.com/cruciblehq/podsmith/internal/provision"
	"github.com/cruciblehq/podsmith/internal/runtime"
)

var (
	ErrServer = errors.New("server error")
	ErrRemote = errors.New("daemon error")
)

// Wire names for error classes, most specific first. A provisioning failure
// wraps an execution failure, so it must be matched before it.
var errorKinds = []struct {
	kind string
	err  error
}{
	{"invalid-reference", image.ErrInvalidReference},
	{"invalid-name", provision.ErrInvalidName},
	{"container-required", orchestrate.ErrContainerRequired},
	{"provisioning", provision.ErrProvisioning},
	{"key-generation", credential.ErrKeyGeneration},
	{"authentication", credential.ErrAuthentication},
	{"unsupported", runtime.ErrUnsupported},
	{"decode", command.ErrDecode},
	{"execution", command.ErrExecution},
	{"malformed", protocol.ErrMalformed},
}

// Returns the wire name of err's class, or "" if it has none.
func errorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}

// Failure reported by the daemon.
type RemoteError struct {
	Kind    string // Wire name of the error class; may be empty.
	Message string // Error text as the daemon rendered it.
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Unwraps to [ErrRemote] and, when the kind is known, the sentinel of the
// package that produced the failure.
func (e *RemoteError) Unwrap() []error {
	for _, k := range errorKinds {
		if k.kind == e.Kind {
			return []error{ErrRemote, k.err}
		}
	}
	return []error{ErrRemote}
}
