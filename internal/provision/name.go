package provision

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cruciblehq/podsmith/internal/image"
)

// Prefix of every derived container name.
const namePrefix = "container_"

// Names accepted by both podman and docker.
var validName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// Reference separators that container names do not allow.
var separators = strings.NewReplacer(":", "_", "/", "_", "@", "_")

// Runtime-visible name of a container.
type ContainerName string

// Identifier the runtime assigned to a created container.
type ContainerID string

// Derives the default container name for ref.
//
// The registry separators ':', '/', and '@' are replaced by '_' and the
// result is prefixed with "container_".
func DeriveName(ref image.Reference) ContainerName {
	return ContainerName(namePrefix + separators.Replace(ref.String()))
}

// Returns an error if n is not a name the runtime would accept.
func (n ContainerName) Validate() error {
	if !validName.MatchString(string(n)) {
		return fmt.Errorf("%w %q: must match %s", ErrInvalidName, n, validName)
	}
	return nil
}

func (n ContainerName) String() string { return string(n) }

func (id ContainerID) String() string { return string(id) }
