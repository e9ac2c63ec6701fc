package provision

import (
	"errors"
	"fmt"

	"github.com/cruciblehq/podsmith/internal/command"
)

var (
	ErrProvisioning = errors.New("provisioning failed")
	ErrInvalidName  = errors.New("invalid container name")
)

// Returned when the runtime rejects a container create.
type ProvisioningError struct {
	Image string        // Image the container was to be created from.
	Name  ContainerName // Name requested for the container.
	Cause error         // Runtime failure, usually a [*command.ExecutionError].
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("create container %q from %s: %v", e.Name, e.Image, e.Cause)
}

func (e *ProvisioningError) Unwrap() []error {
	return []error{ErrProvisioning, e.Cause}
}

// Returns the runtime's own explanation (its stderr), or the cause text when
// the runtime never ran.
func (e *ProvisioningError) Reason() string {
	var execErr *command.ExecutionError
	if errors.As(e.Cause, &execErr) && execErr.Reason() != "" {
		return execErr.Reason()
	}
	return e.Cause.Error()
}
