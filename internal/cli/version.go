package cli

import (
	"fmt"

	"github.com/cruciblehq/podsmith/internal"
)

// Represents the 'podsmith version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(env *Env) error {
	fmt.Fprintln(env.Stdout, internal.VersionString())
	return nil
}
