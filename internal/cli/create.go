package cli

import (
	"context"
	"fmt"
)

// Represents the 'podsmith create' command.
type CreateCmd struct {
	Image  string `arg:"" optional:"" help:"Image to create the container from. With --search, the search term."`
	Name   string `short:"n" help:"Container name. Derived from the image when omitted." placeholder:"NAME"`
	Search bool   `help:"List images matching IMAGE instead of creating a container."`
}

// Executes the create command.
func (c *CreateCmd) Run(ctx context.Context, env *Env) error {
	if c.Image == "" {
		return ErrNoImage
	}

	backend, closeFn, err := env.Backend(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if c.Search {
		return printSearch(ctx, env, backend, c.Image, searchCandidates, false)
	}

	res, err := backend.Provision(ctx, c.Image, c.Name)
	if err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, successMsg("%s", res.Message))
	return nil
}
