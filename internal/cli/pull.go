package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Number of candidates printed by --search on pull and create.
const searchCandidates = 25

var ErrNoImage = errors.New("an image reference is required")

// Represents the 'podsmith pull' command.
type PullCmd struct {
	Image  string `arg:"" optional:"" help:"Image reference, e.g. ubuntu:latest. With --search, the search term."`
	Search bool   `help:"List images matching IMAGE instead of pulling."`
}

// Executes the pull command.
func (c *PullCmd) Run(ctx context.Context, env *Env) error {
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

	slog.Info("pulling image", "image", c.Image)

	msg, err := backend.Pull(ctx, c.Image)
	if err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, successMsg("%s", msg))
	return nil
}
