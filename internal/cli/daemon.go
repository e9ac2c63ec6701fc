package cli

import (
	"context"
	"fmt"
	"strconv"
)

// Represents the 'podsmith status' command.
type StatusCmd struct{}

// Executes the status command.
func (c *StatusCmd) Run(ctx context.Context, env *Env) error {
	d, err := env.Daemon()
	if err != nil {
		return err
	}

	st, err := d.Status(ctx)
	if err != nil {
		return err
	}

	fmt.Fprint(env.Stdout, keyValues(
		pair{"version", st.Version},
		pair{"pid", strconv.Itoa(st.Pid)},
		pair{"uptime", st.Uptime},
		pair{"requests", strconv.Itoa(st.Requests)},
	))
	return nil
}

// Represents the 'podsmith shutdown' command.
type ShutdownCmd struct{}

// Executes the shutdown command.
func (c *ShutdownCmd) Run(ctx context.Context, env *Env) error {
	d, err := env.Daemon()
	if err != nil {
		return err
	}

	if err := d.Shutdown(ctx); err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, successMsg("Daemon stopped."))
	return nil
}
