package cli

import (
	"context"
	"fmt"
)

// Represents the 'podsmith ssh' command.
type SSHCmd struct {
	Container string `arg:"" help:"Container the key pair is for."`
}

// Executes the ssh command.
//
// Every container shares one key pair at the configured ssh_key path.
func (c *SSHCmd) Run(ctx context.Context, env *Env) error {
	backend, closeFn, err := env.Backend(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := backend.SetupAccess(ctx, c.Container)
	if err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, successMsg("%s", res.Message))

	pairs := []pair{
		{"private key", res.KeyPair.PrivatePath},
		{"public key", res.KeyPair.PublicPath},
	}
	if res.KeyPair.Fingerprint != "" {
		pairs = append(pairs, pair{"fingerprint", res.KeyPair.Fingerprint})
	}
	fmt.Fprint(env.Stdout, keyValues(pairs...))
	return nil
}
