package cli

import (
	"context"
	"log/slog"

	"github.com/cruciblehq/podsmith/internal/paths"
	"github.com/cruciblehq/podsmith/internal/server"
)

// Represents the 'podsmith serve' command.
type ServeCmd struct{}

// Executes the serve command.
//
// Starts the daemon on a Unix domain socket and blocks until the context is
// cancelled (e.g. via SIGINT or SIGTERM) or a client requests shutdown. The
// daemon always runs the local backend, even when --socket is given: there
// it names the socket to listen on.
func (c *ServeCmd) Run(ctx context.Context, env *Env) error {
	s, err := env.Settings()
	if err != nil {
		return err
	}

	svc, closeFn, err := env.Local(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	socket := s.Socket
	if socket == "" {
		socket = paths.Socket()
	}

	srv := server.New(svc, server.Config{SocketPath: socket})
	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("podsmith daemon is running", "runtime", s.Runtime)

	stopped := make(chan struct{})
	go func() {
		srv.Wait()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
	case <-stopped:
	}

	// Stop drains in-flight requests, so the deferred backend close never
	// runs under a handler.
	slog.Info("shutting down")
	return srv.Stop()
}
