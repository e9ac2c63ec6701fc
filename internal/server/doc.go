// Package server implements the podsmith daemon and its client.
//
// The daemon listens on a Unix domain socket for JSON-encoded commands.
// Each connection carries a single request-response exchange: the client
// sends a newline-delimited [protocol.Envelope], the server dispatches the
// command to the orchestration service, and writes the result back before
// closing the connection.
//
// Failures travel back as an [protocol.ErrorResult] tagged with a kind, and
// the [Client] turns them into a [*RemoteError] that still matches the
// originating package's sentinel through errors.Is.
//
// Example usage:
//
//	srv := server.New(svc, server.Config{})
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server
