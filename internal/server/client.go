package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/cruciblehq/podsmith/internal/orchestrate"
	"github.com/cruciblehq/podsmith/internal/protocol"
	"github.com/cruciblehq/podsmith/internal/provision"
	"github.com/cruciblehq/podsmith/internal/registry"
)

// Talks to a running daemon over its Unix socket.
//
// Each call opens a fresh connection and closes it after the reply. A Client
// is safe for concurrent use.
type Client struct {
	socketPath string
	dialer     net.Dialer
}

// Creates a client for the daemon listening at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Sends one request and decodes the reply into out, which may be nil.
func (c *Client) call(ctx context.Context, cmd protocol.Command, req any, out any) error {
	conn, err := c.dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("%w: connect to %s: %w", ErrServer, c.socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	data, err := protocol.Encode(cmd, req)
	if err != nil {
		return err
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("%w: send %s: %w", ErrServer, cmd, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("%w: read %s reply: %w", ErrServer, cmd, err)
	}

	env, payload, err := protocol.Decode(line)
	if err != nil {
		return err
	}

	switch env.Command {
	case protocol.CmdOK:
	case protocol.CmdError:
		res, err := protocol.DecodePayload[protocol.ErrorResult](payload)
		if err != nil {
			return err
		}
		return &RemoteError{Kind: res.Kind, Message: res.Message}
	default:
		return fmt.Errorf("%w: unexpected reply %q to %s", ErrServer, env.Command, cmd)
	}

	if out == nil {
		return nil
	}
	return decodeInto(payload, out)
}

// Pulls an image through the daemon.
func (c *Client) Pull(ctx context.Context, image string) (string, error) {
	var res protocol.PullResult
	if err := c.call(ctx, protocol.CmdPull, &protocol.PullRequest{Image: image}, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

// Creates a container through the daemon.
func (c *Client) Provision(ctx context.Context, image, name string) (orchestrate.Provisioned, error) {
	var res orchestrate.Provisioned
	err := c.call(ctx, protocol.CmdProvision, &protocol.ProvisionRequest{Image: image, Name: name}, &res)
	return res, err
}

// Ensures the daemon's SSH key pair exists for a container.
func (c *Client) SetupAccess(ctx context.Context, containerID string) (orchestrate.Access, error) {
	var res orchestrate.Access
	err := c.call(ctx, protocol.CmdSetupAccess, &protocol.SetupAccessRequest{ContainerID: containerID}, &res)
	return res, err
}

// Searches the registry through the daemon.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]registry.SearchResult, error) {
	var res protocol.SearchResult
	if err := c.call(ctx, protocol.CmdSearch, &protocol.SearchRequest{Term: term, Limit: limit}, &res); err != nil {
		return nil, err
	}
	return nonNil(res.Results), nil
}

// Lists the daemon's local images.
func (c *Client) Images(ctx context.Context) ([]registry.Image, error) {
	var res protocol.ImagesResult
	if err := c.call(ctx, protocol.CmdImages, nil, &res); err != nil {
		return nil, err
	}
	return nonNil(res.Images), nil
}

// Lists containers known to the daemon's runtime.
func (c *Client) Containers(ctx context.Context) ([]provision.ContainerRecord, error) {
	var res protocol.ContainersResult
	if err := c.call(ctx, protocol.CmdContainers, nil, &res); err != nil {
		return nil, err
	}
	return nonNil(res.Containers), nil
}

// Queries the daemon's status.
func (c *Client) Status(ctx context.Context) (*protocol.StatusResult, error) {
	var res protocol.StatusResult
	if err := c.call(ctx, protocol.CmdStatus, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Asks the daemon to shut down.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.call(ctx, protocol.CmdShutdown, nil, nil)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Unmarshals a reply payload into out.
func decodeInto(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %w", protocol.ErrMalformed, err)
	}
	return nil
}
