package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"

	"github.com/cruciblehq/podsmith/internal/protocol"
)

// Handles a pull command.
func (s *Server) handlePull(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.PullRequest](payload)
	if err != nil {
		s.fail(conn, err)
		return
	}

	msg, err := s.service.Pull(ctx, req.Image)
	if err != nil {
		s.fail(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, &protocol.PullResult{Message: msg})
}

// Handles a provision command.
func (s *Server) handleProvision(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.ProvisionRequest](payload)
	if err != nil {
		s.fail(conn, err)
		return
	}

	result, err := s.service.Provision(ctx, req.Image, req.Name)
	if err != nil {
		s.fail(conn, err)
		return
	}

	slog.Info("container created", "id", result.ID, "name", result.Name, "image", result.Image)
	s.respond(conn, protocol.CmdOK, &result)
}

// Handles a setup-access command.
func (s *Server) handleSetupAccess(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.SetupAccessRequest](payload)
	if err != nil {
		s.fail(conn, err)
		return
	}

	result, err := s.service.SetupAccess(ctx, req.ContainerID)
	if err != nil {
		s.fail(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, &result)
}

// Handles a search command.
func (s *Server) handleSearch(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.SearchRequest](payload)
	if err != nil {
		s.fail(conn, err)
		return
	}

	results, err := s.service.Search(ctx, req.Term, req.Limit)
	if err != nil {
		s.fail(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, &protocol.SearchResult{Results: results})
}

// Handles an images command.
func (s *Server) handleImages(ctx context.Context, conn net.Conn) {
	images, err := s.service.Images(ctx)
	if err != nil {
		s.fail(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, &protocol.ImagesResult{Images: images})
}

// Handles a containers command.
func (s *Server) handleContainers(ctx context.Context, conn net.Conn) {
	containers, err := s.service.Containers(ctx)
	if err != nil {
		s.fail(conn, err)
		return
	}

	s.respond(conn, protocol.CmdOK, &protocol.ContainersResult{Containers: containers})
}

// Handles a status command.
func (s *Server) handleStatus(conn net.Conn) {
	s.respond(conn, protocol.CmdOK, s.status())
}

// Handles a shutdown command.
func (s *Server) handleShutdown(conn net.Conn) {
	s.respond(conn, protocol.CmdOK, nil)
	slog.Info("shutdown requested")

	go func() {
		s.Stop()
	}()
}
