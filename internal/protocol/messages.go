package protocol

import (
	"github.com/cruciblehq/podsmith/internal/provision"
	"github.com/cruciblehq/podsmith/internal/registry"
)

// Payload of [CmdPull].
type PullRequest struct {
	Image string `json:"image"`
}

// Result of [CmdPull].
type PullResult struct {
	Message string `json:"message"`
}

// Payload of [CmdProvision]. An empty Name is derived from the image.
type ProvisionRequest struct {
	Image string `json:"image"`
	Name  string `json:"name,omitempty"`
}

// Payload of [CmdSetupAccess].
type SetupAccessRequest struct {
	ContainerID string `json:"container_id"`
}

// Payload of [CmdSearch].
type SearchRequest struct {
	Term  string `json:"term"`
	Limit int    `json:"limit,omitempty"`
}

// Result of [CmdSearch].
type SearchResult struct {
	Results []registry.SearchResult `json:"results"`
}

// Result of [CmdImages].
type ImagesResult struct {
	Images []registry.Image `json:"images"`
}

// Result of [CmdContainers].
type ContainersResult struct {
	Containers []provision.ContainerRecord `json:"containers"`
}

// Result of [CmdStatus].
type StatusResult struct {
	Running  bool   `json:"running"`
	Version  string `json:"version"`
	Pid      int    `json:"pid"`
	Uptime   string `json:"uptime"`
	Requests int    `json:"requests"` // Commands served since start.
}

// Payload of [CmdError].
type ErrorResult struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"` // Failure class, when known.
}
