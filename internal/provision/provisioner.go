package provision

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cruciblehq/podsmith/internal/command"
	"github.com/cruciblehq/podsmith/internal/image"
)

// Read-only projection of a container as reported by the runtime.
type ContainerRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Status string `json:"status"`
}

// Creates and lists containers by invoking a CLI runtime.
type Provisioner struct {
	runner command.Runner // Executes runtime subcommands.
	binary string         // Runtime program, e.g. "podman".
}

// Creates a provisioner invoking binary through runner.
func New(runner command.Runner, binary string) *Provisioner {
	return &Provisioner{runner: runner, binary: binary}
}

// Creates a container from ref and returns the runtime's container ID.
//
// An empty name derives one with [DeriveName]. The container is created but
// not started. Any runtime failure, including a name collision, is returned
// as a [*ProvisioningError].
func (p *Provisioner) CreateContainer(ctx context.Context, ref image.Reference, name ContainerName) (ContainerID, error) {
	if name == "" {
		name = DeriveName(ref)
	}
	if err := name.Validate(); err != nil {
		return "", err
	}

	res, err := p.runner.Run(ctx, p.binary, "container", "create", "--name", string(name), ref.String())
	if err != nil {
		return "", &ProvisioningError{Image: ref.String(), Name: name, Cause: err}
	}

	return ContainerID(strings.TrimSpace(res.Stdout)), nil
}

// Lists every container known to the runtime, including stopped ones.
//
// Zero containers yields an empty slice. Invocation failures are returned as
// [*command.ExecutionError]; unparsable output as [*command.DecodeError].
func (p *Provisioner) ListContainers(ctx context.Context) ([]ContainerRecord, error) {
	res, err := p.runner.Run(ctx, p.binary, "container", "ls", "--all", "--format", "json")
	if err != nil {
		return nil, err
	}

	raw, err := command.DecodeRecords[listedContainer](res, p.binary+" container ls")
	if err != nil {
		return nil, err
	}

	records := make([]ContainerRecord, 0, len(raw))
	for _, c := range raw {
		records = append(records, c.record())
	}
	return records, nil
}

// Container as printed by "container ls --format json". Podman prints an
// array with Names as a list; docker prints one object per line with Names
// as a comma-separated string. Field matching is case-insensitive, so "Id"
// and "ID" both land in ID.
type listedContainer struct {
	ID     string   `json:"Id"`
	Names  nameList `json:"Names"`
	Image  string   `json:"Image"`
	State  string   `json:"State"`
	Status string   `json:"Status"`
}

func (c listedContainer) record() ContainerRecord {
	status := c.State
	if status == "" {
		status = c.Status
	}

	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return ContainerRecord{
		ID:     c.ID,
		Name:   name,
		Image:  c.Image,
		Status: strings.ToLower(status),
	}
}

// Container names as either a JSON list or a comma-separated string.
type nameList []string

func (n *nameList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*n = list
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	if joined == "" {
		*n = nil
		return nil
	}
	*n = strings.Split(joined, ",")
	return nil
}
