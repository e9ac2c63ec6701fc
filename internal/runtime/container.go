package runtime

import (
	"context"
	"fmt"
	"slices"
	"strings"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/pkg/oci"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
	"github.com/cruciblehq/podsmith/internal/image"
	"github.com/cruciblehq/podsmith/internal/provision"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Status reported for a container that has never had a task.
const statusCreated = "created"

// Creates a container from a previously pulled image.
//
// The container name is used as the containerd container ID and, with a
// "-snapshot" suffix, as the snapshot key. An empty name is derived from the
// image. The container shares the host network namespace and resolv.conf.
// No task is started. A name already in use returns a
// [*provision.ProvisioningError] whose cause reports the collision.
func (rt *Runtime) CreateContainer(ctx context.Context, ref image.Reference, name provision.ContainerName) (provision.ContainerID, error) {
	if name == "" {
		name = provision.DeriveName(ref)
	}
	if err := name.Validate(); err != nil {
		return "", err
	}

	fail := func(cause error) error {
		return &provision.ProvisioningError{Image: ref.String(), Name: name, Cause: cause}
	}

	tag := ref.Normalized()

	img, err := rt.resolveImage(ctx, tag)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return "", fail(fmt.Errorf("image %s not found; pull it first", tag))
		}
		return "", fail(fmt.Errorf("%w: %w", ErrRuntime, err))
	}

	id := name.String()
	ctr, err := rt.client.NewContainer(ctx, id,
		containerd.WithImage(img),
		containerd.WithSnapshotter(rt.snapshotter),
		containerd.WithNewSnapshot(id+"-snapshot", img),
		containerd.WithRuntime(ociRuntime, nil),
		containerd.WithNewSpec(
			oci.WithDefaultSpecForPlatform(rt.platform),
			oci.WithImageConfig(img),
			oci.WithHostNamespace(specs.NetworkNamespace),
			oci.WithHostResolvconf,
		),
	)
	if err != nil {
		if errdefs.IsAlreadyExists(err) {
			return "", fail(fmt.Errorf("the container name %q is already in use: %w", id, err))
		}
		return "", fail(fmt.Errorf("%w: %w", ErrRuntime, err))
	}

	return provision.ContainerID(ctr.ID()), nil
}

// Lists every container in the namespace with the state of its task.
func (rt *Runtime) ListContainers(ctx context.Context) ([]provision.ContainerRecord, error) {
	ctrs, err := rt.client.Containers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	records := make([]provision.ContainerRecord, 0, len(ctrs))
	for _, ctr := range ctrs {
		info, err := ctr.Info(ctx, containerd.WithoutRefreshedMetadata)
		if err != nil {
			if errdefs.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
		}

		status, err := taskStatus(ctx, ctr)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
		}

		records = append(records, provision.ContainerRecord{
			ID:     ctr.ID(),
			Name:   ctr.ID(),
			Image:  info.Image,
			Status: status,
		})
	}

	slices.SortFunc(records, func(a, b provision.ContainerRecord) int {
		return strings.Compare(a.Name, b.Name)
	})
	return records, nil
}

// Returns the state of the container's task, or "created" if it has none.
func taskStatus(ctx context.Context, ctr containerd.Container) (string, error) {
	task, err := ctr.Task(ctx, nil)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return statusCreated, nil
		}
		return "", err
	}

	status, err := task.Status(ctx)
	if err != nil {
		return "", err
	}
	return normalizeStatus(status.Status), nil
}

// Maps a containerd process status onto the lowercase vocabulary used by
// container listings.
func normalizeStatus(s containerd.ProcessStatus) string {
	switch s {
	case containerd.Running, containerd.Stopped, containerd.Paused, containerd.Created:
		return string(s)
	case containerd.Pausing:
		return string(containerd.Paused)
	default:
		return "unknown"
	}
}

// Looks up a stored image and selects the manifest for the runtime's
// platform.
//
// Multi-platform images contain manifests for multiple architectures. This
// method selects one, so that snapshot and spec target the right one.
func (rt *Runtime) resolveImage(ctx context.Context, name string) (containerd.Image, error) {
	p, err := platforms.Parse(rt.platform)
	if err != nil {
		return nil, err
	}

	img, err := rt.client.ImageService().Get(ctx, name)
	if err != nil {
		return nil, err
	}

	return containerd.NewImageWithPlatform(rt.client, img, platforms.Only(p)), nil
}
