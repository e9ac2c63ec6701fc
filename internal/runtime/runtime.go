package runtime

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	goruntime "runtime"
	"slices"
	"time"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/platforms"
	"github.com/cruciblehq/podsmith/internal/image"
	"github.com/cruciblehq/podsmith/internal/registry"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

const (

	// Snapshotter used when none is configured.
	DefaultSnapshotter = "overlayfs"

	// OCI runtime shim for containers.
	ociRuntime = "io.containerd.runc.v2"

	// Hex digits kept in short image IDs, matching the runtime CLIs.
	shortIDLength = 12
)

// Manages the containerd client and provides image and container operations.
//
// A Runtime is safe for concurrent use.
type Runtime struct {
	client      *containerd.Client // Containerd client for managing containers and images.
	snapshotter string             // Snapshotter for unpacked layers and container roots.
	platform    string             // OCI platform images are pulled and run for.
}

// Creates a runtime connected to the containerd socket at the given address.
//
// The namespace scopes all containerd operations to a single tenant. An empty
// snapshotter selects [DefaultSnapshotter]. The runtime must be closed when no
// longer needed.
func New(address, namespace, snapshotter string) (*Runtime, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	if snapshotter == "" {
		snapshotter = DefaultSnapshotter
	}
	return &Runtime{
		client:      client,
		snapshotter: snapshotter,
		platform:    defaultPlatform(),
	}, nil
}

// Closes the containerd client connection.
func (rt *Runtime) Close() error {
	return rt.client.Close()
}

// Pulls an image for the host platform and unpacks it into the snapshotter.
//
// Returns the digest of the pulled image's target descriptor.
func (rt *Runtime) Pull(ctx context.Context, ref image.Reference) (string, error) {
	name := ref.Normalized()

	p, err := platforms.Parse(rt.platform)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	img, err := rt.client.Pull(ctx, name,
		containerd.WithPullUnpack,
		containerd.WithPullSnapshotter(rt.snapshotter),
		containerd.WithPlatformMatcher(platforms.Only(p)),
	)
	if err != nil {
		return "", fmt.Errorf("%w: pull %s: %w", ErrRuntime, name, err)
	}

	slog.Debug("image pulled", "image", img.Name(), "digest", img.Target().Digest)

	return img.Target().Digest.String(), nil
}

// Returns every image known to the namespace, one entry per distinct target.
func (rt *Runtime) Images(ctx context.Context) ([]registry.Image, error) {
	imgs, err := rt.client.ListImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	entries := make([]imageEntry, 0, len(imgs))
	for _, img := range imgs {
		size, err := img.Size(ctx)
		if err != nil {
			slog.Debug("image size unavailable", "image", img.Name(), "error", err)
			size = 0
		}
		entries = append(entries, newImageEntry(img.Name(), img.Target(), size, img.Metadata().CreatedAt))
	}

	return collectImages(entries), nil
}

// Always fails with [ErrUnsupported]; containerd cannot search registries.
func (rt *Runtime) Search(ctx context.Context, term string, limit int) ([]registry.SearchResult, error) {
	return nil, fmt.Errorf("%w: search", ErrUnsupported)
}

// Image record as containerd stores it: one per name.
type imageEntry struct {
	name    string
	digest  digest.Digest
	size    int64
	created time.Time
}

// Builds an entry for a named target. A non-positive size falls back to the
// size of the target descriptor itself.
func newImageEntry(name string, target ocispec.Descriptor, size int64, created time.Time) imageEntry {
	if size <= 0 {
		size = target.Size
	}
	return imageEntry{name: name, digest: target.Digest, size: size, created: created}
}

// Folds per-name records into per-image records keyed by target digest.
//
// Names sharing a digest become references of one image. The result is sorted
// newest first, then by ID.
func collectImages(entries []imageEntry) []registry.Image {
	byDigest := make(map[digest.Digest]*registry.Image)
	created := make(map[digest.Digest]time.Time)
	var order []digest.Digest

	for _, e := range entries {
		img, ok := byDigest[e.digest]
		if !ok {
			img = &registry.Image{ID: shortID(e.digest), Size: e.size}
			if !e.created.IsZero() {
				img.Created = e.created.UTC().Format(time.RFC3339)
			}
			byDigest[e.digest] = img
			created[e.digest] = e.created
			order = append(order, e.digest)
		}
		img.References = append(img.References, e.name)
	}

	slices.SortStableFunc(order, func(a, b digest.Digest) int {
		if c := created[b].Compare(created[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	out := make([]registry.Image, 0, len(order))
	for _, d := range order {
		img := byDigest[d]
		slices.Sort(img.References)
		out = append(out, *img)
	}
	return out
}

// Returns the first hex digits of a digest, or the whole encoded part if it
// is shorter. Invalid digests are returned unchanged.
func shortID(d digest.Digest) string {
	if d.Validate() != nil {
		return d.String()
	}
	enc := d.Encoded()
	if len(enc) > shortIDLength {
		return enc[:shortIDLength]
	}
	return enc
}

// Returns the default OCI platform for the host architecture.
func defaultPlatform() string {
	return "linux/" + goruntime.GOARCH
}
