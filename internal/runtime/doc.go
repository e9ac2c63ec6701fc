// Package runtime is the native containerd backend.
//
// A [Runtime] talks to a containerd daemon over its API instead of shelling
// out to a runtime CLI. It offers the same operations as the registry and
// provision packages: pulling and listing images, and creating and listing
// containers. Images are pulled for the host platform and unpacked into the
// configured snapshotter. Containers are created with a fresh snapshot and an
// OCI spec derived from the image config; no task is started.
//
// containerd has no registry search API, so [Runtime.Search] always returns
// [ErrUnsupported].
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "podsmith", "overlayfs")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	if _, err := rt.Pull(ctx, image.MustParse("ubuntu:latest")); err != nil {
//	    return err
//	}
//
//	id, err := rt.CreateContainer(ctx, image.MustParse("ubuntu:latest"), "")
package runtime
