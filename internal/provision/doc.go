// Package provision creates and lists containers through a CLI container
// runtime (podman or docker).
//
// Container names are derived from the image reference unless the caller
// supplies one: "ubuntu:latest" becomes "container_ubuntu_latest". The
// provisioner does not keep a registry of names; the runtime is the source of
// truth and reports collisions itself. A rejected create is returned as a
// [ProvisioningError] whose cause carries the runtime's reason verbatim, and
// is never retried, because a name collision is for the caller to resolve.
//
// Example usage:
//
//	p := provision.New(command.New(), "podman")
//
//	id, err := p.CreateContainer(ctx, image.MustParse("ubuntu:latest"), "")
//	if err != nil {
//	    return err
//	}
package provision
