package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cruciblehq/podsmith/internal/credential"
	"github.com/cruciblehq/podsmith/internal/image"
	"github.com/cruciblehq/podsmith/internal/provision"
	"github.com/cruciblehq/podsmith/internal/registry"
)

var ErrContainerRequired = errors.New("container ID is required")

// Searches, pulls, and lists images.
type Registry interface {
	Search(ctx context.Context, term string, limit int) ([]registry.SearchResult, error)
	Pull(ctx context.Context, ref image.Reference) (string, error)
	Images(ctx context.Context) ([]registry.Image, error)
}

// Creates and lists containers.
type Provisioner interface {
	CreateContainer(ctx context.Context, ref image.Reference, name provision.ContainerName) (provision.ContainerID, error)
	ListContainers(ctx context.Context) ([]provision.ContainerRecord, error)
}

// Holds the encryption key and generates SSH key pairs.
type Credentials interface {
	EnsureSSHKeyPair(ctx context.Context, path string) (credential.SSHKeyPair, error)
	Encrypt(plaintext string) ([]byte, error)
	Decrypt(ciphertext []byte) (string, error)
}

// Outcome of [Service.Provision].
type Provisioned struct {
	ID      provision.ContainerID   `json:"id"`
	Name    provision.ContainerName `json:"name"`
	Image   string                  `json:"image"`
	Message string                  `json:"message"`
}

// Outcome of [Service.SetupAccess].
type Access struct {
	ContainerID string                `json:"container_id"`
	KeyPair     credential.SSHKeyPair `json:"key_pair"`
	Message     string                `json:"message"`
}

// Composes the collaborators into user-facing verbs.
type Service struct {
	registry    Registry
	provisioner Provisioner
	credentials Credentials
	sshKey      string // Private key path shared by every container.
}

// Creates a service. sshKey is the private key path used by
// [Service.SetupAccess].
func New(reg Registry, prov Provisioner, creds Credentials, sshKey string) *Service {
	return &Service{
		registry:    reg,
		provisioner: prov,
		credentials: creds,
		sshKey:      sshKey,
	}
}

// Pulls an image and returns a confirmation message.
func (s *Service) Pull(ctx context.Context, raw string) (string, error) {
	ref, err := image.Parse(raw)
	if err != nil {
		return "", err
	}

	id, err := s.registry.Pull(ctx, ref)
	if err != nil {
		return "", err
	}

	msg := fmt.Sprintf("Image %s pulled successfully.", ref)
	if id != "" {
		msg = fmt.Sprintf("Image %s pulled successfully (%s).", ref, id)
	}
	return msg, nil
}

// Creates a container from an image. An empty name is derived from the
// image.
func (s *Service) Provision(ctx context.Context, raw, name string) (Provisioned, error) {
	ref, err := image.Parse(raw)
	if err != nil {
		return Provisioned{}, err
	}

	cname := provision.ContainerName(name)
	if cname == "" {
		cname = provision.DeriveName(ref)
	}

	id, err := s.provisioner.CreateContainer(ctx, ref, cname)
	if err != nil {
		return Provisioned{}, err
	}

	return Provisioned{
		ID:      id,
		Name:    cname,
		Image:   ref.String(),
		Message: fmt.Sprintf("Container '%s' with ID %s created from image %s.", cname, id, ref),
	}, nil
}

// Ensures the shared SSH key pair exists for a container.
//
// The container ID is reported in the message only; it does not select or
// scope the key.
func (s *Service) SetupAccess(ctx context.Context, containerID string) (Access, error) {
	containerID = strings.TrimSpace(containerID)
	if containerID == "" {
		return Access{}, ErrContainerRequired
	}

	pair, err := s.credentials.EnsureSSHKeyPair(ctx, s.sshKey)
	if err != nil {
		return Access{}, err
	}

	var msg string
	if pair.Created {
		msg = fmt.Sprintf("SSH key generated at %s for container %s (%s).", pair.PrivatePath, containerID, pair.Fingerprint)
	} else {
		msg = fmt.Sprintf("SSH key already exists at %s; using it for container %s.", pair.PrivatePath, containerID)
	}

	return Access{ContainerID: containerID, KeyPair: pair, Message: msg}, nil
}

// Searches the registry.
func (s *Service) Search(ctx context.Context, term string, limit int) ([]registry.SearchResult, error) {
	return s.registry.Search(ctx, term, limit)
}

// Lists local images.
func (s *Service) Images(ctx context.Context) ([]registry.Image, error) {
	return s.registry.Images(ctx)
}

// Lists containers known to the runtime.
func (s *Service) Containers(ctx context.Context) ([]provision.ContainerRecord, error) {
	return s.provisioner.ListContainers(ctx)
}

// Encrypts text with the managed key.
func (s *Service) Encrypt(plaintext string) ([]byte, error) {
	return s.credentials.Encrypt(plaintext)
}

// Decrypts text sealed by [Service.Encrypt] under the same key.
func (s *Service) Decrypt(ciphertext []byte) (string, error) {
	return s.credentials.Decrypt(ciphertext)
}
