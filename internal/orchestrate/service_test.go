package orchestrate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cruciblehq/podsmith/internal/command"
	"github.com/cruciblehq/podsmith/internal/credential"
	"github.com/cruciblehq/podsmith/internal/image"
	"github.com/cruciblehq/podsmith/internal/provision"
	"github.com/cruciblehq/podsmith/internal/registry"
	"github.com/google/go-cmp/cmp"
)

type fakeRegistry struct {
	pulled []string
	err    error
}

func (f *fakeRegistry) Search(_ context.Context, term string, limit int) ([]registry.SearchResult, error) {
	return []registry.SearchResult{{Name: term}}, f.err
}

func (f *fakeRegistry) Pull(_ context.Context, ref image.Reference) (string, error) {
	f.pulled = append(f.pulled, ref.String())
	if f.err != nil {
		return "", f.err
	}
	return "sha256:abc", nil
}

func (f *fakeRegistry) Images(context.Context) ([]registry.Image, error) {
	return nil, f.err
}

type fakeProvisioner struct {
	names []provision.ContainerName
	err   error
}

func (f *fakeProvisioner) CreateContainer(_ context.Context, ref image.Reference, name provision.ContainerName) (provision.ContainerID, error) {
	f.names = append(f.names, name)
	if f.err != nil {
		return "", f.err
	}
	return "4f2a9c", nil
}

func (f *fakeProvisioner) ListContainers(context.Context) ([]provision.ContainerRecord, error) {
	return []provision.ContainerRecord{}, f.err
}

type fakeCredentials struct {
	paths   []string
	created bool
	err     error
}

func (f *fakeCredentials) EnsureSSHKeyPair(_ context.Context, path string) (credential.SSHKeyPair, error) {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return credential.SSHKeyPair{}, f.err
	}
	pair := credential.SSHKeyPair{PrivatePath: path, PublicPath: path + ".pub", Created: f.created}
	if f.created {
		pair.Fingerprint = "SHA256:test"
	}
	return pair, nil
}

func (f *fakeCredentials) Encrypt(plaintext string) ([]byte, error) {
	return []byte("sealed:" + plaintext), nil
}

func (f *fakeCredentials) Decrypt(ciphertext []byte) (string, error) {
	s, ok := strings.CutPrefix(string(ciphertext), "sealed:")
	if !ok {
		return "", &credential.AuthenticationError{Reason: "bad"}
	}
	return s, nil
}

func newService() (*Service, *fakeRegistry, *fakeProvisioner, *fakeCredentials) {
	reg, prov, creds := &fakeRegistry{}, &fakeProvisioner{}, &fakeCredentials{}
	return New(reg, prov, creds, "/home/op/.ssh/id_rsa"), reg, prov, creds
}

func TestPull(t *testing.T) {
	svc, reg, _, _ := newService()

	msg, err := svc.Pull(context.Background(), "ubuntu:latest")
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if msg != "Image ubuntu:latest pulled successfully (sha256:abc)." {
		t.Errorf("Pull() message = %q", msg)
	}
	if diff := cmp.Diff([]string{"ubuntu:latest"}, reg.pulled); diff != "" {
		t.Errorf("pulled mismatch (-want +got):\n%s", diff)
	}
}

func TestPullRejectsInvalidReference(t *testing.T) {
	svc, reg, _, _ := newService()

	_, err := svc.Pull(context.Background(), "x; rm -rf /")
	if !errors.Is(err, image.ErrInvalidReference) {
		t.Fatalf("Pull() error = %v, want ErrInvalidReference", err)
	}
	if len(reg.pulled) != 0 {
		t.Error("registry invoked for an invalid reference")
	}
}

func TestPullPropagatesExecutionError(t *testing.T) {
	svc, reg, _, _ := newService()
	reg.err = &command.ExecutionError{Program: "podman", Args: []string{"pull"}, ExitCode: 125, Stderr: "manifest unknown"}

	_, err := svc.Pull(context.Background(), "ubuntu:nope")

	var execErr *command.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Pull() error = %v, want *command.ExecutionError", err)
	}
	if execErr.Reason() != "manifest unknown" {
		t.Errorf("Reason() = %q", execErr.Reason())
	}
}

func TestProvisionDerivesName(t *testing.T) {
	svc, _, prov, _ := newService()

	got, err := svc.Provision(context.Background(), "ubuntu:latest", "")
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}

	want := Provisioned{
		ID:      "4f2a9c",
		Name:    "container_ubuntu_latest",
		Image:   "ubuntu:latest",
		Message: "Container 'container_ubuntu_latest' with ID 4f2a9c created from image ubuntu:latest.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Provision() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]provision.ContainerName{"container_ubuntu_latest"}, prov.names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestProvisionExplicitName(t *testing.T) {
	svc, _, prov, _ := newService()

	got, err := svc.Provision(context.Background(), "nginx", "web")
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if got.Name != "web" || prov.names[0] != "web" {
		t.Errorf("Provision() name = %q, provisioner saw %q; want web", got.Name, prov.names[0])
	}
}

func TestProvisionPropagatesFailure(t *testing.T) {
	svc, _, prov, _ := newService()
	prov.err = &provision.ProvisioningError{Image: "ubuntu", Name: "container_ubuntu", Cause: errors.New("name in use")}

	_, err := svc.Provision(context.Background(), "ubuntu", "")
	if !errors.Is(err, provision.ErrProvisioning) {
		t.Fatalf("Provision() error = %v, want ErrProvisioning", err)
	}
}

func TestSetupAccess(t *testing.T) {
	tests := []struct {
		name    string
		created bool
		want    string
	}{
		{"generated", true, "SSH key generated at /home/op/.ssh/id_rsa for container c1 (SHA256:test)."},
		{"existing", false, "SSH key already exists at /home/op/.ssh/id_rsa; using it for container c1."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, creds := newService()
			creds.created = tt.created

			got, err := svc.SetupAccess(context.Background(), "c1")
			if err != nil {
				t.Fatalf("SetupAccess() error = %v", err)
			}
			if got.Message != tt.want {
				t.Errorf("message = %q, want %q", got.Message, tt.want)
			}
			if got.ContainerID != "c1" || got.KeyPair.Created != tt.created {
				t.Errorf("SetupAccess() = %+v", got)
			}
		})
	}
}

func TestSetupAccessSharesOneKeyPair(t *testing.T) {
	svc, _, _, creds := newService()

	for _, id := range []string{"c1", "c2"} {
		if _, err := svc.SetupAccess(context.Background(), id); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff([]string{"/home/op/.ssh/id_rsa", "/home/op/.ssh/id_rsa"}, creds.paths); diff != "" {
		t.Errorf("key paths mismatch (-want +got):\n%s", diff)
	}
}

func TestSetupAccessRequiresContainer(t *testing.T) {
	svc, _, _, creds := newService()

	if _, err := svc.SetupAccess(context.Background(), "  "); !errors.Is(err, ErrContainerRequired) {
		t.Fatalf("SetupAccess() error = %v, want ErrContainerRequired", err)
	}
	if len(creds.paths) != 0 {
		t.Error("credentials invoked without a container")
	}
}

func TestEncryptDecryptPassThrough(t *testing.T) {
	svc, _, _, _ := newService()

	ct, err := svc.Encrypt("hello")
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.Decrypt(ct)
	if err != nil || got != "hello" {
		t.Fatalf("Decrypt() = %q, %v", got, err)
	}

	if _, err := svc.Decrypt([]byte("junk")); !errors.Is(err, credential.ErrAuthentication) {
		t.Fatalf("Decrypt(junk) error = %v, want ErrAuthentication", err)
	}
}

func TestContainersEmpty(t *testing.T) {
	svc, _, _, _ := newService()

	got, err := svc.Containers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("Containers() = %#v, want empty slice", got)
	}
}
