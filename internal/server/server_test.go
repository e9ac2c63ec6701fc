package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cruciblehq/podsmith/internal/command"
	"github.com/cruciblehq/podsmith/internal/credential"
	"github.com/cruciblehq/podsmith/internal/image"
	"github.com/cruciblehq/podsmith/internal/orchestrate"
	"github.com/cruciblehq/podsmith/internal/protocol"
	"github.com/cruciblehq/podsmith/internal/provision"
	"github.com/cruciblehq/podsmith/internal/registry"
	"github.com/google/go-cmp/cmp"
)

type fakeService struct {
	err error
}

func (f *fakeService) Pull(_ context.Context, img string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "Image " + img + " pulled successfully.", nil
}

func (f *fakeService) Provision(_ context.Context, img, name string) (orchestrate.Provisioned, error) {
	if f.err != nil {
		return orchestrate.Provisioned{}, f.err
	}
	return orchestrate.Provisioned{ID: "abc123", Name: provision.ContainerName(name), Image: img, Message: "created"}, nil
}

func (f *fakeService) SetupAccess(_ context.Context, id string) (orchestrate.Access, error) {
	if f.err != nil {
		return orchestrate.Access{}, f.err
	}
	return orchestrate.Access{
		ContainerID: id,
		KeyPair:     credential.SSHKeyPair{PrivatePath: "/k", PublicPath: "/k.pub", Created: true, Fingerprint: "SHA256:x"},
		Message:     "generated",
	}, nil
}

func (f *fakeService) Search(_ context.Context, term string, limit int) ([]registry.SearchResult, error) {
	return []registry.SearchResult{{Name: term, Stars: limit}}, f.err
}

func (f *fakeService) Images(context.Context) ([]registry.Image, error) {
	return []registry.Image{{ID: "e5f6", References: []string{"alpine:3"}, Size: 7}}, f.err
}

func (f *fakeService) Containers(context.Context) ([]provision.ContainerRecord, error) {
	return nil, f.err
}

// Starts a server on a short temporary socket path and returns a client for
// it. Unix socket paths are length-limited, so t.TempDir is not used.
func startServer(t *testing.T, svc Service) (*Server, *Client) {
	t.Helper()

	dir, err := os.MkdirTemp("", "psd")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	srv := New(svc, Config{
		SocketPath: filepath.Join(dir, "d.sock"),
		PIDFile:    filepath.Join(dir, "d.pid"),
	})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return srv, NewClient(srv.SocketPath())
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClientVerbs(t *testing.T) {
	_, c := startServer(t, &fakeService{})
	ctx := testContext(t)

	msg, err := c.Pull(ctx, "ubuntu:latest")
	if err != nil || msg != "Image ubuntu:latest pulled successfully." {
		t.Fatalf("Pull() = %q, %v", msg, err)
	}

	prov, err := c.Provision(ctx, "ubuntu:latest", "dev")
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	wantProv := orchestrate.Provisioned{ID: "abc123", Name: "dev", Image: "ubuntu:latest", Message: "created"}
	if diff := cmp.Diff(wantProv, prov); diff != "" {
		t.Errorf("Provision() mismatch (-want +got):\n%s", diff)
	}

	access, err := c.SetupAccess(ctx, "abc123")
	if err != nil {
		t.Fatalf("SetupAccess() error = %v", err)
	}
	if access.ContainerID != "abc123" || !access.KeyPair.Created || access.KeyPair.Fingerprint != "SHA256:x" {
		t.Errorf("SetupAccess() = %+v", access)
	}

	results, err := c.Search(ctx, "nginx", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if diff := cmp.Diff([]registry.SearchResult{{Name: "nginx", Stars: 3}}, results); diff != "" {
		t.Errorf("Search() mismatch (-want +got):\n%s", diff)
	}

	images, err := c.Images(ctx)
	if err != nil {
		t.Fatalf("Images() error = %v", err)
	}
	if diff := cmp.Diff([]registry.Image{{ID: "e5f6", References: []string{"alpine:3"}, Size: 7}}, images); diff != "" {
		t.Errorf("Images() mismatch (-want +got):\n%s", diff)
	}

	ctrs, err := c.Containers(ctx)
	if err != nil {
		t.Fatalf("Containers() error = %v", err)
	}
	if ctrs == nil || len(ctrs) != 0 {
		t.Errorf("Containers() = %#v, want empty slice", ctrs)
	}
}

func TestClientStatusCountsRequests(t *testing.T) {
	_, c := startServer(t, &fakeService{})
	ctx := testContext(t)

	if _, err := c.Pull(ctx, "alpine"); err != nil {
		t.Fatal(err)
	}

	st, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !st.Running || st.Pid != os.Getpid() || st.Version == "" {
		t.Errorf("Status() = %+v", st)
	}
	if st.Requests != 2 {
		t.Errorf("Requests = %d, want 2", st.Requests)
	}
}

func TestRemoteErrorKeepsClass(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "provisioning",
			err: &provision.ProvisioningError{
				Image: "ubuntu",
				Name:  "container_ubuntu",
				Cause: &command.ExecutionError{Program: "podman", Args: []string{"container", "create"}, ExitCode: 125, Stderr: "name is already in use"},
			},
			want: provision.ErrProvisioning,
		},
		{"execution", &command.ExecutionError{Program: "podman", Args: []string{"pull"}, ExitCode: 125}, command.ErrExecution},
		{"invalid reference", &image.InvalidReferenceError{Value: "x;y", Reason: "shell metacharacter"}, image.ErrInvalidReference},
		{"key generation", &credential.KeyGenerationError{Path: "/k", Cause: errors.New("boom")}, credential.ErrKeyGeneration},
		{"container required", orchestrate.ErrContainerRequired, orchestrate.ErrContainerRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := startServer(t, &fakeService{err: tt.err})

			_, err := c.Pull(testContext(t), "ubuntu")

			var remote *RemoteError
			if !errors.As(err, &remote) {
				t.Fatalf("Pull() error = %v, want *RemoteError", err)
			}
			if !errors.Is(err, tt.want) || !errors.Is(err, ErrRemote) {
				t.Errorf("error %v (kind %q) should match %v and ErrRemote", err, remote.Kind, tt.want)
			}
			if remote.Message != tt.err.Error() {
				t.Errorf("Message = %q, want %q", remote.Message, tt.err.Error())
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	srv, _ := startServer(t, &fakeService{})

	conn, err := net.Dial("unix", srv.SocketPath())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(`{"command":"explode"}` + "\n")); err != nil {
		t.Fatal(err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		t.Fatal(err)
	}

	env, payload, err := protocol.Decode(line)
	if err != nil {
		t.Fatal(err)
	}
	if env.Command != protocol.CmdError {
		t.Fatalf("reply command = %q, want error", env.Command)
	}
	res, err := protocol.DecodePayload[protocol.ErrorResult](payload)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Message, "unknown command: explode") {
		t.Errorf("Message = %q", res.Message)
	}
}

func TestMalformedRequest(t *testing.T) {
	srv, _ := startServer(t, &fakeService{})

	conn, err := net.Dial("unix", srv.SocketPath())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	conn.Write([]byte("not json\n"))

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		t.Fatal(err)
	}
	env, payload, _ := protocol.Decode(line)
	res, _ := protocol.DecodePayload[protocol.ErrorResult](payload)
	if env.Command != protocol.CmdError || res.Kind != "malformed" {
		t.Fatalf("reply = %s, want malformed error", line)
	}
}

// Blocks Provision until released, so a request can be held in flight.
type blockingService struct {
	fakeService
	entered chan struct{}
	release chan struct{}
}

func (b *blockingService) Provision(ctx context.Context, img, name string) (orchestrate.Provisioned, error) {
	close(b.entered)
	<-b.release
	return b.fakeService.Provision(ctx, img, name)
}

func TestStopWaitsForInFlightRequests(t *testing.T) {
	svc := &blockingService{entered: make(chan struct{}), release: make(chan struct{})}
	srv, c := startServer(t, svc)

	ctx := testContext(t)
	provisioned := make(chan error, 1)
	go func() {
		_, err := c.Provision(ctx, "ubuntu:latest", "dev")
		provisioned <- err
	}()

	select {
	case <-svc.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the service")
	}

	stopped := make(chan struct{})
	go func() {
		srv.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop() returned while a request was in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(svc.release)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() did not return after the request finished")
	}
	if err := <-provisioned; err != nil {
		t.Fatalf("Provision() error = %v, want the in-flight request to complete", err)
	}
}

func TestShutdown(t *testing.T) {
	srv, c := startServer(t, &fakeService{})

	pid, err := os.ReadFile(srv.pidFile)
	if err != nil {
		t.Fatalf("PID file missing: %v", err)
	}
	if string(pid) != strconv.Itoa(os.Getpid()) {
		t.Errorf("PID file = %q, want %d", pid, os.Getpid())
	}

	if err := c.Shutdown(testContext(t)); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		srv.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after shutdown")
	}

	if _, err := os.Stat(srv.SocketPath()); !os.IsNotExist(err) {
		t.Errorf("socket still present after shutdown: %v", err)
	}
	if _, err := os.Stat(srv.pidFile); !os.IsNotExist(err) {
		t.Errorf("PID file still present after shutdown: %v", err)
	}
}

func TestClientNoDaemon(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "absent.sock"))

	if _, err := c.Status(testContext(t)); !errors.Is(err, ErrServer) {
		t.Fatalf("Status() error = %v, want ErrServer", err)
	}
}
