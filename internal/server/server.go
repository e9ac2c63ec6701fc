package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cruciblehq/podsmith/internal"
	"github.com/cruciblehq/podsmith/internal/orchestrate"
	"github.com/cruciblehq/podsmith/internal/paths"
	"github.com/cruciblehq/podsmith/internal/protocol"
	"github.com/cruciblehq/podsmith/internal/provision"
	"github.com/cruciblehq/podsmith/internal/registry"
)

// Requests longer than this are cut off and fail to decode.
const maxRequestSize = 1 << 20

// Operations the daemon exposes. Implemented by [*orchestrate.Service].
type Service interface {
	Pull(ctx context.Context, image string) (string, error)
	Provision(ctx context.Context, image, name string) (orchestrate.Provisioned, error)
	SetupAccess(ctx context.Context, containerID string) (orchestrate.Access, error)
	Search(ctx context.Context, term string, limit int) ([]registry.SearchResult, error)
	Images(ctx context.Context) ([]registry.Image, error)
	Containers(ctx context.Context) ([]provision.ContainerRecord, error)
}

// Where the daemon publishes itself.
type Config struct {
	SocketPath string // Override for the Unix socket path. Empty uses [paths.Socket].
	PIDFile    string // Override for the PID file path. Empty uses [paths.PIDFile].
}

// Serves podsmith requests on a Unix socket, one exchange per connection.
type Server struct {
	socketPath string
	pidFile    string
	service    Service
	listener   net.Listener
	startedAt  time.Time
	requests   atomic.Int64  // Requests that decoded and were dispatched.
	handlers   sync.WaitGroup
	mu         sync.Mutex // Guards stopping and handlers.Add.
	stopping   bool
	done       chan struct{} // Closed once Stop has finished.
	stopOnce   sync.Once
}

// Prepares a server for svc. Empty paths in cfg fall back to the XDG runtime
// locations. Nothing is opened until [Server.Start].
func New(svc Service, cfg Config) *Server {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		socketPath = paths.Socket()
	}

	pidFile := cfg.PIDFile
	if pidFile == "" {
		pidFile = paths.PIDFile()
	}

	return &Server{
		socketPath: socketPath,
		pidFile:    pidFile,
		service:    svc,
		done:       make(chan struct{}),
	}
}

// Returns the socket path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Binds the socket, records the PID, and serves in the background.
//
// A PID file that cannot be written is logged and otherwise ignored.
func (s *Server) Start() error {
	ln, err := bindSocket(s.socketPath)
	if err != nil {
		return err
	}
	s.listener = ln
	s.startedAt = time.Now()

	if err := s.writePID(); err != nil {
		slog.Warn("pid file not written", "path", s.pidFile, "error", err)
	}
	slog.Info("daemon ready", "socket", s.socketPath, "pid", os.Getpid())

	go s.accept()
	return nil
}

// Stops accepting and waits for in-flight requests to finish, then removes
// the socket and PID files. Idempotent; concurrent callers all block until
// teardown is complete.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopping = true
		s.mu.Unlock()

		if s.listener != nil {
			s.listener.Close()
		}
		os.Remove(s.socketPath)

		s.handlers.Wait()

		os.Remove(s.pidFile)
		close(s.done)
	})
	return nil
}

// Returns once [Server.Stop] has finished.
func (s *Server) Wait() {
	<-s.done
}

func (s *Server) isStopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}

// Registers a handler unless the server is stopping.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return false
	}
	s.handlers.Add(1)
	return true
}

func (s *Server) accept() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isStopping() {
				return
			}
			slog.Error("accept failed", "error", err)
			continue
		}
		if !s.track() {
			conn.Close()
			return
		}
		go func() {
			defer s.handlers.Done()
			s.handle(conn)
		}()
	}
}

// Serves one request line and closes the connection.
//
// The handler context ends early if the client hangs up.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(io.LimitReader(conn, maxRequestSize))
	line, err := r.ReadBytes('\n')
	if err != nil {
		slog.Debug("request not read", "error", err)
		return
	}

	env, payload, err := protocol.Decode(line)
	if err != nil {
		s.fail(conn, err)
		return
	}
	s.requests.Add(1)
	slog.Info("request", "command", env.Command)

	ctx, cancel := cancelOnHangup(context.Background(), r)
	defer cancel()
	s.dispatch(ctx, conn, env.Command, payload)
}

func (s *Server) dispatch(ctx context.Context, conn net.Conn, cmd protocol.Command, payload json.RawMessage) {
	switch cmd {
	case protocol.CmdPull:
		s.handlePull(ctx, conn, payload)
	case protocol.CmdProvision:
		s.handleProvision(ctx, conn, payload)
	case protocol.CmdSetupAccess:
		s.handleSetupAccess(ctx, conn, payload)
	case protocol.CmdSearch:
		s.handleSearch(ctx, conn, payload)
	case protocol.CmdImages:
		s.handleImages(ctx, conn)
	case protocol.CmdContainers:
		s.handleContainers(ctx, conn)
	case protocol.CmdStatus:
		s.handleStatus(conn)
	case protocol.CmdShutdown:
		s.handleShutdown(conn)
	default:
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{
			Message: fmt.Sprintf("unknown command: %s", cmd),
		})
	}
}

// Sends one response line. Write errors mean the client is gone and are dropped.
func (s *Server) respond(conn net.Conn, cmd protocol.Command, payload any) {
	data, err := protocol.Encode(cmd, payload)
	if err != nil {
		slog.Error("response not encoded", "command", cmd, "error", err)
		return
	}
	conn.Write(append(data, '\n'))
}

// Reports err to the client along with its error class.
func (s *Server) fail(conn net.Conn, err error) {
	slog.Warn("command failed", "error", err)
	s.respond(conn, protocol.CmdError, &protocol.ErrorResult{
		Message: err.Error(),
		Kind:    errorKind(err),
	})
}

// Records the daemon's PID next to its socket.
func (s *Server) writePID() error {
	if err := os.MkdirAll(filepath.Dir(s.pidFile), paths.PrivateDirMode); err != nil {
		return err
	}
	return os.WriteFile(s.pidFile, []byte(strconv.Itoa(os.Getpid())), paths.DefaultFileMode)
}

func (s *Server) status() *protocol.StatusResult {
	return &protocol.StatusResult{
		Running:  true,
		Version:  internal.VersionString(),
		Pid:      os.Getpid(),
		Uptime:   time.Since(s.startedAt).Truncate(time.Second).String(),
		Requests: int(s.requests.Load()),
	}
}

// Derives a context that is cancelled when r hits EOF or an error.
//
// The client sends nothing after its request line, so any read result means
// it disconnected. Callers must not read r themselves afterwards and must
// always call the returned cancel.
func cancelOnHangup(parent context.Context, r io.Reader) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		var b [1]byte
		r.Read(b[:])
		cancel()
	}()
	return ctx, cancel
}
