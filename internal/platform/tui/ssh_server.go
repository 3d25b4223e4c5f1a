package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/arena/internal/handshake"
)

// sshNamespace scopes session ids derived from SSH identities.
var sshNamespace = uuid.MustParse("6f0c2a52-3b8e-4f43-9a57-0c8e3cf1d7a4")

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":2222").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.arena/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// MaxSessions caps concurrent players; zero means unlimited.
	MaxSessions int

	// Bell rings the client's terminal on brick breaks and lost balls.
	Bell bool

	// Model carries the renderer settings for every session.
	Model ModelOptions
}

// SessionFactory returns the Starter for one SSH connection. ctx ends when
// the connection closes; sessionID is stable for the connecting identity.
type SessionFactory func(ctx context.Context, sessionID string, logger *log.Logger) Starter

// SSHServer wraps a Wish SSH server for the arena.
type SSHServer struct {
	config  SSHServerConfig
	server  *ssh.Server
	factory SessionFactory
	logger  *log.Logger
	active  atomic.Int64
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, factory SessionFactory, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "arena-ssh",
		})
	}

	srv := &SSHServer{
		config:  cfg,
		factory: factory,
		logger:  logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".arena", "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	// Middlewares run last to first
	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.limitMiddleware,
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program with its own client session for
// each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		wish.Fatalln(sshSession, "arena needs a terminal: connect with ssh -t")
		return nil, nil
	}

	preset, err := ParseCommand(sshSession.Command())
	if err != nil {
		wish.Fatalln(sshSession, err.Error())
		return nil, nil
	}

	id := SessionIdentity(sshSession)
	logger := s.logger.With("user", sshSession.User(), "session", id)

	opts := s.config.Model
	opts.Width = pty.Window.Width
	opts.Height = pty.Window.Height
	opts.Bell = nil
	if s.config.Bell {
		opts.Bell = sshSession
	}

	start := s.factory(sshSession.Context(), id, logger)
	model, err := NewAppModel(start, opts, preset)
	if err != nil {
		logger.Error("cannot start session", "error", err)
		wish.Fatalln(sshSession, err.Error())
		return nil, nil
	}

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// ParseCommand reads the route from the SSH command line:
// none or "quick" for a quick match, "create [public]" or "join CODE".
func ParseCommand(args []string) (*handshake.Intent, error) {
	if len(args) == 0 {
		return nil, nil
	}

	var (
		intent handshake.Intent
		err    error
	)
	switch strings.ToLower(args[0]) {
	case "quick", "quickmatch", "quick-match":
		intent, err = handshake.ParseIntent(handshake.RouteQuickMatch, false, "")
	case "create":
		public := len(args) > 1 && strings.EqualFold(args[1], "public")
		intent, err = handshake.ParseIntent(handshake.RouteCreate, public, "")
	case "join":
		code := ""
		if len(args) > 1 {
			code = args[1]
		}
		intent, err = handshake.ParseIntent(handshake.RouteJoin, false, code)
	default:
		return nil, fmt.Errorf("unknown command %q: use quick, create [public] or join CODE", args[0])
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// SessionIdentity derives a stable session id from the client's public key,
// falling back to the user name for keyless logins.
func SessionIdentity(sshSession ssh.Session) string {
	if key := sshSession.PublicKey(); key != nil {
		return uuid.NewSHA1(sshNamespace, key.Marshal()).String()
	}
	return uuid.NewSHA1(sshNamespace, []byte("user:"+sshSession.User())).String()
}

// limitMiddleware rejects sessions beyond MaxSessions.
func (s *SSHServer) limitMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		n := s.active.Add(1)
		defer s.active.Add(-1)
		if s.config.MaxSessions > 0 && n > int64(s.config.MaxSessions) {
			s.logger.Warn("session rejected, server full", "user", sshSession.User(), "active", n-1)
			wish.Fatalln(sshSession, "arena is full, try again later")
			return
		}
		next(sshSession)
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"command", sshSession.Command(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until ctx is done.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ssh server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// ActiveSessions returns the number of connected sessions.
func (s *SSHServer) ActiveSessions() int {
	return int(s.active.Load())
}
