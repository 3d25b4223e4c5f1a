package conn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/arena/internal/protocol"
)

var (
	// ErrNotOpen is returned by Send while no connection is open.
	ErrNotOpen = errors.New("conn: connection not open")
	// ErrQueueFull is returned by Send when the outbound queue is saturated.
	ErrQueueFull = errors.New("conn: send queue full")
)

// Config configures a Manager.
type Config struct {
	URL           string
	RetryInterval time.Duration // fixed delay between attempts
	WriteTimeout  time.Duration
	EventBuffer   int
	SendBuffer    int
}

// DefaultConfig returns sensible defaults for url.
func DefaultConfig(url string) Config {
	return Config{
		URL:           url,
		RetryInterval: 2 * time.Second,
		WriteTimeout:  3 * time.Second,
		EventBuffer:   64,
		SendBuffer:    16,
	}
}

// Manager maintains at most one connection and reconnects it forever.
type Manager struct {
	cfg    Config
	dialer Dialer
	logger *log.Logger
	events chan Event

	mu     sync.Mutex
	status Status
	out    chan []byte // outbound queue of the current connection
	cancel context.CancelFunc
	closed bool
}

// NewManager creates a Manager. Nothing is dialed until Run.
func NewManager(cfg Config, dialer Dialer, logger *log.Logger) *Manager {
	def := DefaultConfig(cfg.URL)
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = def.RetryInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.EventBuffer < 1 {
		cfg.EventBuffer = def.EventBuffer
	}
	if cfg.SendBuffer < 1 {
		cfg.SendBuffer = def.SendBuffer
	}
	if dialer == nil {
		dialer = WebsocketDialer{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{
		cfg:    cfg,
		dialer: dialer,
		logger: logger,
		events: make(chan Event, cfg.EventBuffer),
		status: StatusClosed,
	}
}

// Events returns the event stream. It is closed when Run returns.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Status returns the current status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Run dials and serves connections until ctx is cancelled or Close is
// called. Attempts are strictly sequential with a fixed delay between them.
func (m *Manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	if m.closed {
		cancel()
	}
	m.cancel = cancel
	m.mu.Unlock()
	defer close(m.events)
	defer func() {
		cancel()
		m.mu.Lock()
		m.status = StatusClosed
		m.mu.Unlock()
	}()

	for {
		m.setStatus(ctx, StatusConnecting, nil)
		c, err := m.dialer.Dial(ctx, m.cfg.URL)
		if err != nil {
			if ctx.Err() != nil {
				m.setStatus(ctx, StatusClosed, nil)
				return nil
			}
			m.logger.Warn("dial failed", "url", m.cfg.URL, "error", err)
			m.setStatus(ctx, StatusError, err)
		} else {
			err = m.serve(ctx, c)
			if ctx.Err() != nil {
				return nil
			}
			m.logger.Warn("connection lost", "error", err)
		}

		if !sleepCtx(ctx, m.cfg.RetryInterval) {
			return nil
		}
	}
}

// Close tears the connection down and stops reconnecting.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Send queues one frame on the open connection. It fails with ErrNotOpen
// instead of dropping the frame silently.
func (m *Manager) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusOpen || m.out == nil {
		return ErrNotOpen
	}
	select {
	case m.out <- data:
		return nil
	default:
		return ErrQueueFull
	}
}

// SendMessage encodes and queues an outbound message.
func (m *Manager) SendMessage(msg protocol.ClientMessage) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return m.Send(data)
}

// serve runs one connection until it fails or ctx ends.
func (m *Manager) serve(ctx context.Context, c Conn) error {
	out := make(chan []byte, m.cfg.SendBuffer)

	m.mu.Lock()
	m.out = out
	m.mu.Unlock()
	m.logger.Info("connected", "url", m.cfg.URL)
	m.setStatus(ctx, StatusOpen, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.readLoop(gctx, c) })
	g.Go(func() error { return m.writeLoop(gctx, c, out) })
	err := g.Wait()

	m.mu.Lock()
	m.out = nil
	m.status = StatusClosing
	m.mu.Unlock()

	if cerr := c.Close(); cerr != nil && !NormalClosure(cerr) {
		m.logger.Debug("close failed", "error", cerr)
	}
	if NormalClosure(err) || errors.Is(err, context.Canceled) {
		err = nil
	}
	m.setStatus(ctx, StatusClosed, err)
	return err
}

func (m *Manager) readLoop(ctx context.Context, c Conn) error {
	for {
		data, err := c.Read(ctx)
		if err != nil {
			return fmt.Errorf("conn: read: %w", err)
		}
		if !Plausible(data) {
			m.logger.Debug("dropping implausible frame", "bytes", len(data))
			continue
		}
		if !m.emit(ctx, Frame{Data: data}) {
			return ctx.Err()
		}
	}
}

func (m *Manager) writeLoop(ctx context.Context, c Conn, out <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data := <-out:
			wctx, cancel := context.WithTimeout(ctx, m.cfg.WriteTimeout)
			err := c.Write(wctx, data)
			cancel()
			if err != nil {
				return fmt.Errorf("conn: write: %w", err)
			}
		}
	}
}

// setStatus records s and publishes it. Publishing is skipped once ctx ends.
func (m *Manager) setStatus(ctx context.Context, s Status, err error) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	m.emit(ctx, StatusChanged{Status: s, Err: err})
}

// emit delivers an event in order, waiting for the consumer unless ctx ends.
func (m *Manager) emit(ctx context.Context, e Event) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case m.events <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

// Plausible is the cheap pre-parse filter: the trimmed payload must look
// like a JSON object.
func Plausible(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) >= 2 && data[0] == '{' && data[len(data)-1] == '}'
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
