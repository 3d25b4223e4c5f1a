package signal

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Sink consumes signals. Emit must not block the caller for long.
type Sink interface {
	Emit(Signal)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Signal)

// Emit calls f(s).
func (f SinkFunc) Emit(s Signal) { f(s) }

// Discard drops every signal.
var Discard Sink = SinkFunc(func(Signal) {})

type safeSink struct {
	next   Sink
	logger *log.Logger
}

// Safe wraps a sink so that a panicking consumer cannot disturb the caller.
// Recovered panics are logged when logger is non-nil.
func Safe(next Sink, logger *log.Logger) Sink {
	return safeSink{next: next, logger: logger}
}

func (s safeSink) Emit(sig Signal) {
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.Warn("signal sink panicked", "signal", sig.Kind, "panic", r)
		}
	}()
	s.next.Emit(sig)
}

// Multi fans a signal out to every sink in order.
type Multi []Sink

// Emit forwards s to every sink.
func (m Multi) Emit(s Signal) {
	for _, sink := range m {
		sink.Emit(s)
	}
}

// ChannelSink delivers signals over a buffered channel.
// When the buffer is full the signal is dropped.
type ChannelSink struct {
	ch      chan Signal
	dropped int
	mu      sync.Mutex
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(size int) *ChannelSink {
	if size < 1 {
		size = 32 // Default buffer size
	}
	return &ChannelSink{ch: make(chan Signal, size)}
}

// Emit enqueues s without blocking.
func (c *ChannelSink) Emit(s Signal) {
	select {
	case c.ch <- s:
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
	}
}

// C returns the receive side of the channel.
func (c *ChannelSink) C() <-chan Signal {
	return c.ch
}

// Dropped returns how many signals were discarded on a full buffer.
func (c *ChannelSink) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// LogSink writes every signal at debug level.
type LogSink struct {
	Logger *log.Logger
}

// Emit logs s.
func (l LogSink) Emit(s Signal) {
	l.Logger.Debug("signal", "kind", s.Kind, "seat", s.Seat, "ball", s.BallID, "x", s.X, "y", s.Y)
}

// Recorder keeps every signal it receives. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	signals []Signal
}

// Emit records s.
func (r *Recorder) Emit(s Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, s)
}

// Signals returns a copy of everything recorded so far.
func (r *Recorder) Signals() []Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Signal, len(r.signals))
	copy(out, r.signals)
	return out
}

// Count returns how many recorded signals have the given kind.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.signals {
		if s.Kind == k {
			n++
		}
	}
	return n
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = nil
}
