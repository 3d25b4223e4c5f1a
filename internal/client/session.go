// Package client ties the connection, the room handshake, the phase machine,
// the entity engine and the input debouncer into one session.
//
// All mutation happens on the goroutine running the session loop. Renderers
// read immutable snapshots through Snapshot and feed user actions through
// Input.
package client

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/arena/internal/conn"
	"github.com/vovakirdan/arena/internal/core"
	"github.com/vovakirdan/arena/internal/handshake"
	"github.com/vovakirdan/arena/internal/input"
	"github.com/vovakirdan/arena/internal/perspective"
	"github.com/vovakirdan/arena/internal/phase"
	"github.com/vovakirdan/arena/internal/protocol"
	"github.com/vovakirdan/arena/internal/signal"
	"github.com/vovakirdan/arena/internal/state"
	"github.com/vovakirdan/arena/internal/storage"
)

// Manager is the connection the session drives. *conn.Manager implements it.
type Manager interface {
	Run(ctx context.Context) error
	Events() <-chan conn.Event
	Status() conn.Status
	SendMessage(protocol.ClientMessage) error
	Close()
}

// MatchSaver persists finished matches. *storage.Store implements it.
type MatchSaver interface {
	SaveMatch(storage.MatchRecord) (int64, error)
}

// Options configures a Session.
type Options struct {
	Manager   Manager
	Intent    handshake.Intent
	SessionID string

	// Canvas is the world size; protocol.CanvasSize when zero.
	Canvas float64
	// Sink receives gameplay signals. Nil discards them.
	Sink signal.Sink
	// Store records game-over summaries. Nil disables history.
	Store MatchSaver
	// InputBuffer bounds the queue between the UI and the loop.
	InputBuffer int

	Logger *log.Logger
}

// View is an immutable picture of the session for the renderer.
type View struct {
	Status    conn.Status
	StatusErr error

	Phase     phase.Phase
	Roster    []phase.RosterEntry
	Countdown int
	Summary   phase.Summary
	Over      bool

	Route     handshake.Route
	RoomCode  string
	Rejected  bool
	Rejection string

	LocalSeat   core.Seat
	Ready       bool
	Active      bool
	State       state.Snapshot
	Perspective perspective.View

	// Version increases with every applied event.
	Version uint64
}

// Session is one player's connection to one room.
type Session struct {
	mgr       Manager
	sessionID string
	canvas    float64
	store     MatchSaver
	logger    *log.Logger

	// loop-owned
	engine    *state.Engine
	phase     *phase.Machine
	handshake *handshake.Controller
	debouncer *input.Debouncer
	status    conn.Status
	statusErr error
	saved     bool

	inputs  chan InputEvent
	changed chan struct{}
	done    chan struct{}
	once    sync.Once

	mu   sync.RWMutex
	view View
}

// New creates a session. Nothing is dialed until Run.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	canvas := opts.Canvas
	if canvas <= 0 {
		canvas = protocol.CanvasSize
	}
	buf := opts.InputBuffer
	if buf < 1 {
		buf = 64
	}

	s := &Session{
		mgr:       opts.Manager,
		sessionID: opts.SessionID,
		canvas:    canvas,
		store:     opts.Store,
		logger:    logger,
		engine:    state.NewEngine(opts.Sink, logger),
		phase:     phase.New(),
		handshake: handshake.NewController(opts.Intent, opts.SessionID, opts.Manager, logger),
		debouncer: input.NewDebouncer(opts.Manager, logger),
		status:    conn.StatusClosed,
		inputs:    make(chan InputEvent, buf),
		changed:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	s.publish()
	return s
}

// Run drives the connection and the event loop until ctx is cancelled or
// Leave is called.
func (s *Session) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.mgr.Run(ctx)
	})
	g.Go(func() error {
		s.loop(ctx)
		return nil
	})
	return g.Wait()
}

func (s *Session) loop(ctx context.Context) {
	events := s.mgr.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			s.handleConn(e)
		case in := <-s.inputs:
			s.handleInput(in)
		}
		s.recompute()
		s.publish()
	}
}

// Input queues a user action. It never blocks; when the queue is full the
// oldest action is dropped.
func (s *Session) Input(evt InputEvent) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.inputs <- evt:
	default:
		select {
		case <-s.inputs:
		default:
		}
		select {
		case s.inputs <- evt:
		default:
		}
	}
}

// Changed fires after the view changes. Notifications coalesce.
func (s *Session) Changed() <-chan struct{} {
	return s.changed
}

// Done closes when the session has been left.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Snapshot returns the latest view.
func (s *Session) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Leave closes the connection and discards all state. Safe to call more
// than once.
func (s *Session) Leave() {
	s.once.Do(func() {
		s.mu.Lock()
		close(s.done)
		s.view = View{
			Status:      conn.StatusClosed,
			LocalSeat:   core.NoSeat,
			Perspective: perspective.NewView(core.NoSeat, s.canvas),
			Version:     s.view.Version + 1,
		}
		s.mu.Unlock()
		s.mgr.Close()
		s.notify()
	})
}

func (s *Session) handleConn(e conn.Event) {
	switch e := e.(type) {
	case conn.StatusChanged:
		s.handleStatus(e.Status, e.Err)
	case conn.Frame:
		msg, err := protocol.Decode(e.Data)
		if err != nil {
			s.logger.Warn("bad message", "error", err)
		}
		if msg != nil {
			s.handleMessage(msg)
		}
	}
}

func (s *Session) handleStatus(st conn.Status, err error) {
	prev := s.status
	s.status = st
	s.statusErr = err

	if prev == conn.StatusOpen && st != conn.StatusOpen {
		s.logger.Info("connection left open state, discarding match state", "status", st)
		s.engine.Reset()
		s.phase.Reset()
		s.saved = false
	}
	// drop activity before re-arming so no intent races the new handshake
	s.recompute()

	if _, err := s.handshake.OnStatus(st); err != nil {
		s.logger.Warn("room request failed", "error", err)
	}
}

func (s *Session) handleMessage(msg protocol.ServerMessage) {
	switch m := msg.(type) {
	case protocol.PlayerAssignment:
		s.assign(m.Seat())
	case protocol.InitialState:
		if s.phase.Over() {
			return
		}
		s.phase.HandlePlaying()
		res := s.engine.ApplyInitial(m)
		s.logger.Debug("initial state", "applied", res.Applied, "skipped", res.Skipped)
	case protocol.GameUpdates:
		if s.phase.Over() {
			s.logger.Debug("update batch after game over ignored", "updates", len(m.Updates))
			return
		}
		s.phase.HandlePlaying()
		s.engine.ApplyBatch(m.Updates)
	case protocol.LobbyState:
		if !s.phase.HandleRoster(phase.RosterFromWire(m)) {
			s.logger.Debug("roster ignored", "phase", s.phase.Phase())
		}
	case protocol.Countdown:
		s.phase.HandleCountdown(m.Seconds)
	case protocol.GameStart:
		s.phase.HandlePlaying()
	case protocol.GameOver:
		summary := phase.SummaryFromWire(m)
		if s.phase.HandleGameOver(summary) {
			s.logger.Info("game over", "winner", summary.Winner, "reason", summary.Reason)
			s.save(summary)
		}
	case protocol.RoomCreated:
		s.handshake.HandleRoomCreated(m)
	case protocol.RoomJoined:
		s.handshake.HandleRoomJoined(m)
	}
}

func (s *Session) assign(seat core.Seat) {
	if !seat.Valid() && seat != core.NoSeat {
		s.logger.Warn("ignoring seat assignment out of range", "seat", int(seat))
		return
	}
	prev := s.engine.LocalSeat()
	if seat == prev {
		return
	}
	if prev.Valid() {
		s.logger.Info("seat changed, discarding match state", "from", prev, "to", seat)
		s.engine.Reset()
		s.phase.Reset()
		s.saved = false
	}
	s.engine.SetLocalSeat(seat)
	s.debouncer.SetSeat(seat)
	s.logger.Info("seat assigned", "seat", seat)
}

func (s *Session) handleInput(in InputEvent) {
	switch in := in.(type) {
	case KeyPressed:
		s.debouncer.Press(in.Dir)
	case KeyReleased:
		s.debouncer.Release(in.Dir)
	case PointerMoved:
		s.debouncer.Point(in.Dir)
	case ReadyToggled:
		seat := s.engine.LocalSeat()
		if s.phase.Phase() != phase.Lobby || !seat.Valid() || s.status != conn.StatusOpen {
			return
		}
		if err := s.mgr.SendMessage(s.phase.ReadyIntent(seat)); err != nil {
			s.logger.Warn("ready not sent", "error", err)
		}
	}
}

// recompute pushes gameplay activity into the debouncer.
func (s *Session) recompute() {
	active := s.phase.Phase() == phase.Playing && s.status == conn.StatusOpen && !s.phase.Over()
	s.debouncer.SetActive(active)
}

func (s *Session) save(summary phase.Summary) {
	if s.store == nil || s.saved {
		return
	}
	s.saved = true
	rec := storage.MatchRecord{
		RoomCode:  s.handshake.Code(),
		SessionID: s.sessionID,
		LocalSeat: s.engine.LocalSeat(),
		Winner:    summary.Winner,
		Scores:    summary.Scores,
		Reason:    summary.Reason,
		CreatedAt: time.Now(),
	}
	if _, err := s.store.SaveMatch(rec); err != nil {
		s.logger.Warn("match not saved", "error", err)
	}
}

// publish rebuilds the view from loop-owned state.
func (s *Session) publish() {
	seat := s.engine.LocalSeat()
	countdown, _ := s.phase.Countdown()
	summary, over := s.phase.Summary()
	reason, rejected := s.handshake.Rejected()

	v := View{
		Status:      s.status,
		StatusErr:   s.statusErr,
		Phase:       s.phase.Phase(),
		Roster:      s.phase.Roster(),
		Countdown:   countdown,
		Summary:     summary,
		Over:        over,
		Route:       s.handshake.Intent().Route,
		RoomCode:    s.handshake.Code(),
		Rejected:    rejected,
		Rejection:   reason,
		LocalSeat:   seat,
		Ready:       s.phase.LocalReady(seat),
		Active:      s.debouncer.Active(),
		State:       s.engine.Snapshot(),
		Perspective: perspective.NewView(seat, s.canvas),
	}

	s.mu.Lock()
	select {
	case <-s.done:
		// Leave already published the cleared view
		s.mu.Unlock()
		return
	default:
	}
	v.Version = s.view.Version + 1
	s.view = v
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
