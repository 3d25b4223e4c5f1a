package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/arena/internal/conn"
	"github.com/vovakirdan/arena/internal/core"
	"github.com/vovakirdan/arena/internal/handshake"
	"github.com/vovakirdan/arena/internal/phase"
	"github.com/vovakirdan/arena/internal/protocol"
	"github.com/vovakirdan/arena/internal/signal"
	"github.com/vovakirdan/arena/internal/storage"
)

type fakeManager struct {
	events chan conn.Event
	closed chan struct{}
	once   sync.Once

	mu     sync.Mutex
	status conn.Status
	sent   []protocol.ClientMessage
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		events: make(chan conn.Event, 16),
		closed: make(chan struct{}),
		status: conn.StatusClosed,
	}
}

func (f *fakeManager) Run(ctx context.Context) error {
	defer close(f.events)
	select {
	case <-ctx.Done():
	case <-f.closed:
	}
	return nil
}

func (f *fakeManager) Events() <-chan conn.Event { return f.events }

func (f *fakeManager) Status() conn.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeManager) SendMessage(m protocol.ClientMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != conn.StatusOpen {
		return conn.ErrNotOpen
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeManager) Close() {
	f.once.Do(func() { close(f.closed) })
}

func (f *fakeManager) setStatus(s conn.Status) {
	f.mu.Lock()
	f.status = s
	f.mu.Unlock()
}

func (f *fakeManager) messages() []protocol.ClientMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]protocol.ClientMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeManager) directions() []string {
	var out []string
	for _, m := range f.messages() {
		if d, ok := m.(protocol.DirectionIntent); ok {
			out = append(out, d.Direction)
		}
	}
	return out
}

type fakeStore struct {
	saved []storage.MatchRecord
	err   error
}

func (f *fakeStore) SaveMatch(m storage.MatchRecord) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, m)
	return int64(len(f.saved)), nil
}

type harness struct {
	s     *Session
	mgr   *fakeManager
	store *fakeStore
	rec   *signal.Recorder
}

func newHarness(intent handshake.Intent) *harness {
	mgr := newFakeManager()
	store := &fakeStore{}
	rec := &signal.Recorder{}
	s := New(Options{
		Manager:   mgr,
		Intent:    intent,
		SessionID: "sid",
		Sink:      rec,
		Store:     store,
	})
	return &harness{s: s, mgr: mgr, store: store, rec: rec}
}

// status drives a status change the way the loop does.
func (h *harness) status(st conn.Status) {
	h.mgr.setStatus(st)
	h.step(conn.StatusChanged{Status: st})
}

func (h *harness) frame(data string) {
	h.step(conn.Frame{Data: []byte(data)})
}

func (h *harness) step(e conn.Event) {
	h.s.handleConn(e)
	h.s.recompute()
	h.s.publish()
}

func (h *harness) input(in InputEvent) {
	h.s.handleInput(in)
	h.s.recompute()
	h.s.publish()
}

// playing brings the session into a running match at the given seat.
func (h *harness) playing(seat int) {
	h.status(conn.StatusOpen)
	h.frame(`{"type":"roomJoined","success":true,"code":"ROOM"}`)
	h.frame(`{"type":"playerAssignment","playerIndex":` + string(rune('0'+seat)) + `}`)
	h.frame(`{"type":"lobbyState","players":[{"index":0,"ready":true},{"index":1,"ready":true}]}`)
	h.frame(`{"type":"countdown","seconds":3}`)
	h.frame(`{"type":"gameStart"}`)
}

const spawnBall = `{"type":"gameUpdates","updates":[{"type":"ballSpawned","ball":{"id":7,"x":100,"y":200,"vx":1,"vy":0,"radius":8,"mass":1,"ownerIndex":null}}]}`

func TestHandshakeOnOpen(t *testing.T) {
	h := newHarness(handshake.Intent{Route: handshake.RouteQuickMatch})

	h.status(conn.StatusConnecting)
	if len(h.mgr.messages()) != 0 {
		t.Fatal("nothing should be sent while connecting")
	}

	h.status(conn.StatusOpen)
	h.frame(`{"type":"countdown","seconds":2}`)

	msgs := h.mgr.messages()
	if len(msgs) != 1 {
		t.Fatalf("sent %d messages, expected 1", len(msgs))
	}
	if msgs[0] != (protocol.QuickMatch{SessionID: "sid"}) {
		t.Errorf("sent %#v", msgs[0])
	}
}

func TestMatchFlow(t *testing.T) {
	h := newHarness(handshake.Intent{Route: handshake.RouteJoin, Code: "ROOM"})

	h.status(conn.StatusOpen)
	h.frame(`{"type":"playerAssignment","playerIndex":2}`)
	h.frame(`{"type":"lobbyState","players":[{"index":2,"ready":false}]}`)

	v := h.s.Snapshot()
	if v.Phase != phase.Lobby || v.LocalSeat != 2 {
		t.Fatalf("view = phase %v seat %v", v.Phase, v.LocalSeat)
	}
	if v.Perspective.Rotation() != 90 {
		t.Errorf("rotation = %v, expected 90", v.Perspective.Rotation())
	}
	if v.Active {
		t.Error("lobby must not be active")
	}

	// input before play is dropped
	h.input(KeyPressed{Dir: core.DirLeft})
	h.input(KeyReleased{Dir: core.DirLeft})
	if len(h.mgr.directions()) != 0 {
		t.Errorf("lobby input sent %v", h.mgr.directions())
	}

	h.frame(`{"type":"countdown","seconds":3}`)
	if v := h.s.Snapshot(); v.Phase != phase.CountingDown || v.Countdown != 3 {
		t.Errorf("view = phase %v countdown %d", v.Phase, v.Countdown)
	}

	h.frame(`{"type":"gameStart"}`)
	v = h.s.Snapshot()
	if v.Phase != phase.Playing || !v.Active {
		t.Fatalf("view = phase %v active %v", v.Phase, v.Active)
	}

	h.input(KeyPressed{Dir: core.DirLeft})
	h.input(KeyReleased{Dir: core.DirLeft})
	got := h.mgr.directions()
	if len(got) != 2 || got[0] != "left" || got[1] != "stop" {
		t.Errorf("sent directions %v, expected [left stop]", got)
	}
}

func TestUpdatesImplyPlaying(t *testing.T) {
	h := newHarness(handshake.Intent{Route: handshake.RouteQuickMatch})
	h.status(conn.StatusOpen)
	h.frame(`{"type":"playerAssignment","playerIndex":1}`)
	h.frame(spawnBall)

	v := h.s.Snapshot()
	if v.Phase != phase.Playing {
		t.Errorf("phase = %v, expected playing", v.Phase)
	}
	if _, ok := v.State.Ball(7); !ok {
		t.Error("ball from the batch should be applied")
	}
}

func TestGameOverIsTerminal(t *testing.T) {
	h := newHarness(handshake.Intent{Route: handshake.RouteJoin, Code: "ROOM"})
	h.playing(1)
	h.input(KeyPressed{Dir: core.DirRight})

	h.frame(`{"type":"gameOver","winnerIndex":1,"finalScores":[1,9,0,2],"reason":"score limit"}`)

	v := h.s.Snapshot()
	if !v.Over || v.Phase != phase.GameOver || v.Active {
		t.Fatalf("view = over %v phase %v active %v", v.Over, v.Phase, v.Active)
	}
	if v.Summary.Winner != 1 || v.Summary.Scores != [4]int{1, 9, 0, 2} {
		t.Errorf("summary = %+v", v.Summary)
	}

	dirs := h.mgr.directions()
	if len(dirs) != 2 || dirs[1] != "stop" {
		t.Errorf("expected trailing stop, sent %v", dirs)
	}

	h.frame(spawnBall)
	if _, ok := h.s.Snapshot().State.Ball(7); ok {
		t.Error("batches after game over must be ignored")
	}

	h.frame(`{"type":"gameOver","winnerIndex":0,"finalScores":[9,0,0,0]}`)
	if w := h.s.Snapshot().Summary.Winner; w != 1 {
		t.Errorf("second game over replaced the summary, winner %v", w)
	}

	if len(h.store.saved) != 1 {
		t.Fatalf("saved %d matches, expected 1", len(h.store.saved))
	}
	rec := h.store.saved[0]
	if rec.RoomCode != "ROOM" || rec.SessionID != "sid" || rec.LocalSeat != 1 || !rec.Won() {
		t.Errorf("record = %+v", rec)
	}
}

func TestDisconnectResetsState(t *testing.T) {
	h := newHarness(handshake.Intent{Route: handshake.RouteQuickMatch})
	h.playing(0)
	h.frame(spawnBall)
	h.input(KeyPressed{Dir: core.DirLeft})

	h.status(conn.StatusClosed)

	v := h.s.Snapshot()
	if v.Phase != phase.Lobby || v.Active {
		t.Errorf("view = phase %v active %v", v.Phase, v.Active)
	}
	if len(v.State.Balls) != 0 || len(v.State.Occupied()) != 0 {
		t.Error("canonical state should be discarded")
	}

	// the direction sent while playing is the only one; the stop could not go out
	if dirs := h.mgr.directions(); len(dirs) != 1 {
		t.Errorf("sent %v", dirs)
	}

	h.status(conn.StatusConnecting)
	h.status(conn.StatusOpen)

	var requests int
	for _, m := range h.mgr.messages() {
		if _, ok := m.(protocol.QuickMatch); ok {
			requests++
		}
	}
	if requests != 2 {
		t.Errorf("sent %d room requests, expected one per open", requests)
	}
}

func TestSeatChangeResets(t *testing.T) {
	h := newHarness(handshake.Intent{Route: handshake.RouteQuickMatch})
	h.playing(3)
	h.frame(spawnBall)

	h.frame(`{"type":"playerAssignment","playerIndex":3}`)
	if _, ok := h.s.Snapshot().State.Ball(7); !ok {
		t.Fatal("same seat must not reset")
	}

	h.frame(`{"type":"playerAssignment","playerIndex":0}`)
	v := h.s.Snapshot()
	if v.LocalSeat != 0 || v.Phase != phase.Lobby {
		t.Errorf("view = seat %v phase %v", v.LocalSeat, v.Phase)
	}
	if len(v.State.Balls) != 0 {
		t.Error("seat change should discard state")
	}
}

func TestOutOfRangeAssignmentIgnored(t *testing.T) {
	h := newHarness(handshake.Intent{Route: handshake.RouteQuickMatch})
	h.playing(2)
	h.frame(spawnBall)

	h.frame(`{"type":"playerAssignment","playerIndex":7}`)
	v := h.s.Snapshot()
	if v.LocalSeat != 2 || v.Phase != phase.Playing {
		t.Fatalf("view = seat %v phase %v, expected seat 2 still playing", v.LocalSeat, v.Phase)
	}
	if _, ok := v.State.Ball(7); !ok {
		t.Fatal("out-of-range assignment must not discard state")
	}

	h.frame(`{"type":"playerAssignment","playerIndex":1}`)
	v = h.s.Snapshot()
	if v.LocalSeat != 1 || v.Phase != phase.Lobby || len(v.State.Balls) != 0 {
		t.Errorf("view = seat %v phase %v balls %d, expected a reset at seat 1",
			v.LocalSeat, v.Phase, len(v.State.Balls))
	}
}

func TestReadyToggle(t *testing.T) {
	h := newHarness(handshake.Intent{Route: handshake.RouteCreate})
	h.status(conn.StatusOpen)

	// no seat yet
	h.input(ReadyToggled{})
	if n := len(h.mgr.messages()); n != 1 {
		t.Fatalf("sent %d messages, expected only the room request", n)
	}

	h.frame(`{"type":"playerAssignment","playerIndex":1}`)
	h.frame(`{"type":"lobbyState","players":[{"index":1,"ready":false}]}`)
	h.input(ReadyToggled{})

	h.frame(`{"type":"lobbyState","players":[{"index":1,"ready":true}]}`)
	if !h.s.Snapshot().Ready {
		t.Error("ready flag should follow the roster")
	}
	h.input(ReadyToggled{})

	msgs := h.mgr.messages()
	if len(msgs) != 3 {
		t.Fatalf("sent %d messages, expected 3", len(msgs))
	}
	if msgs[1] != (protocol.PlayerReady{Ready: true}) || msgs[2] != (protocol.PlayerReady{Ready: false}) {
		t.Errorf("ready intents = %#v, %#v", msgs[1], msgs[2])
	}
}

func TestMalformedFramesDiscarded(t *testing.T) {
	h := newHarness(handshake.Intent{Route: handshake.RouteQuickMatch})
	h.status(conn.StatusOpen)
	before := h.s.Snapshot()

	h.frame(`{"type":"nonsense"}`)
	h.frame(`{not json`)

	after := h.s.Snapshot()
	if after.Phase != before.Phase || after.LocalSeat != before.LocalSeat {
		t.Error("malformed frames must not change state")
	}
	if after.Version <= before.Version {
		t.Error("version should still advance per event")
	}
}

func TestSignalsReachSink(t *testing.T) {
	h := newHarness(handshake.Intent{Route: handshake.RouteQuickMatch})
	h.playing(2)
	h.frame(spawnBall)
	h.frame(`{"type":"gameUpdates","updates":[{"type":"ballOwnershipChange","id":7,"ownerIndex":2}]}`)

	if h.rec.Count(signal.BallGainedByLocal) != 1 {
		t.Errorf("signals = %v", h.rec.Signals())
	}
}

func TestSaveFailureIsTolerated(t *testing.T) {
	h := newHarness(handshake.Intent{Route: handshake.RouteQuickMatch})
	h.store.err = errors.New("disk full")
	h.playing(0)
	h.frame(`{"type":"gameOver","winnerIndex":-1,"finalScores":[2,2,0,0]}`)

	v := h.s.Snapshot()
	if !v.Over || !v.Summary.Tie() {
		t.Errorf("summary = %+v", v.Summary)
	}
}

func TestRunAndLeave(t *testing.T) {
	h := newHarness(handshake.Intent{Route: handshake.RouteQuickMatch})
	done := make(chan error, 1)
	go func() { done <- h.s.Run(context.Background()) }()

	h.mgr.setStatus(conn.StatusOpen)
	h.mgr.events <- conn.StatusChanged{Status: conn.StatusOpen}
	h.mgr.events <- conn.Frame{Data: []byte(`{"type":"playerAssignment","playerIndex":3}`)}

	deadline := time.After(2 * time.Second)
	for h.s.Snapshot().LocalSeat != 3 {
		select {
		case <-h.s.Changed():
		case <-deadline:
			t.Fatal("session never applied the assignment")
		}
	}

	h.s.Leave()
	h.s.Leave()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Leave")
	}

	v := h.s.Snapshot()
	if v.Status != conn.StatusClosed || v.LocalSeat != core.NoSeat {
		t.Errorf("view after leave = status %v seat %v", v.Status, v.LocalSeat)
	}
	h.s.Input(KeyPressed{Dir: core.DirLeft}) // must not block
}

func TestInputDropsOldestWhenFull(t *testing.T) {
	mgr := newFakeManager()
	s := New(Options{Manager: mgr, InputBuffer: 2})

	s.Input(KeyPressed{Dir: core.DirLeft})
	s.Input(KeyPressed{Dir: core.DirRight})
	s.Input(ReadyToggled{})

	first := <-s.inputs
	if first != (KeyPressed{Dir: core.DirRight}) {
		t.Errorf("oldest input should have been dropped, got %#v", first)
	}
}
