package state

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arena/internal/core"
	"github.com/vovakirdan/arena/internal/protocol"
	"github.com/vovakirdan/arena/internal/signal"
)

// Reference errors. An update failing with one of these is skipped; the
// rest of its batch still applies.
var (
	ErrSeatOutOfRange = errors.New("seat out of range")
	ErrEmptySeat      = errors.New("seat is empty")
	ErrUnknownBall    = errors.New("unknown ball")
	ErrUnknownUpdate  = errors.New("unknown update")
)

// Result summarizes one ApplyBatch or ApplyInitial call.
type Result struct {
	Applied int
	Skipped int
}

// Engine applies server deltas to the canonical state and derives signals
// from the transitions it observes. It is not safe for concurrent use; the
// client session drives it from a single goroutine.
type Engine struct {
	players [core.MaxSeats]*Player
	paddles [core.MaxSeats]*Paddle
	balls   map[int]*Ball
	grid    Grid

	local  core.Seat
	sink   signal.Sink
	logger *log.Logger
}

// NewEngine creates an empty engine. A nil sink discards signals and a nil
// logger discards warnings.
func NewEngine(sink signal.Sink, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if sink == nil {
		sink = signal.Discard
	}
	return &Engine{
		balls:  make(map[int]*Ball),
		local:  core.NoSeat,
		sink:   signal.Safe(sink, logger),
		logger: logger,
	}
}

// SetLocalSeat records which seat this client plays. Ownership signals are
// classified against it.
func (e *Engine) SetLocalSeat(s core.Seat) {
	e.local = s
}

// LocalSeat returns the local seat, or core.NoSeat.
func (e *Engine) LocalSeat() core.Seat {
	return e.local
}

// Reset empties every seat, removes all balls and clears the grid.
// The local seat is kept.
func (e *Engine) Reset() {
	e.players = [core.MaxSeats]*Player{}
	e.paddles = [core.MaxSeats]*Paddle{}
	e.balls = make(map[int]*Ball)
	e.grid = Grid{}
}

// ApplyInitial replaces players, paddles and balls with a full state, and
// the grid when one is included. No signals are derived.
func (e *Engine) ApplyInitial(msg protocol.InitialState) Result {
	var res Result

	e.players = [core.MaxSeats]*Player{}
	e.paddles = [core.MaxSeats]*Paddle{}
	e.balls = make(map[int]*Ball)

	for _, p := range msg.Players {
		if p == nil {
			continue
		}
		if !p.Seat().Valid() {
			e.skip(&res, protocol.TypeInitialState, fmt.Errorf("player %q: %w", p.ID, ErrSeatOutOfRange))
			continue
		}
		e.players[p.Index] = playerFromWire(*p)
		res.Applied++
	}
	for _, p := range msg.Paddles {
		if p == nil {
			continue
		}
		if !p.Seat().Valid() {
			e.skip(&res, protocol.TypeInitialState, fmt.Errorf("paddle %d: %w", p.Index, ErrSeatOutOfRange))
			continue
		}
		e.paddles[p.Index] = paddleFromWire(*p)
		res.Applied++
	}
	for _, b := range msg.Balls {
		if err := checkOwner(b); err != nil {
			e.skip(&res, protocol.TypeInitialState, err)
			continue
		}
		e.balls[b.ID] = ballFromWire(b)
		res.Applied++
	}
	if msg.Grid != nil {
		e.grid = Grid{CellSize: msg.Grid.CellSize, Cells: cellsFromWire(msg.Grid.Cells)}
		res.Applied++
	}
	return res
}

// ApplyBatch applies updates in order, exactly once each. An update that
// references a seat or ball outside canonical state is logged and skipped
// without affecting the others.
func (e *Engine) ApplyBatch(updates []protocol.Update) Result {
	var res Result
	for _, u := range updates {
		if err := e.apply(u); err != nil {
			e.skip(&res, kindOf(u), err)
			continue
		}
		res.Applied++
	}
	return res
}

func (e *Engine) skip(res *Result, kind string, err error) {
	res.Skipped++
	e.logger.Warn("update skipped", "kind", kind, "error", err)
}

func (e *Engine) apply(u protocol.Update) error {
	switch u := u.(type) {
	case protocol.PlayerJoined:
		return e.playerJoined(u)
	case protocol.PlayerLeft:
		return e.playerLeft(u)
	case protocol.ScoreChanged:
		return e.scoreChanged(u)
	case protocol.PaddleMoved:
		return e.paddleMoved(u)
	case protocol.BallSpawned:
		return e.ballSpawned(u)
	case protocol.BallRemoved:
		delete(e.balls, u.ID)
		return nil
	case protocol.BallMoved:
		return e.ballMoved(u)
	case protocol.BallOwnershipChanged:
		return e.ownershipChanged(u)
	case protocol.GridReplaced:
		e.gridReplaced(u)
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownUpdate, u)
	}
}

func seatIndex(idx int) (core.Seat, error) {
	s := core.Seat(idx)
	if !s.Valid() {
		return core.NoSeat, fmt.Errorf("seat %d: %w", idx, ErrSeatOutOfRange)
	}
	return s, nil
}

func (e *Engine) playerJoined(u protocol.PlayerJoined) error {
	seat, err := seatIndex(u.Index)
	if err != nil {
		return err
	}
	if cur := e.players[seat]; cur != nil && cur.ID == u.ID {
		return nil
	}

	e.players[seat] = &Player{Seat: seat, ID: u.ID, Score: u.Score}
	if u.Paddle != nil {
		pad := paddleFromWire(*u.Paddle)
		pad.Seat = seat
		e.paddles[seat] = pad
	} else if e.paddles[seat] == nil {
		e.paddles[seat] = &Paddle{Seat: seat}
	}
	return nil
}

func (e *Engine) playerLeft(u protocol.PlayerLeft) error {
	seat, err := seatIndex(u.Index)
	if err != nil {
		return err
	}
	e.players[seat] = nil
	e.paddles[seat] = nil
	return nil
}

func (e *Engine) scoreChanged(u protocol.ScoreChanged) error {
	seat, err := seatIndex(u.Index)
	if err != nil {
		return err
	}
	p := e.players[seat]
	if p == nil {
		return fmt.Errorf("score for %s: %w", seat, ErrEmptySeat)
	}
	if p.Score != u.Score {
		p.Score = u.Score
	}
	return nil
}

func (e *Engine) paddleMoved(u protocol.PaddleMoved) error {
	seat, err := seatIndex(u.Index)
	if err != nil {
		return err
	}
	prev := e.paddles[seat]
	if prev == nil {
		return fmt.Errorf("paddle for %s: %w", seat, ErrEmptySeat)
	}

	next := paddleFromWire(u.PaddleInfo)
	if signal.Rising(prev.Collided, next.Collided) {
		e.sink.Emit(signal.Signal{Kind: signal.PaddleCollision, Seat: seat})
	}
	*prev = *next
	return nil
}

func (e *Engine) ballSpawned(u protocol.BallSpawned) error {
	if _, ok := e.balls[u.Ball.ID]; ok {
		return nil
	}
	if err := checkOwner(u.Ball); err != nil {
		return err
	}
	e.balls[u.Ball.ID] = ballFromWire(u.Ball)
	return nil
}

// checkOwner accepts an unowned ball or one owned by a seat in range.
func checkOwner(b protocol.BallInfo) error {
	if owner := b.Owner(); owner != core.NoSeat && !owner.Valid() {
		return fmt.Errorf("ball %d owner %d: %w", b.ID, owner, ErrSeatOutOfRange)
	}
	return nil
}

func (e *Engine) ballMoved(u protocol.BallMoved) error {
	b, ok := e.balls[u.ID]
	if !ok {
		return fmt.Errorf("ball %d: %w", u.ID, ErrUnknownBall)
	}

	if signal.Rising(b.Collided, u.Collided) {
		e.sink.Emit(signal.Signal{Kind: signal.BallCollision, BallID: b.ID, Seat: b.Owner})
	}
	b.Pos = core.Vec{X: u.X, Y: u.Y}
	b.Velocity = core.Vec{X: u.Vx, Y: u.Vy}
	b.Collided = u.Collided
	b.Phasing = u.Phasing
	return nil
}

func (e *Engine) ownershipChanged(u protocol.BallOwnershipChanged) error {
	b, ok := e.balls[u.ID]
	if !ok {
		return fmt.Errorf("ball %d: %w", u.ID, ErrUnknownBall)
	}
	owner := u.Owner()
	if owner != core.NoSeat && !owner.Valid() {
		return fmt.Errorf("ball %d owner %d: %w", u.ID, *u.OwnerIndex, ErrSeatOutOfRange)
	}
	if owner == b.Owner {
		return nil
	}

	prev := b.Owner
	b.Owner = owner
	e.sink.Emit(signal.Ownership(b.ID, prev, owner, e.local))
	return nil
}

// gridReplaced swaps in the new grid. The previous lives are only consulted
// here, to find bricks that took damage.
func (e *Engine) gridReplaced(u protocol.GridReplaced) {
	prev := make(map[cellKey]Cell, len(e.grid.Cells))
	for _, c := range e.grid.Cells {
		prev[cellKey{c.X, c.Y}] = c
	}

	cells := cellsFromWire(u.Cells)
	for _, c := range cells {
		old, ok := prev[cellKey{c.X, c.Y}]
		if !ok {
			continue
		}
		if signal.BrickBroken(string(old.Type), old.Life, string(c.Type), c.Life) {
			e.sink.Emit(signal.Signal{Kind: signal.BrickBreak, X: c.X, Y: c.Y})
		}
	}

	size := u.CellSize
	if size <= 0 {
		size = e.grid.CellSize
	}
	e.grid = Grid{CellSize: size, Cells: cells}
}

// Snapshot returns a deep copy of the canonical state.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{LocalSeat: e.local}
	for i := range e.players {
		if p := e.players[i]; p != nil {
			cp := *p
			snap.Players[i] = &cp
		}
		if p := e.paddles[i]; p != nil {
			cp := *p
			snap.Paddles[i] = &cp
		}
	}

	snap.Balls = make([]Ball, 0, len(e.balls))
	for _, b := range e.balls {
		snap.Balls = append(snap.Balls, *b)
	}
	sort.Slice(snap.Balls, func(i, j int) bool { return snap.Balls[i].ID < snap.Balls[j].ID })

	snap.Grid = Grid{CellSize: e.grid.CellSize, Cells: make([]Cell, len(e.grid.Cells))}
	copy(snap.Grid.Cells, e.grid.Cells)
	return snap
}

func kindOf(u protocol.Update) string {
	switch u.(type) {
	case protocol.PlayerJoined:
		return protocol.TypePlayerJoined
	case protocol.PlayerLeft:
		return protocol.TypePlayerLeft
	case protocol.ScoreChanged:
		return protocol.TypeScoreUpdate
	case protocol.PaddleMoved:
		return protocol.TypePaddlePositionUpdate
	case protocol.BallSpawned:
		return protocol.TypeBallSpawned
	case protocol.BallRemoved:
		return protocol.TypeBallRemoved
	case protocol.BallMoved:
		return protocol.TypeBallPositionUpdate
	case protocol.BallOwnershipChanged:
		return protocol.TypeBallOwnershipChange
	case protocol.GridReplaced:
		return protocol.TypeFullGridUpdate
	default:
		return fmt.Sprintf("%T", u)
	}
}
