// Package handshake sends the room request once per connection and routes
// the server's acknowledgements.
package handshake

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arena/internal/conn"
	"github.com/vovakirdan/arena/internal/protocol"
)

// ErrMissingCode is returned when a join intent has no room code.
var ErrMissingCode = errors.New("handshake: join requires a room code")

// Route selects how the client enters a room.
type Route int

const (
	RouteCreate Route = iota
	RouteQuickMatch
	RouteJoin
)

// String returns a human-readable route name.
func (r Route) String() string {
	switch r {
	case RouteCreate:
		return "create"
	case RouteQuickMatch:
		return "quick-match"
	case RouteJoin:
		return "join"
	default:
		return "unknown"
	}
}

// Intent is the caller's choice of route.
type Intent struct {
	Route  Route
	Public bool   // create only
	Code   string // join only
}

// ParseIntent validates an intent and normalizes its room code.
func ParseIntent(route Route, public bool, code string) (Intent, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch route {
	case RouteCreate:
		return Intent{Route: RouteCreate, Public: public}, nil
	case RouteQuickMatch:
		return Intent{Route: RouteQuickMatch}, nil
	case RouteJoin:
		if code == "" {
			return Intent{}, ErrMissingCode
		}
		return Intent{Route: RouteJoin, Code: code}, nil
	default:
		return Intent{}, fmt.Errorf("handshake: unknown route %d", route)
	}
}

// Message builds the outbound request for this intent.
func (i Intent) Message(sessionID string) protocol.ClientMessage {
	switch i.Route {
	case RouteJoin:
		return protocol.JoinRoom{Code: i.Code, SessionID: sessionID}
	case RouteQuickMatch:
		return protocol.QuickMatch{SessionID: sessionID}
	default:
		return protocol.CreateRoom{Public: i.Public, SessionID: sessionID}
	}
}

// Sender is the outbound half of the connection.
type Sender interface {
	SendMessage(protocol.ClientMessage) error
}

// Controller guards the room request so it goes out exactly once per open
// connection. Not safe for concurrent use.
type Controller struct {
	intent    Intent
	sessionID string
	sender    Sender
	logger    *log.Logger

	sent     bool
	code     string
	rejected bool
	reason   string
}

// NewController creates a controller in the not-sent state.
func NewController(intent Intent, sessionID string, sender Sender, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		intent:    intent,
		sessionID: sessionID,
		sender:    sender,
		logger:    logger,
		code:      intent.Code,
	}
}

// OnStatus reacts to a connection status change. The first Open after
// arming sends the intent; every other status re-arms. It reports whether a
// request was sent.
func (c *Controller) OnStatus(s conn.Status) (bool, error) {
	if s != conn.StatusOpen {
		c.sent = false
		return false, nil
	}
	if c.sent || c.rejected {
		return false, nil
	}

	msg := c.intent.Message(c.sessionID)
	if err := c.sender.SendMessage(msg); err != nil {
		return false, fmt.Errorf("handshake: send %s: %w", protocol.TypeOf(msg), err)
	}
	c.sent = true
	c.logger.Info("room request sent", "route", c.intent.Route, "code", c.code)
	return true, nil
}

// HandleRoomCreated records the room code assigned by the server.
func (c *Controller) HandleRoomCreated(m protocol.RoomCreated) {
	if m.Code == "" {
		return
	}
	c.code = strings.ToUpper(m.Code)
	c.logger.Info("room created", "code", c.code)
}

// HandleRoomJoined records the join outcome. A rejection stops all further
// requests for this controller.
func (c *Controller) HandleRoomJoined(m protocol.RoomJoined) {
	if m.Success {
		if m.Code != "" {
			c.code = strings.ToUpper(m.Code)
		}
		c.logger.Info("room joined", "code", c.code)
		return
	}
	c.rejected = true
	c.reason = m.Reason
	if c.reason == "" {
		c.reason = "join rejected"
	}
	c.logger.Warn("room join rejected", "code", c.code, "reason", c.reason)
}

// Intent returns the configured intent.
func (c *Controller) Intent() Intent { return c.intent }

// Code returns the best known room code.
func (c *Controller) Code() string { return c.code }

// Sent reports whether the request went out on the current connection.
func (c *Controller) Sent() bool { return c.sent }

// Rejected returns the rejection reason, if the server refused the join.
func (c *Controller) Rejected() (string, bool) {
	return c.reason, c.rejected
}
