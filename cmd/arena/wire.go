package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arena/internal/client"
	"github.com/vovakirdan/arena/internal/config"
	"github.com/vovakirdan/arena/internal/conn"
	"github.com/vovakirdan/arena/internal/handshake"
	"github.com/vovakirdan/arena/internal/platform/tui"
	"github.com/vovakirdan/arena/internal/signal"
)

// signalBuffer bounds gameplay signals waiting for the renderer.
const signalBuffer = 32

// openLogFile opens the interactive client log. The terminal belongs to the
// TUI, so logs go to a file; an empty path discards them.
func openLogFile(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{io.Discard}, nil
	}
	path = config.ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// newLogger builds the application logger.
func newLogger(w io.Writer, cfg config.Config, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           cfg.LogLevel(),
		Prefix:          prefix,
	})
}

// modelOptions maps the UI and input settings onto the renderer.
func modelOptions(cfg config.Config) tui.ModelOptions {
	return tui.ModelOptions{
		TickRate: cfg.UI.TickRate,
		KeyHold:  cfg.Input.KeyHold,
		Flash:    cfg.UI.Flash,
	}
}

// newStarter returns a Starter that connects a fresh session for each
// intent and runs it until ctx ends or the session is left.
func newStarter(ctx context.Context, cfg config.Config, store client.MatchSaver, sessionID string, logger *log.Logger) tui.Starter {
	return func(intent handshake.Intent) (*client.Session, <-chan signal.Signal, error) {
		if sessionID == "" {
			return nil, nil, errors.New("no session id")
		}

		mgr := conn.NewManager(conn.Config{
			URL:           cfg.Server.URL,
			RetryInterval: cfg.Server.RetryInterval,
			WriteTimeout:  cfg.Server.WriteTimeout,
			EventBuffer:   cfg.Server.EventBuffer,
			SendBuffer:    cfg.Server.SendBuffer,
		}, conn.WebsocketDialer{ReadLimit: cfg.Server.ReadLimit}, logger.WithPrefix("conn"))

		signals := signal.NewChannelSink(signalBuffer)
		sessionLogger := logger.With("route", intent.Route)
		session := client.New(client.Options{
			Manager:   mgr,
			Intent:    intent,
			SessionID: sessionID,
			Canvas:    cfg.World.Canvas,
			Sink: signal.Safe(signal.Multi{
				signals,
				signal.LogSink{Logger: sessionLogger},
			}, sessionLogger),
			Store:       store,
			InputBuffer: cfg.Input.Buffer,
			Logger:      sessionLogger,
		})

		go func() {
			if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				sessionLogger.Error("session ended", "error", err)
			}
		}()

		return session, signals.C(), nil
	}
}
