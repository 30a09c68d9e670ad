package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultSendQueueSize = 256
	defaultWriteTimeout  = 5 * time.Second
	shutdownTimeout      = 5 * time.Second
	maxInboundMessage    = 1024
)

// Controller executes inbound control commands. wave.Driver implements it.
type Controller interface {
	StartWave(ctx context.Context) error
	StopWave(ctx context.Context) error
	ChangeMonster(ctx context.Context) error
}

// Options configure the feed server.
type Options struct {
	Addr          string
	Path          string
	SendQueueSize int
	WriteTimeout  time.Duration
}

// Server serves the websocket feed over HTTP.
type Server struct {
	hub      *Hub
	ctrl     Controller
	opts     Options
	upgrader websocket.Upgrader
}

// NewServer creates a feed server. ctrl may be nil, then control commands
// are answered with an error.
func NewServer(hub *Hub, ctrl Controller, opts Options) *Server {
	if opts.Path == "" {
		opts.Path = "/feed"
	}
	if opts.SendQueueSize <= 0 {
		opts.SendQueueSize = defaultSendQueueSize
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}

	return &Server{
		hub:  hub,
		ctrl: ctrl,
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the HTTP handler with the feed endpoint and a health check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.opts.Path, s.handleFeed)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Run listens on opts.Addr and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	slog.Info("feed server listening", "address", ln.Addr().String(), "path", s.opts.Path)

	select {
	case <-ctx.Done():
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down feed server: %w", err)
		}
		return nil

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving feed: %w", err)
	}
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("feed upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	conn.SetReadLimit(maxInboundMessage)

	sub := newSubscriber(conn, s.opts.SendQueueSize, s.opts.WriteTimeout)
	s.hub.add(sub)
	defer s.hub.remove(sub)

	go sub.writePump()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			slog.Debug("discarding malformed feed message", "remote", sub.remote, "error", err)
			continue
		}

		reply := s.dispatch(r.Context(), msg)
		frame, err := json.Marshal(reply)
		if err != nil {
			continue
		}
		sub.send(frame)
	}
}

func (s *Server) dispatch(ctx context.Context, msg clientMessage) replyMessage {
	reply := replyMessage{Type: TypeAck, Command: msg.Type, Seq: msg.Seq}

	if s.ctrl == nil {
		reply.Type = TypeError
		reply.Error = "control disabled"
		return reply
	}

	var err error
	switch msg.Type {
	case CommandStart:
		err = s.ctrl.StartWave(ctx)
	case CommandStop:
		err = s.ctrl.StopWave(ctx)
	case CommandSwap:
		err = s.ctrl.ChangeMonster(ctx)
	default:
		err = fmt.Errorf("unknown command %q", msg.Type)
	}

	if err != nil {
		reply.Type = TypeError
		reply.Error = err.Error()
		slog.Debug("feed command failed", "command", msg.Type, "error", err)
	}
	return reply
}
