package feed

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// subscriber is one websocket connection with its own outbox.
// Writes happen only on writePump; reads only on the handler goroutine.
type subscriber struct {
	conn         *websocket.Conn
	remote       string
	sendCh       chan []byte
	closeCh      chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration

	dropped atomic.Uint64
}

func newSubscriber(conn *websocket.Conn, queueSize int, writeTimeout time.Duration) *subscriber {
	return &subscriber{
		conn:         conn,
		remote:       conn.RemoteAddr().String(),
		sendCh:       make(chan []byte, queueSize),
		closeCh:      make(chan struct{}),
		writeTimeout: writeTimeout,
	}
}

// send queues a frame. Non-blocking: drops the frame if the outbox is full.
func (s *subscriber) send(frame []byte) bool {
	select {
	case <-s.closeCh:
		return false
	default:
	}

	select {
	case s.sendCh <- frame:
		return true
	default:
		if s.dropped.Add(1) == 1 {
			slog.Warn("feed outbox full, dropping frames", "remote", s.remote)
		}
		return false
	}
}

// writePump is the single writer of the connection.
func (s *subscriber) writePump() {
	defer s.conn.Close()

	for {
		select {
		case frame := <-s.sendCh:
			if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
				slog.Warn("set write deadline failed", "remote", s.remote, "error", err)
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				slog.Debug("feed write failed", "remote", s.remote, "error", err)
				s.close()
				return
			}

		case <-s.closeCh:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// close signals writePump to stop. Safe to call multiple times.
func (s *subscriber) close() {
	s.closeOnce.Do(func() { close(s.closeCh) })
}
