package transport

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second    // Time allowed to write a message to the peer.
	pongWait       = 60 * time.Second    // Time allowed to read the next pong message from the peer.
	pingPeriod     = (pongWait * 9) / 10 // Send pings to peer with this period. Must be less than pongWait.
	maxMessageSize = 512                 // Maximum message size allowed from peer.
	sendBufferSize = 256                 // Buffer size for the outbound channel.
)

// Errors returned by session.Send.
var (
	ErrSessionClosed = errors.New("transport: session closed")
	ErrBufferFull    = errors.New("transport: subscriber send buffer full")
)

// outbound is one item queued for the write pump: either a text message or a
// close instruction, so pending messages flush before the close frame.
type outbound struct {
	data   []byte
	close  bool
	code   int
	reason string
}

// session wraps one upgraded websocket connection and implements
// subscription.Channel. A single write pump owns the connection's writer;
// Send and Close only enqueue.
type session struct {
	conn      *websocket.Conn
	send      chan outbound
	closed    chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

func newSession(conn *websocket.Conn, logger *slog.Logger) *session {
	return &session{
		conn:   conn,
		send:   make(chan outbound, sendBufferSize),
		closed: make(chan struct{}),
		logger: logger,
	}
}

// Send queues one text message for the subscriber. It never blocks: a
// subscriber that cannot drain its buffer gets an error instead of stalling
// the broadcast.
func (s *session) Send(text string) error {
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}

	select {
	case s.send <- outbound{data: []byte(text)}:
		return nil
	case <-s.closed:
		return ErrSessionClosed
	default:
		return ErrBufferFull
	}
}

// Close queues a close frame with the given code and reason. Messages queued
// before it are flushed first. Closing an already-closed session is a no-op.
func (s *session) Close(code int, reason string) error {
	select {
	case <-s.closed:
		return nil
	default:
	}

	select {
	case s.send <- outbound{close: true, code: code, reason: reason}:
	default:
		// Buffer exhausted; tear down without flushing.
		s.shutdown(code, reason)
	}
	return nil
}

// Closed returns the signal channel that fires exactly once when the
// connection terminates for any reason.
func (s *session) Closed() <-chan struct{} {
	return s.closed
}

// shutdown writes the close frame, closes the underlying connection, and
// fires the closed signal, at most once per session.
func (s *session) shutdown(code int, reason string) {
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(code, reason)
		if err := s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
			s.logger.Debug("write close frame failed", "error", err)
		}
		if err := s.conn.Close(); err != nil {
			s.logger.Debug("close connection failed", "error", err)
		}
		close(s.closed)
	})
}

// writePump owns all writes to the connection: queued messages, pings, and
// the final close frame.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case out := <-s.send:
			if out.close {
				s.shutdown(out.code, out.reason)
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, out.data); err != nil {
				s.shutdown(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.shutdown(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-s.closed:
			return
		}
	}
}

// readPump consumes and discards inbound messages (the channel is
// server-to-subscriber only) and detects disconnection.
func (s *session) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			s.shutdown(websocket.CloseNormalClosure, "")
			return
		}
	}
}
