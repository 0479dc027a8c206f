// Package session implements the Socket Session component: one
// WebSocket connection with framed event batching, ping/pong latency
// tracking, and inbound dispatch to registered handlers (spec §4.1).
// It generalizes the teacher's Conn/ConnManager (connection.go) from a
// single hardcoded message type switch to a named-event registry.
package session

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/curvytron/server/internal/config"
	"github.com/curvytron/server/internal/protocol"
)

// Handler processes one inbound event and returns the value to ack
// back to the sender, if the event carried an ackId.
type Handler func(data json.RawMessage) (result any, err error)

// Session wraps one WebSocket connection (spec §4.1). It offers Send,
// Flush, Close and On; there is no separate batch-send call, since
// every Send queues into the batch the next Flush writes.
type Session struct {
	ID string

	ws *websocket.Conn

	mu       sync.Mutex
	closed   bool
	outbox   []any
	handlers map[string]Handler

	latencyNs atomic.Int64

	onCloseMu sync.Mutex
	onClose   []func()
}

// New wraps ws in a Session with a fresh opaque id (spec §3: "opaque
// string").
func New(ws *websocket.Conn) *Session {
	return &Session{
		ID:       uuid.New().String(),
		ws:       ws,
		handlers: make(map[string]Handler),
	}
}

// On registers the handler invoked for inbound events named name.
func (s *Session) On(name string, h Handler) {
	s.handlers[name] = h
}

// OnClose registers a callback run exactly once when the session
// closes (spec §4.1: "upstream event close is emitted exactly once").
func (s *Session) OnClose(f func()) {
	s.onCloseMu.Lock()
	s.onClose = append(s.onClose, f)
	s.onCloseMu.Unlock()
}

// Send queues a fire-and-forget event for the next Flush.
func (s *Session) Send(name string, data any) {
	s.mu.Lock()
	s.outbox = append(s.outbox, protocol.OutEvent{Name: name, Data: data})
	s.mu.Unlock()
}

// Flush marshals every queued outbound entry into a single wire frame
// and writes it, coalescing everything accumulated since the last
// flush (spec §4.1: "writes within a single tick are accumulated into
// one JSON-array frame").
func (s *Session) Flush() error {
	s.mu.Lock()
	if len(s.outbox) == 0 {
		s.mu.Unlock()
		return nil
	}
	batch := s.outbox
	s.outbox = nil
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return nil
	}

	raw, err := protocol.EncodeFrame(batch)
	if err != nil {
		return fmt.Errorf("session %s: encode frame: %w", s.ID, err)
	}
	return s.writeDeadlined(raw)
}

func (s *Session) writeDeadlined(raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	_ = s.ws.SetWriteDeadline(time.Now().Add(config.SendSoftDeadline))
	return s.ws.WriteMessage(websocket.TextMessage, raw)
}

// ReadLoop reads inbound frames until the connection errors or closes,
// dispatching each entry to its registered handler and sending back an
// ack frame when the entry carried an ackId (spec §4.1). It returns
// once the loop exits; callers run it in its own goroutine.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		_, raw, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("session %s: read error: %v", s.ID, err)
			}
			return
		}

		entries, err := protocol.DecodeFrame(raw)
		if err != nil {
			log.Printf("session %s: %v", s.ID, err)
			continue
		}

		for _, e := range entries {
			if e.IsAck {
				// The server never sends an event with an ackId of its
				// own, so no ack response from the client is ever
				// awaited; ignore it rather than dispatch it as an event.
				continue
			}
			s.dispatch(e)
		}
		if err := s.Flush(); err != nil {
			log.Printf("session %s: flush: %v", s.ID, err)
			return
		}
	}
}

func (s *Session) dispatch(e protocol.InEntry) {
	h, ok := s.handlers[e.Name]
	if !ok {
		return
	}
	result, err := h(e.Data)
	if e.AckID == 0 {
		return
	}
	ack := protocol.OutAck{AckID: e.AckID, Result: result}
	if err != nil {
		ack.Err = err.Error()
	}
	s.mu.Lock()
	s.outbox = append(s.outbox, ack)
	s.mu.Unlock()
}

// StartPing launches the periodic latency probe (spec §4.1: "the
// server sends ping with a monotonic timestamp every ~1s"). Call once
// per session; it stops when the session closes.
func (s *Session) StartPing() {
	base := time.Now()
	s.On("pong", func(data json.RawMessage) (any, error) {
		var echoed int64
		if err := json.Unmarshal(data, &echoed); err != nil {
			return nil, fmt.Errorf("bad_input")
		}
		rtt := time.Since(base) - time.Duration(echoed)*time.Millisecond
		s.latencyNs.Store(int64(rtt / 2))
		return nil, nil
	})

	go func() {
		ticker := time.NewTicker(config.PingInterval)
		defer ticker.Stop()
		for range ticker.C {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			s.Send("ping", time.Since(base).Milliseconds())
			if err := s.Flush(); err != nil {
				return
			}
		}
	}()
}

// Latency returns the most recently measured one-way latency.
func (s *Session) Latency() time.Duration {
	return time.Duration(s.latencyNs.Load())
}

// Close marks the session closed and runs the close callbacks exactly
// once (spec §4.1: "upstream event close is emitted exactly once").
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.ws.Close()

	s.onCloseMu.Lock()
	callbacks := s.onClose
	s.onClose = nil
	s.onCloseMu.Unlock()
	for _, f := range callbacks {
		f()
	}
}
