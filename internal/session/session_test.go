package session

import (
	"encoding/json"
	"testing"

	"github.com/curvytron/server/internal/protocol"
)

func TestDispatchSendsAckOnSuccess(t *testing.T) {
	s := &Session{handlers: make(map[string]Handler)}
	s.On("room:create", func(data json.RawMessage) (any, error) {
		return map[string]string{"name": "lobby"}, nil
	})

	s.dispatch(protocol.InEntry{Name: "room:create", Data: json.RawMessage(`{}`), AckID: 9})

	if len(s.outbox) != 1 {
		t.Fatalf("expected one queued ack, got %d", len(s.outbox))
	}
	ack, ok := s.outbox[0].(protocol.OutAck)
	if !ok {
		t.Fatalf("expected OutAck, got %T", s.outbox[0])
	}
	if ack.AckID != 9 || ack.Err != "" {
		t.Fatalf("ack = %+v", ack)
	}
}

func TestDispatchSendsAckErrorOnHandlerFailure(t *testing.T) {
	s := &Session{handlers: make(map[string]Handler)}
	s.On("room:join", func(data json.RawMessage) (any, error) {
		return nil, errNameTaken
	})

	s.dispatch(protocol.InEntry{Name: "room:join", Data: json.RawMessage(`{}`), AckID: 4})

	ack := s.outbox[0].(protocol.OutAck)
	if ack.Err != "name_taken" {
		t.Fatalf("ack.Err = %q, want name_taken", ack.Err)
	}
}

func TestDispatchWithoutAckIDQueuesNothing(t *testing.T) {
	s := &Session{handlers: make(map[string]Handler)}
	called := false
	s.On("room:leave", func(data json.RawMessage) (any, error) {
		called = true
		return nil, nil
	})

	s.dispatch(protocol.InEntry{Name: "room:leave", Data: json.RawMessage(`{}`), AckID: 0})

	if !called {
		t.Fatalf("expected handler to run")
	}
	if len(s.outbox) != 0 {
		t.Fatalf("expected no queued ack without an ackId, got %d", len(s.outbox))
	}
}

// This replays ReadLoop's per-entry filter (skip IsAck, dispatch the
// rest) inline; ReadLoop itself needs a live connection and is not run.
func TestSkippingAckEntriesStillDispatchesEvents(t *testing.T) {
	s := &Session{handlers: make(map[string]Handler)}
	called := false
	s.On("whoami", func(data json.RawMessage) (any, error) {
		called = true
		return "S1", nil
	})

	entries := []protocol.InEntry{
		{IsAck: true, AckID: 2, AckData: json.RawMessage(`"ok"`)},
		{Name: "whoami", Data: json.RawMessage(`null`), AckID: 1},
	}
	for _, e := range entries {
		if e.IsAck {
			continue
		}
		s.dispatch(e)
	}

	if !called {
		t.Fatalf("expected the event entry to still dispatch alongside the ignored ack entry")
	}
	if len(s.outbox) != 1 {
		t.Fatalf("expected exactly one queued ack, got %d", len(s.outbox))
	}
}

var errNameTaken = errString("name_taken")

type errString string

func (e errString) Error() string { return string(e) }
