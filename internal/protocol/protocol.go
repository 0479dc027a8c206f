// Package protocol implements the wire codec for the session transport:
// every frame is a JSON array of entries, each entry either an event
// `[name, data, ackId?]` or an ack response `[ackId, [error, result]]`
// (spec §4.1, §6). Encoding and decoding live here so internal/session
// never touches raw JSON arrays directly.
package protocol

import (
	"encoding/json"
	"fmt"
)

// OutEvent is one outbound event entry. AckID is 0 when the event does
// not expect an acknowledgement.
type OutEvent struct {
	Name  string
	Data  any
	AckID int
}

// MarshalJSON encodes as `[name, data]` or `[name, data, ackId]`.
func (e OutEvent) MarshalJSON() ([]byte, error) {
	if e.AckID != 0 {
		return json.Marshal([3]any{e.Name, e.Data, e.AckID})
	}
	return json.Marshal([2]any{e.Name, e.Data})
}

// OutAck is the response frame entry to an inbound event that carried
// an ackId: `[ackId, [error, result]]`. Err is the empty string for a
// successful ack.
type OutAck struct {
	AckID  int
	Err    string
	Result any
}

func (a OutAck) MarshalJSON() ([]byte, error) {
	var errVal any
	if a.Err != "" {
		errVal = a.Err
	}
	return json.Marshal([2]any{a.AckID, [2]any{errVal, a.Result}})
}

// EncodeFrame marshals a batch of outbound entries (OutEvent or
// OutAck values) into one wire frame, coalescing everything accumulated
// within a tick into a single JSON array (spec §4.1: "writes within a
// single tick are accumulated into one JSON-array frame").
func EncodeFrame(entries []any) ([]byte, error) {
	return json.Marshal(entries)
}

// InEntry is one decoded inbound frame entry, either an event or an
// ack response. IsAck distinguishes the two; for an event, AckID is 0
// when the sender expects no reply.
type InEntry struct {
	IsAck bool

	// Event fields.
	Name  string
	Data  json.RawMessage
	AckID int

	// Ack-response fields.
	AckErr  string
	AckData json.RawMessage
}

// UnmarshalJSON sniffs the first array element: a string means this
// entry is `[name, data, ackId?]`; a number means `[ackId, [error,
// result]]`.
func (e *InEntry) UnmarshalJSON(raw []byte) error {
	var head []json.RawMessage
	if err := json.Unmarshal(raw, &head); err != nil {
		return fmt.Errorf("protocol: entry is not a JSON array: %w", err)
	}
	if len(head) < 2 {
		return fmt.Errorf("protocol: entry has %d elements, want ≥2", len(head))
	}

	var name string
	if err := json.Unmarshal(head[0], &name); err == nil {
		e.IsAck = false
		e.Name = name
		e.Data = head[1]
		if len(head) >= 3 {
			if err := json.Unmarshal(head[2], &e.AckID); err != nil {
				return fmt.Errorf("protocol: bad ackId: %w", err)
			}
		}
		return nil
	}

	var ackID int
	if err := json.Unmarshal(head[0], &ackID); err != nil {
		return fmt.Errorf("protocol: first element is neither a name nor an ackId: %w", err)
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(head[1], &pair); err != nil || len(pair) != 2 {
		return fmt.Errorf("protocol: ack payload must be [error, result]")
	}
	e.IsAck = true
	e.AckID = ackID
	if string(pair[0]) != "null" {
		if err := json.Unmarshal(pair[0], &e.AckErr); err != nil {
			return fmt.Errorf("protocol: bad ack error: %w", err)
		}
	}
	e.AckData = pair[1]
	return nil
}

// DecodeFrame parses one inbound wire frame into its entries, in
// arrival order (spec §6: "each frame MUST be a JSON array of events").
func DecodeFrame(raw []byte) ([]InEntry, error) {
	var entries []InEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("protocol: malformed frame: %w", err)
	}
	return entries, nil
}
