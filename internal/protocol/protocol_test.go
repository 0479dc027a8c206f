package protocol

import (
	"encoding/json"
	"testing"
)

func TestEncodeFrameRoundTripsEventWithAck(t *testing.T) {
	raw, err := EncodeFrame([]any{
		OutEvent{Name: "whoami", Data: nil, AckID: 0},
		OutEvent{Name: "room:create", Data: map[string]any{"name": "lobby"}, AckID: 7},
	})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	entries, err := DecodeFrame(raw)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Name != "whoami" || entries[0].AckID != 0 {
		t.Fatalf("entry 0 = %+v", entries[0])
	}
	if entries[1].Name != "room:create" || entries[1].AckID != 7 {
		t.Fatalf("entry 1 = %+v", entries[1])
	}
}

func TestDecodeFrameParsesAckResponse(t *testing.T) {
	raw := []byte(`[[3, [null, "S1"]]]`)
	entries, err := DecodeFrame(raw)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(entries) != 1 || !entries[0].IsAck {
		t.Fatalf("expected one ack entry, got %+v", entries)
	}
	if entries[0].AckID != 3 || entries[0].AckErr != "" {
		t.Fatalf("entry = %+v", entries[0])
	}
	var result string
	if err := json.Unmarshal(entries[0].AckData, &result); err != nil || result != "S1" {
		t.Fatalf("result = %q, err = %v", result, err)
	}
}

func TestDecodeFrameParsesAckError(t *testing.T) {
	raw := []byte(`[[5, ["name_taken", null]]]`)
	entries, err := DecodeFrame(raw)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if entries[0].AckErr != "name_taken" {
		t.Fatalf("AckErr = %q, want name_taken", entries[0].AckErr)
	}
}

func TestOutAckMarshalsNilErrorAsNull(t *testing.T) {
	raw, err := json.Marshal(OutAck{AckID: 1, Result: "ok"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(raw) != `[1,[null,"ok"]]` {
		t.Fatalf("raw = %s", raw)
	}
}

func TestDecodeFrameRejectsMalformedEntry(t *testing.T) {
	if _, err := DecodeFrame([]byte(`[[1]]`)); err == nil {
		t.Fatalf("expected error for single-element entry")
	}
}
