package game

// Sink receives outbound game events. Room implements this to fan out
// to its Collection of sessions (spec §4.8's out-bound event table).
type Sink interface {
	Emit(name string, data any)
}

// NopSink discards every event; useful in tests that only inspect
// Game's internal state.
type NopSink struct{}

func (NopSink) Emit(string, any) {}
