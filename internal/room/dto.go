package room

// Summary is the ack payload for room:fetch/room:create/room:join
// (spec §4.7).
type Summary struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	MaxPlayers int             `json:"maxPlayers"`
	InGame     bool            `json:"inGame"`
	Players    []PlayerSummary `json:"players"`
}

// PlayerSummary is one row of a room summary's player list.
// LatencyMs surfaces the session's last measured ping RTT (SPEC_FULL
// §C's supplemented per-session latency metric).
type PlayerSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Ready     bool   `json:"ready"`
	Spectator bool   `json:"spectator"`
	LatencyMs int64  `json:"latencyMs"`
}

// Summary snapshots the room's current lobby state for a fetch/join ack.
func (r *Room) Summary() Summary {
	items := r.Players.Items()
	players := make([]PlayerSummary, 0, len(items))
	for _, p := range items {
		players = append(players, PlayerSummary{
			ID:        p.ID,
			Name:      p.Name,
			Color:     p.Color,
			Ready:     p.Ready,
			Spectator: p.Spectator,
			LatencyMs: p.Session.Latency().Milliseconds(),
		})
	}
	return Summary{
		ID:         r.ID,
		Name:       r.Name,
		MaxPlayers: r.Cfg.MaxPlayers,
		InGame:     r.Game != nil,
		Players:    players,
	}
}
