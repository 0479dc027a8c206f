package room

import "github.com/curvytron/server/internal/session"

// Player is a session's membership in a Room: its display name,
// color, ready flag, and (once a Game starts) the avatar id it drives
// (spec §3: "Player: id, client, name, color, ready. Owned by exactly
// one Room at a time.").
type Player struct {
	ID      string
	Session *session.Session
	Name    string
	Color   string
	Ready   bool

	// Spectator joins without creating an avatar (SPEC_FULL §4.9).
	Spectator bool

	// AvatarID is set once a Game starts; empty before then and for
	// spectators.
	AvatarID string

	// LeftMidGame is not set by Room.Leave: a departing player is
	// removed from Players and its avatar is flagged through
	// Game.MarkLeftMidGame instead, so room summaries carry no record of
	// a player who left mid-round.
	LeftMidGame bool
}

// Identifier satisfies collection.Item.
func (p *Player) Identifier() string { return p.ID }
