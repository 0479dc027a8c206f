package room

import (
	"testing"

	"github.com/curvytron/server/internal/session"
)

func newTestPlayer(id string) *Player {
	return &Player{ID: id, Session: &session.Session{}, Name: id, Color: "#fff"}
}

func TestJoinRejectsWhenFull(t *testing.T) {
	r := New("r1", "lobby", nil)
	r.Cfg.MaxPlayers = 1
	if err := r.Join(newTestPlayer("a")); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := r.Join(newTestPlayer("b")); err != ErrRoomFull {
		t.Fatalf("second join error = %v, want ErrRoomFull", err)
	}
}

func TestJoinRejectsNonSpectatorOnceGameStarted(t *testing.T) {
	r := New("r1", "lobby", nil)
	a, b := newTestPlayer("a"), newTestPlayer("b")
	_ = r.Join(a)
	_ = r.Join(b)
	r.LeaderID = a.ID
	a.Ready, b.Ready = true, true
	if err := r.Start(1); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := r.Join(newTestPlayer("c")); err != ErrRoomClosed {
		t.Fatalf("join after start = %v, want ErrRoomClosed", err)
	}

	spectator := &Player{ID: "spec", Session: &session.Session{}, Spectator: true}
	if err := r.Join(spectator); err != nil {
		t.Fatalf("spectator join after start: %v", err)
	}
}

func TestLeaveMarksAvatarLeftMidGameWithoutRemovingIt(t *testing.T) {
	r := New("r1", "lobby", nil)
	a, b := newTestPlayer("a"), newTestPlayer("b")
	_ = r.Join(a)
	_ = r.Join(b)
	r.LeaderID = a.ID
	a.Ready, b.Ready = true, true
	if err := r.Start(1); err != nil {
		t.Fatalf("start: %v", err)
	}

	r.Leave(a.ID)

	if r.Players.Has(a.ID) {
		t.Fatalf("player should be removed from the room")
	}
	if _, ok := r.Game.Avatars.Get(a.ID); !ok {
		t.Fatalf("avatar should still be simulated after its player leaves mid-game")
	}
}

func TestLeaveReassignsLeader(t *testing.T) {
	r := New("r1", "lobby", nil)
	a, b := newTestPlayer("a"), newTestPlayer("b")
	_ = r.Join(a)
	_ = r.Join(b)
	r.LeaderID = a.ID

	r.Leave(a.ID)

	if r.LeaderID != b.ID {
		t.Fatalf("LeaderID = %q, want %q", r.LeaderID, b.ID)
	}
}

func TestConfigureRejectsNonLeader(t *testing.T) {
	r := New("r1", "lobby", nil)
	a, b := newTestPlayer("a"), newTestPlayer("b")
	_ = r.Join(a)
	_ = r.Join(b)
	r.LeaderID = a.ID

	if err := r.Configure(b.ID, "maxPlayers", float64(4)); err != ErrNotLeader {
		t.Fatalf("Configure by non-leader = %v, want ErrNotLeader", err)
	}
	if err := r.Configure(a.ID, "maxPlayers", float64(4)); err != nil {
		t.Fatalf("Configure by leader: %v", err)
	}
	if r.Cfg.MaxPlayers != 4 {
		t.Fatalf("MaxPlayers = %d, want 4", r.Cfg.MaxPlayers)
	}
}

func TestStartRequiresMinimumReadyPlayers(t *testing.T) {
	r := New("r1", "lobby", nil)
	a := newTestPlayer("a")
	_ = r.Join(a)
	a.Ready = true

	if err := r.Start(1); err != ErrNotEnoughPlayers {
		t.Fatalf("Start with one player = %v, want ErrNotEnoughPlayers", err)
	}
}

func TestStartRequiresEveryoneReady(t *testing.T) {
	r := New("r1", "lobby", nil)
	a, b := newTestPlayer("a"), newTestPlayer("b")
	_ = r.Join(a)
	_ = r.Join(b)
	a.Ready = true

	if err := r.Start(1); err != ErrNotReady {
		t.Fatalf("Start with an unready player = %v, want ErrNotReady", err)
	}
}

func TestStartFillsBotsUpToTarget(t *testing.T) {
	r := New("r1", "lobby", nil)
	a, b := newTestPlayer("a"), newTestPlayer("b")
	_ = r.Join(a)
	_ = r.Join(b)
	a.Ready, b.Ready = true, true
	r.Cfg.BotsEnabled = true

	if err := r.Start(1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if r.bots == nil {
		t.Fatalf("expected a bot controller once BotsEnabled fills remaining seats")
	}
}
