// Package room implements the pre-game lobby and its promotion into an
// active Game: Room, Player, and the global RoomsController (spec §3,
// §4.7). Each Room runs as a single reactor goroutine — a recurring
// tick timer plus an inbound command channel — so Avatar/World/Game
// state never needs locks (spec §5, §9's "model as a single reactor
// per Room" note).
package room

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/curvytron/server/internal/bot"
	"github.com/curvytron/server/internal/collection"
	"github.com/curvytron/server/internal/config"
	"github.com/curvytron/server/internal/game"
	"github.com/curvytron/server/internal/metrics"
)

var (
	ErrRoomFull         = errors.New("room_full")
	ErrRoomClosed       = errors.New("room_closed")
	ErrNotInRoom        = errors.New("not_in_room")
	ErrNotLeader        = errors.New("not_leader")
	ErrBadInput         = errors.New("bad_input")
	ErrSpectator        = errors.New("spectator")
	ErrNotEnoughPlayers = errors.New("not_enough_players")
	ErrNotReady         = errors.New("not_ready")
)

// Room is a named lobby that wraps exactly one Game once started
// (spec §3).
type Room struct {
	ID       string
	Name     string
	LeaderID string
	Cfg      Config

	Players *collection.Collection[*Player]
	Open    bool

	Game *game.Game
	bots *bot.Controller

	createdAt time.Time
	emptiedAt time.Time

	inbox     chan func()
	closed    chan struct{}
	onDestroy func(*Room)
}

// New creates an open, empty room. onDestroy is invoked once, from the
// room's own goroutine, when it tears itself down.
func New(id, name string, onDestroy func(*Room)) *Room {
	return &Room{
		ID:        id,
		Name:      name,
		Cfg:       DefaultConfig(),
		Players:   collection.New[*Player](),
		Open:      true,
		createdAt: time.Now(),
		inbox:     make(chan func(), 32),
		closed:    make(chan struct{}),
		onDestroy: onDestroy,
	}
}

// Submit enqueues f to run on the room's own goroutine, serialized
// with every tick and every other submitted command (spec §5:
// "the room's inbound event queue and its tick timer are consumed
// serially").
func (r *Room) Submit(f func()) {
	select {
	case r.inbox <- f:
	case <-r.closed:
	}
}

// Run is the room's reactor loop; call it in its own goroutine. It
// returns when ctx is cancelled or the room destroys itself.
func (r *Room) Run(ctx context.Context) {
	tickDt := config.TickDt
	ticker := time.NewTicker(time.Duration(tickDt * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.closed:
			return
		case f := <-r.inbox:
			f()
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Room) tick() {
	if r.Game == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("room %s (%s): game tick panic: %v", r.ID, r.Name, rec)
			r.Emit("end", game.MatchEndSummary{Reason: "internal"})
			for _, p := range r.Players.Items() {
				_ = p.Session.Flush()
			}
			r.endGame()
		}
	}()
	if r.bots != nil {
		r.bots.Tick()
	}
	start := time.Now()
	r.Game.Tick()
	metrics.RecordTick(time.Since(start))
	for _, p := range r.Players.Items() {
		_ = p.Session.Flush()
	}
	if r.Game.Done {
		r.endGame()
	}
}

func (r *Room) endGame() {
	r.Game = nil
	r.bots = nil
	for _, p := range r.Players.Items() {
		p.Ready = false
		p.AvatarID = ""
	}
}

func (r *Room) checkIdle() {
	if r.Players.Len() > 0 {
		r.emptiedAt = time.Time{}
		return
	}
	if r.emptiedAt.IsZero() {
		r.emptiedAt = time.Now()
		return
	}
	if time.Since(r.emptiedAt) >= config.RoomIdleTimeout {
		r.Destroy()
	}
}

// Destroy closes the room and notifies the controller. Safe to call
// only from the room's own goroutine.
func (r *Room) Destroy() {
	if !r.Open {
		return
	}
	r.Open = false
	close(r.closed)
	if r.onDestroy != nil {
		r.onDestroy(r)
	}
}

// Emit implements game.Sink by fanning an event out to every
// player's and spectator's session (SPEC_FULL §4.9: spectators get the
// identical event stream).
func (r *Room) Emit(name string, data any) {
	for _, p := range r.Players.Items() {
		p.Session.Send(name, data)
	}
}

// Join adds p to the room, subject to capacity and open/in-progress
// rules (spec §4.7). Spectators may join a room whose Game is already
// running; non-spectators may not.
func (r *Room) Join(p *Player) error {
	if !r.Open {
		return ErrRoomClosed
	}
	if r.Game != nil && !p.Spectator {
		return ErrRoomClosed
	}
	if !p.Spectator && r.nonSpectatorCount() >= r.Cfg.MaxPlayers {
		return ErrRoomFull
	}
	if !r.Players.Add(p) {
		return ErrBadInput
	}
	r.emptiedAt = time.Time{}
	return nil
}

// Leave removes the player with id. If a Game is running, the
// corresponding avatar is flagged LeftMidGame rather than removed
// (spec §3's Lifecycles).
func (r *Room) Leave(id string) {
	p, ok := r.Players.Get(id)
	if !ok {
		return
	}
	r.Players.Remove(id)
	if r.Game != nil && p.AvatarID != "" {
		r.Game.MarkLeftMidGame(p.AvatarID)
	}
	if r.LeaderID == id {
		r.LeaderID = ""
		if items := r.Players.Items(); len(items) > 0 {
			r.LeaderID = items[0].ID
		}
	}
}

// SetReady sets the ready flag for the player with id.
func (r *Room) SetReady(id string, ready bool) error {
	p, ok := r.Players.Get(id)
	if !ok {
		return ErrNotInRoom
	}
	if p.Spectator {
		return ErrSpectator
	}
	p.Ready = ready
	return nil
}

// Configure mutates a leader-only config key (spec §4.7: "mutate
// config (leader only)").
func (r *Room) Configure(callerID, key string, value any) error {
	if callerID != r.LeaderID {
		return ErrNotLeader
	}
	if r.Game != nil {
		return ErrBadInput
	}
	switch key {
	case "maxPlayers":
		n, ok := asInt(value)
		if !ok || n < config.MinPlayersToStart {
			return ErrBadInput
		}
		r.Cfg.MaxPlayers = n
	case "bonusesEnabled":
		b, ok := value.(bool)
		if !ok {
			return ErrBadInput
		}
		r.Cfg.BonusesEnabled = b
	case "maxRoundScore":
		n, ok := asInt(value)
		if !ok || n < 1 {
			return ErrBadInput
		}
		r.Cfg.MaxRoundScore = n
	case "botsEnabled":
		b, ok := value.(bool)
		if !ok {
			return ErrBadInput
		}
		r.Cfg.BotsEnabled = b
	default:
		return ErrBadInput
	}
	return nil
}

func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Start spawns a Game from every non-spectator player, requiring at
// least config.MinPlayersToStart ready players unless SoloAllowed
// (spec §4.7, §8 boundary scenario 2).
func (r *Room) Start(seed int64) error {
	if r.Game != nil {
		return ErrBadInput
	}
	players := r.nonSpectatorPlayers()
	if len(players) < config.MinPlayersToStart && !config.SoloAllowed {
		return ErrNotEnoughPlayers
	}
	for _, p := range players {
		if !p.Ready {
			return ErrNotReady
		}
	}

	specs := make([]game.PlayerSpec, len(players))
	for i, p := range players {
		specs[i] = game.PlayerSpec{PlayerID: p.ID, Name: p.Name, Color: p.Color}
		p.AvatarID = p.ID
	}

	var botIDs []string
	if r.Cfg.BotsEnabled {
		for i := len(specs); i < config.BotFillTarget; i++ {
			id := "bot-" + strconv.Itoa(i)
			specs = append(specs, game.PlayerSpec{
				PlayerID: id,
				Name:     bot.Names[i%len(bot.Names)],
				Color:    bot.Colors[i%len(bot.Colors)],
			})
			botIDs = append(botIDs, id)
		}
	}

	r.Game = game.New(specs, r.Cfg.MaxRoundScore, seed, r, r.Cfg.BonusesEnabled)
	if len(botIDs) > 0 {
		r.bots = bot.New(r.Game, botIDs, seed)
	}
	r.Emit("game:start", nil)
	return nil
}

func (r *Room) nonSpectatorPlayers() []*Player {
	items := r.Players.Items()
	out := make([]*Player, 0, len(items))
	for _, p := range items {
		if !p.Spectator {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) nonSpectatorCount() int {
	n := 0
	for _, p := range r.Players.Items() {
		if !p.Spectator {
			n++
		}
	}
	return n
}
