// Package game implements the active round simulation: the Game owns
// the Avatars, the World, the BonusManager, the tick timer, the round
// index, and the Warmup/Running/RoundEnd state machine (spec §3, §4.6).
package game

import (
	"math"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/curvytron/server/internal/avatar"
	"github.com/curvytron/server/internal/bonus"
	"github.com/curvytron/server/internal/collection"
	"github.com/curvytron/server/internal/config"
	"github.com/curvytron/server/internal/spatial"
)

// State is a node in the round state machine (spec §4.6's diagram).
type State int

const (
	StateWarmup State = iota
	StateRunning
	StateRoundEnd
	StateMatchEnd
)

// PlayerSpec is the minimal identity Game needs to create an avatar
// for a joined player; Room owns the richer Player type.
type PlayerSpec struct {
	PlayerID string
	Name     string
	Color    string
}

// Game is bound 1:1 to a Room during a match (spec §3).
type Game struct {
	sink Sink
	rng  *rand.Rand

	World   *spatial.World
	Avatars *collection.Collection[*avatar.Avatar]
	Bonuses *bonus.Manager

	MaxRoundScore int
	bonusesOn     bool

	state     State
	round     int
	tickIndex int

	warmupRemaining   time.Duration
	roundEndRemaining time.Duration

	inputs map[string]int // avatarID -> latest inputTurn
	angles map[string]float64

	ticksSincePosition int

	idCounter atomic.Int64

	// LeftMidGame avatar ids are skipped when a NewRound respawns
	// avatars, per spec §3's Lifecycles note.
	leftMidGame map[string]bool

	Done bool
}

// New creates a Game for the given players, seeded deterministically
// from seed (spec §4.4: "a central deterministic RNG seeded per-game
// ensures reproducibility for tests").
func New(players []PlayerSpec, maxRoundScore int, seed int64, sink Sink, bonusesOn bool) *Game {
	g := &Game{
		sink:          sink,
		rng:           rand.New(rand.NewSource(seed)),
		World:         spatial.NewWorld(2 * config.AvatarRadius * 8),
		Avatars:       collection.New[*avatar.Avatar](),
		MaxRoundScore: maxRoundScore,
		bonusesOn:     bonusesOn,
		inputs:        make(map[string]int),
		angles:        make(map[string]float64),
		leftMidGame:   make(map[string]bool),
	}
	g.Bonuses = bonus.New(g.World, g.rng, g.nextID)

	for _, p := range players {
		g.spawnAvatar(p)
	}

	g.state = StateWarmup
	g.warmupRemaining = config.WarmupDuration
	return g
}

func (g *Game) nextID() string {
	n := g.idCounter.Add(1)
	return "b" + strconv.FormatInt(n, 10)
}

func (g *Game) spawnAvatar(p PlayerSpec) *avatar.Avatar {
	x, y, angle := g.randomSpawn()
	a := avatar.New(p.PlayerID, p.PlayerID, p.Name, p.Color, x, y, angle, g.World)
	g.Avatars.Add(a)
	return a
}

func (g *Game) randomSpawn() (x, y, angle float64) {
	margin := config.AvatarRadius * 4
	x = margin + g.rng.Float64()*(config.BoardSize-2*margin)
	y = margin + g.rng.Float64()*(config.BoardSize-2*margin)
	angle = g.rng.Float64() * 2 * math.Pi
	return x, y, angle
}

// SetInput records the latest turn input for an avatar (spec §4.4:
// "the server accepts the latest value; older inputs are not
// replayed").
func (g *Game) SetInput(avatarID string, turn int) {
	if turn < -1 {
		turn = -1
	}
	if turn > 1 {
		turn = 1
	}
	g.inputs[avatarID] = turn
}

// MarkLeftMidGame flags an avatar whose session disconnected mid-round
// (spec §3's Lifecycles: "the avatar remains in the simulation until
// it dies"). It does not remove the avatar.
func (g *Game) MarkLeftMidGame(avatarID string) {
	g.leftMidGame[avatarID] = true
	if a, ok := g.Avatars.Get(avatarID); ok {
		a.LeftMidGame = true
	}
}

// State returns the current round-machine state.
func (g *Game) State() State { return g.state }

// Round returns the current round index, starting at 0.
func (g *Game) Round() int { return g.round }

// Tick advances the simulation by exactly config.TickDt, regardless of
// elapsed wall-clock time (spec §9: "each tick still advances
// simulation by exactly Δt — never by the measured elapsed time").
func (g *Game) Tick() {
	if g.Done {
		return
	}
	dt := config.TickDt
	switch g.state {
	case StateWarmup:
		g.tickWarmup(dt)
	case StateRunning:
		g.tickIndex++
		g.tickRunning(dt)
	case StateRoundEnd:
		g.tickRoundEnd(dt)
	case StateMatchEnd:
		// terminal; Room tears the Game down.
	}
}

func (g *Game) tickWarmup(dt float64) {
	g.warmupRemaining -= time.Duration(dt * float64(time.Second))
	if g.warmupRemaining <= 0 {
		g.state = StateRunning
		g.tickIndex = 0
		g.sink.Emit("round:new", RoundNewSummary{Round: g.round})
	}
}
