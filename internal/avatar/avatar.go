// Package avatar implements one player's controllable entity: angle,
// velocity, printing state, and trail bodies (spec §3, §4.4). An Avatar
// never reaches into another Avatar or the Game; it only mutates its
// own fields and the World passed to it. An Avatar keeps direct
// pointers to its own Body and its trail Bodies (not ids), and its
// own Body carries the Avatar back in Data.
package avatar

import (
	"math"
	"math/rand"

	"github.com/curvytron/server/internal/config"
	"github.com/curvytron/server/internal/spatial"
)

// Avatar is the server-authoritative representation of one player's
// in-game entity (GLOSSARY).
type Avatar struct {
	ID       string
	PlayerID string
	Name     string
	Color    string

	X, Y            float64
	Angle           float64
	Velocity        float64
	AngularVelocity float64

	Printing        bool
	PrintingTimeout int // ticks remaining until next print toggle
	LastPrintedX    float64
	LastPrintedY    float64

	body  *spatial.Body
	trail []*spatial.Body

	Score      int
	RoundScore int
	Alive      bool
	Ready      bool

	// LeftMidGame marks a player who disconnected mid-round. The avatar
	// keeps simulating (spec §3 Lifecycles) so trail/collision logic
	// stays consistent; it is simply never resurrected into a new round.
	LeftMidGame bool

	// DeathTick records the tick index at which this avatar died this
	// round, used for round-end scoring (spec §4.6). Zero means alive.
	DeathTick int

	effects []*Effect

	inverseCount    int
	borderlessCount int
}

// New creates an avatar at the given spawn position, with default
// kinematics from config, and inserts its live body into world.
func New(id, playerID, name, color string, x, y, angle float64, world *spatial.World) *Avatar {
	a := &Avatar{
		ID:              id,
		PlayerID:        playerID,
		Name:            name,
		Color:           color,
		X:               x,
		Y:               y,
		Angle:           angle,
		Velocity:        config.DefaultVelocity,
		AngularVelocity: config.DefaultAngularVelocity,
		Alive:           true,
		LastPrintedX:    x,
		LastPrintedY:    y,
		PrintingTimeout: config.GapInterval,
	}
	a.body = &spatial.Body{
		ID:      id,
		X:       x,
		Y:       y,
		Radius:  config.AvatarRadius,
		Kind:    spatial.KindAvatar,
		OwnerID: id,
		Data:    a,
	}
	world.Insert(a.body)
	return a
}

// Identifier satisfies collection.Item so Game can keep avatars in a
// collection.Collection and get add/remove broadcasts for free.
func (a *Avatar) Identifier() string { return a.ID }

// Body returns the avatar's own live collision circle.
func (a *Avatar) Body() *spatial.Body { return a.body }

// Trail returns the avatar's deposited trail bodies, oldest first.
func (a *Avatar) Trail() []*spatial.Body { return a.trail }

func (a *Avatar) Borderless() bool { return a.borderlessCount > 0 }
func (a *Avatar) Inverse() bool    { return a.inverseCount > 0 }

// Step applies spec §4.4 steps 2–3 (turning and translation) for one
// tick of duration dt, and reports whether the new position crosses a
// wall. It moves a.Body()'s coordinates but not its place in the
// World's grid — the caller re-indexes it via World.Update after the
// step.
func (a *Avatar) Step(dt float64, inputTurn int) (outOfBounds bool) {
	turn := float64(inputTurn)
	if a.Inverse() {
		turn = -turn
	}
	a.Angle += a.AngularVelocity * turn * dt
	a.X += math.Cos(a.Angle) * a.Velocity * dt
	a.Y += math.Sin(a.Angle) * a.Velocity * dt

	a.body.X, a.body.Y = a.X, a.Y

	r := a.body.Radius
	outOfBounds = a.X < r || a.X > config.BoardSize-r || a.Y < r || a.Y > config.BoardSize-r
	return outOfBounds
}

// MaybePrint deposits a trail body if printing and the avatar has
// moved at least MinPrintStep since the last deposit, then ticks the
// print/gap toggle timer (spec §4.4 steps 5 and 7). rng is the Game's
// shared deterministic source (spec §4.4: "a central deterministic RNG
// seeded per-game").
func (a *Avatar) MaybePrint(world *spatial.World, trailIDGen func() string, rng *rand.Rand) {
	if a.Printing {
		dx := a.X - a.LastPrintedX
		dy := a.Y - a.LastPrintedY
		if dx*dx+dy*dy >= config.MinPrintStep*config.MinPrintStep {
			midX := (a.X + a.LastPrintedX) / 2
			midY := (a.Y + a.LastPrintedY) / 2
			tb := &spatial.Body{
				ID:      trailIDGen(),
				X:       midX,
				Y:       midY,
				Radius:  a.body.Radius * config.TrailWidthFactor,
				Kind:    spatial.KindTrail,
				OwnerID: a.ID,
			}
			world.Insert(tb)
			a.trail = append(a.trail, tb)
			a.LastPrintedX, a.LastPrintedY = a.X, a.Y
		}
	}

	a.PrintingTimeout--
	if a.PrintingTimeout <= 0 {
		a.Printing = !a.Printing
		a.PrintingTimeout = nextPrintTimeout(a.Printing, rng)
	}
}

// nextPrintTimeout draws the next toggle interval per spec §4.4's
// random print timing distributions.
func nextPrintTimeout(printing bool, rng *rand.Rand) int {
	if printing {
		pi := config.PrintInterval
		lo := int(float64(pi) * 0.25)
		hi := int(float64(pi) * 0.75)
		return lo + rng.Intn(hi-lo+1)
	}
	gi := config.GapInterval
	lo := int(float64(gi) * 0.5)
	hi := int(float64(gi) * 1.5)
	return lo + rng.Intn(hi-lo+1)
}

// CollisionCandidates returns the bodies overlapping the avatar's live
// body, excluding the avatar's own most recent trail-grace-window
// bodies (spec §4.4 step 6: "excluding the avatar's own body and its
// most recent K trail bodies").
func (a *Avatar) CollisionCandidates(world *spatial.World) []*spatial.Body {
	exclude := make(map[string]bool, config.TrailGraceSegments)
	n := len(a.trail)
	start := n - config.TrailGraceSegments
	if start < 0 {
		start = 0
	}
	for _, tb := range a.trail[start:] {
		exclude[tb.ID] = true
	}

	candidates := world.GetBodies(a.body)
	out := candidates[:0]
	for _, c := range candidates {
		if !exclude[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// Kill marks the avatar dead at the given tick and removes its live
// body from world; its trail bodies remain until round end (spec §3).
func (a *Avatar) Kill(world *spatial.World, atTick int) {
	if !a.Alive {
		return
	}
	a.Alive = false
	a.DeathTick = atTick
	world.Remove(a.body.ID)
}

// ClearTrail removes every trail body from world (used on NewRound and
// on the BonusGameClear instant effect, spec §4.5/§4.6).
func (a *Avatar) ClearTrail(world *spatial.World) {
	for _, tb := range a.trail {
		world.Remove(tb.ID)
	}
	a.trail = a.trail[:0]
}

// Respawn resets kinematic and round-scoped state for a NewRound
// transition (spec §4.6) while preserving match Score.
func (a *Avatar) Respawn(world *spatial.World, x, y, angle float64) {
	a.ClearTrail(world)
	a.X, a.Y, a.Angle = x, y, angle
	a.Velocity = config.DefaultVelocity
	a.AngularVelocity = config.DefaultAngularVelocity
	a.Printing = false
	a.PrintingTimeout = config.GapInterval
	a.LastPrintedX, a.LastPrintedY = x, y
	a.RoundScore = 0
	a.Alive = true
	a.DeathTick = 0
	a.inverseCount, a.borderlessCount = 0, 0
	a.effects = a.effects[:0]
	a.body.X, a.body.Y, a.body.Radius = x, y, config.AvatarRadius
	world.Remove(a.body.ID)
	world.Insert(a.body)
}
