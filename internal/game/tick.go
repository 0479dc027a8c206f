package game

import (
	"time"

	"github.com/curvytron/server/internal/avatar"
	"github.com/curvytron/server/internal/bonus"
	"github.com/curvytron/server/internal/config"
	"github.com/curvytron/server/internal/metrics"
	"github.com/curvytron/server/internal/spatial"
)

// PositionUpdate is the decimated per-avatar position sample broadcast
// at config.PositionBroadcastHz (spec §4.6, §4.8).
type PositionUpdate struct {
	AvatarID string  `json:"avatar"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// AngleUpdate is sent whenever an avatar's heading changes (spec
// §4.8's `angle` event, "on change").
type AngleUpdate struct {
	AvatarID string  `json:"avatar"`
	Angle    float64 `json:"angle"`
}

// DeathEvent is the `avatar:die` payload (spec §4.8).
type DeathEvent struct {
	AvatarID string  `json:"avatar"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

func (g *Game) tickRunning(dt float64) {
	effectDt := time.Duration(dt * float64(time.Second))

	outOfBounds := g.stepAvatars(dt)
	if g.bonusesOn {
		spawned, expired := g.Bonuses.Update()
		for _, b := range spawned {
			metrics.IncBonusSpawned()
			g.sink.Emit("bonus:pop", bonusPopPayload(b))
		}
		for _, b := range expired {
			metrics.IncBonusExpired()
			g.sink.Emit("bonus:clear", bonusClearPayload(b))
		}
	}

	deaths := g.resolveCollisions(outOfBounds)
	for _, a := range g.Avatars.Items() {
		a.TickEffects(effectDt)
	}

	for id := range deaths {
		a, ok := g.Avatars.Get(id)
		if !ok {
			continue
		}
		a.Kill(g.World, g.tickIndex)
		g.sink.Emit("avatar:die", DeathEvent{AvatarID: id, X: a.X, Y: a.Y})
	}

	g.broadcastPositions()
	g.broadcastAngles()

	if g.aliveCount() <= 1 {
		g.endRound()
	}
}

// stepAvatars runs spec §4.4 steps 2–3 and 5–7 for every alive avatar,
// returning which ones crossed a wall this tick. Re-indexing into the
// World happens here, after each avatar's own fields are updated but
// before any collision query, so every avatar's collision pass in
// resolveCollisions sees the tick's fully-updated positions (spec §4.3
// tie-break note).
func (g *Game) stepAvatars(dt float64) map[string]bool {
	outOfBounds := make(map[string]bool)
	for _, a := range g.Avatars.Items() {
		if !a.Alive {
			continue
		}
		turn := g.inputs[a.ID]
		if a.Step(dt, turn) {
			outOfBounds[a.ID] = true
		}
		a.MaybePrint(g.World, g.nextID, g.rng)
		g.World.Update(a.Body())
	}
	return outOfBounds
}

// resolveCollisions runs spec §4.4 step 6 for every alive avatar and
// collects the set of avatars that die this tick without killing any
// of them, so two avatars that collide head-on in the same tick both
// see each other (spec §4.3: "all dying avatars for this tick are
// collected, then applied atomically").
func (g *Game) resolveCollisions(outOfBounds map[string]bool) map[string]bool {
	deaths := make(map[string]bool)
	for _, a := range g.Avatars.Items() {
		if !a.Alive {
			continue
		}
		if outOfBounds[a.ID] && !a.Borderless() {
			deaths[a.ID] = true
		}
		for _, c := range a.CollisionCandidates(g.World) {
			if c.Kind == spatial.KindBonus {
				g.collectBonus(a, c)
				continue
			}
			// The avatar's own live body is already excluded by
			// World.Retrieve (cand.ID == b.ID), and its most recent own
			// trail bodies are already excluded by the grace window in
			// CollisionCandidates. Anything left through here — including
			// an avatar's own older trail — is lethal (spec §3, §4.4 step
			// 6).
			deaths[a.ID] = true
			metrics.IncCollision()
		}
	}
	return deaths
}

func (g *Game) collectBonus(picker *avatar.Avatar, body *spatial.Body) {
	b, ok := body.Data.(*bonus.Bonus)
	if !ok {
		return
	}
	g.Bonuses.Apply(b, picker, g.Avatars.Items())
	metrics.IncBonusCollected()
}

func bonusPopPayload(b *bonus.Bonus) any {
	return struct {
		ID   string  `json:"id"`
		Kind string  `json:"kind"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	}{ID: b.ID, Kind: b.Kind.String(), X: b.Body().X, Y: b.Body().Y}
}

func bonusClearPayload(b *bonus.Bonus) any {
	return struct {
		ID string `json:"id"`
	}{ID: b.ID}
}

func (g *Game) broadcastPositions() {
	g.ticksSincePosition++
	ticksPerBroadcast := config.TickRate / config.PositionBroadcastHz
	if g.ticksSincePosition < ticksPerBroadcast {
		return
	}
	g.ticksSincePosition = 0

	updates := make([]PositionUpdate, 0, g.Avatars.Len())
	for _, a := range g.Avatars.Items() {
		if !a.Alive {
			continue
		}
		updates = append(updates, PositionUpdate{AvatarID: a.ID, X: a.X, Y: a.Y})
	}
	g.sink.Emit("position", updates)
}

func (g *Game) broadcastAngles() {
	for _, a := range g.Avatars.Items() {
		if !a.Alive {
			continue
		}
		last, seen := g.angles[a.ID]
		if !seen || last != a.Angle {
			g.angles[a.ID] = a.Angle
			g.sink.Emit("angle", AngleUpdate{AvatarID: a.ID, Angle: a.Angle})
		}
	}
}

func (g *Game) aliveCount() int {
	n := 0
	for _, a := range g.Avatars.Items() {
		if a.Alive {
			n++
		}
	}
	return n
}
