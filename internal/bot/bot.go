// Package bot drives AI-controlled avatars through the same
// SetInput/tick contract as a player session, so a bot-filled seat is
// indistinguishable from a slow human to the rest of the simulation
// (SPEC_FULL §C). The priority ladder — boundary avoidance, then
// danger avoidance, then bonus seeking, then wander — is grounded on
// the teacher's decideBotInput (bot.go), generalized from a snake's
// head-position steering toward a target point to an arena avatar's
// discrete inputTurn ∈ {-1,0,1}.
package bot

import (
	"math"
	"math/rand"

	"github.com/curvytron/server/internal/config"
	"github.com/curvytron/server/internal/game"
	"github.com/curvytron/server/internal/spatial"
)

// Names is the pool bot avatars draw their display name from, cycled
// in order so a room never has two bots with the same name.
var Names = []string{
	"Vertex", "Static", "Glitch", "Cutoff", "Feedback", "Tangent",
	"Skew", "Drift", "Rebound", "Echo", "Hollow", "Ember",
}

// Colors is the pool bot avatars draw their trail color from.
var Colors = []string{
	"#e05252", "#52a3e0", "#7be052", "#e0d052", "#a352e0", "#e0852e",
}

const (
	boundaryMargin = config.AvatarRadius * 6 // start steering to center inside this band
	dangerRadius   = 3.0                     // look-ahead radius for trail/avatar avoidance
	dangerCone     = math.Pi / 4             // half-angle of the "ahead" cone that counts as danger
	bonusSeekRange = 12.0
	turnDeadband   = 0.05 // radians; below this, hold straight rather than jitter
)

type botState struct {
	avatarID    string
	wanderTicks int
	targetAngle float64
}

// Controller steers every bot avatar of one Game per tick. It holds no
// reference to Room or session state — Room only tells it which
// avatar ids are bot-owned.
type Controller struct {
	g    *game.Game
	rng  *rand.Rand
	bots []*botState
}

// New creates a Controller for the bot avatars in avatarIDs, seeded
// from seed so bot behavior is reproducible alongside the rest of the
// game's deterministic RNG (spec §4.4).
func New(g *game.Game, avatarIDs []string, seed int64) *Controller {
	c := &Controller{g: g, rng: rand.New(rand.NewSource(seed ^ 0x626f7473))}
	for _, id := range avatarIDs {
		c.bots = append(c.bots, &botState{avatarID: id, wanderTicks: c.wanderDuration()})
	}
	return c
}

// Tick computes and submits this tick's inputTurn for every bot
// avatar still alive. Call once per Game.Tick, before it runs.
func (c *Controller) Tick() {
	for _, bs := range c.bots {
		a, ok := c.g.Avatars.Get(bs.avatarID)
		if !ok || !a.Alive {
			continue
		}
		target := c.decide(bs, a.X, a.Y, a.Angle)
		c.g.SetInput(bs.avatarID, turnToward(a.Angle, target))
	}
}

func (c *Controller) decide(bs *botState, x, y, angle float64) float64 {
	// Priority 1: boundary avoidance — steer toward board center.
	if x < boundaryMargin || x > config.BoardSize-boundaryMargin ||
		y < boundaryMargin || y > config.BoardSize-boundaryMargin {
		center := config.BoardSize / 2
		bs.targetAngle = math.Atan2(center-y, center-x)
		bs.wanderTicks = c.wanderDuration()
		return bs.targetAngle
	}

	// Priority 2: danger avoidance — any body ahead within dangerRadius
	// that isn't this avatar's own live body.
	probe := &spatial.Body{X: x, Y: y, Radius: dangerRadius}
	for _, body := range c.g.World.Retrieve(probe) {
		if body.ID == bs.avatarID {
			continue
		}
		dx, dy := body.X-x, body.Y-y
		dist := math.Hypot(dx, dy)
		if dist > dangerRadius {
			continue
		}
		bearing := normalizeAngle(math.Atan2(dy, dx) - angle)
		if math.Abs(bearing) < dangerCone {
			bs.targetAngle = angle - math.Copysign(math.Pi/2, bearing)
			bs.wanderTicks = c.wanderDuration()
			return bs.targetAngle
		}
	}

	// Priority 3: bonus seeking — steer toward the nearest bonus body
	// within range, generalizing the teacher's food-seeking priority.
	bonusProbe := &spatial.Body{X: x, Y: y, Radius: bonusSeekRange}
	bestDist := math.MaxFloat64
	var bestAngle float64
	found := false
	for _, body := range c.g.World.Retrieve(bonusProbe) {
		if body.Kind != spatial.KindBonus {
			continue
		}
		dx, dy := body.X-x, body.Y-y
		dist := math.Hypot(dx, dy)
		if dist < bestDist {
			bestDist = dist
			bestAngle = math.Atan2(dy, dx)
			found = true
		}
	}
	if found {
		bs.targetAngle = bestAngle
		return bs.targetAngle
	}

	// Priority 4: wander — hold a random heading for a random duration.
	bs.wanderTicks--
	if bs.wanderTicks <= 0 {
		bs.targetAngle = c.rng.Float64() * 2 * math.Pi
		bs.wanderTicks = c.wanderDuration()
	}
	return bs.targetAngle
}

func (c *Controller) wanderDuration() int {
	return 60 + c.rng.Intn(61)
}

// turnToward picks the discrete input (spec §4.4's inputTurn ∈
// {-1,0,1}) that rotates current toward target by the shorter way.
func turnToward(current, target float64) int {
	delta := normalizeAngle(target - current)
	if math.Abs(delta) < turnDeadband {
		return 0
	}
	if delta > 0 {
		return 1
	}
	return -1
}

// normalizeAngle wraps a into [-π, π].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
