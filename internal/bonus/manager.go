package bonus

import (
	"math/rand"

	"github.com/curvytron/server/internal/avatar"
	"github.com/curvytron/server/internal/config"
	"github.com/curvytron/server/internal/spatial"
)

// Manager owns the set of spawned-but-uncollected bonuses for one
// running game, grounded on the teacher's food spawning/maintenance
// split (world.go's MaintainFoodCount / food.go's NewFoodCluster)
// generalized from food items to bonus kinds.
type Manager struct {
	world   *spatial.World
	rng     *rand.Rand
	idGen   func() string
	bonuses map[string]*Bonus

	spawnTimer int // ticks remaining until next spawn attempt
}

// New creates a bonus manager bound to world, using rng for every
// random draw (spawn position, kind, and next spawn delay) so a game's
// bonus sequence is reproducible from its seed (spec §4.4's shared
// deterministic RNG, extended to bonuses).
func New(world *spatial.World, rng *rand.Rand, idGen func() string) *Manager {
	m := &Manager{
		world:   world,
		rng:     rng,
		idGen:   idGen,
		bonuses: make(map[string]*Bonus),
	}
	m.resetSpawnTimer()
	return m
}

func (m *Manager) resetSpawnTimer() {
	lo := int(config.BonusSpawnDelayMin.Seconds() * config.TickRate)
	hi := int(config.BonusSpawnDelayMax.Seconds() * config.TickRate)
	m.spawnTimer = lo + m.rng.Intn(hi-lo+1)
}

// All returns every currently spawned bonus.
func (m *Manager) All() []*Bonus {
	out := make([]*Bonus, 0, len(m.bonuses))
	for _, b := range m.bonuses {
		out = append(out, b)
	}
	return out
}

// Update advances spawn timing and bonus lifetimes by one tick,
// spawning a new bonus when the timer elapses and expiring stale ones.
// Returns the bonuses that spawned and expired this tick, for the
// caller to broadcast bonus:pop / bonus:clear.
func (m *Manager) Update() (spawned, expired []*Bonus) {
	for id, b := range m.bonuses {
		b.Remaining--
		if b.Remaining <= 0 {
			m.world.Remove(id)
			delete(m.bonuses, id)
			expired = append(expired, b)
		}
	}

	m.spawnTimer--
	if m.spawnTimer <= 0 {
		b := m.spawn()
		spawned = append(spawned, b)
		m.resetSpawnTimer()
	}
	return spawned, expired
}

// maxSpawnAttempts bounds the position-rejection retry below; the
// board is large relative to a bonus's radius, so collisions on the
// first draw are rare and this loop is not expected to exhaust.
const maxSpawnAttempts = 8

func (m *Manager) spawn() *Bonus {
	kind := AllKinds[m.rng.Intn(len(AllKinds))]
	lifetime := int(config.BonusLifetime.Seconds() * config.TickRate)
	id := m.idGen()

	var b *Bonus
	for attempt := 0; attempt < maxSpawnAttempts; attempt++ {
		x := m.rng.Float64() * config.BoardSize
		y := m.rng.Float64() * config.BoardSize
		candidate := newBonus(id, kind, x, y, lifetime)
		if m.world.GetBody(candidate.body) == nil {
			b = candidate
			break
		}
	}
	if b == nil {
		// every draw overlapped something; spawn anyway rather than
		// stall the timer indefinitely (spec §4.5 has no "skip" case).
		x := m.rng.Float64() * config.BoardSize
		y := m.rng.Float64() * config.BoardSize
		b = newBonus(id, kind, x, y, lifetime)
	}

	m.bonuses[b.ID] = b
	m.world.Insert(b.body)
	return b
}

// Apply credits a pickup to picker, removing the bonus from the world
// immediately so a later collision candidate in the same tick can
// never double-credit it (spec §4.5: "on pickup the bonus is removed
// from the world immediately"), then runs its definition against the
// scoped set of avatars drawn from all.
func (m *Manager) Apply(b *Bonus, picker *avatar.Avatar, all []*avatar.Avatar) {
	delete(m.bonuses, b.ID)
	m.world.Remove(b.ID)

	def, ok := Registry[b.Kind]
	if !ok {
		return
	}

	targets := m.targetsFor(def.Scope, picker, all)
	for _, target := range targets {
		if def.Duration <= 0 {
			def.Apply(target, m.world)
			continue
		}
		world := m.world
		apply := func(a *avatar.Avatar) { def.Apply(a, world) }
		revert := func(a *avatar.Avatar) { def.Revert(a) }
		target.PushEffect(b.Kind.String(), def.Duration, apply, revert)
	}
}

func (m *Manager) targetsFor(scope Scope, picker *avatar.Avatar, all []*avatar.Avatar) []*avatar.Avatar {
	switch scope {
	case ScopeSelf:
		return []*avatar.Avatar{picker}
	case ScopeOpponent:
		out := make([]*avatar.Avatar, 0, len(all))
		for _, a := range all {
			if a.Alive && a.ID != picker.ID {
				out = append(out, a)
			}
		}
		return out
	case ScopeAll:
		out := make([]*avatar.Avatar, 0, len(all))
		for _, a := range all {
			if a.Alive {
				out = append(out, a)
			}
		}
		return out
	default:
		return nil
	}
}
