package bonus

import (
	"time"

	"github.com/curvytron/server/internal/avatar"
	"github.com/curvytron/server/internal/config"
	"github.com/curvytron/server/internal/spatial"
)

// Definition is the apply/revert pair and metadata for one Kind (spec
// §9). Apply receives the world because the one instant effect
// (GameClear) needs it to remove trail bodies; scalar/boolean effects
// ignore it.
type Definition struct {
	Scope    Scope
	Duration time.Duration // 0 = instant, no revert scheduled
	Apply    func(target *avatar.Avatar, world *spatial.World)
	Revert   func(target *avatar.Avatar)
}

func scalarEffect(mult float64, get func(*avatar.Avatar) *float64) (
	apply func(*avatar.Avatar, *spatial.World), revert func(*avatar.Avatar),
) {
	apply = func(a *avatar.Avatar, _ *spatial.World) {
		p := get(a)
		*p *= mult
	}
	revert = func(a *avatar.Avatar) {
		p := get(a)
		*p /= mult
	}
	return apply, revert
}

// Registry maps every Kind to its Definition.
var Registry = buildRegistry()

func buildRegistry() map[Kind]Definition {
	velocity := func(a *avatar.Avatar) *float64 { return &a.Velocity }

	smallApply, smallRevert := radiusEffect(0.5)
	bigApply, bigRevert := radiusEffect(2.0)
	masterApply, masterRevert := scalarEffect(1.5, velocity)
	slowApply, slowRevert := scalarEffect(0.5, velocity)
	fastApply, fastRevert := scalarEffect(1.5, velocity)

	return map[Kind]Definition{
		SelfSmall: {
			Scope: ScopeSelf, Duration: config.BonusEffectDuration,
			Apply: smallApply, Revert: smallRevert,
		},
		SelfBig: {
			Scope: ScopeSelf, Duration: config.BonusEffectDuration,
			Apply: bigApply, Revert: bigRevert,
		},
		SelfMaster: {
			Scope: ScopeSelf, Duration: config.BonusEffectDuration,
			Apply: masterApply, Revert: masterRevert,
		},
		SelfSlow: {
			Scope: ScopeSelf, Duration: config.BonusEffectDuration,
			Apply: slowApply, Revert: slowRevert,
		},
		SelfFast: {
			Scope: ScopeSelf, Duration: config.BonusEffectDuration,
			Apply: fastApply, Revert: fastRevert,
		},
		EnemySlow: {
			Scope: ScopeOpponent, Duration: config.BonusEffectDuration,
			Apply: slowApply, Revert: slowRevert,
		},
		EnemyFast: {
			Scope: ScopeOpponent, Duration: config.BonusEffectDuration,
			Apply: fastApply, Revert: fastRevert,
		},
		EnemyBig: {
			Scope: ScopeOpponent, Duration: config.BonusEffectDuration,
			Apply: bigApply, Revert: bigRevert,
		},
		EnemyInverse: {
			Scope: ScopeOpponent, Duration: config.BonusEffectDuration,
			Apply: func(a *avatar.Avatar, _ *spatial.World) { a.AddInverse(1) },
			Revert: func(a *avatar.Avatar) { a.AddInverse(-1) },
		},
		AllBorderless: {
			Scope: ScopeAll, Duration: config.BonusEffectDuration,
			Apply: func(a *avatar.Avatar, _ *spatial.World) { a.AddBorderless(1) },
			Revert: func(a *avatar.Avatar) { a.AddBorderless(-1) },
		},
		GameClear: {
			Scope: ScopeAll, Duration: 0,
			Apply: func(a *avatar.Avatar, world *spatial.World) { a.ClearTrail(world) },
			Revert: func(*avatar.Avatar) {},
		},
	}
}

// radiusEffect scales and restores Avatar.Radius by mutating the live
// body's radius through the avatar's own body accessor, since Radius
// is not an exported scalar field the way Velocity is (spec §4.4
// step 1 lists radius among the bonus-affected attributes).
func radiusEffect(mult float64) (apply func(*avatar.Avatar, *spatial.World), revert func(*avatar.Avatar)) {
	apply = func(a *avatar.Avatar, _ *spatial.World) {
		a.Body().Radius *= mult
	}
	revert = func(a *avatar.Avatar) {
		a.Body().Radius /= mult
	}
	return apply, revert
}
