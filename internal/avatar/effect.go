package avatar

import "time"

// Effect is one active bonus modifier on an avatar: its kind, remaining
// duration, and the revert half of an apply/revert pair (spec §9:
// "encode bonuses as a tagged variant set with an apply/revert pair of
// pure functions per variant"). PushEffect calls apply once and
// TickEffects calls Revert once on expiry, so scalar
// modifiers stack multiplicatively (each instance multiplies on apply
// and divides back on its own revert) and boolean modifiers stack via
// a refcount the apply/revert pair increments/decrements (spec §4.5,
// §8 scenario 4). Respawn drops pending effects without calling
// Revert; it resets the affected fields directly.
type Effect struct {
	Kind      string
	Remaining time.Duration
	Revert    func(*Avatar)
}

// PushEffect applies apply immediately and schedules revert to run
// when duration elapses (spec §4.5 "on pickup ... its effect is pushed
// on the target avatar's active-effects stack with a timer").
func (a *Avatar) PushEffect(kind string, duration time.Duration, apply, revert func(*Avatar)) {
	apply(a)
	a.effects = append(a.effects, &Effect{
		Kind:      kind,
		Remaining: duration,
		Revert:    revert,
	})
}

// ActiveEffects returns the currently active effects, for inspection
// (e.g. room/game snapshots) without exposing the revert closures.
func (a *Avatar) ActiveEffects() []string {
	kinds := make([]string, len(a.effects))
	for i, e := range a.effects {
		kinds[i] = e.Kind
	}
	return kinds
}

// TickEffects decrements every active effect's remaining duration by
// dt and reverts+removes any that have expired.
func (a *Avatar) TickEffects(dt time.Duration) {
	if len(a.effects) == 0 {
		return
	}
	kept := a.effects[:0]
	for _, e := range a.effects {
		e.Remaining -= dt
		if e.Remaining <= 0 {
			e.Revert(a)
			continue
		}
		kept = append(kept, e)
	}
	a.effects = kept
}

// Inverse/Borderless refcounts are mutated by the bonus package's
// apply/revert closures through these exported helpers — keeping the
// boolean state itself private to Avatar while letting bonus effects
// toggle it.
func (a *Avatar) AddInverse(delta int)    { a.inverseCount += delta }
func (a *Avatar) AddBorderless(delta int) { a.borderlessCount += delta }
