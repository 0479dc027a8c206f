package bonus

import (
	"math/rand"
	"testing"

	"github.com/curvytron/server/internal/avatar"
	"github.com/curvytron/server/internal/config"
	"github.com/curvytron/server/internal/spatial"
)

func newTestManager() (*Manager, *spatial.World) {
	w := spatial.NewWorld(4)
	counter := 0
	idGen := func() string {
		counter++
		return "bonus-" + string(rune('0'+counter))
	}
	return New(w, rand.New(rand.NewSource(1)), idGen), w
}

func TestManagerSpawnsAfterTimerElapses(t *testing.T) {
	m, w := newTestManager()
	m.spawnTimer = 1

	spawned, _ := m.Update()
	if len(spawned) != 1 {
		t.Fatalf("expected one bonus spawned, got %d", len(spawned))
	}
	if len(m.All()) != 1 {
		t.Fatalf("expected manager to track the spawned bonus")
	}
	if w.Len() != 1 {
		t.Fatalf("expected spawned bonus indexed in world, world.Len()=%d", w.Len())
	}
}

func TestManagerExpiresStaleBonuses(t *testing.T) {
	m, w := newTestManager()
	m.spawnTimer = 1
	spawned, _ := m.Update()
	b := spawned[0]
	b.Remaining = 1

	_, expired := m.Update()
	if len(expired) != 1 || expired[0].ID != b.ID {
		t.Fatalf("expected bonus %s to expire, got %v", b.ID, expired)
	}
	if _, ok := w.Get(b.ID); ok {
		t.Fatalf("expected expired bonus removed from world")
	}
}

func TestApplySelfScopeAffectsOnlyPicker(t *testing.T) {
	w := spatial.NewWorld(4)
	a1 := avatar.New("a1", "p1", "Alice", "#fff", 10, 10, 0, w)
	a2 := avatar.New("a2", "p2", "Bob", "#000", 20, 20, 0, w)
	all := []*avatar.Avatar{a1, a2}

	m := &Manager{world: w, rng: rand.New(rand.NewSource(1)), bonuses: map[string]*Bonus{}}
	b := newBonus("b1", SelfBig, 10, 10, 100)
	w.Insert(b.body)
	m.bonuses[b.ID] = b

	m.Apply(b, a1, all)

	if a1.Body().Radius == config.AvatarRadius {
		t.Fatalf("expected picker radius to change")
	}
	if a2.Body().Radius != config.AvatarRadius {
		t.Fatalf("expected non-picker untouched")
	}
	if _, ok := w.Get(b.ID); ok {
		t.Fatalf("expected bonus removed from world on pickup")
	}
}

func TestApplyOpponentScopeSkipsPickerAndDead(t *testing.T) {
	w := spatial.NewWorld(4)
	a1 := avatar.New("a1", "p1", "Alice", "#fff", 10, 10, 0, w)
	a2 := avatar.New("a2", "p2", "Bob", "#000", 20, 20, 0, w)
	a3 := avatar.New("a3", "p3", "Carl", "#0f0", 30, 30, 0, w)
	a3.Kill(w, 1)
	all := []*avatar.Avatar{a1, a2, a3}

	m := &Manager{world: w, rng: rand.New(rand.NewSource(1)), bonuses: map[string]*Bonus{}}
	b := newBonus("b1", EnemySlow, 10, 10, 100)
	w.Insert(b.body)
	m.bonuses[b.ID] = b

	pickerVelocity := a1.Velocity
	deadVelocity := a3.Velocity
	m.Apply(b, a1, all)

	if a1.Velocity != pickerVelocity {
		t.Fatalf("expected picker untouched by opponent-scoped bonus")
	}
	if a2.Velocity == pickerVelocity {
		t.Fatalf("expected opponent velocity to change")
	}
	if a3.Velocity != deadVelocity {
		t.Fatalf("expected dead avatar untouched")
	}
}

func TestApplyGameClearClearsTrailsImmediatelyWithoutEffectStack(t *testing.T) {
	w := spatial.NewWorld(4)
	a1 := avatar.New("a1", "p1", "Alice", "#fff", 10, 10, 0, w)
	idGen := func() string { return "trail" }
	a1.Printing = true
	a1.PrintingTimeout = 0
	a1.Step(1.0, 0) // move past MinPrintStep so MaybePrint deposits
	a1.MaybePrint(w, idGen, rand.New(rand.NewSource(1)))
	if len(a1.Trail()) == 0 {
		t.Fatalf("expected a trail body deposited before clearing")
	}

	all := []*avatar.Avatar{a1}
	m := &Manager{world: w, rng: rand.New(rand.NewSource(1)), bonuses: map[string]*Bonus{}}
	b := newBonus("b1", GameClear, 10, 10, 100)
	w.Insert(b.body)
	m.bonuses[b.ID] = b

	m.Apply(b, a1, all)

	if len(a1.Trail()) != 0 {
		t.Fatalf("expected trail cleared by GameClear, got %d bodies", len(a1.Trail()))
	}
	if len(a1.ActiveEffects()) != 0 {
		t.Fatalf("expected GameClear not to push an effect onto the stack")
	}
}
