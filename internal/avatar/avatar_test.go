package avatar

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/curvytron/server/internal/spatial"
)

func newTestWorld() *spatial.World {
	return spatial.NewWorld(4)
}

func TestStepMovesAlongAngle(t *testing.T) {
	w := newTestWorld()
	a := New("a1", "p1", "Alice", "#fff", 50, 50, 0, w)
	a.Velocity = 10

	a.Step(1.0, 0)

	if math.Abs(a.X-60) > 1e-9 {
		t.Fatalf("X = %v, want 60", a.X)
	}
	if math.Abs(a.Y-50) > 1e-9 {
		t.Fatalf("Y = %v, want 50", a.Y)
	}
}

func TestStepDetectsWallCrossing(t *testing.T) {
	w := newTestWorld()
	a := New("a1", "p1", "Alice", "#fff", 0.7, 50, math.Pi, w) // heading left
	a.Velocity = 15

	var out bool
	for i := 0; i < 10; i++ {
		out = a.Step(1.0/60.0, 0)
		if out {
			break
		}
	}
	if !out {
		t.Fatalf("expected avatar to cross wall heading left from x=0.7")
	}
	if a.X > 0.65 {
		t.Fatalf("expected x to have crossed near the wall, got %v", a.X)
	}
}

func TestBorderlessSuppressesWallDeathDecision(t *testing.T) {
	w := newTestWorld()
	a := New("a1", "p1", "Alice", "#fff", 0.7, 50, math.Pi, w)
	a.Velocity = 15
	a.AddBorderless(1)

	out := a.Step(1.0, 0)
	if !out {
		t.Fatalf("Step should still report crossing geometrically")
	}
	if !a.Borderless() {
		t.Fatalf("expected Borderless() true")
	}
	// Caller is responsible for consulting Borderless() before killing;
	// Step itself only reports geometry.
}

func TestInverseFlipsTurnDirection(t *testing.T) {
	w := newTestWorld()
	a := New("a1", "p1", "Alice", "#fff", 50, 50, 0, w)
	a.AngularVelocity = 1.0

	a.Step(1.0, 1)
	angleNormal := a.Angle

	b := New("a2", "p2", "Bob", "#000", 50, 50, 0, w)
	b.AngularVelocity = 1.0
	b.AddInverse(1)
	b.Step(1.0, 1)

	if math.Abs(angleNormal+b.Angle) > 1e-9 {
		t.Fatalf("expected inverse to flip the turn sign: normal=%v inverse=%v", angleNormal, b.Angle)
	}
}

func TestMaybePrintDepositsTrailAfterMinStep(t *testing.T) {
	w := newTestWorld()
	a := New("a1", "p1", "Alice", "#fff", 50, 50, 0, w)
	a.Printing = true
	a.PrintingTimeout = 1_000_000 // keep printing on for this test
	a.Velocity = 10

	counter := 0
	idGen := func() string {
		counter++
		return "trail-" + string(rune('0'+counter))
	}
	rng := rand.New(rand.NewSource(1))

	ticks := 0
	for len(a.trail) == 0 && ticks < 100 {
		a.Step(1.0/60.0, 0)
		w.Update(a.Body())
		a.MaybePrint(w, idGen, rng)
		ticks++
	}

	if len(a.trail) == 0 {
		t.Fatalf("expected at least one trail body deposited")
	}
}

func TestCollisionCandidatesExcludeOwnGraceWindow(t *testing.T) {
	w := newTestWorld()
	a := New("a1", "p1", "Alice", "#fff", 50, 50, 0, w)

	idGen := func() string {
		return "t"
	}
	// Manually seed trail bodies right under the avatar to simulate a
	// just-printed neck.
	for i := 0; i < 3; i++ {
		tb := &spatial.Body{ID: "neck" + string(rune('0'+i)), X: 50, Y: 50, Radius: 0.6, Kind: spatial.KindTrail, OwnerID: a.ID}
		w.Insert(tb)
		a.trail = append(a.trail, tb)
	}
	_ = idGen

	candidates := a.CollisionCandidates(w)
	if len(candidates) != 0 {
		t.Fatalf("expected grace window to exclude all own recent trail, got %d candidates", len(candidates))
	}
}

func TestPushEffectStacksScalarMultiplicatively(t *testing.T) {
	w := newTestWorld()
	a := New("a1", "p1", "Alice", "#fff", 50, 50, 0, w)
	base := a.Velocity

	apply := func(av *Avatar) { av.Velocity *= 0.5 }
	revert := func(av *Avatar) { av.Velocity /= 0.5 }

	a.PushEffect("self_slow", time.Second, apply, revert)
	a.PushEffect("self_slow", time.Second, apply, revert)

	if math.Abs(a.Velocity-base*0.25) > 1e-9 {
		t.Fatalf("Velocity = %v, want %v", a.Velocity, base*0.25)
	}

	a.TickEffects(2 * time.Second)
	if math.Abs(a.Velocity-base) > 1e-9 {
		t.Fatalf("after both effects expire Velocity = %v, want %v", a.Velocity, base)
	}
}

func TestPushEffectBooleanRefcountsUntilZero(t *testing.T) {
	w := newTestWorld()
	a := New("a1", "p1", "Alice", "#fff", 50, 50, 0, w)

	apply := func(av *Avatar) { av.AddInverse(1) }
	revert := func(av *Avatar) { av.AddInverse(-1) }

	a.PushEffect("enemy_inverse", time.Second, apply, revert)
	a.PushEffect("enemy_inverse", 2*time.Second, apply, revert)

	if !a.Inverse() {
		t.Fatalf("expected Inverse() true with two stacked effects")
	}

	a.TickEffects(time.Second) // first expires
	if !a.Inverse() {
		t.Fatalf("expected Inverse() still true with one effect remaining")
	}

	a.TickEffects(time.Second) // second expires
	if a.Inverse() {
		t.Fatalf("expected Inverse() false once both effects expired")
	}
}

func TestKillRemovesBodyButKeepsTrail(t *testing.T) {
	w := newTestWorld()
	a := New("a1", "p1", "Alice", "#fff", 50, 50, 0, w)
	idGen := func() string { return "trail-x" }
	rng := rand.New(rand.NewSource(1))
	a.Printing = true
	a.PrintingTimeout = 0
	a.Step(1.0, 0) // move past MinPrintStep so MaybePrint deposits
	a.MaybePrint(w, idGen, rng)
	trailCountBefore := len(a.trail)
	if trailCountBefore == 0 {
		t.Fatalf("expected a trail body deposited before Kill")
	}

	a.Kill(w, 10)

	if a.Alive {
		t.Fatalf("expected Alive=false after Kill")
	}
	if _, ok := w.Get(a.Body().ID); ok {
		t.Fatalf("expected live body removed from world after Kill")
	}
	if len(a.trail) != trailCountBefore {
		t.Fatalf("expected trail to survive Kill")
	}
}
