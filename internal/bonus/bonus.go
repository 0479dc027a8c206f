package bonus

import (
	"github.com/curvytron/server/internal/config"
	"github.com/curvytron/server/internal/spatial"
)

// Bonus is one spawned, not-yet-collected board pickup. Its Body lives
// in the shared World like any other collidable so avatars discover it
// through the same CollisionCandidates path used for trails (spec
// §4.5: "bonuses occupy a body slot in the world like any other
// collidable").
type Bonus struct {
	ID   string
	Kind Kind
	body *spatial.Body

	// Remaining is ticks left before this bonus expires uncollected.
	Remaining int
}

func newBonus(id string, kind Kind, x, y float64, lifetimeTicks int) *Bonus {
	b := &Bonus{
		ID:        id,
		Kind:      kind,
		Remaining: lifetimeTicks,
	}
	b.body = &spatial.Body{
		ID:      id,
		X:       x,
		Y:       y,
		Radius:  config.BonusRadius,
		Kind:    spatial.KindBonus,
		OwnerID: id,
		Data:    b,
	}
	return b
}

// Body returns the bonus's collision circle.
func (b *Bonus) Body() *spatial.Body { return b.body }

// Identifier satisfies collection.Item.
func (b *Bonus) Identifier() string { return b.ID }
