package spatial

// Body is a circular collision primitive: position, radius, and an
// opaque data payload identifying what it represents (spec §3, §4.3).
// Bodies are value-free beyond geometry and identity; Avatar/BonusManager
// attach their own domain types via Data.
type Body struct {
	ID      string
	X, Y    float64
	Radius  float64
	Kind    Kind
	OwnerID string // avatar id for own/trail bodies; bonus id for bonus bodies
	Data    any
}

// Kind distinguishes bodies for collision-resolution purposes without
// a dynamic-dispatch lookup (spec §9: "tagged variant set" preference
// over attribute dispatch, applied here to body classification).
type Kind int

const (
	KindAvatar Kind = iota
	KindTrail
	KindBonus
)

// Overlaps reports circle-vs-circle overlap: dx²+dy² ≤ (r1+r2)² (spec §4.3).
func (b *Body) Overlaps(other *Body) bool {
	dx := b.X - other.X
	dy := b.Y - other.Y
	sumR := b.Radius + other.Radius
	return dx*dx+dy*dy <= sumR*sumR
}

// BoundingBox returns [minX, minY, maxX, maxY].
func (b *Body) BoundingBox() (minX, minY, maxX, maxY float64) {
	return b.X - b.Radius, b.Y - b.Radius, b.X + b.Radius, b.Y + b.Radius
}
