package spatial

import "math"

type cellKey struct {
	cx, cy int
}

// World is an integer grid of bodies, cell size ≥ 2·max-body-radius
// (spec §4.3). Dynamic bodies (an avatar's own live body) are
// re-indexed every tick via Update; static bodies (trail, bonus) are
// indexed once at insertion and removed once at expiry.
type World struct {
	cellSize float64
	cells    map[cellKey][]*Body
	bodies   map[string]*Body
	cellsOf  map[string][]cellKey
}

// NewWorld creates an empty world with the given grid cell size.
func NewWorld(cellSize float64) *World {
	return &World{
		cellSize: cellSize,
		cells:    make(map[cellKey][]*Body),
		bodies:   make(map[string]*Body),
		cellsOf:  make(map[string][]cellKey),
	}
}

func (w *World) keyFor(x, y float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / w.cellSize)),
		cy: int(math.Floor(y / w.cellSize)),
	}
}

func (w *World) cellsForBody(b *Body) []cellKey {
	minX, minY, maxX, maxY := b.BoundingBox()
	minK := w.keyFor(minX, minY)
	maxK := w.keyFor(maxX, maxY)
	keys := make([]cellKey, 0, (maxK.cx-minK.cx+1)*(maxK.cy-minK.cy+1))
	for cx := minK.cx; cx <= maxK.cx; cx++ {
		for cy := minK.cy; cy <= maxK.cy; cy++ {
			keys = append(keys, cellKey{cx, cy})
		}
	}
	return keys
}

// Insert adds a body to the grid.
func (w *World) Insert(b *Body) {
	keys := w.cellsForBody(b)
	for _, k := range keys {
		w.cells[k] = append(w.cells[k], b)
	}
	w.bodies[b.ID] = b
	w.cellsOf[b.ID] = keys
}

// Remove deletes a body from the grid by id.
func (w *World) Remove(id string) {
	keys, ok := w.cellsOf[id]
	if !ok {
		return
	}
	for _, k := range keys {
		bucket := w.cells[k]
		for i, b := range bucket {
			if b.ID == id {
				w.cells[k] = append(bucket[:i], bucket[i+1:]...)
				break
			}
		}
		if len(w.cells[k]) == 0 {
			delete(w.cells, k)
		}
	}
	delete(w.bodies, id)
	delete(w.cellsOf, id)
}

// Update re-indexes a dynamic body after its position/radius changed.
// Used for an avatar's own live body every tick (spec §4.3).
func (w *World) Update(b *Body) {
	w.Remove(b.ID)
	w.Insert(b)
}

// Get returns the body with id, if present.
func (w *World) Get(id string) (*Body, bool) {
	b, ok := w.bodies[id]
	return b, ok
}

// Len returns the total number of indexed bodies.
func (w *World) Len() int {
	return len(w.bodies)
}

// Retrieve returns the candidate set sharing any cell with body's
// bounding box (broad phase only — does not check actual overlap).
func (w *World) Retrieve(b *Body) []*Body {
	seen := make(map[string]bool)
	var out []*Body
	for _, k := range w.cellsForBody(b) {
		for _, cand := range w.cells[k] {
			if cand.ID == b.ID || seen[cand.ID] {
				continue
			}
			seen[cand.ID] = true
			out = append(out, cand)
		}
	}
	return out
}

// GetBody returns the first candidate that actually overlaps b, or nil.
func (w *World) GetBody(b *Body) *Body {
	for _, cand := range w.Retrieve(b) {
		if b.Overlaps(cand) {
			return cand
		}
	}
	return nil
}

// GetBodies returns every candidate that actually overlaps b.
func (w *World) GetBodies(b *Body) []*Body {
	var out []*Body
	for _, cand := range w.Retrieve(b) {
		if b.Overlaps(cand) {
			out = append(out, cand)
		}
	}
	return out
}

// All returns every body currently indexed, in no particular order.
func (w *World) All() []*Body {
	out := make([]*Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, b)
	}
	return out
}
