package workspace

import "math"

// DragThreshold is the minimal displacement, in workspace units, for a drag to be a move.
// Smaller displacements are clicks.
const DragThreshold = 5.0

type (
	// A DragSession follows one item drag, from press to release.
	DragSession struct {
		offset Point
		from   Point
		last   Point
	}

	// A RotateSession follows one item rotation through its handle.
	RotateSession struct {
		center   Point
		initial  float64
		baseline float64
		current  float64
	}

	// An EdgePan nudges the camera when a pointer is close to the viewport edges.
	EdgePan struct {
		// Band is the width of the sensitive area along each edge.
		Band float64
		// Step is the pan applied per pointer event.
		Step float64
	}
)

// DefaultEdgePan is the edge panning used in arrange mode.
var DefaultEdgePan = EdgePan{Band: 48, Step: 12}

// StartDrag starts a drag. Both points are in screen space:
// the pointer position and the dragged item top-left corner drawn through p.
func StartDrag(pointer, topLeft Point, p Projection) *DragSession {
	return &DragSession{
		offset: pointer.Sub(topLeft),
		from:   p.ToWorkspace(topLeft),
		last:   pointer,
	}
}

// Offset returns the captured cursor-to-item offset.
func (d *DragSession) Offset() Point {
	return d.offset
}

// Move records the pointer position and returns where the item top-left corner is drawn (screen space).
func (d *DragSession) Move(pointer Point) Point {
	if pointer.Finite() {
		d.last = pointer
	}
	return d.last.Sub(d.offset)
}

// Last returns the last known pointer position.
func (d *DragSession) Last() Point {
	return d.last
}

// End terminates the drag at the given pointer position, p being the current projection.
// It returns the new item position in workspace space and true when the drag is a real move.
// The displacement is measured on the board so a camera panned under a held item counts.
func (d *DragSession) End(pointer Point, p Projection) (Point, bool) {
	if p.Scale <= 0 || !pointer.Finite() {
		return Point{}, false
	}

	position := p.ToWorkspace(pointer.Sub(d.offset))
	if position.Sub(d.from).Len() < DragThreshold {
		return Point{}, false
	}
	return position, true
}

// Angle returns the angle in degrees of p around center.
func Angle(center, p Point) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X) * 180 / math.Pi
}

// StartRotate starts a rotation of an item centered on center (screen space)
// whose current rotation is rotation.
func StartRotate(center, pointer Point, rotation float64) *RotateSession {
	return &RotateSession{
		center:   center,
		initial:  Angle(center, pointer),
		baseline: rotation,
		current:  rotation,
	}
}

// Move returns the rotation for the given pointer position.
// Rotation accumulates freely and is never normalized.
func (r *RotateSession) Move(pointer Point) float64 {
	if pointer.Finite() {
		r.current = r.baseline + (Angle(r.center, pointer) - r.initial)
	}
	return r.current
}

// Rotation returns the last computed rotation.
func (r *RotateSession) Rotation() float64 {
	return r.current
}

// Delta returns the camera pan to apply for a pointer at p.
// Content is moved toward the pointer's edge so hidden parts of the board are revealed.
func (e EdgePan) Delta(p Point, viewport Size) Point {
	var d Point
	if viewport.Empty() || !p.Finite() {
		return d
	}

	switch {
	case p.X < e.Band:
		d.X = e.Step
	case p.X > viewport.Width-e.Band:
		d.X = -e.Step
	}

	switch {
	case p.Y < e.Band:
		d.Y = e.Step
	case p.Y > viewport.Height-e.Band:
		d.Y = -e.Step
	}

	return d
}
