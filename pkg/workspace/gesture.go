package workspace

import "sort"

// A GestureState is the state of the board gesture machine.
type GestureState int

const (
	// Idle means no gesture is in progress.
	Idle GestureState = iota
	// Panning means a single pointer is moving the board.
	Panning
	// Pinching means two pointers are zooming the board.
	Pinching
)

func (s GestureState) String() string {
	switch s {
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	default:
		return "idle"
	}
}

type (
	// BoardGestures interprets raw pointers on the board surface as pan or pinch-zoom.
	// Item gestures (drag, rotate) are tracked by their own sessions and never share this state.
	BoardGestures struct {
		Limits ZoomLimits
		Margin float64

		camera    *Camera
		transform Transform
		viewport  Size

		pointers map[int]Point
		state    GestureState
		pan      *panSession
		pinch    *pinchSession
	}

	panSession struct {
		pointer int
		last    Point
	}

	pinchSession struct {
		a, b     int
		distance float64
		midpoint Point
	}
)

// NewBoardGestures returns a gesture machine driving the given camera.
func NewBoardGestures(camera *Camera, limits ZoomLimits) *BoardGestures {
	return &BoardGestures{
		Limits:   limits,
		Margin:   DefaultPanMargin,
		camera:   camera,
		pointers: map[int]Point{},
	}
}

// SetFrame updates the transform and viewport used for pan bounds.
// It is not required to call it during a gesture.
func (g *BoardGestures) SetFrame(t Transform, viewport Size) {
	g.transform = t
	g.viewport = viewport
}

// State returns the current gesture state.
func (g *BoardGestures) State() GestureState {
	return g.state
}

// Pointers returns the number of tracked pointers.
func (g *BoardGestures) Pointers() int {
	return len(g.pointers)
}

// PointerDown tracks a new pointer. A first pointer starts panning,
// a second one promotes the gesture to a pinch.
func (g *BoardGestures) PointerDown(id int, p Point) {
	if !p.Finite() {
		return
	}
	g.pointers[id] = p

	switch len(g.pointers) {
	case 1:
		g.pinch = nil
		g.pan = &panSession{pointer: id, last: p}
		g.state = Panning
	case 2:
		ids := g.ids()
		a, b := g.pointers[ids[0]], g.pointers[ids[1]]
		g.pan = nil
		g.pinch = &pinchSession{
			a:        ids[0],
			b:        ids[1],
			distance: b.Sub(a).Len(),
			midpoint: midpoint(a, b),
		}
		g.state = Pinching
	}
	// Extra pointers are tracked but do not alter the pinch references.
}

// PointerMove processes a move of a tracked pointer.
func (g *BoardGestures) PointerMove(id int, p Point) {
	if _, ok := g.pointers[id]; !ok || !p.Finite() {
		return
	}
	g.pointers[id] = p

	switch g.state {
	case Panning:
		if g.pan.pointer != id {
			return
		}
		delta := p.Sub(g.pan.last)
		g.pan.last = p
		g.camera.PanBy(delta, g.transform, g.viewport, g.Margin)
	case Pinching:
		if id != g.pinch.a && id != g.pinch.b {
			return
		}
		a, b := g.pointers[g.pinch.a], g.pointers[g.pinch.b]
		distance := b.Sub(a).Len()
		mid := midpoint(a, b)

		if g.pinch.distance > 0 && distance > 0 {
			g.camera.ZoomBy(distance/g.pinch.distance, g.Limits)
		}
		g.camera.Pan = g.camera.Pan.Add(mid.Sub(g.pinch.midpoint))

		g.pinch.distance = distance
		g.pinch.midpoint = mid
	}
}

// PointerUp releases a pointer.
func (g *BoardGestures) PointerUp(id int) {
	if _, ok := g.pointers[id]; !ok {
		return
	}
	delete(g.pointers, id)

	switch g.state {
	case Panning:
		if g.pan.pointer == id {
			g.idle()
		}
	case Pinching:
		if id == g.pinch.a || id == g.pinch.b {
			// Remaining pointers must be lifted before a new gesture starts.
			g.idle()
		}
	}
}

// PointerCancel behaves like PointerUp.
func (g *BoardGestures) PointerCancel(id int) {
	g.PointerUp(id)
}

// Reset drops every tracked pointer, e.g. on window blur or visibility change.
func (g *BoardGestures) Reset() {
	g.pointers = map[int]Point{}
	g.idle()
}

func (g *BoardGestures) idle() {
	g.state = Idle
	g.pan = nil
	g.pinch = nil
}

func (g *BoardGestures) ids() []int {
	ids := make([]int, 0, len(g.pointers))
	for id := range g.pointers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func midpoint(a, b Point) Point {
	return a.Add(b).Div(2)
}
