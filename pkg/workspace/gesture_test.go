package workspace_test

import (
	"testing"

	"github.com/mdouchement/corkboard/pkg/workspace"
	"github.com/stretchr/testify/assert"
)

func newGestures() (*workspace.BoardGestures, *workspace.Camera) {
	viewport := workspace.Size{Width: 1920, Height: 1080}
	camera := workspace.NewCamera()
	g := workspace.NewBoardGestures(&camera, workspace.BoardZoom)
	g.SetFrame(workspace.Fit(viewport, 0), viewport)
	return g, &camera
}

func TestBoardGestures_Pan(t *testing.T) {
	g, camera := newGestures()
	assert.Equal(t, workspace.Idle, g.State())

	g.PointerDown(1, workspace.Point{X: 100, Y: 100})
	assert.Equal(t, workspace.Panning, g.State())

	g.PointerMove(1, workspace.Point{X: 130, Y: 90})
	g.PointerMove(1, workspace.Point{X: 140, Y: 80})
	assert.Equal(t, workspace.Point{X: 40, Y: -20}, camera.Pan)

	// Unknown pointers are ignored.
	g.PointerMove(7, workspace.Point{X: 900, Y: 900})
	assert.Equal(t, workspace.Point{X: 40, Y: -20}, camera.Pan)

	g.PointerUp(1)
	assert.Equal(t, workspace.Idle, g.State())
	assert.Equal(t, 0, g.Pointers())
}

func TestBoardGestures_PanClamp(t *testing.T) {
	g, camera := newGestures()

	// Workspace fills the viewport at zoom 1: only the margin is available.
	g.PointerDown(1, workspace.Point{X: 0, Y: 0})
	g.PointerMove(1, workspace.Point{X: 5000, Y: -5000})
	assert.Equal(t, workspace.Point{X: workspace.DefaultPanMargin, Y: -workspace.DefaultPanMargin}, camera.Pan)
	g.PointerUp(1)

	// Zoomed twice: half of the extra width is reachable.
	camera.Pan = workspace.Point{}
	camera.UserZoom = 2
	g.PointerDown(1, workspace.Point{X: 0, Y: 0})
	g.PointerMove(1, workspace.Point{X: -5000, Y: 5000})
	assert.Equal(t, workspace.Point{X: -(960 + workspace.DefaultPanMargin), Y: 540 + workspace.DefaultPanMargin}, camera.Pan)
}

func TestBoardGestures_Pinch(t *testing.T) {
	g, camera := newGestures()

	// Distance 100 centered on (500,500).
	g.PointerDown(1, workspace.Point{X: 450, Y: 500})
	g.PointerDown(2, workspace.Point{X: 550, Y: 500})
	assert.Equal(t, workspace.Pinching, g.State())

	// Distance 200, same center.
	g.PointerMove(1, workspace.Point{X: 400, Y: 500})
	g.PointerMove(2, workspace.Point{X: 600, Y: 500})

	assert.InDelta(t, 2.0, camera.UserZoom, 1e-9)
	assert.InDelta(t, 0, camera.Pan.X, 1e-9)
	assert.InDelta(t, 0, camera.Pan.Y, 1e-9)

	g.PointerUp(2)
	assert.Equal(t, workspace.Idle, g.State())

	// The remaining pointer does not pan.
	g.PointerMove(1, workspace.Point{X: 0, Y: 0})
	assert.InDelta(t, 0, camera.Pan.X, 1e-9)
}

func TestBoardGestures_PinchClamp(t *testing.T) {
	g, camera := newGestures()
	camera.UserZoom = 3

	g.PointerDown(1, workspace.Point{X: 450, Y: 500})
	g.PointerDown(2, workspace.Point{X: 550, Y: 500})
	g.PointerMove(1, workspace.Point{X: 400, Y: 500})
	g.PointerMove(2, workspace.Point{X: 600, Y: 500})
	assert.Equal(t, workspace.BoardZoom.Max, camera.UserZoom)

	g.PointerMove(1, workspace.Point{X: 599, Y: 500})
	assert.Equal(t, workspace.BoardZoom.Min, camera.UserZoom)
}

func TestBoardGestures_PinchIdempotent(t *testing.T) {
	g, camera := newGestures()
	camera.UserZoom = 1.3
	camera.Pan = workspace.Point{X: 12, Y: -7}

	g.PointerDown(1, workspace.Point{X: 450, Y: 500})
	g.PointerDown(2, workspace.Point{X: 550, Y: 500})

	steps := []float64{60, 75, 90, 120, 90, 75, 60, 50}
	for _, half := range steps {
		g.PointerMove(1, workspace.Point{X: 500 - half, Y: 500})
		g.PointerMove(2, workspace.Point{X: 500 + half, Y: 500})
	}

	assert.InDelta(t, 1.3, camera.UserZoom, 1e-9)
	assert.InDelta(t, 12, camera.Pan.X, 1e-9)
	assert.InDelta(t, -7, camera.Pan.Y, 1e-9)
}

func TestBoardGestures_PinchFollowsMidpoint(t *testing.T) {
	g, camera := newGestures()

	g.PointerDown(1, workspace.Point{X: 450, Y: 500})
	g.PointerDown(2, workspace.Point{X: 550, Y: 500})

	g.PointerMove(1, workspace.Point{X: 470, Y: 520})
	g.PointerMove(2, workspace.Point{X: 570, Y: 520})

	assert.InDelta(t, 1, camera.UserZoom, 1e-9)
	assert.InDelta(t, 20, camera.Pan.X, 1e-9)
	assert.InDelta(t, 20, camera.Pan.Y, 1e-9)
}

func TestBoardGestures_ThirdPointer(t *testing.T) {
	g, camera := newGestures()

	g.PointerDown(1, workspace.Point{X: 450, Y: 500})
	g.PointerDown(2, workspace.Point{X: 550, Y: 500})
	g.PointerDown(3, workspace.Point{X: 10, Y: 10})
	assert.Equal(t, workspace.Pinching, g.State())

	g.PointerMove(3, workspace.Point{X: 900, Y: 900})
	assert.Equal(t, 1.0, camera.UserZoom)

	g.PointerUp(3)
	assert.Equal(t, workspace.Pinching, g.State())
}

func TestBoardGestures_Reset(t *testing.T) {
	g, _ := newGestures()

	g.PointerDown(1, workspace.Point{X: 450, Y: 500})
	g.PointerDown(2, workspace.Point{X: 550, Y: 500})
	g.Reset()

	assert.Equal(t, workspace.Idle, g.State())
	assert.Equal(t, 0, g.Pointers())

	g.PointerDown(4, workspace.Point{X: 1, Y: 1})
	assert.Equal(t, workspace.Panning, g.State())
}
