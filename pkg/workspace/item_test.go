package workspace_test

import (
	"testing"

	"github.com/mdouchement/corkboard/pkg/workspace"
	"github.com/stretchr/testify/assert"
)

func TestDragSession(t *testing.T) {
	identity := workspace.Projection{Scale: 1}

	// Item at (100,100), pressed at (110,110), released at (310,160).
	drag := workspace.StartDrag(workspace.Point{X: 110, Y: 110}, workspace.Point{X: 100, Y: 100}, identity)
	assert.Equal(t, workspace.Point{X: 10, Y: 10}, drag.Offset())

	preview := drag.Move(workspace.Point{X: 210, Y: 130})
	assert.Equal(t, workspace.Point{X: 200, Y: 120}, preview)

	position, moved := drag.End(workspace.Point{X: 310, Y: 160}, identity)
	assert.True(t, moved)
	assert.Equal(t, workspace.Point{X: 300, Y: 150}, position)
}

func TestDragSession_Threshold(t *testing.T) {
	identity := workspace.Projection{Scale: 1}

	tests := []struct {
		release workspace.Point
		moved   bool
	}{
		{release: workspace.Point{X: 110, Y: 110}, moved: false},
		{release: workspace.Point{X: 114, Y: 110}, moved: false},
		{release: workspace.Point{X: 113, Y: 113}, moved: false}, // 4.24
		{release: workspace.Point{X: 115, Y: 110}, moved: true},
		{release: workspace.Point{X: 113, Y: 114}, moved: true}, // 5
		{release: workspace.Point{X: 90, Y: 110}, moved: true},
	}

	for _, test := range tests {
		drag := workspace.StartDrag(workspace.Point{X: 110, Y: 110}, workspace.Point{X: 100, Y: 100}, identity)
		position, moved := drag.End(test.release, identity)
		assert.Equal(t, test.moved, moved, test.release)
		if moved {
			assert.Equal(t, test.release.Sub(workspace.Point{X: 10, Y: 10}), position)
		}
	}
}

func TestDragSession_Scaled(t *testing.T) {
	p := workspace.Projection{Scale: 0.5, Origin: workspace.Point{X: 40, Y: 20}}

	// Item at workspace (100,100) is drawn at (90,70).
	drag := workspace.StartDrag(workspace.Point{X: 95, Y: 75}, p.ToScreen(workspace.Point{X: 100, Y: 100}), p)

	// 2 screen pixels are 4 workspace units: a click.
	_, moved := drag.End(workspace.Point{X: 97, Y: 75}, p)
	assert.False(t, moved)

	position, moved := drag.End(workspace.Point{X: 195, Y: 125}, p)
	assert.True(t, moved)
	assert.Equal(t, workspace.Point{X: 300, Y: 200}, position)

	_, moved = drag.End(workspace.Point{X: 195, Y: 125}, workspace.Projection{})
	assert.False(t, moved)
}

func TestDragSession_PannedUnder(t *testing.T) {
	start := workspace.Projection{Scale: 1}
	drag := workspace.StartDrag(workspace.Point{X: 1890, Y: 540}, workspace.Point{X: 1700, Y: 500}, start)

	// The pointer barely moved but the board slid 100 units to the left.
	panned := workspace.Projection{Scale: 1, Origin: workspace.Point{X: -100}}
	position, moved := drag.End(workspace.Point{X: 1891, Y: 540}, panned)
	assert.True(t, moved)
	assert.Equal(t, workspace.Point{X: 1801, Y: 500}, position)

	// Same pointer, same board: a click.
	_, moved = drag.End(workspace.Point{X: 1891, Y: 540}, start)
	assert.False(t, moved)
}

func TestRotateSession(t *testing.T) {
	center := workspace.Point{X: 100, Y: 100}

	rotate := workspace.StartRotate(center, workspace.Point{X: 200, Y: 100}, 12) // A0 = 0
	assert.Equal(t, 12.0, rotate.Rotation())

	assert.InDelta(t, 102, rotate.Move(workspace.Point{X: 100, Y: 200}), 1e-9) // A1 = 90
	assert.InDelta(t, 57, rotate.Move(workspace.Point{X: 200, Y: 200}), 1e-9)  // A1 = 45
	assert.InDelta(t, -78, rotate.Move(workspace.Point{X: 100, Y: 0}), 1e-9)   // A1 = -90
	assert.InDelta(t, -78, rotate.Rotation(), 1e-9)
}

func TestRotateSession_NoNormalization(t *testing.T) {
	center := workspace.Point{}

	rotate := workspace.StartRotate(center, workspace.Point{X: 1, Y: 0}, 350)
	assert.InDelta(t, 440, rotate.Move(workspace.Point{X: 0, Y: 1}), 1e-9)

	rotate = workspace.StartRotate(center, workspace.Point{X: 0, Y: 1}, -340)
	assert.InDelta(t, -520, rotate.Move(workspace.Point{X: 0, Y: -1}), 1e-9)
}

func TestAngle(t *testing.T) {
	c := workspace.Point{X: 10, Y: 10}
	assert.InDelta(t, 0, workspace.Angle(c, workspace.Point{X: 20, Y: 10}), 1e-9)
	assert.InDelta(t, 90, workspace.Angle(c, workspace.Point{X: 10, Y: 20}), 1e-9)
	assert.InDelta(t, 180, workspace.Angle(c, workspace.Point{X: 0, Y: 10}), 1e-9)
	assert.InDelta(t, 0, workspace.Angle(c, c), 1e-9)
}

func TestEdgePan(t *testing.T) {
	viewport := workspace.Size{Width: 800, Height: 600}
	e := workspace.EdgePan{Band: 40, Step: 10}

	assert.Equal(t, workspace.Point{}, e.Delta(workspace.Point{X: 400, Y: 300}, viewport))
	assert.Equal(t, workspace.Point{X: 10}, e.Delta(workspace.Point{X: 5, Y: 300}, viewport))
	assert.Equal(t, workspace.Point{X: -10}, e.Delta(workspace.Point{X: 790, Y: 300}, viewport))
	assert.Equal(t, workspace.Point{X: 10, Y: -10}, e.Delta(workspace.Point{X: 0, Y: 599}, viewport))
	assert.Equal(t, workspace.Point{Y: 10}, e.Delta(workspace.Point{X: 400, Y: 39}, viewport))
	assert.Equal(t, workspace.Point{}, e.Delta(workspace.Point{X: 0, Y: 0}, workspace.Size{}))
}
