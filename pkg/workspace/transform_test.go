package workspace_test

import (
	"testing"

	"github.com/mdouchement/corkboard/pkg/workspace"
	"github.com/stretchr/testify/assert"
)

func TestFit(t *testing.T) {
	const padding = 24.0

	tests := []struct {
		name      string
		viewport  workspace.Size
		fitHeight bool
	}{
		{name: "exact", viewport: workspace.Size{Width: 1920, Height: 1080}, fitHeight: true},
		{name: "wide", viewport: workspace.Size{Width: 3440, Height: 1080}, fitHeight: true},
		{name: "narrow", viewport: workspace.Size{Width: 390, Height: 844}},
		{name: "square", viewport: workspace.Size{Width: 1000, Height: 1000}},
		{name: "tablet", viewport: workspace.Size{Width: 1366, Height: 1024}},
		{name: "ultra-wide", viewport: workspace.Size{Width: 5120, Height: 1440}, fitHeight: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tr := workspace.Fit(test.viewport, padding)
			assert.True(t, tr.Valid())

			// Fitted dimension.
			if test.fitHeight {
				assert.InDelta(t, test.viewport.Height-2*padding, tr.Height, 1e-9)
			} else {
				assert.InDelta(t, test.viewport.Width-2*padding, tr.Width, 1e-9)
			}

			// Aspect ratio and scale.
			assert.InDelta(t, workspace.AspectRatio, tr.Width/tr.Height, 1e-9)
			assert.InDelta(t, tr.Width/workspace.LogicalWidth, tr.Scale, 1e-12)

			// Contained in viewport minus padding.
			assert.GreaterOrEqual(t, tr.OffsetX, padding-1e-9)
			assert.GreaterOrEqual(t, tr.OffsetY, padding-1e-9)
			assert.LessOrEqual(t, tr.OffsetX+tr.Width, test.viewport.Width-padding+1e-9)
			assert.LessOrEqual(t, tr.OffsetY+tr.Height, test.viewport.Height-padding+1e-9)

			// Centered.
			assert.InDelta(t, test.viewport.Width-tr.Width-tr.OffsetX, tr.OffsetX, 1e-9)
			assert.InDelta(t, test.viewport.Height-tr.Height-tr.OffsetY, tr.OffsetY, 1e-9)
		})
	}
}

func TestFit_Degenerate(t *testing.T) {
	assert.False(t, workspace.Fit(workspace.Size{}, 24).Valid())
	assert.False(t, workspace.Fit(workspace.Size{Width: 40, Height: 30}, 24).Valid())
	assert.False(t, workspace.Fit(workspace.Size{Width: -1, Height: 30}, 0).Valid())
}

func TestTransform_Conversions(t *testing.T) {
	tr := workspace.Fit(workspace.Size{Width: 1000, Height: 1000}, 20)

	p := workspace.Point{X: 960, Y: 540}
	s := tr.ToScreen(p)
	assert.InDelta(t, 500, s.X, 1e-9)
	assert.InDelta(t, 500, s.Y, 1e-9)

	back := tr.ToWorkspace(s)
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)

	var invalid workspace.Transform
	assert.Equal(t, p, invalid.ToWorkspace(p))
}

func TestLayout(t *testing.T) {
	size := workspace.Size{Width: 390, Height: 844}

	tr, camera := workspace.Layout(workspace.Viewport{Size: size, Compact: true}, workspace.DefaultPadding)
	assert.InDelta(t, size.Width, tr.Width, 1e-9) // no padding
	assert.Equal(t, workspace.CompactZoom, camera.UserZoom)

	// The workspace middle stays at the viewport center once zoomed.
	proj := camera.Project(tr, size)
	mid := proj.ToScreen(workspace.Point{X: workspace.LogicalWidth / 2, Y: workspace.LogicalHeight / 2})
	assert.InDelta(t, size.Width/2, mid.X, 1e-9)
	assert.InDelta(t, size.Height/2, mid.Y, 1e-9)

	tr, camera = workspace.Layout(workspace.Viewport{Size: size}, workspace.DefaultPadding)
	assert.InDelta(t, size.Width-2*workspace.DefaultPadding, tr.Width, 1e-9)
	assert.Equal(t, 1.0, camera.UserZoom)
}

func TestProjection(t *testing.T) {
	viewport := workspace.Size{Width: 1920, Height: 1080}
	tr := workspace.Fit(viewport, 0)

	camera := workspace.NewCamera()
	proj := camera.Project(tr, viewport)
	assert.Equal(t, 1.0, proj.Scale)
	assert.Equal(t, workspace.Point{}, proj.Origin)

	camera.Pan = workspace.Point{X: 10, Y: -5}
	proj = camera.Project(tr, viewport)
	assert.Equal(t, workspace.Point{X: 10, Y: -5}, proj.Origin)

	p := workspace.Point{X: 300, Y: 150}
	back := proj.ToWorkspace(proj.ToScreen(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}
