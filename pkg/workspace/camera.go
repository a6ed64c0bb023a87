package workspace

import "math"

// DefaultPanMargin is the extra distance the board can be panned past its edges.
const DefaultPanMargin = 100.0

type (
	// A ZoomLimits bounds the user zoom multiplier.
	ZoomLimits struct {
		Min float64
		Max float64
	}

	// A Camera holds the user controlled view on top of the fitted transform:
	// a zoom multiplier applied about the viewport center and a pan offset in screen pixels.
	Camera struct {
		UserZoom float64 `json:"user_zoom"`
		Pan      Point   `json:"pan"`
	}

	// A Projection is the effective mapping between workspace and screen spaces,
	// once the camera is applied on the fitted transform.
	Projection struct {
		Scale  float64
		Origin Point
	}
)

var (
	// BoardZoom are the zoom limits of the board.
	BoardZoom = ZoomLimits{Min: 0.5, Max: 4.0}
	// ItemViewerZoom are the zoom limits of single item viewers.
	ItemViewerZoom = ZoomLimits{Min: 0.3, Max: 3.0}
)

// Clamp returns z bounded by the limits.
func (l ZoomLimits) Clamp(z float64) float64 {
	return math.Max(l.Min, math.Min(l.Max, z))
}

// NewCamera returns a camera without zoom nor pan.
func NewCamera() Camera {
	return Camera{UserZoom: 1}
}

// Project returns the effective projection of the camera.
func (c Camera) Project(t Transform, viewport Size) Projection {
	zoom := c.zoom()
	center := viewport.Center()
	return Projection{
		Scale:  t.Scale * zoom,
		Origin: center.Add(t.Origin().Sub(center).Mul(zoom)).Add(c.Pan),
	}
}

// ZoomBy multiplies the user zoom by factor, bounded by limits.
func (c *Camera) ZoomBy(factor float64, limits ZoomLimits) {
	if factor <= 0 || !finite(factor) {
		return
	}
	c.UserZoom = limits.Clamp(c.zoom() * factor)
}

// PanBy moves the camera by the given screen delta, bounded by PanBounds.
func (c *Camera) PanBy(delta Point, t Transform, viewport Size, margin float64) {
	if !delta.Finite() {
		return
	}
	bounds := PanBounds(t, viewport, c.zoom(), margin)
	c.Pan.X = clamp(c.Pan.X+delta.X, -bounds.X, bounds.X)
	c.Pan.Y = clamp(c.Pan.Y+delta.Y, -bounds.Y, bounds.Y)
}

func (c Camera) zoom() float64 {
	if c.UserZoom <= 0 {
		return 1
	}
	return c.UserZoom
}

// PanBounds returns the maximum absolute pan on each axis for the given zoom.
func PanBounds(t Transform, viewport Size, zoom, margin float64) Point {
	return Point{
		X: math.Max(0, (t.Width*zoom-viewport.Width)/2) + margin,
		Y: math.Max(0, (t.Height*zoom-viewport.Height)/2) + margin,
	}
}

// ToScreen converts a workspace point to screen space.
func (p Projection) ToScreen(w Point) Point {
	return w.Mul(p.Scale).Add(p.Origin)
}

// ToWorkspace converts a screen point to workspace space.
func (p Projection) ToWorkspace(s Point) Point {
	if p.Scale <= 0 {
		return s
	}
	return s.Sub(p.Origin).Div(p.Scale)
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}
