package workspace

import "math"

const (
	// LogicalWidth is the width of the workspace in logical units.
	LogicalWidth = 1920.0
	// LogicalHeight is the height of the workspace in logical units.
	LogicalHeight = 1080.0
	// AspectRatio is the workspace aspect ratio (16:9).
	AspectRatio = LogicalWidth / LogicalHeight

	// DefaultPadding is the padding kept around the workspace on regular viewports.
	DefaultPadding = 24.0
	// CompactZoom is the initial user zoom applied on compact viewports.
	CompactZoom = 2.0
)

type (
	// A Point is a position, either in screen space or in workspace space.
	Point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	// A Size is a width/height pair.
	Size struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	// A Viewport describes the screen surface hosting the workspace.
	Viewport struct {
		Size
		// Compact is true for small or touch screens.
		Compact bool
	}

	// A Transform maps the logical workspace onto the viewport.
	Transform struct {
		Scale   float64
		OffsetX float64
		OffsetY float64
		// Workspace rectangle size in screen pixels.
		Width  float64
		Height float64
	}
)

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by k.
func (p Point) Mul(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Div returns p divided by k.
func (p Point) Div(k float64) Point {
	return Point{X: p.X / k, Y: p.Y / k}
}

// Len returns the euclidean norm of p.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Finite returns true if both coordinates are finite numbers.
func (p Point) Finite() bool {
	return finite(p.X) && finite(p.Y)
}

// Center returns the center of a rectangle of size s placed at the origin.
func (s Size) Center() Point {
	return Point{X: s.Width / 2, Y: s.Height / 2}
}

// Empty returns true when the size has no area.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Fit computes the transform fitting the logical workspace into the viewport,
// centered, keeping padding on the constrained axis.
// The aspect comparison is done on the padded area so the workspace never overlaps the padding.
func Fit(viewport Size, padding float64) Transform {
	available := Size{
		Width:  viewport.Width - 2*padding,
		Height: viewport.Height - 2*padding,
	}
	if available.Empty() {
		return Transform{}
	}

	var w, h float64
	if available.Width/available.Height > AspectRatio {
		h = available.Height
		w = h * AspectRatio
	} else {
		w = available.Width
		h = w / AspectRatio
	}

	return Transform{
		Scale:   w / LogicalWidth,
		OffsetX: (viewport.Width - w) / 2,
		OffsetY: (viewport.Height - h) / 2,
		Width:   w,
		Height:  h,
	}
}

// Layout computes the transform and the initial camera for the given viewport.
// Compact viewports get no padding and start zoomed on the workspace middle.
func Layout(v Viewport, padding float64) (Transform, Camera) {
	if v.Compact {
		return Fit(v.Size, 0), Camera{UserZoom: CompactZoom}
	}
	return Fit(v.Size, padding), NewCamera()
}

// Valid returns true if the transform can be used for conversions.
func (t Transform) Valid() bool {
	return t.Scale > 0 && finite(t.Scale)
}

// Origin returns the screen position of the workspace origin.
func (t Transform) Origin() Point {
	return Point{X: t.OffsetX, Y: t.OffsetY}
}

// ToScreen converts a workspace point to screen space.
func (t Transform) ToScreen(p Point) Point {
	return p.Mul(t.Scale).Add(t.Origin())
}

// ToWorkspace converts a screen point to workspace space.
// An invalid transform returns the point unchanged.
func (t Transform) ToWorkspace(p Point) Point {
	if !t.Valid() {
		return p
	}
	return p.Sub(t.Origin()).Div(t.Scale)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
