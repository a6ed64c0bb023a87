package board

import (
	"context"
	"math"

	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/store"
	"github.com/mdouchement/corkboard/pkg/workspace"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound is returned when the targeted item is not on the board.
	ErrNotFound = errors.New("item not found")
	// ErrNotEditable is returned when an item is edited outside edit mode or without being selected.
	ErrNotEditable = errors.New("item not editable")
)

type (
	// A Controller drives the board: layout, camera, gestures, selection and focus mode.
	// It is not safe for concurrent use, events are expected from a single event loop.
	Controller struct {
		store   *store.Store
		logger  logrus.FieldLogger
		padding float64
		edge    workspace.EdgePan

		viewport  workspace.Viewport
		transform workspace.Transform
		camera    workspace.Camera
		gestures  *workspace.BoardGestures
		laidOut   bool

		editMode    bool
		arrangeMode bool
		selected    string
		tap         *boardTap
		drag        *itemDrag
		rotate      *itemRotate
		focus       *focusMode
	}

	boardTap struct {
		pointer int
		start   workspace.Point
	}

	itemDrag struct {
		id      string
		pointer int
		session *workspace.DragSession
		preview workspace.Point
	}

	itemRotate struct {
		id      string
		pointer int
		session *workspace.RotateSession
	}

	focusMode struct {
		id     string
		camera workspace.Camera
	}

	// A Frame is where and how an item is drawn on screen.
	Frame struct {
		Origin   workspace.Point `json:"origin"`
		Scale    float64         `json:"scale"`
		Rotation float64         `json:"rotation"`
	}

	// An Option configures a Controller.
	Option func(*Controller)
)

// WithPadding sets the padding kept around the workspace on regular viewports.
func WithPadding(padding float64) Option {
	return func(c *Controller) {
		c.padding = padding
	}
}

// WithLogger sets the logger of the controller.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithEdgePan sets the edge panning used in arrange mode.
func WithEdgePan(e workspace.EdgePan) Option {
	return func(c *Controller) {
		c.edge = e
	}
}

// New returns a controller of the items held by s.
func New(s *store.Store, opts ...Option) *Controller {
	c := &Controller{
		store:   s,
		logger:  logrus.StandardLogger(),
		padding: workspace.DefaultPadding,
		edge:    workspace.DefaultEdgePan,
		camera:  workspace.NewCamera(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.gestures = workspace.NewBoardGestures(&c.camera, workspace.BoardZoom)
	return c
}

// Store returns the underlying item store.
func (c *Controller) Store() *store.Store {
	return c.store
}

///////////////////
//               //
// Layout        //
//               //
///////////////////

// Resize recomputes the layout for the given viewport.
// The camera is initialized on the first layout and whenever the viewport switches between compact and regular.
func (c *Controller) Resize(v workspace.Viewport) {
	transform, camera := workspace.Layout(v, c.padding)
	if !c.laidOut || v.Compact != c.viewport.Compact {
		c.camera = camera
		c.laidOut = true
	}

	c.viewport = v
	c.transform = transform
	c.gestures.SetFrame(transform, v.Size)

	if !transform.Valid() {
		c.logger.Debugf("board: degenerate viewport %vx%v", v.Width, v.Height)
	}
}

// Viewport returns the current viewport.
func (c *Controller) Viewport() workspace.Viewport {
	return c.viewport
}

// Transform returns the fitted transform.
func (c *Controller) Transform() workspace.Transform {
	return c.transform
}

// Camera returns the user camera.
func (c *Controller) Camera() workspace.Camera {
	return c.camera
}

// Projection returns the effective mapping between workspace and screen.
func (c *Controller) Projection() workspace.Projection {
	return c.camera.Project(c.transform, c.viewport.Size)
}

///////////////////
//               //
// Modes         //
//               //
///////////////////

// EditMode returns true when items can be edited.
func (c *Controller) EditMode() bool {
	return c.editMode
}

// SetEditMode toggles the edit mode. Leaving it drops the selection, the focus and any item gesture.
func (c *Controller) SetEditMode(enabled bool) {
	c.editMode = enabled
	if !enabled {
		c.selected = ""
		c.focus = nil
		c.drag = nil
		c.rotate = nil
	}
}

// ArrangeMode returns true when items can be dragged around with edge panning.
func (c *Controller) ArrangeMode() bool {
	return c.arrangeMode
}

// SetArrangeMode toggles the arrange mode.
func (c *Controller) SetArrangeMode(enabled bool) {
	c.arrangeMode = enabled
	if !enabled && !c.editMode {
		c.drag = nil
		c.rotate = nil
	}
}

// Selected returns the selected item id, if any.
func (c *Controller) Selected() string {
	return c.selected
}

// Select selects the item.
func (c *Controller) Select(id string) bool {
	if _, ok := c.store.Find(id); !ok {
		return false
	}
	c.selected = id
	return true
}

// Deselect clears the selection.
func (c *Controller) Deselect() {
	c.selected = ""
}

// Rotating returns true while a rotation is in progress.
func (c *Controller) Rotating() bool {
	return c.rotate != nil
}

// Dragging returns true while an item is held.
func (c *Controller) Dragging() bool {
	return c.drag != nil
}

// Blur cancels every gesture in progress, e.g. when the window loses the focus.
func (c *Controller) Blur() {
	c.gestures.Reset()
	c.tap = nil
	c.drag = nil
	c.rotate = nil
}

///////////////////
//               //
// Board         //
//               //
///////////////////

// BoardPointerDown handles a pointer pressed on the empty board.
func (c *Controller) BoardPointerDown(pointer int, p workspace.Point) {
	if c.drag != nil || c.rotate != nil {
		// An item gesture owns the pointers.
		return
	}
	if c.focus != nil {
		// Outside tap.
		c.Unfocus()
		return
	}

	if c.gestures.Pointers() == 0 {
		c.tap = &boardTap{pointer: pointer, start: p}
	} else {
		c.tap = nil
	}
	c.gestures.PointerDown(pointer, p)
}

// BoardPointerMove handles a pointer moving on the board.
func (c *Controller) BoardPointerMove(pointer int, p workspace.Point) {
	c.gestures.PointerMove(pointer, p)
}

// BoardPointerUp handles a pointer released on the board.
// A tap on the empty board deselects the selected item.
func (c *Controller) BoardPointerUp(pointer int, p workspace.Point) {
	c.gestures.PointerUp(pointer)

	if c.tap == nil || c.tap.pointer != pointer {
		return
	}
	if p.Sub(c.tap.start).Len() < workspace.DragThreshold {
		c.Deselect()
	}
	c.tap = nil
}

// BoardPointerCancel handles a cancelled pointer on the board.
func (c *Controller) BoardPointerCancel(pointer int) {
	c.gestures.PointerCancel(pointer)
	if c.tap != nil && c.tap.pointer == pointer {
		c.tap = nil
	}
}

// GestureState returns the state of the board gestures.
func (c *Controller) GestureState() workspace.GestureState {
	return c.gestures.State()
}

///////////////////
//               //
// Items         //
//               //
///////////////////

// ItemPointerDown handles a pointer pressed on an item.
// It returns false when the press does not start an item gesture.
func (c *Controller) ItemPointerDown(id string, pointer int, p workspace.Point) bool {
	if c.busy() || c.focus != nil || !p.Finite() {
		return false
	}

	item, ok := c.store.Find(id)
	if !ok {
		return false
	}

	projection := c.Projection()
	topLeft := projection.ToScreen(workspace.Point{X: item.X, Y: item.Y})
	c.drag = &itemDrag{
		id:      id,
		pointer: pointer,
		session: workspace.StartDrag(p, topLeft, projection),
		preview: topLeft,
	}
	return true
}

// ItemPointerMove moves the held item and returns where its top-left corner is drawn.
// Items only follow the pointer in edit or arrange mode.
func (c *Controller) ItemPointerMove(pointer int, p workspace.Point) (workspace.Point, bool) {
	if c.drag == nil || c.drag.pointer != pointer {
		return workspace.Point{}, false
	}
	if !c.canMove() {
		return c.drag.preview, false
	}

	c.edgePan(p)
	c.drag.preview = c.drag.session.Move(p)
	return c.drag.preview, true
}

// ItemPointerUp releases the held item.
// A real move is committed to the store and brings the item to front.
// A tap selects the item, and enters the focus mode on compact viewports while editing.
func (c *Controller) ItemPointerUp(pointer int, p workspace.Point) (moved bool, err error) {
	if c.drag == nil || c.drag.pointer != pointer {
		return false, nil
	}
	drag := c.drag
	c.drag = nil

	position, moved := drag.session.End(p, c.Projection())
	if moved && c.canMove() {
		ok, err := c.store.Update(drag.id, model.Patch{X: model.Float(position.X), Y: model.Float(position.Y)})
		if err != nil || !ok {
			return false, err
		}
		c.store.BringToFront(drag.id)
		return true, nil
	}

	if moved {
		return false, nil
	}

	c.Select(drag.id)
	if c.editMode && c.viewport.Compact {
		_, err = c.Focus(drag.id)
	}
	return false, err
}

// ItemPointerCancel drops the held item without moving it.
func (c *Controller) ItemPointerCancel(pointer int) {
	if c.drag != nil && c.drag.pointer == pointer {
		c.drag = nil
	}
}

// RotateHandleDown starts a rotation of the item through its handle.
// Only the selected item can be rotated in edit mode.
func (c *Controller) RotateHandleDown(id string, pointer int, p workspace.Point) bool {
	if !c.editMode || c.focus != nil || c.busy() || c.selected != id || !p.Finite() {
		return false
	}

	item, ok := c.store.Find(id)
	if !ok {
		return false
	}

	c.drag = nil
	c.rotate = &itemRotate{
		id:      id,
		pointer: pointer,
		session: workspace.StartRotate(c.center(item), p, item.Rotation),
	}
	return true
}

// RotateHandleMove returns the rotation for the given pointer position.
func (c *Controller) RotateHandleMove(pointer int, p workspace.Point) (float64, bool) {
	if c.rotate == nil || c.rotate.pointer != pointer {
		return 0, false
	}

	c.edgePan(p)
	return c.rotate.session.Move(p), true
}

// RotateHandleUp commits the rotation to the store.
func (c *Controller) RotateHandleUp(pointer int, p workspace.Point) (float64, error) {
	if c.rotate == nil || c.rotate.pointer != pointer {
		return 0, nil
	}
	rotate := c.rotate
	c.rotate = nil

	rotation := rotate.session.Move(p)
	if _, err := c.store.Update(rotate.id, model.Patch{Rotation: model.Float(rotation)}); err != nil {
		return 0, err
	}
	return rotation, nil
}

// Rotate rotates an item to an absolute angle in degrees, as a rotate handle would.
func (c *Controller) Rotate(id string, rotation float64) error {
	if !c.editable(id) {
		return ErrNotEditable
	}

	ok, err := c.store.Update(id, model.Patch{Rotation: model.Float(rotation)})
	if !ok && err == nil {
		return ErrNotFound
	}
	return err
}

// Move moves an item to an absolute workspace position, as a committed drag would.
func (c *Controller) Move(id string, x, y float64) error {
	if !c.canMove() {
		return ErrNotEditable
	}

	ok, err := c.store.Update(id, model.Patch{X: model.Float(x), Y: model.Float(y)})
	if !ok && err == nil {
		return ErrNotFound
	}
	if err == nil {
		c.store.BringToFront(id)
	}
	return err
}

///////////////////
//               //
// Focus         //
//               //
///////////////////

// Focused returns the focused item id, if any.
func (c *Controller) Focused() string {
	if c.focus == nil {
		return ""
	}
	return c.focus.id
}

// Focus enters the focus mode on the item and returns the frame to animate to:
// centered, unrotated and fitted into the viewport.
func (c *Controller) Focus(id string) (Frame, error) {
	item, ok := c.store.Find(id)
	if !ok {
		return Frame{}, ErrNotFound
	}
	if !c.editMode {
		return Frame{}, ErrNotEditable
	}

	c.drag = nil
	c.rotate = nil
	c.gestures.Reset()
	c.selected = id
	c.focus = &focusMode{id: id, camera: workspace.NewCamera()}
	return c.focusFrame(item), nil
}

// ZoomFocus zooms the focused item by factor, within the item viewer limits.
func (c *Controller) ZoomFocus(factor float64) (Frame, bool) {
	if c.focus == nil {
		return Frame{}, false
	}
	item, ok := c.store.Find(c.focus.id)
	if !ok {
		c.focus = nil
		return Frame{}, false
	}

	c.focus.camera.ZoomBy(factor, workspace.ItemViewerZoom)
	return c.focusFrame(item), true
}

// Unfocus leaves the focus mode and returns the board frame of the item to animate back to.
func (c *Controller) Unfocus() (Frame, bool) {
	if c.focus == nil {
		return Frame{}, false
	}
	id := c.focus.id
	c.focus = nil

	item, ok := c.store.Find(id)
	if !ok {
		return Frame{}, false
	}
	return c.boardFrame(item), true
}

// Done leaves the focus mode.
func (c *Controller) Done() (Frame, bool) {
	return c.Unfocus()
}

// Remove deletes the focused item and leaves the focus mode.
func (c *Controller) Remove(ctx context.Context) bool {
	if c.focus == nil {
		return false
	}
	id := c.focus.id
	c.focus = nil

	if c.selected == id {
		c.selected = ""
	}
	return c.store.Delete(ctx, id)
}

// Delete removes the item from the board in edit mode.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if !c.editMode {
		return ErrNotEditable
	}
	if c.Focused() == id {
		c.focus = nil
	}
	if c.selected == id {
		c.selected = ""
	}
	if !c.store.Delete(ctx, id) {
		return ErrNotFound
	}
	return nil
}

///////////////////
//               //
// Internals     //
//               //
///////////////////

// busy returns true while a pan, a pinch, a drag or a rotation is in progress.
func (c *Controller) busy() bool {
	return c.drag != nil || c.rotate != nil || c.gestures.State() != workspace.Idle
}

func (c *Controller) canMove() bool {
	return (c.editMode || c.arrangeMode) && c.rotate == nil && c.focus == nil
}

func (c *Controller) editable(id string) bool {
	if c.focus != nil {
		return c.focus.id == id
	}
	return c.editMode && c.selected == id
}

func (c *Controller) edgePan(p workspace.Point) {
	if !c.arrangeMode {
		return
	}
	delta := c.edge.Delta(p, c.viewport.Size)
	if delta != (workspace.Point{}) {
		c.camera.PanBy(delta, c.transform, c.viewport.Size, c.gestures.Margin)
	}
}

// center returns the screen position of the item center.
func (c *Controller) center(item *model.Item) workspace.Point {
	size := model.DefaultSize(item.Type)
	return c.Projection().ToScreen(workspace.Point{
		X: item.X + size.Width/2,
		Y: item.Y + size.Height/2,
	})
}

func (c *Controller) boardFrame(item *model.Item) Frame {
	p := c.Projection()
	return Frame{
		Origin:   p.ToScreen(workspace.Point{X: item.X, Y: item.Y}),
		Scale:    p.Scale,
		Rotation: item.Rotation,
	}
}

func (c *Controller) focusFrame(item *model.Item) Frame {
	size := model.DefaultSize(item.Type)
	available := workspace.Size{
		Width:  c.viewport.Width - 2*c.padding,
		Height: c.viewport.Height - 2*c.padding,
	}
	if available.Empty() {
		available = c.viewport.Size
	}

	scale := math.Min(available.Width/size.Width, available.Height/size.Height) * c.focus.camera.UserZoom
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}

	return Frame{
		Origin: c.viewport.Center().Sub(workspace.Point{
			X: size.Width * scale / 2,
			Y: size.Height * scale / 2,
		}),
		Scale: scale,
	}
}
