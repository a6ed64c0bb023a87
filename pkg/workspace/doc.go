//
// workspace maps the fixed 1920x1080 logical corkboard onto any viewport and interprets
// pointer input on it (pan, pinch-zoom, item drag and item rotation).
//

// Fit the workspace
//
//	t, camera := workspace.Layout(workspace.Viewport{Size: workspace.Size{Width: 1280, Height: 800}}, workspace.DefaultPadding)
//	projection := camera.Project(t, workspace.Size{Width: 1280, Height: 800})
//
// Pan and pinch the board
//
//	gestures := workspace.NewBoardGestures(&camera, workspace.BoardZoom)
//	gestures.SetFrame(t, viewport)
//	gestures.PointerDown(1, workspace.Point{X: 450, Y: 500})
//	gestures.PointerDown(2, workspace.Point{X: 550, Y: 500}) // promoted to a pinch
//	gestures.PointerMove(2, workspace.Point{X: 650, Y: 500})
//	gestures.PointerUp(2)
//
// Drag an item
//
//	drag := workspace.StartDrag(pointer, projection.ToScreen(itemPosition), projection)
//	if position, moved := drag.End(release, projection); moved {
//		// persist position
//	}
//
// Rotate an item
//
//	rotate := workspace.StartRotate(center, pointer, item.Rotation)
//	rotation := rotate.Move(next)
package workspace
