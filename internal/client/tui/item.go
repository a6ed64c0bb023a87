package tui

import (
	"time"

	"github.com/bep/debounce"
	"github.com/gcla/gowid"
	"github.com/gcla/gowid/gwutil"
	"github.com/gcla/gowid/widgets/columns"
	"github.com/gcla/gowid/widgets/edit"
	"github.com/gcla/gowid/widgets/selectable"
	"github.com/gcla/gowid/widgets/styled"
	"github.com/gcla/gowid/widgets/text"
	"github.com/gcla/gowid/widgets/vscroll"
	"github.com/gdamore/tcell/v2"
)

// SaveDelay is the idle time after the last keystroke before a note is saved.
const SaveDelay = 500 * time.Millisecond

// An Item is the graphical representation of a pinned item.
type Item struct {
	ID                 string
	title              string
	presentation       gowid.IWidget
	editorPresentation *ItemEditor
}

// NewItem returns a read-only Item displaying body.
func NewItem(id, title, body string) *Item {
	item := newItem(id, title, edit.New(edit.Options{Text: body}))
	item.editorPresentation.readonly = true
	return item
}

// NewNote returns an Item whose text is saved with save once the user stops typing.
func NewNote(id, title, body string, save func(text string)) *Item {
	editor := edit.New(edit.Options{Text: body})
	debounced := debounce.New(SaveDelay)
	editor.OnTextSet(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: func(app gowid.IApp, iw gowid.IWidget) {
		text := editor.Text()
		debounced(func() {
			save(text)
		})
	}})

	return newItem(id, title, editor)
}

func newItem(id, title string, editor *edit.Widget) *Item {
	return &Item{
		ID:    id,
		title: title,
		presentation: selectable.New(
			styled.NewExt(
				text.New(title),
				gowid.MakePaletteRef("normal"), gowid.MakePaletteRef("focused"),
			),
		),
		editorPresentation: newItemEditor(editor),
	}
}

// Title returns the name of the editor.
func (w *Item) Title() string {
	return w.title
}

// Editor returns the ItemEditor of the Item.
func (w *Item) Editor() *ItemEditor {
	return w.editorPresentation
}

////////////////////
//                //
// Delegates      //
//                //
////////////////////

// Render implements gowid.IWidget
func (w *Item) Render(size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) gowid.ICanvas {
	return w.presentation.Render(size, focus, app)
}

// RenderSize implements gowid.IWidget
func (w *Item) RenderSize(size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) gowid.IRenderBox {
	return w.presentation.RenderSize(size, focus, app)
}

// UserInput implements gowid.IWidget
func (w *Item) UserInput(ev any, size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) bool {
	return w.presentation.UserInput(ev, size, focus, app)
}

// Selectable implements gowid.IWidget
func (w *Item) Selectable() bool {
	return w.presentation.Selectable()
}

////////////////////
//                //
// Editor         //
//                //
////////////////////

// An ItemEditor is the scrollable content of an Item.
type ItemEditor struct {
	*columns.Widget
	e        *edit.Widget
	sb       *vscroll.Widget
	goUpDown int // positive means down
	pgUpDown int // positive means down
	readonly bool
}

func newItemEditor(e *edit.Widget) *ItemEditor {
	sb := vscroll.NewExt(vscroll.VerticalScrollbarUnicodeRunes)
	ie := &ItemEditor{
		Widget: columns.New([]gowid.IContainerWidget{
			&gowid.ContainerWidget{IWidget: e, D: gowid.RenderWithWeight{W: 1}},
			&gowid.ContainerWidget{IWidget: sb, D: gowid.RenderWithUnits{U: 1}},
		}),
		e:  e,
		sb: sb,
	}
	sb.OnClickAbove(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: func(gowid.IApp, gowid.IWidget) { ie.pgUpDown-- }})
	sb.OnClickBelow(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: func(gowid.IApp, gowid.IWidget) { ie.pgUpDown++ }})
	sb.OnClickUpArrow(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: func(gowid.IApp, gowid.IWidget) { ie.goUpDown-- }})
	sb.OnClickDownArrow(gowid.WidgetCallback{Name: "cb", WidgetChangedFunction: func(gowid.IApp, gowid.IWidget) { ie.goUpDown++ }})
	return ie
}

// UserInput implements gowid.IWidget
func (w *ItemEditor) UserInput(ev any, size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) bool {
	box, _ := size.(gowid.IRenderBox)
	w.sb.Top, w.sb.Middle, w.sb.Bottom = w.e.CalculateTopMiddleBottom(gowid.MakeRenderBox(box.BoxColumns()-1, box.BoxRows()))

	if k, ok := ev.(*tcell.EventKey); ok {
		if w.readonly && modifies(k) {
			return false
		}

		switch k.Key() {
		case tcell.KeyHome:
			ev = tcell.NewEventKey(tcell.KeyCtrlA, ' ', tcell.ModNone) // start of line for the edit widget
		case tcell.KeyEnd:
			ev = tcell.NewEventKey(tcell.KeyCtrlE, ' ', tcell.ModNone) // end of line for the edit widget
		}
	}

	handled := w.Widget.UserInput(ev, size, focus, app)
	if handled {
		w.Widget.SetFocus(app, 0)
	}
	return handled
}

// Render implements gowid.IWidget
func (w *ItemEditor) Render(size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) gowid.ICanvas {
	box, _ := size.(gowid.IRenderBox)
	ecols := box.BoxColumns() - 1
	ebox := gowid.MakeRenderBox(ecols, box.BoxRows())
	if w.goUpDown != 0 || w.pgUpDown != 0 {
		w.e.SetLinesFromTop(gwutil.Max(0, w.e.LinesFromTop()+w.goUpDown+(w.pgUpDown*box.BoxRows())), app)
		txt := w.e.MakeText()
		layout := text.MakeTextLayout(txt.Content(), ecols, txt.Wrap(), gowid.HAlignLeft{})
		_, y := text.GetCoordsFromCursorPos(w.e.CursorPos(), ecols, layout, w.e)
		if y < w.e.LinesFromTop() {
			for i := y; i < w.e.LinesFromTop(); i++ {
				w.e.DownLines(ebox, false, app)
			}
		} else if y >= w.e.LinesFromTop()+box.BoxRows() {
			for i := w.e.LinesFromTop() + box.BoxRows(); i <= y; i++ {
				w.e.UpLines(ebox, false, app)
			}
		}
	}
	w.goUpDown = 0
	w.pgUpDown = 0
	w.sb.Top, w.sb.Middle, w.sb.Bottom = w.e.CalculateTopMiddleBottom(ebox)

	return w.Widget.Render(size, focus, app)
}

func modifies(k *tcell.EventKey) bool {
	switch k.Key() {
	case tcell.KeyRune, tcell.KeyEnter, tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete, tcell.KeyTab,
		tcell.KeyCtrlK, tcell.KeyCtrlU, tcell.KeyCtrlW:
		return true
	}
	return false
}
