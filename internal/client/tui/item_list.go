package tui

import (
	"github.com/gcla/gowid"
	"github.com/gcla/gowid/widgets/list"
	"github.com/gcla/gowid/widgets/null"
	"github.com/gdamore/tcell/v2"
)

// An ItemList is the list of the pinned items, from back to front.
// It implements gowid.IWidget by delegating to its presentation.
type ItemList struct {
	ui           *TUI
	presentation list.IWidget
	abstraction  *itemListAbstraction
}

// NewItemList returns a new ItemList.
func NewItemList(ui *TUI) *ItemList {
	abs := newItemListAbstraction()

	return &ItemList{
		ui:           ui,
		presentation: list.New(abs),
		abstraction:  abs,
	}
}

// Register registers an item to this list.
// An already registered item is replaced in place.
func (w *ItemList) Register(i *Item) {
	n := w.abstraction.Add(i)
	if n == 1 {
		w.display(0)
	}
}

// Reset replaces all the items of the list and keeps the focus on the same item when it still exists.
func (w *ItemList) Reset(items []*Item) {
	focused := w.abstraction.Focused()
	w.abstraction.Reset(items)

	for i, item := range items {
		if item.ID == focused {
			w.abstraction.SetFocus(list.ListPos(i), w.ui.App)
			w.display(i)
			return
		}
	}

	w.abstraction.SetFocus(list.ListPos(0), w.ui.App)
	if len(items) == 0 {
		w.ui.editor.SetTitle("", w.ui.App)
		w.ui.editor.SetSubWidget(null.New(), w.ui.App)
		return
	}
	w.display(0)
}

// Focused returns the ID of the focused item.
func (w *ItemList) Focused() string {
	return w.abstraction.Focused()
}

func (w *ItemList) display(i int) {
	item := w.abstraction.ItemAt(i)
	w.ui.editor.SetTitle(item.Title(), w.ui.App)
	w.ui.editor.SetSubWidget(item.Editor(), w.ui.App)
}

////////////////////
//                //
// Delegates      //
//                //
////////////////////

// Render implements gowid.IWidget
func (w *ItemList) Render(size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) gowid.ICanvas {
	return w.presentation.Render(size, focus, app)
}

// RenderSize implements gowid.IWidget
func (w *ItemList) RenderSize(size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) gowid.IRenderBox {
	return w.presentation.RenderSize(size, focus, app)
}

// UserInput implements gowid.IWidget
func (w *ItemList) UserInput(ev any, size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) bool {
	ok := w.presentation.UserInput(ev, size, focus, app)

	if evm, ok := ev.(*tcell.EventMouse); !ok || evm.Buttons() != tcell.ButtonNone {
		// Mouse hovering does not change the displayed item.
		if item, ok := w.abstraction.At(w.abstraction.Focus()).(*Item); ok {
			w.ui.editor.SetTitle(item.Title(), app)
			w.ui.editor.SetSubWidget(item.Editor(), app)
		}
	}
	return ok
}

// Selectable implements gowid.IWidget
func (w *ItemList) Selectable() bool {
	return w.presentation.Selectable()
}

////////////////////
//                //
// Abstraction    //
//                //
////////////////////

// An itemListAbstraction implements list.IWalker interface.
type itemListAbstraction struct {
	widgets []*Item
	indexes map[string]int
	focus   list.ListPos
}

func newItemListAbstraction() *itemListAbstraction {
	return &itemListAbstraction{
		widgets: make([]*Item, 0),
		indexes: make(map[string]int),
	}
}

func (w *itemListAbstraction) Add(item *Item) int {
	if i, ok := w.indexes[item.ID]; ok {
		w.widgets[i] = item
		return len(w.widgets)
	}

	w.indexes[item.ID] = len(w.widgets)
	w.widgets = append(w.widgets, item)
	return len(w.widgets)
}

func (w *itemListAbstraction) Reset(items []*Item) {
	w.widgets = make([]*Item, 0, len(items))
	w.indexes = make(map[string]int, len(items))
	for _, item := range items {
		w.Add(item)
	}
}

func (w *itemListAbstraction) Focused() string {
	i := int(w.focus)
	if i < 0 || i >= len(w.widgets) {
		return ""
	}
	return w.widgets[i].ID
}

func (w *itemListAbstraction) ItemAt(i int) *Item {
	return w.widgets[i]
}

func (w *itemListAbstraction) First() list.IWalkerPosition {
	if len(w.widgets) == 0 {
		return nil
	}
	return list.ListPos(0)
}

func (w *itemListAbstraction) Last() list.IWalkerPosition {
	if len(w.widgets) == 0 {
		return nil
	}
	return list.ListPos(len(w.widgets) - 1)
}

func (w *itemListAbstraction) Length() int {
	return len(w.widgets)
}

func (w *itemListAbstraction) At(pos list.IWalkerPosition) gowid.IWidget {
	var res gowid.IWidget
	ipos := int(pos.(list.ListPos))
	if ipos >= 0 && ipos < w.Length() {
		res = w.widgets[ipos]
	}
	return res
}

func (w *itemListAbstraction) Focus() list.IWalkerPosition {
	return w.focus
}

func (w *itemListAbstraction) SetFocus(focus list.IWalkerPosition, app gowid.IApp) {
	w.focus = focus.(list.ListPos)
}

func (w *itemListAbstraction) Next(ipos list.IWalkerPosition) list.IWalkerPosition {
	pos := ipos.(list.ListPos)
	if int(pos) == w.Length()-1 {
		return list.ListPos(-1)
	}
	return pos + 1
}

func (w *itemListAbstraction) Previous(ipos list.IWalkerPosition) list.IWalkerPosition {
	pos := ipos.(list.ListPos)
	if pos-1 == -1 {
		return list.ListPos(-1)
	}
	return pos - 1
}
