package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/pkg/workspace"
	"github.com/pkg/errors"
)

// A View is a pinned item as drawn on screen.
type View struct {
	Item     *model.Item    `json:"item"`
	Frame    Frame          `json:"frame"`
	Size     workspace.Size `json:"size"`
	Selected bool           `json:"selected"`
	Focused  bool           `json:"focused"`
	// Editable is true when the edit controls of the item are shown.
	Editable bool `json:"editable"`
}

// Views returns the views of all the items from back to front.
// The held item is drawn at its drag preview and the rotated item at its current angle.
func (c *Controller) Views() []View {
	items := c.store.Items()
	views := make([]View, 0, len(items))

	var focused *View
	for _, item := range items {
		v := c.view(item)
		if v.Focused {
			focused = &v
			continue
		}
		views = append(views, v)
	}

	// The focused item is drawn above everything else.
	if focused != nil {
		views = append(views, *focused)
	}
	return views
}

// View returns the view of the item.
func (c *Controller) View(id string) (View, bool) {
	item, ok := c.store.Find(id)
	if !ok {
		return View{}, false
	}
	return c.view(item), true
}

func (c *Controller) view(item *model.Item) View {
	v := View{
		Item:     item,
		Frame:    c.boardFrame(item),
		Selected: c.selected == item.ID,
		Focused:  c.focus != nil && c.focus.id == item.ID,
		Editable: c.editable(item.ID),
	}

	switch {
	case v.Focused:
		v.Frame = c.focusFrame(item)
	case c.drag != nil && c.drag.id == item.ID && c.canMove():
		v.Frame.Origin = c.drag.preview
	case c.rotate != nil && c.rotate.id == item.ID:
		v.Frame.Rotation = c.rotate.session.Rotation()
	}

	size := model.DefaultSize(item.Type)
	v.Size = workspace.Size{Width: size.Width * v.Frame.Scale, Height: size.Height * v.Frame.Scale}
	return v
}

// Render writes the text rendering of the view.
func Render(w io.Writer, v View) error {
	content, err := v.Item.Decode()
	if err != nil {
		return errors.Wrapf(err, "could not render item %s", v.Item.ID)
	}

	var marks []string
	if v.Selected {
		marks = append(marks, "selected")
	}
	if v.Focused {
		marks = append(marks, "focused")
	}
	if v.Editable {
		marks = append(marks, "editable")
	}

	header := fmt.Sprintf("[%s] %s at (%.0f, %.0f) %.1f°", v.Item.Type, v.Item.ID, v.Item.X, v.Item.Y, v.Item.Rotation)
	if len(marks) > 0 {
		header += " (" + strings.Join(marks, ", ") + ")"
	}

	var body []string
	switch c := content.(type) {
	case model.NoteContent:
		body = renderNote(c, v.Item.Color)
	case model.PhotoContent:
		body = renderPhoto(c)
	case model.ListContent:
		body = renderList(c, v.Editable)
	case model.ReceiptContent:
		body = renderReceipt(c, v.Editable)
	case model.MenuContent:
		body = renderMenu(c, v.Editable)
	}

	if _, err = fmt.Fprintln(w, header); err != nil {
		return err
	}
	for _, line := range body {
		if _, err = fmt.Fprintln(w, "  "+line); err != nil {
			return err
		}
	}
	return nil
}

func renderNote(c model.NoteContent, color string) []string {
	lines := []string{"color " + color}
	if c.Text == "" {
		return append(lines, "(empty)")
	}
	return append(lines, strings.Split(c.Text, "\n")...)
}

func renderPhoto(c model.PhotoContent) []string {
	url := c.URL
	if url == "" {
		url = "(no picture)"
	}
	lines := []string{url}
	if c.Caption != "" {
		lines = append(lines, "« "+c.Caption+" »")
	}
	return lines
}

func renderList(c model.ListContent, editable bool) []string {
	lines := []string{c.Title}
	for i, e := range c.Entries {
		box := "[ ]"
		if e.Checked {
			box = "[x]"
		}
		lines = append(lines, index(i, editable)+box+" "+e.Text)
	}
	if editable {
		lines = append(lines, "+ add entry")
	}
	return lines
}

func renderReceipt(c model.ReceiptContent, editable bool) []string {
	lines := []string{strings.TrimSpace(c.Store + " " + c.Date)}
	for i, l := range c.Lines {
		lines = append(lines, fmt.Sprintf("%s%-24s %8.2f", index(i, editable), l.Name, l.Price))
	}
	if editable {
		lines = append(lines, "+ add line")
	}
	return append(lines, fmt.Sprintf("%-24s %8.2f", "TOTAL", c.Total))
}

func renderMenu(c model.MenuContent, editable bool) []string {
	lines := []string{c.Title}
	for i, s := range c.Sections {
		lines = append(lines, index(i, editable)+s.Name)
		for j, dish := range s.Dishes {
			lines = append(lines, "  "+index(j, editable)+"- "+dish)
		}
		if editable {
			lines = append(lines, "  + add dish")
		}
	}
	if editable {
		lines = append(lines, "+ add section")
	}
	return lines
}

func index(i int, editable bool) string {
	if !editable {
		return ""
	}
	return fmt.Sprintf("%d. ", i)
}
