package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/pkg/workspace"
	"github.com/pkg/errors"
)

const (
	pageWidth  = 297.0 // A4 landscape, in mm
	pageHeight = 210.0
	margin     = 10.0
)

// PDF renders the given items as a single landscape A4 page.
// The workspace is scaled to fit the page, items are drawn rotated around their center
// and stacked in the given order.
func PDF(w io.Writer, title string, items []*model.Item) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Board
	t := workspace.Fit(workspace.Size{Width: pageWidth, Height: pageHeight - margin}, margin)
	pdf.SetFillColor(196, 154, 108) // cork
	pdf.Rect(t.OffsetX, t.OffsetY+margin, t.Width, t.Height, "F")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(margin, margin/2)
	pdf.CellFormat(pageWidth-2*margin, margin/2, tr(title), "", 0, "L", false, 0, "")

	for _, item := range items {
		if err := drawItem(pdf, tr, t, item); err != nil {
			return err
		}
	}

	return errors.Wrap(pdf.Output(w), "could not render pdf")
}

func drawItem(pdf *gofpdf.Fpdf, tr func(string) string, t workspace.Transform, item *model.Item) error {
	content, err := item.Decode()
	if err != nil {
		return errors.Wrapf(err, "item %s", item.ID)
	}

	size := model.DefaultSize(item.Type)
	origin := t.ToScreen(workspace.Point{X: item.X, Y: item.Y})
	origin.Y += margin
	w, h := size.Width*t.Scale, size.Height*t.Scale
	center := origin.Add(workspace.Point{X: w / 2, Y: h / 2})

	pdf.TransformBegin()
	// PDF rotation is counterclockwise while board rotation is clockwise.
	pdf.TransformRotate(-item.Rotation, center.X, center.Y)

	r, g, b := background(item)
	pdf.SetFillColor(r, g, b)
	pdf.SetDrawColor(90, 90, 90)
	pdf.SetLineWidth(0.1)
	pdf.Rect(origin.X, origin.Y, w, h, "FD")

	pdf.SetFont("Helvetica", "", 5)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetXY(origin.X+1, origin.Y+1)
	pdf.MultiCell(w-2, 2.2, tr(Text(content)), "", "L", false)

	pdf.TransformEnd()
	return nil
}

// Text returns the plain text rendering of an item content.
func Text(c model.Content) string {
	var b strings.Builder

	switch v := c.(type) {
	case model.NoteContent:
		b.WriteString(v.Text)
	case model.PhotoContent:
		fmt.Fprintf(&b, "[photo] %s\n%s", v.URL, v.Caption)
	case model.ListContent:
		b.WriteString(v.Title)
		for _, e := range v.Entries {
			mark := " "
			if e.Checked {
				mark = "x"
			}
			fmt.Fprintf(&b, "\n[%s] %s", mark, e.Text)
		}
	case model.ReceiptContent:
		fmt.Fprintf(&b, "%s %s", v.Store, v.Date)
		for _, l := range v.Lines {
			fmt.Fprintf(&b, "\n%s %.2f", l.Name, l.Price)
		}
		fmt.Fprintf(&b, "\nTotal %.2f", v.Total)
	case model.MenuContent:
		b.WriteString(v.Title)
		for _, s := range v.Sections {
			fmt.Fprintf(&b, "\n%s: %s", s.Name, strings.Join(s.Dishes, ", "))
		}
	}

	return strings.TrimSpace(b.String())
}

func background(item *model.Item) (r, g, b int) {
	switch item.Type {
	case model.TypeNote:
		if r, g, b, ok := hex(item.Color); ok {
			return r, g, b
		}
		return 255, 244, 117
	case model.TypeReceipt:
		return 250, 250, 245
	case model.TypeMenu:
		return 245, 238, 220
	}
	return 255, 255, 255
}

func hex(color string) (r, g, b int, ok bool) {
	color = strings.TrimPrefix(color, "#")
	if len(color) != 6 {
		return 0, 0, 0, false
	}

	v, err := strconv.ParseUint(color, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), true
}
