package model

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/mdouchement/corkboard/pkg/workspace"
	"github.com/pkg/errors"
)

// DefaultNoteColor is the tint of a newly created note.
const DefaultNoteColor = "#FFF475"

// ErrOutOfRange is returned when an editor targets a missing entry.
var ErrOutOfRange = errors.New("out of range")

type (
	// Content is the type-specific payload of an item.
	Content interface {
		ItemType() ItemType
	}

	// NoteContent is the payload of a post-it note.
	NoteContent struct {
		Text string `json:"text"`
	}

	// PhotoContent is the payload of a pinned photo.
	PhotoContent struct {
		URL     string `json:"url"`
		Caption string `json:"caption"`
	}

	// ListContent is the payload of a checklist.
	ListContent struct {
		Title   string      `json:"title"`
		Entries []ListEntry `json:"entries"`
	}

	// A ListEntry is a checkbox line of a list.
	ListEntry struct {
		Text    string `json:"text"`
		Checked bool   `json:"checked"`
	}

	// ReceiptContent is the payload of a shopping receipt.
	ReceiptContent struct {
		Store string        `json:"store"`
		Date  string        `json:"date"`
		Lines []ReceiptLine `json:"lines"`
		Total float64       `json:"total"`
	}

	// A ReceiptLine is a bought article.
	ReceiptLine struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}

	// MenuContent is the payload of a weekly menu.
	MenuContent struct {
		Title    string        `json:"title"`
		Sections []MenuSection `json:"sections"`
	}

	// A MenuSection groups dishes (e.g. a day or a meal).
	MenuSection struct {
		Name   string   `json:"name"`
		Dishes []string `json:"dishes"`
	}
)

// ItemType implements Content.
func (NoteContent) ItemType() ItemType { return TypeNote }

// ItemType implements Content.
func (PhotoContent) ItemType() ItemType { return TypePhoto }

// ItemType implements Content.
func (ListContent) ItemType() ItemType { return TypeList }

// ItemType implements Content.
func (ReceiptContent) ItemType() ItemType { return TypeReceipt }

// ItemType implements Content.
func (MenuContent) ItemType() ItemType { return TypeMenu }

// DecodeContent decodes the payload of an item of type t.
// Unknown fields are rejected.
func DecodeContent(t ItemType, raw []byte) (Content, error) {
	var err error

	switch t {
	case TypeNote:
		var c NoteContent
		err = decodeStrict(raw, &c)
		return c, err
	case TypePhoto:
		var c PhotoContent
		err = decodeStrict(raw, &c)
		return c, err
	case TypeList:
		var c ListContent
		err = decodeStrict(raw, &c)
		return c, err
	case TypeReceipt:
		var c ReceiptContent
		if err = decodeStrict(raw, &c); err == nil && !finite(c.Total) {
			err = errors.Wrap(ErrInvalid, "receipt total must be finite")
		}
		return c, err
	case TypeMenu:
		var c MenuContent
		err = decodeStrict(raw, &c)
		return c, err
	}

	return nil, errors.Wrapf(ErrInvalid, "unknown item type %q", t)
}

// DefaultContent returns the payload of a newly created item of type t.
func DefaultContent(t ItemType) Content {
	switch t {
	case TypeNote:
		return NoteContent{}
	case TypePhoto:
		return PhotoContent{}
	case TypeList:
		return ListContent{Title: "To do", Entries: []ListEntry{}}
	case TypeReceipt:
		return ReceiptContent{Lines: []ReceiptLine{}}
	case TypeMenu:
		return MenuContent{Title: "Menu", Sections: []MenuSection{}}
	}
	return nil
}

// DefaultSize returns the nominal rendered size of an item of type t in workspace units.
func DefaultSize(t ItemType) workspace.Size {
	switch t {
	case TypeNote:
		return workspace.Size{Width: 200, Height: 200}
	case TypePhoto:
		return workspace.Size{Width: 240, Height: 280}
	case TypeList:
		return workspace.Size{Width: 220, Height: 300}
	case TypeReceipt:
		return workspace.Size{Width: 200, Height: 340}
	case TypeMenu:
		return workspace.Size{Width: 280, Height: 360}
	}
	return workspace.Size{Width: 200, Height: 200}
}

func decodeStrict(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(ErrInvalid, "malformed content: %s", err)
	}
	return nil
}

///////////////////
//               //
// Editors       //
//               //
///////////////////

// AddEntry appends an unchecked entry to the list.
func (c *ListContent) AddEntry(text string) {
	c.Entries = append(c.Entries, ListEntry{Text: text})
}

// RemoveEntry removes the i-th entry.
func (c *ListContent) RemoveEntry(i int) error {
	if i < 0 || i >= len(c.Entries) {
		return errors.Wrapf(ErrOutOfRange, "entry %d", i)
	}
	c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
	return nil
}

// ToggleEntry flips the checked state of the i-th entry.
func (c *ListContent) ToggleEntry(i int) error {
	if i < 0 || i >= len(c.Entries) {
		return errors.Wrapf(ErrOutOfRange, "entry %d", i)
	}
	c.Entries[i].Checked = !c.Entries[i].Checked
	return nil
}

// AddLine appends a line to the receipt and recomputes its total.
func (c *ReceiptContent) AddLine(name string, price float64) error {
	if !finite(price) {
		return errors.Wrap(ErrInvalid, "price must be a finite number")
	}
	c.Lines = append(c.Lines, ReceiptLine{Name: name, Price: price})
	c.ComputeTotal()
	return nil
}

// RemoveLine removes the i-th line and recomputes the total.
func (c *ReceiptContent) RemoveLine(i int) error {
	if i < 0 || i >= len(c.Lines) {
		return errors.Wrapf(ErrOutOfRange, "line %d", i)
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	c.ComputeTotal()
	return nil
}

// ComputeTotal sums the line prices, rounded to the cent.
func (c *ReceiptContent) ComputeTotal() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Price
	}
	c.Total = math.Round(total*100) / 100
	return c.Total
}

// AddSection appends an empty section to the menu.
func (c *MenuContent) AddSection(name string) {
	c.Sections = append(c.Sections, MenuSection{Name: name, Dishes: []string{}})
}

// RemoveSection removes the i-th section.
func (c *MenuContent) RemoveSection(i int) error {
	if i < 0 || i >= len(c.Sections) {
		return errors.Wrapf(ErrOutOfRange, "section %d", i)
	}
	c.Sections = append(c.Sections[:i], c.Sections[i+1:]...)
	return nil
}

// AddDish appends a dish to the i-th section.
func (c *MenuContent) AddDish(section int, dish string) error {
	if section < 0 || section >= len(c.Sections) {
		return errors.Wrapf(ErrOutOfRange, "section %d", section)
	}
	c.Sections[section].Dishes = append(c.Sections[section].Dishes, dish)
	return nil
}

// RemoveDish removes a dish from a section.
func (c *MenuContent) RemoveDish(section, dish int) error {
	if section < 0 || section >= len(c.Sections) {
		return errors.Wrapf(ErrOutOfRange, "section %d", section)
	}
	dishes := c.Sections[section].Dishes
	if dish < 0 || dish >= len(dishes) {
		return errors.Wrapf(ErrOutOfRange, "dish %d", dish)
	}
	c.Sections[section].Dishes = append(dishes[:dish], dishes[dish+1:]...)
	return nil
}
