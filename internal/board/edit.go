package board

import (
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/pkg/errors"
)

// ErrWrongType is returned when an editor does not match the item type.
var ErrWrongType = errors.New("editor does not apply to this item type")

// An Editor modifies the decoded content of an item.
type Editor func(content model.Content) (model.Content, error)

// Edit applies the editor on the content of the item and saves the result.
// The item must be editable: selected in edit mode, or focused.
func (c *Controller) Edit(id string, fn Editor) error {
	if !c.editable(id) {
		return ErrNotEditable
	}

	item, ok := c.store.Find(id)
	if !ok {
		return ErrNotFound
	}

	content, err := item.Decode()
	if err != nil {
		return err
	}
	content, err = fn(content)
	if err != nil {
		return err
	}
	if err = item.Encode(content); err != nil {
		return err
	}

	_, err = c.store.Update(id, model.Patch{Content: item.Content})
	return err
}

// SetColor changes the tint of a note.
func (c *Controller) SetColor(id, color string) error {
	if !c.editable(id) {
		return ErrNotEditable
	}

	ok, err := c.store.Update(id, model.Patch{Color: model.String(color)})
	if !ok && err == nil {
		return ErrNotFound
	}
	return err
}

// SetText replaces the text of a note.
func SetText(text string) Editor {
	return note(func(n *model.NoteContent) error {
		n.Text = text
		return nil
	})
}

// SetPhoto replaces the picture of a photo.
func SetPhoto(url string) Editor {
	return photo(func(p *model.PhotoContent) error {
		p.URL = url
		return nil
	})
}

// SetCaption replaces the caption of a photo.
func SetCaption(caption string) Editor {
	return photo(func(p *model.PhotoContent) error {
		p.Caption = caption
		return nil
	})
}

// SetTitle replaces the title of a list or a menu.
func SetTitle(title string) Editor {
	return func(content model.Content) (model.Content, error) {
		switch v := content.(type) {
		case model.ListContent:
			v.Title = title
			return v, nil
		case model.MenuContent:
			v.Title = title
			return v, nil
		}
		return nil, ErrWrongType
	}
}

// AddEntry appends an entry to a list.
func AddEntry(text string) Editor {
	return list(func(l *model.ListContent) error {
		l.AddEntry(text)
		return nil
	})
}

// RemoveEntry removes the i-th entry of a list.
func RemoveEntry(i int) Editor {
	return list(func(l *model.ListContent) error {
		return l.RemoveEntry(i)
	})
}

// ToggleEntry checks or unchecks the i-th entry of a list.
func ToggleEntry(i int) Editor {
	return list(func(l *model.ListContent) error {
		return l.ToggleEntry(i)
	})
}

// SetStore sets the store name and the date of a receipt.
func SetStore(name, date string) Editor {
	return receipt(func(r *model.ReceiptContent) error {
		r.Store = name
		r.Date = date
		return nil
	})
}

// AddLine appends a line to a receipt.
func AddLine(name string, price float64) Editor {
	return receipt(func(r *model.ReceiptContent) error {
		return r.AddLine(name, price)
	})
}

// RemoveLine removes the i-th line of a receipt.
func RemoveLine(i int) Editor {
	return receipt(func(r *model.ReceiptContent) error {
		return r.RemoveLine(i)
	})
}

// AddSection appends a section to a menu.
func AddSection(name string) Editor {
	return menu(func(m *model.MenuContent) error {
		m.AddSection(name)
		return nil
	})
}

// RemoveSection removes the i-th section of a menu.
func RemoveSection(i int) Editor {
	return menu(func(m *model.MenuContent) error {
		return m.RemoveSection(i)
	})
}

// AddDish appends a dish to a section of a menu.
func AddDish(section int, dish string) Editor {
	return menu(func(m *model.MenuContent) error {
		return m.AddDish(section, dish)
	})
}

// RemoveDish removes a dish from a section of a menu.
func RemoveDish(section, dish int) Editor {
	return menu(func(m *model.MenuContent) error {
		return m.RemoveDish(section, dish)
	})
}

func note(fn func(*model.NoteContent) error) Editor {
	return func(content model.Content) (model.Content, error) {
		v, ok := content.(model.NoteContent)
		if !ok {
			return nil, ErrWrongType
		}
		err := fn(&v)
		return v, err
	}
}

func photo(fn func(*model.PhotoContent) error) Editor {
	return func(content model.Content) (model.Content, error) {
		v, ok := content.(model.PhotoContent)
		if !ok {
			return nil, ErrWrongType
		}
		err := fn(&v)
		return v, err
	}
}

func list(fn func(*model.ListContent) error) Editor {
	return func(content model.Content) (model.Content, error) {
		v, ok := content.(model.ListContent)
		if !ok {
			return nil, ErrWrongType
		}
		err := fn(&v)
		return v, err
	}
}

func receipt(fn func(*model.ReceiptContent) error) Editor {
	return func(content model.Content) (model.Content, error) {
		v, ok := content.(model.ReceiptContent)
		if !ok {
			return nil, ErrWrongType
		}
		err := fn(&v)
		return v, err
	}
}

func menu(fn func(*model.MenuContent) error) Editor {
	return func(content model.Content) (model.Content, error) {
		v, ok := content.(model.MenuContent)
		if !ok {
			return nil, ErrWrongType
		}
		err := fn(&v)
		return v, err
	}
}
