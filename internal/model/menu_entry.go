package model

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// A MenuEntry is the capture of a menu item for a given day.
// There is at most one entry per (date, item).
type MenuEntry struct {
	Base `msgpack:",inline" storm:"inline"`

	Date      string          `json:"date"                 msgpack:"date"       storm:"index" db:"date"`
	ItemID    string          `json:"item_id"              msgpack:"item_id"    storm:"index" db:"item_id"`
	Title     string          `json:"title"                msgpack:"title"                    db:"title"`
	Content   json.RawMessage `json:"content"              msgpack:"content"                  db:"content"`
	CreatedBy string          `json:"created_by,omitempty" msgpack:"created_by"               db:"created_by"`
}

// NewMenuEntry captures the menu item for the day of t.
func NewMenuEntry(t time.Time, item *Item, author string) (*MenuEntry, error) {
	if item.Type != TypeMenu {
		return nil, errors.Wrapf(ErrInvalid, "item %s is a %s, not a menu", item.ID, item.Type)
	}

	c, err := item.Decode()
	if err != nil {
		return nil, err
	}
	menu := c.(MenuContent)

	payload, err := json.Marshal(menu)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode menu")
	}

	return &MenuEntry{
		Date:      t.Format(DateLayout),
		ItemID:    item.ID,
		Title:     menu.Title,
		Content:   payload,
		CreatedBy: author,
	}, nil
}

// Menu returns the captured menu.
func (m *MenuEntry) Menu() (MenuContent, error) {
	c, err := DecodeContent(TypeMenu, m.Content)
	if err != nil {
		return MenuContent{}, err
	}
	return c.(MenuContent), nil
}
