package model

import (
	"time"

	"github.com/pkg/errors"
)

// DateLayout is the layout of snapshot and menu entry dates.
const DateLayout = "2006-01-02"

// A Snapshot is a read-only capture of the whole board for a given day.
type Snapshot struct {
	Base `msgpack:",inline" storm:"inline"`

	Date      string  `json:"date"                 msgpack:"date"       storm:"unique" db:"date"`
	Items     []*Item `json:"items_data"           msgpack:"items_data"                db:"-"`
	CreatedBy string  `json:"created_by,omitempty" msgpack:"created_by"                db:"created_by"`
}

// NewSnapshot captures the given items for the day of t.
// The items are deep copied so the snapshot is not affected by further board changes.
func NewSnapshot(t time.Time, items []*Item, author string) *Snapshot {
	return &Snapshot{
		Date:      t.Format(DateLayout),
		Items:     CloneItems(items),
		CreatedBy: author,
	}
}

// CloneItems deep copies items.
func CloneItems(items []*Item) []*Item {
	clone := make([]*Item, 0, len(items))
	for _, item := range items {
		clone = append(clone, item.Clone())
	}
	return clone
}

// ValidateDate checks that date is in the YYYY-MM-DD format.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return errors.Wrapf(ErrInvalid, "date %q is not formatted as YYYY-MM-DD", date)
	}
	return nil
}
