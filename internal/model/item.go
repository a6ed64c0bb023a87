package model

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// Supported item types.
const (
	TypeNote    ItemType = "note"
	TypePhoto   ItemType = "photo"
	TypeList    ItemType = "list"
	TypeReceipt ItemType = "receipt"
	TypeMenu    ItemType = "menu"
)

// ItemTypes lists all the supported item types.
var ItemTypes = []ItemType{TypeNote, TypePhoto, TypeList, TypeReceipt, TypeMenu}

// ErrInvalid is returned when a model does not pass its validation.
var ErrInvalid = errors.New("invalid")

type (
	// An ItemType is the kind of an item pinned on the board.
	ItemType string

	// An Item is something pinned on the board.
	// Its position is the top-left corner in workspace units and its rotation is in degrees.
	Item struct {
		Base `msgpack:",inline" storm:"inline"`

		Type      ItemType        `json:"type"                 msgpack:"type"       storm:"index" db:"type"`
		X         float64         `json:"x"                    msgpack:"x"                        db:"x"`
		Y         float64         `json:"y"                    msgpack:"y"                        db:"y"`
		Rotation  float64         `json:"rotation"             msgpack:"rotation"                 db:"rotation"`
		ZIndex    int             `json:"z_index"              msgpack:"z_index"    storm:"index" db:"z_index"`
		Color     string          `json:"color,omitempty"      msgpack:"color"                    db:"color"`
		CreatedBy string          `json:"created_by,omitempty" msgpack:"created_by"               db:"created_by"`
		UpdatedBy string          `json:"updated_by,omitempty" msgpack:"updated_by"               db:"updated_by"`
		Content   json.RawMessage `json:"content"              msgpack:"content"                  db:"content"`
	}

	// A Patch is a partial update of an item. Nil fields are left untouched.
	Patch struct {
		X         *float64        `json:"x,omitempty"`
		Y         *float64        `json:"y,omitempty"`
		Rotation  *float64        `json:"rotation,omitempty"`
		ZIndex    *int            `json:"z_index,omitempty"`
		Color     *string         `json:"color,omitempty"`
		UpdatedBy *string         `json:"updated_by,omitempty"`
		Content   json.RawMessage `json:"content,omitempty"`
	}
)

// ParseItemType returns the ItemType named by s.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(s)
	if !t.Valid() {
		return "", errors.Wrapf(ErrInvalid, "unknown item type %q", s)
	}
	return t, nil
}

// Valid returns true if t is a supported item type.
func (t ItemType) Valid() bool {
	for _, v := range ItemTypes {
		if t == v {
			return true
		}
	}
	return false
}

// NewItem returns a new item of type t with its default content at the given position.
func NewItem(t ItemType, x, y float64) (*Item, error) {
	if !t.Valid() {
		return nil, errors.Wrapf(ErrInvalid, "unknown item type %q", t)
	}

	m := &Item{
		Type: t,
		X:    x,
		Y:    y,
	}
	if t == TypeNote {
		m.Color = DefaultNoteColor
	}
	return m, m.Encode(DefaultContent(t))
}

// Decode returns the typed content of the item.
// A missing content is decoded as the default content of the item's type.
func (m *Item) Decode() (Content, error) {
	if empty(m.Content) {
		return DefaultContent(m.Type), nil
	}
	return DecodeContent(m.Type, m.Content)
}

// Encode replaces the content of the item.
func (m *Item) Encode(c Content) error {
	if c == nil {
		return errors.Wrap(ErrInvalid, "nil content")
	}
	if c.ItemType() != m.Type {
		return errors.Wrapf(ErrInvalid, "%s content on a %s item", c.ItemType(), m.Type)
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "could not encode content")
	}
	m.Content = payload
	return nil
}

// Validate checks the item consistency.
func (m *Item) Validate() error {
	if !m.Type.Valid() {
		return errors.Wrapf(ErrInvalid, "unknown item type %q", m.Type)
	}
	if !finite(m.X) || !finite(m.Y) || !finite(m.Rotation) {
		return errors.Wrap(ErrInvalid, "position and rotation must be finite numbers")
	}
	if m.Color != "" && m.Type != TypeNote {
		return errors.Wrap(ErrInvalid, "only notes have a color")
	}
	_, err := m.Decode()
	return err
}

// Apply merges the patch into the item.
// The item is left untouched when the patch is invalid.
func (m *Item) Apply(p Patch) error {
	n := *m

	if p.X != nil {
		n.X = *p.X
	}
	if p.Y != nil {
		n.Y = *p.Y
	}
	if p.Rotation != nil {
		n.Rotation = *p.Rotation
	}
	if p.ZIndex != nil {
		n.ZIndex = *p.ZIndex
	}
	if p.Color != nil {
		n.Color = *p.Color
	}
	if p.UpdatedBy != nil {
		n.UpdatedBy = *p.UpdatedBy
	}
	if !empty(p.Content) {
		n.Content = append(json.RawMessage(nil), p.Content...)
	}

	if err := n.Validate(); err != nil {
		return err
	}

	*m = n
	return nil
}

// Clone returns a deep copy of the item.
func (m *Item) Clone() *Item {
	n := *m
	n.Content = append(json.RawMessage(nil), m.Content...)
	if m.CreatedAt != nil {
		t := *m.CreatedAt
		n.CreatedAt = &t
	}
	if m.UpdatedAt != nil {
		t := *m.UpdatedAt
		n.UpdatedAt = &t
	}
	return &n
}

// Empty returns true if the patch changes nothing.
func (p Patch) Empty() bool {
	return p.X == nil && p.Y == nil && p.Rotation == nil && p.ZIndex == nil &&
		p.Color == nil && p.UpdatedBy == nil && empty(p.Content)
}

// Merge returns a patch holding the fields of p overridden by the fields of o.
func (p Patch) Merge(o Patch) Patch {
	if o.X != nil {
		p.X = o.X
	}
	if o.Y != nil {
		p.Y = o.Y
	}
	if o.Rotation != nil {
		p.Rotation = o.Rotation
	}
	if o.ZIndex != nil {
		p.ZIndex = o.ZIndex
	}
	if o.Color != nil {
		p.Color = o.Color
	}
	if o.UpdatedBy != nil {
		p.UpdatedBy = o.UpdatedBy
	}
	if !empty(o.Content) {
		p.Content = o.Content
	}
	return p
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}

func empty(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
