package client

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mdouchement/corkboard/internal/board"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/pkg/errors"
)

// EditParams are the content changes applied by Edit, in this order.
type EditParams struct {
	Text    *string
	Photo   *string
	Caption *string
	Title   *string
	Color   *string
	// Store and date of a receipt, as "STORE@DATE".
	Store         *string
	AddEntries    []string
	ToggleEntries []int
	RemoveEntries []int
	// Receipt lines as "NAME=PRICE".
	AddLines    []string
	RemoveLines []int
	AddSections []string
	// Dishes as "SECTION=DISH".
	AddDishes []string
	// Dishes as "SECTION:DISH" indexes.
	RemoveDishes   []string
	RemoveSections []int
}

// List prints the pinned items from back to front.
func List(opts Options) error {
	return run(opts, func(ctx context.Context, s *session) error {
		for _, v := range s.board.Views() {
			fmt.Printf("%s  %-7s z=%-3d (%4.0f, %4.0f) %7.1f°  %s\n",
				v.Item.ID, v.Item.Type, v.Item.ZIndex, v.Item.X, v.Item.Y, v.Item.Rotation, v.Item.CreatedBy)
		}
		return nil
	})
}

// Show renders an item.
func Show(opts Options, id string) error {
	return run(opts, func(ctx context.Context, s *session) error {
		id, err := s.resolve(id)
		if err != nil {
			return err
		}
		return s.render(id)
	})
}

// Add pins a new item of the given type.
func Add(opts Options, typ string) error {
	t, err := model.ParseItemType(typ)
	if err != nil {
		return errors.Errorf("unknown item type %q (one of %s)", typ, types())
	}

	return run(opts, func(ctx context.Context, s *session) error {
		item, err := s.store.Add(ctx, t)
		if err != nil {
			return err
		}
		fmt.Println(item.ID)
		return nil
	})
}

// Edit changes the content of an item.
func Edit(opts Options, id string, params EditParams) error {
	editors, err := params.editors()
	if err != nil {
		return err
	}

	return run(opts, func(ctx context.Context, s *session) error {
		id, err := s.resolve(id)
		if err != nil {
			return err
		}

		s.board.SetEditMode(true)
		s.board.Select(id)

		if params.Color != nil {
			if err = s.board.SetColor(id, *params.Color); err != nil {
				return errors.Wrap(err, "could not change color")
			}
		}
		for _, editor := range editors {
			if err = s.board.Edit(id, editor); err != nil {
				return err
			}
		}

		return s.render(id)
	})
}

// Move moves an item to the given workspace position.
func Move(opts Options, id string, x, y float64) error {
	return run(opts, func(ctx context.Context, s *session) error {
		id, err := s.resolve(id)
		if err != nil {
			return err
		}

		s.board.SetEditMode(true)
		return s.board.Move(id, x, y)
	})
}

// Drag simulates a drag of an item between two screen positions of the viewport.
func Drag(opts Options, id, from, to string) error {
	start, err := ParsePoint(from)
	if err != nil {
		return err
	}
	end, err := ParsePoint(to)
	if err != nil {
		return err
	}

	return run(opts, func(ctx context.Context, s *session) error {
		id, err := s.resolve(id)
		if err != nil {
			return err
		}

		s.board.SetEditMode(true)
		if !s.board.ItemPointerDown(id, 1, start) {
			return errors.New("could not grab the item")
		}
		s.board.ItemPointerMove(1, end)
		moved, err := s.board.ItemPointerUp(1, end)
		if err != nil {
			return err
		}

		if !moved {
			fmt.Println("Tap: the item was not moved")
			return nil
		}

		item, _ := s.store.Find(id)
		fmt.Printf("Moved to (%g, %g)\n", item.X, item.Y)
		return nil
	})
}

// Rotate sets the rotation of an item in degrees.
func Rotate(opts Options, id string, degrees float64) error {
	return run(opts, func(ctx context.Context, s *session) error {
		id, err := s.resolve(id)
		if err != nil {
			return err
		}

		s.board.SetEditMode(true)
		s.board.Select(id)
		return s.board.Rotate(id, degrees)
	})
}

// Front stacks an item above the others.
func Front(opts Options, id string) error {
	return run(opts, func(ctx context.Context, s *session) error {
		id, err := s.resolve(id)
		if err != nil {
			return err
		}
		s.store.BringToFront(id)
		return nil
	})
}

// Back stacks an item below the others.
func Back(opts Options, id string) error {
	return run(opts, func(ctx context.Context, s *session) error {
		id, err := s.resolve(id)
		if err != nil {
			return err
		}
		s.store.SendToBack(id)
		return nil
	})
}

// Delete unpins an item.
func Delete(opts Options, id string) error {
	return run(opts, func(ctx context.Context, s *session) error {
		id, err := s.resolve(id)
		if err != nil {
			return err
		}

		s.board.SetEditMode(true)
		return s.board.Delete(ctx, id)
	})
}

///////////////////
//               //
// Helpers       //
//               //
///////////////////

// resolve returns the id of the single item starting with prefix.
func (s *session) resolve(prefix string) (string, error) {
	var found []string
	for _, item := range s.store.Items() {
		if item.ID == prefix {
			return item.ID, nil
		}
		if strings.HasPrefix(item.ID, prefix) {
			found = append(found, item.ID)
		}
	}

	switch len(found) {
	case 0:
		return "", errors.Errorf("no item matching %q", prefix)
	case 1:
		return found[0], nil
	}
	return "", errors.Errorf("%q matches %d items", prefix, len(found))
}

func (s *session) render(id string) error {
	v, ok := s.board.View(id)
	if !ok {
		return board.ErrNotFound
	}
	return board.Render(os.Stdout, v)
}

func (p EditParams) editors() ([]board.Editor, error) {
	var editors []board.Editor

	if p.Text != nil {
		editors = append(editors, board.SetText(*p.Text))
	}
	if p.Photo != nil {
		editors = append(editors, board.SetPhoto(*p.Photo))
	}
	if p.Caption != nil {
		editors = append(editors, board.SetCaption(*p.Caption))
	}
	if p.Title != nil {
		editors = append(editors, board.SetTitle(*p.Title))
	}
	if p.Store != nil {
		name, date := split(*p.Store, "@")
		editors = append(editors, board.SetStore(name, date))
	}

	for _, e := range p.AddEntries {
		editors = append(editors, board.AddEntry(e))
	}
	for _, i := range p.ToggleEntries {
		editors = append(editors, board.ToggleEntry(i))
	}
	for _, i := range descending(p.RemoveEntries) {
		editors = append(editors, board.RemoveEntry(i))
	}

	for _, l := range p.AddLines {
		name, value := split(l, "=")
		price, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, errors.Errorf("invalid receipt line %q, expected NAME=PRICE", l)
		}
		editors = append(editors, board.AddLine(name, price))
	}
	for _, i := range descending(p.RemoveLines) {
		editors = append(editors, board.RemoveLine(i))
	}

	for _, name := range p.AddSections {
		editors = append(editors, board.AddSection(name))
	}
	for _, d := range p.AddDishes {
		section, dish := split(d, "=")
		i, err := strconv.Atoi(section)
		if err != nil {
			return nil, errors.Errorf("invalid dish %q, expected SECTION=DISH", d)
		}
		editors = append(editors, board.AddDish(i, dish))
	}
	for _, d := range p.RemoveDishes {
		section, dish := split(d, ":")
		i, err1 := strconv.Atoi(section)
		j, err2 := strconv.Atoi(dish)
		if err1 != nil || err2 != nil {
			return nil, errors.Errorf("invalid dish %q, expected SECTION:DISH", d)
		}
		editors = append(editors, board.RemoveDish(i, j))
	}
	for _, i := range descending(p.RemoveSections) {
		editors = append(editors, board.RemoveSection(i))
	}

	return editors, nil
}

func split(s, sep string) (string, string) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):])
}

// descending returns the indexes from the last to the first so removals do not shift each other.
func descending(indexes []int) []int {
	sorted := append([]int(nil), indexes...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] > sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}

func types() string {
	names := make([]string, len(model.ItemTypes))
	for i, t := range model.ItemTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
