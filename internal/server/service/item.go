package service

import (
	"encoding/json"

	"github.com/gofrs/uuid"
	"github.com/mdouchement/corkboard/internal/cberror"
	"github.com/mdouchement/corkboard/internal/database"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/realtime"
	"github.com/mdouchement/corkboard/pkg/workspace"
	"github.com/pkg/errors"
)

type (
	// An ItemService handles the board items.
	ItemService struct {
		db     database.Client
		events Publisher
	}

	// CreateItemParams are used to pin a new item.
	// Only the type is mandatory.
	CreateItemParams struct {
		ID       string          `json:"id"`
		Type     string          `json:"type"`
		X        *float64        `json:"x"`
		Y        *float64        `json:"y"`
		Rotation *float64        `json:"rotation"`
		ZIndex   *int            `json:"z_index"`
		Color    *string         `json:"color"`
		Content  json.RawMessage `json:"content"`
	}
)

// NewItemService returns a new ItemService.
func NewItemService(db database.Client, events Publisher) *ItemService {
	return &ItemService{
		db:     db,
		events: publisher(events),
	}
}

// List returns all the items in stacking order.
func (s *ItemService) List() ([]*model.Item, error) {
	items, err := s.db.FindItems()
	return items, errors.Wrap(err, "could not list items")
}

// Create pins a new item on the board.
func (s *ItemService) Create(user *model.User, params CreateItemParams) (*model.Item, error) {
	t, err := model.ParseItemType(params.Type)
	if err != nil {
		return nil, cberror.BadRequest("Unknown item type %q", params.Type)
	}

	size := model.DefaultSize(t)
	x := (workspace.LogicalWidth - size.Width) / 2
	y := (workspace.LogicalHeight - size.Height) / 2
	if params.X != nil {
		x = *params.X
	}
	if params.Y != nil {
		y = *params.Y
	}

	item, err := model.NewItem(t, x, y)
	if err != nil {
		return nil, err
	}

	if params.ID != "" {
		id, err := uuid.FromString(params.ID)
		if err != nil {
			return nil, cberror.BadRequest("Invalid item id %q", params.ID)
		}

		_, err = s.db.FindItem(id.String())
		if err == nil {
			return nil, conflict("item-already-exists", "Item already exists")
		}
		if !s.db.IsNotFound(err) {
			return nil, errors.Wrap(err, "could not check item existence")
		}
		item.ID = id.String()
	}

	if params.Rotation != nil {
		item.Rotation = *params.Rotation
	}
	if params.Color != nil {
		item.Color = *params.Color
	}
	if len(params.Content) > 0 {
		item.Content = params.Content
	}
	if params.ZIndex != nil {
		item.ZIndex = *params.ZIndex
	} else {
		top, _, err := s.bounds()
		if err != nil {
			return nil, err
		}
		item.ZIndex = top + 1
	}
	item.CreatedBy = user.Name
	item.UpdatedBy = user.Name

	if err = item.Validate(); err != nil {
		return nil, cberror.BadRequest("%s", err)
	}

	if err = s.db.Save(item); err != nil {
		return nil, errors.Wrap(err, "could not save item")
	}

	s.events.Publish(realtime.Event{Type: realtime.ItemCreated, Item: item})
	return item, nil
}

// Update applies the given JSON partial update on the item.
func (s *ItemService) Update(user *model.User, id string, body []byte) (*model.Item, error) {
	item, err := s.find(id)
	if err != nil {
		return nil, err
	}

	patch, err := ParsePatch(body, item.Type)
	if err != nil {
		return nil, err
	}
	patch.UpdatedBy = model.String(user.Name)

	if err = item.Apply(patch); err != nil {
		return nil, cberror.BadRequest("%s", err)
	}

	return item, s.save(item)
}

// Delete unpins the item.
func (s *ItemService) Delete(id string) error {
	item, err := s.find(id)
	if err != nil {
		return err
	}

	if err = s.db.Delete(item); err != nil {
		if s.db.IsNotFound(err) {
			return notFound(cberror.TagItemNotFound, "Item")
		}
		return errors.Wrap(err, "could not delete item")
	}

	s.events.Publish(realtime.Event{Type: realtime.ItemDeleted, ID: item.ID})
	return nil
}

// BringToFront stacks the item above all the others.
func (s *ItemService) BringToFront(user *model.User, id string) (*model.Item, error) {
	return s.restack(user, id, true)
}

// SendToBack stacks the item below all the others.
func (s *ItemService) SendToBack(user *model.User, id string) (*model.Item, error) {
	return s.restack(user, id, false)
}

func (s *ItemService) restack(user *model.User, id string, front bool) (*model.Item, error) {
	item, err := s.find(id)
	if err != nil {
		return nil, err
	}

	top, bottom, err := s.bounds()
	if err != nil {
		return nil, err
	}

	if front {
		item.ZIndex = top + 1
	} else {
		item.ZIndex = bottom - 1
	}
	item.UpdatedBy = user.Name

	return item, s.save(item)
}

func (s *ItemService) find(id string) (*model.Item, error) {
	item, err := s.db.FindItem(id)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, notFound(cberror.TagItemNotFound, "Item")
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}
	return item, nil
}

func (s *ItemService) save(item *model.Item) error {
	if err := s.db.Save(item); err != nil {
		return errors.Wrap(err, "could not save item")
	}

	s.events.Publish(realtime.Event{Type: realtime.ItemUpdated, Item: item})
	return nil
}

// bounds returns the highest and the lowest z-index of the board.
func (s *ItemService) bounds() (top, bottom int, err error) {
	items, err := s.db.FindItems()
	if err != nil {
		return 0, 0, errors.Wrap(err, "could not list items")
	}
	if len(items) == 0 {
		return 0, 0, nil
	}
	// Items are sorted by z-index.
	return items[len(items)-1].ZIndex, items[0].ZIndex, nil
}
