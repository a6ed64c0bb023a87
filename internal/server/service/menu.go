package service

import (
	"net/http"
	"time"

	"github.com/mdouchement/corkboard/internal/cberror"
	"github.com/mdouchement/corkboard/internal/database"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/pkg/errors"
)

// A MenuService handles the menu entries.
type MenuService struct {
	db  database.Client
	now func() time.Time
}

// NewMenuService returns a new MenuService.
func NewMenuService(db database.Client) *MenuService {
	return &MenuService{
		db:  db,
		now: time.Now,
	}
}

// Capture records the content of the menu item for the given day.
func (s *MenuService) Capture(user *model.User, params CaptureParams) (*model.MenuEntry, error) {
	day, err := ParseDate(params.Date, s.now())
	if err != nil {
		return nil, err
	}

	item, err := s.db.FindItem(params.ItemID)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, notFound(cberror.TagItemNotFound, "Item")
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}
	if item.Type != model.TypeMenu {
		return nil, cberror.NewWithTagCode(http.StatusUnprocessableEntity, cberror.TagNotAMenu, "Only menus can be recorded")
	}

	entry, err := model.NewMenuEntry(day, item, user.Name)
	if err != nil {
		return nil, cberror.BadRequest("%s", err)
	}

	previous, err := s.db.FindMenuEntry(entry.Date, entry.ItemID)
	switch {
	case err == nil:
		entry.ID = previous.ID
		entry.CreatedAt = previous.CreatedAt
	case !s.db.IsNotFound(err):
		return nil, errors.Wrap(err, "could not get access to database")
	}

	return entry, errors.Wrap(s.db.Save(entry), "could not save menu entry")
}

// List returns the entries of the given day, or all of them when date is empty.
func (s *MenuService) List(date string) ([]*model.MenuEntry, error) {
	if date != "" {
		day, err := ParseDate(date, s.now())
		if err != nil {
			return nil, err
		}
		date = day.Format(model.DateLayout)
	}

	entries, err := s.db.FindMenuEntries(date)
	return entries, errors.Wrap(err, "could not list menu entries")
}
