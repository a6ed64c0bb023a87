package database

import (
	"sort"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/asdine/storm/v3/q"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/pkg/errors"
)

type strm struct {
	db *storm.DB
}

// StormCodec is the format used to store data in the database.
var StormCodec = storm.Codec(msgpack.Codec)

var stormModels = []struct {
	name  string
	model interface{}
}{
	{name: "user", model: &model.User{}},
	{name: "item", model: &model.Item{}},
	{name: "snapshot", model: &model.Snapshot{}},
	{name: "menu entry", model: &model.MenuEntry{}},
}

// StormInit initializes Storm database.
func StormInit(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range stormModels {
		if err := db.Init(m.model); err != nil {
			return errors.Wrapf(err, "could not init %s index", m.name)
		}
	}
	return nil
}

// StormReIndex reindex Storm database.
func StormReIndex(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range stormModels {
		if err := db.ReIndex(m.model); err != nil {
			return errors.Wrapf(err, "could not ReIndex %s", m.name)
		}
	}
	return nil
}

// StormOpen returns a new Storm database connection.
func StormOpen(database string) (Client, error) {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}

	return &strm{
		db: db,
	}, nil
}

// Save inserts or updates the entry in database with the given model.
func (c *strm) Save(m model.Model) error {
	model.Stamp(m, time.Now().UTC())
	return errors.Wrap(c.db.Save(m), "could not save the model")
}

// Delete deletes the entry in database with the given model.
func (c *strm) Delete(m model.Model) error {
	return errors.Wrap(c.db.DeleteStruct(m), "could not delete the model")
}

// Close the database.
func (c *strm) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is nil or a not found error.
func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

// IsAlreadyExists returns true if err is a unique constraint violation.
func (c *strm) IsAlreadyExists(err error) bool {
	return errors.Cause(err) == storm.ErrAlreadyExists
}

// FindUser returns the user for the given id (UUID).
func (c *strm) FindUser(id string) (*model.User, error) {
	var user model.User
	if err := c.db.One("ID", id, &user); err != nil {
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

// FindUserByName returns the user for the given name.
func (c *strm) FindUserByName(name string) (*model.User, error) {
	var user model.User
	if err := c.db.One("Name", name, &user); err != nil {
		return nil, errors.Wrap(err, "find user by name")
	}
	return &user, nil
}

// FindUsers returns all the users ordered by creation date.
func (c *strm) FindUsers() ([]*model.User, error) {
	users := make([]*model.User, 0)
	if err := c.db.All(&users); err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find users")
	}

	sort.SliceStable(users, func(i, j int) bool {
		a, b := users[i].CreatedAt, users[j].CreatedAt
		return a != nil && b != nil && a.Before(*b)
	})
	return users, nil
}

// FindItem returns the item for the given id (UUID).
func (c *strm) FindItem(id string) (*model.Item, error) {
	var item model.Item
	if err := c.db.One("ID", id, &item); err != nil {
		return nil, errors.Wrap(err, "could not find item")
	}
	return &item, nil
}

// FindItems returns all the items in stacking order.
func (c *strm) FindItems() ([]*model.Item, error) {
	items := make([]*model.Item, 0)
	if err := c.db.All(&items); err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find items")
	}

	sortItems(items)
	return items, nil
}

// FindSnapshot returns the snapshot of the given date (YYYY-MM-DD).
func (c *strm) FindSnapshot(date string) (*model.Snapshot, error) {
	var snapshot model.Snapshot
	if err := c.db.One("Date", date, &snapshot); err != nil {
		return nil, errors.Wrap(err, "could not find snapshot")
	}
	return &snapshot, nil
}

// FindSnapshots returns all the snapshots, most recent first.
func (c *strm) FindSnapshots() ([]*model.Snapshot, error) {
	snapshots := make([]*model.Snapshot, 0)
	err := c.db.Select().OrderBy("Date").Reverse().Find(&snapshots)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find snapshots")
	}
	return snapshots, nil
}

// FindMenuEntry returns the entry of the given menu item for the given date.
func (c *strm) FindMenuEntry(date, itemID string) (*model.MenuEntry, error) {
	var entry model.MenuEntry
	err := c.db.Select(q.Eq("Date", date), q.Eq("ItemID", itemID)).First(&entry)
	if err != nil {
		return nil, errors.Wrap(err, "could not find menu entry")
	}
	return &entry, nil
}

// FindMenuEntries returns the entries of the given date, or all the entries when date is empty.
func (c *strm) FindMenuEntries(date string) ([]*model.MenuEntry, error) {
	var query []q.Matcher
	if date != "" {
		query = append(query, q.Eq("Date", date))
	}

	entries := make([]*model.MenuEntry, 0)
	err := c.db.Select(query...).OrderBy("Date", "Title").Find(&entries)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find menu entries")
	}
	return entries, nil
}
