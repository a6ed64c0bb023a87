package database

import (
	"sort"

	"github.com/mdouchement/corkboard/internal/model"
	"github.com/pkg/errors"
)

// Supported drivers.
const (
	DriverStorm  = "storm"
	DriverSQLite = "sqlite"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool
		// IsAlreadyExists returns true if err is a unique constraint violation.
		IsAlreadyExists(err error) bool

		UserInteraction
		ItemInteraction
		SnapshotInteraction
		MenuEntryInteraction
	}

	// An UserInteraction defines all the methods used to interact with a user record.
	UserInteraction interface {
		// FindUser returns the user for the given id (UUID).
		FindUser(id string) (*model.User, error)
		// FindUserByName returns the user for the given name.
		FindUserByName(name string) (*model.User, error)
		// FindUsers returns all the users ordered by creation date.
		FindUsers() ([]*model.User, error)
	}

	// An ItemInteraction defines all the methods used to interact with a item record(s).
	ItemInteraction interface {
		// FindItem returns the item for the given id (UUID).
		FindItem(id string) (*model.Item, error)
		// FindItems returns all the items in stacking order.
		FindItems() ([]*model.Item, error)
	}

	// A SnapshotInteraction defines all the methods used to interact with a snapshot record(s).
	SnapshotInteraction interface {
		// FindSnapshot returns the snapshot of the given date (YYYY-MM-DD).
		FindSnapshot(date string) (*model.Snapshot, error)
		// FindSnapshots returns all the snapshots, most recent first.
		FindSnapshots() ([]*model.Snapshot, error)
	}

	// A MenuEntryInteraction defines all the methods used to interact with a menu entry record(s).
	MenuEntryInteraction interface {
		// FindMenuEntry returns the entry of the given menu item for the given date.
		FindMenuEntry(date, itemID string) (*model.MenuEntry, error)
		// FindMenuEntries returns the entries of the given date, or all the entries when date is empty.
		FindMenuEntries(date string) ([]*model.MenuEntry, error)
	}
)

// Init initializes the database indexes or schema.
func Init(driver, database string) error {
	switch driver {
	case "", DriverStorm:
		return StormInit(database)
	case DriverSQLite:
		return SQLiteInit(database)
	}
	return errors.Errorf("unsupported database driver: %s", driver)
}

// ReIndex rebuilds the database indexes.
func ReIndex(driver, database string) error {
	switch driver {
	case "", DriverStorm:
		return StormReIndex(database)
	case DriverSQLite:
		return SQLiteReIndex(database)
	}
	return errors.Errorf("unsupported database driver: %s", driver)
}

// Open returns a new database connection for the given driver.
func Open(driver, database string) (Client, error) {
	switch driver {
	case "", DriverStorm:
		return StormOpen(database)
	case DriverSQLite:
		return SQLiteOpen(database)
	}
	return nil, errors.Errorf("unsupported database driver: %s", driver)
}

// sortItems orders items by z-index, then by creation date.
func sortItems(items []*model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ZIndex != items[j].ZIndex {
			return items[i].ZIndex < items[j].ZIndex
		}
		a, b := items[i].CreatedAt, items[j].CreatedAt
		return a != nil && b != nil && a.Before(*b)
	})
}
