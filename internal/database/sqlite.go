package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMP,
	updated_at TIMESTAMP,
	name       TEXT NOT NULL UNIQUE,
	color      TEXT NOT NULL DEFAULT '',
	handle     TEXT NOT NULL DEFAULT '',
	avatar     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS items (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMP,
	updated_at TIMESTAMP,
	type       TEXT NOT NULL,
	x          REAL NOT NULL DEFAULT 0,
	y          REAL NOT NULL DEFAULT 0,
	rotation   REAL NOT NULL DEFAULT 0,
	z_index    INTEGER NOT NULL DEFAULT 0,
	color      TEXT NOT NULL DEFAULT '',
	created_by TEXT NOT NULL DEFAULT '',
	updated_by TEXT NOT NULL DEFAULT '',
	content    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS items_z_index ON items (z_index);

CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMP,
	updated_at TIMESTAMP,
	date       TEXT NOT NULL UNIQUE,
	created_by TEXT NOT NULL DEFAULT '',
	items_data BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS menu_entries (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMP,
	updated_at TIMESTAMP,
	date       TEXT NOT NULL,
	item_id    TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	content    BLOB NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	UNIQUE (date, item_id)
);
`

const (
	upsertUser = `INSERT INTO users (id, created_at, updated_at, name, color, handle, avatar)
	VALUES (:id, :created_at, :updated_at, :name, :color, :handle, :avatar)
	ON CONFLICT (id) DO UPDATE SET
		updated_at = excluded.updated_at, name = excluded.name, color = excluded.color,
		handle = excluded.handle, avatar = excluded.avatar`

	upsertItem = `INSERT INTO items (id, created_at, updated_at, type, x, y, rotation, z_index, color, created_by, updated_by, content)
	VALUES (:id, :created_at, :updated_at, :type, :x, :y, :rotation, :z_index, :color, :created_by, :updated_by, :content)
	ON CONFLICT (id) DO UPDATE SET
		updated_at = excluded.updated_at, x = excluded.x, y = excluded.y, rotation = excluded.rotation,
		z_index = excluded.z_index, color = excluded.color, updated_by = excluded.updated_by, content = excluded.content`

	upsertSnapshot = `INSERT INTO snapshots (id, created_at, updated_at, date, created_by, items_data)
	VALUES (:id, :created_at, :updated_at, :date, :created_by, :items_data)
	ON CONFLICT (id) DO UPDATE SET
		updated_at = excluded.updated_at, date = excluded.date,
		created_by = excluded.created_by, items_data = excluded.items_data`

	upsertMenuEntry = `INSERT INTO menu_entries (id, created_at, updated_at, date, item_id, title, content, created_by)
	VALUES (:id, :created_at, :updated_at, :date, :item_id, :title, :content, :created_by)
	ON CONFLICT (id) DO UPDATE SET
		updated_at = excluded.updated_at, title = excluded.title,
		content = excluded.content, created_by = excluded.created_by`
)

type (
	sqlite struct {
		db *sqlx.DB
	}

	snapshotRow struct {
		model.Snapshot
		ItemsData []byte `db:"items_data"`
	}
)

// SQLiteInit creates the SQLite schema.
func SQLiteInit(database string) error {
	db, err := sqlx.Connect("sqlite3", database)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	_, err = db.Exec(sqliteSchema)
	return errors.Wrap(err, "could not create schema")
}

// SQLiteReIndex rebuilds SQLite indexes.
func SQLiteReIndex(database string) error {
	db, err := sqlx.Connect("sqlite3", database)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	_, err = db.Exec("REINDEX")
	return errors.Wrap(err, "could not reindex")
}

// SQLiteOpen returns a new SQLite database connection.
// The schema is created when missing.
func SQLiteOpen(database string) (Client, error) {
	db, err := sqlx.Connect("sqlite3", database+"?_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}
	// Writers are serialized by SQLite anyway.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "could not create schema")
	}

	return &sqlite{
		db: db,
	}, nil
}

// Save inserts or updates the entry in database with the given model.
func (c *sqlite) Save(m model.Model) error {
	model.Stamp(m, time.Now().UTC())

	var err error
	switch v := m.(type) {
	case *model.User:
		_, err = c.db.NamedExec(upsertUser, v)
	case *model.Item:
		if len(v.Content) == 0 {
			v.Content = json.RawMessage("null")
		}
		_, err = c.db.NamedExec(upsertItem, v)
	case *model.Snapshot:
		row := snapshotRow{Snapshot: *v}
		if row.ItemsData, err = json.Marshal(v.Items); err != nil {
			return errors.Wrap(err, "could not encode snapshot items")
		}
		_, err = c.db.NamedExec(upsertSnapshot, row)
	case *model.MenuEntry:
		if len(v.Content) == 0 {
			v.Content = json.RawMessage("null")
		}
		_, err = c.db.NamedExec(upsertMenuEntry, v)
	default:
		return errors.Errorf("unsupported model %T", m)
	}

	return errors.Wrap(err, "could not save the model")
}

// Delete deletes the entry in database with the given model.
func (c *sqlite) Delete(m model.Model) error {
	var table string
	switch m.(type) {
	case *model.User:
		table = "users"
	case *model.Item:
		table = "items"
	case *model.Snapshot:
		table = "snapshots"
	case *model.MenuEntry:
		table = "menu_entries"
	default:
		return errors.Errorf("unsupported model %T", m)
	}

	result, err := c.db.Exec("DELETE FROM "+table+" WHERE id = ?", m.GetID())
	if err != nil {
		return errors.Wrap(err, "could not delete the model")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.Wrap(sql.ErrNoRows, "could not delete the model")
	}
	return nil
}

// Close the database.
func (c *sqlite) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *sqlite) IsNotFound(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

// IsAlreadyExists returns true if err is a unique constraint violation.
func (c *sqlite) IsAlreadyExists(err error) bool {
	serr, ok := errors.Cause(err).(sqlite3.Error)
	return ok && (serr.ExtendedCode == sqlite3.ErrConstraintUnique || serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

// FindUser returns the user for the given id (UUID).
func (c *sqlite) FindUser(id string) (*model.User, error) {
	var user model.User
	if err := c.db.Get(&user, "SELECT * FROM users WHERE id = ?", id); err != nil {
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

// FindUserByName returns the user for the given name.
func (c *sqlite) FindUserByName(name string) (*model.User, error) {
	var user model.User
	if err := c.db.Get(&user, "SELECT * FROM users WHERE name = ?", name); err != nil {
		return nil, errors.Wrap(err, "find user by name")
	}
	return &user, nil
}

// FindUsers returns all the users ordered by creation date.
func (c *sqlite) FindUsers() ([]*model.User, error) {
	users := make([]*model.User, 0)
	if err := c.db.Select(&users, "SELECT * FROM users ORDER BY created_at"); err != nil {
		return nil, errors.Wrap(err, "could not find users")
	}
	return users, nil
}

// FindItem returns the item for the given id (UUID).
func (c *sqlite) FindItem(id string) (*model.Item, error) {
	var item model.Item
	if err := c.db.Get(&item, "SELECT * FROM items WHERE id = ?", id); err != nil {
		return nil, errors.Wrap(err, "could not find item")
	}
	return &item, nil
}

// FindItems returns all the items in stacking order.
func (c *sqlite) FindItems() ([]*model.Item, error) {
	items := make([]*model.Item, 0)
	if err := c.db.Select(&items, "SELECT * FROM items ORDER BY z_index, created_at"); err != nil {
		return nil, errors.Wrap(err, "could not find items")
	}
	return items, nil
}

// FindSnapshot returns the snapshot of the given date (YYYY-MM-DD).
func (c *sqlite) FindSnapshot(date string) (*model.Snapshot, error) {
	var row snapshotRow
	if err := c.db.Get(&row, "SELECT * FROM snapshots WHERE date = ?", date); err != nil {
		return nil, errors.Wrap(err, "could not find snapshot")
	}
	return row.decode()
}

// FindSnapshots returns all the snapshots, most recent first.
func (c *sqlite) FindSnapshots() ([]*model.Snapshot, error) {
	var rows []snapshotRow
	if err := c.db.Select(&rows, "SELECT * FROM snapshots ORDER BY date DESC"); err != nil {
		return nil, errors.Wrap(err, "could not find snapshots")
	}

	snapshots := make([]*model.Snapshot, 0, len(rows))
	for _, row := range rows {
		snapshot, err := row.decode()
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

// FindMenuEntry returns the entry of the given menu item for the given date.
func (c *sqlite) FindMenuEntry(date, itemID string) (*model.MenuEntry, error) {
	var entry model.MenuEntry
	err := c.db.Get(&entry, "SELECT * FROM menu_entries WHERE date = ? AND item_id = ?", date, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "could not find menu entry")
	}
	return &entry, nil
}

// FindMenuEntries returns the entries of the given date, or all the entries when date is empty.
func (c *sqlite) FindMenuEntries(date string) ([]*model.MenuEntry, error) {
	entries := make([]*model.MenuEntry, 0)

	var err error
	if date == "" {
		err = c.db.Select(&entries, "SELECT * FROM menu_entries ORDER BY date, title")
	} else {
		err = c.db.Select(&entries, "SELECT * FROM menu_entries WHERE date = ? ORDER BY title", date)
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not find menu entries")
	}
	return entries, nil
}

func (r snapshotRow) decode() (*model.Snapshot, error) {
	snapshot := r.Snapshot
	if err := json.Unmarshal(r.ItemsData, &snapshot.Items); err != nil {
		return nil, errors.Wrap(err, "could not decode snapshot items")
	}
	return &snapshot, nil
}
