package stormsql_test

import (
	"testing"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/mdouchement/corkboard/pkg/stormsql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID        string    `storm:"id"`
	Type      string    `storm:"index"`
	ZIndex    int       `storm:"index"`
	CreatedAt time.Time `storm:"index"`
}

func TestField(t *testing.T) {
	data := []struct {
		column string
		field  string
	}{
		{column: "id", field: "ID"},
		{column: "item_id", field: "ItemID"},
		{column: "z_index", field: "ZIndex"},
		{column: "created_at", field: "CreatedAt"},
		{column: "Type", field: "Type"},
		{column: "avatar_url", field: "AvatarURL"},
	}

	for _, d := range data {
		assert.Equal(t, d.field, stormsql.Field(d.column))
	}
}

func TestParseSelect(t *testing.T) {
	sc, err := stormsql.ParseSelect("SELECT id, z_index FROM items WHERE type = 'note' ORDER BY z_index DESC LIMIT 2, 5;")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "z_index"}, sc.SelectedFields)
	assert.Equal(t, "items", sc.Tablename)
	assert.False(t, sc.Count)
	assert.Equal(t, 2, sc.Skip)
	assert.Equal(t, 5, sc.Limit)
	assert.Equal(t, []string{"ZIndex"}, sc.OrderBy)
	assert.True(t, sc.OrderByReversed)

	sc, err = stormsql.ParseSelect("SELECT count(*) FROM snapshots")
	require.NoError(t, err)
	assert.True(t, sc.Count)
	assert.Equal(t, "snapshots", sc.Tablename)
}

func TestParseSelect_Errors(t *testing.T) {
	data := []string{
		"DELETE FROM items",
		"SELECT max(z_index) FROM items",
		"SELECT * FROM items WHERE z_index + 1 = 2",
		"SELECT * FROM items LIMIT ?",
		"SELECT * FROM items, users",
		"SELEKT",
	}

	for _, sql := range data {
		_, err := stormsql.ParseSelect(sql)
		assert.Error(t, err, sql)
	}
}

func TestQuery(t *testing.T) {
	db, err := storm.Open(t.TempDir()+"/test.db", storm.Codec(msgpack.Codec))
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	records := []record{
		{ID: "1", Type: "note", ZIndex: 1, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "2", Type: "photo", ZIndex: 2, CreatedAt: now},
		{ID: "3", Type: "note", ZIndex: 3, CreatedAt: now},
		{ID: "4", Type: "list", ZIndex: 4, CreatedAt: now},
	}
	for i := range records {
		require.NoError(t, db.Save(&records[i]))
	}

	data := []struct {
		sql string
		ids []string
	}{
		{sql: "SELECT * FROM records", ids: []string{"1", "2", "3", "4"}},
		{sql: "SELECT * FROM records WHERE type = 'note'", ids: []string{"1", "3"}},
		{sql: "SELECT * FROM records WHERE type != 'note' ORDER BY z_index DESC", ids: []string{"4", "2"}},
		{sql: "SELECT * FROM records WHERE type IN ('photo', 'list') OR z_index <= 1 ORDER BY z_index", ids: []string{"1", "2", "4"}},
		{sql: "SELECT * FROM records WHERE type LIKE 'no%' AND NOT (z_index > 2)", ids: []string{"1"}},
		{sql: "SELECT * FROM records ORDER BY z_index LIMIT 1, 2", ids: []string{"2", "3"}},
		{sql: "SELECT * FROM records WHERE created_at < '" + now.Add(-time.Hour).Format(time.RFC3339) + "'", ids: []string{"1"}},
	}

	for _, d := range data {
		sc, err := stormsql.ParseSelect(d.sql)
		require.NoError(t, err, d.sql)

		var found []record
		err = sc.Query(db).Find(&found)
		require.NoError(t, err, d.sql)

		ids := []string{}
		for _, r := range found {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, d.ids, ids, d.sql)
	}

	sc, err := stormsql.ParseSelect("SELECT count(*) FROM records WHERE type = 'note'")
	require.NoError(t, err)
	n, err := sc.Query(db).Count(&record{})
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}
