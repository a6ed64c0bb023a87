package model_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/mdouchement/corkboard/internal/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	for _, typ := range model.ItemTypes {
		item, err := model.NewItem(typ, 10, 20)
		require.NoError(t, err, typ)
		assert.NoError(t, item.Validate(), typ)

		c, err := item.Decode()
		require.NoError(t, err)
		assert.Equal(t, typ, c.ItemType())
		assert.Equal(t, model.DefaultContent(typ), c)
	}

	note, err := model.NewItem(model.TypeNote, 0, 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":""}`, string(note.Content))
	assert.Equal(t, model.DefaultNoteColor, note.Color)

	_, err = model.NewItem("sticker", 0, 0)
	assert.Equal(t, model.ErrInvalid, errors.Cause(err))
}

func TestItem_JSON(t *testing.T) {
	item, err := model.NewItem(model.TypePhoto, 12.5, 40)
	require.NoError(t, err)
	item.ID = "d0f0f0f0-0000-4000-8000-000000000000"
	require.NoError(t, item.Encode(model.PhotoContent{URL: "/uploads/cat.png", Caption: "Félix"}))

	payload, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "d0f0f0f0-0000-4000-8000-000000000000",
		"created_at": null,
		"updated_at": null,
		"type": "photo",
		"x": 12.5,
		"y": 40,
		"rotation": 0,
		"z_index": 0,
		"content": {"url": "/uploads/cat.png", "caption": "Félix"}
	}`, string(payload))

	var decoded model.Item
	require.NoError(t, json.Unmarshal(payload, &decoded))
	c, err := decoded.Decode()
	require.NoError(t, err)
	assert.Equal(t, model.PhotoContent{URL: "/uploads/cat.png", Caption: "Félix"}, c)
}

func TestItem_Validate(t *testing.T) {
	tests := []struct {
		name string
		item model.Item
		ok   bool
	}{
		{name: "note", item: model.Item{Type: model.TypeNote, Color: "#fff", Content: json.RawMessage(`{"text":"hi"}`)}, ok: true},
		{name: "missing content", item: model.Item{Type: model.TypeList}, ok: true},
		{name: "unknown type", item: model.Item{Type: "poster"}},
		{name: "nan", item: model.Item{Type: model.TypeNote, X: math.NaN()}},
		{name: "inf", item: model.Item{Type: model.TypeNote, Rotation: math.Inf(1)}},
		{name: "colored photo", item: model.Item{Type: model.TypePhoto, Color: "#fff"}},
		{name: "unknown field", item: model.Item{Type: model.TypeNote, Content: json.RawMessage(`{"txt":"hi"}`)}},
		{name: "wrong schema", item: model.Item{Type: model.TypeList, Content: json.RawMessage(`{"entries":"milk"}`)}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.item.Validate()
			if test.ok {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, model.ErrInvalid, errors.Cause(err))
			}
		})
	}
}

func TestItem_Apply(t *testing.T) {
	item, err := model.NewItem(model.TypeNote, 100, 100)
	require.NoError(t, err)
	item.Rotation = 3

	err = item.Apply(model.Patch{X: model.Float(300), Y: model.Float(150)})
	require.NoError(t, err)
	assert.Equal(t, 300.0, item.X)
	assert.Equal(t, 150.0, item.Y)
	assert.Equal(t, 3.0, item.Rotation)

	err = item.Apply(model.Patch{Content: json.RawMessage(`{"text":"buy milk"}`), UpdatedBy: model.String("bob")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"buy milk"}`, string(item.Content))
	assert.Equal(t, "bob", item.UpdatedBy)

	// Invalid patches leave the item untouched.
	err = item.Apply(model.Patch{X: model.Float(1), Rotation: model.Float(math.NaN())})
	assert.Error(t, err)
	assert.Equal(t, 300.0, item.X)

	err = item.Apply(model.Patch{Content: json.RawMessage(`{"url":"x"}`)})
	assert.Error(t, err)
	assert.JSONEq(t, `{"text":"buy milk"}`, string(item.Content))
}

func TestPatch(t *testing.T) {
	assert.True(t, model.Patch{}.Empty())
	assert.True(t, model.Patch{Content: json.RawMessage("null")}.Empty())

	p := model.Patch{X: model.Float(1), Y: model.Float(2)}.Merge(model.Patch{X: model.Float(5), Rotation: model.Float(9)})
	assert.Equal(t, 5.0, *p.X)
	assert.Equal(t, 2.0, *p.Y)
	assert.Equal(t, 9.0, *p.Rotation)
	assert.False(t, p.Empty())

	payload, err := json.Marshal(model.Patch{X: model.Float(0), Color: model.String("")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":0,"color":""}`, string(payload))
}

func TestItem_Clone(t *testing.T) {
	item, err := model.NewItem(model.TypeNote, 1, 2)
	require.NoError(t, err)

	clone := item.Clone()
	require.NoError(t, item.Encode(model.NoteContent{Text: "changed"}))
	item.X = 42

	assert.Equal(t, 1.0, clone.X)
	assert.JSONEq(t, `{"text":""}`, string(clone.Content))
}
