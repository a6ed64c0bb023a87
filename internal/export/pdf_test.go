package export_test

import (
	"bytes"
	"testing"

	"github.com/mdouchement/corkboard/internal/export"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDF(t *testing.T) {
	note, err := model.NewItem(model.TypeNote, 100, 100)
	require.NoError(t, err)
	note.Rotation = -4
	require.NoError(t, note.Encode(model.NoteContent{Text: "Call the landlord"}))

	list, err := model.NewItem(model.TypeList, 900, 400)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = export.PDF(&buf, "Board 2024-05-01", []*model.Item{note, list})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDF_InvalidContent(t *testing.T) {
	item := &model.Item{Type: model.TypeNote, Content: []byte(`{"oops":1}`)}

	var buf bytes.Buffer
	assert.Error(t, export.PDF(&buf, "broken", []*model.Item{item}))
}

func TestText(t *testing.T) {
	tests := []struct {
		content  model.Content
		expected string
	}{
		{content: model.NoteContent{Text: " hi "}, expected: "hi"},
		{content: model.PhotoContent{URL: "/uploads/a.png", Caption: "cat"}, expected: "[photo] /uploads/a.png\ncat"},
		{
			content:  model.ListContent{Title: "Groceries", Entries: []model.ListEntry{{Text: "milk", Checked: true}, {Text: "eggs"}}},
			expected: "Groceries\n[x] milk\n[ ] eggs",
		},
		{
			content:  model.ReceiptContent{Store: "Shop", Date: "2024-05-01", Lines: []model.ReceiptLine{{Name: "tea", Price: 2.5}}, Total: 2.5},
			expected: "Shop 2024-05-01\ntea 2.50\nTotal 2.50",
		},
		{
			content:  model.MenuContent{Title: "Week", Sections: []model.MenuSection{{Name: "Monday", Dishes: []string{"soup", "bread"}}}},
			expected: "Week\nMonday: soup, bread",
		},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, export.Text(test.content))
	}
}
