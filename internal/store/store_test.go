package store_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/store"
	"github.com/mdouchement/corkboard/pkg/workspace"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	sync.Mutex
	items   []*model.Item
	created []string
	updated map[string]model.Patch
	deleted []string
	err     error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{updated: map[string]model.Patch{}}
}

func (r *fakeRemote) ListItems(ctx context.Context) ([]*model.Item, error) {
	r.Lock()
	defer r.Unlock()
	return r.items, r.err
}

func (r *fakeRemote) CreateItem(ctx context.Context, item *model.Item) error {
	r.Lock()
	defer r.Unlock()
	r.created = append(r.created, item.ID)
	return r.err
}

func (r *fakeRemote) UpdateItem(ctx context.Context, id string, patch model.Patch) error {
	r.Lock()
	defer r.Unlock()
	r.updated[id] = patch
	return r.err
}

func (r *fakeRemote) DeleteItem(ctx context.Context, id string) error {
	r.Lock()
	defer r.Unlock()
	r.deleted = append(r.deleted, id)
	return r.err
}

func setup(t *testing.T, opts ...store.Option) (*store.Store, string) {
	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "state.json")

	opts = append([]store.Option{
		store.WithLogger(logger),
		store.WithDelay(time.Hour),
		store.WithSeed(42),
	}, opts...)
	return store.Open(path, opts...), path
}

func TestStore_AddNote(t *testing.T) {
	s, _ := setup(t)
	s.SetCurrentUser(&model.User{Name: "george"})

	before := s.Len()
	item, err := s.Add(context.Background(), model.TypeNote)
	require.NoError(t, err)

	assert.Equal(t, before+1, s.Len())
	assert.Equal(t, model.TypeNote, item.Type)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "george", item.CreatedBy)
	assert.Equal(t, model.DefaultNoteColor, item.Color)

	content, err := item.Decode()
	require.NoError(t, err)
	assert.Equal(t, "", content.(model.NoteContent).Text)

	size := model.DefaultSize(model.TypeNote)
	assert.True(t, item.X >= 0 && item.X <= workspace.LogicalWidth-size.Width)
	assert.True(t, item.Y >= 0 && item.Y <= workspace.LogicalHeight-size.Height)
	assert.True(t, item.Rotation >= -store.MaxInitialRotation && item.Rotation <= store.MaxInitialRotation)

	other, err := s.Add(context.Background(), model.TypeNote)
	require.NoError(t, err)
	assert.NotEqual(t, item.ID, other.ID)
	assert.Greater(t, other.ZIndex, item.ZIndex)

	_, err = s.Add(context.Background(), model.ItemType("poster"))
	assert.Error(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestStore_UpdateMissing(t *testing.T) {
	s, _ := setup(t)
	for _, typ := range []model.ItemType{model.TypeNote, model.TypeList} {
		_, err := s.Add(context.Background(), typ)
		require.NoError(t, err)
	}
	items := s.Items()

	ok, err := s.Update("missing", model.Patch{X: model.Float(12)})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, items, s.Items())
}

func TestStore_Update(t *testing.T) {
	s, _ := setup(t)
	item, err := s.Add(context.Background(), model.TypeNote)
	require.NoError(t, err)

	ok, err := s.Update(item.ID, model.Patch{X: model.Float(300), Y: model.Float(150)})
	assert.NoError(t, err)
	assert.True(t, ok)

	updated, ok := s.Find(item.ID)
	require.True(t, ok)
	assert.Equal(t, 300.0, updated.X)
	assert.Equal(t, 150.0, updated.Y)
	assert.Equal(t, item.Rotation, updated.Rotation)

	// Invalid patches leave the item untouched.
	ok, err = s.Update(item.ID, model.Patch{Content: []byte(`{"entries":[]}`)})
	assert.True(t, ok)
	assert.Error(t, err)
	unchanged, _ := s.Find(item.ID)
	assert.Equal(t, updated.Content, unchanged.Content)
}

func TestStore_DeleteMissing(t *testing.T) {
	s, _ := setup(t)
	for _, typ := range []model.ItemType{model.TypeNote, model.TypePhoto, model.TypeMenu} {
		_, err := s.Add(context.Background(), typ)
		require.NoError(t, err)
	}
	items := s.Items()

	assert.False(t, s.Delete(context.Background(), "missing"))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, items, s.Items())

	assert.True(t, s.Delete(context.Background(), items[1].ID))
	assert.Equal(t, []*model.Item{items[0], items[2]}, s.Items())
}

func TestStore_Ordering(t *testing.T) {
	s, _ := setup(t)
	var ids []string
	for i := 0; i < 3; i++ {
		item, err := s.Add(context.Background(), model.TypeNote)
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	assert.True(t, s.SendToBack(ids[2]))
	assert.True(t, s.BringToFront(ids[0]))
	assert.False(t, s.BringToFront("missing"))

	items := s.Items()
	assert.Equal(t, ids[2], items[0].ID)
	assert.Equal(t, ids[1], items[1].ID)
	assert.Equal(t, ids[0], items[2].ID)

	// Equal z-indexes keep the insertion order.
	first, _ := s.Find(ids[0])
	second, _ := s.Find(ids[1])
	first.ZIndex, second.ZIndex = 0, 0
	s.Replace([]*model.Item{second, first})
	items = s.Items()
	assert.Equal(t, ids[1], items[0].ID)
	assert.Equal(t, ids[0], items[1].ID)
}

func TestStore_Persistence(t *testing.T) {
	s, path := setup(t)
	s.SetCurrentUser(&model.User{Name: "george", Color: model.Palette[0]})
	s.SetUsers([]*model.User{{Name: "george"}, {Name: "mildred"}})
	s.SetChrome(store.Chrome{X: 12, Y: 40, Collapsed: true})
	item, err := s.Add(context.Background(), model.TypeList)
	require.NoError(t, err)

	require.NoError(t, s.Flush(context.Background()))

	logger, _ := test.NewNullLogger()
	reloaded := store.Open(path, store.WithLogger(logger))
	assert.Equal(t, "george", reloaded.CurrentUser().Name)
	assert.Len(t, reloaded.Users(), 2)
	assert.Equal(t, store.Chrome{X: 12, Y: 40, Collapsed: true}, reloaded.Chrome())

	found, ok := reloaded.Find(item.ID)
	require.True(t, ok)
	assert.Equal(t, item.Type, found.Type)
	assert.JSONEq(t, string(item.Content), string(found.Content))
}

func TestStore_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"items": [{"id":`), 0o600))

	logger, hook := test.NewNullLogger()
	s := store.Open(path, store.WithLogger(logger))

	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.CurrentUser())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	// Invalid items are dropped, valid ones kept.
	payload := `{"items":[{"id":"a","type":"note","content":{"text":"hi"}},{"id":"b","type":"poster"}]}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))
	s = store.Open(path, store.WithLogger(logger))
	assert.Equal(t, 1, s.Len())
	_, ok := s.Find("a")
	assert.True(t, ok)

	// The first occurrence of an id wins.
	payload = `{"items":[{"id":"a","type":"note","content":{"text":"hi"}},{"id":"a","type":"note","content":{"text":"bye"}}]}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))
	s = store.Open(path, store.WithLogger(logger))
	assert.Equal(t, 1, s.Len())
	item, _ := s.Find("a")
	assert.JSONEq(t, `{"text":"hi"}`, string(item.Content))
}

func TestStore_Remote(t *testing.T) {
	remote := newFakeRemote()
	s, _ := setup(t, store.WithRemote(remote))

	item, err := s.Add(context.Background(), model.TypeNote)
	require.NoError(t, err)
	assert.Equal(t, []string{item.ID}, remote.created)

	_, err = s.Update(item.ID, model.Patch{X: model.Float(1)})
	require.NoError(t, err)
	_, err = s.Update(item.ID, model.Patch{Y: model.Float(2)})
	require.NoError(t, err)
	assert.Empty(t, remote.updated)

	require.NoError(t, s.Flush(context.Background()))
	require.Contains(t, remote.updated, item.ID)
	patch := remote.updated[item.ID]
	assert.Equal(t, 1.0, *patch.X)
	assert.Equal(t, 2.0, *patch.Y)

	assert.True(t, s.Delete(context.Background(), item.ID))
	assert.Equal(t, []string{item.ID}, remote.deleted)

	// Deleting a missing item does not reach the remote.
	assert.False(t, s.Delete(context.Background(), item.ID))
	assert.Len(t, remote.deleted, 1)
}

func TestStore_RemoteFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.err = errors.New("connection refused")

	var notified []error
	s, _ := setup(t, store.WithRemote(remote), store.WithNotifier(func(err error) {
		notified = append(notified, err)
	}))

	item, err := s.Add(context.Background(), model.TypeNote)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	require.Len(t, notified, 1)

	_, err = s.Update(item.ID, model.Patch{X: model.Float(1)})
	require.NoError(t, err)
	require.NoError(t, s.Flush(context.Background()))
	require.Len(t, notified, 2)

	// No retry.
	require.NoError(t, s.Flush(context.Background()))
	assert.Len(t, notified, 2)

	assert.Error(t, s.Load(context.Background()))
	assert.Len(t, notified, 3)
	assert.Equal(t, 1, s.Len())

	// Missing items on the remote are not reported.
	remote.err = store.ErrNotFound
	assert.True(t, s.Delete(context.Background(), item.ID))
	assert.Len(t, notified, 3)
}

func TestStore_Load(t *testing.T) {
	remote := newFakeRemote()
	a, _ := model.NewItem(model.TypeNote, 10, 10)
	a.ID = "a"
	remote.items = []*model.Item{a}

	s, _ := setup(t, store.WithRemote(remote))
	_, err := s.Add(context.Background(), model.TypeMenu)
	require.NoError(t, err)

	require.NoError(t, s.Load(context.Background()))
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)

	// Duplicated ids in the remote list are kept once.
	dup, _ := model.NewItem(model.TypeList, 40, 40)
	dup.ID = "a"
	b, _ := model.NewItem(model.TypeNote, 80, 80)
	b.ID = "b"
	remote.items = []*model.Item{a, dup, b}

	require.NoError(t, s.Load(context.Background()))
	items = s.Items()
	require.Len(t, items, 2)
	found, _ := s.Find("a")
	assert.Equal(t, model.TypeNote, found.Type)
}

func TestStore_Apply(t *testing.T) {
	remote := newFakeRemote()
	s, _ := setup(t, store.WithRemote(remote))

	a, _ := model.NewItem(model.TypeNote, 10, 10)
	a.ID = "a"
	s.Apply(a, false)
	assert.Equal(t, 1, s.Len())

	a.X = 42
	s.Apply(a, false)
	found, _ := s.Find("a")
	assert.Equal(t, 42.0, found.X)

	s.Apply(&model.Item{Base: model.Base{ID: "a"}}, true)
	assert.Equal(t, 0, s.Len())
	s.Apply(&model.Item{Base: model.Base{ID: "a"}}, true)

	assert.Empty(t, remote.created)
	assert.Empty(t, remote.deleted)
}
