package store

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/gofrs/uuid"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/pkg/workspace"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultDelay is the default debounce delay of the saves.
const DefaultDelay = 500 * time.Millisecond

// MaxInitialRotation is the maximum tilt in degrees of a newly pinned item.
const MaxInitialRotation = 5.0

// ErrNotFound is returned by a Remote when the item does not exist.
var ErrNotFound = errors.New("not found")

type (
	// A Remote mirrors the items on a shared board.
	Remote interface {
		ListItems(ctx context.Context) ([]*model.Item, error)
		CreateItem(ctx context.Context, item *model.Item) error
		UpdateItem(ctx context.Context, id string, patch model.Patch) error
		DeleteItem(ctx context.Context, id string) error
	}

	// A Notifier reports failures to the user without blocking.
	Notifier func(err error)

	// Chrome is the toolbar placement.
	Chrome struct {
		X         float64 `json:"x"`
		Y         float64 `json:"y"`
		Collapsed bool    `json:"collapsed"`
	}

	// State is the locally persisted document.
	State struct {
		Items       []*model.Item `json:"items"`
		CurrentUser *model.User   `json:"current_user"`
		Users       []*model.User `json:"users"`
		Chrome      Chrome        `json:"chrome"`
	}

	// A Store is the ordered collection of the board items.
	// Local saves and remote updates are debounced, remote creations and deletions are immediate.
	Store struct {
		path   string
		logger logrus.FieldLogger
		remote Remote
		notify Notifier
		delay  time.Duration

		mu       sync.Mutex
		state    State
		rand     *rand.Rand
		pending  map[string]model.Patch
		debounce func(func())
		mirror   func(func())
	}

	// An Option configures a Store.
	Option func(*Store)
)

// WithRemote mirrors the changes on the given remote.
func WithRemote(r Remote) Option {
	return func(s *Store) {
		s.remote = r
	}
}

// WithLogger sets the logger of the store.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithNotifier sets the function called on remote failures.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		s.notify = n
	}
}

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(s *Store) {
		s.delay = d
	}
}

// WithSeed makes the placement of new items deterministic.
func WithSeed(seed int64) Option {
	return func(s *Store) {
		s.rand = rand.New(rand.NewSource(seed))
	}
}

// Open returns a store persisted at path.
// A missing or malformed state file starts an empty board.
// An empty path disables the local persistence.
func Open(path string, opts ...Option) *Store {
	s := &Store{
		path:    path,
		logger:  logrus.StandardLogger(),
		delay:   DefaultDelay,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		pending: map[string]model.Patch{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notify == nil {
		s.notify = func(err error) {
			s.logger.WithError(err).Error("remote board")
		}
	}
	s.debounce = debounce.New(s.delay)
	s.mirror = debounce.New(s.delay)

	s.state = s.read()
	return s
}

func (s *Store) read() State {
	var state State
	if s.path == "" {
		return state
	}

	payload, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warn("store: could not read state, starting from scratch")
		}
		return state
	}

	if err = json.Unmarshal(payload, &state); err != nil {
		s.logger.WithError(err).Warn("store: malformed state, starting from scratch")
		return State{}
	}

	state.Items = s.sanitize(state.Items)
	return state
}

// sanitize drops the invalid items and the later duplicates of an id.
func (s *Store) sanitize(items []*model.Item) []*model.Item {
	seen := map[string]bool{}
	valid := make([]*model.Item, 0, len(items))

	for _, item := range items {
		if item == nil || item.ID == "" {
			continue
		}
		if seen[item.ID] {
			s.logger.Warnf("store: dropping duplicate item %s", item.ID)
			continue
		}
		if err := item.Validate(); err != nil {
			s.logger.WithError(err).Warnf("store: dropping invalid item %s", item.ID)
			continue
		}
		seen[item.ID] = true
		valid = append(valid, item)
	}
	return valid
}

///////////////////
//               //
// Collection    //
//               //
///////////////////

// Items returns a copy of the items ordered by z-index then insertion order.
func (s *Store) Items() []*model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := model.CloneItems(s.state.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ZIndex < items[j].ZIndex
	})
	return items
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Items)
}

// Find returns a copy of the item.
func (s *Store) Find(id string) (*model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(id); i >= 0 {
		return s.state.Items[i].Clone(), true
	}
	return nil, false
}

// Add pins a new item of type t with its default content, randomly placed and tilted, on top of the others.
func (s *Store) Add(ctx context.Context, t model.ItemType) (*model.Item, error) {
	s.mu.Lock()

	size := model.DefaultSize(t)
	x := s.rand.Float64() * (workspace.LogicalWidth - size.Width)
	y := s.rand.Float64() * (workspace.LogicalHeight - size.Height)

	item, err := model.NewItem(t, x, y)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	item.Rotation = (s.rand.Float64()*2 - 1) * MaxInitialRotation
	item.ZIndex = s.top() + 1
	for item.ID == "" || s.index(item.ID) >= 0 {
		item.ID = uuid.Must(uuid.NewV4()).String()
	}

	now := time.Now().UTC()
	model.Stamp(item, now)
	if u := s.state.CurrentUser; u != nil {
		item.CreatedBy = u.Name
		item.UpdatedBy = u.Name
	}

	s.state.Items = append(s.state.Items, item)
	s.save()
	clone := item.Clone()
	s.mu.Unlock()

	if s.remote != nil {
		if err := s.remote.CreateItem(ctx, clone.Clone()); err != nil {
			s.notify(errors.Wrap(err, "could not share the new item"))
		}
	}

	return clone, nil
}

// Update merges the patch into the item.
// A missing item is ignored and false is returned.
func (s *Store) Update(id string, patch model.Patch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		s.logger.Warnf("store: update of missing item %s ignored", id)
		return false, nil
	}

	if u := s.state.CurrentUser; u != nil && patch.UpdatedBy == nil {
		patch.UpdatedBy = model.String(u.Name)
	}

	item := s.state.Items[i]
	if err := item.Apply(patch); err != nil {
		return true, err
	}
	item.SetUpdatedAt(time.Now().UTC())

	s.save()
	if s.remote != nil {
		s.pending[id] = s.pending[id].Merge(patch)
		s.mirror(s.push)
	}
	return true, nil
}

// Delete unpins the item.
// A missing item is ignored and false is returned.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()

	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debugf("store: delete of missing item %s ignored", id)
		return false
	}

	s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
	delete(s.pending, id)
	s.save()
	s.mu.Unlock()

	if s.remote != nil {
		if err := s.remote.DeleteItem(ctx, id); err != nil && errors.Cause(err) != ErrNotFound {
			s.notify(errors.Wrap(err, "could not unpin the item"))
		}
	}
	return true
}

// Replace replaces the whole collection.
// Invalid items and duplicated ids are dropped.
func (s *Store) Replace(items []*model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Items = model.CloneItems(s.sanitize(items))
	s.pending = map[string]model.Patch{}
	s.save()
}

// BringToFront stacks the item above all the others.
func (s *Store) BringToFront(id string) bool {
	s.mu.Lock()
	z := s.top() + 1
	s.mu.Unlock()

	ok, _ := s.Update(id, model.Patch{ZIndex: model.Int(z)})
	return ok
}

// SendToBack stacks the item below all the others.
func (s *Store) SendToBack(id string) bool {
	s.mu.Lock()
	z := s.bottom() - 1
	s.mu.Unlock()

	ok, _ := s.Update(id, model.Patch{ZIndex: model.Int(z)})
	return ok
}

// Load replaces the collection with the remote items.
func (s *Store) Load(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}

	items, err := s.remote.ListItems(ctx)
	if err != nil {
		err = errors.Wrap(err, "could not load the board")
		s.notify(err)
		return err
	}

	s.Replace(items)
	return nil
}

// Apply mirrors a change made by someone else without sending it back to the remote.
func (s *Store) Apply(item *model.Item, deleted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(item.ID)
	switch {
	case deleted && i >= 0:
		s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
		delete(s.pending, item.ID)
	case deleted:
		return
	case i >= 0:
		s.state.Items[i] = item.Clone()
	default:
		s.state.Items = append(s.state.Items, item.Clone())
	}
	s.save()
}

// Flush writes the local state and pushes the pending remote updates right away.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	err := s.write()
	s.mu.Unlock()

	s.pushContext(ctx)
	return err
}

///////////////////
//               //
// Session       //
//               //
///////////////////

// CurrentUser returns the logged in user.
func (s *Store) CurrentUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentUser
}

// SetCurrentUser sets the logged in user, nil logs out.
func (s *Store) SetCurrentUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.CurrentUser = u
	s.save()
}

// Users returns the known flatmates.
func (s *Store) Users() []*model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.User(nil), s.state.Users...)
}

// SetUsers sets the known flatmates.
func (s *Store) SetUsers(users []*model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Users = append([]*model.User(nil), users...)
	s.save()
}

// Chrome returns the toolbar placement.
func (s *Store) Chrome() Chrome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Chrome
}

// SetChrome sets the toolbar placement.
func (s *Store) SetChrome(c Chrome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Chrome = c
	s.save()
}

///////////////////
//               //
// Internals     //
//               //
///////////////////

// index returns the position of the item or -1. The lock must be held.
func (s *Store) index(id string) int {
	for i, item := range s.state.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) top() int {
	var z int
	for i, item := range s.state.Items {
		if i == 0 || item.ZIndex > z {
			z = item.ZIndex
		}
	}
	return z
}

func (s *Store) bottom() int {
	var z int
	for i, item := range s.state.Items {
		if i == 0 || item.ZIndex < z {
			z = item.ZIndex
		}
	}
	return z
}

// save schedules a write of the local state. The lock must be held.
func (s *Store) save() {
	if s.path == "" {
		return
	}

	s.debounce(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.write(); err != nil {
			s.logger.WithError(err).Error("store: could not save state")
		}
	})
}

// write persists the local state. The lock must be held.
func (s *Store) write() error {
	if s.path == "" {
		return nil
	}

	payload, err := json.Marshal(s.state)
	if err != nil {
		return errors.Wrap(err, "could not encode state")
	}

	tmp := s.path + ".tmp"
	if err = os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "could not create state directory")
	}
	if err = os.WriteFile(tmp, payload, 0o600); err != nil {
		return errors.Wrap(err, "could not write state")
	}
	return errors.Wrap(os.Rename(tmp, s.path), "could not replace state")
}

func (s *Store) push() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.pushContext(ctx)
}

// pushContext sends the pending updates once, failures are reported and dropped.
func (s *Store) pushContext(ctx context.Context) {
	if s.remote == nil {
		return
	}

	s.mu.Lock()
	pending := s.pending
	s.pending = map[string]model.Patch{}
	s.mu.Unlock()

	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		err := s.remote.UpdateItem(ctx, id, pending[id])
		if err != nil && errors.Cause(err) != ErrNotFound {
			s.notify(errors.Wrapf(err, "could not share the changes of item %s", id))
		}
	}
}
