package client

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"

	"github.com/mdouchement/corkboard/internal/board"
	"github.com/mdouchement/corkboard/internal/client/tui"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/realtime"
	"github.com/pkg/errors"
)

// TUI runs the text-based board browser.
func TUI(opts Options) (err error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(context.Background()); err == nil {
			err = cerr
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4<<10)
			length := runtime.Stack(stack, true)
			s.logger.Errorf("[PANIC RECOVER] %v %s", r, stack[:length])
			err = fmt.Errorf("%v", r)
		}
	}()

	s.board.SetEditMode(true)
	b := &browser{session: s}

	ui, err := tui.New(s.logger, tui.OnReload(b.reload), tui.OnAdd(b.add))
	if err != nil {
		return err
	}
	defer ui.Cleanup()

	b.ui = ui
	s.status = ui.DisplayStatus
	for _, item := range b.items() {
		ui.Register(item)
	}

	go func() {
		err := s.client.Watch(ctx, b.follow)
		if err != nil {
			s.notify(err)
		}
	}()

	ui.Run()
	return nil
}

// A browser binds the board to the text-based interface.
type browser struct {
	sync.Mutex
	*session
	ui *tui.TUI
}

func (b *browser) items() []*tui.Item {
	b.Lock()
	defer b.Unlock()

	views := b.board.Views()
	items := make([]*tui.Item, 0, len(views))
	for i := len(views) - 1; i >= 0; i-- { // front first
		v := views[i]
		title := fmt.Sprintf("%-7s %s", v.Item.Type, short(v.Item.ID))

		content, err := v.Item.Decode()
		if err != nil {
			b.logger.WithError(err).WithField("id", v.Item.ID).Warn("unreadable item")
			continue
		}

		if note, ok := content.(model.NoteContent); ok {
			if first := strings.SplitN(note.Text, "\n", 2)[0]; first != "" {
				title = fmt.Sprintf("%-7s %s", v.Item.Type, first)
			}
			items = append(items, tui.NewNote(v.Item.ID, title, note.Text, b.save(v.Item.ID)))
			continue
		}

		var body bytes.Buffer
		if err := board.Render(&body, v); err != nil {
			b.logger.WithError(err).WithField("id", v.Item.ID).Warn("could not render item")
			continue
		}
		items = append(items, tui.NewItem(v.Item.ID, title, body.String()))
	}
	return items
}

func (b *browser) save(id string) func(text string) {
	return func(text string) {
		b.Lock()
		defer b.Unlock()

		b.board.Select(id)
		if err := b.board.Edit(id, board.SetText(text)); err != nil {
			b.ui.DisplayStatus(errors.Wrap(err, "could not save note").Error())
			return
		}
		b.ui.DisplayStatus("saved")
	}
}

func (b *browser) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	if err := b.store.Flush(ctx); err != nil {
		b.ui.DisplayStatus(err.Error())
	}
	if err := b.store.Load(ctx); err != nil {
		b.ui.DisplayStatus("offline: " + errors.Cause(err).Error())
	} else {
		b.ui.DisplayStatus("reloaded")
	}
	b.ui.Update(b.items())
}

func (b *browser) add() {
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	item, err := b.store.Add(ctx, model.TypeNote)
	if err != nil {
		b.ui.DisplayStatus(err.Error())
		return
	}
	b.ui.DisplayStatus("pinned " + short(item.ID))
	b.ui.Update(b.items())
}

// follow applies the changes of the other users.
// The note being typed is not refreshed under the user's cursor.
func (b *browser) follow(e realtime.Event) {
	var id string
	switch e.Type {
	case realtime.ItemCreated, realtime.ItemUpdated:
		if e.Item == nil {
			return
		}
		id = e.Item.ID
		b.store.Apply(e.Item, false)
	case realtime.ItemDeleted:
		id = e.ID
		b.store.Apply(&model.Item{Base: model.Base{ID: e.ID}}, true)
	default:
		return
	}

	b.ui.DisplayStatus(fmt.Sprintf("%s %s", e.Type, short(id)))
	if id != b.ui.Focused() || e.Type == realtime.ItemDeleted {
		b.ui.Update(b.items())
	}
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
