package remote

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/realtime"
	"github.com/mdouchement/corkboard/internal/store"
	"github.com/pkg/errors"
)

// Watch streams the board events to fn until the context is done or the connection is lost.
func (c *Client) Watch(ctx context.Context, fn func(realtime.Event)) error {
	u, err := c.resolve("/realtime")
	if err != nil {
		return err
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)

	header := http.Header{}
	if c.bearer != "" {
		header.Set("Authorization", "Bearer "+c.bearer)
	}

	conn, res, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if res != nil {
			defer res.Body.Close()
			return parseError(res.Body, res.StatusCode)
		}
		return errors.Wrap(err, "could not connect to realtime endpoint")
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-done:
		}
	}()

	for {
		var e realtime.Event
		if err := conn.ReadJSON(&e); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return errors.Wrap(err, "realtime connection lost")
		}
		fn(e)
	}
}

// Follow mirrors the board events into the store until the context is done.
func (c *Client) Follow(ctx context.Context, s *store.Store) error {
	return c.Watch(ctx, func(e realtime.Event) {
		switch e.Type {
		case realtime.ItemCreated, realtime.ItemUpdated:
			if e.Item != nil {
				s.Apply(e.Item, false)
			}
		case realtime.ItemDeleted:
			s.Apply(&model.Item{Base: model.Base{ID: e.ID}}, true)
		}
	})
}
