package client

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/mdouchement/corkboard/internal/discovery"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/realtime"
	"github.com/pkg/errors"
)

// Watch prints the board events until interrupted.
func Watch(opts Options) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close(context.Background())

	fmt.Println("Watching", s.client.Endpoint())
	return s.client.Watch(ctx, func(e realtime.Event) {
		now := time.Now().Format(time.Kitchen)

		switch {
		case e.Item != nil:
			s.store.Apply(e.Item, false)
			fmt.Printf("%s %-17s %s %s by %s\n", now, e.Type, e.Item.Type, e.Item.ID, e.Item.UpdatedBy)
		case e.Type == realtime.ItemDeleted:
			s.store.Apply(&model.Item{Base: model.Base{ID: e.ID}}, true)
			fmt.Printf("%s %-17s %s\n", now, e.Type, e.ID)
		default:
			fmt.Printf("%s %-17s %s\n", now, e.Type, e.Date)
		}
	})
}

// Discover lists the board servers found on the LAN.
func Discover(timeout time.Duration) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	boards, err := discovery.Browse(ctx, timeout)
	if err != nil {
		return errors.Wrap(err, "could not browse the network")
	}
	if len(boards) == 0 {
		fmt.Println("No board found")
		return nil
	}

	for _, b := range boards {
		fmt.Printf("%-24s %-28s %s\n", b.Instance, b.Endpoint, b.Version)
	}
	return nil
}
