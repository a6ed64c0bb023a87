package client

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mdouchement/corkboard/internal/board"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/store"
	"github.com/pkg/errors"
)

// Snapshot captures the board for the given day, today when empty.
func Snapshot(opts Options, date string) error {
	return run(opts, func(ctx context.Context, s *session) error {
		// The server captures its own board, local changes must be there first.
		if err := s.store.Flush(ctx); err != nil {
			return err
		}

		snapshot, err := s.client.CaptureSnapshot(ctx, date)
		if err != nil {
			return errors.Wrap(err, "could not capture snapshot")
		}
		fmt.Printf("Captured %d items on %s\n", len(snapshot.Items), snapshot.Date)
		return nil
	})
}

// Timeline lists the captured snapshots.
func Timeline(opts Options) error {
	return run(opts, func(ctx context.Context, s *session) error {
		snapshots, err := s.client.Snapshots(ctx)
		if err != nil {
			return errors.Wrap(err, "could not get timeline")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tITEMS\tBY")
		for _, snapshot := range snapshots {
			fmt.Fprintf(w, "%s\t%d\t%s\n", snapshot.Date, snapshot.Count, snapshot.CreatedBy)
		}
		return w.Flush()
	})
}

// ShowSnapshot renders the board as it was on the given day.
func ShowSnapshot(opts Options, date string) error {
	return run(opts, func(ctx context.Context, s *session) error {
		snapshot, err := s.client.Snapshot(ctx, date)
		if err != nil {
			return errors.Wrap(err, "could not get snapshot")
		}

		// A detached board so nothing is written back.
		past := store.Open("", store.WithLogger(s.logger))
		past.Replace(snapshot.Items)
		b := board.New(past, board.WithLogger(s.logger))
		b.Resize(s.board.Viewport())

		fmt.Printf("Board of %s by %s\n\n", snapshot.Date, snapshot.CreatedBy)
		for _, v := range b.Views() {
			if err = board.Render(os.Stdout, v); err != nil {
				return err
			}
			fmt.Println()
		}
		return nil
	})
}

// Menu captures a menu item for the given day, today when empty.
func Menu(opts Options, id, date string) error {
	return run(opts, func(ctx context.Context, s *session) error {
		id, err := s.resolve(id)
		if err != nil {
			return err
		}
		if err = s.store.Flush(ctx); err != nil {
			return err
		}

		entry, err := s.client.CaptureMenu(ctx, id, date)
		if err != nil {
			return errors.Wrap(err, "could not capture menu")
		}
		fmt.Printf("Captured %q on %s\n", entry.Title, entry.Date)
		return nil
	})
}

// Menus prints the menus captured on the given day, all of them when empty.
func Menus(opts Options, date string) error {
	return run(opts, func(ctx context.Context, s *session) error {
		entries, err := s.client.MenuEntries(ctx, date)
		if err != nil {
			return errors.Wrap(err, "could not get menus")
		}

		for _, entry := range entries {
			menu, err := entry.Menu()
			if err != nil {
				s.logger.WithError(err).WithField("id", entry.ID).Warn("unreadable menu entry")
				continue
			}

			fmt.Printf("%s  %s (%s)\n", entry.Date, entry.Title, short(entry.ItemID))
			for _, section := range menu.Sections {
				fmt.Printf("  %s: %s\n", section.Name, strings.Join(section.Dishes, ", "))
			}
		}
		return nil
	})
}

// Export writes the PDF of the snapshot of the given day, of the live board when empty.
func Export(opts Options, date, filename string) error {
	return run(opts, func(ctx context.Context, s *session) error {
		if err := s.store.Flush(ctx); err != nil {
			return err
		}

		f, err := os.Create(filename)
		if err != nil {
			return errors.Wrap(err, "could not create export")
		}
		defer f.Close()

		if date == "" {
			err = s.client.BoardPDF(ctx, f)
		} else {
			err = s.client.SnapshotPDF(ctx, date, f)
		}
		if err != nil {
			os.Remove(filename)
			return errors.Wrap(err, "could not export")
		}

		fmt.Println("Exported to", filename)
		return f.Close()
	})
}

// Upload sends a picture and pins it on the given photo item, or on a new one when id is empty.
func Upload(opts Options, filename, id string) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "could not open picture")
	}
	defer f.Close()

	return run(opts, func(ctx context.Context, s *session) error {
		if id == "" {
			item, err := s.store.Add(ctx, model.TypePhoto)
			if err != nil {
				return err
			}
			id = item.ID
		} else if id, err = s.resolve(id); err != nil {
			return err
		}

		url, err := s.client.Upload(ctx, filename, f)
		if err != nil {
			return errors.Wrap(err, "could not upload picture")
		}

		s.board.SetEditMode(true)
		s.board.Select(id)
		if err = s.board.Edit(id, board.SetPhoto(url)); err != nil {
			return err
		}
		fmt.Println(url)
		return nil
	})
}

// Users lists the users of the board.
func Users(opts Options) error {
	return run(opts, func(ctx context.Context, s *session) error {
		users, err := s.client.Users(ctx)
		if err != nil {
			return errors.Wrap(err, "could not get users")
		}
		s.store.SetUsers(users)

		current := ""
		if u := s.store.CurrentUser(); u != nil {
			current = u.Name
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\tNAME\tCOLOR\tHANDLE")
		for _, u := range users {
			mark := ""
			if u.Name == current {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, u.Name, u.Color, u.Handle)
		}
		return w.Flush()
	})
}
