package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mdouchement/corkboard/internal/client"
	"github.com/mdouchement/corkboard/internal/discovery"
	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	opts client.Options
)

func main() {
	c := &cobra.Command{
		Use:     "cbc",
		Short:   "Corkboard client",
		Version: fmt.Sprintf("%s - build %.7s @ %s", version, revision, date),
		Args:    cobra.NoArgs,
	}
	c.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Log payloads in "+client.Logfile)
	c.PersistentFlags().StringVar(&opts.Viewport, "viewport", "1920x1080", "Simulated screen size")
	c.PersistentFlags().BoolVar(&opts.Compact, "compact", false, "Simulate a touch screen")

	loginCmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "Board server URL (prompted when empty)")
	c.AddCommand(loginCmd)
	c.AddCommand(logoutCmd)
	c.AddCommand(usersCmd)

	c.AddCommand(listCmd)
	c.AddCommand(showCmd)
	c.AddCommand(addCmd)
	c.AddCommand(editCmd())
	c.AddCommand(moveCmd)
	c.AddCommand(dragCmd)
	c.AddCommand(rotateCmd)
	c.AddCommand(frontCmd)
	c.AddCommand(backCmd)
	c.AddCommand(deleteCmd)

	c.AddCommand(snapshotCmd)
	c.AddCommand(timelineCmd)
	c.AddCommand(menuCmd)
	c.AddCommand(menusCmd)
	exportCmd.Flags().StringVarP(&exportDate, "date", "d", "", "Export the snapshot of this day instead of the live board")
	c.AddCommand(exportCmd)
	uploadCmd.Flags().StringVarP(&uploadItem, "item", "i", "", "Photo item to update (a new photo is pinned when empty)")
	c.AddCommand(uploadCmd)

	c.AddCommand(watchCmd)
	discoverCmd.Flags().DurationVarP(&discoverTimeout, "timeout", "t", discovery.DefaultTimeout, "Browsing duration")
	c.AddCommand(discoverCmd)
	c.AddCommand(tuiCmd)

	if err := c.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var (
	endpoint        string
	exportDate      string
	uploadItem      string
	discoverTimeout = discovery.DefaultTimeout

	loginCmd = &cobra.Command{
		Use:   "login [NAME]",
		Short: "Join a board under the given name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return client.Login(endpoint, name)
		},
	}

	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Forget the board session and the local board",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Logout()
		},
	}

	usersCmd = &cobra.Command{
		Use:   "users",
		Short: "List the users of the board",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Users(opts)
		},
	}

	//
	// Board
	//

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List the pinned items from back to front",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return client.List(opts)
		},
	}

	showCmd = &cobra.Command{
		Use:   "show ID",
		Short: "Show an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Show(opts, args[0])
		},
	}

	addCmd = &cobra.Command{
		Use:       "add TYPE",
		Short:     "Pin a new item (note, photo, list, receipt, menu)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"note", "photo", "list", "receipt", "menu"},
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Add(opts, args[0])
		},
	}

	moveCmd = &cobra.Command{
		Use:   "move ID X Y",
		Short: "Move an item to a workspace position",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return err
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return err
			}
			return client.Move(opts, args[0], x, y)
		},
	}

	dragCmd = &cobra.Command{
		Use:   "drag ID FROM TO",
		Short: "Drag an item between two screen points (e.g. 110,110 310,160)",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Drag(opts, args[0], args[1], args[2])
		},
	}

	rotateCmd = &cobra.Command{
		Use:   "rotate ID DEGREES",
		Short: "Set the rotation of an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			degrees, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return err
			}
			return client.Rotate(opts, args[0], degrees)
		},
	}

	frontCmd = &cobra.Command{
		Use:   "front ID",
		Short: "Bring an item to the front",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Front(opts, args[0])
		},
	}

	backCmd = &cobra.Command{
		Use:   "back ID",
		Short: "Send an item to the back",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Back(opts, args[0])
		},
	}

	deleteCmd = &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Unpin an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Delete(opts, args[0])
		},
	}

	//
	// Timeline
	//

	snapshotCmd = &cobra.Command{
		Use:   "snapshot [DATE]",
		Short: "Capture the board in the timeline (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Snapshot(opts, first(args))
		},
	}

	timelineCmd = &cobra.Command{
		Use:   "timeline [DATE]",
		Short: "List the snapshots, or show the board of the given day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				return client.ShowSnapshot(opts, args[0])
			}
			return client.Timeline(opts)
		},
	}

	menuCmd = &cobra.Command{
		Use:   "menu ID [DATE]",
		Short: "Capture a menu for the given day (default today)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Menu(opts, args[0], first(args[1:]))
		},
	}

	menusCmd = &cobra.Command{
		Use:   "menus [DATE]",
		Short: "List the captured menus",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Menus(opts, first(args))
		},
	}

	exportCmd = &cobra.Command{
		Use:   "export FILENAME",
		Short: "Export the board to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Export(opts, exportDate, args[0])
		},
	}

	uploadCmd = &cobra.Command{
		Use:   "upload FILENAME",
		Short: "Upload a picture and pin it",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Upload(opts, args[0], uploadItem)
		},
	}

	//
	// Live
	//

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Print the board changes as they happen",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Watch(opts)
		},
	}

	discoverCmd = &cobra.Command{
		Use:   "discover",
		Short: "Find the boards on the local network",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Discover(discoverTimeout)
		},
	}

	tuiCmd = &cobra.Command{
		Use:   "tui",
		Short: "Text-based board browser",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return client.TUI(opts)
		},
	}
)

func editCmd() *cobra.Command {
	var (
		params                                    client.EditParams
		text, photo, caption, title, color, store string
	)

	c := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit the content of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set := func(flag string, v *string) *string {
				if cmd.Flags().Changed(flag) {
					return v
				}
				return nil
			}
			params.Text = set("text", &text)
			params.Photo = set("photo", &photo)
			params.Caption = set("caption", &caption)
			params.Title = set("title", &title)
			params.Color = set("color", &color)
			params.Store = set("store", &store)

			return client.Edit(opts, args[0], params)
		},
	}

	f := c.Flags()
	f.StringVar(&text, "text", "", "Text of a note")
	f.StringVar(&color, "color", "", "Color of a note")
	f.StringVar(&photo, "photo", "", "Picture URL of a photo")
	f.StringVar(&caption, "caption", "", "Caption of a photo")
	f.StringVar(&title, "title", "", "Title of a list or a menu")
	f.StringArrayVar(&params.AddEntries, "add-entry", nil, "Append an entry to a list")
	f.IntSliceVar(&params.ToggleEntries, "toggle", nil, "Check or uncheck a list entry")
	f.IntSliceVar(&params.RemoveEntries, "remove-entry", nil, "Remove a list entry")
	f.StringVar(&store, "store", "", "Store and date of a receipt (STORE@DATE)")
	f.StringArrayVar(&params.AddLines, "add-line", nil, "Append a line to a receipt (NAME=PRICE)")
	f.IntSliceVar(&params.RemoveLines, "remove-line", nil, "Remove a receipt line")
	f.StringArrayVar(&params.AddSections, "add-section", nil, "Append a section to a menu")
	f.StringArrayVar(&params.AddDishes, "add-dish", nil, "Append a dish to a menu section (SECTION=DISH)")
	f.StringSliceVar(&params.RemoveDishes, "remove-dish", nil, "Remove a dish (SECTION:DISH)")
	f.IntSliceVar(&params.RemoveSections, "remove-section", nil, "Remove a menu section")
	return c
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
