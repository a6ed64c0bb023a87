package tui

import (
	"time"

	"github.com/gcla/gowid"
	"github.com/gcla/gowid/widgets/columns"
	"github.com/gcla/gowid/widgets/framed"
	"github.com/gcla/gowid/widgets/null"
	"github.com/gcla/gowid/widgets/pile"
	"github.com/gcla/gowid/widgets/styled"
	"github.com/gcla/gowid/widgets/text"
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// StatusDuration is how long a notification stays in the status bar.
const StatusDuration = 1200 * time.Millisecond

// A TUI is a text-based interface.
type TUI struct {
	App    *gowid.App
	list   *ItemList
	editor *framed.Widget
	status *text.Widget
	reload func()
	add    func()
}

// An Option configures the TUI.
type Option func(*TUI)

// OnReload is called when the user asks to refresh the board (Ctrl+R).
func OnReload(fn func()) Option {
	return func(ui *TUI) {
		ui.reload = fn
	}
}

// OnAdd is called when the user asks for a new note (Ctrl+N).
func OnAdd(fn func()) Option {
	return func(ui *TUI) {
		ui.add = fn
	}
}

// New returns a new TUI.
func New(logger logrus.StdLogger, opts ...Option) (*TUI, error) {
	ui := new(TUI)
	for _, opt := range opts {
		opt(ui)
	}

	app, err := gowid.NewApp(layout(ui, logger))
	if err != nil {
		return ui, errors.Wrap(err, "could not create application widgets")
	}

	ui.App = app
	return ui, nil
}

// Run starts the application and thus the event loop.
func (ui *TUI) Run() {
	ui.App.MainLoop(gowid.UnhandledInputFunc(ui.unhandled))
}

// Cleanup cleans the application properly (in case of panic).
func (ui *TUI) Cleanup() {
	ui.App.GetScreen().Fini() // Cleanup tcell screen's objects
}

// Register registers an item.
func (ui *TUI) Register(i *Item) {
	ui.list.Register(i)
}

// Update replaces the displayed items from the main loop.
func (ui *TUI) Update(items []*Item) {
	ui.App.Run(gowid.RunFunction(func(app gowid.IApp) { // nolint:errcheck
		ui.list.Reset(items)
	}))
}

// Focused returns the ID of the focused item.
func (ui *TUI) Focused() string {
	return ui.list.Focused()
}

// DisplayStatus displays a message in the status bar (aka notifications).
func (ui *TUI) DisplayStatus(message string) {
	ui.App.Run(gowid.RunFunction(func(app gowid.IApp) { // nolint:errcheck
		ui.status.SetText(message, ui.App)
	}))
	go func() {
		timer := time.NewTimer(StatusDuration)
		<-timer.C
		ui.App.Run(gowid.RunFunction(func(app gowid.IApp) { // nolint:errcheck
			ui.status.SetText("", ui.App)
		}))
	}()
}

////////////////////
//                //
// Layout         //
//                //
////////////////////

func layout(ui *TUI, logger logrus.StdLogger) gowid.AppArgs {
	ui.list = NewItemList(ui)
	ui.editor = framed.NewUnicode(null.New())
	ui.status = text.New("")

	boardPane := columns.New([]gowid.IContainerWidget{
		&gowid.ContainerWidget{
			IWidget: styled.New(framed.NewUnicode(ui.list), gowid.MakePaletteRef("mainpane")),
			D:       gowid.RenderWithWeight{W: 2},
		},
		&gowid.ContainerWidget{
			IWidget: styled.New(ui.editor, gowid.MakePaletteRef("mainpane")),
			D:       gowid.RenderWithWeight{W: 7},
		},
	})

	main := pile.New([]gowid.IContainerWidget{
		&gowid.ContainerWidget{IWidget: boardPane, D: gowid.RenderWithWeight{W: 20}},
		&gowid.ContainerWidget{
			IWidget: styled.New(framed.NewUnicode(ui.status), gowid.MakePaletteRef("mainpane")),
			D:       gowid.RenderWithWeight{W: 2},
		},
	})

	return gowid.AppArgs{
		View: main,
		Palette: &gowid.Palette{
			"mainpane": gowid.MakePaletteEntry(gowid.ColorLightGray, gowid.ColorBlack),
			// List style
			"normal":  gowid.MakePaletteEntry(gowid.ColorLightGray, gowid.ColorBlack),
			"focused": gowid.MakePaletteEntry(gowid.ColorBlack, gowid.ColorYellow),
		},
		Log: logger,
	}
}

////////////////////
//                //
// Events         //
//                //
////////////////////

func (ui *TUI) unhandled(app gowid.IApp, ev any) bool {
	evk, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}

	switch evk.Key() {
	case tcell.KeyCtrlQ:
		app.Quit()
		return true
	case tcell.KeyCtrlR:
		if ui.reload != nil {
			go ui.reload()
		}
		return true
	case tcell.KeyCtrlN:
		if ui.add != nil {
			go ui.add()
		}
		return true
	}

	return false
}
