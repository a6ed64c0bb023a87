package client

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mdouchement/corkboard/internal/board"
	"github.com/mdouchement/corkboard/internal/remote"
	"github.com/mdouchement/corkboard/internal/store"
	"github.com/mdouchement/corkboard/pkg/workspace"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Timeout bounds every command.
const Timeout = 30 * time.Second

// Options are the global options of the client commands.
type Options struct {
	Debug bool
	// Viewport is the simulated screen, e.g. "1920x1080".
	Viewport string
	// Compact simulates a touch screen.
	Compact bool
}

type session struct {
	cfg    Config
	logger *logrus.Logger
	client *remote.Client
	store  *store.Store
	board  *board.Controller
	// status replaces the standard error output for notifications.
	status func(message string)
}

// open loads the configuration and the shared board.
// The local state is used when the server cannot be reached.
func open(ctx context.Context, opts Options) (*session, error) {
	viewport, err := ParseViewport(opts.Viewport, opts.Compact)
	if err != nil {
		return nil, err
	}

	cfg, err := Load()
	if err != nil {
		return nil, errors.Wrap(err, "could not load config")
	}

	s := &session{
		cfg:    cfg,
		logger: NewLogger(opts.Debug),
	}

	s.client, err = remote.NewDefaultClient(cfg.Endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "could not reach corkboard endpoint")
	}
	s.client.SetBearerToken(cfg.Token)

	s.store = store.Open(cfg.State,
		store.WithRemote(s.client),
		store.WithLogger(s.logger),
		store.WithNotifier(s.notify),
	)
	s.store.SetCurrentUser(cfg.User)
	if err = s.store.Load(ctx); err != nil {
		s.logger.WithError(err).Warn("working on the local board")
	}
	dump(s.logger, "items", s.store.Items())

	s.board = board.New(s.store, board.WithLogger(s.logger))
	s.board.Resize(viewport)
	return s, nil
}

func (s *session) notify(err error) {
	s.logger.WithError(err).Error("remote board")
	if s.status != nil {
		s.status("warning: " + err.Error())
		return
	}
	fmt.Fprintln(os.Stderr, "warning:", err)
}

// close pushes the pending changes.
func (s *session) close(ctx context.Context) error {
	return errors.Wrap(s.store.Flush(ctx), "could not save the board")
}

// run opens a session, runs fn in edit mode and flushes the changes.
func run(opts Options, fn func(ctx context.Context, s *session) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}

	if err = fn(ctx, s); err != nil {
		s.close(ctx)
		return err
	}
	return s.close(ctx)
}

// ParseViewport parses a viewport such as "1920x1080".
func ParseViewport(s string, compact bool) (workspace.Viewport, error) {
	if s == "" {
		s = "1920x1080"
	}

	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return workspace.Viewport{}, errors.Errorf("invalid viewport %q, expected WIDTHxHEIGHT", s)
	}

	w, err1 := strconv.ParseFloat(parts[0], 64)
	h, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return workspace.Viewport{}, errors.Errorf("invalid viewport %q, expected WIDTHxHEIGHT", s)
	}

	return workspace.Viewport{Size: workspace.Size{Width: w, Height: h}, Compact: compact}, nil
}

// ParsePoint parses a point such as "110,110".
func ParsePoint(s string) (workspace.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return workspace.Point{}, errors.Errorf("invalid point %q, expected X,Y", s)
	}

	x, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	p := workspace.Point{X: x, Y: y}
	if err1 != nil || err2 != nil || !p.Finite() {
		return workspace.Point{}, errors.Errorf("invalid point %q, expected X,Y", s)
	}
	return p, nil
}
