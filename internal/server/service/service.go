package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mdouchement/corkboard/internal/cberror"
	"github.com/mdouchement/corkboard/internal/realtime"
)

type (
	// M is an arbitrary map.
	M map[string]any

	// A Publisher broadcasts board events.
	Publisher interface {
		Publish(realtime.Event)
	}

	nopPublisher struct{}
)

func (nopPublisher) Publish(realtime.Event) {}

func publisher(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// ParseDate parses a loosely formatted day (e.g. "2024-05-01", "May 1, 2024", "today").
// The empty string is today.
func ParseDate(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	}

	t, err := dateparse.ParseIn(s, now.Location())
	if err != nil {
		return time.Time{}, cberror.BadRequest("Could not understand the date %q", s)
	}
	return t, nil
}

func notFound(tag, what string) error {
	return cberror.NotFound(tag, what+" not found")
}

func conflict(tag, message string) error {
	return cberror.NewWithTagCode(http.StatusConflict, tag, message)
}
