package service

import (
	"time"

	"github.com/mdouchement/corkboard/internal/cberror"
	"github.com/mdouchement/corkboard/internal/database"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/realtime"
	"github.com/pkg/errors"
)

type (
	// A SnapshotService handles the board timeline.
	SnapshotService struct {
		db     database.Client
		events Publisher
		now    func() time.Time
	}

	// CaptureParams are used to capture a snapshot or a menu entry.
	CaptureParams struct {
		Date   string `json:"date"`
		ItemID string `json:"item_id"`
	}
)

// NewSnapshotService returns a new SnapshotService.
func NewSnapshotService(db database.Client, events Publisher) *SnapshotService {
	return &SnapshotService{
		db:     db,
		events: publisher(events),
		now:    time.Now,
	}
}

// Capture captures the current board for the given day, replacing any previous capture of that day.
func (s *SnapshotService) Capture(user *model.User, params CaptureParams) (*model.Snapshot, error) {
	day, err := ParseDate(params.Date, s.now())
	if err != nil {
		return nil, err
	}

	items, err := s.db.FindItems()
	if err != nil {
		return nil, errors.Wrap(err, "could not list items")
	}

	author := ""
	if user != nil {
		author = user.Name
	}
	snapshot := model.NewSnapshot(day, items, author)

	previous, err := s.db.FindSnapshot(snapshot.Date)
	switch {
	case err == nil:
		snapshot.ID = previous.ID
		snapshot.CreatedAt = previous.CreatedAt
	case !s.db.IsNotFound(err):
		return nil, errors.Wrap(err, "could not get access to database")
	}

	if err = s.db.Save(snapshot); err != nil {
		return nil, errors.Wrap(err, "could not save snapshot")
	}

	s.events.Publish(realtime.Event{Type: realtime.SnapshotCaptured, Date: snapshot.Date})
	return snapshot, nil
}

// Find returns the snapshot of the given day.
func (s *SnapshotService) Find(date string) (*model.Snapshot, error) {
	day, err := ParseDate(date, s.now())
	if err != nil {
		return nil, err
	}

	snapshot, err := s.db.FindSnapshot(day.Format(model.DateLayout))
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, notFound(cberror.TagSnapshotNotFound, "Snapshot")
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}
	return snapshot, nil
}

// List returns the timeline, most recent first.
func (s *SnapshotService) List() ([]*model.Snapshot, error) {
	snapshots, err := s.db.FindSnapshots()
	return snapshots, errors.Wrap(err, "could not list snapshots")
}
