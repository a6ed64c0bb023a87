package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/corkboard/internal/server/serializer"
	"github.com/mdouchement/corkboard/internal/server/service"
)

// snapshot contains all timeline handlers.
type snapshot struct {
	service *service.SnapshotService
}

///// Capture
////
//

// Capture captures the whole board for a given day (today by default).
// A second capture of the same day replaces the first one.
func (h *snapshot) Capture(c echo.Context) error {
	var params service.CaptureParams
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&params); err != nil {
			return err
		}
	}

	snapshot, err := h.service.Capture(currentUser(c), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, serializer.Snapshot(snapshot))
}

///// Timeline
////
//

// List returns the timeline without the captured items.
func (h *snapshot) List(c echo.Context) error {
	snapshots, err := h.service.List()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serializer.Snapshots(snapshots))
}

// Show returns the snapshot of the given day.
func (h *snapshot) Show(c echo.Context) error {
	snapshot, err := h.service.Find(c.Param("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serializer.Snapshot(snapshot))
}

// PDF renders the snapshot of the given day as a PDF document.
func (h *snapshot) PDF(c echo.Context) error {
	snapshot, err := h.service.Find(c.Param("date"))
	if err != nil {
		return err
	}
	return renderPDF(c, "Corkboard "+snapshot.Date, snapshot.Items)
}
