package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/corkboard/internal/server/service"
)

// menu contains all menu entry handlers.
type menu struct {
	service *service.MenuService
}

// Capture records the content of a menu item for a given day.
func (h *menu) Capture(c echo.Context) error {
	var params service.CaptureParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	entry, err := h.service.Capture(currentUser(c), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, entry)
}

// List returns the menu entries, filtered by the `date` query param when given.
func (h *menu) List(c echo.Context) error {
	entries, err := h.service.List(c.QueryParam("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
