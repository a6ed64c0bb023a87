package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/corkboard/internal/cberror"
	"github.com/mdouchement/corkboard/internal/export"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/server/service"
	"github.com/pkg/errors"
)

// MaxPatchSize is the maximum size of a partial update body.
const MaxPatchSize = 1 << 20

// item contains all item handlers.
type item struct {
	service *service.ItemService
}

///// Items
////
//

// List returns all the items in stacking order.
func (h *item) List(c echo.Context) error {
	items, err := h.service.List()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Create pins a new item.
func (h *item) Create(c echo.Context) error {
	var params service.CreateItemParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	item, err := h.service.Create(currentUser(c), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// Update partially updates an item.
// Only the fields present in the body are changed.
func (h *item) Update(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, MaxPatchSize))
	if err != nil {
		return errors.Wrap(err, "could not read body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return cberror.BadRequest("Request body can't be empty")
	}

	item, err := h.service.Update(currentUser(c), c.Param("id"), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Delete unpins an item.
func (h *item) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

///// Stacking
////
//

// BringToFront stacks an item above all the others.
func (h *item) BringToFront(c echo.Context) error {
	item, err := h.service.BringToFront(currentUser(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// SendToBack stacks an item below all the others.
func (h *item) SendToBack(c echo.Context) error {
	item, err := h.service.SendToBack(currentUser(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

///// Export
////
//

// PDF renders the live board as a PDF document.
func (h *item) PDF(c echo.Context) error {
	items, err := h.service.List()
	if err != nil {
		return err
	}

	title := "Corkboard " + time.Now().Format(model.DateLayout)
	return renderPDF(c, title, items)
}

func renderPDF(c echo.Context, title string, items []*model.Item) error {
	var buf bytes.Buffer
	if err := export.PDF(&buf, title, items); err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", title+".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
