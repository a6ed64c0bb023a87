package server

import (
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/corkboard/internal/cberror"
	"github.com/pkg/errors"
)

// MaxUploadSize is the maximum size of an uploaded photo.
const MaxUploadSize = 5 << 20

// UploadExtensions are the accepted photo extensions.
var UploadExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// upload contains the photo upload handler.
type upload struct {
	path string
}

// Create stores the uploaded photo and returns its public URL.
func (h *upload) Create(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return cberror.BadRequest("Missing file")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !UploadExtensions[ext] {
		return cberror.NewWithTagCode(http.StatusUnsupportedMediaType, cberror.TagUnsupportedFile, "Only jpg, png, gif and webp photos are supported")
	}
	if fh.Size > MaxUploadSize {
		return cberror.NewWithTagCode(http.StatusRequestEntityTooLarge, cberror.TagFileTooLarge, "Photos are limited to 5MB")
	}

	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "could not open upload")
	}
	defer src.Close()

	name := uuid.Must(uuid.NewV4()).String() + ext
	if err = SaveUpload(h.path, name, src); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"url": path.Join("/uploads", name),
	})
}

// SaveUpload writes r as the file name in dir.
// Nothing is left in dir when the copy fails.
func SaveUpload(dir, name string, r io.Reader) error {
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return errors.Wrap(err, "could not create upload")
	}

	if _, err = io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return errors.Wrap(err, "could not write upload")
	}
	return errors.Wrap(dst.Close(), "could not write upload")
}
