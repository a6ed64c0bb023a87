package server_test

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/appleboy/gofight/v2"
	"github.com/mdouchement/corkboard/internal/server"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

func TestRequestUploads(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	_, header := createUser(ctrl, "alice")

	dir := t.TempDir()
	photo := filepath.Join(dir, "cat.PNG")
	require.NoError(t, os.WriteFile(photo, []byte("\x89PNG fake"), 0o600))
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o600))

	var url string
	r.POST("/uploads").SetHeader(header).
		SetFileFromPath([]gofight.UploadFile{{Path: photo, Name: "file"}}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusCreated, r.Code)

			v, err := fastjson.Parse(r.Body.String())
			require.NoError(t, err)
			url = string(v.GetStringBytes("url"))
			assert.True(t, strings.HasPrefix(url, "/uploads/"))
			assert.True(t, strings.HasSuffix(url, ".png"))
		})

	r.GET(url).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.Equal(t, "\x89PNG fake", r.Body.String())
	})

	r.POST("/uploads").SetHeader(header).
		SetFileFromPath([]gofight.UploadFile{{Path: text, Name: "file"}}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusUnsupportedMediaType, r.Code)
		})

	r.POST("/uploads").SetHeader(header).SetJSON(gofight.D{"file": "nope"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
	})
}

func TestSaveUpload(t *testing.T) {
	dir := t.TempDir()

	err := server.SaveUpload(dir, "cat.png", strings.NewReader("\x89PNG fake"))
	require.NoError(t, err)
	payload, err := os.ReadFile(filepath.Join(dir, "cat.png"))
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG fake", string(payload))

	// Interrupted transfer.
	err = server.SaveUpload(dir, "dog.png", iotest.ErrReader(errors.New("connection reset")))
	assert.EqualError(t, err, "could not write upload: connection reset")
	assert.NoFileExists(t, filepath.Join(dir, "dog.png"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
