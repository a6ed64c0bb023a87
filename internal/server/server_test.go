package server_test

import (
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/appleboy/gofight/v2"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/corkboard/internal/database"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRequestHome(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.GET("/").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"version":"test"}`, r.Body.String())
	})
}

func TestRequestVersion(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.GET("/version").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"version":"test"}`, r.Body.String())
	})
}

func TestRequestRestricted(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.GET("/items").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"unauthorized","message":"Invalid login credentials."}}`, r.Body.String())
	})

	r.GET("/items").
		SetHeader(gofight.H{"Authorization": "Bearer not-a-token"}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusUnauthorized, r.Code)
		})
}

func setup() (engine *echo.Echo, ctrl server.IOC, r *gofight.RequestConfig, cleanup func()) {
	tmpfile, err := os.CreateTemp("", "corkboard.*.db")
	if err != nil {
		panic(err)
	}
	filename := tmpfile.Name()
	tmpfile.Close()

	uploads, err := os.MkdirTemp("", "corkboard-uploads")
	if err != nil {
		panic(err)
	}

	db, err := database.StormOpen(filename)
	if err != nil {
		panic(err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctrl = server.IOC{
		Version:     "test",
		Database:    db,
		Logger:      logger,
		SigningKey:  []byte("secret"),
		TokenTTL:    time.Hour,
		UploadsPath: uploads,
	}
	engine = server.EchoEngine(ctrl)

	return engine, ctrl, gofight.New(), func() {
		db.Close()
		os.RemoveAll(filename)
		os.RemoveAll(uploads)
	}
}

func createUser(ctrl server.IOC, name string) (*model.User, gofight.H) {
	users, err := ctrl.Database.FindUsers()
	if err != nil {
		panic(err)
	}

	user := model.NewUser(name, users)
	if err = ctrl.Database.Save(user); err != nil {
		panic(err)
	}

	return user, gofight.H{
		"Authorization": "Bearer " + server.TokenFromUser(ctrl, user),
	}
}

func createItem(ctrl server.IOC, t model.ItemType, x, y float64, z int) *model.Item {
	item, err := model.NewItem(t, x, y)
	if err != nil {
		panic(err)
	}
	item.ZIndex = z

	if err = ctrl.Database.Save(item); err != nil {
		panic(err)
	}
	return item
}
