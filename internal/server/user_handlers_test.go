package server_test

import (
	"net/http"
	"testing"

	"github.com/appleboy/gofight/v2"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fastjson"
)

func TestRequestLogin(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	r.POST("/login").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"message":"Could not get login params."}}`, r.Body.String())
	})

	r.POST("/login").SetJSON(gofight.D{"name": "   "}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-parameters","message":"Please provide a name."}}`, r.Body.String())
	})

	var id string
	r.POST("/login").SetJSON(gofight.D{"name": "alice"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.NotEmpty(t, string(v.GetStringBytes("token")))
		assert.Equal(t, "alice", string(v.GetStringBytes("user", "name")))
		assert.Equal(t, model.Palette[0], string(v.GetStringBytes("user", "color")))
		id = string(v.GetStringBytes("user", "id"))
	})

	// Same name, same user.
	r.POST("/login").SetJSON(gofight.D{"name": "alice"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, id, string(v.GetStringBytes("user", "id")))
	})

	r.POST("/login").SetJSON(gofight.D{"name": "bob"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, model.Palette[1], string(v.GetStringBytes("user", "color")))
	})

	users, err := ctrl.Database.FindUsers()
	assert.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestRequestUsers(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	_, header := createUser(ctrl, "alice")
	createUser(ctrl, "bob")

	r.GET("/users").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Len(t, v.GetArray(), 2)
		assert.Equal(t, "alice", string(v.GetStringBytes("0", "name")))
	})

	r.GET("/users/me").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, "alice", string(v.GetStringBytes("name")))
		assert.Nil(t, v.Get("handle"))
	})

	r.PATCH("/users/me").SetHeader(header).SetJSON(gofight.D{"handle": "@alice"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, "@alice", string(v.GetStringBytes("handle")))
	})

	user, err := ctrl.Database.FindUserByName("alice")
	assert.NoError(t, err)
	assert.Equal(t, "@alice", user.Handle)
}
