package server_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/appleboy/gofight/v2"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

func TestRequestSnapshots(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	_, header := createUser(ctrl, "alice")
	note := createItem(ctrl, model.TypeNote, 1, 1, 1)

	r.POST("/snapshots").SetHeader(header).SetJSON(gofight.D{"date": "2024-05-01"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		require.NoError(t, err)
		assert.Equal(t, "2024-05-01", string(v.GetStringBytes("date")))
		assert.Equal(t, "alice", string(v.GetStringBytes("created_by")))
		assert.Equal(t, 1, v.GetInt("count"))
		assert.Equal(t, note.ID, string(v.GetStringBytes("items_data", "0", "id")))
	})

	// Today, without body.
	r.POST("/snapshots").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		require.NoError(t, err)
		assert.Equal(t, time.Now().Format(model.DateLayout), string(v.GetStringBytes("date")))
	})

	// Live changes do not alter the captures.
	require.NoError(t, note.Apply(model.Patch{X: model.Float(999)}))
	require.NoError(t, ctrl.Database.Save(note))

	r.GET("/snapshots/20240501").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		require.NoError(t, err)
		assert.Equal(t, "2024-05-01", string(v.GetStringBytes("date")))
		assert.Equal(t, 1.0, v.GetFloat64("items_data", "0", "x"))
	})

	// Upsert
	r.POST("/snapshots").SetHeader(header).SetJSON(gofight.D{"date": "2024-05-01"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)
	})

	r.GET("/snapshots").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		require.NoError(t, err)
		assert.Len(t, v.GetArray(), 2)
		assert.Nil(t, v.Get("0", "items_data"))
	})

	snapshot, err := ctrl.Database.FindSnapshot("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 999.0, snapshot.Items[0].X)

	r.GET("/snapshots/1999-01-01").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"snapshot-not-found","message":"Snapshot not found"}}`, r.Body.String())
	})

	r.GET("/snapshots/someday").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
	})

	r.GET("/snapshots/2024-05-01/pdf").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.Equal(t, "application/pdf", r.Header().Get("Content-Type"))
	})
}

func TestRequestMenuEntries(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	_, header := createUser(ctrl, "alice")
	menu := createItem(ctrl, model.TypeMenu, 1, 1, 1)
	note := createItem(ctrl, model.TypeNote, 1, 1, 2)

	r.POST("/menu-entries").SetHeader(header).SetJSON(gofight.D{"item_id": menu.ID, "date": "2024-05-01"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		require.NoError(t, err)
		assert.Equal(t, menu.ID, string(v.GetStringBytes("item_id")))
		assert.Equal(t, "Menu", string(v.GetStringBytes("title")))
	})

	// Upsert on (date, item).
	r.POST("/menu-entries").SetHeader(header).SetJSON(gofight.D{"item_id": menu.ID, "date": "2024-05-01"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)
	})

	r.POST("/menu-entries").SetHeader(header).SetJSON(gofight.D{"item_id": note.ID}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnprocessableEntity, r.Code)
	})

	r.POST("/menu-entries").SetHeader(header).SetJSON(gofight.D{"item_id": "missing"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
	})

	r.GET("/menu-entries").SetHeader(header).SetQuery(gofight.H{"date": "2024-05-01"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		require.NoError(t, err)
		assert.Len(t, v.GetArray(), 1)
	})

	r.GET("/menu-entries").SetHeader(header).SetQuery(gofight.H{"date": "2024-05-02"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `[]`, r.Body.String())
	})
}
