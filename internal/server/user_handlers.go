package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/corkboard/internal/cberror"
	"github.com/mdouchement/corkboard/internal/server/serializer"
	"github.com/mdouchement/corkboard/internal/server/service"
)

// user contains all user handlers.
type user struct {
	service *service.UserService
}

///// Login
////
//

// Login logs in a flatmate by name and returns a JWT.
// The user is created on its first login.
func (h *user) Login(c echo.Context) error {
	var params service.LoginParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, cberror.New("Could not get login params."))
	}

	render, err := h.service.Login(params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, render)
}

///// Users
////
//

// List returns all the flatmates.
func (h *user) List(c echo.Context) error {
	users, err := h.service.List()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serializer.Users(users))
}

// Me returns the current user.
func (h *user) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, serializer.User(currentUser(c)))
}

// Update updates the profile of the current user.
func (h *user) Update(c echo.Context) error {
	var params service.UpdateUserParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	u, err := h.service.Update(currentUser(c), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serializer.User(u))
}
