package server

import (
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/internal/server/session"
)

// This file is only for test purpose and is only loaded by test framework.

// TokenFromUser returns JWT tokens.
func TokenFromUser(ioc IOC, u *model.User) string {
	token, err := session.NewManager(ioc.Database, ioc.SigningKey, ioc.TokenTTL).Token(u)
	if err != nil {
		panic(err)
	}
	return token
}
