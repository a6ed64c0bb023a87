package client

import (
	"fmt"

	"github.com/pkg/errors"
)

// Logout forgets the board server and the local board.
func Logout() error {
	if err := Remove(); err != nil {
		return errors.Wrap(err, "could not remove config file")
	}

	fmt.Println("Logged out")
	return nil
}
