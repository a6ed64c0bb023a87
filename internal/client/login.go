package client

import (
	"context"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mdouchement/corkboard/internal/remote"
	"github.com/pkg/errors"
)

// Login joins a board under the given name.
// Missing endpoint and name are prompted.
func Login(endpoint, name string) error {
	var err error

	if endpoint == "" {
		if endpoint, err = readline.Line("Endpoint: "); err != nil {
			return errors.Wrap(err, "could not read endpoint from stdin")
		}
	}

	client, err := remote.NewDefaultClient(strings.TrimSpace(endpoint))
	if err != nil {
		return errors.Wrap(err, "could not reach given endpoint")
	}

	if name == "" {
		if name, err = readline.Line("Name: "); err != nil {
			return errors.Wrap(err, "could not read name from stdin")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	user, err := client.Login(ctx, name)
	if err != nil {
		return errors.Wrap(err, "could not login")
	}

	passphrase, err := readline.Password("Passphrase (empty to store the token in clear): ")
	if err != nil {
		return errors.Wrap(err, "could not read passphrase from stdin")
	}

	return Save(Config{
		Endpoint: client.Endpoint(),
		Token:    client.BearerToken(),
		User:     user,
		State:    statefile,
	}, passphrase)
}
