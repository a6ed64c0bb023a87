package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/chzyer/readline"
	"github.com/mdouchement/corkboard/internal/model"
	sargon2 "github.com/mdouchement/simple-argon2"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltKeyLength = 16
	configfile    = ".corkboard"
	statefile     = ".corkboard.state"
)

// A Config holds client's configuration.
type Config struct {
	Endpoint string      `json:"endpoint"`
	Token    string      `json:"token"`
	User     *model.User `json:"user"`
	// State is the local board state file.
	State string `json:"state"`
}

// Remove removes the configuration and the local board state from the current directory.
func Remove() error {
	state := statefile
	if cfg, err := read(nil); err == nil && cfg.State != "" {
		state = cfg.State
	}

	if err := os.Remove(state); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "could not remove board state")
	}
	return os.Remove(configfile)
}

// Load gets the configuration from the current folder according to `configfile` const.
// A sealed configuration asks for its passphrase.
func Load() (Config, error) {
	return read(func() ([]byte, error) {
		return readline.Password("passphrase: ")
	})
}

func read(passphrase func() ([]byte, error)) (Config, error) {
	var cfg Config

	payload, err := os.ReadFile(configfile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.New("not logged in, run `cbc login` first")
		}
		return cfg, errors.Wrap(err, "could not read config file")
	}

	if !bytes.HasPrefix(bytes.TrimSpace(payload), []byte("{")) {
		if passphrase == nil {
			return cfg, errors.New("config is sealed")
		}

		secret, err := passphrase()
		if err != nil {
			return cfg, errors.Wrap(err, "could not read passphrase from stdin")
		}
		if payload, err = unseal(payload, secret); err != nil {
			return cfg, err
		}
	}

	err = json.Unmarshal(payload, &cfg)
	return cfg, errors.Wrap(err, "could not parse config")
}

// Save stores the configuration in the current folder according to `configfile` const.
// The configuration is sealed with the passphrase unless it is empty.
func Save(cfg Config, passphrase []byte) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "could not serialize config")
	}

	if len(passphrase) > 0 {
		if payload, err = seal(payload, passphrase); err != nil {
			return err
		}
	}

	fmt.Println("Storing configuration in current directory as " + configfile)
	f, err := os.OpenFile(configfile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", configfile)
	}
	defer f.Close()

	if _, err = f.Write(payload); err != nil {
		return errors.Wrap(err, "could not store config")
	}
	return errors.Wrap(f.Sync(), "could not store config")
}

func seal(payload, passphrase []byte) ([]byte, error) {
	//
	// Key derivation of passphrase

	salt, err := sargon2.GenerateRandomBytes(saltKeyLength)
	if err != nil {
		return nil, errors.Wrap(err, "could not generate salt for config")
	}
	hash := argon2.IDKey(passphrase, salt, 3, 64<<10, 2, 32)

	//
	// Seal config

	aead, err := chacha20poly1305.NewX(hash)
	if err != nil {
		return nil, errors.Wrap(err, "could not create AEAD")
	}
	nonce, err := sargon2.GenerateRandomBytes(uint32(aead.NonceSize()))
	if err != nil {
		return nil, errors.Wrap(err, "could not generate nonce for config")
	}

	ciphertext := aead.Seal(nil, nonce, payload, nil)
	ciphertext = append(nonce, ciphertext...)
	return append(salt, ciphertext...), nil
}

func unseal(ciphertext, passphrase []byte) ([]byte, error) {
	if len(ciphertext) < saltKeyLength+chacha20poly1305.NonceSizeX {
		return nil, errors.New("config file is truncated")
	}

	salt := ciphertext[:saltKeyLength]
	ciphertext = ciphertext[saltKeyLength:]
	hash := argon2.IDKey(passphrase, salt, 3, 64<<10, 2, 32)

	aead, err := chacha20poly1305.NewX(hash)
	if err != nil {
		return nil, errors.Wrap(err, "could not create AEAD")
	}

	nonce := ciphertext[:aead.NonceSize()]
	ciphertext = ciphertext[aead.NonceSize():]

	payload, err := aead.Open(nil, nonce, ciphertext, nil)
	return payload, errors.Wrap(err, "could not decrypt config file")
}
