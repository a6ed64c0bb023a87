package client

import (
	"os"
	"testing"

	"github.com/mdouchement/corkboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		os.Chdir(wd)
	})
}

func TestSeal(t *testing.T) {
	payload := []byte(`{"endpoint":"http://localhost:5000"}`)

	ciphertext, err := seal(payload, []byte("correct horse"))
	require.NoError(t, err)
	assert.NotContains(t, string(ciphertext), "localhost")

	plaintext, err := unseal(ciphertext, []byte("correct horse"))
	assert.NoError(t, err)
	assert.Equal(t, payload, plaintext)

	_, err = unseal(ciphertext, []byte("battery staple"))
	assert.Error(t, err)

	_, err = unseal(ciphertext[:10], []byte("correct horse"))
	assert.EqualError(t, err, "config file is truncated")
}

func TestConfig(t *testing.T) {
	chdir(t)

	_, err := read(nil)
	assert.EqualError(t, err, "not logged in, run `cbc login` first")

	cfg := Config{
		Endpoint: "http://localhost:5000",
		Token:    "token",
		User:     &model.User{Name: "alice", Color: model.Palette[0]},
		State:    statefile,
	}

	data := []struct {
		passphrase string
	}{
		{passphrase: ""},
		{passphrase: "secret"},
	}

	for _, d := range data {
		require.NoError(t, Save(cfg, []byte(d.passphrase)))

		info, err := os.Stat(configfile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		asked := false
		v, err := read(func() ([]byte, error) {
			asked = true
			return []byte(d.passphrase), nil
		})
		assert.NoError(t, err)
		assert.Equal(t, cfg, v)
		assert.Equal(t, d.passphrase != "", asked, d.passphrase)
	}

	_, err = read(nil)
	assert.EqualError(t, err, "config is sealed")
}

func TestRemove(t *testing.T) {
	chdir(t)

	require.NoError(t, Save(Config{Endpoint: "http://localhost:5000", State: "board.json"}, nil))
	require.NoError(t, os.WriteFile("board.json", []byte("{}"), 0o600))

	assert.NoError(t, Remove())
	assert.NoFileExists(t, configfile)
	assert.NoFileExists(t, "board.json")
}
