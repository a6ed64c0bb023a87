package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "corkboard.yml")
	err := os.WriteFile(filename, []byte(`
address: ":8080"
secret_key: "shhh"
session:
  token_ttl: 1h
mdns:
  enabled: true
`), 0o600)
	require.NoError(t, err)

	t.Setenv("CORKBOARD_SESSION__TOKEN_TTL", "2h")
	t.Setenv("CORKBOARD_DATABASE_PATH", "/var/lib/corkboard")

	konf, err := load(filename)
	require.NoError(t, err)

	assert.Equal(t, ":8080", konf.String("address"))
	assert.Equal(t, "storm", konf.String("database_driver"))
	assert.Equal(t, "/var/lib/corkboard", konf.String("database_path"))
	assert.Equal(t, 2*time.Hour, konf.MustDuration("session.token_ttl"))
	assert.True(t, konf.Bool("mdns.enabled"))

	assert.Equal(t, "/var/lib/corkboard/corkboard.db", dbnameWithPath(konf.String("database_path")))
	assert.Equal(t, "corkboard.db", dbnameWithPath(""))
}

func TestKDF(t *testing.T) {
	k1 := kdf(32, []byte("secret"))
	assert.Len(t, k1, 32)
	assert.Equal(t, k1, kdf(32, []byte("secret")))
	assert.NotEqual(t, k1, kdf(32, []byte("secret2")))
}

func TestProject(t *testing.T) {
	type row struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		X    int    `json:"x"`
	}
	records := &[]*row{{ID: "1", Type: "note", X: 3}}

	assert.Equal(t, records, project(records, nil))
	assert.Equal(t, []map[string]any{{"id": "1", "x": float64(3)}}, project(records, []string{"id", "x"}))
}
