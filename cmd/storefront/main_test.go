package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_RunErrorIsLoggedAndReturned(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "storefront.log")
	configPath := filepath.Join(dir, "config.yaml")

	yaml := fmt.Sprintf(`database:
  driver: sqlite
  sqlite_path: %s
events:
  driver: none
auth:
  jwt_secret: test-secret
log:
  level: info
  encoding: json
  output_paths:
    - %s
`, filepath.Join(dir, "missing", "dir", "storefront.db"), logPath)
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o600))

	code := start([]string{"-config", configPath})
	assert.Equal(t, 1, code)

	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "Storefront stopped with error")
	assert.Contains(t, string(logged), "failed to open store")
}

func TestStart_BadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("database:\n  driver: oracle\n"), 0o600))

	assert.Equal(t, 1, start([]string{"-config", configPath}))
	assert.Equal(t, 2, start([]string{"-no-such-flag"}))
}
