package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UpdateGoldenEnv names the environment variable that rewrites golden files.
const UpdateGoldenEnv = "STICKYLIST_UPDATE_GOLDEN"

// Golden compares output against testdata/<name>.golden.
// If STICKYLIST_UPDATE_GOLDEN is set, the golden file is rewritten instead.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	goldenPath := filepath.Join("testdata", name+".golden")

	if os.Getenv(UpdateGoldenEnv) != "" {
		require.NoError(t, os.MkdirAll("testdata", 0755))
		require.NoError(t, os.WriteFile(goldenPath, got, 0644))
		return
	}

	want, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "read golden file %s; got:\n%s", goldenPath, got)
	assert.Equal(t, string(want), string(got), "output mismatch for %s", name)
}

// GoldenString is like Golden but takes a string.
func GoldenString(t *testing.T, name string, got string) {
	t.Helper()
	Golden(t, name, []byte(got))
}
