package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/arrayschema/pkg/adapters/file"
	"github.com/stretchr/testify/require"
)

// SetupFileStore creates a temporary directory and a file store rooted in it.
// It returns the absolute path to the temp dir and the store.
func SetupFileStore(t *testing.T) (string, *file.Store) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	return absPath, file.New(absPath)
}

// WriteFile writes content to dir/name and returns the path.
// It fails the test immediately on error.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", name)
	return path
}
