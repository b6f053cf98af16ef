package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	t.Run("creates missing directories", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "state.json")

		require.NoError(t, WriteFileAtomic(path, []byte(`{"a":1}`), 0o600))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, `{"a":1}`, string(data))
	})

	t.Run("replaces existing content and leaves no temp files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "state.json")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

		require.NoError(t, WriteFileAtomic(path, []byte("new"), 0o600))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "new", string(data))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})
}
