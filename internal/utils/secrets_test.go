package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSecret(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("  s3cret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), []byte("\n"), 0o600))

	t.Run("trims whitespace", func(t *testing.T) {
		secret, err := ReadSecret(dir, "db_password")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", secret)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ReadSecret(dir, "empty")
		assert.ErrorContains(t, err, "is empty")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadSecret(dir, "nope")
		assert.Error(t, err)
	})
}
