package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDint64Unique(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := UUIDint64()
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestSha256HashWithSalt(t *testing.T) {
	a := Sha256HashWithSalt("payload", "salt")
	b := Sha256HashWithSalt("payload", "salt")
	assert.Equal(t, a, b, "deterministic for identical input")
	assert.NotEqual(t, a, Sha256HashWithSalt("payload", "other"))
	assert.Equal(t, Sha256Hash("payloadsalt"), a)
}

func TestGetSecretSaltEnvOverride(t *testing.T) {
	t.Setenv("STOREFRONT_SECRET", "from-env")
	assert.Equal(t, "from-env", GetSecretSalt())
}

func TestFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	assert.False(t, FileExists(path))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
	assert.True(t, FileExists(path))
}
