package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, BackendMemory, cfg.TokenStore)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 5, cfg.LoginRateBurst)
}

func TestLoadFromEnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("JWT_SECRET=from-file\nSTORE_BACKEND=mongo\nACCESS_TOKEN_TTL=1m\n"), 0600))
	unsetenv(t, "JWT_SECRET", "STORE_BACKEND", "ACCESS_TOKEN_TTL")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, BackendMongo, cfg.StoreBackend)
	assert.Equal(t, time.Minute, cfg.AccessTokenTTL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Run("no secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load(missing)
		assert.ErrorContains(t, err, "JWT_SECRET")
	})
	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("STORE_BACKEND", "sqlite")
		_, err := Load(missing)
		assert.ErrorContains(t, err, "STORE_BACKEND")
	})
	t.Run("refresh shorter than access", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("REFRESH_TOKEN_TTL", "1m")
		_, err := Load(missing)
		assert.ErrorContains(t, err, "invalid token lifetimes")
	})
}

// unsetenv removes keys for the duration of the test; godotenv never
// overrides variables that are already present.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		prev, ok := os.LookupEnv(key)
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() {
			if ok {
				os.Setenv(key, prev)
			} else {
				os.Unsetenv(key)
			}
		})
	}
}
