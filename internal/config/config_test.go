package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/config"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  ws_url: wss://quiz.example.com/ws
arena:
  cache_ttl: 90s
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "wss://quiz.example.com/ws", cfg.Server.WSURL)
	// Unset keys keep their defaults.
	require.Equal(t, "http://localhost:8080", cfg.Server.APIURL)
	require.Equal(t, "90s", cfg.Arena.CacheTTL)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
	require.Equal(t, config.Default(), cfg)
}

func TestTTLDuration(t *testing.T) {
	require.Equal(t, 5*time.Minute, config.TTLDuration("", 5*time.Minute))
	require.Equal(t, 90*time.Second, config.TTLDuration("90s", 5*time.Minute))
	require.Equal(t, 5*time.Minute, config.TTLDuration("garbage", 5*time.Minute))
}
