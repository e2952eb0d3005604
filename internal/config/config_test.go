package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "yt-dlp", cfg.YTDLP.BinaryPath)
	assert.Equal(t, []string{"android", "web"}, cfg.YTDLP.PlayerClients)
	assert.Equal(t, "192K", cfg.YTDLP.AudioQuality)
	assert.Equal(t, 5, cfg.Search.DefaultResults)
	assert.Equal(t, 5, cfg.Search.ScrapeLimit)
	assert.Equal(t, 3*time.Second, cfg.Search.GetThumbnailTimeout())
	assert.Equal(t, 300*time.Second, cfg.YTDLP.GetDownloadTimeout())
	assert.Equal(t, "YOUTUBE_COOKIES_PATH", cfg.Credentials.EnvVar)
	assert.Equal(t, []string{"chrome", "firefox", "edge", "safari"}, cfg.Credentials.Browsers)
	assert.True(t, cfg.Credentials.BrowserProfileRequired())
	assert.Equal(t, "youtube_dl_", cfg.Scratch.Prefix)
	assert.Contains(t, cfg.YTDLP.Headers["User-Agent"], "Chrome/120")
	assert.Equal(t, cfg.YTDLP.Headers["User-Agent"], cfg.Search.UserAgent)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("SERVER_PORT", "8123")
	t.Setenv("YTDLP_BINARY", "/opt/yt-dlp")
	t.Setenv("SCRATCH_ROOT", "/var/scratch")

	cfg, err := LoadConfig(writeConfig(t, "redis:\n  addr: localhost:6379\n"))
	require.NoError(t, err)

	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "/opt/yt-dlp", cfg.YTDLP.BinaryPath)
	assert.Equal(t, "/var/scratch", cfg.Scratch.Root)
}

func TestLoadConfigExplicitBrowserProfileFlag(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "credentials:\n  require_browser_profile: false\n"))
	require.NoError(t, err)
	assert.False(t, cfg.Credentials.BrowserProfileRequired())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "server: [unterminated\n"))
	assert.Error(t, err)
}
