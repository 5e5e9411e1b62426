package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "herald.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfig = `
speech:
  base_url: http://localhost:5500
catalog:
  providers:
    - type: invidious
      settings:
        base_url: https://invidious.example.com
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8090", cfg.Server.Addr)
	assert.Equal(t, "stdout", cfg.Log.Output)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 2000, cfg.Playback.RetryDelayMs)
	assert.Equal(t, 2*time.Second, cfg.Playback.RetryDelay())
	assert.Equal(t, "Up next: %s", cfg.Playback.AnnouncementTemplate)
	assert.Equal(t, 10, cfg.Playback.SearchLimit)
	assert.Equal(t, "en", cfg.Speech.Voice)
}

func TestLoad_ExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  addr: ":9999"
log:
  level: debug
playback:
  retry_delay_ms: 500
  announcement_template: "Coming up, %s"
speech:
  base_url: http://tts:5500
  voice: en-gb
catalog:
  providers:
    - type: invidious
      settings:
        base_url: https://invidious.example.com
    - type: spotify
      settings:
        client_id: id
        client_secret: secret
        refresh_token: token
`))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Playback.RetryDelay())
	assert.Equal(t, "Coming up, %s", cfg.Playback.AnnouncementTemplate)
	assert.Len(t, cfg.Catalog.Providers, 2)
	assert.Equal(t, "spotify", cfg.Catalog.Providers[1].Type)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "no providers",
			content: `
speech:
  base_url: http://localhost:5500
`,
		},
		{
			name: "provider without type",
			content: `
speech:
  base_url: http://localhost:5500
catalog:
  providers:
    - settings: {}
`,
		},
		{
			name: "missing speech endpoint",
			content: `
catalog:
  providers:
    - type: invidious
`,
		},
		{
			name: "retry delay out of range",
			content: `
playback:
  retry_delay_ms: 99999
speech:
  base_url: http://localhost:5500
catalog:
  providers:
    - type: invidious
`,
		},
		{
			name:    "malformed yaml",
			content: "catalog: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HERALD_TTS_URL", "http://tts-override:5500")
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")

	cfg, err := Load(writeConfig(t, `
speech:
  base_url: http://localhost:5500
catalog:
  providers:
    - type: spotify
      settings:
        client_id: file-id
`))
	require.NoError(t, err)

	assert.Equal(t, "http://tts-override:5500", cfg.Speech.BaseURL)
	assert.Equal(t, "env-id", cfg.Catalog.Providers[0].Settings["client_id"])
}
