package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultNotionAPIURL, cfg.Notion.APIURL)
	assert.Equal(t, DefaultNotionVersion, cfg.Notion.Version)
	assert.Equal(t, "Task", cfg.Notion.Properties.Title)
	assert.Equal(t, "Done", cfg.Notion.Properties.DoneValue)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
listen: "127.0.0.1:9090"
db_path: "/tmp/hooks.db"
log_level: DEBUG
webhook:
  max_body_size: 2MB
notion:
  database_id: abc123
  properties:
    title: "Nazwa zadania"
    done_value: "Zrobione"
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Listen)
	assert.Equal(t, "/tmp/hooks.db", cfg.DBPath)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "abc123", cfg.Notion.DatabaseID)
	assert.Equal(t, "Nazwa zadania", cfg.Notion.Properties.Title)
	assert.Equal(t, "Zrobione", cfg.Notion.Properties.DoneValue)
	// Unset properties still get defaults.
	assert.Equal(t, "Status", cfg.Notion.Properties.Status)

	n, err := cfg.Webhook.MaxBodyBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(2*1024*1024), n)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_WEBHOOK_SECRET", "hunter2")
	t.Setenv("NOTION_API_TOKEN", "secret_tok")
	t.Setenv("NOTION_DATABASE_ID", "db-1")
	t.Setenv("COMMITBOARD_LISTEN", ":7000")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "hunter2", cfg.Webhook.Secret)
	assert.Equal(t, "secret_tok", cfg.Notion.Token)
	assert.Equal(t, "db-1", cfg.Notion.DatabaseID)
	assert.Equal(t, ":7000", cfg.Listen)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestMaxBodyBytes(t *testing.T) {
	tests := []struct {
		name    string
		size    string
		want    int64
		wantErr bool
	}{
		{name: "empty uses default", size: "", want: DefaultMaxBodySize},
		{name: "plain bytes", size: "2048576", want: 2048576},
		{name: "kilobytes", size: "512KB", want: 512 * 1024},
		{name: "megabytes", size: "1MB", want: 1024 * 1024},
		{name: "gigabytes", size: "1GB", want: 1024 * 1024 * 1024},
		{name: "lowercase suffix", size: "1mb", want: 1024 * 1024},
		{name: "not a number", size: "lots", wantErr: true},
		{name: "negative", size: "-1", wantErr: true},
		{name: "zero", size: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WebhookConfig{MaxBodySize: tt.size}.MaxBodyBytes()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
