package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir = "/var/lib/regsync"
fetch_attachments = false
concurrency = 4
schedule_hours = 6

[nris]
api_url = "https://nris.example/api"
token_url = "https://nris.example/token"
client_id = "regsync"
username = "svc-user"
window_days = 7

[core]
api_url = "https://core.example/api"
client_id = "regsync-core"
`), 0600))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/regsync", settings.DataDir)
	assert.False(t, settings.FetchAttachments)
	assert.Equal(t, 4, settings.Concurrency)
	assert.Equal(t, 6, settings.ScheduleHours)
	assert.Equal(t, "https://nris.example/api", settings.NRIS.APIURL)
	assert.Equal(t, "svc-user", settings.NRIS.Username)
	assert.Equal(t, 7, settings.NRIS.WindowDays)
	assert.Equal(t, "regsync-core", settings.Core.ClientID)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.True(t, settings.FetchAttachments)
	assert.Equal(t, 1, settings.Concurrency)
	assert.Empty(t, settings.DataDir)
}

func TestLoadEnvOverridesCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[nris]
username = "from-file"
password = "file-secret"
`), 0600))

	t.Setenv("REGSYNC_NRIS_PASSWORD", "env-secret")
	t.Setenv("REGSYNC_CORE_CLIENT_SECRET", "core-env-secret")

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", settings.NRIS.Username, "file value kept when env is unset")
	assert.Equal(t, "env-secret", settings.NRIS.Password, "env wins over the file")
	assert.Equal(t, "core-env-secret", settings.Core.ClientSecret)
}

func TestScratchDefaultsToTempDir(t *testing.T) {
	settings := &Settings{}
	assert.Equal(t, os.TempDir(), settings.Scratch())

	settings.ScratchDir = "/scratch"
	assert.Equal(t, "/scratch", settings.Scratch())
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`data_dir = [unclosed`), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}
