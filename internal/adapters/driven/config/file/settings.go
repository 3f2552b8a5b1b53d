package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Settings is the full pipeline configuration.
type Settings struct {
	// DataDir holds the SQLite database and staged document blobs.
	// Defaults to ~/.regsync/data.
	DataDir string `toml:"data_dir"`

	// ScratchDir receives in-flight attachment downloads. Defaults to the
	// OS temp directory.
	ScratchDir string `toml:"scratch_dir"`

	// FetchAttachments gates binary staging entirely.
	FetchAttachments bool `toml:"fetch_attachments"`

	// Concurrency is the backfill batch size. 1 means fully sequential.
	Concurrency int `toml:"concurrency"`

	// ScheduleHours is the recurring import interval for `regsync schedule`.
	ScheduleHours int `toml:"schedule_hours"`

	// NRIS and Core configure the two upstream sources.
	NRIS SourceSettings `toml:"nris"`
	Core SourceSettings `toml:"core"`
}

// SourceSettings configures one upstream source. Which credential fields
// apply depends on the source's grant type.
type SourceSettings struct {
	APIURL       string `toml:"api_url"`
	TokenURL     string `toml:"token_url"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`

	// HorizonStart overrides the source's fixed horizon start (YYYY-MM-DD).
	HorizonStart string `toml:"horizon_start"`

	// WindowDays overrides the source's window width in days.
	WindowDays int `toml:"window_days"`
}

// Load reads settings from the TOML file at path. If path is empty it
// defaults to ~/.regsync/config.toml. A missing file is not an error; the
// environment overrides still apply on top of the defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".regsync", "config.toml")
	}

	settings := &Settings{
		FetchAttachments: true,
		Concurrency:      1,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	settings.applyEnv()
	return settings, nil
}

// applyEnv overlays credential values from the environment. Env always wins
// over the file so secrets never have to live on disk.
func (s *Settings) applyEnv() {
	overlay(&s.NRIS.ClientID, "REGSYNC_NRIS_CLIENT_ID")
	overlay(&s.NRIS.Username, "REGSYNC_NRIS_USERNAME")
	overlay(&s.NRIS.Password, "REGSYNC_NRIS_PASSWORD")
	overlay(&s.Core.ClientID, "REGSYNC_CORE_CLIENT_ID")
	overlay(&s.Core.ClientSecret, "REGSYNC_CORE_CLIENT_SECRET")
}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Scratch returns the scratch directory, defaulting to the OS temp dir.
func (s *Settings) Scratch() string {
	if s.ScratchDir != "" {
		return s.ScratchDir
	}
	return os.TempDir()
}
