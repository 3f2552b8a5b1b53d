package core

import "time"

// Default import horizon and window sizing for the CORE export.
const (
	// DefaultHorizonStart is the fixed start of the import horizon.
	DefaultHorizonStart = "2018-01-01"

	// DefaultWindowDays is the width of one import window.
	DefaultWindowDays = 21
)

// Config holds the CORE source configuration.
type Config struct {
	// APIURL is the base URL of the CORE mines API.
	APIURL string

	// TokenURL is the OAuth token endpoint.
	TokenURL string

	// ClientID and ClientSecret are exchanged via the client-credentials
	// grant. Both must be set; missing credentials abort the run as a
	// configuration error.
	ClientID     string
	ClientSecret string

	// HorizonStart overrides the fixed horizon start (YYYY-MM-DD).
	HorizonStart string

	// WindowDays overrides the window width in days.
	WindowDays int
}

func (c Config) horizonStart() time.Time {
	s := c.HorizonStart
	if s == "" {
		s = DefaultHorizonStart
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		t, _ = time.Parse("2006-01-02", DefaultHorizonStart)
	}
	return t
}

func (c Config) windowWidth() time.Duration {
	days := c.WindowDays
	if days <= 0 {
		days = DefaultWindowDays
	}
	return time.Duration(days) * 24 * time.Hour
}
