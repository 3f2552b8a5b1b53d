package nris

import "time"

// Default import horizon and window sizing. The window width is bounded to
// keep the upstream export endpoint from timing out on dense ranges.
const (
	// DefaultHorizonStart is the fixed start of the import horizon.
	DefaultHorizonStart = "2017-01-01"

	// DefaultWindowDays is the width of one import window.
	DefaultWindowDays = 14
)

// Config holds the NRIS source configuration.
type Config struct {
	// APIURL is the base URL of the EPD export API.
	APIURL string

	// TokenURL is the OAuth token endpoint.
	TokenURL string

	// ClientID is the OAuth client identifier.
	ClientID string

	// Username and Password are the resource-owner credentials exchanged
	// for a bearer token. Both must be set; missing credentials abort the
	// run as a configuration error.
	Username string
	Password string

	// HorizonStart overrides the fixed horizon start (YYYY-MM-DD).
	HorizonStart string

	// WindowDays overrides the window width in days.
	WindowDays int
}

// horizonStart parses the configured horizon start, falling back to the
// default.
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

// windowWidth returns the configured window width.
func (c Config) windowWidth() time.Duration {
	days := c.WindowDays
	if days <= 0 {
		days = DefaultWindowDays
	}
	return time.Duration(days) * 24 * time.Hour
}
