package nris

import (
	"fmt"
	"net/http"

	"github.com/custodia-labs/regsync/internal/core/domain"
)

// APIError represents an NRIS API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nris: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Transient reports whether retrying can help: upstream 5xx and 429
// responses. Client errors are final.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Unwrap surfaces the rate-limit sentinel for 429 responses.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	return nil
}
