package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/regsync/internal/core/domain"
)

const (
	// FetchTimeout bounds one windowed list request.
	FetchTimeout = 2 * time.Minute

	// DownloadTimeout bounds one document download.
	DownloadTimeout = 5 * time.Minute

	// ProactiveRate throttles outbound requests (req/sec).
	ProactiveRate = 3.0

	dateLayout = "2006-01-02"
)

// APIError represents a CORE API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("core: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
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

// Client is a thin HTTP client for the CORE mines API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a CORE API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: FetchTimeout},
		limiter: rate.NewLimiter(rate.Limit(ProactiveRate), 1),
	}
}

// ListPermits fetches the permits amended inside one import window.
func (c *Client) ListPermits(ctx context.Context, token string, window domain.ImportWindow) ([]Permit, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("issue_date_after", window.Start.Format(dateLayout))
	q.Set("issue_date_before", window.End.Format(dateLayout))
	reqURL := c.baseURL + "/api/permits?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list permits: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body), URL: reqURL}
	}

	// The export wraps the page in a records envelope.
	var payload struct {
		Records []Permit `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode permits: %w", err)
	}
	return payload.Records, nil
}

// GetPermit fetches a single permit by GUID.
func (c *Client) GetPermit(ctx context.Context, token, permitGUID string) (*Permit, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + "/api/permits/" + permitGUID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get permit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body), URL: reqURL}
	}

	var permit Permit
	if err := json.NewDecoder(resp.Body).Decode(&permit); err != nil {
		return nil, fmt.Errorf("decode permit: %w", err)
	}
	return &permit, nil
}

// GetPermitByAmendment fetches the permit owning the given amendment GUID.
func (c *Client) GetPermitByAmendment(ctx context.Context, token, amendmentGUID string) (*Permit, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("amendment_guid", amendmentGUID)
	reqURL := c.baseURL + "/api/permits?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get permit by amendment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body), URL: reqURL}
	}

	var payload struct {
		Records []Permit `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode permits: %w", err)
	}
	if len(payload.Records) == 0 {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "no permit for amendment", URL: reqURL}
	}
	return &payload.Records[0], nil
}

// DownloadDocument streams one amendment document. The caller owns the
// returned reader.
func (c *Client) DownloadDocument(ctx context.Context, token string, desc domain.AttachmentDescriptor) (io.ReadCloser, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/documents/%s", c.baseURL, desc.AttachmentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: DownloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download document: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, "", &APIError{StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body), URL: reqURL}
	}

	name := desc.FileName
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			name = params["filename"]
		}
	}

	return resp.Body, name, nil
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(data) == 0 {
		return "no response body"
	}
	return string(data)
}
