package nris

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
	// FetchTimeout bounds one windowed list request. Longer than the token
	// timeout: dense windows are slow upstream.
	FetchTimeout = 3 * time.Minute

	// DownloadTimeout bounds one attachment download.
	DownloadTimeout = 5 * time.Minute

	// ProactiveRate throttles outbound requests (req/sec). NRIS has no
	// published quota; this keeps the batch job polite.
	ProactiveRate = 2.0

	dateLayout = "2006-01-02"
)

// APIClient is a thin HTTP client for the NRIS EPD export API.
type APIClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an NRIS API client.
func NewClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: FetchTimeout},
		limiter: rate.NewLimiter(rate.Limit(ProactiveRate), 1),
	}
}

// ListInspections fetches the assessments for one import window.
// An empty result is not an error.
func (c *APIClient) ListInspections(ctx context.Context, token string, window domain.ImportWindow) ([]Inspection, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("inspectionStartDate", window.Start.Format(dateLayout))
	q.Set("inspectionEndDate", window.End.Format(dateLayout))
	reqURL := c.baseURL + "/v1/epdInspections?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body), URL: reqURL}
	}

	var inspections []Inspection
	if err := json.NewDecoder(resp.Body).Decode(&inspections); err != nil {
		return nil, fmt.Errorf("decode inspections: %w", err)
	}
	return inspections, nil
}

// GetInspection fetches a single assessment by its upstream ID.
func (c *APIClient) GetInspection(ctx context.Context, token, assessmentID string) (*Inspection, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + "/v1/epdInspections/" + assessmentID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get inspection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body), URL: reqURL}
	}

	var insp Inspection
	if err := json.NewDecoder(resp.Body).Decode(&insp); err != nil {
		return nil, fmt.Errorf("decode inspection: %w", err)
	}
	return &insp, nil
}

// DownloadAttachment streams one attachment. The caller owns the returned
// reader. The file name comes from the content disposition, falling back to
// fallbackName when the header is absent or unparseable.
func (c *APIClient) DownloadAttachment(ctx context.Context, token string, desc domain.AttachmentDescriptor) (io.ReadCloser, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/epdInspections/%s/attachments/%s", c.baseURL, desc.RecordID, desc.AttachmentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: DownloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download attachment: %w", err)
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

// readErrorBody extracts a short error message from a non-200 response.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(data) == 0 {
		return "no response body"
	}
	return string(data)
}
