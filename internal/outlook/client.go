package outlook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

var queryEscaper = strings.NewReplacer(" ", "%20", `"`, "%22")

// RequestError describes a failed REST call. StatusCode is zero when the
// request never produced a response (DNS, TLS, connection reset, ...).
// It marshals to JSON so callers can hand the whole object to an error
// display.
type RequestError struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status"`
	StatusText string `json:"statusText"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
	Body       string `json:"responseText,omitempty"`
	Err        error  `json:"-"`
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf(
			"outlook API error (%d %s) on GET %s: %s",
			e.StatusCode, e.Code, e.URL, e.Message,
		)
	}
	return fmt.Sprintf("unexpected status %d on GET %s", e.StatusCode, e.URL)
}

func (e *RequestError) Unwrap() error { return e.Err }

// MarshalJSON includes the underlying cause as "error" when present.
func (e *RequestError) MarshalJSON() ([]byte, error) {
	type plain RequestError
	out := struct {
		*plain
		Cause string `json:"error,omitempty"`
	}{plain: (*plain)(e)}
	if e.Err != nil {
		out.Cause = e.Err.Error()
	}
	return json.Marshal(out)
}

// IsRequestError reports whether err (or any error in its chain) is a
// RequestError.
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}

// Client is a thin HTTP client for the Outlook REST API. It performs
// single GETs with caller-supplied headers; it never retries.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Outlook REST client. A zero timeout leaves the
// http.Client without a deadline; requests are then bounded only by ctx.
func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// NewClientWithHTTP wraps an existing http.Client, e.g. one from httptest.
func NewClientWithHTTP(hc *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{httpClient: hc, logger: logger}
}

// GetJSON issues a GET to url with the given headers and unmarshals the
// JSON body into result. Spaces and double quotes in the query are
// percent-encoded on the wire; the url is otherwise sent as given.
func (c *Client) GetJSON(
	ctx context.Context,
	url string,
	headers map[string]string,
	result interface{},
) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &RequestError{URL: url, StatusText: "error", Err: err}
	}
	// OData queries carry literal spaces and quotes.
	req.URL.RawQuery = queryEscaper.Replace(req.URL.RawQuery)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{URL: url, StatusText: "error", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &RequestError{
			URL:        url,
			StatusCode: resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Err:        fmt.Errorf("reading response body: %w", err),
		}
	}

	c.logger.Debug("outlook response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := &RequestError{
			URL:        url,
			StatusCode: resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
		var odataErr ErrorResponse
		if json.Unmarshal(body, &odataErr) == nil && odataErr.Error.Code != "" {
			reqErr.Code = odataErr.Error.Code
			reqErr.Message = odataErr.Error.Message
		}
		return reqErr
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &RequestError{
			URL:        url,
			StatusCode: resp.StatusCode,
			StatusText: "parsererror",
			Body:       string(body),
			Err:        fmt.Errorf("unmarshaling response: %w", err),
		}
	}

	return nil
}
