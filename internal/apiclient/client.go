package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 4 << 20

// Credentials supplies the bearer token and is told when the backend rejects it
type Credentials interface {
	Token() (string, bool)
	Expire() error
}

// Client is the authenticated HTTP transport to the clinic REST backend
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a per-request timeout; zero means none
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, creds Credentials, logger *zap.Logger, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	if creds == nil {
		return nil, fmt.Errorf("credentials are required")
	}

	c := &Client{
		baseURL:    baseURL,
		creds:      creds,
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues an authenticated GET and returns the JSON body
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, true)
}

// Post issues an authenticated POST with a JSON body
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, true)
}

// Patch issues an authenticated PATCH with a JSON body
func (c *Client) Patch(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPatch, path, nil, body, true)
}

// PostPublic issues a POST without a bearer token (login)
func (c *Client) PostPublic(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, false)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, authenticated bool) ([]byte, error) {
	var token string
	if authenticated {
		t, ok := c.creds.Token()
		if !ok || t == "" {
			c.logger.Warn("request attempted without a session token",
				zap.String("method", method),
				zap.String("path", path),
			)
			return nil, ErrNoToken
		}
		token = t
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) != 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
		)
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if len(bytes.TrimSpace(data)) > 0 && !gjson.ValidBytes(data) {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    "Server returned an invalid response.",
				Body:       data,
			}
		}
		c.logger.Debug("request completed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(startTime)),
			zap.String("request_id", requestID),
		)
		return data, nil
	}

	apiErr := c.classify(resp, data, authenticated)

	c.logger.Warn("request completed with error status",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("message", apiErr.Error()),
		zap.Duration("duration", time.Since(startTime)),
		zap.String("request_id", requestID),
	)
	return nil, apiErr
}

// classify maps a non-2xx response onto the error taxonomy. The content type is checked
// before parsing so a malformed body never hides the real status.
func (c *Client) classify(resp *http.Response, data []byte, authenticated bool) error {
	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json") && gjson.ValidBytes(data)

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		JSON:       isJSON,
		Body:       data,
	}

	if isJSON {
		parsed := gjson.ParseBytes(data)
		apiErr.Message = strings.TrimSpace(parsed.Get("message").String())

		if resp.StatusCode == http.StatusConflict && parsed.Get("conflict").Bool() {
			return &ConflictError{
				Message:        apiErr.Message,
				SuggestedSlots: parseSlots(parsed.Get("suggestedSlots")),
			}
		}
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("Request failed with status %d.", resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if !authenticated {
			// a rejected login is not an expired session
			break
		}
		apiErr.Sentinel = ErrSessionExpired
		if err := c.creds.Expire(); err != nil {
			c.logger.Error("failed to clear expired session", zap.Error(err))
		}
	case http.StatusForbidden:
		apiErr.Sentinel = ErrForbidden
	}

	return apiErr
}

func parseSlots(r gjson.Result) []model.SuggestedSlot {
	if !r.IsArray() {
		return nil
	}
	items := r.Array()
	slots := make([]model.SuggestedSlot, 0, len(items))
	for _, item := range items {
		slots = append(slots, model.SuggestedSlot{
			Date:                 item.Get("date").String(),
			StartTime:            item.Get("startTime").String(),
			EndTime:              item.Get("endTime").String(),
			PredictedDurationMin: int(item.Get("predictedDurationMin").Int()),
		})
	}
	return slots
}
