package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gopkg.in/validator.v2"

	"github.com/lystzs/family-asset-manager/pkg/httputil"
	"github.com/lystzs/family-asset-manager/pkg/logger"
	"github.com/lystzs/family-asset-manager/pkg/redis"
)

// Client handles communication with the family asset backend (/v1)
// ⭐ SSOT: 백엔드 API 호출은 이 클라이언트에서만
type Client struct {
	baseURL    string
	httpClient *httputil.Client
	logger     *logger.Logger

	// 종목 마스터 캐시 (optional)
	stockCache *redis.Cache
	stockTTL   time.Duration
}

// NewClient creates a backend client. baseURL includes the /v1 prefix.
func NewClient(baseURL string, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     log,
	}
}

// WithStockCache enables Redis caching of stock master reads
func (c *Client) WithStockCache(cache *redis.Cache, ttl time.Duration) *Client {
	c.stockCache = cache
	c.stockTTL = ttl
	return c
}

// BaseURL returns the configured API base
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx backend response. Detail carries the backend's
// "detail" message verbatim for display.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsNotFound reports a 404 from the backend
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// DetailOf returns the backend detail message of err when present,
// otherwise fallback, otherwise err's own text.
func DetailOf(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}

// ErrInvalidRequest wraps client-side validation failures; nothing was sent
var ErrInvalidRequest = errors.New("invalid request")

// validate runs struct tag validation on request bodies
func validate(v interface{}) error {
	if err := validator.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// get issues GET path and decodes the JSON response into out
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	resp, err := c.httpClient.Get(ctx, c.url(path, query))
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return c.decode(resp, http.MethodGet, path, out)
}

// post issues POST path with a JSON body (nil → empty body)
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	resp, err := c.httpClient.PostJSON(ctx, c.url(path, nil), body)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	return c.decode(resp, http.MethodPost, path, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	resp, err := c.httpClient.PutJSON(ctx, c.url(path, nil), body)
	if err != nil {
		return fmt.Errorf("PUT %s: %w", path, err)
	}
	return c.decode(resp, http.MethodPut, path, out)
}

func (c *Client) delete(ctx context.Context, path string, out interface{}) error {
	resp, err := c.httpClient.Delete(ctx, c.url(path, nil))
	if err != nil {
		return fmt.Errorf("DELETE %s: %w", path, err)
	}
	return c.decode(resp, http.MethodDelete, path, out)
}

func (c *Client) decode(resp *http.Response, method, path string, out interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Detail:     parseDetail(body),
		}
		c.logger.WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
			"detail": apiErr.Detail,
		}).Warn("Backend returned error")
		return apiErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// parseDetail extracts "detail" from an error body. FastAPI sends either a
// string or a list of {"msg": ...} validation entries.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(envelope.Detail)
}
