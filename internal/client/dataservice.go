// Package client talks to the data service over HTTP: the collection
// lists, admin writes, image uploads and the archivist chat endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/keyxmakerx/worldatlas/internal/world"
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 * 1024

// TokenSource supplies the edit token for admin calls. The admin session
// guard implements it.
type TokenSource interface {
	Token() string
}

// APIError is a non-2xx answer from the data service. Message is the
// server's own "message" field when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// IsUnauthorized reports whether err is a 401 from the data service.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// DataServiceClient is an HTTP client for the data service REST API.
type DataServiceClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tokens     TokenSource
}

// NewDataServiceClient creates a client for the data service at baseURL.
func NewDataServiceClient(baseURL string, timeout time.Duration, logger *slog.Logger) *DataServiceClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataServiceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "data_service_client")),
	}
}

// WithTokens returns a copy of the client that authenticates admin calls
// with tokens from ts. The underlying http.Client is shared.
func (c *DataServiceClient) WithTokens(ts TokenSource) *DataServiceClient {
	cp := *c
	cp.tokens = ts
	return &cp
}

func (c *DataServiceClient) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// --- Public lists ---

// PublicLocations lists locations without authentication.
func (c *DataServiceClient) PublicLocations(ctx context.Context) ([]world.Location, error) {
	var out []world.Location
	err := c.do(ctx, http.MethodGet, "/api/locations", "", nil, &out)
	return out, err
}

// PublicCharacters lists the characters visible to viewers.
func (c *DataServiceClient) PublicCharacters(ctx context.Context) ([]world.Character, error) {
	var out []world.Character
	err := c.do(ctx, http.MethodGet, "/api/characters", "", nil, &out)
	return out, err
}

// PublicTimeline lists chronicle entries without authentication.
func (c *DataServiceClient) PublicTimeline(ctx context.Context) ([]world.ChronicleEntry, error) {
	var out []world.ChronicleEntry
	err := c.do(ctx, http.MethodGet, "/api/timeline", "", nil, &out)
	return out, err
}

// --- Admin lists ---

func (c *DataServiceClient) ListLocations(ctx context.Context) ([]world.Location, error) {
	var out []world.Location
	err := c.do(ctx, http.MethodGet, "/api/admin/locations", c.token(), nil, &out)
	return out, err
}

func (c *DataServiceClient) ListCharacters(ctx context.Context) ([]world.Character, error) {
	var out []world.Character
	err := c.do(ctx, http.MethodGet, "/api/admin/characters", c.token(), nil, &out)
	return out, err
}

func (c *DataServiceClient) ListTimeline(ctx context.Context) ([]world.ChronicleEntry, error) {
	var out []world.ChronicleEntry
	err := c.do(ctx, http.MethodGet, "/api/admin/timeline", c.token(), nil, &out)
	return out, err
}

// Probe checks token against the data service with a harmless admin read.
func (c *DataServiceClient) Probe(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodGet, "/api/admin/locations", token, nil, nil)
}

// --- Admin writes ---

// create POSTs row and returns the id of the created record. A response
// without an id yields "" and no error.
func (c *DataServiceClient) create(ctx context.Context, collection string, row any) (string, error) {
	var created struct {
		ID json.RawMessage `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/"+collection, c.token(), row, &created); err != nil {
		return "", err
	}
	return decodeID(created.ID), nil
}

func (c *DataServiceClient) update(ctx context.Context, collection, id string, row any) error {
	return c.do(ctx, http.MethodPut, "/api/admin/"+collection+"/"+url.PathEscape(id), c.token(), row, nil)
}

func (c *DataServiceClient) delete(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/"+collection+"/"+url.PathEscape(id), c.token(), nil, nil)
}

// UploadImage sends a base64 image and returns its public URL.
func (c *DataServiceClient) UploadImage(ctx context.Context, req world.ImageUpload) (string, error) {
	var res world.ImageUploadResult
	if err := c.do(ctx, http.MethodPost, "/api/admin/images", c.token(), req, &res); err != nil {
		return "", err
	}
	if res.URL == "" {
		return "", errors.New("upload response did not include a url")
	}
	return res.URL, nil
}

// decodeID accepts a JSON string or number.
func decodeID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// do performs one JSON request. body and out may be nil.
func (c *DataServiceClient) do(ctx context.Context, method, path, token string, body, out any) error {
	log := c.logger.With(slog.String("method", method), slog.String("path", path))

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("data service request failed", slog.Any("error", err))
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
		log.Warn("data service returned error",
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response of %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage pulls "message" (or "error") out of an error body, falling
// back to the trimmed body text.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, "<") {
		// An HTML error page from a proxy says nothing useful.
		return ""
	}
	if runes := []rune(text); len(runes) > 200 {
		text = string(runes[:200])
	}
	return text
}
