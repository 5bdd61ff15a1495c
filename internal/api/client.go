// Package api implements the Plannivo REST API client shared by the
// populate and rollback workflows: bearer-token auth, a fixed per-call
// timeout, and a dry-run mode that fabricates responses without network IO.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	apiPrefix      = "/api"
	requestTimeout = 30 * time.Second
)

// Config holds connection settings for the Plannivo API.
type Config struct {
	BaseURL string
	Token   string
	DryRun  bool
}

// Client communicates with the Plannivo REST API. It holds no state across
// calls beyond the auth header and the dry-run flag.
type Client struct {
	baseURL string
	token   string
	dryRun  bool
	http    *http.Client
}

// New creates a client. In dry-run mode no network calls are ever made.
func New(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		dryRun:  cfg.DryRun,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// DryRun reports whether the client fabricates responses instead of calling
// the API.
func (c *Client) DryRun() bool {
	return c.dryRun
}

// Payload is a decoded JSON object response. Resource ids may arrive as
// strings or numbers depending on the backend, so payloads stay untyped and
// ids go through Field.
type Payload map[string]any

// Field returns a payload value rendered as a string. Numeric values are
// formatted without a decimal point so they survive as opaque ids.
func (p Payload) Field(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Number returns a payload value as a float64, tolerating string encodings.
func (p Payload) Number(key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// Request executes one API call and decodes the object response. An empty
// success body decodes to an empty payload. In dry-run mode it returns a
// synthetic payload carrying a placeholder id.
func (c *Client) Request(ctx context.Context, method, path string, body any) (Payload, error) {
	if c.dryRun {
		slog.Info("dry run", "method", method, "path", apiPrefix+path)
		return Payload{"id": dryRunID()}, nil
	}

	raw, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return Payload{}, nil
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return p, nil
}

// RequestList executes one API call against a collection endpoint. In
// dry-run mode it returns an empty list.
func (c *Client) RequestList(ctx context.Context, method, path string) ([]Payload, error) {
	if c.dryRun {
		slog.Info("dry run", "method", method, "path", apiPrefix+path)
		return nil, nil
	}

	raw, err := c.do(ctx, method, path, nil)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var list []Payload
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return list, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	u := c.baseURL + apiPrefix + path

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if !success(method, resp.StatusCode) {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, raw),
		}
	}

	return raw, nil
}

// success declares the expected 2xx set: 200/201 everywhere, plus 204 for
// deletes.
func success(method string, code int) bool {
	if code == http.StatusOK || code == http.StatusCreated {
		return true
	}
	return method == http.MethodDelete && code == http.StatusNoContent
}

// errorMessage extracts the API's "error" field, falling back to the raw
// body, then to the bare status.
func errorMessage(code int, raw []byte) string {
	if len(raw) > 0 {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(raw, &e); err == nil && e.Error != "" {
			return e.Error
		}
		return strings.TrimSpace(string(raw))
	}
	return "HTTP " + strconv.Itoa(code)
}

func dryRunID() string {
	return "dry-run-" + uuid.NewString()[:8]
}

// Error represents a non-2xx API response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("plannivo: %s (status %d)", e.Message, e.StatusCode)
}
