package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBody = 4 << 10

// StatusError carries a non-2xx answer from a model endpoint.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Code, e.Body)
}

// Endpoint is a JSON-over-HTTP model API.
type Endpoint struct {
	Provider string
	BaseURL  string
	Headers  map[string]string
	Client   *http.Client
}

func (e Endpoint) url(path string) string {
	return strings.TrimRight(e.BaseURL, "/") + path
}

func (e Endpoint) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", e.Provider, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.url(path), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", e.Provider, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range e.Headers {
		req.Header.Set(k, v)
	}

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", e.Provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Provider: e.Provider, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", e.Provider, err)
	}
	return nil
}

// PostJSON sends in as JSON and decodes the answer into out.
func (e Endpoint) PostJSON(ctx context.Context, path string, in, out interface{}) error {
	return e.do(ctx, http.MethodPost, path, in, out)
}

// Get issues a GET and decodes into out when out is non-nil.
func (e Endpoint) Get(ctx context.Context, path string, out interface{}) error {
	return e.do(ctx, http.MethodGet, path, nil, out)
}
