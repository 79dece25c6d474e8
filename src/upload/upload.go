// Package upload publishes HTML reports to the document host.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/teambots/teambots/src/webclient"
)

// ErrNotConfigured is returned when the upload URL or key is missing.
var ErrNotConfigured = errors.New("upload: REPORT_UPLOAD_URL/REPORT_UPLOAD_KEY not set")

// Client posts raw HTML and returns the public link.
type Client struct {
	url  string
	key  string
	http *http.Client
}

func New(url, key string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = webclient.NewDefault(0)
	}
	return &Client{url: strings.TrimSpace(url), key: strings.TrimSpace(key), http: httpClient}
}

// Configured reports whether uploads can be attempted.
func (c *Client) Configured() bool {
	return c != nil && c.url != "" && c.key != ""
}

// HTML uploads the page once. The host answers {"url": "..."}.
func (c *Client) HTML(ctx context.Context, page string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(page))
	if err != nil {
		return "", fmt.Errorf("upload: request: %w", err)
	}
	req.Header.Set("X-Auth-Key", c.key)
	req.Header.Set("Content-Type", "text/html; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("upload: decode: %w", err)
	}
	if out.URL == "" {
		return "", errors.New("upload: empty url in response")
	}
	return out.URL, nil
}
