// Package content turns remote book files into Documents: plain prose with
// markup, encoding quirks and Project Gutenberg license text removed.
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// ErrTooLarge is returned when a remote book exceeds the configured size limit.
var ErrTooLarge = errors.New("content exceeds size limit")

// Extract decodes body according to contentType and reduces it to a Document.
func Extract(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("decode charset: %w", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode charset: %w", err)
	}

	text := Normalize(string(decoded))
	if IsHTML(contentType, decoded) {
		text, err = StripHTML(strings.NewReader(text))
		if err != nil {
			return "", err
		}
	}
	return TrimBoilerplate(text), nil
}

// Fetcher downloads book files over HTTP.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
	userAgent  string
}

func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBytes:  maxBytes,
		userAgent: "bookreader/1.0",
	}
}

// Fetch downloads url and returns its extracted Document text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("fetch %s: status %d: %s", url, resp.StatusCode, string(respBody))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(body)) > f.maxBytes {
		return "", fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, url, f.maxBytes)
	}

	return Extract(body, resp.Header.Get("Content-Type"))
}

// Close releases idle connections.
func (f *Fetcher) Close() {
	f.httpClient.CloseIdleConnections()
}
