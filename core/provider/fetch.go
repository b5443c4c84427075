package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// fetchAsset downloads one asset URL, enforcing the byte cap while reading
// so an oversize or lying remote cannot exhaust memory.
func fetchAsset(ctx context.Context, client *http.Client, providerName string, entry Entry, maxBytes int64) (*Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.URL, nil)
	if err != nil {
		return nil, &UnavailableError{Provider: providerName, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Name: entry.Name, URL: entry.URL}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{Provider: providerName, RetryAfter: retryAfter(resp)}
	case resp.StatusCode != http.StatusOK:
		return nil, &UnavailableError{
			Provider: providerName,
			Err:      fmt.Errorf("fetching %s: unexpected status %d", entry.Name, resp.StatusCode),
		}
	}

	// Reject by declared length before reading anything.
	if maxBytes > 0 && resp.ContentLength > maxBytes {
		return nil, fmt.Errorf("emoji %q: %d bytes: %w", entry.Name, resp.ContentLength, ErrTooLarge)
	}

	reader := io.Reader(resp.Body)
	if maxBytes > 0 {
		reader = io.LimitReader(resp.Body, maxBytes+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &UnavailableError{Provider: providerName, Err: fmt.Errorf("reading %s: %w", entry.Name, err)}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("emoji %q: %w", entry.Name, ErrTooLarge)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if err := validateImage(entry.Name, contentType, data); err != nil {
		return nil, err
	}

	return &Content{Bytes: data, ContentType: contentType}, nil
}

// validateImage rejects payloads that are clearly not images, catching error
// pages served with a 200 status.
func validateImage(name, contentType string, data []byte) error {
	if strings.HasPrefix(contentType, "image/") {
		return nil
	}
	// SVGs are often served as xml or octet-stream.
	if strings.Contains(contentType, "svg") || strings.Contains(contentType, "xml") {
		return nil
	}
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return nil
	}
	return fmt.Errorf("emoji %q: not an image (content type %s)", name, contentType)
}

// maxAPIResponse caps catalog listing payloads. Slack workspaces top out in
// the low thousands of emojis, far under this.
const maxAPIResponse = 32 << 20

// readBody drains an API response with a sanity cap.
func readBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, maxAPIResponse))
}

// retryAfter parses the Retry-After response header, returning 0 when absent
// or unparseable.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return 0
}
