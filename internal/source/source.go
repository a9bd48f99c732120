package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultUserAgent is sent with every HTTP request unless overridden.
const DefaultUserAgent = "rastertile/1.0.0"

// FetchError represents a failed HTTP download
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: HTTP %d: %s", e.URL, e.StatusCode, e.Status)
}

// Fetcher reads raster images from local files or HTTP(S) URLs
type Fetcher struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
}

// NewFetcher creates a fetcher. Extra headers are added to every request.
func NewFetcher(userAgent string, headers map[string]string) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: userAgent,
		headers:   headers,
	}
}

// Fetch returns the bytes at location, which is either a file path or an
// http:// or https:// URL.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return f.download(ctx, location)
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	for key, value := range f.headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return io.ReadAll(resp.Body)
}
