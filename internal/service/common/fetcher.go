package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// errBadHTTPStatus is returned when the CDN answers with anything but 200.
var errBadHTTPStatus = errors.New("unexpected http status")

// Fetcher downloads remote files.
type Fetcher interface {
	// Fetch writes the body of url to w.
	Fetch(ctx context.Context, url string, w io.Writer) error
}

// HTTPFetcher implements Fetcher with net/http.
type HTTPFetcher struct {
	client *http.Client
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout bounds every request. Zero keeps requests unbounded.
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		if timeout > 0 {
			client := *f.client
			client.Timeout = timeout
			f.client = &client
		}
	}
}

// NewHTTPFetcher creates a fetcher using http.DefaultClient unless overridden.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{client: http.DefaultClient}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch issues a GET request and copies the response body verbatim.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}

	response, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%s, %s: %w", url, response.Status, errBadHTTPStatus)
	}

	if _, err = io.Copy(w, response.Body); err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}

	return nil
}
