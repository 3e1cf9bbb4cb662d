package research

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	fetcherUserAgent = "gapaudit (catalog discovery)"
	contentEncoding  = "gzip, deflate"

	// Catalog pages are text; anything past this is marketing bloat that
	// only inflates the extraction prompt.
	maxFetchBytes = 512 * 1024
)

// Fetcher downloads a seed catalog page so its text can feed extraction.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		UserAgent: fetcherUserAgent,
	}
}

// Fetch returns the page body as text, transparently handling gzip.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxFetchBytes))
	if err != nil {
		return "", err
	}

	return string(data), nil
}
