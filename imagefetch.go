package unwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultImageTimeout bounds a single remote image fetch during rendering.
const DefaultImageTimeout = 5 * time.Second

// maxImageBytes caps how much image data the renderer will embed.
const maxImageBytes = 10 << 20

// ImageFetcher retrieves a remote image by URL. Implementations must be
// bounded: a hung fetch must not stall the render indefinitely.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, format string, err error)
}

// Compile-time check that HTTPImageFetcher implements ImageFetcher.
var _ ImageFetcher = (*HTTPImageFetcher)(nil)

// HTTPImageFetcher fetches images over HTTP with a bounded timeout.
type HTTPImageFetcher struct {
	client *http.Client
}

// NewImageFetcher creates a fetcher with the given client; a nil client gets
// a default bounded by DefaultImageTimeout.
func NewImageFetcher(client *http.Client) *HTTPImageFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultImageTimeout}
	}
	return &HTTPImageFetcher{client: client}
}

// Fetch downloads the image and reports its format (jpg, png, gif).
// Any failure (bad URL, timeout, non-2xx status, unsupported format) is an
// error; the caller decides whether that is fatal. The renderer treats it as
// "skip the image block".
func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build image request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", errors.New("image exceeds size limit")
	}

	format, err := sniffImageFormat(data)
	if err != nil {
		return nil, "", err
	}
	return data, format, nil
}

// sniffImageFormat detects the painter-supported image formats by content,
// ignoring whatever Content-Type the server claimed.
func sniffImageFormat(data []byte) (string, error) {
	contentType := http.DetectContentType(data)
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpg", nil
	case strings.Contains(contentType, "png"):
		return "png", nil
	case strings.Contains(contentType, "gif"):
		return "gif", nil
	default:
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}
}
