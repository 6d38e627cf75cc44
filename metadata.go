package unwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MetadataResolver resolves a video ID to its public metadata.
type MetadataResolver interface {
	Resolve(ctx context.Context, videoID string) (VideoInfo, error)
}

// defaultOEmbedEndpoint is YouTube's unauthenticated oEmbed API.
const defaultOEmbedEndpoint = "https://www.youtube.com/oembed"

// defaultMetadataTimeout bounds a single metadata lookup.
const defaultMetadataTimeout = 15 * time.Second

// Compile-time check that OEmbedResolver implements MetadataResolver.
var _ MetadataResolver = (*OEmbedResolver)(nil)

// OEmbedResolver looks up video titles through the oEmbed endpoint.
// No API credential is required.
type OEmbedResolver struct {
	client   *http.Client
	endpoint string
}

// NewOEmbedResolver creates a resolver with the given HTTP client.
// A nil client gets a default with a bounded timeout.
func NewOEmbedResolver(client *http.Client) *OEmbedResolver {
	if client == nil {
		client = &http.Client{Timeout: defaultMetadataTimeout}
	}
	return &OEmbedResolver{client: client, endpoint: defaultOEmbedEndpoint}
}

// oembedResponse is the subset of the oEmbed payload we consume.
type oembedResponse struct {
	Title string `json:"title"`
}

// Resolve fetches the video title for the given ID.
// Returns ErrMetadataUnavailable on any transport, status, or decode failure.
func (r *OEmbedResolver) Resolve(ctx context.Context, videoID string) (VideoInfo, error) {
	url := fmt.Sprintf("%s?url=https://www.youtube.com/watch?v=%s&format=json", r.endpoint, videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VideoInfo{}, fmt.Errorf("%w: oembed returned status %d", ErrMetadataUnavailable, resp.StatusCode)
	}

	var payload oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return VideoInfo{}, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}

	title := payload.Title
	if title == "" {
		title = "Unknown Title"
	}

	return VideoInfo{ID: videoID, Title: title}, nil
}
