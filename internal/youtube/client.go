// Package youtube is a best-effort video lookup for releases. Without an
// API key every search reports not-found; it never fails the caller.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/calvares/digger/internal/constants"
)

type ClientInterface interface {
	SearchVideo(ctx context.Context, artist, title string) (string, error)
}

var _ ClientInterface = (*Client)(nil)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: constants.YouTubeHTTPTimeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// SearchVideo returns the id of the best video match for "artist title", or
// "" when nothing was found. Missing credentials degrade to "" without error.
func (c *Client) SearchVideo(ctx context.Context, artist, title string) (string, error) {
	if c.apiKey == "" {
		return "", nil
	}

	query := url.Values{
		"part":       {"snippet"},
		"q":          {artist + " " + title},
		"type":       {"video"},
		"maxResults": {"1"},
		"key":        {c.apiKey},
	}
	u := fmt.Sprintf("%s/search?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("youtube returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Items) == 0 {
		return "", nil
	}
	return result.Items[0].ID.VideoID, nil
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID videoID `json:"id"`
}

type videoID struct {
	VideoID string `json:"videoId"`
}
