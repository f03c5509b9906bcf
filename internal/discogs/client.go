// Package discogs is a client for the Discogs marketplace and database API.
package discogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/calvares/digger/internal/constants"
	"github.com/calvares/digger/internal/domain"
	"github.com/calvares/digger/internal/httpclient"
)

type ClientInterface interface {
	GetInventoryPage(ctx context.Context, seller string, page, perPage int) (*InventoryPage, error)
	GetReleaseDetails(ctx context.Context, releaseID int) (*ReleaseDetails, error)
}

var _ ClientInterface = (*Client)(nil)

// Auth carries Discogs API credentials. A personal access token takes
// precedence over the consumer key/secret pair.
type Auth struct {
	ConsumerKey    string
	ConsumerSecret string
	Token          string
}

type Client struct {
	httpClient *httpclient.Client
	baseURL    string
	userAgent  string
	auth       Auth
}

func NewClient(baseURL string, auth Auth, userAgent string) *Client {
	if userAgent == "" {
		userAgent = constants.DefaultUserAgent
	}
	return &Client{
		httpClient: httpclient.New(nil),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  userAgent,
		auth:       auth,
	}
}

// SetHTTPClient swaps the underlying rate-limited client, mainly for tests.
func (c *Client) SetHTTPClient(hc *httpclient.Client) {
	c.httpClient = hc
}

// GetInventoryPage fetches one page of a seller's inventory, up to perPage
// listings.
func (c *Client) GetInventoryPage(ctx context.Context, seller string, page, perPage int) (*InventoryPage, error) {
	u := fmt.Sprintf("%s/users/%s/inventory?page=%d&per_page=%d",
		c.baseURL, url.PathEscape(seller), page, perPage)

	var result InventoryPage
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, fmt.Errorf("inventory page %d for %s: %w", page, seller, err)
	}
	return &result, nil
}

// GetReleaseDetails fetches one release's full record and extracts the
// fields the ingestion pipeline cares about.
func (c *Client) GetReleaseDetails(ctx context.Context, releaseID int) (*ReleaseDetails, error) {
	u := fmt.Sprintf("%s/releases/%d", c.baseURL, releaseID)

	var raw releaseResponse
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, fmt.Errorf("release %d: %w", releaseID, err)
	}

	details := &ReleaseDetails{
		AvgRating:  raw.Community.Rating.Average,
		NumRatings: raw.Community.Rating.Count,
		HaveCount:  raw.Community.Have,
		WantCount:  raw.Community.Want,
		Genres:     raw.Genres,
		Styles:     raw.Styles,
		Year:       raw.Year,
		Artist:     constants.UnknownArtist,
		Title:      raw.Title,
	}

	if details.Title == "" {
		details.Title = constants.UnknownTitle
	}
	if len(raw.Labels) > 0 {
		details.Label = raw.Labels[0].Name
	}
	if len(raw.Artists) > 0 {
		details.Artist = raw.Artists[0].Name
	}
	for _, v := range raw.Videos {
		if v.URI != "" {
			title := v.Title
			if title == "" {
				title = "Video"
			}
			details.Videos = append(details.Videos, domain.VideoLink{URL: v.URI, Title: title})
		}
	}

	return details, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.auth.Token != "" {
		req.Header.Set("Authorization", "Discogs token="+c.auth.Token)
	} else if c.auth.ConsumerKey != "" {
		req.Header.Set("Authorization",
			fmt.Sprintf("Discogs key=%s, secret=%s", c.auth.ConsumerKey, c.auth.ConsumerSecret))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is an HTTP 404 from the API.
func IsNotFound(err error) bool {
	var statusErr *httpclient.StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}
