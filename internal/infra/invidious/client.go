// Package invidious provides a catalog provider backed by an Invidious
// instance's JSON API.
package invidious

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"

	"github.com/herald-audio/herald/internal/app/catalog"
	"github.com/herald-audio/herald/internal/domain/media"
)

// Config represents Invidious provider configuration.
type Config struct {
	BaseURL string `mapstructure:"base_url"`
}

// Client is an Invidious API client implementing catalog.Catalog.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a provider from the config file's settings map.
func New(settings map[string]any) (*Client, error) {
	var cfg Config
	if err := mapstructure.Decode(settings, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("invidious base_url is required")
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Name returns the provider name.
func (c *Client) Name() string { return "invidious" }

type searchResult struct {
	Type            string `json:"type"`
	VideoID         string `json:"videoId"`
	Title           string `json:"title"`
	LengthSeconds   int    `json:"lengthSeconds"`
	VideoThumbnails []struct {
		URL string `json:"url"`
	} `json:"videoThumbnails"`
}

type videoResponse struct {
	Title           string `json:"title"`
	LengthSeconds   int    `json:"lengthSeconds"`
	LiveNow         bool   `json:"liveNow"`
	AdaptiveFormats []struct {
		URL  string `json:"url"`
		Type string `json:"type"`
	} `json:"adaptiveFormats"`
	FormatStreams []struct {
		URL  string `json:"url"`
		Type string `json:"type"`
	} `json:"formatStreams"`
}

type playlistResponse struct {
	Title  string `json:"title"`
	Videos []struct {
		VideoID       string `json:"videoId"`
		Title         string `json:"title"`
		LengthSeconds int    `json:"lengthSeconds"`
	} `json:"videos"`
}

type apiError struct {
	Error string `json:"error"`
}

// Search searches for videos on the instance.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]media.Item, error) {
	if strings.TrimSpace(query) == "" {
		return nil, catalog.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "video")

	var results []searchResult
	if err := c.getJSON(ctx, "/api/v1/search?"+params.Encode(), &results); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "search failed"), catalog.ErrUnavailable)
	}

	items := make([]media.Item, 0, limit)
	for _, r := range results {
		if r.Type != "video" || r.VideoID == "" {
			continue
		}
		item := media.Item{
			ID:            r.VideoID,
			Title:         r.Title,
			DurationLabel: durationLabel(r.LengthSeconds),
		}
		if len(r.VideoThumbnails) > 0 {
			item.ThumbnailURL = r.VideoThumbnails[0].URL
		}
		items = append(items, item)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

// Resolve fetches a video's metadata and picks an audio stream URL.
func (c *Client) Resolve(ctx context.Context, itemID string) (media.ResolvedTrack, error) {
	if strings.TrimSpace(itemID) == "" {
		return media.ResolvedTrack{}, catalog.ErrInvalidInput
	}

	var video videoResponse
	if err := c.getJSON(ctx, "/api/v1/videos/"+url.PathEscape(itemID), &video); err != nil {
		if errors.Is(err, errNotFound) {
			return media.ResolvedTrack{}, errors.Mark(err, catalog.ErrNotFound)
		}
		return media.ResolvedTrack{}, errors.Mark(errors.Wrap(err, "video fetch failed"), catalog.ErrUnresolvable)
	}
	if video.LiveNow {
		return media.ResolvedTrack{}, errors.Mark(errors.New("live streams are not playable"), catalog.ErrRestricted)
	}

	streamURL := pickAudioStream(video)
	if streamURL == "" {
		return media.ResolvedTrack{}, errors.Mark(errors.Newf("no audio stream for %s", itemID), catalog.ErrUnresolvable)
	}

	return media.ResolvedTrack{
		StreamURL:       streamURL,
		Title:           video.Title,
		DurationSeconds: video.LengthSeconds,
	}, nil
}

// Playlist fetches a playlist's title and items.
func (c *Client) Playlist(ctx context.Context, playlistID string) (catalog.Listing, error) {
	if strings.TrimSpace(playlistID) == "" {
		return catalog.Listing{}, catalog.ErrInvalidInput
	}

	var pl playlistResponse
	if err := c.getJSON(ctx, "/api/v1/playlists/"+url.PathEscape(playlistID), &pl); err != nil {
		if errors.Is(err, errNotFound) {
			return catalog.Listing{}, errors.Mark(err, catalog.ErrNotFound)
		}
		return catalog.Listing{}, errors.Mark(errors.Wrap(err, "playlist fetch failed"), catalog.ErrUnavailable)
	}

	items := make([]media.Item, 0, len(pl.Videos))
	for _, v := range pl.Videos {
		if v.VideoID == "" {
			continue
		}
		items = append(items, media.Item{
			ID:            v.VideoID,
			Title:         v.Title,
			DurationLabel: durationLabel(v.LengthSeconds),
		})
	}
	if len(items) == 0 {
		return catalog.Listing{}, errors.Mark(errors.Newf("playlist %s is empty", playlistID), catalog.ErrEmpty)
	}

	return catalog.Listing{Title: pl.Title, Items: items}, nil
}

var errNotFound = errors.New("not found")

// getJSON fetches path relative to the instance base URL and decodes the
// JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Newf("unexpected status %d", resp.StatusCode)
	}

	// Invidious reports some failures as 200 with an error field.
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return errors.Newf("api error: %s", apiErr.Error)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}

// pickAudioStream prefers a dedicated audio format over muxed streams.
func pickAudioStream(video videoResponse) string {
	for _, f := range video.AdaptiveFormats {
		if strings.HasPrefix(f.Type, "audio/") && f.URL != "" {
			return f.URL
		}
	}
	for _, f := range video.FormatStreams {
		if f.URL != "" {
			return f.URL
		}
	}
	return ""
}

// durationLabel formats seconds as "m:ss" (or "h:mm:ss" past an hour).
func durationLabel(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
