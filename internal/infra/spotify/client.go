// Package spotify provides a catalog provider backed by the Spotify API.
// Spotify is metadata-complete but only exposes 30-second preview streams,
// so resolution maps tracks without a preview to the restricted error.
package spotify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/herald-audio/herald/internal/app/catalog"
	"github.com/herald-audio/herald/internal/domain/media"
)

// Config represents Spotify provider configuration.
type Config struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
}

// Client is a Spotify API client implementing catalog.Catalog.
type Client struct {
	client     *spotify.Client
	maxRetries int
	retryDelay time.Duration
}

// New creates a provider from the config file's settings map.
func New(ctx context.Context, settings map[string]any) (*Client, error) {
	var cfg Config
	if err := mapstructure.Decode(settings, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("spotify credentials are required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithScopes(spotifyauth.ScopePlaylistReadPrivate),
	)

	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}

	// HTTP client with auto-refresh capability.
	httpClient := auth.Client(ctx, token)

	return &Client{
		client:     spotify.New(httpClient),
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// Name returns the provider name.
func (c *Client) Name() string { return "spotify" }

// Search searches for tracks.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]media.Item, error) {
	if strings.TrimSpace(query) == "" {
		return nil, catalog.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	var result *spotify.SearchResult
	err := c.retry(func() error {
		r, err := c.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "search failed"), catalog.ErrUnavailable)
	}

	items := make([]media.Item, 0, len(result.Tracks.Tracks))
	for _, t := range result.Tracks.Tracks {
		items = append(items, convertItem(&t))
	}
	return items, nil
}

// Resolve returns the track's preview stream.
func (c *Client) Resolve(ctx context.Context, itemID string) (media.ResolvedTrack, error) {
	if strings.TrimSpace(itemID) == "" {
		return media.ResolvedTrack{}, catalog.ErrInvalidInput
	}

	var result *spotify.FullTrack
	err := c.retry(func() error {
		t, err := c.client.GetTrack(ctx, spotify.ID(extractTrackID(itemID)))
		if err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			return media.ResolvedTrack{}, errors.Mark(errors.Wrap(err, "track not found"), catalog.ErrNotFound)
		}
		return media.ResolvedTrack{}, errors.Mark(errors.Wrap(err, "track fetch failed"), catalog.ErrUnresolvable)
	}

	if result.PreviewURL == "" {
		return media.ResolvedTrack{}, errors.Mark(errors.Newf("no preview stream for %s", itemID), catalog.ErrRestricted)
	}

	return media.ResolvedTrack{
		StreamURL:       result.PreviewURL,
		Title:           trackTitle(&result.SimpleTrack),
		DurationSeconds: int(result.TimeDuration() / time.Second),
	}, nil
}

// Playlist fetches a playlist's name and all of its tracks.
func (c *Client) Playlist(ctx context.Context, playlistID string) (catalog.Listing, error) {
	if strings.TrimSpace(playlistID) == "" {
		return catalog.Listing{}, catalog.ErrInvalidInput
	}
	id := spotify.ID(extractPlaylistID(playlistID))

	var pl *spotify.FullPlaylist
	err := c.retry(func() error {
		p, err := c.client.GetPlaylist(ctx, id)
		if err != nil {
			return err
		}
		pl = p
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			return catalog.Listing{}, errors.Mark(errors.Wrap(err, "playlist not found"), catalog.ErrNotFound)
		}
		return catalog.Listing{}, errors.Mark(errors.Wrap(err, "playlist fetch failed"), catalog.ErrUnavailable)
	}

	var items []media.Item
	offset := 0
	limit := 100
	for {
		var page *spotify.PlaylistItemPage
		err := c.retry(func() error {
			p, err := c.client.GetPlaylistItems(ctx, id, spotify.Limit(limit), spotify.Offset(offset))
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return catalog.Listing{}, errors.Mark(errors.Wrap(err, "failed to get playlist items"), catalog.ErrUnavailable)
		}

		for _, item := range page.Items {
			// Only tracks; episodes are skipped.
			if item.Track.Track != nil && item.Track.Track.ID != "" {
				items = append(items, convertItem(item.Track.Track))
			}
		}

		if len(page.Items) < limit {
			break
		}
		offset += limit
	}

	if len(items) == 0 {
		return catalog.Listing{}, errors.Mark(errors.Newf("playlist %s has no tracks", playlistID), catalog.ErrEmpty)
	}

	return catalog.Listing{Title: pl.Name, Items: items}, nil
}

// convertItem converts a Spotify track to a catalog item.
func convertItem(t *spotify.FullTrack) media.Item {
	item := media.Item{
		ID:            string(t.ID),
		Title:         trackTitle(&t.SimpleTrack),
		DurationLabel: durationLabel(t.TimeDuration()),
	}
	if len(t.Album.Images) > 0 {
		item.ThumbnailURL = t.Album.Images[0].URL
	}
	return item
}

// trackTitle renders "Artist - Track" like the announcement should read it.
func trackTitle(t *spotify.SimpleTrack) string {
	if len(t.Artists) == 0 {
		return t.Name
	}
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ") + " - " + t.Name
}

// durationLabel formats a duration as "m:ss".
func durationLabel(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// retry retries an operation with linear backoff.
func (c *Client) retry(fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit errors and server errors are retryable.
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// isNotFound checks if an error is the API's not-found response.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "404") || strings.Contains(errStr, "not found")
}

// extractPlaylistID extracts the playlist ID from a Spotify playlist URL or URI.
func extractPlaylistID(input string) string {
	return extractID(input, "playlist")
}

// extractTrackID extracts the track ID from a Spotify track URL or URI.
func extractTrackID(input string) string {
	return extractID(input, "track")
}

func extractID(input, kind string) string {
	input = strings.TrimSpace(input)
	// URI format: spotify:<kind>:<id>
	if strings.HasPrefix(input, "spotify:"+kind+":") {
		return strings.TrimPrefix(input, "spotify:"+kind+":")
	}

	// URL format: https://open.spotify.com/<kind>/<id>
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/"+kind+"/") {
		parts := strings.Split(input, "/"+kind+"/")
		if len(parts) >= 2 {
			id := strings.Split(parts[len(parts)-1], "?")[0]
			return strings.TrimRight(id, "/")
		}
	}

	// Assume it's already an ID.
	return input
}
