// Package opentts provides a speech synthesizer backed by an OpenTTS-style
// HTTP endpoint.
package opentts

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/herald-audio/herald/internal/app/speech"
)

// Client synthesizes announcements through a TTS server's /api/tts
// endpoint. The returned handle is the GET URL itself; the audio channel
// streams it directly.
type Client struct {
	baseURL    string
	voice      string
	httpClient *http.Client
}

// Config represents TTS client configuration.
type Config struct {
	BaseURL string
	Voice   string
}

// New creates a new TTS client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("tts base URL is required")
	}
	voice := cfg.Voice
	if voice == "" {
		voice = "en"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		voice:      voice,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Synthesize returns a URL playing the spoken form of text. The endpoint is
// probed first so an unreachable synthesizer fails here rather than at
// playback time.
func (c *Client) Synthesize(ctx context.Context, text string) (string, error) {
	if len([]rune(text)) > speech.MaxTextLength {
		return "", speech.ErrTextTooLong
	}

	params := url.Values{}
	params.Set("voice", c.voice)
	params.Set("text", text)
	clipURL := c.baseURL + "/api/tts?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", clipURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "tts request failed"), speech.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Mark(errors.Newf("tts returned status %d", resp.StatusCode), speech.ErrUnavailable)
	}

	zlog.Debug().Msgf("tts: synthesized announcement: voice=%s chars=%d", c.voice, len(text))
	return clipURL, nil
}
