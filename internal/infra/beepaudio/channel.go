// Package beepaudio implements audio.Channel on the beep speaker, streaming
// sources over HTTP.
package beepaudio

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	zlog "github.com/rs/zerolog/log"

	"github.com/herald-audio/herald/internal/app/audio"
)

// The speaker is a process-wide singleton; both channels mix into it at a
// fixed sample rate and every source is resampled to match.
const mixRate = beep.SampleRate(44100)

var speakerOnce sync.Once

func initSpeaker() error {
	var err error
	speakerOnce.Do(func() {
		err = speaker.Init(mixRate, mixRate.N(time.Second/10))
	})
	return err
}

// Channel is one playable sink on the shared speaker. Each Play produces
// exactly one terminal signal unless the attempt is paused or superseded.
type Channel struct {
	mu sync.Mutex

	name       string
	httpClient *http.Client
	signals    chan audio.Signal

	url       string
	freshLoad bool // a Load since the last Play

	// Attempt generation. Bumped whenever the current attempt is
	// superseded, so its late callback cannot emit a stale signal.
	attempt uint64

	ctrl     *beep.Ctrl
	streamer beep.StreamSeekCloser
	body     io.Closer
	paused   bool
}

// NewChannel creates a named channel on the shared speaker.
func NewChannel(name string) *Channel {
	return &Channel{
		name:       name,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		signals:    make(chan audio.Signal, 4),
	}
}

// Load sets the source for the next playback attempt without playing it.
func (c *Channel) Load(url string) error {
	if url == "" {
		return errors.New("empty source url")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.url = url
	c.freshLoad = true
	return nil
}

// Play begins playback of the loaded source, or resumes a paused attempt
// when nothing new was loaded. Failures before audio starts are returned
// directly; later ones arrive as a terminal error signal.
func (c *Channel) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.freshLoad && c.paused && c.ctrl != nil {
		speaker.Lock()
		c.ctrl.Paused = false
		speaker.Unlock()
		c.paused = false
		return nil
	}

	if c.url == "" {
		return errors.New("no source loaded")
	}
	if err := initSpeaker(); err != nil {
		return errors.Wrap(err, "speaker init failed")
	}

	c.discardCurrentLocked()
	c.freshLoad = false

	resp, err := c.httpClient.Get(c.url)
	if err != nil {
		return errors.Wrap(err, "stream fetch failed")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return errors.Newf("stream fetch returned status %d", resp.StatusCode)
	}

	streamer, format, err := decode(resp.Header.Get("Content-Type"), c.url, resp.Body)
	if err != nil {
		resp.Body.Close()
		return errors.Wrap(err, "stream decode failed")
	}

	c.attempt++
	id := c.attempt
	c.streamer = streamer
	c.body = resp.Body
	c.paused = false

	var source beep.Streamer = streamer
	if format.SampleRate != mixRate {
		source = beep.Resample(4, format.SampleRate, mixRate, streamer)
	}
	c.ctrl = &beep.Ctrl{Streamer: source}

	zlog.Debug().Msgf("audio: starting playback: channel=%s rate=%d", c.name, format.SampleRate)
	speaker.Play(beep.Seq(c.ctrl, beep.Callback(func() {
		c.finish(id)
	})))
	return nil
}

// Pause stops playback without discarding position. No terminal signal is
// emitted for a paused attempt.
func (c *Channel) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctrl == nil || c.paused {
		return
	}
	speaker.Lock()
	c.ctrl.Paused = true
	speaker.Unlock()
	c.paused = true
}

// Signals delivers the terminal signal of each playback attempt.
func (c *Channel) Signals() <-chan audio.Signal {
	return c.signals
}

// Close releases the channel's current attempt.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discardCurrentLocked()
}

// discardCurrentLocked abandons the current attempt: its streamer is
// detached from the mixer and its callback silenced.
func (c *Channel) discardCurrentLocked() {
	if c.ctrl == nil {
		return
	}
	c.attempt++

	speaker.Lock()
	// A nil streamer drains immediately, letting the mixer drop the
	// sequence; the bumped attempt keeps its callback quiet.
	c.ctrl.Streamer = nil
	c.ctrl.Paused = false
	speaker.Unlock()

	if c.streamer != nil {
		c.streamer.Close()
		c.streamer = nil
	}
	if c.body != nil {
		c.body.Close()
		c.body = nil
	}
	c.ctrl = nil
	c.paused = false
}

// finish runs when the mixer drains an attempt's sequence.
func (c *Channel) finish(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id != c.attempt {
		return
	}

	sig := audio.Signal{Kind: audio.SignalEnded}
	if c.streamer != nil {
		if err := c.streamer.Err(); err != nil {
			sig = audio.Signal{Kind: audio.SignalError, Code: audio.ErrCodeNetwork, Err: err}
		}
		c.streamer.Close()
		c.streamer = nil
	}
	if c.body != nil {
		c.body.Close()
		c.body = nil
	}
	c.ctrl = nil
	c.paused = false

	select {
	case c.signals <- sig:
	default:
		zlog.Warn().Msgf("audio: dropping terminal signal: channel=%s kind=%s", c.name, sig.Kind)
	}
}

// decode picks a decoder from the response content type, falling back to
// the URL extension, then to mp3.
func decode(contentType, url string, body io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch {
	case strings.Contains(contentType, "wav"):
		return wav.Decode(body)
	case strings.Contains(contentType, "mpeg") || strings.Contains(contentType, "mp3"):
		return mp3.Decode(body)
	}

	trimmed := url
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if strings.HasSuffix(trimmed, ".wav") {
		return wav.Decode(body)
	}
	return mp3.Decode(body)
}
