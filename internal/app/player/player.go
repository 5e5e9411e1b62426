package player

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/herald-audio/herald/internal/app/audio"
	"github.com/herald-audio/herald/internal/app/catalog"
	"github.com/herald-audio/herald/internal/app/presentation"
	"github.com/herald-audio/herald/internal/app/speech"
	"github.com/herald-audio/herald/internal/domain/media"
	"github.com/herald-audio/herald/internal/domain/playlist"
)

// Errors
var (
	ErrInvalidSelection  = errors.New("empty selection")
	ErrNoPlaylist        = errors.New("no active playlist")
	ErrExhaustedPlaylist = errors.New("no playable items")
)

// Catalog is the subset of catalog operations the player needs.
type Catalog interface {
	Resolve(ctx context.Context, itemID string) (media.ResolvedTrack, error)
	Playlist(ctx context.Context, playlistID string) (catalog.Listing, error)
}

// Synthesizer turns announcement text into a playable URL.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// Config holds player configuration.
type Config struct {
	RetryDelay           time.Duration // Delay before skipping past a failed playlist item
	AnnouncementTemplate string        // fmt template with one %s verb for the title
}

// Player sequences the announcement and primary channels through a playlist.
// All state transitions happen under one mutex in response to discrete
// signals: selections, channel terminal signals, and collaborator responses.
// Collaborator calls run in goroutines and re-enter under the lock; their
// effects are discarded when a newer selection has superseded them, compared
// via a monotonically increasing selection token.
type Player struct {
	mu sync.RWMutex

	sessionID string
	phase     Phase
	title     string
	lastError string

	playlist *playlist.Cursor   // nil when a single item is selected
	staged   *media.StagedTrack // at most one, consume-once

	// Selection token. Bumped on every selection and manual advance;
	// responses carrying an older token are stale and dropped.
	token uint64

	// Consecutive per-item failures since the last natural completion.
	// Reaching one full playlist cycle aborts with ErrExhaustedPlaylist.
	failStreak int

	retryCancel func() // Cancel function for the skip-and-advance delay

	announce audio.Channel
	primary  audio.Channel
	catalog  Catalog
	speech   Synthesizer
	sink     presentation.Sink

	config Config

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a player. Call Start to begin consuming channel signals.
func New(announce, primary audio.Channel, cat Catalog, synth Synthesizer, sink presentation.Sink, config Config) *Player {
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		sessionID: uuid.New().String(),
		phase:     PhaseIdle,
		announce:  announce,
		primary:   primary,
		catalog:   cat,
		speech:    synth,
		sink:      sink,
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins consuming terminal signals from both channels.
func (p *Player) Start() {
	go p.pump(p.announce.Signals(), p.onAnnounceSignal)
	go p.pump(p.primary.Signals(), p.onPrimarySignal)
}

// Close releases the player. It must not be used afterwards.
func (p *Player) Close() {
	p.cancel()
	p.Stop()
}

// SessionID returns the ID reported by the control API.
func (p *Player) SessionID() string {
	return p.sessionID
}

// PlayItem starts playback of a single item: resolve, announce, play.
// Any previous selection or playlist is abandoned.
func (p *Player) PlayItem(item media.Item) error {
	if item.ID == "" {
		return ErrInvalidSelection
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	token := p.newSelectionLocked()
	p.playlist = nil
	p.failStreak = 0
	p.resolveLocked(token, item)
	return nil
}

// PlayPlaylist fetches the playlist, positions the cursor at its first item
// and continues as if that item had been selected. The playlist loops
// indefinitely until every item in one full cycle fails.
func (p *Player) PlayPlaylist(playlistID string) error {
	if playlistID == "" {
		return ErrInvalidSelection
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	token := p.newSelectionLocked()
	p.playlist = nil
	p.failStreak = 0
	p.setPhaseLocked(PhaseLoading, "")
	p.sink.OnLoadingStateChange(true, "fetching playlist")

	go func() {
		listing, err := p.catalog.Playlist(p.ctx, playlistID)

		p.mu.Lock()
		defer p.mu.Unlock()
		if token != p.token {
			zlog.Debug().Msgf("player: discarding stale playlist response: playlist=%s", playlistID)
			return
		}
		p.sink.OnLoadingStateChange(false, "")

		if err != nil {
			p.failLocked(errors.Wrapf(err, "playlist %s", playlistID).Error())
			return
		}
		cursor, err := playlist.NewCursor(listing.Title, listing.Items)
		if err != nil {
			p.failLocked("playlist has no playable items")
			return
		}
		p.playlist = cursor
		zlog.Info().Msgf("player: playlist loaded: title=%s items=%d", cursor.Title(), cursor.Len())
		p.resolveLocked(token, cursor.Current())
	}()
	return nil
}

// Next skips to the next playlist item. Honored only while a playlist is
// active; both channels are silenced first so two sources never overlap.
func (p *Player) Next() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playlist == nil {
		return ErrNoPlaylist
	}

	token := p.newSelectionLocked()
	p.advanceLocked(token)
	return nil
}

// Stop abandons the current selection and returns to idle.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.newSelectionLocked()
	p.playlist = nil
	p.failStreak = 0
	p.lastError = ""
	p.setPhaseLocked(PhaseIdle, "")
}

// Status is a snapshot of the observable player state.
type Status struct {
	SessionID     string
	Phase         Phase
	Title         string
	PlaylistTitle string
	Position      *presentation.Position
	LastError     string
}

// Status returns the current observable state.
func (p *Player) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st := Status{
		SessionID: p.sessionID,
		Phase:     p.phase,
		Title:     p.title,
		LastError: p.lastError,
	}
	if p.playlist != nil {
		st.PlaylistTitle = p.playlist.Title()
		st.Position = p.positionLocked()
	}
	return st
}

// newSelectionLocked invalidates everything belonging to the previous
// selection: in-flight resolve/synthesis effects, the pending retry, the
// staged track, and any audible channel.
func (p *Player) newSelectionLocked() uint64 {
	p.token++
	if p.retryCancel != nil {
		p.retryCancel()
		p.retryCancel = nil
	}
	p.staged = nil
	p.announce.Pause()
	p.primary.Pause()
	return p.token
}

// resolveLocked issues the resolve call for item and stages the result.
func (p *Player) resolveLocked(token uint64, item media.Item) {
	p.setPhaseLocked(PhaseLoading, item.Title)
	p.sink.OnLoadingStateChange(true, "resolving "+item.Title)

	go func() {
		resolved, err := p.catalog.Resolve(p.ctx, item.ID)

		p.mu.Lock()
		defer p.mu.Unlock()
		if token != p.token {
			zlog.Debug().Msgf("player: discarding stale resolve response: item=%s", item.ID)
			return
		}
		p.sink.OnLoadingStateChange(false, "")

		if err != nil {
			if p.playlist == nil {
				p.failLocked(errors.Wrapf(err, "resolve %s", item.ID).Error())
				return
			}
			p.skipCurrentLocked(token, errors.Wrapf(err, "resolve %s", item.ID).Error())
			return
		}

		staged := media.Stage(resolved, item.Title)
		p.staged = &staged
		p.announceLocked(token, staged.Title)
	}()
}

// announceLocked synthesizes and plays the announcement for the staged
// title. The announcement is best-effort: any synthesis or playback failure
// falls through to primary playback as though it had ended.
func (p *Player) announceLocked(token uint64, title string) {
	text := speech.Announcement(p.config.AnnouncementTemplate, title)

	go func() {
		handle, err := p.speech.Synthesize(p.ctx, text)

		p.mu.Lock()
		defer p.mu.Unlock()
		if token != p.token {
			zlog.Debug().Msgf("player: discarding stale synthesis response: title=%s", title)
			return
		}

		if err != nil {
			zlog.Warn().Msgf("player: announcement synthesis failed, playing without it: %v", err)
			p.startPrimaryLocked(token)
			return
		}
		if err := p.announce.Load(handle); err != nil {
			zlog.Warn().Msgf("player: announcement load failed, playing without it: %v", err)
			p.startPrimaryLocked(token)
			return
		}
		if err := p.announce.Play(); err != nil {
			zlog.Warn().Msgf("player: announcement playback failed, playing without it: %v", err)
			p.startPrimaryLocked(token)
			return
		}
		p.setPhaseLocked(PhaseAnnouncing, title)
	}()
}

// onAnnounceSignal handles the announcement channel's terminal signal.
// Ended or failed, the staged track starts either way.
func (p *Player) onAnnounceSignal(sig audio.Signal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.phase != PhaseAnnouncing {
		return
	}
	if sig.Kind == audio.SignalError {
		zlog.Warn().Msgf("player: announcement error, continuing to track: code=%s", sig.Code)
	}
	p.startPrimaryLocked(p.token)
}

// startPrimaryLocked hands the staged track to the primary channel. The
// staged track is consumed; the announcement channel is paused first so the
// two are never audible together.
func (p *Player) startPrimaryLocked(token uint64) {
	p.announce.Pause()

	if p.staged == nil {
		// Nothing staged: a manual skip or stop won the race.
		if p.playlist == nil {
			p.setPhaseLocked(PhaseIdle, "")
		}
		return
	}
	staged := *p.staged
	p.staged = nil

	if err := p.primary.Load(staged.StreamURL); err != nil {
		p.handlePlaybackErrorLocked(token, audio.ErrCodeUnsupported, err)
		return
	}
	if err := p.primary.Play(); err != nil {
		p.handlePlaybackErrorLocked(token, audio.ErrCodeBlocked, err)
		return
	}
	p.setPhaseLocked(PhasePlaying, staged.Title)
}

// onPrimarySignal handles the primary channel's terminal signal.
func (p *Player) onPrimarySignal(sig audio.Signal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.phase != PhasePlaying {
		return
	}
	if sig.Kind == audio.SignalEnded {
		p.failStreak = 0
		p.advanceLocked(p.token)
		return
	}
	p.handlePlaybackErrorLocked(p.token, sig.Code, sig.Err)
}

// advanceLocked moves to the next playlist item, or finishes when no
// playlist is active.
func (p *Player) advanceLocked(token uint64) {
	if p.playlist == nil {
		p.setPhaseLocked(PhaseFinished, p.title)
		return
	}
	item := p.playlist.Advance()
	p.resolveLocked(token, item)
}

// handlePlaybackErrorLocked applies the recovery rule for a failed playback
// attempt: fatal without a playlist, skip-and-advance with one.
func (p *Player) handlePlaybackErrorLocked(token uint64, code audio.ErrorCode, err error) {
	if p.playlist == nil {
		p.failLocked(errors.Wrapf(err, "playback error (%s)", code).Error())
		return
	}
	p.skipCurrentLocked(token, errors.Wrapf(err, "playback error (%s)", code).Error())
}

// skipCurrentLocked treats the current playlist item as skipped: report a
// transient error, wait the retry delay, then advance. Consecutive failures
// across one full playlist cycle abort the playlist instead of spinning
// through it forever.
func (p *Player) skipCurrentLocked(token uint64, reason string) {
	p.failStreak++
	zlog.Warn().Msgf("player: skipping item: reason=%s streak=%d/%d", reason, p.failStreak, p.playlist.Len())
	p.sink.OnError(reason, false)

	if p.failStreak >= p.playlist.Len() {
		p.failLocked(ErrExhaustedPlaylist.Error())
		return
	}

	if p.retryCancel != nil {
		p.retryCancel()
	}
	timer := time.AfterFunc(p.config.RetryDelay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.retryCancel = nil
		if token != p.token {
			return
		}
		p.advanceLocked(token)
	})
	p.retryCancel = func() { timer.Stop() }
}

// failLocked transitions to Failed, surfaces a persistent error and hides
// the now-playing indicator. A playlist-level fatal error clears the
// playlist entirely.
func (p *Player) failLocked(message string) {
	p.playlist = nil
	p.staged = nil
	p.failStreak = 0
	p.lastError = message
	p.sink.OnError(message, true)
	p.setPhaseLocked(PhaseFailed, "")
}

// setPhaseLocked records the phase and pushes it to the presentation sink
// along with the current title and playlist position.
func (p *Player) setPhaseLocked(phase Phase, title string) {
	p.phase = phase
	p.title = title
	p.sink.OnPhaseChange(phase.String(), title, p.positionLocked())
}

func (p *Player) positionLocked() *presentation.Position {
	if p.playlist == nil {
		return nil
	}
	index, total := p.playlist.Position()
	return &presentation.Position{Index: index, Total: total}
}

// pump forwards a channel's terminal signals into the state machine until
// the player is closed.
func (p *Player) pump(signals <-chan audio.Signal, handle func(audio.Signal)) {
	for {
		select {
		case <-p.ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			handle(sig)
		}
	}
}
