package presentation

import (
	zlog "github.com/rs/zerolog/log"
)

// LogSink writes every state change to the structured log. It's the default
// sink when no richer frontend is attached.
type LogSink struct{}

func (LogSink) OnPhaseChange(phase string, title string, position *Position) {
	ev := zlog.Info().Str("phase", phase)
	if title != "" {
		ev = ev.Str("title", title)
	}
	if position != nil {
		ev = ev.Int("position", position.Index).Int("total", position.Total)
	}
	ev.Msg("player state")
}

func (LogSink) OnError(message string, isFatal bool) {
	if isFatal {
		zlog.Error().Msgf("playback failed: %s", message)
		return
	}
	zlog.Warn().Msgf("playback hiccup: %s", message)
}

func (LogSink) OnLoadingStateChange(isLoading bool, message string) {
	if isLoading {
		zlog.Debug().Msgf("loading: %s", message)
	}
}
