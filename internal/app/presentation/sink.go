// Package presentation defines how player state is reflected to observers.
package presentation

// Position is the 1-based playlist position shown next to the title.
type Position struct {
	Index int // 1-based position of the current item
	Total int // Playlist length
}

// Sink receives every player state change. The player is the single owner
// of its phase, playlist and staged track; sinks only observe.
type Sink interface {
	// OnPhaseChange reports the new phase, the current title ("" if none)
	// and the playlist position (nil when no playlist is active).
	OnPhaseChange(phase string, title string, position *Position)
	// OnError reports a failure. Fatal errors end playback; non-fatal
	// ones are transient while playlist playback keeps progressing.
	OnError(message string, isFatal bool)
	// OnLoadingStateChange reports whether a network fetch is in flight.
	OnLoadingStateChange(isLoading bool, message string)
}
