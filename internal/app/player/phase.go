// Package player provides the playback orchestration state machine tying
// the announcement and primary audio channels to the catalog and the
// speech synthesizer.
package player

// Phase represents the playback session phase. Exactly one Player owns the
// phase; it is the single source of truth for what the presentation sink
// shows.
type Phase int

const (
	PhaseIdle       Phase = iota // Nothing selected
	PhaseLoading                 // Resolving the next item
	PhaseAnnouncing              // Announcement channel is playing
	PhasePlaying                 // Primary channel is playing
	PhaseFinished                // Single item completed
	PhaseFailed                  // Unrecoverable error
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseAnnouncing:
		return "announcement_playing"
	case PhasePlaying:
		return "primary_playing"
	case PhaseFinished:
		return "finished"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}
