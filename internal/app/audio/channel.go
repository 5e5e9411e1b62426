// Package audio defines the playable channel contract used by the player.
package audio

// Channel wraps one playable media sink. Load sets the next source without
// playing it, Play begins playback asynchronously, and Pause stops without
// discarding position. Every playback attempt produces exactly one terminal
// signal on Signals. A channel never sequences anything on its own; all
// advancing decisions belong to the caller, which must not call Play again
// until the previous attempt's terminal signal has fired or the channel has
// been paused.
type Channel interface {
	// Load sets the source URL for the next playback attempt.
	Load(url string) error
	// Play begins or resumes playback. Errors detected before playback
	// starts are returned directly; later failures arrive as a terminal
	// error signal.
	Play() error
	// Pause stops playback without discarding position. No terminal
	// signal is emitted for a paused attempt.
	Pause()
	// Signals delivers the terminal signal of each playback attempt.
	Signals() <-chan Signal
}

// SignalKind distinguishes the two terminal outcomes of a playback attempt.
type SignalKind int

const (
	SignalEnded SignalKind = iota // Natural completion
	SignalError                   // Playback failed
)

// String returns the string representation of the signal kind.
func (k SignalKind) String() string {
	switch k {
	case SignalEnded:
		return "ended"
	case SignalError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrorCode classifies a playback failure.
type ErrorCode int

const (
	ErrCodeNone        ErrorCode = iota // No error (Kind == SignalEnded)
	ErrCodeAborted                      // Playback was aborted
	ErrCodeNetwork                      // Stream fetch failed mid-playback
	ErrCodeDecode                       // Stream could not be decoded
	ErrCodeUnsupported                  // Unsupported media format
	ErrCodeBlocked                      // Output device refused to start
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNone:
		return "none"
	case ErrCodeAborted:
		return "aborted"
	case ErrCodeNetwork:
		return "network"
	case ErrCodeDecode:
		return "decode"
	case ErrCodeUnsupported:
		return "unsupported"
	case ErrCodeBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Signal is the one-time event ending a single playback attempt.
type Signal struct {
	Kind SignalKind
	Code ErrorCode // Set when Kind == SignalError
	Err  error     // Underlying cause, optional
}
