// Package speech defines the announcement synthesis contract.
package speech

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// MaxTextLength is the longest text a synthesizer accepts.
const MaxTextLength = 200

// Errors
var (
	ErrTextTooLong = errors.Newf("text exceeds %d characters", MaxTextLength)
	ErrUnavailable = errors.New("speech synthesis unavailable")
)

// Synthesizer turns announcement text into a playable audio URL.
type Synthesizer interface {
	// Synthesize returns a URL that plays the spoken form of text.
	// Fails with ErrTextTooLong or ErrUnavailable.
	Synthesize(ctx context.Context, text string) (string, error)
}

// Announcement renders the announcement text for a track title using the
// configured template, truncating the result to fit the synthesizer limit.
// The template must contain a single %s verb for the title.
func Announcement(template, title string) string {
	if template == "" {
		template = "Up next: %s"
	}
	text := fmt.Sprintf(template, title)
	if runes := []rune(text); len(runes) > MaxTextLength {
		text = string(runes[:MaxTextLength])
	}
	return text
}
