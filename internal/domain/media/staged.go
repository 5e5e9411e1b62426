package media

// StagedTrack is the track queued to start on the primary channel once the
// announcement for it finishes. At most one exists at a time: staging a new
// track abandons any unconsumed predecessor, and handing a staged track to
// the primary channel consumes it.
type StagedTrack struct {
	StreamURL string
	Title     string
}

// Stage builds a StagedTrack from a resolved track, falling back to the
// search-result title when the resolver did not report one.
func Stage(rt ResolvedTrack, fallbackTitle string) StagedTrack {
	title := rt.Title
	if title == "" {
		title = fallbackTitle
	}
	return StagedTrack{
		StreamURL: rt.StreamURL,
		Title:     title,
	}
}
