// Package media provides the media item domain entities.
package media

// Item represents a single entry in catalog search or playlist results.
// Identity is the ID; everything else is display metadata. Items are
// immutable once received from the catalog.
type Item struct {
	ID            string // Catalog item ID
	Title         string // Display title
	DurationLabel string // Human-readable duration (e.g. "3:42"), optional
	ThumbnailURL  string // Thumbnail image URL, optional
}

// ResolvedTrack is the playable form of an Item as returned by the catalog's
// resolve call. It is ephemeral and never cached across selections.
type ResolvedTrack struct {
	StreamURL       string // Direct audio stream URL
	Title           string // Authoritative title (preferred over Item.Title)
	DurationSeconds int    // Reported stream duration
}
