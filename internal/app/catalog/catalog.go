// Package catalog defines the remote media catalog contract and its
// provider implementations' shared error taxonomy.
package catalog

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/herald-audio/herald/internal/domain/media"
)

// Errors
var (
	ErrInvalidInput = errors.New("empty query or id")
	ErrUnavailable  = errors.New("catalog unavailable")
	ErrNotFound     = errors.New("item not found")
	ErrRestricted   = errors.New("item is restricted")
	ErrUnresolvable = errors.New("no playable stream for item")
	ErrEmpty        = errors.New("no playable items returned")
)

// Listing is a named, ordered list of items as returned by a playlist fetch.
type Listing struct {
	Title string
	Items []media.Item
}

// Catalog is the stateless request/response collaborator the player talks
// to. Implementations map their upstream's failures onto the package error
// sentinels so callers can branch with errors.Is.
type Catalog interface {
	// Search returns up to limit items matching the query.
	// Fails with ErrInvalidInput or ErrUnavailable.
	Search(ctx context.Context, query string, limit int) ([]media.Item, error)

	// Resolve turns an item ID into a directly playable stream.
	// Fails with ErrNotFound, ErrRestricted or ErrUnresolvable.
	Resolve(ctx context.Context, itemID string) (media.ResolvedTrack, error)

	// Playlist fetches a playlist's title and ordered items.
	// Fails with ErrNotFound or ErrEmpty.
	Playlist(ctx context.Context, playlistID string) (Listing, error)

	// Name returns the provider name (used in config).
	Name() string
}
