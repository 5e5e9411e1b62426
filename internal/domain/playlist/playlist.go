// Package playlist provides the playlist cursor domain entity.
package playlist

import (
	"github.com/cockroachdb/errors"

	"github.com/herald-audio/herald/internal/domain/media"
)

// ErrEmpty is returned when a cursor is constructed from zero items.
var ErrEmpty = errors.New("playlist has no items")

// Cursor tracks an ordered list of items and the current position within it.
// The playlist loops indefinitely: advancing past the last item wraps back
// to the first. A Cursor is never empty; the constructor rejects empty lists.
type Cursor struct {
	title string
	items []media.Item
	index int
}

// NewCursor creates a cursor positioned at the first item.
func NewCursor(title string, items []media.Item) (*Cursor, error) {
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	copied := make([]media.Item, len(items))
	copy(copied, items)
	return &Cursor{
		title: title,
		items: copied,
	}, nil
}

// Title returns the playlist title.
func (c *Cursor) Title() string {
	return c.title
}

// Len returns the number of items in the playlist.
func (c *Cursor) Len() int {
	return len(c.items)
}

// Current returns the item at the current position without moving it.
func (c *Cursor) Current() media.Item {
	return c.items[c.index]
}

// Advance moves to the next item, wrapping to the first after the last,
// and returns the item now at the current position.
func (c *Cursor) Advance() media.Item {
	c.index = (c.index + 1) % len(c.items)
	return c.items[c.index]
}

// Position returns the 1-based position of the current item and the total
// item count, for display as "(position/total)".
func (c *Cursor) Position() (int, int) {
	return c.index + 1, len(c.items)
}
