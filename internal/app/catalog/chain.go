package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/herald-audio/herald/internal/domain/media"
)

// Chain tries multiple catalog providers in order until one answers. The
// first provider that returns a usable result wins; hard rejections that a
// retry elsewhere cannot fix (invalid input, restricted item) stop the walk
// immediately.
type Chain struct {
	providers []Catalog
}

// NewChain creates a provider chain.
func NewChain(providers []Catalog) *Chain {
	return &Chain{providers: providers}
}

// Search asks each provider in order and returns the first non-empty result.
func (c *Chain) Search(ctx context.Context, query string, limit int) ([]media.Item, error) {
	var lastErr error = ErrEmpty
	for _, p := range c.providers {
		items, err := p.Search(ctx, query, limit)
		if err != nil {
			if isTerminal(err) {
				return nil, err
			}
			zlog.Warn().Msgf("catalog search failed, trying next: provider=%s error=%v", p.Name(), err)
			lastErr = err
			continue
		}
		if len(items) == 0 {
			zlog.Debug().Msgf("catalog search returned nothing: provider=%s query=%s", p.Name(), query)
			continue
		}
		return items, nil
	}
	return nil, lastErr
}

// Resolve asks each provider in order and returns the first resolution.
func (c *Chain) Resolve(ctx context.Context, itemID string) (media.ResolvedTrack, error) {
	var lastErr error = ErrNotFound
	for _, p := range c.providers {
		rt, err := p.Resolve(ctx, itemID)
		if err != nil {
			if isTerminal(err) {
				return media.ResolvedTrack{}, err
			}
			zlog.Warn().Msgf("catalog resolve failed, trying next: provider=%s item=%s error=%v", p.Name(), itemID, err)
			lastErr = err
			continue
		}
		return rt, nil
	}
	return media.ResolvedTrack{}, lastErr
}

// Playlist asks each provider in order and returns the first listing.
func (c *Chain) Playlist(ctx context.Context, playlistID string) (Listing, error) {
	var lastErr error = ErrNotFound
	for _, p := range c.providers {
		listing, err := p.Playlist(ctx, playlistID)
		if err != nil {
			if isTerminal(err) {
				return Listing{}, err
			}
			zlog.Warn().Msgf("catalog playlist fetch failed, trying next: provider=%s playlist=%s error=%v", p.Name(), playlistID, err)
			lastErr = err
			continue
		}
		return listing, nil
	}
	return Listing{}, lastErr
}

// Name returns the chain name.
func (c *Chain) Name() string {
	return "provider_chain"
}

// isTerminal reports whether another provider could not give a different
// answer for the same request.
func isTerminal(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrRestricted)
}
