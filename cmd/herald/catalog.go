package main

import (
	"context"
	"fmt"

	zlog "github.com/rs/zerolog/log"

	"github.com/herald-audio/herald/internal/app/catalog"
	"github.com/herald-audio/herald/internal/infra/config"
	"github.com/herald-audio/herald/internal/infra/invidious"
	"github.com/herald-audio/herald/internal/infra/spotify"
)

type providerInfo struct {
	name        string
	description string
}

func registeredProviders() []providerInfo {
	return []providerInfo{
		{"invidious", "Video catalog via an Invidious instance (settings: base_url)"},
		{"spotify", "Spotify track catalog (settings: client_id, client_secret, refresh_token)"},
	}
}

// buildCatalog constructs the provider chain from configuration. Providers
// are tried in the order configured.
func buildCatalog(ctx context.Context, configs []config.ProviderConfig) (catalog.Catalog, error) {
	providers := make([]catalog.Catalog, 0, len(configs))

	for _, pc := range configs {
		var (
			p   catalog.Catalog
			err error
		)
		switch pc.Type {
		case "invidious":
			p, err = invidious.New(pc.Settings)
		case "spotify":
			p, err = spotify.New(ctx, pc.Settings)
		default:
			return nil, fmt.Errorf("unknown catalog provider type: %s", pc.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %s provider: %w", pc.Type, err)
		}
		zlog.Info().Msgf("Registered catalog provider: %s", p.Name())
		providers = append(providers, p)
	}

	if len(providers) == 1 {
		return providers[0], nil
	}
	return catalog.NewChain(providers), nil
}
