// Package pkg wires the playback core together for a frontend embedding it.
package pkg

import (
	"context"

	"github.com/cadencebot/cadence/pkg/config"
	"github.com/cadencebot/cadence/pkg/core/db"
	"github.com/cadencebot/cadence/pkg/core/resolver"
	"github.com/cadencebot/cadence/pkg/handlers"
	"github.com/cadencebot/cadence/pkg/player"
	"github.com/cadencebot/cadence/pkg/spotify"

	"github.com/Laky-64/gologging"
)

// Init loads the configuration, connects the document store, and assembles
// the capability module around the caller's audio backend. The returned
// module is ready for command dispatch.
func Init(ctx context.Context, backend player.AudioBackend) (*handlers.Module, error) {
	gologging.SetLevel(gologging.InfoLevel)

	if err := config.LoadConfig(); err != nil {
		return nil, err
	}
	if err := db.InitDatabase(ctx); err != nil {
		return nil, err
	}

	client := spotify.New(spotify.Config{
		ClientID:     config.Conf.SpotifyClientId,
		ClientSecret: config.Conf.SpotifyClientSecret,
		RedirectURI:  config.Conf.SpotifyRedirectUri,
		Timezone:     config.Conf.Timezone,
	})
	res := resolver.NewResolver(client, config.Conf.DefaultSearch)
	engine := player.NewEngine(db.Instance, res, backend)

	gologging.Info("[cadence] The playback core is ready.")
	return &handlers.Module{
		Engine:   engine,
		Resolver: res,
		Spotify:  client,
		Tokens:   db.Instance,
	}, nil
}
