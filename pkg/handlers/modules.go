// Package handlers exposes the playback core as a table of named
// capabilities, so a chat frontend can dispatch commands without the core
// knowing anything about the chat platform.
package handlers

import (
	"context"
	"fmt"

	"github.com/cadencebot/cadence/pkg/core"
	"github.com/cadencebot/cadence/pkg/core/queue"
	"github.com/cadencebot/cadence/pkg/player"
	"github.com/cadencebot/cadence/pkg/spotify"
)

// Request carries the inputs a capability may need. Each capability reads
// only the fields it documents.
type Request struct {
	ChannelID string
	UserID    string
	Query     string
	Interrupt bool
	Volume    int
	Repeat    bool
	// DisplayName and TrackURIs feed playlist creation.
	DisplayName string
	TrackURIs   []string
}

// Response is the union of capability results; only the fields relevant to
// the invoked capability are set.
type Response struct {
	Outcome  *player.Outcome
	Items    []queue.Item
	Now      *player.NowPlaying
	Auth     *spotify.AuthRequest
	Playlist *spotify.PlaylistRef
}

// Capability is one named operation of the core.
type Capability func(ctx context.Context, req Request) (Response, error)

// Module wires the playback engine, the catalog client and the credential
// store into the capability table.
type Module struct {
	Engine   *player.Engine
	Resolver player.Resolver
	Spotify  *spotify.Client
	Tokens   spotify.CredentialStore
}

// Capabilities returns the table a frontend dispatches commands through.
func (m *Module) Capabilities() map[string]Capability {
	return map[string]Capability{
		"resolve":        m.resolve,
		"play":           m.play,
		"skip":           m.skip,
		"pause":          m.pause,
		"unpause":        m.unpause,
		"volume":         m.volume,
		"loop":           m.loop,
		"stop":           m.stop,
		"nowplaying":     m.nowPlaying,
		"authorize":      m.authorize,
		"createplaylist": m.createPlaylist,
	}
}

func (m *Module) resolve(ctx context.Context, req Request) (Response, error) {
	items, err := m.Resolver.Resolve(ctx, req.Query, req.UserID)
	if err != nil {
		return Response{}, err
	}
	return Response{Items: items}, nil
}

func (m *Module) play(ctx context.Context, req Request) (Response, error) {
	outcome, err := m.Engine.StartOrResume(ctx, req.ChannelID, req.Query, req.UserID)
	if err != nil {
		return Response{}, err
	}
	return Response{Outcome: &outcome}, nil
}

func (m *Module) skip(ctx context.Context, req Request) (Response, error) {
	outcome, err := m.Engine.Advance(ctx, req.ChannelID, req.Interrupt)
	if err != nil {
		return Response{}, err
	}
	return Response{Outcome: &outcome}, nil
}

func (m *Module) pause(ctx context.Context, req Request) (Response, error) {
	return Response{}, m.Engine.Pause(ctx, req.ChannelID)
}

func (m *Module) unpause(ctx context.Context, req Request) (Response, error) {
	return Response{}, m.Engine.Unpause(ctx, req.ChannelID)
}

func (m *Module) volume(ctx context.Context, req Request) (Response, error) {
	return Response{}, m.Engine.SetVolume(ctx, req.ChannelID, req.Volume)
}

func (m *Module) loop(ctx context.Context, req Request) (Response, error) {
	return Response{}, m.Engine.Loop(ctx, req.ChannelID, req.Repeat)
}

func (m *Module) stop(ctx context.Context, req Request) (Response, error) {
	return Response{}, m.Engine.Stop(ctx, req.ChannelID)
}

func (m *Module) nowPlaying(ctx context.Context, req Request) (Response, error) {
	now, err := m.Engine.NowPlaying(ctx, req.ChannelID)
	if err != nil {
		return Response{}, err
	}
	return Response{Now: &now}, nil
}

// authorize starts the OAuth dance for the requesting user. The frontend is
// expected to deliver Auth.URL to the user and hold Verifier and State for
// the callback.
func (m *Module) authorize(_ context.Context, _ Request) (Response, error) {
	auth := m.Spotify.NewAuthRequest()
	return Response{Auth: &auth}, nil
}

// createPlaylist saves the given track URIs to a fresh playlist on the
// user's account. The user must have completed authorization before.
func (m *Module) createPlaylist(ctx context.Context, req Request) (Response, error) {
	creds, err := m.Tokens.Credentials(ctx, req.UserID)
	if err != nil {
		return Response{}, err
	}
	if creds == nil {
		return Response{}, fmt.Errorf("%w: run authorize first", core.ErrNotAuthorized)
	}

	fresh, ref, err := m.Spotify.CreatePlaylist(ctx, *creds, req.DisplayName, req.TrackURIs)
	if err != nil {
		return Response{}, err
	}
	if fresh.AccessToken != creds.AccessToken {
		if err := m.Tokens.SaveCredentials(ctx, fresh); err != nil {
			return Response{}, err
		}
	}
	return Response{Playlist: &ref}, nil
}

// CompleteAuthorization finishes the OAuth dance once the callback owner has
// matched the state token: the code is exchanged against the verifier and
// the resulting credentials are persisted for userID.
func (m *Module) CompleteAuthorization(ctx context.Context, userID, code, verifier string) error {
	creds, err := m.Spotify.ExchangeCode(ctx, userID, code, verifier)
	if err != nil {
		return err
	}
	return m.Tokens.SaveCredentials(ctx, creds)
}
