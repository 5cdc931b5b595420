package spotify

import (
	"context"
	"fmt"
	"time"

	"github.com/cadencebot/cadence/pkg/core"

	"github.com/Laky-64/gologging"
)

const (
	// The playlist endpoints tolerate at most createCalls creations per
	// createWindow; the limiter admits one call per interval with no
	// burst, so no window ever sees more than createCalls of them, and
	// blocks callers instead of letting the provider reject them.
	createCalls  = 10
	createWindow = 5 * time.Second

	// addBatchSize is the provider's cap on URIs per add-tracks call.
	addBatchSize = 100
	batchPause   = 250 * time.Millisecond
)

// PlaylistRef identifies a playlist that was just created.
type PlaylistRef struct {
	ID   string
	Name string
	URL  string
}

// CreatePlaylist creates a private playlist on the user's account and fills
// it with trackURIs in provider-sized batches. The possibly refreshed
// credentials are returned so the caller can persist them. Batches already
// written are not rolled back when a later one fails.
func (c *Client) CreatePlaylist(ctx context.Context, creds Credentials, displayName string, trackURIs []string) (Credentials, PlaylistRef, error) {
	if len(trackURIs) == 0 {
		return creds, PlaylistRef{}, fmt.Errorf("%w: nothing to save", core.ErrEmptySource)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return creds, PlaylistRef{}, err
	}

	creds, err := c.EnsureFresh(ctx, creds)
	if err != nil {
		return creds, PlaylistRef{}, err
	}

	var me struct {
		ID string `json:"id"`
	}
	if err := c.getUser(ctx, "/me", creds.AccessToken, &me); err != nil {
		return creds, PlaylistRef{}, err
	}

	var created struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
	}
	body := map[string]any{
		"name":          fmt.Sprintf("Cadence dump (%s)", c.now().In(c.loc).Format("Jan 2, 2006")),
		"public":        false,
		"collaborative": false,
		"description":   fmt.Sprintf("Songs recommended to %s through the Cadence music bot", displayName),
	}
	err = c.do(ctx, c.http, "POST", c.api+"/users/"+me.ID+"/playlists", creds.AccessToken, body, &created)
	if err != nil {
		return creds, PlaylistRef{}, err
	}

	gologging.InfoF("[spotify] Created playlist %s for %s, adding %d tracks.", created.ID, displayName, len(trackURIs))

	for start := 0; start < len(trackURIs); start += addBatchSize {
		end := start + addBatchSize
		if end > len(trackURIs) {
			end = len(trackURIs)
		}
		batch := map[string]any{"uris": trackURIs[start:end]}
		err = c.do(ctx, c.http, "POST", c.api+"/playlists/"+created.ID+"/tracks", creds.AccessToken, batch, nil)
		if err != nil {
			return creds, PlaylistRef{}, err
		}
		if end < len(trackURIs) {
			select {
			case <-time.After(batchPause):
			case <-ctx.Done():
				return creds, PlaylistRef{}, ctx.Err()
			}
		}
	}

	ref := PlaylistRef{ID: created.ID, Name: created.Name, URL: created.ExternalURLs.Spotify}
	if ref.URL == "" {
		ref.URL = "https://open.spotify.com/playlist/" + created.ID
	}
	return creds, ref, nil
}
