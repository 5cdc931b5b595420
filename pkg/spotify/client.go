// Package spotify implements the read-only catalog client and the OAuth
// token lifecycle for the Spotify Web API. Catalog metadata is fetched with
// an application token; user-scoped calls carry the user's bearer token and
// go through EnsureFresh first.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cadencebot/cadence/pkg/core"
	"github.com/cadencebot/cadence/pkg/core/cache"

	"github.com/Laky-64/gologging"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	authURL  = "https://accounts.spotify.com/authorize"
	tokenURL = "https://accounts.spotify.com/api/token"
	apiBase  = "https://api.spotify.com/v1"

	artCacheTTL = 20 * time.Minute
)

// Config holds the Spotify application settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Timezone     string // IANA zone used when naming created playlists.
}

// Client talks to the Spotify Web API. All methods are safe for concurrent
// use; the playlist-creation limiter is shared across the whole process.
type Client struct {
	conf    *oauth2.Config
	app     *http.Client
	http    *http.Client
	api     string
	limiter *rate.Limiter
	art     *cache.Cache[string]
	loc     *time.Location
	now     func() time.Time

	mu        sync.Mutex
	refreshes map[string]*refreshState
}

// refreshState guards one user's refresh and remembers its result, so
// callers holding an already-replaced token reuse it instead of spending
// their stale refresh token on a second round trip.
type refreshState struct {
	mu    sync.Mutex
	creds Credentials
	done  bool
}

// New creates a Client for the given application credentials.
func New(cfg Config) *Client {
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}

	app := (&clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}).Client(context.Background())

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		gologging.WarnF("[spotify] Unknown timezone %q, falling back to UTC.", cfg.Timezone)
		loc = time.UTC
	}

	return &Client{
		conf:         conf,
		app:          app,
		http:         http.DefaultClient,
		api:          apiBase,
		limiter:      rate.NewLimiter(rate.Every(createWindow/createCalls), 1),
		art:          cache.New[string](artCacheTTL),
		loc:          loc,
		now:          time.Now,
		refreshes:    make(map[string]*refreshState),
	}
}

// ----------------- HTTP plumbing -----------------

// apiError is the error envelope Spotify wraps non-2xx responses in.
type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// do performs a request and decodes the JSON response into out.
// A non-2xx status becomes a core.ExternalServiceError, except for the
// missing-scope rejection which maps to core.ErrInsufficientScope.
func (c *Client) do(ctx context.Context, httpc *http.Client, method, url, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode the request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create the request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return fmt.Errorf("the request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var envelope apiError
		if json.Unmarshal(raw, &envelope) == nil &&
			strings.EqualFold(envelope.Error.Message, "Insufficient client scope") {
			return core.ErrInsufficientScope
		}
		return &core.ExternalServiceError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode the response: %w", err)
		}
	}
	return nil
}

// getApp performs a catalog read with the application token.
func (c *Client) getApp(ctx context.Context, path string, out any) error {
	return c.do(ctx, c.app, http.MethodGet, c.api+path, "", nil, out)
}

// getUser performs a read on the user's behalf with their bearer token.
func (c *Client) getUser(ctx context.Context, path, bearer string, out any) error {
	return c.do(ctx, c.http, http.MethodGet, c.api+path, bearer, nil, out)
}

// ----------------- CATALOG READS -----------------

// image is one entry of a Spotify artwork list.
type image struct {
	URL string `json:"url"`
}

// apiTrack is the subset of a Spotify track object this core consumes.
// Playlist entries nest it one level inside a wrapper object.
type apiTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DurationMs int    `json:"duration_ms"`
	Artists    []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Images []image `json:"images"`
	} `json:"album"`
}

// TrackEntry is the normalized shape of one catalog track: title, primary
// artist, catalog id, and duration in milliseconds.
type TrackEntry struct {
	ID         string
	Title      string
	Artist     string
	DurationMs int
}

// ListInfo names an album or playlist and its author.
type ListInfo struct {
	Name   string
	Author string
}

// normalize flattens an apiTrack into a TrackEntry.
func normalize(t apiTrack) TrackEntry {
	entry := TrackEntry{ID: t.ID, Title: t.Name, DurationMs: t.DurationMs}
	if len(t.Artists) > 0 {
		entry.Artist = t.Artists[0].Name
	}
	return entry
}

// Track fetches metadata for a single track.
func (c *Client) Track(ctx context.Context, trackID string) (TrackEntry, error) {
	var track apiTrack
	if err := c.getApp(ctx, "/tracks/"+trackID, &track); err != nil {
		return TrackEntry{}, err
	}
	return normalize(track), nil
}

// ListTracks fetches the name and author of an album or playlist, then pages
// through its track listing until an empty page is returned. Any other kind
// fails with core.ErrInvalidReference.
func (c *Client) ListTracks(ctx context.Context, kind, listID string) (ListInfo, []TrackEntry, error) {
	var info ListInfo

	switch kind {
	case "album":
		var album struct {
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		}
		if err := c.getApp(ctx, "/albums/"+listID, &album); err != nil {
			return ListInfo{}, nil, err
		}
		info.Name = album.Name
		if len(album.Artists) > 0 {
			info.Author = album.Artists[0].Name
		}
	case "playlist":
		var playlist struct {
			Name  string `json:"name"`
			Owner struct {
				DisplayName string `json:"display_name"`
			} `json:"owner"`
		}
		if err := c.getApp(ctx, "/playlists/"+listID+"?fields=name,owner.display_name", &playlist); err != nil {
			return ListInfo{}, nil, err
		}
		info.Name = playlist.Name
		info.Author = playlist.Owner.DisplayName
	default:
		return ListInfo{}, nil, fmt.Errorf("%w: spotify:%s:%s", core.ErrInvalidReference, kind, listID)
	}

	var entries []TrackEntry
	for offset := 0; ; {
		page, err := c.listPage(ctx, kind, listID, offset)
		if err != nil {
			return ListInfo{}, nil, err
		}
		if len(page) == 0 {
			break
		}
		entries = append(entries, page...)
		offset += len(page)
	}

	return info, entries, nil
}

// listPage fetches one page of an album or playlist track listing.
func (c *Client) listPage(ctx context.Context, kind, listID string, offset int) ([]TrackEntry, error) {
	if kind == "album" {
		var page struct {
			Items []apiTrack `json:"items"`
		}
		path := fmt.Sprintf("/albums/%s/tracks?limit=50&offset=%d", listID, offset)
		if err := c.getApp(ctx, path, &page); err != nil {
			return nil, err
		}
		entries := make([]TrackEntry, 0, len(page.Items))
		for _, item := range page.Items {
			entries = append(entries, normalize(item))
		}
		return entries, nil
	}

	// Playlist entries wrap the track one level deep.
	var page struct {
		Items []struct {
			Track *apiTrack `json:"track"`
		} `json:"items"`
	}
	path := fmt.Sprintf("/playlists/%s/tracks?limit=100&offset=%d&additional_types=track", listID, offset)
	if err := c.getApp(ctx, path, &page); err != nil {
		return nil, err
	}
	entries := make([]TrackEntry, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Track == nil {
			continue
		}
		entries = append(entries, normalize(*item.Track))
	}
	return entries, nil
}

// TopItems returns the IDs of the user's top tracks and top artists. A call
// rejected for missing scope fails with core.ErrInsufficientScope so the
// caller can ask for re-authorization instead of retrying.
func (c *Client) TopItems(ctx context.Context, accessToken string) (trackIDs, artistIDs []string, err error) {
	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}

	if err := c.getUser(ctx, "/me/top/tracks", accessToken, &page); err != nil {
		return nil, nil, err
	}
	for _, item := range page.Items {
		trackIDs = append(trackIDs, item.ID)
	}

	page.Items = nil
	if err := c.getUser(ctx, "/me/top/artists", accessToken, &page); err != nil {
		return nil, nil, err
	}
	for _, item := range page.Items {
		artistIDs = append(artistIDs, item.ID)
	}

	return trackIDs, artistIDs, nil
}

// ----------------- ARTWORK -----------------

// firstImage returns the first image URL of a list, or def when empty.
func firstImage(images []image, def string) string {
	if len(images) == 0 {
		return def
	}
	return images[0].URL
}

// TrackArt returns the album artwork URL for a track, or "" when none.
func (c *Client) TrackArt(ctx context.Context, trackID string) (string, error) {
	key := "track:" + trackID
	if url, ok := c.art.Get(key); ok {
		return url, nil
	}
	var track apiTrack
	if err := c.getApp(ctx, "/tracks/"+trackID, &track); err != nil {
		return "", err
	}
	url := firstImage(track.Album.Images, "")
	c.art.Set(key, url)
	return url, nil
}

// AlbumArt returns the artwork URL for an album, or "" when none.
func (c *Client) AlbumArt(ctx context.Context, albumID string) (string, error) {
	return c.cachedImages(ctx, "album:"+albumID, "/albums/"+albumID, "")
}

// ArtistImage returns the image URL for an artist, or "" when none.
func (c *Client) ArtistImage(ctx context.Context, artistID string) (string, error) {
	return c.cachedImages(ctx, "artist:"+artistID, "/artists/"+artistID, "")
}

// PlaylistCover returns the cover URL for a playlist, or def when the
// provider returns no images.
func (c *Client) PlaylistCover(ctx context.Context, playlistID, def string) (string, error) {
	key := "playlist:" + playlistID
	if url, ok := c.art.Get(key); ok {
		if url == "" {
			return def, nil
		}
		return url, nil
	}
	var images []image
	if err := c.getApp(ctx, "/playlists/"+playlistID+"/images", &images); err != nil {
		return "", err
	}
	c.art.Set(key, firstImage(images, ""))
	return firstImage(images, def), nil
}

// cachedImages fetches an entity carrying a top-level images list.
func (c *Client) cachedImages(ctx context.Context, key, path, def string) (string, error) {
	if url, ok := c.art.Get(key); ok {
		return url, nil
	}
	var entity struct {
		Images []image `json:"images"`
	}
	if err := c.getApp(ctx, path, &entity); err != nil {
		return "", err
	}
	url := firstImage(entity.Images, def)
	c.art.Set(key, url)
	return url, nil
}
