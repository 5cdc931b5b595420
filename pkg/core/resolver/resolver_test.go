package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/cadencebot/cadence/pkg/core"
	"github.com/cadencebot/cadence/pkg/core/queue"
	"github.com/cadencebot/cadence/pkg/spotify"
)

type mockCatalog struct {
	track      spotify.TrackEntry
	trackErr   error
	listInfo   spotify.ListInfo
	list       []spotify.TrackEntry
	listErr    error
	lastKind   string
	lastListID string
}

func (m *mockCatalog) Track(_ context.Context, trackID string) (spotify.TrackEntry, error) {
	return m.track, m.trackErr
}

func (m *mockCatalog) ListTracks(_ context.Context, kind, listID string) (spotify.ListInfo, []spotify.TrackEntry, error) {
	m.lastKind = kind
	m.lastListID = listID
	return m.listInfo, m.list, m.listErr
}

func TestResolveTrackLink(t *testing.T) {
	catalog := &mockCatalog{
		track: spotify.TrackEntry{ID: "t1", Title: "Song", Artist: "Artist", DurationMs: 180000},
	}
	r := NewResolver(catalog, "ytsearch")

	items, err := r.Resolve(context.Background(), "https://open.spotify.com/track/t1?si=abc", "user-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	item := items[0]
	if item.Source != queue.SourceSpotify || item.SpotifyID != "t1" {
		t.Errorf("item = %+v", item)
	}
	if item.Title != "Song" || item.Artist != "Artist" || item.Duration != 180000 {
		t.Errorf("metadata not carried over: %+v", item)
	}
	if item.Requester != "user-1" {
		t.Errorf("requester = %q", item.Requester)
	}
}

func TestResolvePlaylistLink(t *testing.T) {
	catalog := &mockCatalog{
		listInfo: spotify.ListInfo{Name: "Mix", Author: "someone"},
		list: []spotify.TrackEntry{
			{ID: "t1", Title: "One", Artist: "A", DurationMs: 1000},
			{ID: "t2", Title: "Two", Artist: "B", DurationMs: 2000},
		},
	}
	r := NewResolver(catalog, "ytsearch")

	items, err := r.Resolve(context.Background(), "open.spotify.com/playlist/pl1", "user-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if catalog.lastKind != "playlist" || catalog.lastListID != "pl1" {
		t.Errorf("catalog asked for %s/%s", catalog.lastKind, catalog.lastListID)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[1].SpotifyID != "t2" {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestResolveSingleTrackListMatchesTrackShape(t *testing.T) {
	entry := spotify.TrackEntry{ID: "t1", Title: "One", Artist: "A", DurationMs: 1000}
	fromList := &mockCatalog{list: []spotify.TrackEntry{entry}}
	fromTrack := &mockCatalog{track: entry}

	listItems, err := NewResolver(fromList, "ytsearch").
		Resolve(context.Background(), "https://open.spotify.com/album/al1", "user-1")
	if err != nil {
		t.Fatalf("Resolve album: %v", err)
	}
	trackItems, err := NewResolver(fromTrack, "ytsearch").
		Resolve(context.Background(), "https://open.spotify.com/track/t1", "user-1")
	if err != nil {
		t.Fatalf("Resolve track: %v", err)
	}
	if listItems[0] != trackItems[0] {
		t.Errorf("shapes diverge: %+v vs %+v", listItems[0], trackItems[0])
	}
}

func TestResolveEmptyList(t *testing.T) {
	r := NewResolver(&mockCatalog{}, "ytsearch")
	_, err := r.Resolve(context.Background(), "https://open.spotify.com/playlist/empty", "user-1")
	if !errors.Is(err, core.ErrEmptySource) {
		t.Fatalf("error = %v, want core.ErrEmptySource", err)
	}
}

func TestResolveUnsupportedCatalogKind(t *testing.T) {
	r := NewResolver(&mockCatalog{}, "ytsearch")
	_, err := r.Resolve(context.Background(), "https://open.spotify.com/show/pod1", "user-1")
	if !errors.Is(err, core.ErrInvalidReference) {
		t.Fatalf("error = %v, want core.ErrInvalidReference", err)
	}
}

func TestResolvePlainURL(t *testing.T) {
	r := NewResolver(&mockCatalog{}, "ytsearch")
	items, err := r.Resolve(context.Background(), "<https://example.com/audio.mp3>", "user-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if items[0].Source != queue.SourceURL || items[0].URL != "https://example.com/audio.mp3" {
		t.Errorf("item = %+v", items[0])
	}
}

func TestResolveSearchPrefixPassthrough(t *testing.T) {
	r := NewResolver(&mockCatalog{}, "ytsearch")
	items, err := r.Resolve(context.Background(), "scsearch:lofi beats", "user-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if items[0].Source != queue.SourceSearch || items[0].SearchQuery != "scsearch:lofi beats" {
		t.Errorf("item = %+v", items[0])
	}
}

func TestResolvePlainTextGetsDefaultPrefix(t *testing.T) {
	r := NewResolver(&mockCatalog{}, "scsearch")
	items, err := r.Resolve(context.Background(), "never gonna give you up", "user-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if items[0].SearchQuery != "scsearch:never gonna give you up" {
		t.Errorf("query = %q", items[0].SearchQuery)
	}
}
