// Package queue defines the queue item value type persisted per channel.
package queue

import "fmt"

// Source identifies which payload field of an Item is populated.
type Source string

const (
	// SourceURL marks an item played from a direct URL.
	SourceURL Source = "url"
	// SourceSearch marks an item played from a search-engine query.
	SourceSearch Source = "search"
	// SourceSpotify marks an item resolved from the Spotify catalog.
	SourceSpotify Source = "spotify"
)

// Item is one requested playback unit. Exactly one of URL, SearchQuery, and
// SpotifyID is populated, selected by Source; the constructors below are the
// only way to build one. Items are value objects and are never mutated in
// place, only replaced wholesale.
type Item struct {
	Requester   string `bson:"requester" json:"requester"`
	Source      Source `bson:"source" json:"source"`
	URL         string `bson:"url,omitempty" json:"url,omitempty"`
	SearchQuery string `bson:"search_query,omitempty" json:"search_query,omitempty"`
	SpotifyID   string `bson:"spotify_id,omitempty" json:"spotify_id,omitempty"`

	// Display metadata, present only for catalog-resolved items.
	Title    string `bson:"title,omitempty" json:"title,omitempty"`
	Artist   string `bson:"artist,omitempty" json:"artist,omitempty"`
	Duration int    `bson:"duration_ms,omitempty" json:"duration_ms,omitempty"`
}

// NewURLItem builds an item that plays a direct URL verbatim.
func NewURLItem(requester, url string) Item {
	return Item{Requester: requester, Source: SourceURL, URL: url}
}

// NewSearchItem builds an item carrying a prefixed search-engine query.
func NewSearchItem(requester, query string) Item {
	return Item{Requester: requester, Source: SourceSearch, SearchQuery: query}
}

// NewSpotifyItem builds an item resolved from the Spotify catalog, carrying
// its display metadata.
func NewSpotifyItem(requester, spotifyID, title, artist string, durationMs int) Item {
	return Item{
		Requester: requester,
		Source:    SourceSpotify,
		SpotifyID: spotifyID,
		Title:     title,
		Artist:    artist,
		Duration:  durationMs,
	}
}

// Describe renders a short human-readable label for logs and status replies.
func (i Item) Describe() string {
	switch i.Source {
	case SourceSpotify:
		if i.Artist != "" {
			return fmt.Sprintf("%s by %s", i.Title, i.Artist)
		}
		return i.Title
	case SourceSearch:
		return i.SearchQuery
	default:
		return i.URL
	}
}
