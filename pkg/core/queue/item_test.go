package queue

import (
	"strings"
	"testing"
)

func TestConstructorsSetExactlyOneSource(t *testing.T) {
	url := NewURLItem("user-1", "https://example.com/a.mp3")
	if url.Source != SourceURL || url.URL == "" || url.SearchQuery != "" || url.SpotifyID != "" {
		t.Errorf("url item = %+v", url)
	}

	search := NewSearchItem("user-1", "ytsearch:some song")
	if search.Source != SourceSearch || search.SearchQuery == "" || search.URL != "" || search.SpotifyID != "" {
		t.Errorf("search item = %+v", search)
	}

	sp := NewSpotifyItem("user-1", "t1", "Song", "Artist", 123000)
	if sp.Source != SourceSpotify || sp.SpotifyID != "t1" || sp.URL != "" || sp.SearchQuery != "" {
		t.Errorf("spotify item = %+v", sp)
	}
	if sp.Title != "Song" || sp.Artist != "Artist" || sp.Duration != 123000 {
		t.Errorf("spotify metadata = %+v", sp)
	}
}

func TestDescribe(t *testing.T) {
	sp := NewSpotifyItem("user-1", "t1", "Song", "Artist", 0)
	if got := sp.Describe(); !strings.Contains(got, "Song") || !strings.Contains(got, "Artist") {
		t.Errorf("Describe() = %q", got)
	}

	url := NewURLItem("user-1", "https://example.com/a.mp3")
	if got := url.Describe(); !strings.Contains(got, "example.com") {
		t.Errorf("Describe() = %q", got)
	}
}
