// Package resolver turns a raw user query into playable queue items. A query
// is matched against reference kinds in priority order: Spotify catalog
// links are expanded through the catalog service, other links pass through
// verbatim, and everything else becomes a search directive.
package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cadencebot/cadence/pkg/core"
	"github.com/cadencebot/cadence/pkg/core/queue"
	"github.com/cadencebot/cadence/pkg/spotify"

	"github.com/Laky-64/gologging"
)

var (
	spotifyRegex = regexp.MustCompile(`(?i)^(?:https?://)?open\.spotify\.com/(?:intl-[a-z]+/)?([a-z]+)/([a-zA-Z0-9]+)`)
	urlRegex     = regexp.MustCompile(`^https?://\S+$`)
)

// searchPrefixes are the search directives passed through verbatim.
var searchPrefixes = []string{"ytsearch", "scsearch"}

// Catalog is the slice of the catalog service the resolver needs.
type Catalog interface {
	Track(ctx context.Context, trackID string) (spotify.TrackEntry, error)
	ListTracks(ctx context.Context, kind, listID string) (spotify.ListInfo, []spotify.TrackEntry, error)
}

// Resolver expands queries into queue items.
type Resolver struct {
	catalog       Catalog
	defaultSearch string
}

// NewResolver creates a Resolver. defaultSearch is the search prefix applied
// to plain-text queries.
func NewResolver(catalog Catalog, defaultSearch string) *Resolver {
	return &Resolver{catalog: catalog, defaultSearch: defaultSearch}
}

// Resolve expands query into one or more queue items attributed to
// requester. A recognized catalog link for an unsupported kind fails with
// core.ErrInvalidReference; a supported list with no tracks fails with
// core.ErrEmptySource.
func (r *Resolver) Resolve(ctx context.Context, query, requester string) ([]queue.Item, error) {
	query = strings.TrimSpace(query)
	// Chat clients wrap links in <> to suppress embeds.
	query = strings.TrimSuffix(strings.TrimPrefix(query, "<"), ">")

	if match := spotifyRegex.FindStringSubmatch(query); match != nil {
		return r.resolveSpotify(ctx, strings.ToLower(match[1]), match[2], requester)
	}

	if urlRegex.MatchString(query) {
		return []queue.Item{queue.NewURLItem(requester, query)}, nil
	}

	for _, prefix := range searchPrefixes {
		if strings.HasPrefix(query, prefix+":") {
			return []queue.Item{queue.NewSearchItem(requester, query)}, nil
		}
	}

	return []queue.Item{queue.NewSearchItem(requester, r.defaultSearch+":"+query)}, nil
}

// resolveSpotify expands a catalog reference. Single tracks and one-track
// lists converge on the same item shape.
func (r *Resolver) resolveSpotify(ctx context.Context, kind, id, requester string) ([]queue.Item, error) {
	switch kind {
	case "track":
		entry, err := r.catalog.Track(ctx, id)
		if err != nil {
			return nil, err
		}
		return []queue.Item{itemFromEntry(requester, entry)}, nil
	case "album", "playlist":
		info, entries, err := r.catalog.ListTracks(ctx, kind, id)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("%w: spotify %s %s", core.ErrEmptySource, kind, id)
		}
		gologging.InfoF("[resolver] Expanded spotify %s %q by %s into %d tracks.", kind, info.Name, info.Author, len(entries))
		items := make([]queue.Item, 0, len(entries))
		for _, entry := range entries {
			items = append(items, itemFromEntry(requester, entry))
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%w: spotify %s links are not playable", core.ErrInvalidReference, kind)
	}
}

func itemFromEntry(requester string, entry spotify.TrackEntry) queue.Item {
	return queue.NewSpotifyItem(requester, entry.ID, entry.Title, entry.Artist, entry.DurationMs)
}
