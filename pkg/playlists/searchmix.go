package playlists

import (
	"context"
	"fmt"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

const (
	searchMixLimit    = 50
	perGenreSearchCap = 20
)

type trackSearcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)
}

// SearchMix builds a mix from catalog searches over a fixed set of genre
// terms. Results are deduplicated across genres and capped at fifty tracks.
type SearchMix struct {
	spotify trackSearcher
	genres  []string
}

func NewSearchMix(spotifySearch trackSearcher) *SearchMix {
	return &SearchMix{
		spotify: spotifySearch,
		genres:  []string{"indie rock", "synthwave", "lo-fi"},
	}
}

func (g *SearchMix) Name() string  { return "search-mix" }
func (g *SearchMix) Title() string { return "Discovery Mix #auto" }
func (g *SearchMix) Description() string {
	return "Fresh catalog picks across a few favorite genres."
}
func (g *SearchMix) Public() bool { return false }

func (g *SearchMix) Tracks(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	ids := make([]string, 0, searchMixLimit)

	for _, genre := range g.genres {
		tracks, err := g.spotify.SearchTracks(ctx, fmt.Sprintf("genre:%q", genre), perGenreSearchCap)
		if err != nil {
			return nil, fmt.Errorf("search genre %s: %w", genre, err)
		}

		for _, t := range tracks {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			ids = append(ids, t.ID)
			if len(ids) >= searchMixLimit {
				return ids, nil
			}
		}
	}

	return ids, nil
}
