package playlists

import (
	"context"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

const hiddenGemsLimit = 50

// songSource is the store query hidden gems builds from.
type songSource interface {
	FilteredSongs(ctx context.Context, minPopularity, maxPopularity, limit int) ([]models.Song, error)
}

// HiddenGems collects already-tracked songs with near-zero popularity into a
// rotating discovery playlist. The track pool is the local store, so the
// generator costs no remote calls.
type HiddenGems struct {
	db songSource
}

func NewHiddenGems(db songSource) *HiddenGems {
	return &HiddenGems{db: db}
}

func (g *HiddenGems) Name() string  { return "hidden-gems" }
func (g *HiddenGems) Title() string { return "Hidden Gems #auto" }
func (g *HiddenGems) Description() string {
	return "Obscure tracks from your followed playlists. Rotates on every run."
}
func (g *HiddenGems) Public() bool { return false }

func (g *HiddenGems) Tracks(ctx context.Context) ([]string, error) {
	songs, err := g.db.FilteredSongs(ctx, 0, 5, hiddenGemsLimit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(songs))
	for _, s := range songs {
		ids = append(ids, s.ID)
	}
	return ids, nil
}
