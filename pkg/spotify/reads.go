package spotify

import (
	"context"
	"errors"

	spotifyapi "github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

// UserPlaylists returns every playlist of the given owner, following the
// paging cursor until exhausted. Playlist sizes are bounded in practice, so
// the whole result is accumulated in memory.
func (c *Client) UserPlaylists(ctx context.Context, owner string) ([]models.Playlist, error) {
	var page *spotifyapi.SimplePlaylistPage
	if err := c.call("get user playlists", func() error {
		var err error
		page, err = c.api.GetPlaylistsForUser(ctx, owner)
		return err
	}); err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, int(page.Total))
	for {
		for _, p := range page.Playlists {
			playlists = append(playlists, simplePlaylistModel(p))
		}

		err := c.call("get user playlists page", func() error {
			return c.api.NextPage(ctx, page)
		})
		if errors.Is(err, spotifyapi.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return playlists, nil
}

func (c *Client) Playlist(ctx context.Context, id string) (*models.Playlist, error) {
	var fp *spotifyapi.FullPlaylist
	if err := c.call("get playlist", func() error {
		var err error
		fp, err = c.api.GetPlaylist(ctx, spotifyapi.ID(id))
		return err
	}); err != nil {
		return nil, err
	}

	p := fullPlaylistModel(fp)
	return &p, nil
}

// PlaylistTracks returns the authoritative full track list. Items without an
// id or a name (deleted or local track stubs the API still returns) are
// skipped with a warning.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	var page *spotifyapi.PlaylistItemPage
	if err := c.call("get playlist tracks", func() error {
		var err error
		page, err = c.api.GetPlaylistItems(ctx, spotifyapi.ID(playlistID))
		return err
	}); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, int(page.Total))
	for {
		for _, item := range page.Items {
			full := item.Track.Track
			if full == nil || full.ID == "" || full.Name == "" {
				c.log.Warn("skipping track with missing essential data",
					zap.String("playlist_id", playlistID))
				continue
			}
			tracks = append(tracks, trackModel(full))
		}

		err := c.call("get playlist tracks page", func() error {
			return c.api.NextPage(ctx, page)
		})
		if errors.Is(err, spotifyapi.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return tracks, nil
}

func (c *Client) Artist(ctx context.Context, id string) (*models.Artist, error) {
	var fa *spotifyapi.FullArtist
	if err := c.call("get artist", func() error {
		var err error
		fa, err = c.api.GetArtist(ctx, spotifyapi.ID(id))
		return err
	}); err != nil {
		return nil, err
	}

	a := artistModel(fa)
	return &a, nil
}

// ArtistsBatch fetches artists in chunks of at most 50 ids per request and
// merges the results keyed by id. The API may silently drop unknown ids, so
// callers must tolerate missing keys and fall back to Artist.
func (c *Client) ArtistsBatch(ctx context.Context, ids []string) (map[string]models.Artist, error) {
	results := make(map[string]models.Artist, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	chunks := chunkIDs(ids, artistBatchSize)
	c.log.Info("batch fetching artists",
		zap.Int("artists", len(ids)), zap.Int("batches", len(chunks)))

	for _, chunk := range chunks {
		var artists []*spotifyapi.FullArtist
		if err := c.call("get artists batch", func() error {
			var err error
			artists, err = c.api.GetArtists(ctx, toSpotifyIDs(chunk)...)
			return err
		}); err != nil {
			return nil, err
		}

		for _, fa := range artists {
			if fa == nil {
				continue
			}
			results[fa.ID.String()] = artistModel(fa)
		}
	}

	return results, nil
}

// SearchTracks runs a catalog search and returns up to limit track results.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	var result *spotifyapi.SearchResult
	if err := c.call("search tracks", func() error {
		var err error
		result, err = c.api.Search(ctx, query, spotifyapi.SearchTypeTrack, spotifyapi.Limit(limit))
		return err
	}); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, limit)
	if result.Tracks != nil {
		for i := range result.Tracks.Tracks {
			tracks = append(tracks, trackModel(&result.Tracks.Tracks[i]))
		}
	}
	return tracks, nil
}
