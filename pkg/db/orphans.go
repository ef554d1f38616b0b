package db

import (
	"context"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

// DeleteOrphanedPlaylistSongs removes membership rows whose playlist no
// longer exists. This backstops DeletePlaylistCascade after partial failures.
func (d *database) DeleteOrphanedPlaylistSongs(ctx context.Context) (int64, error) {
	res, err := d.conn.ExecContext(ctx, `
		DELETE FROM playlist_songs
		WHERE playlist_id NOT IN (SELECT id FROM playlists)
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// OrphanedSongs returns songs no tracked playlist references anymore.
func (d *database) OrphanedSongs(ctx context.Context) ([]models.Song, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT s.id, s.name, s.duration_ms, s.explicit, s.popularity, s.preview_url, s.href, s.uri, s.external_urls, s.album_id, s.album_name
		FROM songs s
		LEFT JOIN playlist_songs ps ON s.id = ps.song_id
		WHERE ps.song_id IS NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSongs(rows)
}

func (d *database) DeleteOrphanedSongArtists(ctx context.Context) (int64, error) {
	res, err := d.conn.ExecContext(ctx, `
		DELETE FROM song_artists
		WHERE song_id NOT IN (SELECT id FROM songs)
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// OrphanedArtists returns artists with no remaining song reference.
func (d *database) OrphanedArtists(ctx context.Context) ([]models.Artist, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT a.id, a.name, a.genres, a.popularity, a.followers_total, a.href, a.uri, a.external_urls
		FROM artists a
		LEFT JOIN song_artists sa ON a.id = sa.artist_id
		WHERE sa.artist_id IS NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectArtists(rows)
}
