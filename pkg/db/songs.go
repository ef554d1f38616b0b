package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

func (d *database) UpsertSong(ctx context.Context, s models.Song) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO songs (
			id, name, duration_ms, explicit, popularity, preview_url, href, uri, external_urls, album_id, album_name
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Name, s.DurationMS, boolToInt(s.Explicit), s.Popularity,
		s.PreviewURL, s.Href, s.URI, s.ExternalURL, s.AlbumID, s.AlbumName)
	return err
}

func (d *database) GetSong(ctx context.Context, id string) (*models.Song, error) {
	row := d.conn.QueryRowContext(ctx, songSelect+` WHERE id = ?`, id)
	s, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *database) DeleteSong(ctx context.Context, id string) error {
	_, err := d.conn.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	return err
}

// FilteredSongs returns up to limit songs whose popularity falls in the
// inclusive range. Used by the generation run, not the sync engine.
func (d *database) FilteredSongs(ctx context.Context, minPopularity, maxPopularity, limit int) ([]models.Song, error) {
	query := songSelect + ` WHERE popularity >= ? AND popularity <= ? ORDER BY RANDOM()`
	args := []any{minPopularity, maxPopularity}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSongs(rows)
}

func (d *database) UpsertArtist(ctx context.Context, a models.Artist) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO artists (
			id, name, genres, popularity, followers_total, href, uri, external_urls
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Name, a.Genres, a.Popularity, a.FollowersTotal, a.Href, a.URI, a.ExternalURL)
	return err
}

func (d *database) GetArtist(ctx context.Context, id string) (*models.Artist, error) {
	row := d.conn.QueryRowContext(ctx, artistSelect+` WHERE id = ?`, id)
	a, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (d *database) DeleteArtist(ctx context.Context, id string) error {
	_, err := d.conn.ExecContext(ctx, `DELETE FROM artists WHERE id = ?`, id)
	return err
}

func (d *database) UpsertSongArtist(ctx context.Context, songID, artistID string) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO song_artists (song_id, artist_id) VALUES (?, ?)
	`, songID, artistID)
	return err
}

func (d *database) ArtistsForSong(ctx context.Context, songID string) ([]models.Artist, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT a.id, a.name, a.genres, a.popularity, a.followers_total, a.href, a.uri, a.external_urls
		FROM artists a
		JOIN song_artists sa ON a.id = sa.artist_id
		WHERE sa.song_id = ?
	`, songID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectArtists(rows)
}

func (d *database) SongsInPlaylist(ctx context.Context, playlistID string) ([]models.Song, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT s.id, s.name, s.duration_ms, s.explicit, s.popularity, s.preview_url, s.href, s.uri, s.external_urls, s.album_id, s.album_name
		FROM songs s
		JOIN playlist_songs ps ON s.id = ps.song_id
		WHERE ps.playlist_id = ?
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSongs(rows)
}

// SyncPlaylistSongs reconciles stored membership against the authoritative
// current set: rows are added for ids only in current and removed for ids
// only in stored. Replaying the same current set is a no-op.
func (d *database) SyncPlaylistSongs(ctx context.Context, playlistID string, currentSongIDs []string) (SyncResult, error) {
	var res SyncResult

	rows, err := d.conn.QueryContext(ctx, `SELECT song_id FROM playlist_songs WHERE playlist_id = ?`, playlistID)
	if err != nil {
		return res, err
	}
	stored := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return res, err
		}
		stored[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return res, err
	}

	current := make(map[string]bool, len(currentSongIDs))
	for _, id := range currentSongIDs {
		current[id] = true
	}

	for id := range current {
		if !stored[id] {
			if _, err := d.conn.ExecContext(ctx,
				`INSERT OR REPLACE INTO playlist_songs (playlist_id, song_id) VALUES (?, ?)`, playlistID, id); err != nil {
				return res, err
			}
			res.SongsAdded = append(res.SongsAdded, id)
		}
	}
	for id := range stored {
		if !current[id] {
			if _, err := d.conn.ExecContext(ctx,
				`DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?`, playlistID, id); err != nil {
				return res, err
			}
			res.SongsRemoved = append(res.SongsRemoved, id)
		}
	}

	res.Added = len(res.SongsAdded)
	res.Removed = len(res.SongsRemoved)
	return res, nil
}

const songSelect = `
	SELECT id, name, duration_ms, explicit, popularity, preview_url, href, uri, external_urls, album_id, album_name
	FROM songs`

const artistSelect = `
	SELECT id, name, genres, popularity, followers_total, href, uri, external_urls
	FROM artists`

func scanSong(row rowScanner) (*models.Song, error) {
	var s models.Song
	var name, previewURL, href, uri, externalURL, albumID, albumName sql.NullString
	var durationMS, explicit, popularity sql.NullInt64

	if err := row.Scan(&s.ID, &name, &durationMS, &explicit, &popularity,
		&previewURL, &href, &uri, &externalURL, &albumID, &albumName); err != nil {
		return nil, err
	}

	s.Name = name.String
	s.DurationMS = int(durationMS.Int64)
	s.Explicit = explicit.Int64 != 0
	s.Popularity = int(popularity.Int64)
	s.PreviewURL = previewURL.String
	s.Href = href.String
	s.URI = uri.String
	s.ExternalURL = externalURL.String
	s.AlbumID = albumID.String
	s.AlbumName = albumName.String
	return &s, nil
}

func collectSongs(rows *sql.Rows) ([]models.Song, error) {
	songs := make([]models.Song, 0)
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, *s)
	}
	return songs, rows.Err()
}

func scanArtist(row rowScanner) (*models.Artist, error) {
	var a models.Artist
	var name, genres, href, uri, externalURL sql.NullString
	var popularity, followers sql.NullInt64

	if err := row.Scan(&a.ID, &name, &genres, &popularity, &followers, &href, &uri, &externalURL); err != nil {
		return nil, err
	}

	a.Name = name.String
	a.Genres = genres.String
	a.Popularity = int(popularity.Int64)
	a.FollowersTotal = int(followers.Int64)
	a.Href = href.String
	a.URI = uri.String
	a.ExternalURL = externalURL.String
	return &a, nil
}

func collectArtists(rows *sql.Rows) ([]models.Artist, error) {
	artists := make([]models.Artist, 0)
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, *a)
	}
	return artists, rows.Err()
}
