package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

func (d *database) UpsertPlaylist(ctx context.Context, p models.Playlist) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO playlists (
			id, name, description, owner_id, snapshot_id, public, collaborative, tracks_total, href, uri
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.OwnerID, p.SnapshotID,
		boolToInt(p.Public), boolToInt(p.Collaborative), p.TracksTotal, p.Href, p.URI)
	return err
}

func (d *database) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT id, name, description, owner_id, snapshot_id, public, collaborative, tracks_total, href, uri
		FROM playlists WHERE id = ?
	`, id)

	p, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (d *database) GetAllPlaylists(ctx context.Context) ([]models.Playlist, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, name, description, owner_id, snapshot_id, public, collaborative, tracks_total, href, uri
		FROM playlists
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPlaylists(rows)
}

// PlaylistSnapshotID returns the stored fingerprint for a playlist. The
// second return is false when the playlist has never been stored, which the
// diff engine treats as NEW.
func (d *database) PlaylistSnapshotID(ctx context.Context, id string) (string, bool, error) {
	var snapshot sql.NullString
	err := d.conn.QueryRowContext(ctx, `SELECT snapshot_id FROM playlists WHERE id = ?`, id).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return snapshot.String, true, nil
}

// DeletePlaylistCascade removes a playlist together with its membership rows
// and any pending queue entries. Order matters: junction and queue rows go
// first so a partial failure never leaves them pointing at a missing
// playlist.
func (d *database) DeletePlaylistCascade(ctx context.Context, id string) error {
	if _, err := d.conn.ExecContext(ctx, `DELETE FROM playlist_songs WHERE playlist_id = ?`, id); err != nil {
		return fmt.Errorf("delete playlist songs: %w", err)
	}
	if _, err := d.conn.ExecContext(ctx, `DELETE FROM queue WHERE playlist_id = ?`, id); err != nil {
		return fmt.Errorf("delete queue entries: %w", err)
	}
	if _, err := d.conn.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	return nil
}

func (d *database) OrphanedPlaylists(ctx context.Context, trackedIDs []string) ([]models.Playlist, error) {
	query := `
		SELECT id, name, description, owner_id, snapshot_id, public, collaborative, tracks_total, href, uri
		FROM playlists
	`
	args := make([]any, 0, len(trackedIDs))

	// With nothing tracked, every stored playlist is an orphan.
	if len(trackedIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(trackedIDs)), ",")
		query += ` WHERE id NOT IN (` + placeholders + `)`
		for _, id := range trackedIDs {
			args = append(args, id)
		}
	}

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPlaylists(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row rowScanner) (*models.Playlist, error) {
	var p models.Playlist
	var name, description, ownerID, snapshotID, href, uri sql.NullString
	var public, collaborative, tracksTotal sql.NullInt64

	if err := row.Scan(&p.ID, &name, &description, &ownerID, &snapshotID,
		&public, &collaborative, &tracksTotal, &href, &uri); err != nil {
		return nil, err
	}

	p.Name = name.String
	p.Description = description.String
	p.OwnerID = ownerID.String
	p.SnapshotID = snapshotID.String
	p.Public = public.Int64 != 0
	p.Collaborative = collaborative.Int64 != 0
	p.TracksTotal = int(tracksTotal.Int64)
	p.Href = href.String
	p.URI = uri.String
	return &p, nil
}

func collectPlaylists(rows *sql.Rows) ([]models.Playlist, error) {
	playlists := make([]models.Playlist, 0)
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *p)
	}
	return playlists, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
