package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

func (d *database) SaveManagedPlaylist(ctx context.Context, m models.ManagedPlaylist) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO managed_playlists (name, playlist_id, title, description, public)
		VALUES (?, ?, ?, ?, ?)
	`, m.Name, m.PlaylistID, m.Title, m.Description, boolToInt(m.Public))
	return err
}

func (d *database) GetManagedPlaylist(ctx context.Context, name string) (*models.ManagedPlaylist, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT name, playlist_id, title, description, public
		FROM managed_playlists WHERE name = ?
	`, name)

	m, err := scanManagedPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (d *database) AllManagedPlaylists(ctx context.Context) ([]models.ManagedPlaylist, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT name, playlist_id, title, description, public FROM managed_playlists
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	managed := make([]models.ManagedPlaylist, 0)
	for rows.Next() {
		m, err := scanManagedPlaylist(rows)
		if err != nil {
			return nil, err
		}
		managed = append(managed, *m)
	}
	return managed, rows.Err()
}

func (d *database) DeleteManagedPlaylist(ctx context.Context, name string) error {
	_, err := d.conn.ExecContext(ctx, `DELETE FROM managed_playlists WHERE name = ?`, name)
	return err
}

func scanManagedPlaylist(row rowScanner) (*models.ManagedPlaylist, error) {
	var m models.ManagedPlaylist
	var title, description sql.NullString
	var public sql.NullInt64

	if err := row.Scan(&m.Name, &m.PlaylistID, &title, &description, &public); err != nil {
		return nil, err
	}

	m.Title = title.String
	m.Description = description.String
	m.Public = public.Int64 != 0
	return &m, nil
}
