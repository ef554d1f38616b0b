package db

import (
	"context"
	"database/sql"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

func (d *database) Enqueue(ctx context.Context, e models.QueueEntry) error {
	detectedAt := e.DetectedAt
	if detectedAt == 0 {
		detectedAt = d.now().Unix()
	}

	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO queue (playlist_id, playlist_name, change_type, old_snapshot_id, new_snapshot_id, detected_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.PlaylistID, e.PlaylistName, string(e.ChangeType),
		nullIfEmpty(e.OldSnapshotID), e.NewSnapshotID, detectedAt)
	return err
}

// Queue returns every pending entry, most recently detected first.
func (d *database) Queue(ctx context.Context) ([]models.QueueEntry, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, playlist_id, playlist_name, change_type, old_snapshot_id, new_snapshot_id, detected_at
		FROM queue ORDER BY detected_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectQueueEntries(rows)
}

func (d *database) QueueForPlaylist(ctx context.Context, playlistID string) ([]models.QueueEntry, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, playlist_id, playlist_name, change_type, old_snapshot_id, new_snapshot_id, detected_at
		FROM queue WHERE playlist_id = ? ORDER BY detected_at DESC, id DESC
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectQueueEntries(rows)
}

// DeleteQueueForPlaylist removes every entry for the playlist. Deleting an id
// with no entries is a no-op, not an error.
func (d *database) DeleteQueueForPlaylist(ctx context.Context, playlistID string) error {
	_, err := d.conn.ExecContext(ctx, `DELETE FROM queue WHERE playlist_id = ?`, playlistID)
	return err
}

func (d *database) ClearQueue(ctx context.Context) error {
	_, err := d.conn.ExecContext(ctx, `DELETE FROM queue`)
	return err
}

func collectQueueEntries(rows *sql.Rows) ([]models.QueueEntry, error) {
	entries := make([]models.QueueEntry, 0)
	for rows.Next() {
		var e models.QueueEntry
		var name, oldSnapshot, newSnapshot sql.NullString
		var changeType string

		if err := rows.Scan(&e.ID, &e.PlaylistID, &name, &changeType, &oldSnapshot, &newSnapshot, &e.DetectedAt); err != nil {
			return nil, err
		}

		e.PlaylistName = name.String
		e.ChangeType = models.ChangeType(changeType)
		e.OldSnapshotID = oldSnapshot.String
		e.NewSnapshotID = newSnapshot.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
