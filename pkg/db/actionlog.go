package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

// ActionLogFilter narrows an action log read. Zero values mean "no filter".
type ActionLogFilter struct {
	ActionType string
	EntityType string
	EntityID   string
	Success    *bool
	Limit      int
}

func (d *database) LogAction(ctx context.Context, e models.ActionLogEntry) error {
	ts := e.Timestamp
	if ts == 0 {
		ts = d.now().Unix()
	}

	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO action_log (action_type, entity_type, entity_id, entity_name, reason, details, success, error_message, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ActionType, e.EntityType, e.EntityID, e.EntityName, e.Reason, e.Details,
		boolToInt(e.Success), e.ErrorMessage, ts)
	return err
}

func (d *database) ActionLogs(ctx context.Context, f ActionLogFilter) ([]models.ActionLogEntry, error) {
	query := `
		SELECT id, action_type, entity_type, entity_id, entity_name, reason, details, success, error_message, timestamp
		FROM action_log WHERE 1=1
	`
	args := []any{}

	if f.ActionType != "" {
		query += ` AND action_type = ?`
		args = append(args, f.ActionType)
	}
	if f.EntityType != "" {
		query += ` AND entity_type = ?`
		args = append(args, f.EntityType)
	}
	if f.EntityID != "" {
		query += ` AND entity_id = ?`
		args = append(args, f.EntityID)
	}
	if f.Success != nil {
		query += ` AND success = ?`
		args = append(args, boolToInt(*f.Success))
	}

	query += ` ORDER BY timestamp DESC, id DESC`

	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.ActionLogEntry, 0)
	for rows.Next() {
		var e models.ActionLogEntry
		var entityID, entityName, details, errorMessage sql.NullString
		var success int

		if err := rows.Scan(&e.ID, &e.ActionType, &e.EntityType, &entityID, &entityName,
			&e.Reason, &details, &success, &errorMessage, &e.Timestamp); err != nil {
			return nil, err
		}

		e.EntityID = entityID.String
		e.EntityName = entityName.String
		e.Details = details.String
		e.Success = success != 0
		e.ErrorMessage = errorMessage.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PurgeActionLogs deletes audit rows older than the retention window and
// returns how many were removed.
func (d *database) PurgeActionLogs(ctx context.Context, keepFor time.Duration) (int64, error) {
	cutoff := d.now().Add(-keepFor).Unix()
	res, err := d.conn.ExecContext(ctx, `DELETE FROM action_log WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
