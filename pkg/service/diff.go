package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

// autoMarker flags generated playlists. Anything whose name contains it is
// excluded from sync so a generation run can never feed back into itself.
const autoMarker = "#auto"

type classification int

const (
	classUnchanged classification = iota
	classNew
	classModified
	classSkip
)

// classifyPlaylist decides what to do with one playlist. The marker check
// comes first: a generated playlist is skipped no matter what its fingerprint
// says.
func classifyPlaylist(name, currentSnapshot, storedSnapshot string, stored bool) classification {
	switch {
	case strings.Contains(name, autoMarker):
		return classSkip
	case !stored:
		return classNew
	case storedSnapshot != currentSnapshot:
		return classModified
	default:
		return classUnchanged
	}
}

// detectChanges compares each playlist's remote snapshot id against the
// stored one and enqueues NEW and MODIFIED playlists for reconciliation.
// Every playlist row is then refreshed regardless of classification, so
// names and metadata stay current even when contents did not change.
func (s *Syncer) detectChanges(ctx context.Context, playlists []models.Playlist) error {
	queued := 0
	for _, p := range playlists {
		storedSnapshot, stored, err := s.db.PlaylistSnapshotID(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("read stored snapshot for %s: %w", p.ID, err)
		}

		switch classifyPlaylist(p.Name, p.SnapshotID, storedSnapshot, stored) {
		case classSkip:
			s.log.Info("skipping auto-generated playlist",
				zap.String("playlist_id", p.ID), zap.String("name", p.Name))
			s.audit(ctx, models.ActionLogEntry{
				ActionType: ActionSkip,
				EntityType: entityPlaylist,
				EntityID:   p.ID,
				EntityName: p.Name,
				Reason:     "Auto playlist detected - contains '#auto' in name",
				Details:    "Auto playlists are excluded from sync to prevent sync loops",
				Success:    true,
			})
			continue

		case classNew:
			if err := s.enqueueChange(ctx, p, models.ChangeNew, storedSnapshot); err != nil {
				s.log.Error("failed to enqueue new playlist",
					zap.String("playlist_id", p.ID), zap.Error(err))
				continue
			}
			queued++

		case classModified:
			if err := s.enqueueChange(ctx, p, models.ChangeModified, storedSnapshot); err != nil {
				s.log.Error("failed to enqueue modified playlist",
					zap.String("playlist_id", p.ID), zap.Error(err))
				continue
			}
			queued++
		}
	}

	if queued == 0 {
		s.log.Info("no playlist changes detected")
		s.audit(ctx, models.ActionLogEntry{
			ActionType: ActionCheckComplete,
			EntityType: entitySystem,
			EntityName: "Change Detection",
			Reason:     "Change detection completed - no modifications found",
			Details:    fmt.Sprintf("Checked %d playlists", len(playlists)),
			Success:    true,
		})
	} else {
		s.log.Info("queued playlist changes", zap.Int("queued", queued))
	}

	// Refresh stored rows after classification so the next pass diffs
	// against what we saw this time.
	for _, p := range playlists {
		if err := s.db.UpsertPlaylist(ctx, p); err != nil {
			s.log.Error("failed to upsert playlist",
				zap.String("playlist_id", p.ID), zap.Error(err))
		}
	}

	return nil
}

func (s *Syncer) enqueueChange(ctx context.Context, p models.Playlist, change models.ChangeType, oldSnapshot string) error {
	entry := models.QueueEntry{
		PlaylistID:    p.ID,
		PlaylistName:  p.Name,
		ChangeType:    change,
		NewSnapshotID: p.SnapshotID,
	}

	var reason, details string
	if change == models.ChangeNew {
		reason = "New playlist detected - first time tracking"
		details = "Snapshot ID: " + p.SnapshotID
		s.log.Info("new playlist detected",
			zap.String("playlist_id", p.ID), zap.String("name", p.Name))
	} else {
		entry.OldSnapshotID = oldSnapshot
		reason = "Playlist modification detected - snapshot ID changed"
		details = fmt.Sprintf("Old snapshot: %s, New snapshot: %s", oldSnapshot, p.SnapshotID)
		s.log.Info("playlist modified",
			zap.String("playlist_id", p.ID), zap.String("name", p.Name))
	}

	if err := s.db.Enqueue(ctx, entry); err != nil {
		return err
	}

	s.audit(ctx, models.ActionLogEntry{
		ActionType: ActionAddToQueue,
		EntityType: entityPlaylist,
		EntityID:   p.ID,
		EntityName: p.Name,
		Reason:     reason,
		Details:    details,
		Success:    true,
	})
	return nil
}
