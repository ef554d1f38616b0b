package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/supperdoggy/playlist-sync/pkg/models"
	"github.com/supperdoggy/playlist-sync/pkg/spotify"
)

// processQueue drains the reconciliation queue. A playlist with several
// pending entries is synced once; completion removes every entry for that
// playlist id. Failures keep the entries in place for the next pass, except
// the rate-limit breaker, which aborts the whole batch.
func (s *Syncer) processQueue(ctx context.Context) error {
	entries, err := s.db.Queue(ctx)
	if err != nil {
		return fmt.Errorf("read queue: %w", err)
	}
	if len(entries) == 0 {
		s.log.Info("queue is empty, nothing to sync")
		return nil
	}
	s.log.Info("processing queue", zap.Int("entries", len(entries)))

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.PlaylistID] {
			continue
		}
		seen[e.PlaylistID] = true

		if err := s.syncPlaylist(ctx, e); err != nil {
			if errors.Is(err, spotify.ErrRateLimited) {
				return err
			}
			s.log.Error("failed to sync playlist",
				zap.String("playlist_id", e.PlaylistID),
				zap.String("name", e.PlaylistName),
				zap.Error(err))
			s.audit(ctx, models.ActionLogEntry{
				ActionType:   ActionSyncFailed,
				EntityType:   entityPlaylist,
				EntityID:     e.PlaylistID,
				EntityName:   e.PlaylistName,
				Reason:       "Sync operation failed with error",
				ErrorMessage: err.Error(),
			})
		}
	}

	return nil
}

// syncPlaylist reconciles one playlist's stored membership with the remote
// track list. Invalid or inaccessible playlists are dropped from the queue
// with an audit entry rather than treated as errors.
func (s *Syncer) syncPlaylist(ctx context.Context, e models.QueueEntry) error {
	v, err := s.spotify.ValidatePlaylist(ctx, e.PlaylistID)
	if err != nil {
		return err
	}
	if !v.Valid {
		s.log.Error("queued playlist failed validation, removing from queue",
			zap.String("playlist_id", e.PlaylistID),
			zap.String("name", e.PlaylistName),
			zap.String("error", v.Err))
		s.audit(ctx, models.ActionLogEntry{
			ActionType: ActionRemoveFromQueue,
			EntityType: entityPlaylist,
			EntityID:   e.PlaylistID,
			EntityName: e.PlaylistName,
			Reason:     "Playlist validation failed - no longer exists or invalid ID",
			Details:    "Validation error: " + v.Err,
			Success:    true,
		})
		return s.db.DeleteQueueForPlaylist(ctx, e.PlaylistID)
	}
	if !v.Accessible {
		s.log.Warn("queued playlist is no longer accessible, removing from queue",
			zap.String("playlist_id", e.PlaylistID),
			zap.String("name", e.PlaylistName),
			zap.String("error", v.Err))
		s.audit(ctx, models.ActionLogEntry{
			ActionType: ActionRemoveFromQueue,
			EntityType: entityPlaylist,
			EntityID:   e.PlaylistID,
			EntityName: e.PlaylistName,
			Reason:     "Playlist became inaccessible - private or permissions changed",
			Details:    "Validation error: " + v.Err,
			Success:    true,
		})
		return s.db.DeleteQueueForPlaylist(ctx, e.PlaylistID)
	}

	s.log.Info("syncing playlist",
		zap.String("playlist_id", e.PlaylistID),
		zap.String("name", e.PlaylistName),
		zap.String("change_type", string(e.ChangeType)))
	s.audit(ctx, models.ActionLogEntry{
		ActionType: ActionSyncStart,
		EntityType: entityPlaylist,
		EntityID:   e.PlaylistID,
		EntityName: e.PlaylistName,
		Reason:     "Playlist passed validation checks and is ready for sync",
		Success:    true,
	})

	tracks, err := s.spotify.PlaylistTracks(ctx, e.PlaylistID)
	if err != nil {
		return fmt.Errorf("fetch tracks: %w", err)
	}

	currentIDs := make([]string, 0, len(tracks))
	newTracks := make([]models.Track, 0)
	inPlaylist := make(map[string]bool, len(tracks))
	for _, t := range tracks {
		if inPlaylist[t.ID] {
			continue
		}
		inPlaylist[t.ID] = true
		currentIDs = append(currentIDs, t.ID)

		stored, err := s.db.GetSong(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("look up song %s: %w", t.ID, err)
		}
		if stored == nil || s.opts.RefreshKnownSongs {
			newTracks = append(newTracks, t)
		}
	}

	if len(newTracks) > 0 {
		if err := s.storeTracks(ctx, newTracks); err != nil {
			return err
		}
	}

	res, err := s.db.SyncPlaylistSongs(ctx, e.PlaylistID, currentIDs)
	if err != nil {
		return fmt.Errorf("sync playlist songs: %w", err)
	}

	s.log.Info("playlist synced",
		zap.String("playlist_id", e.PlaylistID),
		zap.String("name", e.PlaylistName),
		zap.Int("tracks", len(currentIDs)),
		zap.Int("added", res.Added),
		zap.Int("removed", res.Removed))
	s.audit(ctx, models.ActionLogEntry{
		ActionType: ActionSyncComplete,
		EntityType: entityPlaylist,
		EntityID:   e.PlaylistID,
		EntityName: e.PlaylistName,
		Reason:     "Playlist sync completed successfully",
		Details:    fmt.Sprintf("Added: %d songs, Removed: %d songs", res.Added, res.Removed),
		Success:    true,
	})

	return s.db.DeleteQueueForPlaylist(ctx, e.PlaylistID)
}

// storeTracks upserts song metadata, the artists behind each song and the
// song-artist junction rows. Artist metadata is fetched in batches; ids the
// batch endpoint drops are fetched individually.
func (s *Syncer) storeTracks(ctx context.Context, tracks []models.Track) error {
	artistIDs := make([]string, 0)
	seen := make(map[string]bool)
	for _, t := range tracks {
		for _, ref := range t.Artists {
			if ref.ID == "" || seen[ref.ID] {
				continue
			}
			seen[ref.ID] = true
			artistIDs = append(artistIDs, ref.ID)
		}
	}

	artists, err := s.spotify.ArtistsBatch(ctx, artistIDs)
	if err != nil {
		return fmt.Errorf("batch fetch artists: %w", err)
	}

	for _, t := range tracks {
		if err := s.db.UpsertSong(ctx, t.Song); err != nil {
			return fmt.Errorf("upsert song %s: %w", t.ID, err)
		}

		for _, ref := range t.Artists {
			if ref.ID == "" {
				continue
			}

			a, ok := artists[ref.ID]
			if !ok {
				s.log.Warn("artist missing from batch result, fetching individually",
					zap.String("artist_id", ref.ID), zap.String("name", ref.Name))
				fetched, err := s.spotify.Artist(ctx, ref.ID)
				if err != nil {
					return fmt.Errorf("fetch artist %s: %w", ref.ID, err)
				}
				a = *fetched
				artists[ref.ID] = a
			}

			if err := s.db.UpsertArtist(ctx, a); err != nil {
				return fmt.Errorf("upsert artist %s: %w", ref.ID, err)
			}
			if err := s.db.UpsertSongArtist(ctx, t.ID, ref.ID); err != nil {
				return fmt.Errorf("link song %s to artist %s: %w", t.ID, ref.ID, err)
			}
		}
	}

	return nil
}
