package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// CleanupStats summarizes one orphan sweep.
type CleanupStats struct {
	PlaylistsDeleted     int
	PlaylistSongsDropped int
	QueueEntriesDropped  int
	MembershipsDeleted   int64
	SongsDeleted         int
	SongArtistsDeleted   int64
	ArtistsDeleted       int
}

// cleanupOrphans removes rows no longer reachable from the tracked playlist
// set. Stages run in dependency order: playlists first, then dangling
// membership rows, then songs, junction rows, and finally artists, so each
// stage can expose orphans for the next. A failed stage is logged and the
// sweep continues; the collected errors are joined into the return value.
func (s *Syncer) cleanupOrphans(ctx context.Context, trackedIDs []string) (CleanupStats, error) {
	var stats CleanupStats
	var stageErrs []error

	orphanPlaylists, err := s.db.OrphanedPlaylists(ctx, trackedIDs)
	if err != nil {
		s.log.Error("failed to find orphaned playlists", zap.Error(err))
		stageErrs = append(stageErrs, err)
	} else {
		for _, p := range orphanPlaylists {
			songs, err := s.db.SongsInPlaylist(ctx, p.ID)
			if err != nil {
				s.log.Error("failed to count playlist songs before delete",
					zap.String("playlist_id", p.ID), zap.Error(err))
			}
			queued, err := s.db.QueueForPlaylist(ctx, p.ID)
			if err != nil {
				s.log.Error("failed to count queue entries before delete",
					zap.String("playlist_id", p.ID), zap.Error(err))
			}

			if err := s.db.DeletePlaylistCascade(ctx, p.ID); err != nil {
				s.log.Error("failed to delete orphaned playlist",
					zap.String("playlist_id", p.ID), zap.Error(err))
				stageErrs = append(stageErrs, err)
				continue
			}

			s.log.Info("deleted orphaned playlist",
				zap.String("playlist_id", p.ID), zap.String("name", p.Name))
			stats.PlaylistsDeleted++
			stats.PlaylistSongsDropped += len(songs)
			stats.QueueEntriesDropped += len(queued)
		}
	}

	deleted, err := s.db.DeleteOrphanedPlaylistSongs(ctx)
	if err != nil {
		s.log.Error("failed to delete orphaned playlist memberships", zap.Error(err))
		stageErrs = append(stageErrs, err)
	} else {
		stats.MembershipsDeleted = deleted
	}

	orphanSongs, err := s.db.OrphanedSongs(ctx)
	if err != nil {
		s.log.Error("failed to find orphaned songs", zap.Error(err))
		stageErrs = append(stageErrs, err)
	} else {
		for _, song := range orphanSongs {
			if err := s.db.DeleteSong(ctx, song.ID); err != nil {
				s.log.Error("failed to delete orphaned song",
					zap.String("song_id", song.ID), zap.Error(err))
				stageErrs = append(stageErrs, err)
				continue
			}
			stats.SongsDeleted++
		}
	}

	deleted, err = s.db.DeleteOrphanedSongArtists(ctx)
	if err != nil {
		s.log.Error("failed to delete orphaned song-artist links", zap.Error(err))
		stageErrs = append(stageErrs, err)
	} else {
		stats.SongArtistsDeleted = deleted
	}

	orphanArtists, err := s.db.OrphanedArtists(ctx)
	if err != nil {
		s.log.Error("failed to find orphaned artists", zap.Error(err))
		stageErrs = append(stageErrs, err)
	} else {
		for _, a := range orphanArtists {
			if err := s.db.DeleteArtist(ctx, a.ID); err != nil {
				s.log.Error("failed to delete orphaned artist",
					zap.String("artist_id", a.ID), zap.Error(err))
				stageErrs = append(stageErrs, err)
				continue
			}
			stats.ArtistsDeleted++
		}
	}

	s.log.Info("orphan cleanup finished",
		zap.Int("playlists_deleted", stats.PlaylistsDeleted),
		zap.Int64("memberships_deleted", stats.MembershipsDeleted),
		zap.Int("songs_deleted", stats.SongsDeleted),
		zap.Int64("song_artists_deleted", stats.SongArtistsDeleted),
		zap.Int("artists_deleted", stats.ArtistsDeleted))

	return stats, errors.Join(stageErrs...)
}
