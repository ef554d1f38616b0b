package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/supperdoggy/playlist-sync/pkg/config"
	"github.com/supperdoggy/playlist-sync/pkg/models"
	"github.com/supperdoggy/playlist-sync/pkg/spotify"
)

// resolveTargets expands the tracking config into the concrete playlist set
// for this pass: every playlist of each tracked user plus every individually
// tracked playlist. Targets that fail validation are logged and skipped so
// one bad entry never blocks the rest; only fatal facade errors abort.
func (s *Syncer) resolveTargets(ctx context.Context, tracking *config.Tracking) ([]models.Playlist, error) {
	var playlists []models.Playlist
	seen := make(map[string]bool)

	for _, username := range tracking.Usernames {
		s.log.Info("validating user", zap.String("user", username))

		uv, err := s.spotify.ValidateUser(ctx, username)
		if err != nil {
			return nil, err
		}
		if !uv.Valid {
			s.log.Error("invalid user ID, skipping",
				zap.String("user", username), zap.String("error", uv.Err))
			continue
		}
		if !uv.Accessible {
			s.log.Warn("user exists but is not accessible, skipping",
				zap.String("user", username), zap.String("error", uv.Err))
			continue
		}

		access, err := s.spotify.ValidateUserPlaylistsAccessible(ctx, username)
		if err != nil {
			return nil, err
		}
		if !access.Accessible {
			s.log.Warn("user playlists are not accessible, skipping",
				zap.String("user", username), zap.String("error", access.Err))
			continue
		}

		got, err := s.spotify.UserPlaylists(ctx, username)
		if err != nil {
			if errors.Is(err, spotify.ErrRateLimited) {
				return nil, err
			}
			s.log.Error("failed to fetch user playlists, skipping",
				zap.String("user", username), zap.Error(err))
			continue
		}

		s.log.Info("fetched user playlists",
			zap.String("user", username), zap.Int("playlists", len(got)))
		for _, p := range got {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			playlists = append(playlists, p)
		}
	}

	for _, raw := range tracking.PlaylistsToTrack {
		s.log.Info("validating playlist", zap.String("playlist", raw))

		pv, err := s.spotify.ValidatePlaylist(ctx, raw)
		if err != nil {
			return nil, err
		}
		if !pv.Valid {
			s.log.Error("invalid playlist ID, skipping",
				zap.String("playlist", raw), zap.String("error", pv.Err))
			continue
		}
		if !pv.Accessible {
			s.log.Warn("playlist exists but is not accessible, skipping",
				zap.String("playlist", raw), zap.String("error", pv.Err))
			continue
		}

		p, err := s.spotify.Playlist(ctx, pv.Playlist.ID)
		if err != nil {
			if errors.Is(err, spotify.ErrRateLimited) {
				return nil, err
			}
			s.log.Error("failed to fetch playlist, skipping",
				zap.String("playlist", raw), zap.Error(err))
			continue
		}

		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		playlists = append(playlists, *p)
	}

	return playlists, nil
}
