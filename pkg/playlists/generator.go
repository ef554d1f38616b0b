package playlists

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

// Generator produces the track list for one auto playlist. Title must
// contain the #auto marker so the sync engine skips the result.
type Generator interface {
	Name() string
	Title() string
	Description() string
	Public() bool
	Tracks(ctx context.Context) ([]string, error)
}

// ManagerDB is the slice of the store the generation run needs.
type ManagerDB interface {
	SaveManagedPlaylist(ctx context.Context, m models.ManagedPlaylist) error
	GetManagedPlaylist(ctx context.Context, name string) (*models.ManagedPlaylist, error)
	AllManagedPlaylists(ctx context.Context) ([]models.ManagedPlaylist, error)
	DeleteManagedPlaylist(ctx context.Context, name string) error
}

// SpotifyWriter is the write surface of the remote facade used to create and
// refresh generated playlists.
type SpotifyWriter interface {
	CreatePlaylistWithTracks(ctx context.Context, title, description string, public bool, trackIDs []string) (string, error)
	UpdatePlaylistDetails(ctx context.Context, playlistID, title, description string, public bool) error
	ReplacePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error
	PlaylistExists(ctx context.Context, playlistID string) (bool, error)
}

// Manager runs registered generators and keeps the generator-to-playlist
// mapping so repeated runs update in place instead of piling up duplicates.
type Manager struct {
	db         ManagerDB
	spotify    SpotifyWriter
	generators []Generator
	log        *zap.Logger
}

func NewManager(db ManagerDB, spotifyWriter SpotifyWriter, generators []Generator, log *zap.Logger) *Manager {
	return &Manager{
		db:         db,
		spotify:    spotifyWriter,
		generators: generators,
		log:        log,
	}
}

// Apply runs every registered generator and returns how many playlists were
// created or refreshed. A failing generator is logged and skipped so one bad
// source never blocks the rest.
func (m *Manager) Apply(ctx context.Context) (int, error) {
	applied := 0
	for _, g := range m.generators {
		if err := m.createOrUpdate(ctx, g); err != nil {
			m.log.Error("generator failed",
				zap.String("generator", g.Name()), zap.Error(err))
			continue
		}
		applied++
	}

	if err := m.cleanupUnmanaged(ctx); err != nil {
		m.log.Error("failed to clean up stale managed playlists", zap.Error(err))
	}

	return applied, nil
}

// createOrUpdate makes the remote playlist match the generator's output. A
// mapping whose remote playlist disappeared is dropped and recreated.
func (m *Manager) createOrUpdate(ctx context.Context, g Generator) error {
	trackIDs, err := g.Tracks(ctx)
	if err != nil {
		return fmt.Errorf("generate tracks: %w", err)
	}
	if len(trackIDs) == 0 {
		m.log.Warn("generator produced no tracks, skipping",
			zap.String("generator", g.Name()))
		return nil
	}

	managed, err := m.db.GetManagedPlaylist(ctx, g.Name())
	if err != nil {
		return fmt.Errorf("look up managed playlist: %w", err)
	}

	if managed != nil {
		exists, err := m.spotify.PlaylistExists(ctx, managed.PlaylistID)
		if err != nil {
			return fmt.Errorf("check managed playlist: %w", err)
		}
		if !exists {
			m.log.Warn("managed playlist no longer exists remotely, recreating",
				zap.String("generator", g.Name()),
				zap.String("playlist_id", managed.PlaylistID))
			if err := m.db.DeleteManagedPlaylist(ctx, g.Name()); err != nil {
				return fmt.Errorf("drop stale mapping: %w", err)
			}
			managed = nil
		}
	}

	if managed == nil {
		playlistID, err := m.spotify.CreatePlaylistWithTracks(ctx, g.Title(), g.Description(), g.Public(), trackIDs)
		if err != nil {
			return fmt.Errorf("create playlist: %w", err)
		}
		if err := m.db.SaveManagedPlaylist(ctx, models.ManagedPlaylist{
			Name:        g.Name(),
			PlaylistID:  playlistID,
			Title:       g.Title(),
			Description: g.Description(),
			Public:      g.Public(),
		}); err != nil {
			return fmt.Errorf("save managed playlist: %w", err)
		}
		m.log.Info("created generated playlist",
			zap.String("generator", g.Name()),
			zap.String("playlist_id", playlistID),
			zap.Int("tracks", len(trackIDs)))
		return nil
	}

	if managed.Title != g.Title() || managed.Description != g.Description() || managed.Public != g.Public() {
		if err := m.spotify.UpdatePlaylistDetails(ctx, managed.PlaylistID, g.Title(), g.Description(), g.Public()); err != nil {
			return fmt.Errorf("update playlist details: %w", err)
		}
	}
	if err := m.spotify.ReplacePlaylistTracks(ctx, managed.PlaylistID, trackIDs); err != nil {
		return fmt.Errorf("replace playlist tracks: %w", err)
	}
	if err := m.db.SaveManagedPlaylist(ctx, models.ManagedPlaylist{
		Name:        g.Name(),
		PlaylistID:  managed.PlaylistID,
		Title:       g.Title(),
		Description: g.Description(),
		Public:      g.Public(),
	}); err != nil {
		return fmt.Errorf("save managed playlist: %w", err)
	}

	m.log.Info("refreshed generated playlist",
		zap.String("generator", g.Name()),
		zap.String("playlist_id", managed.PlaylistID),
		zap.Int("tracks", len(trackIDs)))
	return nil
}

// cleanupUnmanaged drops mappings whose generator is no longer registered.
// The remote playlist is left alone; only the local bookkeeping goes.
func (m *Manager) cleanupUnmanaged(ctx context.Context) error {
	managed, err := m.db.AllManagedPlaylists(ctx)
	if err != nil {
		return err
	}

	registered := make(map[string]bool, len(m.generators))
	for _, g := range m.generators {
		registered[g.Name()] = true
	}

	for _, mp := range managed {
		if registered[mp.Name] {
			continue
		}
		m.log.Info("dropping mapping for unregistered generator",
			zap.String("generator", mp.Name),
			zap.String("playlist_id", mp.PlaylistID))
		if err := m.db.DeleteManagedPlaylist(ctx, mp.Name); err != nil {
			return err
		}
	}
	return nil
}
