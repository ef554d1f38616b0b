package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/supperdoggy/playlist-sync/pkg/config"
	"github.com/supperdoggy/playlist-sync/pkg/db"
	"github.com/supperdoggy/playlist-sync/pkg/models"
	"github.com/supperdoggy/playlist-sync/pkg/spotify"
)

// Audit action types. The action log is append-only and survives any log
// verbosity setting; it is the authoritative record of what a run did.
const (
	ActionSessionStart    = "SYNC_SESSION_START"
	ActionSessionComplete = "SYNC_SESSION_COMPLETE"
	ActionAddToQueue      = "ADD_TO_QUEUE"
	ActionSkip            = "SKIP"
	ActionCheckComplete   = "CHECK_COMPLETE"
	ActionSyncStart       = "SYNC_START"
	ActionSyncComplete    = "SYNC_COMPLETE"
	ActionSyncFailed      = "SYNC_FAILED"
	ActionRemoveFromQueue = "REMOVE_FROM_QUEUE"
)

const (
	entityPlaylist = "PLAYLIST"
	entitySystem   = "SYSTEM"
)

// SyncerDB is the slice of the row store the sync engine needs.
type SyncerDB interface {
	UpsertPlaylist(ctx context.Context, p models.Playlist) error
	PlaylistSnapshotID(ctx context.Context, id string) (string, bool, error)
	DeletePlaylistCascade(ctx context.Context, id string) error

	Enqueue(ctx context.Context, e models.QueueEntry) error
	Queue(ctx context.Context) ([]models.QueueEntry, error)
	QueueForPlaylist(ctx context.Context, playlistID string) ([]models.QueueEntry, error)
	DeleteQueueForPlaylist(ctx context.Context, playlistID string) error

	GetSong(ctx context.Context, id string) (*models.Song, error)
	UpsertSong(ctx context.Context, s models.Song) error
	DeleteSong(ctx context.Context, id string) error
	UpsertArtist(ctx context.Context, a models.Artist) error
	DeleteArtist(ctx context.Context, id string) error
	UpsertSongArtist(ctx context.Context, songID, artistID string) error

	SongsInPlaylist(ctx context.Context, playlistID string) ([]models.Song, error)
	SyncPlaylistSongs(ctx context.Context, playlistID string, currentSongIDs []string) (db.SyncResult, error)

	OrphanedPlaylists(ctx context.Context, trackedIDs []string) ([]models.Playlist, error)
	DeleteOrphanedPlaylistSongs(ctx context.Context) (int64, error)
	OrphanedSongs(ctx context.Context) ([]models.Song, error)
	DeleteOrphanedSongArtists(ctx context.Context) (int64, error)
	OrphanedArtists(ctx context.Context) ([]models.Artist, error)

	LogAction(ctx context.Context, e models.ActionLogEntry) error
	PurgeActionLogs(ctx context.Context, keepFor time.Duration) (int64, error)
}

// SpotifyService is the remote facade surface the sync engine consumes.
type SpotifyService interface {
	UserPlaylists(ctx context.Context, owner string) ([]models.Playlist, error)
	Playlist(ctx context.Context, id string) (*models.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)
	Artist(ctx context.Context, id string) (*models.Artist, error)
	ArtistsBatch(ctx context.Context, ids []string) (map[string]models.Artist, error)
	ValidatePlaylist(ctx context.Context, id string) (spotify.PlaylistValidation, error)
	ValidateUser(ctx context.Context, id string) (spotify.UserValidation, error)
	ValidateUserPlaylistsAccessible(ctx context.Context, userID string) (spotify.Accessibility, error)
}

// Options tunes one sync pass.
type Options struct {
	// RefreshKnownSongs re-upserts metadata for songs already in the store,
	// so popularity and flags do not go stale forever. Off by default to
	// match the insert-once behavior.
	RefreshKnownSongs bool
	// LogRetention prunes action_log rows older than this at the end of a
	// pass; zero disables the purge.
	LogRetention time.Duration
	// SessionID tags the session audit entries.
	SessionID string
}

// Syncer runs one full pass: resolve targets, diff fingerprints, drain the
// reconciliation queue, sweep orphans. Strictly sequential; remote ordering
// and the shared rate-limit ledger make concurrent playlist processing
// unsafe.
type Syncer struct {
	db      SyncerDB
	spotify SpotifyService
	opts    Options
	log     *zap.Logger
}

func NewSyncer(database SyncerDB, spotifyService SpotifyService, opts Options, log *zap.Logger) *Syncer {
	return &Syncer{
		db:      database,
		spotify: spotifyService,
		opts:    opts,
		log:     log,
	}
}

// Run executes a complete sync pass against the configured tracking targets.
func (s *Syncer) Run(ctx context.Context, tracking *config.Tracking) error {
	s.audit(ctx, models.ActionLogEntry{
		ActionType: ActionSessionStart,
		EntityType: entitySystem,
		EntityName: "Sync Session",
		Reason:     "Starting new sync session",
		Details:    "Session ID: " + s.opts.SessionID,
		Success:    true,
	})

	s.log.Info("loading playlists to track")
	playlists, err := s.resolveTargets(ctx, tracking)
	if err != nil {
		return err
	}
	if len(playlists) == 0 {
		s.log.Info("no valid playlists to track")
		return nil
	}
	s.log.Info("resolved tracking targets", zap.Int("playlists", len(playlists)))

	if err := s.detectChanges(ctx, playlists); err != nil {
		return err
	}

	if err := s.processQueue(ctx); err != nil {
		return err
	}

	trackedIDs := make([]string, 0, len(playlists))
	for _, p := range playlists {
		trackedIDs = append(trackedIDs, p.ID)
	}
	if _, err := s.cleanupOrphans(ctx, trackedIDs); err != nil {
		return fmt.Errorf("orphan cleanup: %w", err)
	}

	if s.opts.LogRetention > 0 {
		purged, err := s.db.PurgeActionLogs(ctx, s.opts.LogRetention)
		if err != nil {
			s.log.Warn("failed to purge old action log entries", zap.Error(err))
		} else if purged > 0 {
			s.log.Info("purged old action log entries", zap.Int64("purged", purged))
		}
	}

	s.audit(ctx, models.ActionLogEntry{
		ActionType: ActionSessionComplete,
		EntityType: entitySystem,
		EntityName: "Sync Session",
		Reason:     "Sync session completed successfully",
		Details:    fmt.Sprintf("Processed %d playlists, Session ID: %s", len(playlists), s.opts.SessionID),
		Success:    true,
	})
	return nil
}

// audit writes an action log entry. A failed audit write is logged but never
// interrupts the pass.
func (s *Syncer) audit(ctx context.Context, e models.ActionLogEntry) {
	if err := s.db.LogAction(ctx, e); err != nil {
		s.log.Error("failed to write action log entry",
			zap.String("action_type", e.ActionType), zap.Error(err))
	}
}
