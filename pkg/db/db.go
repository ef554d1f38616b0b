package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/supperdoggy/playlist-sync/pkg/models"
)

// Database is the row store consumed by the sync engine and the playlist
// generators. One sqlite file holds every table; the schema is created
// idempotently on open.
type Database interface {
	// playlists
	UpsertPlaylist(ctx context.Context, p models.Playlist) error
	GetPlaylist(ctx context.Context, id string) (*models.Playlist, error)
	GetAllPlaylists(ctx context.Context) ([]models.Playlist, error)
	PlaylistSnapshotID(ctx context.Context, id string) (string, bool, error)
	DeletePlaylistCascade(ctx context.Context, id string) error

	// reconciliation queue
	Enqueue(ctx context.Context, e models.QueueEntry) error
	Queue(ctx context.Context) ([]models.QueueEntry, error)
	QueueForPlaylist(ctx context.Context, playlistID string) ([]models.QueueEntry, error)
	DeleteQueueForPlaylist(ctx context.Context, playlistID string) error
	ClearQueue(ctx context.Context) error

	// songs and artists
	UpsertSong(ctx context.Context, s models.Song) error
	GetSong(ctx context.Context, id string) (*models.Song, error)
	DeleteSong(ctx context.Context, id string) error
	FilteredSongs(ctx context.Context, minPopularity, maxPopularity, limit int) ([]models.Song, error)
	UpsertArtist(ctx context.Context, a models.Artist) error
	GetArtist(ctx context.Context, id string) (*models.Artist, error)
	DeleteArtist(ctx context.Context, id string) error
	UpsertSongArtist(ctx context.Context, songID, artistID string) error
	ArtistsForSong(ctx context.Context, songID string) ([]models.Artist, error)

	// playlist membership
	SongsInPlaylist(ctx context.Context, playlistID string) ([]models.Song, error)
	SyncPlaylistSongs(ctx context.Context, playlistID string, currentSongIDs []string) (SyncResult, error)

	// orphan sweep
	OrphanedPlaylists(ctx context.Context, trackedIDs []string) ([]models.Playlist, error)
	DeleteOrphanedPlaylistSongs(ctx context.Context) (int64, error)
	OrphanedSongs(ctx context.Context) ([]models.Song, error)
	DeleteOrphanedSongArtists(ctx context.Context) (int64, error)
	OrphanedArtists(ctx context.Context) ([]models.Artist, error)

	// action log
	LogAction(ctx context.Context, e models.ActionLogEntry) error
	ActionLogs(ctx context.Context, f ActionLogFilter) ([]models.ActionLogEntry, error)
	PurgeActionLogs(ctx context.Context, keepFor time.Duration) (int64, error)

	// managed (generated) playlists
	SaveManagedPlaylist(ctx context.Context, m models.ManagedPlaylist) error
	GetManagedPlaylist(ctx context.Context, name string) (*models.ManagedPlaylist, error)
	AllManagedPlaylists(ctx context.Context) ([]models.ManagedPlaylist, error)
	DeleteManagedPlaylist(ctx context.Context, name string) error

	Ping(ctx context.Context) error
	Close() error
}

// SyncResult reports one membership reconciliation.
type SyncResult struct {
	Added        int
	Removed      int
	SongsAdded   []string
	SongsRemoved []string
}

type database struct {
	conn *sql.DB
	log  *zap.Logger
	now  func() time.Time
}

// NewDatabase opens (creating if needed) the sqlite store at path and ensures
// all tables exist.
func NewDatabase(log *zap.Logger, path string) (Database, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// The engine is single-process and sequential.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &database{
		conn: conn,
		log:  log,
		now:  time.Now,
	}, nil
}

func (d *database) Ping(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

func (d *database) Close() error {
	return d.conn.Close()
}
