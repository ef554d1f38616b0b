package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/supperdoggy/playlist-sync/pkg/config"
	"github.com/supperdoggy/playlist-sync/pkg/db"
	"github.com/supperdoggy/playlist-sync/pkg/playlists"
	"github.com/supperdoggy/playlist-sync/pkg/spotify"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	os.Exit(run(log))
}

func run(log *zap.Logger) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Error("Failed to load config", zap.Error(err))
		return 1
	}
	log.Info("Loaded config")

	database, err := db.NewDatabase(log, cfg.DatabasePath)
	if err != nil {
		log.Error("Failed to open database", zap.Error(err))
		return 1
	}
	defer func() { _ = database.Close() }()
	log.Info("Database connection established")

	// Generation modifies playlists, so it needs the user-authorized client
	// rather than the client-credentials one the sync run uses.
	spotifyService, err := spotify.NewUserClient(ctx,
		cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRefreshToken,
		cfg.RequestsPerMinute, log)
	if err != nil {
		log.Error("Failed to initialize Spotify client", zap.Error(err))
		return 1
	}
	log.Info("Spotify service initialized")

	manager := playlists.NewManager(database, spotifyService,
		playlists.Registry(database, spotifyService), log)

	applied, err := manager.Apply(ctx)
	if err != nil {
		log.Error("Playlist generation failed", zap.Error(err))
		return 1
	}
	if applied == 0 {
		log.Error("No playlists were generated")
		return 1
	}

	log.Info("Playlist generation completed", zap.Int("playlists", applied))
	return 0
}
