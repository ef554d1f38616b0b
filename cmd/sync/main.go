package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/supperdoggy/playlist-sync/pkg/config"
	"github.com/supperdoggy/playlist-sync/pkg/db"
	"github.com/supperdoggy/playlist-sync/pkg/service"
	"github.com/supperdoggy/playlist-sync/pkg/spotify"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	// run returns instead of calling log.Fatal so the database handle is
	// released on every exit path.
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

	tracking, err := config.LoadTracking(cfg.TrackingConfigPath)
	if err != nil {
		log.Error("Failed to load tracking config", zap.Error(err))
		return 1
	}
	if err := tracking.Validate(); err != nil {
		log.Error("Invalid tracking config", zap.Error(err))
		return 1
	}

	database, err := db.NewDatabase(log, cfg.DatabasePath)
	if err != nil {
		log.Error("Failed to open database", zap.Error(err))
		return 1
	}
	defer func() { _ = database.Close() }()
	log.Info("Database connection established")

	spotifyService, err := spotify.NewClient(ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.RequestsPerMinute, log)
	if err != nil {
		log.Error("Failed to initialize Spotify client", zap.Error(err))
		return 1
	}
	log.Info("Spotify service initialized")

	sessionID, err := uuid.NewV4()
	if err != nil {
		log.Error("Failed to generate session ID", zap.Error(err))
		return 1
	}

	syncer := service.NewSyncer(database, spotifyService, service.Options{
		RefreshKnownSongs: cfg.RefreshKnownSongs,
		LogRetention:      time.Duration(cfg.LogRetentionDays) * 24 * time.Hour,
		SessionID:         sessionID.String(),
	}, log)

	if err := syncer.Run(ctx, tracking); err != nil {
		log.Error("Sync run failed", zap.Error(err))
		return 1
	}

	log.Info("Sync run completed")
	return 0
}
