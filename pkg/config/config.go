package config

import "github.com/kelseyhightower/envconfig"

type Config struct {
	SpotifyClientID     string `envconfig:"SPOTIFY_CLIENT_ID" required:"true"`
	SpotifyClientSecret string `envconfig:"SPOTIFY_CLIENT_SECRET" required:"true"`
	SpotifyRefreshToken string `envconfig:"SPOTIFY_REFRESH_TOKEN"`
	DatabasePath        string `envconfig:"DATABASE_PATH" default:"databases/spotify.db"`
	TrackingConfigPath  string `envconfig:"TRACKING_CONFIG" default:"config.yml"`
	RequestsPerMinute   int    `envconfig:"REQUESTS_PER_MINUTE" default:"90"`
	RefreshKnownSongs   bool   `envconfig:"REFRESH_KNOWN_SONGS" default:"false"`
	LogRetentionDays    int    `envconfig:"LOG_RETENTION_DAYS" default:"30"`
}

func NewConfig() (*Config, error) {
	cfg := new(Config)
	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
