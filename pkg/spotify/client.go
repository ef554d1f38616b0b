package spotify

import (
	"context"
	"fmt"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	maxAttempts      = 3
	retryDelay       = 30 * time.Second
	serverErrorPause = 5 * time.Second
	artistBatchSize  = 50
	trackWriteChunk  = 100
)

// Client is a throttled, retrying facade over the Spotify Web API. All calls
// are blocking and may sleep internally while waiting for rate-limit
// headroom or retry backoff.
type Client struct {
	api     *spotifyapi.Client
	limiter *rateLimiter
	sleep   func(time.Duration)
	log     *zap.Logger
}

// NewClient authenticates with the client-credentials flow, which is enough
// for the read-only sync run.
func NewClient(ctx context.Context, clientID, clientSecret string, requestsPerMinute int, log *zap.Logger) (*Client, error) {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := cfg.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify client credentials auth: %w", err)
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	return &Client{
		api:     spotifyapi.New(httpClient),
		limiter: newRateLimiter(requestsPerMinute, log),
		sleep:   time.Sleep,
		log:     log,
	}, nil
}

// NewUserClient authenticates as a user from a stored refresh token. Needed
// by the generation run, which modifies playlists.
func NewUserClient(ctx context.Context, clientID, clientSecret, refreshToken string, requestsPerMinute int, log *zap.Logger) (*Client, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("spotify user auth: refresh token is required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(clientID),
		spotifyauth.WithClientSecret(clientSecret),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistModifyPublic,
			spotifyauth.ScopePlaylistModifyPrivate,
			spotifyauth.ScopePlaylistReadPrivate,
		),
	)

	// Force an immediate refresh on first use.
	token := &oauth2.Token{
		TokenType:    "Bearer",
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	}

	return &Client{
		api:     spotifyapi.New(auth.Client(ctx, token)),
		limiter: newRateLimiter(requestsPerMinute, log),
		sleep:   time.Sleep,
		log:     log,
	}, nil
}

// call runs one remote operation through the limiter and the retry policy:
// timeouts retry up to maxAttempts with a fixed backoff, 5xx responses pause
// before the error propagates, and explicit rate-limit signals become
// ErrRateLimited without any retry.
func (c *Client) call(op string, fn func() error) error {
	for attempt := 1; ; attempt++ {
		c.limiter.wait()

		err := fn()
		if err == nil {
			return nil
		}

		if rl := classifyRateLimit(err); rl != nil {
			c.log.Error("rate limit hit despite request throttling, refusing to continue",
				zap.String("op", op), zap.Error(err))
			return rl
		}

		if serr, ok := serverError(err); ok {
			c.log.Warn("spotify server error, pausing before continuing",
				zap.String("op", op), zap.Int("status", serr.Status), zap.Error(err))
			c.sleep(serverErrorPause)
			return fmt.Errorf("%s: %w", op, err)
		}

		if isTimeout(err) && attempt < maxAttempts {
			c.log.Warn("spotify timeout, retrying",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", maxAttempts),
				zap.Error(err))
			c.sleep(retryDelay)
			continue
		}

		return fmt.Errorf("%s: %w", op, err)
	}
}

// chunkIDs partitions ids into slices of at most size elements.
func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func toSpotifyIDs(ids []string) []spotifyapi.ID {
	out := make([]spotifyapi.ID, 0, len(ids))
	for _, id := range ids {
		out = append(out, spotifyapi.ID(id))
	}
	return out
}
