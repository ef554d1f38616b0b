package spotify

import (
	"errors"
	"testing"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

func TestChunkIDs(t *testing.T) {
	chunks := chunkIDs([]string{"a", "b", "c", "d", "e"}, 2)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 2 || len(chunks[2]) != 1 {
		t.Fatalf("unexpected chunk sizes: %v", chunks)
	}

	if got := chunkIDs(nil, 2); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := chunkIDs([]string{"a"}, 0); got != nil {
		t.Fatalf("expected nil for non-positive size, got %v", got)
	}
}

func TestNormalizePlaylistID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"  37i9dQZF1DXcBWIGoYBM5M  ", "37i9dQZF1DXcBWIGoYBM5M"},
		{"spotify:playlist:37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123", "37i9dQZF1DXcBWIGoYBM5M"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizePlaylistID(c.in); got != c.want {
			t.Fatalf("NormalizePlaylistID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClassifyRateLimit(t *testing.T) {
	if got := classifyRateLimit(nil); got != nil {
		t.Fatalf("nil error must classify as nil, got %v", got)
	}
	if got := classifyRateLimit(errors.New("connection refused")); got != nil {
		t.Fatalf("ordinary error must classify as nil, got %v", got)
	}

	status := classifyRateLimit(spotifyapi.Error{Message: "too many requests", Status: 429})
	if !errors.Is(status, ErrRateLimited) {
		t.Fatalf("HTTP 429 must map to ErrRateLimited, got %v", status)
	}

	message := classifyRateLimit(errors.New("API rate limit exceeded"))
	if !errors.Is(message, ErrRateLimited) {
		t.Fatalf("rate limit message must map to ErrRateLimited, got %v", message)
	}
}

func TestValidationFromError(t *testing.T) {
	cases := []struct {
		status     int
		valid      bool
		accessible bool
	}{
		{404, false, false},
		{403, true, false},
		{401, false, false},
		{500, false, false},
	}
	for _, c := range cases {
		v, ok := validationFromError(spotifyapi.Error{Message: "x", Status: c.status}, "Playlist")
		if !ok {
			t.Fatalf("status %d must map to a validation", c.status)
		}
		if v.Valid != c.valid || v.Accessible != c.accessible {
			t.Fatalf("status %d: got valid=%v accessible=%v", c.status, v.Valid, v.Accessible)
		}
		if v.Err == "" {
			t.Fatalf("status %d: expected a reason", c.status)
		}
	}

	if _, ok := validationFromError(errors.New("connection reset"), "Playlist"); ok {
		t.Fatalf("non-API errors must propagate, not map")
	}
	if _, ok := validationFromError(ErrRateLimited, "Playlist"); ok {
		t.Fatalf("rate limit breaker must propagate, not map")
	}
}

// fakeTime drives the limiter clock: sleeping advances it.
type fakeTime struct {
	t      time.Time
	sleeps []time.Duration
}

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) sleep(d time.Duration) {
	f.sleeps = append(f.sleeps, d)
	f.t = f.t.Add(d)
}

func TestRateLimiterMinimumSpacing(t *testing.T) {
	clk := &fakeTime{t: time.Unix(1000, 0)}
	limiter := newRateLimiter(4, zap.NewNop()) // minGap 15s
	limiter.now = clk.now
	limiter.sleep = clk.sleep

	limiter.wait()
	if len(clk.sleeps) != 0 {
		t.Fatalf("first request must not sleep, got %v", clk.sleeps)
	}

	limiter.wait()
	if len(clk.sleeps) != 1 || clk.sleeps[0] != 15*time.Second {
		t.Fatalf("back-to-back request must sleep the minimum gap, got %v", clk.sleeps)
	}
}

func TestRateLimiterWindowCeiling(t *testing.T) {
	clk := &fakeTime{t: time.Unix(1000, 0)}
	limiter := newRateLimiter(3, zap.NewNop()) // minGap 20s
	limiter.now = clk.now
	limiter.sleep = clk.sleep

	limiter.wait()
	clk.t = clk.t.Add(20 * time.Second)
	limiter.wait()
	clk.t = clk.t.Add(20 * time.Second)
	limiter.wait()
	if len(clk.sleeps) != 0 {
		t.Fatalf("spaced requests under the ceiling must not sleep, got %v", clk.sleeps)
	}

	// Fourth request 45s into the window: must wait out the remaining 15s
	// plus the cushion.
	clk.t = clk.t.Add(5 * time.Second)
	limiter.wait()
	if len(clk.sleeps) != 1 {
		t.Fatalf("expected exactly one window sleep, got %v", clk.sleeps)
	}
	want := 15*time.Second + 100*time.Millisecond
	if clk.sleeps[0] != want {
		t.Fatalf("window sleep = %v, want %v", clk.sleeps[0], want)
	}
	if len(limiter.ledger) != 3 {
		t.Fatalf("ledger should hold 3 entries after pruning, got %d", len(limiter.ledger))
	}
}

func newTestClient(clk *fakeTime) *Client {
	limiter := newRateLimiter(1000, zap.NewNop())
	limiter.now = clk.now
	limiter.sleep = func(time.Duration) {}
	return &Client{
		limiter: limiter,
		sleep:   clk.sleep,
		log:     zap.NewNop(),
	}
}

func TestCallRetriesTimeouts(t *testing.T) {
	clk := &fakeTime{t: time.Unix(1000, 0)}
	c := newTestClient(clk)

	attempts := 0
	err := c.call("op", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("read timeout")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(clk.sleeps) != 2 || clk.sleeps[0] != retryDelay || clk.sleeps[1] != retryDelay {
		t.Fatalf("expected two fixed retry delays, got %v", clk.sleeps)
	}
}

func TestCallGivesUpAfterMaxAttempts(t *testing.T) {
	clk := &fakeTime{t: time.Unix(1000, 0)}
	c := newTestClient(clk)

	attempts := 0
	err := c.call("op", func() error {
		attempts++
		return errors.New("read timeout")
	})
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if attempts != maxAttempts {
		t.Fatalf("expected %d attempts, got %d", maxAttempts, attempts)
	}
}

func TestCallRateLimitIsNotRetried(t *testing.T) {
	clk := &fakeTime{t: time.Unix(1000, 0)}
	c := newTestClient(clk)

	attempts := 0
	err := c.call("op", func() error {
		attempts++
		return spotifyapi.Error{Message: "too many requests", Status: 429}
	})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("rate limit must not retry, got %d attempts", attempts)
	}
	if len(clk.sleeps) != 0 {
		t.Fatalf("rate limit must not sleep, got %v", clk.sleeps)
	}
}

func TestCallPausesOnServerError(t *testing.T) {
	clk := &fakeTime{t: time.Unix(1000, 0)}
	c := newTestClient(clk)

	attempts := 0
	err := c.call("op", func() error {
		attempts++
		return spotifyapi.Error{Message: "upstream broke", Status: 502}
	})
	if err == nil {
		t.Fatalf("expected the server error to propagate")
	}
	if attempts != 1 {
		t.Fatalf("server errors must not retry, got %d attempts", attempts)
	}
	if len(clk.sleeps) != 1 || clk.sleeps[0] != serverErrorPause {
		t.Fatalf("expected one %v pause, got %v", serverErrorPause, clk.sleeps)
	}
}
